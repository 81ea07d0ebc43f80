package router

import (
	"vintnercrm/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupAuthRoutes(api *echo.Group, handler *rest.AuthHandler, authRequired echo.MiddlewareFunc) {
	auth := api.Group("/auth")

	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.POST("/refresh", handler.Refresh)

	auth.POST("/logout", handler.Logout, authRequired)
	auth.GET("/me", handler.Me, authRequired)
}

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	reco := api.Group("/recommendations", authRequired)

	reco.POST("/runs", handler.TriggerRun, adminOnly)
	reco.GET("/runs", handler.ListRuns)
	reco.GET("/runs/:run_id", handler.GetRun)
	reco.GET("/runs/:run_id/items", handler.ListRunItems)
	reco.GET("/runs/:run_id/audits", handler.ListRunAudits)
}

func SetupCustomerRoutes(api *echo.Group, customerHandler *rest.CustomerHandler, recoHandler *rest.RecommendationHandler, segmentHandler *rest.SegmentHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	customers := api.Group("/customers", authRequired)

	customers.GET("", customerHandler.List)
	customers.GET("/:customer_code", customerHandler.Get)
	customers.PUT("", customerHandler.Upsert, adminOnly)

	customers.GET("/:customer_code/recommendations", recoHandler.LatestForCustomer)
	customers.GET("/:customer_code/profile", segmentHandler.GetProfile)

	customers.POST("/:customer_code/contacts", customerHandler.RecordContact)
	customers.GET("/:customer_code/contacts", customerHandler.ContactHistory)
}

func SetupSegmentRoutes(api *echo.Group, handler *rest.SegmentHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	segments := api.Group("/segments", authRequired)

	segments.GET("", handler.SegmentCounts)
	segments.GET("/:segment/customers", handler.ListSegment)
	segments.POST("/rebuild", handler.Rebuild, adminOnly)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	products := api.Group("/products", authRequired)

	products.GET("", handler.List)
	products.GET("/:product_key", handler.Get)
	products.PUT("", handler.Upsert, adminOnly)
}
