package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"vintnercrm/business/recommendation"
	"vintnercrm/business/segments"
	psqlRepo "vintnercrm/internal/repository/postgres"
	"vintnercrm/pkg/config"
	"vintnercrm/pkg/database"
	"vintnercrm/pkg/logger"
)

// reco-runner scores the whole customer base (or a given subset) in one
// batch and exits. Meant for cron; the HTTP server stays up for serving.
func main() {
	var (
		customersFlag = flag.String("customers", "", "comma separated customer codes, empty means all")
		maxItems      = flag.Int("max-items", 0, "override recommendations per customer")
		workers       = flag.Int("workers", 0, "override batch worker count")
		timeout       = flag.Duration("timeout", 2*time.Hour, "hard deadline for the whole run")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting reco-runner", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	orderLineRepo := psqlRepo.NewOrderLineRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	contactRepo := psqlRepo.NewContactEventRepository(db)
	profileRepo := psqlRepo.NewProfileRepository(db)
	recoRepo := psqlRepo.NewRecoRepository(db)
	recoConfigRepo := psqlRepo.NewRecoConfigRepository(db)

	segmentService := segments.NewService(profileRepo)

	engineCfg := recommendation.DefaultConfig()
	engineCfg.MaxItems = cfg.Reco.MaxItems
	engineCfg.SilenceCheck = cfg.Reco.SilenceCheck

	batchWorkers := cfg.Reco.BatchWorkers
	if *workers > 0 {
		batchWorkers = *workers
	}

	engine := recommendation.NewEngine(
		orderLineRepo,
		productRepo,
		contactRepo,
		recoRepo,
		segmentService,
		recoConfigRepo,
		engineCfg,
		batchWorkers,
	)

	var customerCodes []string
	if *customersFlag != "" {
		for _, code := range strings.Split(*customersFlag, ",") {
			if code = strings.TrimSpace(code); code != "" {
				customerCodes = append(customerCodes, code)
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// SIGINT finishes the in-flight customers and marks the run FAILED
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Warn("Interrupt received, stopping run")
		cancel()
	}()

	runID, err := engine.GenerateBatch(ctx, customerCodes, *maxItems)
	if err != nil {
		logger.Fatal("Batch run failed", "error", err)
	}

	logger.Info("Batch run finished", "run_id", runID)
}
