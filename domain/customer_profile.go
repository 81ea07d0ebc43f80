package domain

import "time"

// CustomerProfile is the denormalized feature copy persisted per run for
// auditability. The scoring pipeline never reads it back; it exists so a
// campaign operator can see why a customer landed in a segment.
type CustomerProfile struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerCode string `gorm:"column:customer_code;not null;uniqueIndex" json:"customer_code"`

	FirstPurchaseDate *time.Time `gorm:"column:first_purchase_date;type:date" json:"first_purchase_date,omitempty"`
	LastPurchaseDate  *time.Time `gorm:"column:last_purchase_date;type:date;index" json:"last_purchase_date,omitempty"`
	RecencyDays       int        `gorm:"column:recency_days" json:"recency_days"`
	OrderCount        int        `gorm:"column:order_count;default:0" json:"order_count"`
	TotalSpent        float64    `gorm:"column:total_spent;type:numeric;default:0" json:"total_spent"`
	AvgOrderValue     float64    `gorm:"column:avg_order_value;type:numeric;default:0" json:"avg_order_value"`

	RScore  int    `gorm:"column:r_score" json:"r_score"`
	FScore  int    `gorm:"column:f_score" json:"f_score"`
	MScore  int    `gorm:"column:m_score" json:"m_score"`
	RFM     string `gorm:"column:rfm" json:"rfm"`
	Segment string `gorm:"column:segment;index" json:"segment"`

	BudgetTier string `gorm:"column:budget_tier" json:"budget_tier"`

	TopFamily1      string  `gorm:"column:top_family_1" json:"top_family_1,omitempty"`
	TopFamily1Share float64 `gorm:"column:top_family_1_share;type:numeric" json:"top_family_1_share,omitempty"`
	TopFamily2      string  `gorm:"column:top_family_2" json:"top_family_2,omitempty"`
	TopFamily2Share float64 `gorm:"column:top_family_2_share;type:numeric" json:"top_family_2_share,omitempty"`
	FamilyDiversity float64 `gorm:"column:family_diversity;type:numeric" json:"family_diversity"`

	ComputedAt time.Time `gorm:"column:computed_at" json:"computed_at"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CustomerProfile) TableName() string {
	return "customer_profiles"
}
