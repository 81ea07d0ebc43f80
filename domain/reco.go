package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Recommendation scenarios.
const (
	ScenarioRebuy     = "REBUY"
	ScenarioCrossSell = "CROSS_SELL"
	ScenarioUpsell    = "UPSELL"
	ScenarioWinback   = "WINBACK"
	ScenarioNurture   = "NURTURE"
)

// Budget tiers derived from average order value.
const (
	TierBudget   = "BUDGET"
	TierStandard = "STANDARD"
	TierPremium  = "PREMIUM"
	TierLuxury   = "LUXURY"
)

// RecoRun is the metadata row for one batch recommendation run.
type RecoRun struct {
	RunID             string            `gorm:"column:run_id;primaryKey" json:"run_id"`
	ConfigHash        string            `gorm:"column:config_hash;not null" json:"config_hash"`
	Status            string            `gorm:"column:status;default:RUNNING;index" json:"status"`
	TotalCustomers    int               `gorm:"column:total_customers;default:0" json:"total_customers"`
	EligibleCustomers int               `gorm:"column:eligible_customers;default:0" json:"eligible_customers"`
	SkippedCustomers  int               `gorm:"column:skipped_customers;default:0" json:"skipped_customers"`
	FailedCustomers   int               `gorm:"column:failed_customers;default:0" json:"failed_customers"`
	DurationSeconds   float64           `gorm:"column:duration_seconds" json:"duration_seconds"`
	Summary           datatypes.JSONMap `gorm:"column:summary;type:jsonb" json:"summary,omitempty"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (RecoRun) TableName() string {
	return "reco_runs"
}

// RecoItem is one recommendation row. Append-only: every run writes a fresh
// set, keyed (run_id, customer_code, rank).
type RecoItem struct {
	ID           uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID        string            `gorm:"column:run_id;not null;uniqueIndex:ux_reco_items_run_customer_rank" json:"run_id"`
	CustomerCode string            `gorm:"column:customer_code;not null;uniqueIndex:ux_reco_items_run_customer_rank" json:"customer_code"`
	Rank         int               `gorm:"column:rank;not null;uniqueIndex:ux_reco_items_run_customer_rank" json:"rank"`
	ProductKey   string            `gorm:"column:product_key;not null" json:"product_key"`
	Scenario     string            `gorm:"column:scenario;not null" json:"scenario"`
	FinalScore   float64           `gorm:"column:final_score;type:numeric;not null" json:"final_score"`
	Explanation  string            `gorm:"column:explanation;type:text" json:"explanation"`
	Reasons      datatypes.JSONMap `gorm:"column:reasons;type:jsonb" json:"reasons,omitempty"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RecoItem) TableName() string {
	return "reco_items"
}

// RecoAudit records why a customer produced no recommendations in a run.
type RecoAudit struct {
	ID           uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID        string            `gorm:"column:run_id;not null;index:ix_reco_audits_run_customer" json:"run_id"`
	CustomerCode string            `gorm:"column:customer_code;not null;index:ix_reco_audits_run_customer" json:"customer_code"`
	Severity     string            `gorm:"column:severity;not null" json:"severity"`
	RuleCode     string            `gorm:"column:rule_code;not null;index" json:"rule_code"`
	Details      datatypes.JSONMap `gorm:"column:details;type:jsonb" json:"details,omitempty"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RecoAudit) TableName() string {
	return "reco_audits"
}
