package domain

// RecoConfig is a per-profile override of the scoring configuration. The
// engine falls back to compiled-in defaults for any missing row.
type RecoConfig struct {
	Profile string `json:"profile" gorm:"column:profile;primaryKey"`

	WAffinity   float64 `json:"w_affinity" gorm:"column:w_affinity"`
	WPopularity float64 `json:"w_popularity" gorm:"column:w_popularity"`
	WProfit     float64 `json:"w_profit" gorm:"column:w_profit"`
	WBase       float64 `json:"w_base" gorm:"column:w_base"`

	// per-scenario base constants
	BaseRebuy     float64 `json:"base_rebuy" gorm:"column:base_rebuy"`
	BaseCrossSell float64 `json:"base_cross_sell" gorm:"column:base_cross_sell"`
	BaseUpsell    float64 `json:"base_upsell" gorm:"column:base_upsell"`
	BaseWinback   float64 `json:"base_winback" gorm:"column:base_winback"`
	BaseNurture   float64 `json:"base_nurture" gorm:"column:base_nurture"`

	// eligibility thresholds
	RebuyDays          int     `json:"rebuy_days" gorm:"column:rebuy_days"`
	WinbackDays        int     `json:"winback_days" gorm:"column:winback_days"`
	CrossSellSpent     float64 `json:"cross_sell_spent" gorm:"column:cross_sell_spent"`
	UpsellSpent        float64 `json:"upsell_spent" gorm:"column:upsell_spent"`
	SilenceWindowDays  int     `json:"silence_window_days" gorm:"column:silence_window_days"`
	MaxItems           int     `json:"max_items" gorm:"column:max_items"`
	CandidatesPerMatch int     `json:"candidates_per_match" gorm:"column:candidates_per_match"`
}

func (RecoConfig) TableName() string {
	return "reco_configs"
}
