package recommendation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"vintnercrm/domain"
)

// Weights for the final score combination. They are fixed business policy:
// final = WAffinity*affinity + WPopularity*popularity + WProfit*profit + WBase*base.
type Weights struct {
	Affinity   float64
	Popularity float64
	Profit     float64
	Base       float64
}

type Config struct {
	Weights Weights

	// Per-scenario base constants, 65-85. The ranking is sensitive to these,
	// so they stay fixed unless overridden from the reco_configs table.
	BaseRebuy     float64
	BaseCrossSell float64
	BaseUpsell    float64
	BaseWinback   float64
	BaseNurture   float64

	// Eligibility thresholds
	RebuyDays      int
	WinbackDays    int
	CrossSellSpent float64
	UpsellSpent    float64
	NurtureMaxFreq int

	SilenceWindowDays  int
	SilenceCheck       bool
	MaxItems           int
	CandidatesPerMatch int
}

const (
	defaultWAffinity   = 0.40
	defaultWPopularity = 0.30
	defaultWProfit     = 0.20
	defaultWBase       = 0.10

	defaultBaseRebuy     = 85.0
	defaultBaseCrossSell = 75.0
	defaultBaseUpsell    = 80.0
	defaultBaseWinback   = 70.0
	defaultBaseNurture   = 65.0

	defaultRebuyDays      = 90
	defaultWinbackDays    = 365
	defaultCrossSellSpent = 100.0
	defaultUpsellSpent    = 500.0
	defaultNurtureMaxFreq = 1

	defaultSilenceWindowDays  = 30
	defaultMaxItems           = 3
	defaultCandidatesPerMatch = 3
)

func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Affinity:   defaultWAffinity,
			Popularity: defaultWPopularity,
			Profit:     defaultWProfit,
			Base:       defaultWBase,
		},

		BaseRebuy:     defaultBaseRebuy,
		BaseCrossSell: defaultBaseCrossSell,
		BaseUpsell:    defaultBaseUpsell,
		BaseWinback:   defaultBaseWinback,
		BaseNurture:   defaultBaseNurture,

		RebuyDays:      defaultRebuyDays,
		WinbackDays:    defaultWinbackDays,
		CrossSellSpent: defaultCrossSellSpent,
		UpsellSpent:    defaultUpsellSpent,
		NurtureMaxFreq: defaultNurtureMaxFreq,

		SilenceWindowDays:  defaultSilenceWindowDays,
		SilenceCheck:       true,
		MaxItems:           defaultMaxItems,
		CandidatesPerMatch: defaultCandidatesPerMatch,
	}
}

// BaseScore returns the per-scenario base constant.
func (cfg Config) BaseScore(scenario string) float64 {
	switch scenario {
	case domain.ScenarioRebuy:
		return cfg.BaseRebuy
	case domain.ScenarioCrossSell:
		return cfg.BaseCrossSell
	case domain.ScenarioUpsell:
		return cfg.BaseUpsell
	case domain.ScenarioWinback:
		return cfg.BaseWinback
	case domain.ScenarioNurture:
		return cfg.BaseNurture
	default:
		return 70.0
	}
}

// Hash fingerprints the active config so a run row records exactly which
// policy produced it.
func (cfg Config) Hash() string {
	s := fmt.Sprintf("%+v", cfg)
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// read scoring config overrides from DB.
type ConfigRepository interface {
	GetConfig(ctx context.Context, profile string) (domain.RecoConfig, bool, error)
	UpsertConfig(ctx context.Context, cfg domain.RecoConfig) error
}

// loadConfig reads the named profile from the repo, falling back to the
// engine default for missing rows and zero-valued fields.
func (e *Engine) loadConfig(ctx context.Context, profile string) Config {
	if e.cfgRepo == nil {
		return e.defaultCfg
	}

	dbCfg, ok, err := e.cfgRepo.GetConfig(ctx, profile)
	if err != nil || !ok {
		return e.defaultCfg
	}

	// start from defaults to keep sane fallbacks for any missing fields
	cfg := e.defaultCfg

	if dbCfg.WAffinity > 0 {
		cfg.Weights.Affinity = dbCfg.WAffinity
	}
	if dbCfg.WPopularity > 0 {
		cfg.Weights.Popularity = dbCfg.WPopularity
	}
	if dbCfg.WProfit > 0 {
		cfg.Weights.Profit = dbCfg.WProfit
	}
	if dbCfg.WBase > 0 {
		cfg.Weights.Base = dbCfg.WBase
	}

	if dbCfg.BaseRebuy > 0 {
		cfg.BaseRebuy = dbCfg.BaseRebuy
	}
	if dbCfg.BaseCrossSell > 0 {
		cfg.BaseCrossSell = dbCfg.BaseCrossSell
	}
	if dbCfg.BaseUpsell > 0 {
		cfg.BaseUpsell = dbCfg.BaseUpsell
	}
	if dbCfg.BaseWinback > 0 {
		cfg.BaseWinback = dbCfg.BaseWinback
	}
	if dbCfg.BaseNurture > 0 {
		cfg.BaseNurture = dbCfg.BaseNurture
	}

	if dbCfg.RebuyDays > 0 {
		cfg.RebuyDays = dbCfg.RebuyDays
	}
	if dbCfg.WinbackDays > 0 {
		cfg.WinbackDays = dbCfg.WinbackDays
	}
	if dbCfg.CrossSellSpent > 0 {
		cfg.CrossSellSpent = dbCfg.CrossSellSpent
	}
	if dbCfg.UpsellSpent > 0 {
		cfg.UpsellSpent = dbCfg.UpsellSpent
	}
	if dbCfg.SilenceWindowDays > 0 {
		cfg.SilenceWindowDays = dbCfg.SilenceWindowDays
	}
	if dbCfg.MaxItems > 0 {
		cfg.MaxItems = dbCfg.MaxItems
	}
	if dbCfg.CandidatesPerMatch > 0 {
		cfg.CandidatesPerMatch = dbCfg.CandidatesPerMatch
	}

	return cfg
}
