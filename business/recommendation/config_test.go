package recommendation

import (
	"context"
	"errors"
	"testing"
	"vintnercrm/domain"
)

type fakeConfigRepo struct {
	cfg   domain.RecoConfig
	found bool
	err   error
}

func (r *fakeConfigRepo) GetConfig(_ context.Context, _ string) (domain.RecoConfig, bool, error) {
	return r.cfg, r.found, r.err
}

func (r *fakeConfigRepo) UpsertConfig(_ context.Context, _ domain.RecoConfig) error {
	return nil
}

func engineWithConfigRepo(repo ConfigRepository) *Engine {
	return NewEngine(nil, nil, nil, nil, nil, repo, DefaultConfig(), 1)
}

func TestLoadConfigMissingRowFallsBackToDefaults(t *testing.T) {
	e := engineWithConfigRepo(&fakeConfigRepo{found: false})

	cfg := e.loadConfig(context.Background(), "default")
	if cfg != DefaultConfig() {
		t.Fatalf("missing row must yield defaults, got %+v", cfg)
	}
}

func TestLoadConfigRepoErrorFallsBackToDefaults(t *testing.T) {
	e := engineWithConfigRepo(&fakeConfigRepo{err: errors.New("db down")})

	cfg := e.loadConfig(context.Background(), "default")
	if cfg != DefaultConfig() {
		t.Fatalf("repo error must yield defaults, got %+v", cfg)
	}
}

func TestLoadConfigPartialWeightOverrideKeepsOtherWeights(t *testing.T) {
	e := engineWithConfigRepo(&fakeConfigRepo{
		found: true,
		cfg:   domain.RecoConfig{Profile: "default", WAffinity: 0.5},
	})

	cfg := e.loadConfig(context.Background(), "default")
	if cfg.Weights.Affinity != 0.5 {
		t.Fatalf("Affinity = %v, want 0.5", cfg.Weights.Affinity)
	}
	if cfg.Weights.Popularity != defaultWPopularity ||
		cfg.Weights.Profit != defaultWProfit ||
		cfg.Weights.Base != defaultWBase {
		t.Fatalf("unset weights must keep defaults, got %+v", cfg.Weights)
	}
}

func TestLoadConfigThresholdOverrides(t *testing.T) {
	e := engineWithConfigRepo(&fakeConfigRepo{
		found: true,
		cfg: domain.RecoConfig{
			Profile:     "default",
			RebuyDays:   60,
			MaxItems:    5,
			BaseWinback: 72,
		},
	})

	cfg := e.loadConfig(context.Background(), "default")
	if cfg.RebuyDays != 60 {
		t.Fatalf("RebuyDays = %d, want 60", cfg.RebuyDays)
	}
	if cfg.MaxItems != 5 {
		t.Fatalf("MaxItems = %d, want 5", cfg.MaxItems)
	}
	if cfg.BaseWinback != 72 {
		t.Fatalf("BaseWinback = %v, want 72", cfg.BaseWinback)
	}
	if cfg.WinbackDays != defaultWinbackDays {
		t.Fatalf("WinbackDays = %d, want default %d", cfg.WinbackDays, defaultWinbackDays)
	}
}
