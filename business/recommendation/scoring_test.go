package recommendation

import (
	"math"
	"testing"
	"vintnercrm/domain"
)

func TestScoreCandidateExactBreakdown(t *testing.T) {
	cfg := DefaultConfig()
	cat := testCatalog()

	// single-family buyer, budget tier STANDARD matching ROUGE-01's price band
	orders := []domain.OrderLine{
		order("C001", "ROUGE-01", daysAgo(100), 60),
		order("C001", "ROUGE-01", daysAgo(50), 60),
	}
	f := ComputeFeatures("C001", orders, nil, testAsOf).WithFamilyShares(orders, cat)
	if f.BudgetTier != domain.TierStandard {
		t.Fatalf("BudgetTier = %s, want STANDARD", f.BudgetTier)
	}

	sc := scoreCandidate(f, cat, "ROUGE-01", domain.ScenarioRebuy, cfg)

	// affinity: 50 + 40*1.0 + 10 (band match) = 100
	if sc.AffinityScore != 100 {
		t.Fatalf("AffinityScore = %v, want 100", sc.AffinityScore)
	}
	if sc.PopularityScore != 80 {
		t.Fatalf("PopularityScore = %v, want 80", sc.PopularityScore)
	}
	if sc.ProfitScore != 30 {
		t.Fatalf("ProfitScore = %v, want 30", sc.ProfitScore)
	}
	if sc.BaseScore != 85 {
		t.Fatalf("BaseScore = %v, want 85", sc.BaseScore)
	}

	// 0.4*100 + 0.3*80 + 0.2*30 + 0.1*85 = 78.5
	if math.Abs(sc.FinalScore-78.5) > 1e-9 {
		t.Fatalf("FinalScore = %v, want 78.5", sc.FinalScore)
	}
}

func TestScoreCandidateReproducible(t *testing.T) {
	cfg := DefaultConfig()
	cat := testCatalog()

	orders := []domain.OrderLine{order("C001", "BLANC-01", daysAgo(30), 120)}
	f := ComputeFeatures("C001", orders, nil, testAsOf).WithFamilyShares(orders, cat)

	a := scoreCandidate(f, cat, "BULLE-01", domain.ScenarioCrossSell, cfg)
	b := scoreCandidate(f, cat, "BULLE-01", domain.ScenarioCrossSell, cfg)

	if a.FinalScore != b.FinalScore {
		t.Fatalf("score not reproducible: %v vs %v", a.FinalScore, b.FinalScore)
	}
}

func TestScoreCandidateMissingProduct(t *testing.T) {
	cfg := DefaultConfig()
	cat := testCatalog()

	orders := []domain.OrderLine{order("C001", "ROUGE-01", daysAgo(30), 120)}
	f := ComputeFeatures("C001", orders, nil, testAsOf).WithFamilyShares(orders, cat)

	sc := scoreCandidate(f, cat, "GHOST-99", domain.ScenarioRebuy, cfg)
	if sc.FinalScore != 0 || sc.AffinityScore != 0 || sc.BaseScore != 0 {
		t.Fatalf("missing product should zero-score, got %+v", sc)
	}
	if sc.ProductKey != "GHOST-99" {
		t.Fatalf("ProductKey = %s, want GHOST-99", sc.ProductKey)
	}
}

func TestAffinityScoreNoHistoryIsNeutral(t *testing.T) {
	cat := testCatalog()
	f := ComputeFeatures("C404", nil, nil, testAsOf)

	got := affinityScore(f, cat.byKey["ROUGE-01"])
	if got != 50 {
		t.Fatalf("affinity with no history = %v, want 50", got)
	}
}

func TestFinalScoreStaysInRange(t *testing.T) {
	cfg := DefaultConfig()
	cat := newCatalogIndex([]domain.Product{
		{ProductKey: "MAX-01", ProductName: "Max", Family: "ROUGE", PriceBand: "STANDARD", MarginPct: 999, PopularityScore: 5, IsActive: true},
	})

	orders := []domain.OrderLine{order("C001", "MAX-01", daysAgo(30), 60)}
	f := ComputeFeatures("C001", orders, nil, testAsOf).WithFamilyShares(orders, cat)

	sc := scoreCandidate(f, cat, "MAX-01", domain.ScenarioRebuy, cfg)
	if sc.FinalScore < 0 || sc.FinalScore > 100 {
		t.Fatalf("FinalScore %v out of [0,100]", sc.FinalScore)
	}
	if sc.PopularityScore != 100 || sc.ProfitScore != 100 {
		t.Fatalf("components not clamped: pop=%v profit=%v", sc.PopularityScore, sc.ProfitScore)
	}
}
