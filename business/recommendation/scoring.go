package recommendation

import "vintnercrm/domain"

// ScoredCandidate is the score breakdown for one (customer, product,
// scenario) triple. Ephemeral, created per scoring run.
type ScoredCandidate struct {
	CustomerCode string
	ProductKey   string
	Scenario     string

	AffinityScore   float64 // 0-100
	PopularityScore float64 // 0-100
	ProfitScore     float64 // 0-100
	BaseScore       float64 // per-scenario constant

	FinalScore float64 // weighted sum, clamped to [0,100]
}

// scoreCandidate computes the weighted score for one candidate. A product
// missing from the catalog yields a zero-score record instead of an error so
// one bad reference never fails the whole run.
func scoreCandidate(f CustomerFeatures, cat *catalogIndex, productKey, scenario string, cfg Config) ScoredCandidate {
	sc := ScoredCandidate{
		CustomerCode: f.CustomerCode,
		ProductKey:   productKey,
		Scenario:     scenario,
	}

	p, ok := cat.byKey[productKey]
	if !ok {
		return sc
	}

	sc.AffinityScore = affinityScore(f, p)
	sc.PopularityScore = clamp(p.PopularityScore*100, 0, 100)
	sc.ProfitScore = clamp(p.MarginPct, 0, 100)
	sc.BaseScore = cfg.BaseScore(scenario)

	w := cfg.Weights
	sc.FinalScore = clamp(
		w.Affinity*sc.AffinityScore+
			w.Popularity*sc.PopularityScore+
			w.Profit*sc.ProfitScore+
			w.Base*sc.BaseScore,
		0, 100,
	)

	return sc
}

// affinityScore measures how well the candidate fits the customer's
// purchase history: 50 neutral, plus up to 40 from the customer's spend
// share in the candidate's family, plus 10 when the product's price band
// matches the customer's budget tier. A customer with no history scores
// every product at the neutral 50.
func affinityScore(f CustomerFeatures, p domain.Product) float64 {
	if len(f.FamilyShares) == 0 {
		return 50.0
	}

	score := 50.0
	score += 40.0 * f.FamilyShares[p.Family]

	if p.PriceBand != "" && p.PriceBand == f.BudgetTier {
		score += 10.0
	}

	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
