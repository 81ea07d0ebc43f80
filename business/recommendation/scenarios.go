package recommendation

import (
	"sort"
	"vintnercrm/domain"
)

// ScenarioMatch is one matched scenario with its candidate product keys.
// A customer can match several scenarios at once; matches are not exclusive.
type ScenarioMatch struct {
	Scenario   string
	Candidates []string
}

// Minimum catalog popularity (0-1) for a product to be proposed by a
// scenario. Keeps slow movers out of outbound campaigns.
const (
	rebuyMinPopularity     = 0.5
	crossSellMinPopularity = 0.4
	winbackMinPopularity   = 0.7
	nurtureMinPopularity   = 0.3
)

// MatchScenarios evaluates all five scenarios against the computed features
// and the raw order history. The returned slice is ordered deterministically
// (REBUY, CROSS_SELL, UPSELL, WINBACK, NURTURE); scenarios with no candidates
// are omitted.
func MatchScenarios(f CustomerFeatures, orders []domain.OrderLine, cat *catalogIndex, cfg Config) []ScenarioMatch {
	var out []ScenarioMatch

	if c := matchRebuy(f, orders, cat, cfg); len(c) > 0 {
		out = append(out, ScenarioMatch{Scenario: domain.ScenarioRebuy, Candidates: c})
	}
	if c := matchCrossSell(f, cat, cfg); len(c) > 0 {
		out = append(out, ScenarioMatch{Scenario: domain.ScenarioCrossSell, Candidates: c})
	}
	if c := matchUpsell(f, orders, cat, cfg); len(c) > 0 {
		out = append(out, ScenarioMatch{Scenario: domain.ScenarioUpsell, Candidates: c})
	}
	if c := matchWinback(f, cat, cfg); len(c) > 0 {
		out = append(out, ScenarioMatch{Scenario: domain.ScenarioWinback, Candidates: c})
	}
	if c := matchNurture(f, cat, cfg); len(c) > 0 {
		out = append(out, ScenarioMatch{Scenario: domain.ScenarioNurture, Candidates: c})
	}

	return out
}

// REBUY: products whose most recent purchase is RebuyDays or more in the
// past. Candidates are those same products, most recently bought first.
func matchRebuy(f CustomerFeatures, orders []domain.OrderLine, cat *catalogIndex, cfg Config) []string {
	lastBought := map[string]int{} // product key -> days since last purchase

	for _, ol := range orders {
		age := daysBetween(ol.OrderDate, f.AsOf)
		if prev, ok := lastBought[ol.ProductKey]; !ok || age < prev {
			lastBought[ol.ProductKey] = age
		}
	}

	type candidate struct {
		key string
		age int
	}
	var eligible []candidate

	for key, age := range lastBought {
		if age < cfg.RebuyDays {
			continue
		}
		p, ok := cat.byKey[key]
		if !ok || p.PopularityScore < rebuyMinPopularity {
			continue
		}
		eligible = append(eligible, candidate{key: key, age: age})
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].age != eligible[j].age {
			return eligible[i].age < eligible[j].age
		}
		return eligible[i].key < eligible[j].key
	})

	limit := cfg.CandidatesPerMatch
	if limit <= 0 {
		limit = defaultCandidatesPerMatch
	}
	keys := make([]string, 0, limit)
	for _, c := range eligible {
		keys = append(keys, c.key)
		if len(keys) >= limit {
			break
		}
	}
	return keys
}

// CROSS_SELL: spent enough and has not bought from every family yet.
// Candidates come from the unpurchased families, most popular first.
func matchCrossSell(f CustomerFeatures, cat *catalogIndex, cfg Config) []string {
	if f.TotalSpent < cfg.CrossSellSpent || len(f.FamilyShares) == 0 {
		return nil
	}
	if len(f.FamilyShares) >= len(cat.families) {
		return nil
	}

	var pool []domain.Product
	for _, fam := range cat.families {
		if _, bought := f.FamilyShares[fam]; bought {
			continue
		}
		for _, p := range cat.byFamily[fam] {
			if p.PopularityScore >= crossSellMinPopularity {
				pool = append(pool, p)
			}
		}
	}

	sortByPopularity(pool)
	return takeProducts(pool, cfg.CandidatesPerMatch)
}

// UPSELL: spent enough and a premium product exists in a family the customer
// already buys that they have not bought yet.
func matchUpsell(f CustomerFeatures, orders []domain.OrderLine, cat *catalogIndex, cfg Config) []string {
	if f.TotalSpent < cfg.UpsellSpent || len(f.FamilyShares) == 0 {
		return nil
	}

	owned := map[string]bool{}
	for _, ol := range orders {
		owned[ol.ProductKey] = true
	}

	var pool []domain.Product
	for fam := range f.FamilyShares {
		for _, p := range cat.byFamily[fam] {
			if p.IsPremium && !owned[p.ProductKey] {
				pool = append(pool, p)
			}
		}
	}

	sortByPopularity(pool)
	return takeProducts(pool, cfg.CandidatesPerMatch)
}

// WINBACK: inactive for WinbackDays or more but had purchased before.
// Candidates are the globally popular products.
func matchWinback(f CustomerFeatures, cat *catalogIndex, cfg Config) []string {
	if f.OrderCount < 1 || f.LastPurchase == nil || f.RecencyDays < cfg.WinbackDays {
		return nil
	}

	var pool []domain.Product
	for _, p := range cat.allByPopularity() {
		if p.PopularityScore >= winbackMinPopularity {
			pool = append(pool, p)
		}
	}

	return takeProducts(pool, cfg.CandidatesPerMatch)
}

// NURTURE: new or occasional customers. Candidates are a diverse spread, the
// best product of each family in turn. The original sampled at random; this
// must stay deterministic so repeated runs rank identically.
func matchNurture(f CustomerFeatures, cat *catalogIndex, cfg Config) []string {
	if f.OrderCount > cfg.NurtureMaxFreq {
		return nil
	}

	var pool []domain.Product
	for _, fam := range cat.families {
		for _, p := range cat.byFamily[fam] {
			if p.PopularityScore >= nurtureMinPopularity {
				pool = append(pool, p)
				break // one per family
			}
		}
	}

	sortByPopularity(pool)
	return takeProducts(pool, cfg.CandidatesPerMatch)
}

func sortByPopularity(pool []domain.Product) {
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].PopularityScore != pool[j].PopularityScore {
			return pool[i].PopularityScore > pool[j].PopularityScore
		}
		return pool[i].ProductKey < pool[j].ProductKey
	})
}

func takeProducts(pool []domain.Product, n int) []string {
	if n <= 0 {
		n = defaultCandidatesPerMatch
	}
	out := make([]string, 0, n)
	for _, p := range pool {
		out = append(out, p.ProductKey)
		if len(out) >= n {
			break
		}
	}
	return out
}
