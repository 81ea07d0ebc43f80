package recommendation

import (
	"time"
	"vintnercrm/domain"
)

// CustomerFeatures is the full feature snapshot for one customer at a given
// as-of date. Built fresh on every scoring run, never mutated afterwards.
type CustomerFeatures struct {
	CustomerCode string
	AsOf         time.Time

	OrderCount    int
	TotalSpent    float64
	AvgOrderValue float64

	FirstPurchase *time.Time
	LastPurchase  *time.Time
	RecencyDays   int // meaningful only when LastPurchase != nil

	RScore int // 1-5, 0 when no purchase history
	FScore int
	MScore int

	BudgetTier string

	// Spend share per product family, each in [0,1], summing to 1 when any
	// purchase exists. Drives the affinity score.
	FamilyShares map[string]float64

	DaysSinceLastContact *int
}

// ComputeFeatures derives RFM scores, budget tier and family preferences from
// the customer's order history. A customer with no orders gets a zero-history
// record, not an error.
func ComputeFeatures(customerCode string, orders []domain.OrderLine, lastContact *time.Time, asOf time.Time) CustomerFeatures {
	f := CustomerFeatures{
		CustomerCode: customerCode,
		AsOf:         asOf,
		BudgetTier:   domain.TierStandard,
		FamilyShares: map[string]float64{},
	}

	if lastContact != nil {
		days := daysBetween(*lastContact, asOf)
		f.DaysSinceLastContact = &days
	}

	if len(orders) == 0 {
		f.RScore = 0
		f.FScore = 0
		f.MScore = 0
		return f
	}

	var first, last time.Time

	for _, ol := range orders {
		f.OrderCount++
		f.TotalSpent += ol.AmountHT

		if first.IsZero() || ol.OrderDate.Before(first) {
			first = ol.OrderDate
		}
		if last.IsZero() || ol.OrderDate.After(last) {
			last = ol.OrderDate
		}
	}

	f.FirstPurchase = &first
	f.LastPurchase = &last
	f.AvgOrderValue = f.TotalSpent / float64(f.OrderCount)
	f.RecencyDays = daysBetween(last, asOf)

	f.RScore = recencyScore(f.RecencyDays)
	f.FScore = frequencyScore(f.OrderCount)
	f.MScore = monetaryScore(f.TotalSpent)
	f.BudgetTier = budgetTier(f.AvgOrderValue)

	return f
}

// WithFamilyShares fills the per-family spend distribution using the catalog
// to resolve each order line's product family.
func (f CustomerFeatures) WithFamilyShares(orders []domain.OrderLine, cat *catalogIndex) CustomerFeatures {
	familySpend := map[string]float64{}
	total := 0.0

	for _, ol := range orders {
		p, ok := cat.byKey[ol.ProductKey]
		if !ok || p.Family == "" {
			continue
		}
		familySpend[p.Family] += ol.AmountHT
		total += ol.AmountHT
	}

	shares := map[string]float64{}
	if total > 0 {
		for fam, spent := range familySpend {
			shares[fam] = spent / total
		}
	}

	f.FamilyShares = shares
	return f
}

// Recency score: <=30 days -> 5, 31-90 -> 4, 91-180 -> 3, 181-365 -> 2, >365 -> 1.
func recencyScore(days int) int {
	switch {
	case days <= 30:
		return 5
	case days <= 90:
		return 4
	case days <= 180:
		return 3
	case days <= 365:
		return 2
	default:
		return 1
	}
}

// Frequency score: >=10 orders -> 5, 5-9 -> 4, 2-4 -> 3, 1 -> 2, 0 -> 0.
func frequencyScore(count int) int {
	switch {
	case count >= 10:
		return 5
	case count >= 5:
		return 4
	case count >= 2:
		return 3
	case count == 1:
		return 2
	default:
		return 0
	}
}

// Monetary score: >=5000 -> 5, 2000-4999 -> 4, 500-1999 -> 3, 100-499 -> 2,
// >0 -> 1, 0 -> 0.
func monetaryScore(total float64) int {
	switch {
	case total >= 5000:
		return 5
	case total >= 2000:
		return 4
	case total >= 500:
		return 3
	case total >= 100:
		return 2
	case total > 0:
		return 1
	default:
		return 0
	}
}

// Budget tier bands on average order value, monotonic with the monetary score.
func budgetTier(avgOrderValue float64) string {
	switch {
	case avgOrderValue >= 500:
		return domain.TierLuxury
	case avgOrderValue >= 200:
		return domain.TierPremium
	case avgOrderValue >= 50:
		return domain.TierStandard
	default:
		return domain.TierBudget
	}
}

// InSilenceWindow reports whether the customer was contacted within the last
// `days` days relative to the feature snapshot's as-of date.
func (f CustomerFeatures) InSilenceWindow(days int) bool {
	return f.DaysSinceLastContact != nil && *f.DaysSinceLastContact < days
}

func daysBetween(from, to time.Time) int {
	d := int(to.Sub(from).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
