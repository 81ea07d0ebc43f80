package recommendation

import (
	"math"
	"testing"
	"time"
	"vintnercrm/domain"
)

var testAsOf = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return testAsOf.AddDate(0, 0, -n)
}

func order(customer, product string, date time.Time, amount float64) domain.OrderLine {
	return domain.OrderLine{
		CustomerCode: customer,
		ProductKey:   product,
		OrderDate:    date,
		DocRef:       "DOC-1",
		Qty:          1,
		AmountHT:     amount,
	}
}

func TestComputeFeaturesActiveBigSpender(t *testing.T) {
	// 12 orders, 6200 total, last one 20 days ago
	var orders []domain.OrderLine
	for i := 0; i < 11; i++ {
		orders = append(orders, order("C001", "ROUGE-01", daysAgo(300-20*i), 500))
	}
	orders = append(orders, order("C001", "ROUGE-01", daysAgo(20), 700))

	f := ComputeFeatures("C001", orders, nil, testAsOf)

	if f.OrderCount != 12 {
		t.Fatalf("OrderCount = %d, want 12", f.OrderCount)
	}
	if f.TotalSpent != 6200 {
		t.Fatalf("TotalSpent = %v, want 6200", f.TotalSpent)
	}
	if f.RecencyDays != 20 {
		t.Fatalf("RecencyDays = %d, want 20", f.RecencyDays)
	}
	if f.RScore != 5 || f.FScore != 5 || f.MScore != 5 {
		t.Fatalf("RFM = %d%d%d, want 555", f.RScore, f.FScore, f.MScore)
	}
	// avg 516.67 per order
	if f.BudgetTier != domain.TierLuxury {
		t.Fatalf("BudgetTier = %s, want LUXURY", f.BudgetTier)
	}
}

func TestComputeFeaturesNoHistory(t *testing.T) {
	f := ComputeFeatures("C404", nil, nil, testAsOf)

	if f.OrderCount != 0 || f.TotalSpent != 0 {
		t.Fatalf("expected zero history, got count=%d spent=%v", f.OrderCount, f.TotalSpent)
	}
	if f.RScore != 0 || f.FScore != 0 || f.MScore != 0 {
		t.Fatalf("RFM = %d%d%d, want 000", f.RScore, f.FScore, f.MScore)
	}
	if f.FirstPurchase != nil || f.LastPurchase != nil {
		t.Fatal("expected nil purchase dates")
	}
}

func TestRecencyScoreBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want int
	}{
		{0, 5}, {30, 5}, {31, 4}, {90, 4}, {91, 3}, {180, 3}, {181, 2}, {365, 2}, {366, 1},
	}
	for _, c := range cases {
		if got := recencyScore(c.days); got != c.want {
			t.Errorf("recencyScore(%d) = %d, want %d", c.days, got, c.want)
		}
	}
}

func TestFrequencyScoreBoundaries(t *testing.T) {
	cases := []struct {
		count int
		want  int
	}{
		{0, 0}, {1, 2}, {2, 3}, {4, 3}, {5, 4}, {9, 4}, {10, 5},
	}
	for _, c := range cases {
		if got := frequencyScore(c.count); got != c.want {
			t.Errorf("frequencyScore(%d) = %d, want %d", c.count, got, c.want)
		}
	}
}

func TestMonetaryScoreBoundaries(t *testing.T) {
	cases := []struct {
		total float64
		want  int
	}{
		{0, 0}, {50, 1}, {100, 2}, {499, 2}, {500, 3}, {1999, 3}, {2000, 4}, {5000, 5},
	}
	for _, c := range cases {
		if got := monetaryScore(c.total); got != c.want {
			t.Errorf("monetaryScore(%v) = %d, want %d", c.total, got, c.want)
		}
	}
}

func TestBudgetTierBands(t *testing.T) {
	cases := []struct {
		avg  float64
		want string
	}{
		{10, domain.TierBudget},
		{50, domain.TierStandard},
		{199, domain.TierStandard},
		{200, domain.TierPremium},
		{499, domain.TierPremium},
		{500, domain.TierLuxury},
	}
	for _, c := range cases {
		if got := budgetTier(c.avg); got != c.want {
			t.Errorf("budgetTier(%v) = %s, want %s", c.avg, got, c.want)
		}
	}
}

func TestFamilySharesSumToOne(t *testing.T) {
	cat := newCatalogIndex([]domain.Product{
		{ProductKey: "R1", ProductName: "Rouge", Family: "ROUGE", IsActive: true},
		{ProductKey: "B1", ProductName: "Blanc", Family: "BLANC", IsActive: true},
	})

	orders := []domain.OrderLine{
		order("C001", "R1", daysAgo(100), 300),
		order("C001", "B1", daysAgo(50), 100),
	}

	f := ComputeFeatures("C001", orders, nil, testAsOf).WithFamilyShares(orders, cat)

	if got := f.FamilyShares["ROUGE"]; math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("ROUGE share = %v, want 0.75", got)
	}
	if got := f.FamilyShares["BLANC"]; math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("BLANC share = %v, want 0.25", got)
	}

	var sum float64
	for _, s := range f.FamilyShares {
		sum += s
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("shares sum = %v, want 1", sum)
	}
}

func TestSilenceWindow(t *testing.T) {
	contacted := daysAgo(10)
	f := ComputeFeatures("C001", nil, &contacted, testAsOf)
	if !f.InSilenceWindow(30) {
		t.Fatal("contact 10 days ago should be inside a 30 day window")
	}

	contacted = daysAgo(30)
	f = ComputeFeatures("C001", nil, &contacted, testAsOf)
	if f.InSilenceWindow(30) {
		t.Fatal("contact exactly 30 days ago should be outside the window")
	}

	f = ComputeFeatures("C001", nil, nil, testAsOf)
	if f.InSilenceWindow(30) {
		t.Fatal("never contacted customers are never silenced")
	}
}
