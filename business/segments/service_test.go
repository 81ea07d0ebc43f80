package segments

import (
	"context"
	"math"
	"testing"
	"time"
	"vintnercrm/business/recommendation"
	"vintnercrm/domain"
)

func TestSegmentFor(t *testing.T) {
	cases := []struct {
		name    string
		r, f, m int
		want    string
	}{
		{"no history", 0, 0, 0, SegmentProspect},
		{"one recent order", 5, 2, 1, SegmentNew},
		{"top scores", 5, 5, 5, SegmentVIP},
		{"frequent and recent but modest spend", 4, 4, 3, SegmentLoyal},
		{"frequent but lapsed", 2, 4, 4, SegmentAtRisk},
		{"recent but occasional", 5, 3, 2, SegmentPromising},
		{"stale single buyer", 1, 2, 1, SegmentHibernating},
		{"middle of the road", 3, 3, 3, SegmentPromising},
	}

	for _, c := range cases {
		if got := SegmentFor(c.r, c.f, c.m); got != c.want {
			t.Errorf("%s: SegmentFor(%d,%d,%d) = %s, want %s", c.name, c.r, c.f, c.m, got, c.want)
		}
	}
}

type fakeProfileRepo struct {
	saved []domain.CustomerProfile
}

func (r *fakeProfileRepo) Upsert(_ context.Context, profile domain.CustomerProfile) error {
	r.saved = append(r.saved, profile)
	return nil
}

func (r *fakeProfileRepo) GetByCustomer(_ context.Context, code string) (domain.CustomerProfile, error) {
	for _, p := range r.saved {
		if p.CustomerCode == code {
			return p, nil
		}
	}
	return domain.CustomerProfile{}, nil
}

func (r *fakeProfileRepo) ListBySegment(_ context.Context, segment string, _, _ int) ([]domain.CustomerProfile, error) {
	var out []domain.CustomerProfile
	for _, p := range r.saved {
		if p.Segment == segment {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) CountBySegment(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, p := range r.saved {
		counts[p.Segment]++
	}
	return counts, nil
}

func TestSaveProfile(t *testing.T) {
	repo := &fakeProfileRepo{}
	svc := NewService(repo)

	last := time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC)
	f := recommendation.CustomerFeatures{
		CustomerCode:  "C001",
		OrderCount:    12,
		TotalSpent:    6200,
		AvgOrderValue: 516.67,
		LastPurchase:  &last,
		RecencyDays:   20,
		RScore:        5,
		FScore:        5,
		MScore:        5,
		BudgetTier:    domain.TierLuxury,
		FamilyShares:  map[string]float64{"ROUGE": 0.6, "BLANC": 0.3, "BULLES": 0.1},
	}

	if err := svc.SaveProfile(context.Background(), f); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("saved %d profiles, want 1", len(repo.saved))
	}

	p := repo.saved[0]
	if p.RFM != "555" {
		t.Fatalf("RFM = %s, want 555", p.RFM)
	}
	if p.Segment != SegmentVIP {
		t.Fatalf("Segment = %s, want VIP", p.Segment)
	}
	if p.TopFamily1 != "ROUGE" || p.TopFamily2 != "BLANC" {
		t.Fatalf("top families = %s/%s, want ROUGE/BLANC", p.TopFamily1, p.TopFamily2)
	}
	if math.Abs(p.TopFamily1Share-0.6) > 1e-9 {
		t.Fatalf("top family share = %v, want 0.6", p.TopFamily1Share)
	}

	// 1 - (0.36 + 0.09 + 0.01) = 0.54
	if math.Abs(p.FamilyDiversity-0.54) > 1e-9 {
		t.Fatalf("diversity = %v, want 0.54", p.FamilyDiversity)
	}
}

func TestTopFamiliesTieBreaksAlphabetically(t *testing.T) {
	top1, _, top2, _ := topFamilies(map[string]float64{"ROUGE": 0.5, "BLANC": 0.5})
	if top1 != "BLANC" || top2 != "ROUGE" {
		t.Fatalf("tie order = %s/%s, want BLANC/ROUGE", top1, top2)
	}
}

func TestDiversitySingleFamilyIsZero(t *testing.T) {
	if d := diversity(map[string]float64{"ROUGE": 1}); d != 0 {
		t.Fatalf("single family diversity = %v, want 0", d)
	}
	if d := diversity(nil); d != 0 {
		t.Fatalf("empty diversity = %v, want 0", d)
	}
}
