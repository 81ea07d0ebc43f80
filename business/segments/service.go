package segments

import (
	"context"
	"fmt"
	"sort"
	"time"
	"vintnercrm/business/recommendation"
	"vintnercrm/domain"
	"vintnercrm/pkg/logger"
)

// Segment labels derived from the RFM scores. One customer always lands in
// exactly one segment; rules are checked top to bottom.
const (
	SegmentVIP         = "VIP"
	SegmentLoyal       = "LOYAL"
	SegmentPromising   = "PROMISING"
	SegmentNew         = "NEW"
	SegmentAtRisk      = "AT_RISK"
	SegmentHibernating = "HIBERNATING"
	SegmentProspect    = "PROSPECT"
)

type ProfileRepository interface {
	Upsert(ctx context.Context, profile domain.CustomerProfile) error
	GetByCustomer(ctx context.Context, customerCode string) (domain.CustomerProfile, error)
	ListBySegment(ctx context.Context, segment string, limit, offset int) ([]domain.CustomerProfile, error)
	CountBySegment(ctx context.Context) (map[string]int64, error)
}

type Service struct {
	profileRepo ProfileRepository
}

func NewService(profileRepo ProfileRepository) *Service {
	return &Service{profileRepo: profileRepo}
}

// SegmentFor maps RFM scores to a segment label.
//
// A customer with no purchase history is a PROSPECT. A single recent order
// is NEW. From there recency and frequency decide: high on both is VIP,
// frequent but cooling is LOYAL or AT_RISK depending on recency, recent but
// infrequent is PROMISING, and everything stale is HIBERNATING.
func SegmentFor(rScore, fScore, mScore int) string {
	switch {
	case fScore == 0:
		return SegmentProspect
	case fScore == 2 && rScore >= 4:
		return SegmentNew
	case rScore >= 4 && fScore >= 4 && mScore >= 4:
		return SegmentVIP
	case fScore >= 4 && rScore >= 3:
		return SegmentLoyal
	case fScore >= 3 && rScore <= 2:
		return SegmentAtRisk
	case rScore >= 4:
		return SegmentPromising
	case rScore <= 2:
		return SegmentHibernating
	default:
		return SegmentPromising
	}
}

// SaveProfile persists the denormalized feature snapshot with its segment
// label. Satisfies the scoring engine's profile sink.
func (s *Service) SaveProfile(ctx context.Context, f recommendation.CustomerFeatures) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	segment := SegmentFor(f.RScore, f.FScore, f.MScore)

	top1, share1, top2, share2 := topFamilies(f.FamilyShares)

	profile := domain.CustomerProfile{
		CustomerCode:      f.CustomerCode,
		FirstPurchaseDate: f.FirstPurchase,
		LastPurchaseDate:  f.LastPurchase,
		RecencyDays:       f.RecencyDays,
		OrderCount:        f.OrderCount,
		TotalSpent:        f.TotalSpent,
		AvgOrderValue:     f.AvgOrderValue,
		RScore:            f.RScore,
		FScore:            f.FScore,
		MScore:            f.MScore,
		RFM:               fmt.Sprintf("%d%d%d", f.RScore, f.FScore, f.MScore),
		Segment:           segment,
		BudgetTier:        f.BudgetTier,
		TopFamily1:        top1,
		TopFamily1Share:   share1,
		TopFamily2:        top2,
		TopFamily2Share:   share2,
		FamilyDiversity:   diversity(f.FamilyShares),
		ComputedAt:        time.Now(),
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	logger.Debug("profile_saved", "customer", f.CustomerCode, "segment", segment, "rfm", profile.RFM)
	return nil
}

// GetProfile returns the latest stored profile for a customer.
func (s *Service) GetProfile(ctx context.Context, customerCode string) (domain.CustomerProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.CustomerProfile{}, fmt.Errorf("context error: %w", err)
	}
	profile, err := s.profileRepo.GetByCustomer(ctx, customerCode)
	if err != nil {
		return domain.CustomerProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// ListSegment pages through the customers of one segment.
func (s *Service) ListSegment(ctx context.Context, segment string, limit, offset int) ([]domain.CustomerProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	profiles, err := s.profileRepo.ListBySegment(ctx, segment, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list segment: %w", err)
	}
	return profiles, nil
}

// SegmentCounts returns the customer count per segment label.
func (s *Service) SegmentCounts(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	counts, err := s.profileRepo.CountBySegment(ctx)
	if err != nil {
		return nil, fmt.Errorf("count segments: %w", err)
	}
	return counts, nil
}

// topFamilies picks the two largest spend shares, ties broken alphabetically.
func topFamilies(shares map[string]float64) (top1 string, share1 float64, top2 string, share2 float64) {
	fams := make([]string, 0, len(shares))
	for fam := range shares {
		fams = append(fams, fam)
	}
	sort.Slice(fams, func(i, j int) bool {
		if shares[fams[i]] != shares[fams[j]] {
			return shares[fams[i]] > shares[fams[j]]
		}
		return fams[i] < fams[j]
	})

	if len(fams) > 0 {
		top1, share1 = fams[0], shares[fams[0]]
	}
	if len(fams) > 1 {
		top2, share2 = fams[1], shares[fams[1]]
	}
	return
}

// diversity is 1 minus the Herfindahl index of the spend shares: 0 for a
// single-family customer, approaching 1 as spend spreads across families.
func diversity(shares map[string]float64) float64 {
	if len(shares) == 0 {
		return 0
	}
	var h float64
	for _, s := range shares {
		h += s * s
	}
	d := 1 - h
	if d < 0 {
		return 0
	}
	return d
}
