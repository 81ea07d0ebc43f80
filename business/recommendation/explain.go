package recommendation

import (
	"fmt"
	"sort"
	"vintnercrm/domain"
)

// Explanation is the canned, human-readable justification attached to a
// recommendation. Pure templating: deterministic for identical inputs.
type Explanation struct {
	Title      string   `json:"title"`
	Reason     string   `json:"reason"`
	Components []string `json:"components"`
}

// Explain renders the scenario-specific template for one recommendation.
func Explain(scenario string, f CustomerFeatures, p domain.Product, found bool) Explanation {
	name := p.ProductName
	family := p.Family
	if !found || name == "" {
		name = "this wine"
	}
	if family == "" {
		family = "wine"
	}

	switch scenario {
	case domain.ScenarioRebuy:
		components := []string{fmt.Sprintf("You previously bought %s", name)}
		if f.LastPurchase != nil {
			components = append(components, fmt.Sprintf("Your last order was %d days ago", f.RecencyDays))
		}
		return Explanation{
			Title:      fmt.Sprintf("Get your favorite %s again", family),
			Reason:     fmt.Sprintf("You've purchased %s before and it's time for more!", name),
			Components: components,
		}

	case domain.ScenarioCrossSell:
		components := []string{}
		if fav := topFamily(f); fav != "" {
			components = append(components, fmt.Sprintf("Expand from %s to explore %s", fav, family))
		} else {
			components = append(components, fmt.Sprintf("Discover %s", family))
		}
		components = append(components, "Perfect complement to your collection")
		return Explanation{
			Title:      fmt.Sprintf("Explore a new style: %s", family),
			Reason:     fmt.Sprintf("Based on your preferences, you might enjoy %s.", name),
			Components: components,
		}

	case domain.ScenarioUpsell:
		return Explanation{
			Title:  fmt.Sprintf("Upgrade to %s", name),
			Reason: fmt.Sprintf("As a valued customer, we'd like to offer you %s - our premium selection.", name),
			Components: []string{
				"Experience premium quality",
				"Enhanced flavors and complexity",
			},
		}

	case domain.ScenarioWinback:
		return Explanation{
			Title:  "Come back and discover what's new",
			Reason: fmt.Sprintf("We'd love to welcome you back with %s.", name),
			Components: []string{
				"We've missed you!",
				fmt.Sprintf("Try %s - a customer favorite", name),
			},
		}

	case domain.ScenarioNurture:
		return Explanation{
			Title:  fmt.Sprintf("Expand your palate with %s", name),
			Reason: fmt.Sprintf("Discover %s - a great way to explore new flavors.", name),
			Components: []string{
				fmt.Sprintf("Perfect entry point to %s", family),
				"Great value and quality",
			},
		}

	default:
		return Explanation{
			Title:      "Recommended for you",
			Reason:     "Based on your preferences",
			Components: []string{"Carefully selected"},
		}
	}
}

// topFamily returns the family with the largest spend share, ties broken
// alphabetically so explanations stay stable between runs.
func topFamily(f CustomerFeatures) string {
	var best string
	var bestShare float64

	fams := make([]string, 0, len(f.FamilyShares))
	for fam := range f.FamilyShares {
		fams = append(fams, fam)
	}
	sort.Strings(fams)

	for _, fam := range fams {
		if share := f.FamilyShares[fam]; share > bestShare {
			best = fam
			bestShare = share
		}
	}
	return best
}
