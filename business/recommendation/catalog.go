package recommendation

import (
	"sort"
	"vintnercrm/domain"
)

// catalogIndex is the in-memory view of the product catalog built once per
// run and shared read-only across customers.
type catalogIndex struct {
	byKey    map[string]domain.Product
	byFamily map[string][]domain.Product // sorted popularity desc, key asc
	families []string                    // sorted for deterministic iteration
}

func newCatalogIndex(products []domain.Product) *catalogIndex {
	idx := &catalogIndex{
		byKey:    make(map[string]domain.Product, len(products)),
		byFamily: map[string][]domain.Product{},
	}

	for _, p := range products {
		if !p.IsActive {
			continue
		}
		idx.byKey[p.ProductKey] = p
		if p.Family != "" {
			idx.byFamily[p.Family] = append(idx.byFamily[p.Family], p)
		}
	}

	for fam, list := range idx.byFamily {
		sort.Slice(list, func(i, j int) bool {
			if list[i].PopularityScore != list[j].PopularityScore {
				return list[i].PopularityScore > list[j].PopularityScore
			}
			return list[i].ProductKey < list[j].ProductKey
		})
		idx.byFamily[fam] = list
		idx.families = append(idx.families, fam)
	}
	sort.Strings(idx.families)

	return idx
}

func (idx *catalogIndex) familyOf(productKey string) (string, bool) {
	p, ok := idx.byKey[productKey]
	if !ok {
		return "", false
	}
	return p.Family, true
}

// allByPopularity returns the whole active catalog sorted popularity desc,
// key asc.
func (idx *catalogIndex) allByPopularity() []domain.Product {
	out := make([]domain.Product, 0, len(idx.byKey))
	for _, p := range idx.byKey {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PopularityScore != out[j].PopularityScore {
			return out[i].PopularityScore > out[j].PopularityScore
		}
		return out[i].ProductKey < out[j].ProductKey
	})
	return out
}
