package recommendation

import "sort"

// dedupeCandidates collapses a product that matched several scenarios into
// its single best-scoring entry so a customer never sees the same wine
// twice in one list. Ties resolve to the lexicographically first scenario.
func dedupeCandidates(cands []ScoredCandidate) []ScoredCandidate {
	best := map[string]ScoredCandidate{}
	for _, c := range cands {
		prev, ok := best[c.ProductKey]
		if !ok || c.FinalScore > prev.FinalScore ||
			(c.FinalScore == prev.FinalScore && c.Scenario < prev.Scenario) {
			best[c.ProductKey] = c
		}
	}

	out := make([]ScoredCandidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	return out
}

// rankAndDiversify orders candidates by final score (ties broken by product
// key ascending, so repeated runs produce identical orderings) and applies
// the family diversity constraint:
//
//   - the second pick must come from a different family than the first when
//     another family is available,
//   - no family may appear more than twice among selected items,
//   - skipped candidates backfill the tail so maxItems is reached whenever
//     enough candidates exist.
func rankAndDiversify(cands []ScoredCandidate, familyOf func(string) (string, bool), maxItems int) []ScoredCandidate {
	if maxItems <= 0 || len(cands) == 0 {
		return nil
	}

	sorted := make([]ScoredCandidate, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].FinalScore != sorted[j].FinalScore {
			return sorted[i].FinalScore > sorted[j].FinalScore
		}
		return sorted[i].ProductKey < sorted[j].ProductKey
	})

	var selected, skipped []ScoredCandidate
	famCount := map[string]int{}

	for _, c := range sorted {
		if len(selected) >= maxItems {
			break
		}

		fam, known := familyOf(c.ProductKey)
		if !known {
			selected = append(selected, c)
			continue
		}

		if len(selected) == 1 && famCount[fam] > 0 {
			// second slot must diversify
			skipped = append(skipped, c)
			continue
		}
		if famCount[fam] >= 2 {
			skipped = append(skipped, c)
			continue
		}

		selected = append(selected, c)
		famCount[fam]++
	}

	// backfill when diversity left slots empty
	for _, c := range skipped {
		if len(selected) >= maxItems {
			break
		}
		selected = append(selected, c)
	}

	return selected
}
