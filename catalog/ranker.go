package catalog

import (
	"sort"
	"strings"
)

// Rank scores products against the filters and returns a new slice sorted
// by score, highest first. Products with equal scores keep their order.
//
// Scoring: +2 when the brand matches exactly (case-insensitive), +1 for each
// feature keyword found in the description or feature list.
func Rank(products []Product, f Filters) []Product {
	ranked := make([]Product, len(products))
	copy(ranked, products)

	brand := strings.ToLower(f.Brand)
	for i := range ranked {
		p := &ranked[i]
		score := 0

		if brand != "" && p.Brand != "" && strings.ToLower(p.Brand) == brand {
			score += 2
		}

		if len(f.Features) > 0 {
			text := strings.ToLower(p.Description + " " + strings.Join(p.Features, " "))
			for _, feature := range f.Features {
				if feature != "" && strings.Contains(text, strings.ToLower(feature)) {
					score++
				}
			}
		}

		p.AIScore = score
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AIScore > ranked[j].AIScore
	})
	return ranked
}
