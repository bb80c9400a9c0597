package catalog

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns the catalog item closest to name, if one is within edit
// distance. Matching is case-insensitive.
func (c *Catalog) Suggest(name string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", false
	}

	best := ""
	bestDist := -1
	for _, item := range c.items {
		cand := strings.ToLower(item)
		if cand == needle {
			return item, true
		}
		dist := levenshtein.ComputeDistance(needle, cand)
		if dist > distanceLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = item, dist
		}
	}
	return best, bestDist >= 0
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
