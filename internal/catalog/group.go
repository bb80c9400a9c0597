package catalog

import "sort"

// SpecialDimensions is the canonical order of the reference requirement
// dimensions (Strength, Perception, Endurance, Charisma, Intelligence,
// Agility, Luck).
var SpecialDimensions = []string{"S", "P", "E", "C", "I", "A", "L"}

// OrderDimensions sorts dimension names: the SPECIAL letters first in their
// canonical order, then everything else alphabetically. Duplicates are dropped.
func OrderDimensions(names []string) []string {
	rank := make(map[string]int, len(SpecialDimensions))
	for i, d := range SpecialDimensions {
		rank[d] = i
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		ra, oka := rank[out[a]]
		rb, okb := rank[out[b]]
		switch {
		case oka && okb:
			return ra < rb
		case oka != okb:
			return oka
		default:
			return out[a] < out[b]
		}
	})
	return out
}

// GroupItem is an item listed under a dimension, with the threshold taken
// from the first catalog entry of that item mentioning the dimension.
type GroupItem struct {
	Item      string
	Threshold int
}

// Group lists the items gated on one requirement dimension.
type Group struct {
	Dimension string
	Items     []GroupItem
}

// GroupByDimension buckets items by the requirement dimensions they mention.
// Items appear once per dimension, in first-seen catalog order.
func (c *Catalog) GroupByDimension() []Group {
	var dims []string
	for _, e := range c.entries {
		for d := range e.Requirement {
			dims = append(dims, d)
		}
	}

	var groups []Group
	for _, d := range OrderDimensions(dims) {
		g := Group{Dimension: d}
		seen := make(map[string]bool)
		for _, e := range c.entries {
			v, ok := e.Requirement[d]
			if !ok || seen[e.Item] {
				continue
			}
			seen[e.Item] = true
			g.Items = append(g.Items, GroupItem{Item: e.Item, Threshold: v})
		}
		groups = append(groups, g)
	}
	return groups
}
