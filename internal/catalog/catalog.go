// Package catalog holds the ordered collection of unlockable entries: one
// entry per rank of each named item, with its level gate and requirement
// data. A Catalog is immutable once built.
package catalog

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidEntry reports an entry with a missing name or out-of-range field.
	ErrInvalidEntry = errors.New("invalid catalog entry")
	// ErrDuplicateEntry reports a repeated (item, rank) pair.
	ErrDuplicateEntry = errors.New("duplicate catalog entry")
	// ErrNonContiguousRanks reports an item whose ranks are not 1..n.
	ErrNonContiguousRanks = errors.New("ranks are not contiguous from 1")
	// ErrEmptyCatalog reports a catalog without entries.
	ErrEmptyCatalog = errors.New("catalog is empty")
)

// Entry is one specific rank of one item.
type Entry struct {
	Item        string         `json:"perk" yaml:"perk"`
	Rank        int            `json:"rank" yaml:"rank"`
	MinSlot     int            `json:"min_level" yaml:"min_level"`
	Requirement map[string]int `json:"special,omitempty" yaml:"special,omitempty"`
}

// Key identifies an entry by item and rank.
type Key struct {
	Item string
	Rank int
}

// Key returns the (item, rank) pair of the entry.
func (e Entry) Key() Key {
	return Key{Item: e.Item, Rank: e.Rank}
}

// Clone returns a deep copy so callers never share the requirement map.
func (e Entry) Clone() Entry {
	out := e
	if e.Requirement != nil {
		out.Requirement = make(map[string]int, len(e.Requirement))
		for k, v := range e.Requirement {
			out.Requirement[k] = v
		}
	}
	return out
}

// EntryError describes why the entry at Index was rejected.
type EntryError struct {
	Index int
	Entry Entry
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d (%q rank %d): %v", e.Index, e.Entry.Item, e.Entry.Rank, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Catalog is an ordered, validated collection of entries.
type Catalog struct {
	entries []Entry
	items   []string         // first-seen order
	byItem  map[string][]int // indices into entries, catalog order
}

type options struct {
	allowDuplicates bool
}

// Option configures catalog construction.
type Option func(*options)

// AllowDuplicates accepts repeated (item, rank) pairs. Only the contiguity of
// the distinct ranks is checked then.
func AllowDuplicates() Option {
	return func(o *options) { o.allowDuplicates = true }
}

// New validates entries and builds a Catalog preserving their order.
func New(entries []Entry, opts ...Option) (*Catalog, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byItem:  make(map[string][]int),
	}
	seen := make(map[Key]bool, len(entries))

	for i, e := range entries {
		switch {
		case e.Item == "":
			return nil, &EntryError{Index: i, Entry: e, Err: fmt.Errorf("%w: empty item name", ErrInvalidEntry)}
		case e.Rank < 1:
			return nil, &EntryError{Index: i, Entry: e, Err: fmt.Errorf("%w: rank must be >= 1", ErrInvalidEntry)}
		case e.MinSlot < 1:
			return nil, &EntryError{Index: i, Entry: e, Err: fmt.Errorf("%w: min level must be >= 1", ErrInvalidEntry)}
		}
		if seen[e.Key()] && !o.allowDuplicates {
			return nil, &EntryError{Index: i, Entry: e, Err: ErrDuplicateEntry}
		}
		seen[e.Key()] = true

		if _, ok := c.byItem[e.Item]; !ok {
			c.items = append(c.items, e.Item)
		}
		c.byItem[e.Item] = append(c.byItem[e.Item], len(c.entries))
		c.entries = append(c.entries, e.Clone())
	}

	for _, item := range c.items {
		if err := c.checkContiguous(item); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) checkContiguous(item string) error {
	ranks := make(map[int]bool)
	for _, idx := range c.byItem[item] {
		ranks[c.entries[idx].Rank] = true
	}
	for r := 1; r <= len(ranks); r++ {
		if !ranks[r] {
			return fmt.Errorf("item %q: %w (missing rank %d)", item, ErrNonContiguousRanks, r)
		}
	}
	return nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// At returns the entry at catalog position i.
func (c *Catalog) At(i int) Entry {
	return c.entries[i]
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Clone()
	}
	return out
}

// Items returns item names in first-seen order.
func (c *Catalog) Items() []string {
	return append([]string(nil), c.items...)
}

// HasItem reports whether the catalog has at least one entry for item.
func (c *Catalog) HasItem(item string) bool {
	_, ok := c.byItem[item]
	return ok
}

// Ranks returns the entries of item sorted by rank (catalog order on ties).
func (c *Catalog) Ranks(item string) []Entry {
	idx := c.byItem[item]
	out := make([]Entry, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.entries[i].Clone())
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Rank < out[b].Rank })
	return out
}

// MaxRank returns the highest rank defined for item, or 0 if unknown.
func (c *Catalog) MaxRank(item string) int {
	top := 0
	for _, i := range c.byItem[item] {
		if r := c.entries[i].Rank; r > top {
			top = r
		}
	}
	return top
}
