// Package selection models the user's choices: which items are active, the
// highest rank to pursue for each, and their priority.
package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"perkplan/internal/catalog"
)

var (
	// ErrDuplicateItem reports a second entry for the same item.
	ErrDuplicateItem = errors.New("item selected more than once")
	// ErrInvalidMaxRank reports a cap below 1.
	ErrInvalidMaxRank = errors.New("max rank must be >= 1")
	// ErrUnknownItem reports an item the catalog does not define.
	ErrUnknownItem = errors.New("item not in catalog")
	// ErrBadFlag reports an unparsable NAME:MAXRANK:PRIORITY value.
	ErrBadFlag = errors.New("malformed selection")
	// ErrNoCatalog is returned when validating against a nil catalog.
	ErrNoCatalog = errors.New("no catalog to validate against")
)

// Slider bounds of the interactive planner. Values outside them are accepted
// but reported by Warnings.
const (
	MaxRankHint  = 5
	PriorityLow  = 1
	PriorityHigh = 10
)

// Entry is one activated item.
type Entry struct {
	Item     string `yaml:"item" json:"item"`
	MaxRank  int    `yaml:"max_rank" json:"max_rank"`
	Priority int    `yaml:"priority" json:"priority"`
}

// Selection is the set of active items, at most one entry per item.
type Selection struct {
	order   []string
	entries map[string]Entry
}

// New builds a Selection, rejecting duplicate items and caps below 1.
func New(entries ...Entry) (*Selection, error) {
	s := &Selection{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if err := s.add(e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Selection) add(e Entry) error {
	e.Item = strings.TrimSpace(e.Item)
	if e.Item == "" {
		return fmt.Errorf("%w: empty item name", ErrBadFlag)
	}
	if e.MaxRank < 1 {
		return fmt.Errorf("%q: %w (got %d)", e.Item, ErrInvalidMaxRank, e.MaxRank)
	}
	if _, ok := s.entries[e.Item]; ok {
		return fmt.Errorf("%q: %w", e.Item, ErrDuplicateItem)
	}
	s.entries[e.Item] = e
	s.order = append(s.order, e.Item)
	return nil
}

// Len returns the number of active items. A nil Selection is empty.
func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Get returns the entry for item.
func (s *Selection) Get(item string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	e, ok := s.entries[item]
	return e, ok
}

// Entries returns the entries in insertion order.
func (s *Selection) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, 0, len(s.order))
	for _, item := range s.order {
		out = append(out, s.entries[item])
	}
	return out
}

// Merge returns a new Selection where entries from other replace same-named
// entries of s; new items are appended. Either side may be nil.
func (s *Selection) Merge(other *Selection) *Selection {
	out := &Selection{entries: make(map[string]Entry, s.Len()+other.Len())}
	for _, e := range s.Entries() {
		out.entries[e.Item] = e
		out.order = append(out.order, e.Item)
	}
	for _, e := range other.Entries() {
		if _, ok := out.entries[e.Item]; !ok {
			out.order = append(out.order, e.Item)
		}
		out.entries[e.Item] = e
	}
	return out
}

// UnknownItemError names a selected item missing from the catalog and the
// closest catalog item, if any.
type UnknownItemError struct {
	Item       string
	Suggestion string
}

func (e *UnknownItemError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%q: %v (did you mean %q?)", e.Item, ErrUnknownItem, e.Suggestion)
	}
	return fmt.Sprintf("%q: %v", e.Item, ErrUnknownItem)
}

func (e *UnknownItemError) Unwrap() error { return ErrUnknownItem }

// Validate checks every selected item exists in cat. The first unknown item
// in insertion order is reported.
func (s *Selection) Validate(cat *catalog.Catalog) error {
	if cat == nil {
		return ErrNoCatalog
	}
	for _, e := range s.Entries() {
		if cat.HasItem(e.Item) {
			continue
		}
		suggestion, _ := cat.Suggest(e.Item)
		return &UnknownItemError{Item: e.Item, Suggestion: suggestion}
	}
	return nil
}

// Warnings lists values outside the interactive slider bounds, and caps
// above what the catalog defines for the item.
func (s *Selection) Warnings(cat *catalog.Catalog) []string {
	var out []string
	for _, e := range s.Entries() {
		if e.MaxRank > MaxRankHint {
			out = append(out, fmt.Sprintf("%s: max rank %d exceeds %d", e.Item, e.MaxRank, MaxRankHint))
		}
		if e.Priority < PriorityLow || e.Priority > PriorityHigh {
			out = append(out, fmt.Sprintf("%s: priority %d outside %d..%d", e.Item, e.Priority, PriorityLow, PriorityHigh))
		}
		if cat != nil {
			if top := cat.MaxRank(e.Item); top > 0 && e.MaxRank > top {
				out = append(out, fmt.Sprintf("%s: max rank %d but catalog defines %d", e.Item, e.MaxRank, top))
			}
		}
	}
	return out
}

// ParseFlag parses NAME[:MAXRANK[:PRIORITY]]. MAXRANK defaults to 1 and
// PRIORITY to 1, the slider defaults of the interactive planner.
func ParseFlag(value string) (Entry, error) {
	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return Entry{}, fmt.Errorf("%w: %q", ErrBadFlag, value)
	}
	e := Entry{Item: strings.TrimSpace(parts[0]), MaxRank: 1, Priority: 1}
	if e.Item == "" {
		return Entry{}, fmt.Errorf("%w: %q", ErrBadFlag, value)
	}
	if len(parts) > 1 {
		n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return Entry{}, fmt.Errorf("%w: max rank in %q", ErrBadFlag, value)
		}
		e.MaxRank = n
	}
	if len(parts) > 2 {
		n, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return Entry{}, fmt.Errorf("%w: priority in %q", ErrBadFlag, value)
		}
		e.Priority = n
	}
	return e, nil
}
