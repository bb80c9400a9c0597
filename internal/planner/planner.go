// Package planner assigns catalog entries to slots.
//
// Generate walks the slot range once, ascending. At each slot it collects
// the entries that are selected, within their item's cap, not yet used, the
// next rank of their item, gated at or below the slot and accepted by the
// eligibility policy. The winner minimises (priority, min slot, rank,
// catalog position). Choices are never revisited.
//
// Generate is pure: it does no I/O, keeps no state between calls and only
// reads its arguments, so it may be called from any goroutine as long as the
// inputs are not mutated concurrently.
package planner

import (
	"errors"
	"fmt"

	"perkplan/internal/catalog"
	"perkplan/internal/selection"
)

var (
	// ErrEmptySelection is returned when no item is active.
	ErrEmptySelection = errors.New("select at least one item")
	// ErrInvalidSelectionReference is returned when a selected item is not in
	// the catalog. The wrapped *selection.UnknownItemError names it.
	ErrInvalidSelectionReference = errors.New("selection references unknown item")
	// ErrNoCatalog is returned for a nil catalog.
	ErrNoCatalog = errors.New("no catalog")
)

// Candidate is an entry that was eligible at a slot.
type Candidate struct {
	Index    int // catalog position
	Key      catalog.Key
	Priority int
	MinSlot  int
}

// Decision describes how one slot was settled. Chosen is -1 for an empty slot,
// otherwise an index into Candidates.
type Decision struct {
	Slot       int
	Candidates []Candidate
	Chosen     int
}

type options struct {
	eligible Eligibility
	observe  func(Decision)
}

// Option configures Generate.
type Option func(*options)

// WithEligibility replaces the default AlwaysEligible policy.
func WithEligibility(e Eligibility) Option {
	return func(o *options) {
		if e != nil {
			o.eligible = e
		}
	}
}

// WithObserver registers fn to receive every slot decision, in slot order.
func WithObserver(fn func(Decision)) Option {
	return func(o *options) { o.observe = fn }
}

func (c Candidate) less(o Candidate) bool {
	if c.Priority != o.Priority {
		return c.Priority < o.Priority
	}
	if c.MinSlot != o.MinSlot {
		return c.MinSlot < o.MinSlot
	}
	if c.Key.Rank != o.Key.Rank {
		return c.Key.Rank < o.Key.Rank
	}
	return c.Index < o.Index
}

// Generate builds a Plan for slots. All validation happens before any
// allocation; on error no Plan is returned.
func Generate(cat *catalog.Catalog, sel *selection.Selection, slots SlotRange, stats Stats, opts ...Option) (*Plan, error) {
	o := options{eligible: AlwaysEligible}
	for _, opt := range opts {
		opt(&o)
	}

	if sel.Len() == 0 {
		return nil, ErrEmptySelection
	}
	if cat == nil {
		return nil, ErrNoCatalog
	}
	if err := slots.Validate(); err != nil {
		return nil, err
	}
	if err := sel.Validate(cat); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSelectionReference, err)
	}

	progress := make(map[string]int, sel.Len())
	used := make(map[catalog.Key]bool)
	plan := &Plan{slots: slots, assignments: make([]Assignment, 0, slots.Len())}

	for slot := slots.First; slot <= slots.Last; slot++ {
		var candidates []Candidate
		best := -1
		for i := 0; i < cat.Len(); i++ {
			e := cat.At(i)
			choice, ok := sel.Get(e.Item)
			if !ok || e.Rank > choice.MaxRank {
				continue
			}
			if used[e.Key()] || progress[e.Item] != e.Rank-1 {
				continue
			}
			if e.MinSlot > slot || !o.eligible(e.Requirement, stats) {
				continue
			}
			c := Candidate{Index: i, Key: e.Key(), Priority: choice.Priority, MinSlot: e.MinSlot}
			candidates = append(candidates, c)
			if best < 0 || c.less(candidates[best]) {
				best = len(candidates) - 1
			}
		}

		a := Assignment{Slot: slot}
		if best >= 0 {
			winner := cat.At(candidates[best].Index).Clone()
			used[winner.Key()] = true
			progress[winner.Item] = winner.Rank
			a.Entry = &winner
		}
		plan.assignments = append(plan.assignments, a)

		if o.observe != nil {
			o.observe(Decision{Slot: slot, Candidates: candidates, Chosen: best})
		}
	}
	return plan, nil
}
