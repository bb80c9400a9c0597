package planner

import (
	"errors"
	"fmt"

	"perkplan/internal/catalog"
)

// ErrIncompletePlan reports assignments that do not cover the slot range
// exactly once in ascending order.
var ErrIncompletePlan = errors.New("plan does not cover slot range")

// Assignment is the decision for one slot. A nil Entry marks an empty slot.
type Assignment struct {
	Slot  int
	Entry *catalog.Entry
}

// IsEmpty reports whether nothing was assigned to the slot.
func (a Assignment) IsEmpty() bool {
	return a.Entry == nil
}

func (a Assignment) clone() Assignment {
	if a.Entry == nil {
		return a
	}
	e := a.Entry.Clone()
	return Assignment{Slot: a.Slot, Entry: &e}
}

// Plan is a total, ordered mapping from every slot of its range to an
// assignment. Plans are immutable.
type Plan struct {
	slots       SlotRange
	assignments []Assignment
}

// NewPlan rebuilds a Plan from stored assignments. They must list every slot
// of r once, ascending.
func NewPlan(r SlotRange, assignments []Assignment) (*Plan, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if len(assignments) != r.Len() {
		return nil, fmt.Errorf("%w: %d assignments for %d slots", ErrIncompletePlan, len(assignments), r.Len())
	}
	p := &Plan{slots: r, assignments: make([]Assignment, len(assignments))}
	for i, a := range assignments {
		if want := r.First + i; a.Slot != want {
			return nil, fmt.Errorf("%w: position %d has slot %d, want %d", ErrIncompletePlan, i, a.Slot, want)
		}
		p.assignments[i] = a.clone()
	}
	return p, nil
}

// Range returns the slot range the plan covers.
func (p *Plan) Range() SlotRange {
	return p.slots
}

// Len returns the number of slots.
func (p *Plan) Len() int {
	return len(p.assignments)
}

// At returns the assignment for slot.
func (p *Plan) At(slot int) (Assignment, bool) {
	if !p.slots.Contains(slot) {
		return Assignment{}, false
	}
	return p.assignments[slot-p.slots.First].clone(), true
}

// Slots returns every assignment in ascending slot order.
func (p *Plan) Slots() []Assignment {
	out := make([]Assignment, len(p.assignments))
	for i, a := range p.assignments {
		out[i] = a.clone()
	}
	return out
}

// Assigned returns only the non-empty assignments, ascending.
func (p *Plan) Assigned() []Assignment {
	var out []Assignment
	for _, a := range p.assignments {
		if !a.IsEmpty() {
			out = append(out, a.clone())
		}
	}
	return out
}

// EmptyCount returns the number of empty slots.
func (p *Plan) EmptyCount() int {
	n := 0
	for _, a := range p.assignments {
		if a.IsEmpty() {
			n++
		}
	}
	return n
}

// RanksFor returns the ranks assigned to item in slot order.
func (p *Plan) RanksFor(item string) []int {
	var out []int
	for _, a := range p.assignments {
		if a.Entry != nil && a.Entry.Item == item {
			out = append(out, a.Entry.Rank)
		}
	}
	return out
}

// ItemSummary aggregates one item's assignments.
type ItemSummary struct {
	Item      string
	Ranks     int
	FirstSlot int
	LastSlot  int
}

// Summary lists items in order of their first assignment.
func (p *Plan) Summary() []ItemSummary {
	var out []ItemSummary
	index := make(map[string]int)
	for _, a := range p.assignments {
		if a.Entry == nil {
			continue
		}
		i, ok := index[a.Entry.Item]
		if !ok {
			index[a.Entry.Item] = len(out)
			out = append(out, ItemSummary{Item: a.Entry.Item, FirstSlot: a.Slot})
			i = len(out) - 1
		}
		out[i].Ranks++
		out[i].LastSlot = a.Slot
	}
	return out
}
