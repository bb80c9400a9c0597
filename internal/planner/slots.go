package planner

import (
	"errors"
	"fmt"

	"perkplan/internal/catalog"
)

// Default slot bounds: character levels 2 through 100.
const (
	DefaultFirstSlot = 2
	DefaultLastSlot  = 100
)

// Stat bounds of the reference domain.
const (
	StatMin     = 1
	StatMax     = 10
	StatDefault = 10
)

var (
	// ErrInvalidSlotRange reports First > Last.
	ErrInvalidSlotRange = errors.New("invalid slot range")
	// ErrInvalidStat reports a stat outside StatMin..StatMax.
	ErrInvalidStat = errors.New("stat out of range")
)

// SlotRange is an inclusive ascending range of slots.
type SlotRange struct {
	First int `json:"first" yaml:"first"`
	Last  int `json:"last" yaml:"last"`
}

// DefaultSlotRange returns levels 2..100.
func DefaultSlotRange() SlotRange {
	return SlotRange{First: DefaultFirstSlot, Last: DefaultLastSlot}
}

// Len returns the number of slots in the range.
func (r SlotRange) Len() int {
	if r.Last < r.First {
		return 0
	}
	return r.Last - r.First + 1
}

// Contains reports whether slot lies in the range.
func (r SlotRange) Contains(slot int) bool {
	return slot >= r.First && slot <= r.Last
}

// Validate rejects ranges with First > Last.
func (r SlotRange) Validate() error {
	if r.First > r.Last {
		return fmt.Errorf("%w: %d..%d", ErrInvalidSlotRange, r.First, r.Last)
	}
	return nil
}

func (r SlotRange) String() string {
	return fmt.Sprintf("%d..%d", r.First, r.Last)
}

// Stats maps a requirement dimension to the player's value.
type Stats map[string]int

// DefaultStats returns every SPECIAL dimension at StatDefault.
func DefaultStats() Stats {
	s := make(Stats, len(catalog.SpecialDimensions))
	for _, d := range catalog.SpecialDimensions {
		s[d] = StatDefault
	}
	return s
}

// Clone returns an independent copy.
func (s Stats) Clone() Stats {
	out := make(Stats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Validate checks every value lies within StatMin..StatMax.
func (s Stats) Validate() error {
	for _, d := range catalog.OrderDimensions(s.dimensions()) {
		if v := s[d]; v < StatMin || v > StatMax {
			return fmt.Errorf("%w: %s=%d (want %d..%d)", ErrInvalidStat, d, v, StatMin, StatMax)
		}
	}
	return nil
}

func (s Stats) dimensions() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	return out
}

// Dimensions returns the stat names in display order.
func (s Stats) Dimensions() []string {
	return catalog.OrderDimensions(s.dimensions())
}
