package render

import (
	"encoding/json"
	"io"

	"perkplan/internal/planner"
)

// JSON writes the plan as a machine-readable document. Empty slots carry
// null item and rank.
type JSON struct {
	Indent bool
}

type jsonSlot struct {
	Slot    int     `json:"slot"`
	Item    *string `json:"item"`
	Rank    *int    `json:"rank"`
	MinSlot *int    `json:"min_slot,omitempty"`
}

type jsonDoc struct {
	Title string            `json:"title,omitempty"`
	Range planner.SlotRange `json:"range"`
	Stats planner.Stats     `json:"stats,omitempty"`
	Slots []jsonSlot        `json:"slots"`
}

// Render implements Renderer.
func (j JSON) Render(w io.Writer, doc Document) error {
	if err := checkDoc(doc); err != nil {
		return err
	}
	out := jsonDoc{
		Title: doc.Title,
		Range: doc.Plan.Range(),
		Stats: doc.Stats,
		Slots: make([]jsonSlot, 0, doc.Plan.Len()),
	}
	for _, a := range doc.Plan.Slots() {
		s := jsonSlot{Slot: a.Slot}
		if !a.IsEmpty() {
			e := a.Entry
			s.Item, s.Rank, s.MinSlot = &e.Item, &e.Rank, &e.MinSlot
		}
		out.Slots = append(out.Slots, s)
	}

	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
