// Package render formats a Plan for people and machines. Renderers only
// read the Plan; none of them mutate it or keep a reference after Render.
package render

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"perkplan/internal/catalog"
	"perkplan/internal/planner"
)

// ErrUnknownFormat is returned by ByName for an unregistered renderer.
var ErrUnknownFormat = errors.New("unknown output format")

// Labels names the columns and sections of rendered output.
type Labels struct {
	Slot        string
	Item        string
	Rank        string
	Stats       string
	Placeholder string
}

// DefaultLabels uses the character-level vocabulary of the perk planner.
func DefaultLabels() Labels {
	return Labels{
		Slot:        "Level",
		Item:        "Perk",
		Rank:        "Rank",
		Stats:       "SPECIAL distribution",
		Placeholder: "-",
	}
}

func (l Labels) withDefaults() Labels {
	d := DefaultLabels()
	if l.Slot == "" {
		l.Slot = d.Slot
	}
	if l.Item == "" {
		l.Item = d.Item
	}
	if l.Rank == "" {
		l.Rank = d.Rank
	}
	if l.Stats == "" {
		l.Stats = d.Stats
	}
	if l.Placeholder == "" {
		l.Placeholder = d.Placeholder
	}
	return l
}

// Document is everything a renderer needs.
type Document struct {
	Title  string
	Plan   *planner.Plan
	Stats  planner.Stats
	Labels Labels
}

// statDimensions lists the SPECIAL letters (always, as the report shows a
// full distribution) followed by any extra stat dimensions.
func (d Document) statDimensions() []string {
	names := append([]string(nil), catalog.SpecialDimensions...)
	for dim := range d.Stats {
		names = append(names, dim)
	}
	return catalog.OrderDimensions(names)
}

// row is the display form of one assignment.
type row struct {
	slot string
	item string
	rank string
}

func (d Document) rows(skipEmpty bool) []row {
	l := d.Labels.withDefaults()
	var out []row
	for _, a := range d.Plan.Slots() {
		if a.IsEmpty() {
			if skipEmpty {
				continue
			}
			out = append(out, row{slot: fmt.Sprint(a.Slot), item: l.Placeholder, rank: l.Placeholder})
			continue
		}
		out = append(out, row{slot: fmt.Sprint(a.Slot), item: a.Entry.Item, rank: fmt.Sprint(a.Entry.Rank)})
	}
	return out
}

// Renderer writes a Document to w.
type Renderer interface {
	Render(w io.Writer, doc Document) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(w io.Writer, doc Document) error

// Render calls f.
func (f RendererFunc) Render(w io.Writer, doc Document) error {
	return f(w, doc)
}

// Options tune renderers that support them.
type Options struct {
	Compact bool   // table/markdown: omit empty slots
	Style   string // pretty: glamour style name, empty for auto
	Width   int    // pretty: word wrap
}

// Factory builds a renderer from options.
type Factory func(opts Options) Renderer

var registry = map[string]Factory{
	"text": func(Options) Renderer { return Text{} },
	"table": func(o Options) Renderer {
		return Table{Compact: o.Compact}
	},
	"markdown": func(o Options) Renderer {
		return Markdown{Compact: o.Compact}
	},
	"pretty": func(o Options) Renderer {
		return Pretty{Markdown: Markdown{Compact: o.Compact}, Style: o.Style, Width: o.Width}
	},
	"json": func(Options) Renderer { return JSON{Indent: true} },
}

// ByName returns the renderer registered under name.
func ByName(name string, opts Options) (Renderer, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownFormat, name, Names())
	}
	return f(opts), nil
}

// Names lists registered renderer names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func checkDoc(doc Document) error {
	if doc.Plan == nil {
		return errors.New("render: nil plan")
	}
	return nil
}
