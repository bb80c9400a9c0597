package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown renders the plan as a GitHub-flavoured markdown table.
type Markdown struct {
	Compact bool
}

// Render implements Renderer.
func (m Markdown) Render(w io.Writer, doc Document) error {
	if err := checkDoc(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, m.markdown(doc))
	return err
}

func (m Markdown) markdown(doc Document) string {
	l := doc.Labels.withDefaults()
	var sb strings.Builder

	if doc.Title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", doc.Title)
	}

	fmt.Fprintf(&sb, "**%s:**", l.Stats)
	for _, dim := range doc.statDimensions() {
		fmt.Fprintf(&sb, " %s %d", dim, doc.Stats[dim])
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "| %s | %s | %s |\n", l.Slot, l.Item, l.Rank)
	sb.WriteString("|---:|:---|---:|\n")
	for _, r := range doc.rows(m.Compact) {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", r.slot, escapeCell(r.item), r.rank)
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Pretty renders the markdown form through glamour for terminal display.
type Pretty struct {
	Markdown Markdown
	Style    string // glamour standard style; empty picks one from the terminal
	Width    int
}

// Render implements Renderer.
func (p Pretty) Render(w io.Writer, doc Document) error {
	if err := checkDoc(doc); err != nil {
		return err
	}

	width := p.Width
	if width <= 0 {
		width = 80
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if p.Style != "" {
		opts = append(opts, glamour.WithStandardStyle(p.Style))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := tr.Render(p.Markdown.markdown(doc))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
