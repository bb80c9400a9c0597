package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	textRule   = "+--------+----------------------+------+"
	textRow    = "| %-6s | %-20s | %-4s |\n"
	underlineN = 35
)

// Text is the plain report written by "export": title, stat distribution
// and a fixed-width table with one line per slot.
type Text struct{}

// Render implements Renderer.
func (Text) Render(w io.Writer, doc Document) error {
	if err := checkDoc(doc); err != nil {
		return err
	}
	l := doc.Labels.withDefaults()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", doc.Title)
	fmt.Fprintf(bw, "%s\n\n", strings.Repeat("=", underlineN))
	fmt.Fprintf(bw, "%s:\n", l.Stats)
	for _, dim := range doc.statDimensions() {
		fmt.Fprintf(bw, "  %s: %d\n", dim, doc.Stats[dim])
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, textRule)
	fmt.Fprintf(bw, textRow, l.Slot, l.Item, l.Rank)
	fmt.Fprintln(bw, textRule)
	for _, r := range doc.rows(false) {
		fmt.Fprintf(bw, textRow, r.slot, r.item, r.rank)
	}
	fmt.Fprintln(bw, textRule)

	return bw.Flush()
}
