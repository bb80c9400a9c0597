package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"perkplan/internal/planner"
)

// Table renders a styled terminal preview of the plan.
type Table struct {
	Compact bool // omit empty slots
	Theme   *Theme
}

// Render implements Renderer.
func (t Table) Render(w io.Writer, doc Document) error {
	if err := checkDoc(doc); err != nil {
		return err
	}
	theme := DetectTheme()
	if t.Theme != nil {
		theme = *t.Theme
	}
	styles := NewStyles(lipgloss.NewRenderer(w), theme)
	l := doc.Labels.withDefaults()

	var sb strings.Builder
	if doc.Title != "" {
		sb.WriteString(styles.Title.Render(doc.Title))
		sb.WriteString("\n")
	}

	stats := make([]string, 0, len(doc.Stats))
	for _, dim := range doc.statDimensions() {
		stats = append(stats, fmt.Sprintf("%s %s", styles.Accent.Render(dim), styles.Muted.Render(fmt.Sprint(doc.Stats[dim]))))
	}
	sb.WriteString(styles.Muted.Render(l.Stats+":") + " " + strings.Join(stats, "  "))
	sb.WriteString("\n\n")

	headers := []string{l.Slot, l.Item, l.Rank}
	rows := doc.rows(t.Compact)

	// Calculate column widths
	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, cell := range []string{r.slot, r.item, r.rank} {
			if w := lipgloss.Width(cell); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}
	// Padding(0, 1) adds one cell each side
	for i := range colWidths {
		colWidths[i] += 2
	}

	sep := styles.Muted.Render("|")
	for i, h := range headers {
		sb.WriteString(styles.Header.Width(colWidths[i]).Render(h))
		if i < len(headers)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")

	totalWidth := len(headers) - 1
	for _, w := range colWidths {
		totalWidth += w
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", totalWidth)) + "\n")

	for _, r := range rows {
		cells := []string{r.slot, r.item, r.rank}
		for i, cell := range cells {
			style := styles.Body
			if cell == l.Placeholder {
				style = styles.Muted.Padding(0, 1)
			}
			sb.WriteString(style.Width(colWidths[i]).Render(cell))
			if i < len(cells)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\n%s\n", styles.Muted.Render(fmt.Sprintf("%d assigned, %d empty", doc.Plan.Len()-doc.Plan.EmptyCount(), doc.Plan.EmptyCount())))
	for _, s := range doc.Plan.Summary() {
		sb.WriteString(styles.Accent.Render(s.Item) + " " + styles.Muted.Render(summaryText(s)) + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// summaryText describes one item's footer line, e.g. "2 ranks, levels 2-10".
func summaryText(s planner.ItemSummary) string {
	if s.Ranks == 1 {
		return fmt.Sprintf("1 rank, level %d", s.FirstSlot)
	}
	return fmt.Sprintf("%d ranks, levels %d-%d", s.Ranks, s.FirstSlot, s.LastSlot)
}
