package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perkplan/internal/catalog"
	"perkplan/internal/planner"
)

func testDoc(t *testing.T) Document {
	t.Helper()
	plan, err := planner.NewPlan(planner.SlotRange{First: 2, Last: 4}, []planner.Assignment{
		{Slot: 2, Entry: &catalog.Entry{Item: "Toughness", Rank: 1, MinSlot: 2}},
		{Slot: 3},
		{Slot: 4, Entry: &catalog.Entry{Item: "Lone Wanderer", Rank: 1, MinSlot: 1}},
	})
	require.NoError(t, err)
	return Document{
		Title: "Fallout 4 Perk Planner Output",
		Plan:  plan,
		Stats: planner.Stats{"S": 3, "P": 4, "E": 5, "C": 6, "I": 7, "A": 8, "L": 9},
	}
}

func TestText_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text{}.Render(&buf, testDoc(t)))

	want := `Fallout 4 Perk Planner Output
===================================

SPECIAL distribution:
  S: 3
  P: 4
  E: 5
  C: 6
  I: 7
  A: 8
  L: 9

+--------+----------------------+------+
| Level  | Perk                 | Rank |
+--------+----------------------+------+
| 2      | Toughness            | 1    |
| 3      | -                    | -    |
| 4      | Lone Wanderer        | 1    |
+--------+----------------------+------+
`
	assert.Equal(t, want, buf.String())
}

func TestText_MissingAndExtraStats(t *testing.T) {
	doc := testDoc(t)
	doc.Stats = planner.Stats{"S": 2, "Karma": 1}
	doc.Labels = Labels{Item: "Skill"}

	var buf bytes.Buffer
	require.NoError(t, Text{}.Render(&buf, doc))
	out := buf.String()

	assert.Contains(t, out, "  S: 2\n  P: 0\n")
	assert.Contains(t, out, "  L: 0\n  Karma: 1\n")
	assert.Contains(t, out, "| Level  | Skill                | Rank |")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON{}.Render(&buf, testDoc(t)))

	var got struct {
		Range planner.SlotRange `json:"range"`
		Slots []struct {
			Slot int     `json:"slot"`
			Item *string `json:"item"`
			Rank *int    `json:"rank"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, planner.SlotRange{First: 2, Last: 4}, got.Range)
	require.Len(t, got.Slots, 3)
	assert.Equal(t, "Toughness", *got.Slots[0].Item)
	assert.Nil(t, got.Slots[1].Item)
	assert.Nil(t, got.Slots[1].Rank)
	assert.Contains(t, buf.String(), `"item": null`)
}

func TestJSON_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, JSON{}.Render(&a, testDoc(t)))
	require.NoError(t, JSON{}.Render(&b, testDoc(t)))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestTable(t *testing.T) {
	light := LightTheme()
	var buf bytes.Buffer
	require.NoError(t, Table{Theme: &light}.Render(&buf, testDoc(t)))
	out := buf.String()

	assert.Contains(t, out, "Fallout 4 Perk Planner Output")
	assert.Contains(t, out, "Toughness")
	assert.Contains(t, out, "Lone Wanderer")
	assert.Contains(t, out, "2 assigned, 1 empty")
	assert.Contains(t, out, "Toughness 1 rank, level 2")
	assert.Contains(t, out, "Lone Wanderer 1 rank, level 4")

	var compact bytes.Buffer
	require.NoError(t, Table{Compact: true, Theme: &light}.Render(&compact, testDoc(t)))
	lines := strings.Split(strings.TrimSpace(compact.String()), "\n")
	for _, line := range lines {
		assert.False(t, strings.HasPrefix(line, " 3 "), "empty slot 3 should be omitted: %q", line)
	}
}

func TestMarkdown(t *testing.T) {
	doc := testDoc(t)
	doc.Plan, _ = planner.NewPlan(planner.SlotRange{First: 2, Last: 3}, []planner.Assignment{
		{Slot: 2, Entry: &catalog.Entry{Item: "A|B", Rank: 1, MinSlot: 2}},
		{Slot: 3},
	})

	var buf bytes.Buffer
	require.NoError(t, Markdown{}.Render(&buf, doc))
	want := "# Fallout 4 Perk Planner Output\n\n" +
		"**SPECIAL distribution:** S 3 P 4 E 5 C 6 I 7 A 8 L 9\n\n" +
		"| Level | Perk | Rank |\n" +
		"|---:|:---|---:|\n" +
		"| 2 | A\\|B | 1 |\n" +
		"| 3 | - | - |\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	require.NoError(t, Markdown{Compact: true}.Render(&buf, doc))
	assert.NotContains(t, buf.String(), "| 3 |")
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	r := Pretty{Style: "notty", Width: 100}
	require.NoError(t, r.Render(&buf, testDoc(t)))
	assert.Contains(t, buf.String(), "Toughness")
	assert.Contains(t, buf.String(), "Lone Wanderer")
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		r, err := ByName(name, Options{Style: "notty"})
		require.NoError(t, err, name)
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, testDoc(t)), name)
		assert.NotEmpty(t, buf.String(), name)
	}

	_, err := ByName("pdf", Options{})
	assert.True(t, errors.Is(err, ErrUnknownFormat))
	assert.Equal(t, []string{"json", "markdown", "pretty", "table", "text"}, Names())
}

func TestNilPlan(t *testing.T) {
	for _, name := range Names() {
		r, err := ByName(name, Options{})
		require.NoError(t, err)
		assert.Error(t, r.Render(&bytes.Buffer{}, Document{}), name)
	}
}

func TestRendererFunc(t *testing.T) {
	called := false
	var r Renderer = RendererFunc(func(_ io.Writer, doc Document) error {
		called = doc.Title == "x"
		return nil
	})
	require.NoError(t, r.Render(nil, Document{Title: "x"}))
	assert.True(t, called)
}

func TestTable_ItemSummaryFooter(t *testing.T) {
	plan, err := planner.NewPlan(planner.SlotRange{First: 2, Last: 11}, []planner.Assignment{
		{Slot: 2, Entry: &catalog.Entry{Item: "Toughness", Rank: 1, MinSlot: 2}},
		{Slot: 3}, {Slot: 4}, {Slot: 5}, {Slot: 6}, {Slot: 7}, {Slot: 8}, {Slot: 9},
		{Slot: 10, Entry: &catalog.Entry{Item: "Toughness", Rank: 2, MinSlot: 10}},
		{Slot: 11},
	})
	require.NoError(t, err)
	light := LightTheme()

	var buf bytes.Buffer
	require.NoError(t, Table{Compact: true, Theme: &light}.Render(&buf, Document{Plan: plan}))
	assert.Contains(t, buf.String(), "Toughness 2 ranks, levels 2-10")
}
