package selection

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perkplan/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Entry{
		{Item: "Toughness", Rank: 1, MinSlot: 2},
		{Item: "Toughness", Rank: 2, MinSlot: 10},
		{Item: "Gunslinger", Rank: 1, MinSlot: 2},
	})
	require.NoError(t, err)
	return cat
}

func TestNew(t *testing.T) {
	sel, err := New(
		Entry{Item: "Toughness", MaxRank: 2, Priority: 1},
		Entry{Item: " Gunslinger ", MaxRank: 1, Priority: 3},
	)
	require.NoError(t, err)

	assert.Equal(t, 2, sel.Len())
	e, ok := sel.Get("Gunslinger")
	require.True(t, ok)
	assert.Equal(t, Entry{Item: "Gunslinger", MaxRank: 1, Priority: 3}, e)
	assert.Equal(t, "Toughness", sel.Entries()[0].Item)
}

func TestNew_Rejects(t *testing.T) {
	_, err := New(Entry{Item: "A", MaxRank: 1}, Entry{Item: "A", MaxRank: 2})
	assert.True(t, errors.Is(err, ErrDuplicateItem))

	_, err = New(Entry{Item: "A", MaxRank: 0})
	assert.True(t, errors.Is(err, ErrInvalidMaxRank))

	_, err = New(Entry{Item: "  ", MaxRank: 1})
	assert.True(t, errors.Is(err, ErrBadFlag))
}

func TestNilSelection(t *testing.T) {
	var sel *Selection
	assert.Equal(t, 0, sel.Len())
	assert.Nil(t, sel.Entries())
	_, ok := sel.Get("A")
	assert.False(t, ok)

	other, err := New(Entry{Item: "A", MaxRank: 1, Priority: 1})
	require.NoError(t, err)
	merged := sel.Merge(other)
	require.NotNil(t, merged)
	assert.Equal(t, other.Entries(), merged.Entries())
	assert.Equal(t, 0, sel.Merge(nil).Len())
}

func TestValidate_NilCatalog(t *testing.T) {
	sel, err := New(Entry{Item: "Toughness", MaxRank: 1, Priority: 1})
	require.NoError(t, err)
	assert.ErrorIs(t, sel.Validate(nil), ErrNoCatalog)
}

func TestValidate(t *testing.T) {
	cat := testCatalog(t)

	sel, err := New(Entry{Item: "Toughness", MaxRank: 1, Priority: 1})
	require.NoError(t, err)
	assert.NoError(t, sel.Validate(cat))

	sel, err = New(Entry{Item: "Toughnes", MaxRank: 1, Priority: 1})
	require.NoError(t, err)
	err = sel.Validate(cat)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownItem))

	var unknown *UnknownItemError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Toughnes", unknown.Item)
	assert.Equal(t, "Toughness", unknown.Suggestion)
	assert.Contains(t, err.Error(), `did you mean "Toughness"`)
}

func TestWarnings(t *testing.T) {
	cat := testCatalog(t)
	sel, err := New(
		Entry{Item: "Toughness", MaxRank: 6, Priority: 0},
		Entry{Item: "Gunslinger", MaxRank: 1, Priority: 5},
	)
	require.NoError(t, err)

	w := sel.Warnings(cat)
	assert.Equal(t, []string{
		"Toughness: max rank 6 exceeds 5",
		"Toughness: priority 0 outside 1..10",
		"Toughness: max rank 6 but catalog defines 2",
	}, w)
}

func TestMerge(t *testing.T) {
	base, err := New(Entry{Item: "A", MaxRank: 1, Priority: 1}, Entry{Item: "B", MaxRank: 1, Priority: 2})
	require.NoError(t, err)
	over, err := New(Entry{Item: "B", MaxRank: 3, Priority: 9}, Entry{Item: "C", MaxRank: 1, Priority: 1})
	require.NoError(t, err)

	got := base.Merge(over)
	assert.Equal(t, []Entry{
		{Item: "A", MaxRank: 1, Priority: 1},
		{Item: "B", MaxRank: 3, Priority: 9},
		{Item: "C", MaxRank: 1, Priority: 1},
	}, got.Entries())
	assert.Equal(t, 2, base.Len())
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    Entry
		wantErr bool
	}{
		{in: "Toughness", want: Entry{Item: "Toughness", MaxRank: 1, Priority: 1}},
		{in: "Toughness:2", want: Entry{Item: "Toughness", MaxRank: 2, Priority: 1}},
		{in: "Lone Wanderer:3:7", want: Entry{Item: "Lone Wanderer", MaxRank: 3, Priority: 7}},
		{in: ":2:1", wantErr: true},
		{in: "A:x", wantErr: true},
		{in: "A:1:y", wantErr: true},
		{in: "A:1:2:3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFlag(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrBadFlag))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selection.yaml")
	sel, err := New(Entry{Item: "Toughness", MaxRank: 2, Priority: 1})
	require.NoError(t, err)
	require.NoError(t, sel.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sel.Entries(), loaded.Entries())
}

func TestParse_JSON(t *testing.T) {
	sel, err := Parse([]byte(`{"items":[{"item":"A","max_rank":2,"priority":4}]}`))
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Item: "A", MaxRank: 2, Priority: 4}}, sel.Entries())
}
