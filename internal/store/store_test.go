package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"perkplan/internal/catalog"
	"perkplan/internal/logging"
	"perkplan/internal/planner"
	"perkplan/internal/selection"
)

// Tests use the pure-Go driver so they run without cgo.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history", "plans.db"), DriverPureGo)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePlan(t *testing.T) (*planner.Plan, []selection.Entry) {
	t.Helper()
	cat, err := catalog.New([]catalog.Entry{
		{Item: "Toughness", Rank: 1, MinSlot: 2, Requirement: map[string]int{"E": 1}},
		{Item: "Toughness", Rank: 2, MinSlot: 10, Requirement: map[string]int{"E": 1}},
		{Item: "Pickpocket", Rank: 1, MinSlot: 2},
	})
	require.NoError(t, err)
	entries := []selection.Entry{
		{Item: "Toughness", MaxRank: 2, Priority: 1},
		{Item: "Pickpocket", MaxRank: 1, Priority: 2},
	}
	sel, err := selection.New(entries...)
	require.NoError(t, err)
	plan, err := planner.Generate(cat, sel, planner.SlotRange{First: 2, Last: 12}, planner.DefaultStats())
	require.NoError(t, err)
	return plan, entries
}

// =============================================================================
// STORE CREATION AND LIFECYCLE TESTS
// =============================================================================

func TestOpen(t *testing.T) {
	s := newTestStore(t)
	assert.NotEmpty(t, s.Path())
	assert.Equal(t, DriverPureGo, s.Driver())

	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "plans.db"), "postgres")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestDataSource(t *testing.T) {
	dsn, err := dataSource("p.db", DriverCGO)
	require.NoError(t, err)
	assert.Equal(t, "p.db?_journal_mode=WAL&_busy_timeout=5000", dsn)

	dsn, err = dataSource("p.db", DriverPureGo)
	require.NoError(t, err)
	assert.Contains(t, dsn, "_pragma=busy_timeout(5000)")
}

func TestStore_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.db")
	plan, entries := samplePlan(t)

	s, err := Open(path, DriverPureGo)
	require.NoError(t, err)
	id, err := s.SavePlan(&Record{Title: "run", Plan: plan, Selection: entries})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, DriverPureGo)
	require.NoError(t, err)
	defer s.Close()
	rec, err := s.LoadPlan(id)
	require.NoError(t, err)
	assert.Equal(t, "run", rec.Title)
}

// =============================================================================
// PLAN OPERATION TESTS
// =============================================================================

func TestStore_PlanRoundTrip(t *testing.T) {
	s := newTestStore(t)
	plan, entries := samplePlan(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC)

	rec := &Record{
		CreatedAt: created,
		Title:     "Fallout 4 Perk Planner Output",
		Policy:    "always",
		Stats:     planner.Stats{"S": 3, "E": 7},
		Selection: entries,
		Plan:      plan,
	}
	id, err := s.SavePlan(rec)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.ID)

	got, err := s.LoadPlan(id)
	require.NoError(t, err)

	assert.True(t, got.CreatedAt.Equal(created))
	assert.Equal(t, rec.Title, got.Title)
	assert.Equal(t, rec.Policy, got.Policy)
	assert.Equal(t, rec.Stats, got.Stats)
	assert.Equal(t, entries, got.Selection)
	if diff := cmp.Diff(plan.Slots(), got.Plan.Slots()); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, plan.Range(), got.Plan.Range())
}

func TestStore_LoadPlan_Prefix(t *testing.T) {
	s := newTestStore(t)
	plan, _ := samplePlan(t)

	_, err := s.SavePlan(&Record{ID: "abc-111", Plan: plan})
	require.NoError(t, err)
	_, err = s.SavePlan(&Record{ID: "abc-222", Plan: plan})
	require.NoError(t, err)

	rec, err := s.LoadPlan("abc-1")
	require.NoError(t, err)
	assert.Equal(t, "abc-111", rec.ID)

	_, err = s.LoadPlan("abc")
	assert.ErrorIs(t, err, ErrAmbiguousID)

	_, err = s.LoadPlan("zzz")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LoadPlan("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PrefixIsLiteral(t *testing.T) {
	s := newTestStore(t)
	plan, _ := samplePlan(t)
	_, err := s.SavePlan(&Record{ID: "abc", Plan: plan})
	require.NoError(t, err)

	_, err = s.LoadPlan("_")
	assert.True(t, errors.Is(err, ErrNotFound), "underscore must not act as a wildcard")
}

func TestStore_LatestAndList(t *testing.T) {
	s := newTestStore(t)
	plan, _ := samplePlan(t)

	_, err := s.Latest()
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		_, err := s.SavePlan(&Record{ID: id, Title: id, CreatedAt: base.Add(time.Duration(i) * time.Hour), Plan: plan})
		require.NoError(t, err)
	}

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "third", latest.ID)

	all, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, 3, all[0].Assigned)
	assert.Equal(t, plan.Len()-3, all[0].Empty)
	assert.Equal(t, planner.SlotRange{First: 2, Last: 12}, all[0].Range)

	limited, err := s.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	plan, _ := samplePlan(t)
	id, err := s.SavePlan(&Record{Plan: plan})
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))
	_, err = s.LoadPlan(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(id), ErrNotFound)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_SaveNil(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SavePlan(nil)
	assert.Error(t, err)
	_, err = s.SavePlan(&Record{})
	assert.Error(t, err)
}

func TestStore_DuplicateIDRollsBack(t *testing.T) {
	s := newTestStore(t)
	plan, _ := samplePlan(t)
	_, err := s.SavePlan(&Record{ID: "dup", Plan: plan})
	require.NoError(t, err)
	_, err = s.SavePlan(&Record{ID: "dup", Plan: plan})
	assert.Error(t, err)

	rec, err := s.LoadPlan("dup")
	require.NoError(t, err)
	assert.Equal(t, plan.Len(), rec.Plan.Len())
}

func TestStore_FailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logging.InitializeWithCore(core, nil)
	t.Cleanup(logging.Reset)

	s := newTestStore(t)
	plan, _ := samplePlan(t)
	_, err := s.SavePlan(&Record{ID: "dup", Plan: plan})
	require.NoError(t, err)
	_, err = s.SavePlan(&Record{ID: "dup", Plan: plan})
	require.Error(t, err)

	failures := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, failures, 1)
	assert.Equal(t, "store", failures[0].LoggerName)
	assert.Contains(t, failures[0].Message, "save plan dup")

	require.NoError(t, s.Delete("dup"))
	assert.Equal(t, 1, logs.FilterMessageSnippet("deleted plan dup").Len())
}
