package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder collects handler calls.
type recorder struct {
	mu    sync.Mutex
	calls [][]string
	ch    chan []string
	err   error
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan []string, 16)}
}

func (r *recorder) handle(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	err := r.err
	r.mu.Unlock()
	r.ch <- changed
	return err
}

func (r *recorder) wait(t *testing.T) []string {
	t.Helper()
	select {
	case got := <-r.ch:
		return got
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for handler")
		return nil
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]string{"a.json"}, 0, nil)
	assert.Error(t, err)

	_, err = New([]string{"", ""}, 0, newRecorder().handle)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestNew_DedupesDirs(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{filepath.Join(dir, "perks.json"), filepath.Join(dir, "selection.yaml"), ""}, 0, newRecorder().handle)
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, []string{dir}, w.Dirs())
	assert.Len(t, w.Files(), 2)
	assert.Equal(t, DefaultDebounce, w.debounceDur)
}

func TestWatcher_DebouncedRegeneration(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "perks.json")
	selectionPath := filepath.Join(dir, "selection.yaml")
	writeFile(t, catalogPath, "[]")
	writeFile(t, selectionPath, "items: []")

	rec := newRecorder()
	w, err := New([]string{catalogPath, selectionPath}, 50*time.Millisecond, rec.handle)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	assert.True(t, w.IsWatching())

	// A burst touching both files settles into one call.
	writeFile(t, catalogPath, `[{"perk":"A","rank":1,"min_level":2}]`)
	writeFile(t, selectionPath, "items: [{item: A, max_rank: 1, priority: 1}]")

	got := rec.wait(t)
	assert.Equal(t, []string{catalogPath, selectionPath}, got)

	w.Stop()
	assert.False(t, w.IsWatching())

	stats := w.GetStats()
	assert.GreaterOrEqual(t, stats.Events, 2)
	assert.Equal(t, 1, stats.Regenerations)
	assert.NotEmpty(t, stats.LastEventPath)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "perks.json")
	writeFile(t, watched, "[]")

	rec := newRecorder()
	w, err := New([]string{watched}, 20*time.Millisecond, rec.handle)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "notes.txt"), "unrelated")

	select {
	case got := <-rec.ch:
		t.Fatalf("unexpected handler call for %v", got)
	case <-time.After(300 * time.Millisecond):
	}
	assert.Zero(t, w.GetStats().Events)
}

func TestWatcher_HandlerErrorCounted(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "selection.yaml")
	writeFile(t, watched, "items: []")

	rec := newRecorder()
	rec.err = errors.New("bad selection")
	w, err := New([]string{watched}, 20*time.Millisecond, rec.handle)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	writeFile(t, watched, "items: [")
	rec.wait(t)
	w.Stop()

	stats := w.GetStats()
	assert.GreaterOrEqual(t, stats.Errors, 1)
	assert.Zero(t, stats.Regenerations)
}

func TestWatcher_Trigger(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "b.yaml")
	b := filepath.Join(dir, "a.json")

	rec := newRecorder()
	w, err := New([]string{a, b}, 0, rec.handle)
	require.NoError(t, err)
	defer w.Stop()

	w.Trigger(context.Background())
	assert.Equal(t, []string{b, a}, rec.wait(t))
	assert.Equal(t, 1, w.GetStats().Regenerations)
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	w, err := New([]string{filepath.Join(dir, "perks.json")}, 0, rec.handle)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, w.IsWatching, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Error(t, w.Start(context.Background()), "stopped watcher cannot restart")
}

func TestWatcher_StartMissingDir(t *testing.T) {
	rec := newRecorder()
	w, err := New([]string{filepath.Join(t.TempDir(), "missing", "perks.json")}, 0, rec.handle)
	require.NoError(t, err)

	err = w.Run(context.Background())
	assert.Error(t, err)
	assert.False(t, w.IsWatching())
}

func TestWatcher_StopIdempotent(t *testing.T) {
	rec := newRecorder()
	w, err := New([]string{filepath.Join(t.TempDir(), "perks.json")}, 0, rec.handle)
	require.NoError(t, err)
	w.Stop()
	w.Stop()
}
