// Package session ties the configured inputs, the planner, the renderers
// and the plan history together for one CLI invocation or watch loop.
package session

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"perkplan/internal/catalog"
	"perkplan/internal/config"
	"perkplan/internal/logging"
	"perkplan/internal/planner"
	"perkplan/internal/render"
	"perkplan/internal/selection"
	"perkplan/internal/store"
)

// ErrNoPlan is returned by operations that need a generated plan before one exists.
var ErrNoPlan = errors.New("no plan generated yet")

// slowGenerate is the timer threshold above which a run is logged as a warning.
const slowGenerate = 250 * time.Millisecond

// Overrides carries command-line values that take precedence over the config.
type Overrides struct {
	Catalog   string
	Selection string
	Select    []string       // NAME[:MAXRANK[:PRIORITY]]
	Stats     map[string]int // per-dimension values
	From, To  int            // zero keeps the configured bound
	Policy    string
}

// Result is the outcome of one Generate call.
type Result struct {
	Plan     *planner.Plan
	Warnings []string
	Duration time.Duration
}

// Session holds the loaded inputs and the most recent plan.
type Session struct {
	cfg  *config.Config
	base string
	ov   Overrides

	mu        sync.RWMutex
	catalog   *catalog.Catalog
	selection *selection.Selection
	stats     planner.Stats
	slots     planner.SlotRange
	policy    string
	eligible  planner.Eligibility
	last      *planner.Plan

	store *store.Store
}

// New loads every input described by cfg and ov. Relative paths resolve
// against base.
func New(cfg *config.Config, base string, ov Overrides) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Session{cfg: cfg, base: base, ov: ov}

	s.policy = cfg.Policy.Eligibility
	if ov.Policy != "" {
		s.policy = ov.Policy
	}
	eligible, ok := planner.PolicyByName(s.policy)
	if !ok {
		return nil, fmt.Errorf("unknown eligibility policy %q", s.policy)
	}
	s.eligible = eligible

	s.slots = planner.SlotRange{First: cfg.Slots.First, Last: cfg.Slots.Last}
	if ov.From != 0 {
		s.slots.First = ov.From
	}
	if ov.To != 0 {
		s.slots.Last = ov.To
	}
	if err := s.slots.Validate(); err != nil {
		return nil, err
	}

	stats := planner.DefaultStats()
	for k, v := range cfg.Stats {
		stats[k] = v
	}
	for k, v := range ov.Stats {
		stats[k] = v
	}
	if err := stats.Validate(); err != nil {
		return nil, err
	}
	s.stats = stats

	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// CatalogPath returns the resolved catalog file path.
func (s *Session) CatalogPath() string {
	p := s.cfg.Catalog.Path
	if s.ov.Catalog != "" {
		p = s.ov.Catalog
	}
	return config.Resolve(s.base, p)
}

// SelectionPath returns the resolved selection file path, or "" if none is configured.
func (s *Session) SelectionPath() string {
	p := s.cfg.Selection.Path
	if s.ov.Selection != "" {
		p = s.ov.Selection
	}
	return config.Resolve(s.base, p)
}

// Reload re-reads the catalog and selection sources. On error the previously
// loaded inputs stay in place.
func (s *Session) Reload() error {
	timer := logging.StartTimer(logging.CategoryCatalog, "load inputs")
	defer timer.Stop()

	var opts []catalog.Option
	if s.cfg.Catalog.AllowDuplicates {
		opts = append(opts, catalog.AllowDuplicates())
	}
	cat, err := catalog.Load(s.CatalogPath(), opts...)
	if err != nil {
		return err
	}
	logging.Get(logging.CategoryCatalog).Info("loaded %d entries for %d items from %s", cat.Len(), len(cat.Items()), s.CatalogPath())

	sel, err := s.loadSelection()
	if err != nil {
		return err
	}
	logging.Get(logging.CategorySelection).Info("selection has %d items", sel.Len())

	s.mu.Lock()
	s.catalog = cat
	s.selection = sel
	s.mu.Unlock()
	return nil
}

// loadSelection merges, in increasing precedence, the selection file, the
// inline config items and the --select flags. A missing file is not an error
// when another source supplies items.
func (s *Session) loadSelection() (*selection.Selection, error) {
	var sel *selection.Selection

	if path := s.SelectionPath(); path != "" {
		fromFile, err := selection.Load(path)
		switch {
		case err == nil:
			sel = fromFile
		case errors.Is(err, fs.ErrNotExist):
			logging.Get(logging.CategorySelection).Debug("no selection file at %s", path)
		default:
			return nil, err
		}
	}

	inline := make([]selection.Entry, 0, len(s.cfg.Selection.Items))
	for _, it := range s.cfg.Selection.Items {
		inline = append(inline, selection.Entry{Item: it.Item, MaxRank: it.MaxRank, Priority: it.Priority})
	}
	fromConfig, err := selection.New(inline...)
	if err != nil {
		return nil, fmt.Errorf("config selection: %w", err)
	}
	sel = sel.Merge(fromConfig)

	flags := make([]selection.Entry, 0, len(s.ov.Select))
	for _, v := range s.ov.Select {
		e, err := selection.ParseFlag(v)
		if err != nil {
			return nil, err
		}
		flags = append(flags, e)
	}
	fromFlags, err := selection.New(flags...)
	if err != nil {
		return nil, fmt.Errorf("--select: %w", err)
	}
	return sel.Merge(fromFlags), nil
}

// Catalog returns the loaded catalog.
func (s *Session) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Selection returns the merged selection.
func (s *Session) Selection() *selection.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Stats returns a copy of the effective stats.
func (s *Session) Stats() planner.Stats {
	return s.stats.Clone()
}

// Slots returns the effective slot range.
func (s *Session) Slots() planner.SlotRange {
	return s.slots
}

// Policy returns the eligibility policy name.
func (s *Session) Policy() string {
	return s.policy
}

// Last returns the most recent plan, or nil.
func (s *Session) Last() *planner.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Validate checks the selection against the catalog and returns the
// non-fatal warnings.
func (s *Session) Validate() ([]string, error) {
	s.mu.RLock()
	cat, sel := s.catalog, s.selection
	s.mu.RUnlock()

	if sel.Len() == 0 {
		return nil, planner.ErrEmptySelection
	}
	if err := sel.Validate(cat); err != nil {
		return nil, err
	}
	return sel.Warnings(cat), nil
}

// Generate runs the planner on the current inputs and records the plan as
// the session's last plan.
func (s *Session) Generate() (*Result, error) {
	s.mu.RLock()
	cat, sel := s.catalog, s.selection
	s.mu.RUnlock()

	warnings := sel.Warnings(cat)
	for _, w := range warnings {
		logging.Get(logging.CategorySelection).Warn("%s", w)
	}

	observe := func(d planner.Decision) {
		if d.Chosen < 0 {
			return
		}
		c := d.Candidates[d.Chosen]
		logging.PlannerDebug("slot %d: %s rank %d (priority %d, %d candidates)", d.Slot, c.Key.Item, c.Key.Rank, c.Priority, len(d.Candidates))
	}

	timer := logging.StartTimer(logging.CategoryPlanner, "generate")
	plan, err := planner.Generate(cat, sel, s.slots, s.stats,
		planner.WithEligibility(s.eligible),
		planner.WithObserver(observe),
	)
	elapsed := timer.StopWithThreshold(slowGenerate)
	if err != nil {
		logging.Get(logging.CategoryPlanner).Error("generate failed: %v", err)
		return nil, err
	}

	logging.Planner("planned %s: %d assigned, %d empty, policy %s", s.slots, len(plan.Assigned()), plan.EmptyCount(), s.policy)

	s.mu.Lock()
	s.last = plan
	s.mu.Unlock()
	return &Result{Plan: plan, Warnings: warnings, Duration: elapsed}, nil
}

// Document wraps plan for rendering with the configured title and stats.
func (s *Session) Document(plan *planner.Plan) render.Document {
	return render.Document{
		Title: s.cfg.Output.Title,
		Plan:  plan,
		Stats: s.stats.Clone(),
	}
}

// RenderOptions returns the configured renderer options.
func (s *Session) RenderOptions() render.Options {
	return render.Options{
		Compact: s.cfg.Output.Compact,
		Style:   s.cfg.Output.Style,
	}
}

// Render writes plan to w in the named format.
func (s *Session) Render(w io.Writer, format string, opts render.Options, plan *planner.Plan) error {
	if plan == nil {
		return ErrNoPlan
	}
	r, err := render.ByName(format, opts)
	if err != nil {
		return err
	}
	timer := logging.StartTimer(logging.CategoryRender, "render "+format)
	defer timer.Stop()
	return r.Render(w, s.Document(plan))
}

// ExportPath returns the resolved export destination.
func (s *Session) ExportPath() string {
	return config.Resolve(s.base, s.cfg.Output.Path)
}

// Export writes the last plan as a text report to path, or to the configured
// export path when path is empty.
func (s *Session) Export(path string) (string, error) {
	plan := s.Last()
	if plan == nil {
		return "", ErrNoPlan
	}
	if path == "" {
		path = s.ExportPath()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := s.Render(f, "text", render.Options{}, plan); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	logging.Get(logging.CategoryRender).Info("exported plan to %s", path)
	return path, nil
}
