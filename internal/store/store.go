// Package store persists generated plans in a SQLite history database.
// Both the cgo driver (mattn/go-sqlite3, "sqlite3") and the pure-Go driver
// (modernc.org/sqlite, "sqlite") are registered; callers choose one by name.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"perkplan/internal/catalog"
	"perkplan/internal/logging"
	"perkplan/internal/planner"
	"perkplan/internal/selection"
)

// Supported driver names.
const (
	DriverCGO    = "sqlite3"
	DriverPureGo = "sqlite"
)

var (
	// ErrNotFound reports a plan ID with no stored plan.
	ErrNotFound = errors.New("plan not found")
	// ErrAmbiguousID reports an ID prefix matching more than one plan.
	ErrAmbiguousID = errors.New("plan id prefix is ambiguous")
	// ErrUnknownDriver reports a driver name other than sqlite3 or sqlite.
	ErrUnknownDriver = errors.New("unknown sqlite driver")
)

// Record is a stored plan with the inputs that produced it.
type Record struct {
	ID        string
	CreatedAt time.Time
	Title     string
	Policy    string
	Stats     planner.Stats
	Selection []selection.Entry
	Plan      *planner.Plan
}

// Summary is a history listing row.
type Summary struct {
	ID        string
	CreatedAt time.Time
	Title     string
	Range     planner.SlotRange
	Assigned  int
	Empty     int
}

// Store manages the plan history database.
type Store struct {
	db     *sql.DB
	dbPath string
	driver string
	mu     sync.RWMutex
}

// Open creates or opens the history database at path using driver.
// An empty driver selects the cgo driver.
func Open(path, driver string) (*Store, error) {
	if driver == "" {
		driver = DriverCGO
	}
	dsn, err := dataSource(path, driver)
	if err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, dbPath: path, driver: driver}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Get(logging.CategoryStore).Debug("opened plan history %s (driver %s)", path, driver)
	return store, nil
}

func dataSource(path, driver string) (string, error) {
	switch driver {
	case DriverCGO:
		return path + "?_journal_mode=WAL&_busy_timeout=5000", nil
	case DriverPureGo:
		return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Driver returns the database/sql driver name in use.
func (s *Store) Driver() string {
	return s.driver
}

// initSchema creates the database schema.
func (s *Store) initSchema() error {
	schema := `
	-- One row per generated plan
	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		policy TEXT NOT NULL DEFAULT '',
		first_slot INTEGER NOT NULL,
		last_slot INTEGER NOT NULL,
		stats_json TEXT,
		selection_json TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_plans_created ON plans(created_at);

	-- One row per slot; item is NULL for empty slots
	CREATE TABLE IF NOT EXISTS plan_slots (
		plan_id TEXT NOT NULL,
		slot INTEGER NOT NULL,
		item TEXT,
		rank INTEGER,
		min_slot INTEGER,
		requirement_json TEXT,
		PRIMARY KEY (plan_id, slot),
		FOREIGN KEY (plan_id) REFERENCES plans(id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PLAN OPERATIONS
// =============================================================================

// SavePlan stores rec and returns its ID. A missing ID or timestamp is filled in.
func (s *Store) SavePlan(rec *Record) (string, error) {
	if rec == nil || rec.Plan == nil {
		return "", errors.New("nothing to save: plan is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.savePlanLocked(rec); err != nil {
		logging.StoreError("save plan %s: %v", rec.ID, err)
		return "", err
	}
	logging.Store("saved plan %s (%d slots)", rec.ID, rec.Plan.Len())
	return rec.ID, nil
}

func (s *Store) savePlanLocked(rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	statsJSON, err := json.Marshal(rec.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	selJSON, err := json.Marshal(rec.Selection)
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	r := rec.Plan.Range()
	if _, err := tx.Exec(`
		INSERT INTO plans (id, created_at, title, policy, first_slot, last_slot, stats_json, selection_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CreatedAt.UnixNano(), rec.Title, rec.Policy, r.First, r.Last,
		string(statsJSON), string(selJSON)); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO plan_slots (plan_id, slot, item, rank, min_slot, requirement_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare slot insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range rec.Plan.Slots() {
		var item, req sql.NullString
		var rank, minSlot sql.NullInt64
		if !a.IsEmpty() {
			item = sql.NullString{String: a.Entry.Item, Valid: true}
			rank = sql.NullInt64{Int64: int64(a.Entry.Rank), Valid: true}
			minSlot = sql.NullInt64{Int64: int64(a.Entry.MinSlot), Valid: true}
			if len(a.Entry.Requirement) > 0 {
				b, err := json.Marshal(a.Entry.Requirement)
				if err != nil {
					return fmt.Errorf("failed to encode requirement: %w", err)
				}
				req = sql.NullString{String: string(b), Valid: true}
			}
		}
		if _, err := stmt.Exec(rec.ID, a.Slot, item, rank, minSlot, req); err != nil {
			return fmt.Errorf("failed to save slot %d: %w", a.Slot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plan: %w", err)
	}
	return nil
}

// LoadPlan retrieves the plan with the given ID or unique ID prefix.
func (s *Store) LoadPlan(id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fullID, err := s.resolveID(id)
	if err != nil {
		return nil, err
	}
	return s.loadLocked(fullID)
}

// Latest returns the most recently saved plan.
func (s *Store) Latest() (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id string
	err := s.db.QueryRow(`SELECT id FROM plans ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest plan: %w", err)
	}
	return s.loadLocked(id)
}

// List returns up to limit plan summaries, newest first. limit <= 0 lists all.
func (s *Store) List(limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT p.id, p.created_at, p.title, p.first_slot, p.last_slot,
			(SELECT COUNT(*) FROM plan_slots ps WHERE ps.plan_id = p.id AND ps.item IS NOT NULL)
		FROM plans p
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var created int64
		if err := rows.Scan(&sum.ID, &created, &sum.Title, &sum.Range.First, &sum.Range.Last, &sum.Assigned); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		sum.CreatedAt = time.Unix(0, created)
		sum.Empty = sum.Range.Len() - sum.Assigned
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes a plan and its slots.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fullID, err := s.resolveID(id)
	if err != nil {
		return err
	}
	if err := s.deleteLocked(fullID); err != nil {
		logging.StoreError("delete plan %s: %v", fullID, err)
		return err
	}
	logging.Store("deleted plan %s", fullID)
	return nil
}

func (s *Store) deleteLocked(fullID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM plan_slots WHERE plan_id = ?`, fullID); err != nil {
		return fmt.Errorf("failed to delete slots: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM plans WHERE id = ?`, fullID); err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	return tx.Commit()
}

// Count returns the number of stored plans.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM plans`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) resolveID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrNotFound
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(id)
	rows, err := s.db.Query(`SELECT id FROM plans WHERE id = ? OR id LIKE ? ESCAPE '\' LIMIT 3`, id, escaped+"%")
	if err != nil {
		return "", fmt.Errorf("failed to look up plan: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var got string
		if err := rows.Scan(&got); err != nil {
			return "", err
		}
		if got == id {
			return got, nil
		}
		ids = append(ids, got)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

func (s *Store) loadLocked(id string) (*Record, error) {
	rec := &Record{ID: id}
	var created int64
	var r planner.SlotRange
	var statsJSON, selJSON sql.NullString

	err := s.db.QueryRow(`
		SELECT created_at, title, policy, first_slot, last_slot, stats_json, selection_json
		FROM plans WHERE id = ?
	`, id).Scan(&created, &rec.Title, &rec.Policy, &r.First, &r.Last, &statsJSON, &selJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	rec.CreatedAt = time.Unix(0, created)

	if statsJSON.Valid && statsJSON.String != "null" {
		if err := json.Unmarshal([]byte(statsJSON.String), &rec.Stats); err != nil {
			return nil, fmt.Errorf("failed to decode stats: %w", err)
		}
	}
	if selJSON.Valid && selJSON.String != "null" {
		if err := json.Unmarshal([]byte(selJSON.String), &rec.Selection); err != nil {
			return nil, fmt.Errorf("failed to decode selection: %w", err)
		}
	}

	rows, err := s.db.Query(`
		SELECT slot, item, rank, min_slot, requirement_json
		FROM plan_slots WHERE plan_id = ? ORDER BY slot
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots: %w", err)
	}
	defer rows.Close()

	assignments := make([]planner.Assignment, 0, r.Len())
	for rows.Next() {
		var a planner.Assignment
		var item, req sql.NullString
		var rank, minSlot sql.NullInt64
		if err := rows.Scan(&a.Slot, &item, &rank, &minSlot, &req); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		if item.Valid {
			e := catalog.Entry{Item: item.String, Rank: int(rank.Int64), MinSlot: int(minSlot.Int64)}
			if req.Valid {
				if err := json.Unmarshal([]byte(req.String), &e.Requirement); err != nil {
					return nil, fmt.Errorf("failed to decode requirement for slot %d: %w", a.Slot, err)
				}
			}
			a.Entry = &e
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	plan, err := planner.NewPlan(r, assignments)
	if err != nil {
		return nil, fmt.Errorf("stored plan %s is corrupt: %w", id, err)
	}
	rec.Plan = plan
	return rec, nil
}
