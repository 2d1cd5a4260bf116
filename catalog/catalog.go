package catalog

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/misscatmint/kzkitty/model"
)

// MapSource provides the full upstream map list. Satisfied by kz.Client.
type MapSource interface {
	Maps(ctx context.Context) ([]model.MapRecord, error)
}

// RefreshStatus reports what a Refresh call did.
type RefreshStatus int

const (
	// Updated means a new snapshot was fetched and published.
	Updated RefreshStatus = iota
	// Stale means the upstream fetch failed and the previous snapshot is
	// still being served.
	Stale
	// Skipped means another refresh was already in progress.
	Skipped
)

// RefreshResult summarizes a Refresh call.
type RefreshResult struct {
	Status      RefreshStatus
	Count       int
	RefreshedAt time.Time // last successful refresh
}

// snapshot is the immutable, atomically-published view of the map set.
// A refresh builds a complete new snapshot off to the side and publishes
// it in one store; readers never observe a partial state.
type snapshot struct {
	byName      map[string]*model.MapRecord // keyed by lowercase name
	names       []string                    // original case, sorted
	refreshedAt time.Time
}

// Catalog is the local registry of known maps, refreshed wholesale from
// the global API and persisted to sqlite so a restart starts with the last
// good snapshot.
type Catalog struct {
	db        *sqlx.DB
	source    MapSource
	current   atomic.Value // *snapshot
	refreshMu sync.Mutex   // serializes persistence; TryLock coalesces overlapping refreshes
}

// Init creates the catalog tables and loads the persisted snapshot.
func Init(db *sqlx.DB, source MapSource) (*Catalog, error) {
	schema := `CREATE TABLE IF NOT EXISTS maps (
        map_id INTEGER PRIMARY KEY,
        name TEXT NOT NULL UNIQUE,
        tier INTEGER NOT NULL,
        vnl_tier INTEGER NOT NULL,
        vnl_pro_tier INTEGER NOT NULL,
        filesize INTEGER NOT NULL DEFAULT 0
    );
    CREATE TABLE IF NOT EXISTS catalog_meta (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create catalog tables: %w", err)
	}

	c := &Catalog{db: db, source: source}
	if err := c.loadPersisted(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) loadPersisted() error {
	var records []model.MapRecord
	if err := c.db.Select(&records, `SELECT map_id, name, tier, vnl_tier, vnl_pro_tier, filesize FROM maps`); err != nil {
		return fmt.Errorf("failed to load persisted maps: %w", err)
	}

	refreshedAt := time.Time{}
	var stored string
	if err := c.db.Get(&stored, `SELECT value FROM catalog_meta WHERE key = 'refreshed_at'`); err == nil {
		if t, perr := time.Parse(time.RFC3339, stored); perr == nil {
			refreshedAt = t
		}
	}

	c.current.Store(buildSnapshot(records, refreshedAt))
	if len(records) > 0 {
		log.Printf("Loaded %d maps from local catalog (last refreshed %s)", len(records), refreshedAt.Format(time.RFC3339))
	}
	return nil
}

func buildSnapshot(records []model.MapRecord, refreshedAt time.Time) *snapshot {
	s := &snapshot{
		byName:      make(map[string]*model.MapRecord, len(records)),
		names:       make([]string, 0, len(records)),
		refreshedAt: refreshedAt,
	}
	for i := range records {
		r := &records[i]
		s.byName[strings.ToLower(r.Name)] = r
		s.names = append(s.names, r.Name)
	}
	sort.Slice(s.names, func(i, j int) bool {
		return strings.ToLower(s.names[i]) < strings.ToLower(s.names[j])
	})
	return s
}

func (c *Catalog) load() *snapshot {
	return c.current.Load().(*snapshot)
}

// Refresh fetches the full map list and atomically replaces the snapshot,
// persisting it in one transaction. On upstream failure the previous
// snapshot stays in place and the result reports Stale. Overlapping calls
// are skipped, not queued.
func (c *Catalog) Refresh(ctx context.Context) RefreshResult {
	if !c.refreshMu.TryLock() {
		prev := c.load()
		return RefreshResult{Status: Skipped, Count: len(prev.names), RefreshedAt: prev.refreshedAt}
	}
	defer c.refreshMu.Unlock()

	records, err := c.source.Maps(ctx)
	if err != nil {
		prev := c.load()
		log.Printf("Map catalog refresh failed, serving stale snapshot of %d maps: %v", len(prev.names), err)
		return RefreshResult{Status: Stale, Count: len(prev.names), RefreshedAt: prev.refreshedAt}
	}

	now := time.Now().UTC()
	if err := c.persist(records, now); err != nil {
		log.Printf("Could not persist map catalog: %v", err)
		// The in-memory snapshot is still good; serve it and retry
		// persistence on the next refresh.
	}

	c.current.Store(buildSnapshot(records, now))
	log.Printf("Map catalog refreshed with %d maps", len(records))
	return RefreshResult{Status: Updated, Count: len(records), RefreshedAt: now}
}

func (c *Catalog) persist(records []model.MapRecord, refreshedAt time.Time) error {
	tx, err := c.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin catalog transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM maps`); err != nil {
		return fmt.Errorf("failed to clear maps table: %w", err)
	}
	stmt, err := tx.Preparex(`INSERT INTO maps (map_id, name, tier, vnl_tier, vnl_pro_tier, filesize) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare map insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.Exec(r.ID, r.Name, r.Tier, r.VnlTier, r.VnlProTier, r.Filesize); err != nil {
			return fmt.Errorf("failed to insert map %s: %w", r.Name, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO catalog_meta (key, value) VALUES ('refreshed_at', ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value`, refreshedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to store refresh timestamp: %w", err)
	}
	return tx.Commit()
}

// Lookup returns the record for an exact, case-insensitive map name, or
// nil. An unknown map is not an error here; callers decide.
func (c *Catalog) Lookup(name string) *model.MapRecord {
	return c.load().byName[strings.ToLower(name)]
}

// Suggest returns up to limit records whose names start with the prefix,
// in lexicographic order. Computed fresh against the current snapshot.
func (c *Catalog) Suggest(prefix string, limit int) []*model.MapRecord {
	s := c.load()
	prefix = strings.ToLower(prefix)
	matches := make([]*model.MapRecord, 0, limit)
	for _, name := range s.names {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			matches = append(matches, s.byName[strings.ToLower(name)])
			if len(matches) == limit {
				break
			}
		}
	}
	return matches
}

// Count returns the number of maps in the current snapshot.
func (c *Catalog) Count() int {
	return len(c.load().names)
}

// RefreshedAt returns the time of the last successful refresh, zero when
// the catalog has never been refreshed.
func (c *Catalog) RefreshedAt() time.Time {
	return c.load().refreshedAt
}
