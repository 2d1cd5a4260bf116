package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misscatmint/kzkitty/model"
)

type fakeSource struct {
	mu   sync.Mutex
	maps []model.MapRecord
	err  error
}

func (f *fakeSource) Maps(ctx context.Context) ([]model.MapRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.MapRecord, len(f.maps))
	copy(out, f.maps)
	return out, nil
}

func (f *fakeSource) set(maps []model.MapRecord, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maps, f.err = maps, err
}

func testMaps() []model.MapRecord {
	return []model.MapRecord{
		{ID: 1, Name: "kz_Lionharder", Tier: 7, VnlTier: 9, VnlProTier: 10},
		{ID: 2, Name: "kz_apricity", Tier: 3, VnlTier: 4, VnlProTier: 4},
		{ID: 3, Name: "bkz_apex", Tier: 4, VnlTier: 5, VnlProTier: 5},
	}
}

func newTestCatalog(t *testing.T, source MapSource) (*Catalog, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c, err := Init(db, source)
	require.NoError(t, err)
	return c, db
}

func TestRefreshAndLookup(t *testing.T) {
	t.Parallel()
	source := &fakeSource{maps: testMaps()}
	c, _ := newTestCatalog(t, source)

	assert.Equal(t, 0, c.Count())
	assert.Nil(t, c.Lookup("kz_lionharder"))

	result := c.Refresh(context.Background())
	assert.Equal(t, Updated, result.Status)
	assert.Equal(t, 3, result.Count)
	assert.False(t, result.RefreshedAt.IsZero())

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		lower := c.Lookup("kz_lionharder")
		mixed := c.Lookup("Kz_Lionharder")
		require.NotNil(t, lower)
		assert.Equal(t, lower, mixed)
		assert.Equal(t, "kz_Lionharder", lower.Name)
	})

	t.Run("lookup miss is nil", func(t *testing.T) {
		assert.Nil(t, c.Lookup("kz_nonexistent"))
	})
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	t.Parallel()
	source := &fakeSource{maps: testMaps()}
	c, _ := newTestCatalog(t, source)

	first := c.Refresh(context.Background())
	require.Equal(t, Updated, first.Status)

	source.set(nil, errors.New("upstream down"))
	result := c.Refresh(context.Background())
	assert.Equal(t, Stale, result.Status)
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, first.RefreshedAt, result.RefreshedAt)
	assert.NotNil(t, c.Lookup("kz_apricity"), "previous snapshot still served")
}

func TestRefreshIsIdempotent(t *testing.T) {
	t.Parallel()
	source := &fakeSource{maps: testMaps()}
	c, _ := newTestCatalog(t, source)

	for i := 0; i < 3; i++ {
		result := c.Refresh(context.Background())
		require.Equal(t, Updated, result.Status)
		require.Equal(t, 3, result.Count)
	}
	assert.Equal(t, 3, c.Count())
}

func TestRefreshRemovesAbsentMaps(t *testing.T) {
	t.Parallel()
	source := &fakeSource{maps: testMaps()}
	c, _ := newTestCatalog(t, source)
	c.Refresh(context.Background())

	source.set(testMaps()[:1], nil)
	result := c.Refresh(context.Background())
	assert.Equal(t, Updated, result.Status)
	assert.Equal(t, 1, c.Count())
	assert.Nil(t, c.Lookup("kz_apricity"), "maps absent from the new snapshot are gone")
}

func TestPersistenceAcrossRestart(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlx.Connect("sqlite3", dbPath)
	require.NoError(t, err)

	source := &fakeSource{maps: testMaps()}
	c, err := Init(db, source)
	require.NoError(t, err)
	first := c.Refresh(context.Background())
	require.Equal(t, Updated, first.Status)
	require.NoError(t, db.Close())

	db2, err := sqlx.Connect("sqlite3", dbPath)
	require.NoError(t, err)
	defer db2.Close()

	c2, err := Init(db2, source)
	require.NoError(t, err)
	assert.Equal(t, 3, c2.Count())
	assert.NotNil(t, c2.Lookup("bkz_apex"))
	assert.Equal(t, first.RefreshedAt.Truncate(time.Second).UTC(), c2.RefreshedAt().Truncate(time.Second).UTC())
}

func TestSuggest(t *testing.T) {
	t.Parallel()
	source := &fakeSource{maps: testMaps()}
	c, _ := newTestCatalog(t, source)
	c.Refresh(context.Background())

	t.Run("prefix match, lexicographic order", func(t *testing.T) {
		matches := c.Suggest("KZ_", 25)
		require.Len(t, matches, 2)
		assert.Equal(t, "kz_apricity", matches[0].Name)
		assert.Equal(t, "kz_Lionharder", matches[1].Name)
	})

	t.Run("limit respected", func(t *testing.T) {
		matches := c.Suggest("", 2)
		assert.Len(t, matches, 2)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, c.Suggest("xc_", 25))
	})
}

func TestConcurrentLookupDuringRefresh(t *testing.T) {
	t.Parallel()
	source := &fakeSource{maps: testMaps()}
	c, _ := newTestCatalog(t, source)
	c.Refresh(context.Background())

	// Readers must always see a complete snapshot: either all three maps
	// or, after the swap to the shrunk set, exactly one.
	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				s := c.load()
				n := len(s.names)
				if n != 3 && n != 1 {
					t.Errorf("observed partial snapshot of %d maps", n)
					return
				}
				if n == 3 && s.byName["bkz_apex"] == nil {
					t.Error("full snapshot is missing a map")
					return
				}
			}
		}()
	}

	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			source.set(testMaps()[:1], nil)
		} else {
			source.set(testMaps(), nil)
		}
		c.Refresh(context.Background())
	}
	close(done)
	wg.Wait()
}
