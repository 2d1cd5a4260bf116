package resolver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/misscatmint/kzkitty/catalog"
	"github.com/misscatmint/kzkitty/model"
	"github.com/misscatmint/kzkitty/registry"
	"github.com/misscatmint/kzkitty/steam"
)

type fakeAPI struct {
	pbCalls int
	pb      *model.Run
	latest  *model.Run
	profile *model.Profile
	wrs     []*model.Run
	err     error

	lastMap  string
	lastMode model.Mode
}

func (f *fakeAPI) PersonalBest(ctx context.Context, steamID64 int64, mapName string, mode model.Mode) (*model.Run, error) {
	f.pbCalls++
	f.lastMap, f.lastMode = mapName, mode
	return f.pb, f.err
}

func (f *fakeAPI) Latest(ctx context.Context, steamID64 int64, mode model.Mode) (*model.Run, error) {
	f.lastMode = mode
	return f.latest, f.err
}

func (f *fakeAPI) ProfileStats(ctx context.Context, steamID64 int64, mode model.Mode) (*model.Profile, error) {
	f.lastMode = mode
	return f.profile, f.err
}

func (f *fakeAPI) WorldRecords(ctx context.Context, mapName string, mode model.Mode) ([]*model.Run, error) {
	f.lastMap, f.lastMode = mapName, mode
	return f.wrs, f.err
}

type fakeIdentity struct {
	id  int64
	err error
}

func (f *fakeIdentity) ResolveSteamID64(ctx context.Context, ref steam.ProfileRef) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if ref.Kind != steam.RefVanity {
		return ref.SteamID64, nil
	}
	return f.id, nil
}

type mapSourceFunc func(ctx context.Context) ([]model.MapRecord, error)

func (f mapSourceFunc) Maps(ctx context.Context) ([]model.MapRecord, error) { return f(ctx) }

func newTestResolver(t *testing.T, api *fakeAPI, identity *fakeIdentity) *Resolver {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg, err := registry.Init(db, model.ModeKZT)
	require.NoError(t, err)

	source := mapSourceFunc(func(ctx context.Context) ([]model.MapRecord, error) {
		return []model.MapRecord{
			{ID: 1, Name: "kz_lionharder", Tier: 7, VnlTier: 9, VnlProTier: 10},
		}, nil
	})
	cat, err := catalog.Init(db, source)
	require.NoError(t, err)
	require.Equal(t, catalog.Updated, cat.Refresh(context.Background()).Status)

	return New(reg, cat, api, identity, model.ModeKZT)
}

func register(t *testing.T, r *Resolver, guildID, userID, profile string, mode *model.Mode) int64 {
	t.Helper()
	id, err := r.Register(context.Background(), guildID, userID, profile, mode)
	require.NoError(t, err)
	return id
}

func modePtr(m model.Mode) *model.Mode { return &m }

func TestRegisterThenResolve(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{}
	r := newTestResolver(t, api, &fakeIdentity{})

	id := register(t, r, "guild-1", "alice", "https://steamcommunity.com/profiles/76561198000000000", modePtr(model.ModeKZT))
	assert.Equal(t, int64(76561198000000000), id)

	mode, err := r.CurrentMode("guild-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, model.ModeKZT, mode)

	t.Run("set_mode changes mode, keeps identifier", func(t *testing.T) {
		require.NoError(t, r.SetMode("guild-1", "alice", model.ModeSKZ, false))

		api.latest = &model.Run{MapName: "kz_lionharder", Mode: model.ModeSKZ}
		_, err := r.Latest(context.Background(), "guild-1", "alice", nil, "")
		require.NoError(t, err)
		assert.Equal(t, model.ModeSKZ, api.lastMode)
	})
}

func TestRegisterInvalidReference(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, &fakeAPI{}, &fakeIdentity{})

	_, err := r.Register(context.Background(), "guild-1", "alice", "not a url", nil)
	assert.ErrorIs(t, err, model.ErrInvalidIdentifier)

	// Failed validation must not create a registration.
	_, cerr := r.CurrentMode("guild-1", "alice")
	assert.ErrorIs(t, cerr, model.ErrNotRegistered)
}

func TestRegisterUnresolvableVanity(t *testing.T) {
	t.Parallel()
	r := newTestResolver(t, &fakeAPI{}, &fakeIdentity{err: model.ErrInvalidIdentifier})

	_, err := r.Register(context.Background(), "guild-1", "alice", "https://steamcommunity.com/id/nobody", nil)
	assert.ErrorIs(t, err, model.ErrInvalidIdentifier)

	_, cerr := r.CurrentMode("guild-1", "alice")
	assert.ErrorIs(t, cerr, model.ErrNotRegistered)
}

func TestPersonalBest(t *testing.T) {
	t.Parallel()

	t.Run("unregistered caller", func(t *testing.T) {
		api := &fakeAPI{}
		r := newTestResolver(t, api, &fakeIdentity{})

		_, _, err := r.PersonalBest(context.Background(), "guild-1", "alice", "kz_lionharder", nil, "")
		assert.ErrorIs(t, err, model.ErrNotRegistered)
		assert.Zero(t, api.pbCalls)
	})

	t.Run("unknown map never reaches the API", func(t *testing.T) {
		api := &fakeAPI{}
		r := newTestResolver(t, api, &fakeIdentity{})
		register(t, r, "guild-1", "alice", "76561198000000000", nil)

		_, _, err := r.PersonalBest(context.Background(), "guild-1", "alice", "kz_nonexistent", nil, "")
		assert.ErrorIs(t, err, model.ErrUnknownMap)
		assert.Zero(t, api.pbCalls)
	})

	t.Run("no run is an empty result, not an error", func(t *testing.T) {
		api := &fakeAPI{pb: nil}
		r := newTestResolver(t, api, &fakeIdentity{})
		register(t, r, "guild-1", "alice", "76561198000000000", nil)

		run, record, err := r.PersonalBest(context.Background(), "guild-1", "alice", "KZ_LIONHARDER", nil, "")
		require.NoError(t, err)
		assert.Nil(t, run)
		require.NotNil(t, record)
		assert.Equal(t, "kz_lionharder", record.Name)
		assert.Equal(t, 1, api.pbCalls)
		assert.Equal(t, "kz_lionharder", api.lastMap, "canonical catalog name goes upstream")
	})

	t.Run("target user's identity wins over the caller's", func(t *testing.T) {
		api := &fakeAPI{pb: &model.Run{MapName: "kz_lionharder", Time: 123.4}}
		r := newTestResolver(t, api, &fakeIdentity{})
		register(t, r, "guild-1", "alice", "76561198000000000", modePtr(model.ModeKZT))
		register(t, r, "guild-1", "bob", "76561198000000001", modePtr(model.ModeVNL))

		run, _, err := r.PersonalBest(context.Background(), "guild-1", "alice", "kz_lionharder", nil, "bob")
		require.NoError(t, err)
		require.NotNil(t, run)
		assert.Equal(t, model.ModeVNL, api.lastMode, "target's preferred mode applies")
	})
}

func TestProfileEmpty(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{profile: nil}
	r := newTestResolver(t, api, &fakeIdentity{})
	register(t, r, "guild-1", "alice", "76561198000000000", nil)

	profile, err := r.Profile(context.Background(), "guild-1", "alice", nil, "")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestMapInfo(t *testing.T) {
	t.Parallel()

	t.Run("defaults to system mode without identity", func(t *testing.T) {
		api := &fakeAPI{wrs: []*model.Run{{MapName: "kz_lionharder", Time: 99}}}
		r := newTestResolver(t, api, &fakeIdentity{})

		record, wrs, mode, err := r.MapInfo(context.Background(), "kz_lionharder", nil)
		require.NoError(t, err)
		assert.Equal(t, model.ModeKZT, mode)
		assert.Equal(t, "kz_lionharder", record.Name)
		assert.Len(t, wrs, 1)
	})

	t.Run("explicit mode", func(t *testing.T) {
		api := &fakeAPI{}
		r := newTestResolver(t, api, &fakeIdentity{})

		_, _, mode, err := r.MapInfo(context.Background(), "kz_lionharder", modePtr(model.ModeVNL))
		require.NoError(t, err)
		assert.Equal(t, model.ModeVNL, mode)
	})

	t.Run("unknown map", func(t *testing.T) {
		r := newTestResolver(t, &fakeAPI{}, &fakeIdentity{})

		_, _, _, err := r.MapInfo(context.Background(), "kz_nonexistent", nil)
		assert.ErrorIs(t, err, model.ErrUnknownMap)
	})
}

func TestSetGuildDefaultMode(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{}
	r := newTestResolver(t, api, &fakeIdentity{})
	register(t, r, "guild-1", "alice", "76561198000000000", nil)

	require.NoError(t, r.SetMode("guild-1", "", model.ModeVNL, true))

	mode, err := r.CurrentMode("guild-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, model.ModeVNL, mode)
}
