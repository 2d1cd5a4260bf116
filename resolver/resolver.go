package resolver

import (
	"context"
	"fmt"

	"github.com/misscatmint/kzkitty/catalog"
	"github.com/misscatmint/kzkitty/model"
	"github.com/misscatmint/kzkitty/registry"
	"github.com/misscatmint/kzkitty/steam"
)

// RankAPI is the slice of the global API client the resolver needs.
type RankAPI interface {
	PersonalBest(ctx context.Context, steamID64 int64, mapName string, mode model.Mode) (*model.Run, error)
	Latest(ctx context.Context, steamID64 int64, mode model.Mode) (*model.Run, error)
	ProfileStats(ctx context.Context, steamID64 int64, mode model.Mode) (*model.Profile, error)
	WorldRecords(ctx context.Context, mapName string, mode model.Mode) ([]*model.Run, error)
}

// IdentitySource resolves parsed profile references to steamID64s.
type IdentitySource interface {
	ResolveSteamID64(ctx context.Context, ref steam.ProfileRef) (int64, error)
}

// Resolver orchestrates the registry, catalog, and global API client to
// satisfy each command. It owns no persistent state of its own.
type Resolver struct {
	registry    *registry.Registry
	catalog     *catalog.Catalog
	api         RankAPI
	identity    IdentitySource
	defaultMode model.Mode
}

func New(reg *registry.Registry, cat *catalog.Catalog, api RankAPI, identity IdentitySource, defaultMode model.Mode) *Resolver {
	return &Resolver{
		registry:    reg,
		catalog:     cat,
		api:         api,
		identity:    identity,
		defaultMode: defaultMode,
	}
}

// resolveIdentity picks the effective user (target if given, else the
// caller) and resolves their steamID64 and mode through the registry.
func (r *Resolver) resolveIdentity(guildID, callerID, targetID string, explicit *model.Mode) (int64, model.Mode, error) {
	userID := callerID
	if targetID != "" {
		userID = targetID
	}
	return r.registry.Resolve(guildID, userID, explicit)
}

// PersonalBest returns the player's best run on the map, with the catalog
// record for display. A nil run means no time has been set yet.
func (r *Resolver) PersonalBest(ctx context.Context, guildID, callerID, mapName string, explicit *model.Mode, targetID string) (*model.Run, *model.MapRecord, error) {
	steamID, mode, err := r.resolveIdentity(guildID, callerID, targetID, explicit)
	if err != nil {
		return nil, nil, err
	}
	record := r.catalog.Lookup(mapName)
	if record == nil {
		return nil, nil, fmt.Errorf("%w: %q", model.ErrUnknownMap, mapName)
	}
	run, err := r.api.PersonalBest(ctx, steamID, record.Name, mode)
	if err != nil {
		return nil, nil, err
	}
	return run, record, nil
}

// Latest returns the player's most recent run in the effective mode, nil
// when no runs exist. The query is mode-scoped only; no map is involved.
func (r *Resolver) Latest(ctx context.Context, guildID, callerID string, explicit *model.Mode, targetID string) (*model.Run, error) {
	steamID, mode, err := r.resolveIdentity(guildID, callerID, targetID, explicit)
	if err != nil {
		return nil, err
	}
	return r.api.Latest(ctx, steamID, mode)
}

// Profile returns the player's aggregate stats, nil when the player has no
// recorded runs in the mode.
func (r *Resolver) Profile(ctx context.Context, guildID, callerID string, explicit *model.Mode, targetID string) (*model.Profile, error) {
	steamID, mode, err := r.resolveIdentity(guildID, callerID, targetID, explicit)
	if err != nil {
		return nil, err
	}
	return r.api.ProfileStats(ctx, steamID, mode)
}

// MapInfo returns the catalog record and current world records for the
// map. No identity is involved; an omitted mode falls back to the system
// default.
func (r *Resolver) MapInfo(ctx context.Context, mapName string, explicit *model.Mode) (*model.MapRecord, []*model.Run, model.Mode, error) {
	mode := r.defaultMode
	if explicit != nil {
		mode = *explicit
	}
	record := r.catalog.Lookup(mapName)
	if record == nil {
		return nil, nil, mode, fmt.Errorf("%w: %q", model.ErrUnknownMap, mapName)
	}
	wrs, err := r.api.WorldRecords(ctx, record.Name, mode)
	if err != nil {
		return nil, nil, mode, err
	}
	return record, wrs, mode, nil
}

// Register resolves the profile reference and upserts the registration.
// The registry is only touched after resolution succeeds.
func (r *Resolver) Register(ctx context.Context, guildID, userID, profileRef string, mode *model.Mode) (int64, error) {
	ref, err := steam.ParseProfileRef(profileRef)
	if err != nil {
		return 0, err
	}
	steamID, err := r.identity.ResolveSteamID64(ctx, ref)
	if err != nil {
		return 0, err
	}
	if err := r.registry.Register(guildID, userID, steamID, mode); err != nil {
		return 0, err
	}
	return steamID, nil
}

// SetMode updates the caller's preferred mode, or the guild default when
// guildDefault is set.
func (r *Resolver) SetMode(guildID, userID string, mode model.Mode, guildDefault bool) error {
	if guildDefault {
		return r.registry.SetGuildMode(guildID, mode)
	}
	return r.registry.SetMode(guildID, userID, mode)
}

// CurrentMode reports the mode a command would run under for the caller,
// without touching the upstream API.
func (r *Resolver) CurrentMode(guildID, userID string) (model.Mode, error) {
	_, mode, err := r.registry.Resolve(guildID, userID, nil)
	return mode, err
}
