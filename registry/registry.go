package registry

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/misscatmint/kzkitty/model"
)

// Registry persists chat-identity registrations and mode preferences.
// Registrations are partitioned per guild; a direct-message registration
// lives under the empty guild id.
type Registry struct {
	db          *sqlx.DB
	defaultMode model.Mode
}

// Init creates the registry tables on the shared database handle.
func Init(db *sqlx.DB, defaultMode model.Mode) (*Registry, error) {
	schema := `CREATE TABLE IF NOT EXISTS players (
        user_id TEXT NOT NULL,
        guild_id TEXT NOT NULL DEFAULT '',
        steamid64 INTEGER NOT NULL,
        mode TEXT,
        PRIMARY KEY(user_id, guild_id)
    );
    CREATE TABLE IF NOT EXISTS guild_modes (
        guild_id TEXT PRIMARY KEY,
        mode TEXT NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create registry tables: %w", err)
	}
	return &Registry{db: db, defaultMode: defaultMode}, nil
}

// Register upserts the identity entry for (guild, user). The steamID64 is
// expected to be validated already; mode may be nil to keep whatever
// preference was stored before.
func (r *Registry) Register(guildID, userID string, steamID64 int64, mode *model.Mode) error {
	query := `
    INSERT INTO players (user_id, guild_id, steamid64, mode)
    VALUES (?, ?, ?, ?)
    ON CONFLICT(user_id, guild_id) DO UPDATE SET
        steamid64 = excluded.steamid64,
        mode = COALESCE(excluded.mode, players.mode);`

	var modeStr sql.NullString
	if mode != nil {
		modeStr = sql.NullString{String: string(*mode), Valid: true}
	}
	if _, err := r.db.Exec(query, userID, guildID, steamID64, modeStr); err != nil {
		return fmt.Errorf("failed to register user %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}

// SetMode updates only the preferred mode of an existing registration.
func (r *Registry) SetMode(guildID, userID string, mode model.Mode) error {
	result, err := r.db.Exec(`UPDATE players SET mode = ? WHERE user_id = ? AND guild_id = ?`,
		string(mode), userID, guildID)
	if err != nil {
		return fmt.Errorf("failed to set mode for user %s in guild %s: %w", userID, guildID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for user %s: %w", userID, err)
	}
	if rowsAffected == 0 {
		return model.ErrNotRegistered
	}
	return nil
}

// SetGuildMode upserts the guild-wide default mode, used for users with no
// personal preference.
func (r *Registry) SetGuildMode(guildID string, mode model.Mode) error {
	query := `
    INSERT INTO guild_modes (guild_id, mode)
    VALUES (?, ?)
    ON CONFLICT(guild_id) DO UPDATE SET mode = excluded.mode;`
	if _, err := r.db.Exec(query, guildID, string(mode)); err != nil {
		return fmt.Errorf("failed to set guild mode for %s: %w", guildID, err)
	}
	return nil
}

// Get returns the raw identity entry for (guild, user), or
// ErrNotRegistered.
func (r *Registry) Get(guildID, userID string) (*model.Identity, error) {
	var row struct {
		UserID    string         `db:"user_id"`
		GuildID   string         `db:"guild_id"`
		SteamID64 int64          `db:"steamid64"`
		Mode      sql.NullString `db:"mode"`
	}
	err := r.db.Get(&row, `SELECT user_id, guild_id, steamid64, mode FROM players WHERE user_id = ? AND guild_id = ?`,
		userID, guildID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotRegistered
		}
		return nil, fmt.Errorf("failed to query player %s in guild %s: %w", userID, guildID, err)
	}
	identity := &model.Identity{
		UserID:    row.UserID,
		GuildID:   row.GuildID,
		SteamID64: row.SteamID64,
	}
	if row.Mode.Valid {
		m, err := model.ParseMode(row.Mode.String)
		if err != nil {
			return nil, fmt.Errorf("stored mode for user %s is invalid: %w", userID, err)
		}
		identity.Mode = &m
	}
	return identity, nil
}

// Resolve returns the effective steamID64 and mode for (guild, user).
// Mode precedence, first present wins: the explicit argument, the user's
// stored preference, the guild default, the system default.
func (r *Registry) Resolve(guildID, userID string, explicit *model.Mode) (int64, model.Mode, error) {
	identity, err := r.Get(guildID, userID)
	if err != nil {
		return 0, "", err
	}

	if explicit != nil {
		return identity.SteamID64, *explicit, nil
	}
	if identity.Mode != nil {
		return identity.SteamID64, *identity.Mode, nil
	}

	var guildMode string
	err = r.db.Get(&guildMode, `SELECT mode FROM guild_modes WHERE guild_id = ?`, guildID)
	if err == nil {
		if m, perr := model.ParseMode(guildMode); perr == nil {
			return identity.SteamID64, m, nil
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, "", fmt.Errorf("failed to query guild mode for %s: %w", guildID, err)
	}

	return identity.SteamID64, r.defaultMode, nil
}
