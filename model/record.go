package model

import "time"

// Run is a single recorded time from the global API. Runs are produced
// fresh on every query and never persisted: records can be beaten.
type Run struct {
	ID         int
	SteamID64  int64
	PlayerName string
	MapName    string
	Mode       Mode
	Time       float64 // seconds
	Teleports  int
	Points     int
	Place      int // 0 when unknown
	Date       time.Time
}

// IsPro reports whether the run used no teleports.
func (r *Run) IsPro() bool {
	return r.Teleports == 0
}

// Profile is the aggregate stats view from the player_ranks endpoint.
type Profile struct {
	SteamID64  int64
	PlayerName string
	Mode       Mode
	Rank       string
	Points     int
	Average    int
}

// Identity is a registry entry binding a chat user to a Steam account and
// an optional preferred mode.
type Identity struct {
	UserID    string `db:"user_id"`
	GuildID   string `db:"guild_id"`
	SteamID64 int64  `db:"steamid64"`
	Mode      *Mode  `db:"mode"`
}
