package model

import "fmt"

// Mode is a KZ game mode as named by the global API
// (modes_list_string parameter).
type Mode string

const (
	ModeKZT Mode = "kz_timer"
	ModeSKZ Mode = "kz_simple"
	ModeVNL Mode = "kz_vanilla"
)

// DefaultMode is the system-wide fallback when neither the user nor the
// guild has a preference.
const DefaultMode = ModeKZT

// AllModes lists every supported mode, in command-choice order.
var AllModes = []Mode{ModeKZT, ModeSKZ, ModeVNL}

// ParseMode accepts both the full API names and the short community
// aliases (kzt/skz/vnl).
func ParseMode(s string) (Mode, error) {
	switch s {
	case "kz_timer", "kzt":
		return ModeKZT, nil
	case "kz_simple", "skz":
		return ModeSKZ, nil
	case "kz_vanilla", "vnl":
		return ModeVNL, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Short returns the community alias for the mode.
func (m Mode) Short() string {
	switch m {
	case ModeKZT:
		return "kzt"
	case ModeSKZ:
		return "skz"
	case ModeVNL:
		return "vnl"
	}
	return string(m)
}

// RankID is the mode id used by the player_ranks endpoint.
func (m Mode) RankID() int {
	switch m {
	case ModeKZT:
		return 200
	case ModeSKZ:
		return 201
	case ModeVNL:
		return 202
	}
	return 0
}
