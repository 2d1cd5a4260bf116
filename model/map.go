package model

// MapRecord is one entry of the map catalog snapshot, as fetched from the
// global API maps listing plus the VNL tier overlay.
type MapRecord struct {
	ID         int    `db:"map_id"`
	Name       string `db:"name"`
	Tier       int    `db:"tier"`
	VnlTier    int    `db:"vnl_tier"`
	VnlProTier int    `db:"vnl_pro_tier"`
	Filesize   int64  `db:"filesize"`
}

// vnlImpossibleTier marks a map as not finishable in vanilla.
const vnlImpossibleTier = 10

// SupportsMode reports whether the map is finishable in the given mode.
// KZT and SKZ cover every validated map; VNL excludes tier-10 maps.
func (m *MapRecord) SupportsMode(mode Mode) bool {
	if mode == ModeVNL {
		return m.VnlTier < vnlImpossibleTier
	}
	return true
}

// TierFor returns the display tier for the given mode: VNL maps carry their
// own tier scale.
func (m *MapRecord) TierFor(mode Mode) int {
	if mode == ModeVNL {
		return m.VnlTier
	}
	return m.Tier
}

// TierName returns the human-readable difficulty name for a tier in the
// given mode. VNL uses a ten-step scale, the other modes seven.
func TierName(tier int, mode Mode) string {
	var names []string
	if mode == ModeVNL {
		names = []string{"Very Easy", "Easy", "Medium", "Advanced", "Hard",
			"Very Hard", "Extreme", "Death", "Unfeasible", "Impossible"}
	} else {
		names = []string{"Very Easy", "Easy", "Medium", "Hard", "Very Hard",
			"Extreme", "Death"}
	}
	if tier < 1 || tier > len(names) {
		return "Unknown"
	}
	return names[tier-1]
}
