// Package pot derives the prize pot from the rollover count and the
// number of active players. Values are whole pounds.
package pot

// stake tiers
const (
	BaseStake     = 2 // per player before any rollover
	RolloverStake = 5 // per player after the first rollover
)

// PerPlayer returns the per-player stake for the given rollover count.
func PerPlayer(rollovers int) int {
	switch {
	case rollovers <= 0:
		return BaseStake
	case rollovers == 1:
		return RolloverStake
	default:
		return RolloverStake + (rollovers-1)*RolloverStake
	}
}

// Total returns the full pot. Recomputed on demand, never cached: the
// active-player count changes every round.
func Total(rollovers, activePlayers int) int {
	if activePlayers < 0 {
		activePlayers = 0
	}
	return PerPlayer(rollovers) * activePlayers
}
