package loyalty

type Tier string

const (
	TierBronze Tier = "BRONZE"
	TierSilver Tier = "SILVER"
	TierGold   Tier = "GOLD"
)

const (
	silverThreshold = 100
	goldThreshold   = 300
)

type TierInfo struct {
	Tier Tier `json:"tier"`
	// PointsToNext is nil at the top tier.
	PointsToNext *int64 `json:"points_to_next,omitempty"`
}

// TierFor classifies a member by lifetime earned points. Redemptions do
// not demote.
func TierFor(lifetimeEarned int64) TierInfo {
	switch {
	case lifetimeEarned >= goldThreshold:
		return TierInfo{Tier: TierGold}
	case lifetimeEarned >= silverThreshold:
		n := goldThreshold - lifetimeEarned
		return TierInfo{Tier: TierSilver, PointsToNext: &n}
	default:
		if lifetimeEarned < 0 {
			lifetimeEarned = 0
		}
		n := silverThreshold - lifetimeEarned
		return TierInfo{Tier: TierBronze, PointsToNext: &n}
	}
}
