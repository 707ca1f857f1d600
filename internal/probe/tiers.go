package probe

import "modelmgr/pkg/types"

// TierThreshold maps an exclusive upper bound on available RAM to a tier.
type TierThreshold struct {
	BelowRAMMB int
	Tier       types.DeviceTier
}

// DefaultTierThresholds classify hosts by available RAM. The table must be
// sorted ascending by BelowRAMMB; anything at or above the last bound is
// TierUltra.
var DefaultTierThresholds = []TierThreshold{
	{BelowRAMMB: 2048, Tier: types.TierLow},
	{BelowRAMMB: 4096, Tier: types.TierMedium},
	{BelowRAMMB: 6144, Tier: types.TierHigh},
}

// TierFor classifies availableRAMMB against a threshold table.
func TierFor(availableRAMMB int, table []TierThreshold) types.DeviceTier {
	for _, th := range table {
		if availableRAMMB < th.BelowRAMMB {
			return th.Tier
		}
	}
	return types.TierUltra
}
