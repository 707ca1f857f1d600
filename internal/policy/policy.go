// Package policy chooses which model variant to run. All functions are pure
// over a resource snapshot; nothing here touches the host.
package policy

import (
	"fmt"

	"modelmgr/internal/catalog"
	"modelmgr/internal/probe"
	"modelmgr/pkg/types"
)

// SelectBestModel picks the model key to run. Precedence, each step
// short-circuiting on success:
//
//  1. the user's preferred key, when loadable right now;
//  2. the last successfully loaded key, when loadable and already downloaded;
//  3. the tier default for the snapshot's device tier.
//
// The ordering encodes "explicit user choice over implicit history over
// generic default" and is asserted by tests; do not reorder.
//
// margin is the RAM admission margin; callers pass the probe's configured
// value so selection never returns a key the admission gate would reject.
// Zero applies the probe default.
func SelectBestModel(cat *catalog.Catalog, snap types.ResourceSnapshot, prefs types.Preferences, downloaded map[string]bool, margin float64) string {
	if key := prefs.PreferredModelKey; key != "" {
		if m, ok := cat.Lookup(key); ok {
			if admitted, _ := probe.Admit(snap, m, margin); admitted {
				return key
			}
		}
	}
	if key := prefs.LastLoadedModelKey; key != "" && downloaded[key] {
		if m, ok := cat.Lookup(key); ok {
			if admitted, _ := probe.Admit(snap, m, margin); admitted {
				return key
			}
		}
	}
	return tierDefault(cat, snap, margin)
}

// tierDefault returns the fixed default for the snapshot's tier, falling
// back to the lowest-quality admissible entry when the default itself does
// not fit (e.g. storage pressure), and to the lowest-quality entry overall
// as a last resort.
func tierDefault(cat *catalog.Catalog, snap types.ResourceSnapshot, margin float64) string {
	if key, ok := cat.DefaultForTier(snap.DeviceTier); ok {
		if m, ok2 := cat.Lookup(key); ok2 {
			if admitted, _ := probe.Admit(snap, m, margin); admitted {
				return key
			}
		}
	}
	var best string
	bestTier := 0
	for _, m := range cat.Models() {
		admitted, _ := probe.Admit(snap, m, margin)
		if !admitted {
			continue
		}
		if best == "" || m.QualityTier < bestTier {
			best = m.Key
			bestTier = m.QualityTier
		}
	}
	if best != "" {
		return best
	}
	var lowest string
	lowestTier := 0
	for _, m := range cat.Models() {
		if lowest == "" || m.QualityTier < lowestTier {
			lowest = m.Key
			lowestTier = m.QualityTier
		}
	}
	return lowest
}

// CanUpgrade reports whether a strictly better model than currentKey could
// be loaded against snap, returning the closest upgrade: the smallest
// quality tier above the current one, tie-broken by catalog declaration
// order.
func CanUpgrade(cat *catalog.Catalog, snap types.ResourceSnapshot, currentKey string, margin float64) (bool, string) {
	cur, ok := cat.Lookup(currentKey)
	if !ok {
		return false, ""
	}
	var best string
	bestTier := 0
	for _, m := range cat.Models() {
		if m.QualityTier <= cur.QualityTier {
			continue
		}
		if admitted, _ := probe.Admit(snap, m, margin); !admitted {
			continue
		}
		if best == "" || m.QualityTier < bestTier {
			best = m.Key
			bestTier = m.QualityTier
		}
	}
	return best != "", best
}

// Recommendation describes, for humans, which model suits the device. It is
// derived purely from the tier and the tier default; no side effects.
func Recommendation(cat *catalog.Catalog, snap types.ResourceSnapshot, margin float64) string {
	key, ok := cat.DefaultForTier(snap.DeviceTier)
	if !ok {
		key = tierDefault(cat, snap, margin)
	}
	name := cat.DisplayNameFor(key)
	switch snap.DeviceTier {
	case types.TierLow:
		return fmt.Sprintf("This device has limited memory; %s is recommended for reliable performance.", name)
	case types.TierMedium:
		return fmt.Sprintf("This device can comfortably run %s.", name)
	case types.TierHigh:
		return fmt.Sprintf("This device can run larger models; %s is recommended.", name)
	case types.TierUltra:
		return fmt.Sprintf("This device can run the largest available models; %s is recommended.", name)
	default:
		return fmt.Sprintf("%s is recommended.", name)
	}
}
