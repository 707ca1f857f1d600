package probe

import (
	"fmt"
	"strings"

	"modelmgr/pkg/types"
)

// CanLoad evaluates a model's requirements against a fresh snapshot.
// RAM and storage shortfalls hard-block (false); low battery while not
// charging is advisory only and returns true with a "Warning: ..." reason.
// A failed load wastes nothing, but running out of storage mid-download
// corrupts partial state, hence the asymmetry.
func (p *Probe) CanLoad(m types.Model) (bool, string) {
	return Admit(p.Sample(), m, p.margin)
}

// Admit is the pure admission rule behind CanLoad, usable against any
// snapshot.
func Admit(snap types.ResourceSnapshot, m types.Model, margin float64) (bool, string) {
	if margin <= 0 {
		margin = DefaultSafetyMargin
	}
	needRAM := int(float64(m.MinRAMMB) * margin)
	if snap.AvailableRAMMB < needRAM {
		return false, fmt.Sprintf("insufficient RAM: %d MB available, %d MB required", snap.AvailableRAMMB, needRAM)
	}
	if snap.AvailableStorageMB < m.MinStorageMB {
		return false, fmt.Sprintf("insufficient storage: %d MB free, %d MB required", snap.AvailableStorageMB, m.MinStorageMB)
	}
	if m.MinBatteryPercent > 0 && snap.BatteryPercent < m.MinBatteryPercent && !snap.IsCharging {
		return true, fmt.Sprintf("Warning: battery at %d%%, below the %d%% recommended for %s", snap.BatteryPercent, m.MinBatteryPercent, m.Name)
	}
	return true, ""
}

// IsWarning reports whether an admission reason is advisory rather than a
// rejection.
func IsWarning(reason string) bool {
	return strings.HasPrefix(reason, "Warning:")
}
