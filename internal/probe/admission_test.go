package probe

import (
	"strings"
	"testing"
	"time"

	"modelmgr/pkg/types"
)

func snapshot(availRAM, storage, batteryPct int, charging bool) types.ResourceSnapshot {
	return types.ResourceSnapshot{
		TotalRAMMB:         16384,
		AvailableRAMMB:     availRAM,
		AvailableStorageMB: storage,
		BatteryPercent:     batteryPct,
		IsCharging:         charging,
		DeviceTier:         TierFor(availRAM, DefaultTierThresholds),
		SampledAt:          time.Now(),
	}
}

var testModel = types.Model{
	Key:               "test-2gb",
	Name:              "Test 2GB",
	MinRAMMB:          2048,
	MinStorageMB:      1000,
	MinBatteryPercent: 20,
	QualityTier:       2,
}

func TestAdmitInsufficientRAM(t *testing.T) {
	// RAM shortfall hard-blocks regardless of battery state.
	for _, charging := range []bool{true, false} {
		ok, reason := Admit(snapshot(1500, 50000, 100, charging), testModel, 1.0)
		if ok {
			t.Fatalf("expected rejection with 1500 MB available (charging=%v)", charging)
		}
		if !strings.Contains(reason, "insufficient RAM") {
			t.Fatalf("unexpected reason: %q", reason)
		}
	}
}

func TestAdmitInsufficientStorage(t *testing.T) {
	ok, reason := Admit(snapshot(8000, 500, 100, true), testModel, 1.0)
	if ok {
		t.Fatal("expected rejection with 500 MB storage")
	}
	if !strings.Contains(reason, "insufficient storage") {
		t.Fatalf("unexpected reason: %q", reason)
	}
}

// Low battery while not charging is advisory: admitted with a warning.
func TestAdmitLowBatteryWarns(t *testing.T) {
	ok, reason := Admit(snapshot(8000, 50000, 10, false), testModel, 1.0)
	if !ok {
		t.Fatal("low battery must not block admission")
	}
	if !IsWarning(reason) {
		t.Fatalf("expected a warning reason, got %q", reason)
	}
}

func TestAdmitLowBatteryChargingNoWarning(t *testing.T) {
	ok, reason := Admit(snapshot(8000, 50000, 10, true), testModel, 1.0)
	if !ok || reason != "" {
		t.Fatalf("expected clean admission while charging, got ok=%v reason=%q", ok, reason)
	}
}

func TestAdmitSafetyMargin(t *testing.T) {
	// 2048 required at margin 1.5 means 3072 needed.
	if ok, _ := Admit(snapshot(3000, 50000, 100, true), testModel, 1.5); ok {
		t.Fatal("expected rejection below margin-adjusted requirement")
	}
	if ok, _ := Admit(snapshot(3100, 50000, 100, true), testModel, 1.5); !ok {
		t.Fatal("expected admission above margin-adjusted requirement")
	}
}

func TestCanLoadUsesFreshSample(t *testing.T) {
	p := testProbe(1500, 50000, 100, true)
	ok, reason := p.CanLoad(testModel)
	if ok {
		t.Fatalf("expected rejection, got ok with reason %q", reason)
	}
}

func TestIsWarning(t *testing.T) {
	if !IsWarning("Warning: battery at 10%") {
		t.Fatal("expected warning")
	}
	if IsWarning("insufficient RAM") {
		t.Fatal("rejection reason is not a warning")
	}
	if IsWarning("") {
		t.Fatal("empty reason is not a warning")
	}
}
