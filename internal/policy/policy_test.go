package policy

import (
	"strings"
	"testing"
	"time"

	"modelmgr/internal/catalog"
	"modelmgr/internal/probe"
	"modelmgr/pkg/types"
)

func testCatalog() *catalog.Catalog {
	return catalog.FromModels([]types.Model{
		{Key: "tiny-1b", Name: "Tiny 1B", File: "tiny.gguf", MinRAMMB: 1024, MinStorageMB: 500, QualityTier: 1},
		{Key: "small-3b", Name: "Small 3B", File: "small.gguf", MinRAMMB: 2048, MinStorageMB: 1500, QualityTier: 2},
		{Key: "mid-7b", Name: "Mid 7B", File: "mid.gguf", MinRAMMB: 4096, MinStorageMB: 4000, QualityTier: 3},
		{Key: "big-13b", Name: "Big 13B", File: "big.gguf", MinRAMMB: 8192, MinStorageMB: 8000, QualityTier: 4},
	}, map[types.DeviceTier]string{
		types.TierLow:    "tiny-1b",
		types.TierMedium: "small-3b",
		types.TierHigh:   "mid-7b",
		types.TierUltra:  "big-13b",
	})
}

func snap(availRAM, storage int) types.ResourceSnapshot {
	return types.ResourceSnapshot{
		TotalRAMMB:         16384,
		AvailableRAMMB:     availRAM,
		AvailableStorageMB: storage,
		BatteryPercent:     100,
		IsCharging:         true,
		DeviceTier:         probe.TierFor(availRAM, probe.DefaultTierThresholds),
		SampledAt:          time.Now(),
	}
}

// A satisfiable preferred key always wins, even when a "better" default
// would also be satisfiable.
func TestSelectPrefersExplicitChoice(t *testing.T) {
	cat := testCatalog()
	got := SelectBestModel(cat, snap(16000, 100000), types.Preferences{
		PreferredModelKey: "tiny-1b",
	}, nil, 0)
	if got != "tiny-1b" {
		t.Fatalf("expected preferred tiny-1b, got %q", got)
	}
}

// Preferred unsatisfiable, last-loaded satisfiable and downloaded: the
// history wins over the generic default.
func TestSelectFallsBackToLastLoaded(t *testing.T) {
	cat := testCatalog()
	got := SelectBestModel(cat, snap(3000, 100000), types.Preferences{
		PreferredModelKey:  "big-13b",
		LastLoadedModelKey: "tiny-1b",
	}, map[string]bool{"tiny-1b": true}, 0)
	if got != "tiny-1b" {
		t.Fatalf("expected last-loaded tiny-1b, got %q", got)
	}
}

// Last-loaded counts only when its bytes are already local.
func TestSelectIgnoresLastLoadedNotDownloaded(t *testing.T) {
	cat := testCatalog()
	got := SelectBestModel(cat, snap(3000, 100000), types.Preferences{
		LastLoadedModelKey: "tiny-1b",
	}, map[string]bool{"tiny-1b": false}, 0)
	// 3000 MB available is the medium tier.
	if got != "small-3b" {
		t.Fatalf("expected tier default small-3b, got %q", got)
	}
}

func TestSelectTierDefaults(t *testing.T) {
	cat := testCatalog()
	cases := []struct {
		availRAM int
		want     string
	}{
		{1500, "tiny-1b"},
		{3000, "small-3b"},
		{5000, "mid-7b"},
		{16000, "big-13b"},
	}
	for _, c := range cases {
		got := SelectBestModel(cat, snap(c.availRAM, 100000), types.Preferences{}, nil, 0)
		if got != c.want {
			t.Errorf("availRAM=%d: got %q, want %q", c.availRAM, got, c.want)
		}
	}
}

// When the tier default itself fails admission (storage pressure), the
// lowest-quality admissible entry is used instead.
func TestSelectDefaultFallsBackWhenInadmissible(t *testing.T) {
	cat := testCatalog()
	got := SelectBestModel(cat, snap(16000, 600), types.Preferences{}, nil, 0)
	if got != "tiny-1b" {
		t.Fatalf("expected tiny-1b under storage pressure, got %q", got)
	}
}

// A safety margin above 1.0 tightens selection the same way it tightens
// admission: a preferred key the gate would reject is skipped, not returned.
func TestSelectHonorsSafetyMargin(t *testing.T) {
	cat := testCatalog()
	prefs := types.Preferences{PreferredModelKey: "mid-7b"}
	// 5000 MB covers mid-7b's 4096 MB at margin 1.0 but not at 1.5
	// (4096 * 1.5 = 6144).
	if got := SelectBestModel(cat, snap(5000, 100000), prefs, nil, 1.0); got != "mid-7b" {
		t.Fatalf("margin 1.0: got %q, want preferred mid-7b", got)
	}
	got := SelectBestModel(cat, snap(5000, 100000), prefs, nil, 1.5)
	if got == "mid-7b" || got == "big-13b" {
		t.Fatalf("margin 1.5: got inadmissible %q", got)
	}
	// The high-tier default is equally inadmissible, so the lowest
	// admissible entry wins.
	if got != "tiny-1b" {
		t.Fatalf("margin 1.5: got %q, want tiny-1b", got)
	}
}

func TestCanUpgradeHonorsSafetyMargin(t *testing.T) {
	cat := testCatalog()
	// At margin 1.0 both small-3b and mid-7b fit in 5000 MB; at 1.5 only
	// small-3b does (2048 * 1.5 = 3072).
	ok, better := CanUpgrade(cat, snap(5000, 100000), "tiny-1b", 1.5)
	if !ok || better != "small-3b" {
		t.Fatalf("margin 1.5: got ok=%v %q, want small-3b", ok, better)
	}
	if ok, _ := CanUpgrade(cat, snap(5000, 100000), "small-3b", 1.5); ok {
		t.Fatal("margin 1.5 leaves no admissible upgrade above small-3b")
	}
}

func TestCanUpgradeClosestTier(t *testing.T) {
	cat := testCatalog()
	ok, better := CanUpgrade(cat, snap(16000, 100000), "tiny-1b", 0)
	if !ok || better != "small-3b" {
		t.Fatalf("expected closest upgrade small-3b, got ok=%v %q", ok, better)
	}
}

func TestCanUpgradeSkipsInadmissible(t *testing.T) {
	cat := testCatalog()
	// 5000 MB: small-3b and mid-7b fit, big-13b does not.
	ok, better := CanUpgrade(cat, snap(5000, 100000), "small-3b", 0)
	if !ok || better != "mid-7b" {
		t.Fatalf("expected mid-7b, got ok=%v %q", ok, better)
	}
}

func TestCanUpgradeAtTop(t *testing.T) {
	cat := testCatalog()
	if ok, better := CanUpgrade(cat, snap(16000, 100000), "big-13b", 0); ok {
		t.Fatalf("no upgrade above the top tier, got %q", better)
	}
}

func TestCanUpgradeTieBreakDeclarationOrder(t *testing.T) {
	cat := catalog.FromModels([]types.Model{
		{Key: "base", Name: "Base", MinRAMMB: 1024, MinStorageMB: 100, QualityTier: 1},
		{Key: "first", Name: "First", MinRAMMB: 1024, MinStorageMB: 100, QualityTier: 2},
		{Key: "second", Name: "Second", MinRAMMB: 1024, MinStorageMB: 100, QualityTier: 2},
	}, map[types.DeviceTier]string{})
	ok, better := CanUpgrade(cat, snap(16000, 100000), "base", 0)
	if !ok || better != "first" {
		t.Fatalf("tie must break by declaration order, got ok=%v %q", ok, better)
	}
}

func TestCanUpgradeUnknownCurrent(t *testing.T) {
	cat := testCatalog()
	if ok, _ := CanUpgrade(cat, snap(16000, 100000), "nosuch", 0); ok {
		t.Fatal("unknown current key cannot upgrade")
	}
}

func TestRecommendationMentionsTierDefault(t *testing.T) {
	cat := testCatalog()
	cases := []struct {
		availRAM int
		wantName string
	}{
		{1500, "Tiny 1B"},
		{3000, "Small 3B"},
		{5000, "Mid 7B"},
		{16000, "Big 13B"},
	}
	for _, c := range cases {
		got := Recommendation(cat, snap(c.availRAM, 100000), 0)
		if got == "" {
			t.Fatalf("empty recommendation for %d MB", c.availRAM)
		}
		if !strings.Contains(got, c.wantName) {
			t.Errorf("availRAM=%d: recommendation %q does not mention %q", c.availRAM, got, c.wantName)
		}
	}
}
