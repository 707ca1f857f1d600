package types

import "time"

// DeviceTier is a coarse classification of host capability, derived from
// available RAM. It drives which model is selected by default.
type DeviceTier string

const (
	TierLow    DeviceTier = "low"
	TierMedium DeviceTier = "medium"
	TierHigh   DeviceTier = "high"
	TierUltra  DeviceTier = "ultra"
)

// Rank returns the ordinal position of the tier, for ordering comparisons.
// Unknown tiers rank below TierLow.
func (t DeviceTier) Rank() int {
	switch t {
	case TierLow:
		return 1
	case TierMedium:
		return 2
	case TierHigh:
		return 3
	case TierUltra:
		return 4
	default:
		return 0
	}
}

// Model describes a catalog entry: a model variant together with the
// resources it needs and where its bytes come from.
type Model struct {
	// Stable catalog key, used for persistence. Distinct from any
	// host-assigned runtime model ID.
	// example: llama-3.2-1b-q4
	Key string `json:"key" yaml:"key" toml:"key"`
	// Human-friendly display name.
	// example: Llama 3.2 1B (Q4)
	Name string `json:"name" yaml:"name" toml:"name"`
	// File name of the model on disk once downloaded.
	// example: llama-3.2-1b-instruct-q4_k_m.gguf
	File string `json:"file" yaml:"file" toml:"file"`
	// Download URL for the model bytes.
	// example: https://huggingface.co/.../llama-3.2-1b-instruct-q4_k_m.gguf
	URL string `json:"url" yaml:"url" toml:"url"`
	// Minimum available RAM in MB required to load.
	// example: 2048
	MinRAMMB int `json:"min_ram_mb" yaml:"min_ram_mb" toml:"min_ram_mb"`
	// Minimum free storage in MB required to download.
	// example: 900
	MinStorageMB int `json:"min_storage_mb" yaml:"min_storage_mb" toml:"min_storage_mb"`
	// Minimum battery percent before a low-battery warning applies.
	// Zero means no battery floor.
	// example: 20
	MinBatteryPercent int `json:"min_battery_percent,omitempty" yaml:"min_battery_percent" toml:"min_battery_percent"`
	// Ordinal quality ranking; higher is more capable.
	// example: 2
	QualityTier int `json:"quality_tier" yaml:"quality_tier" toml:"quality_tier"`
}

// ResourceSnapshot is an immutable view of device resources at a point in
// time. A new value is produced on every sample; fields are never mutated
// in place.
type ResourceSnapshot struct {
	// Total physical RAM in MB.
	// example: 16384
	TotalRAMMB int `json:"total_ram_mb" example:"16384"`
	// RAM currently available in MB.
	// example: 6200
	AvailableRAMMB int `json:"available_ram_mb" example:"6200"`
	// Battery charge percent. 100 on hosts without a battery.
	// example: 85
	BatteryPercent int `json:"battery_percent" example:"85"`
	// Whether the host is on external power.
	// example: true
	IsCharging bool `json:"is_charging" example:"true"`
	// Free storage in MB on the volume holding the models directory.
	// example: 120000
	AvailableStorageMB int `json:"available_storage_mb" example:"120000"`
	// Tier classification derived from AvailableRAMMB.
	// example: ultra
	DeviceTier DeviceTier `json:"device_tier" example:"ultra"`
	// When the sample was taken.
	SampledAt time.Time `json:"sampled_at"`
}

// Preferences are the durable user settings owned by the orchestrator.
type Preferences struct {
	// Explicit user choice; empty means unset.
	// example: qwen2.5-3b-q4
	PreferredModelKey string `json:"preferred_model_key,omitempty" example:"qwen2.5-3b-q4"`
	// Key of the model that last loaded successfully; empty means unset.
	// example: llama-3.2-1b-q4
	LastLoadedModelKey string `json:"last_loaded_model_key,omitempty" example:"llama-3.2-1b-q4"`
	// Whether Initialize may run the full selection/load pipeline.
	// example: true
	AutoLoadEnabled bool `json:"auto_load_enabled" example:"true"`
}
