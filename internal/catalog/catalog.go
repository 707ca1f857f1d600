// Package catalog is the compiled-in registry of model variants: their
// resource requirements, quality ranking, and download sources, plus the
// fixed default key per device tier. Entries never change at runtime.
package catalog

import (
	"modelmgr/pkg/types"
)

// Catalog is a read-only set of model entries in declaration order.
type Catalog struct {
	models       []types.Model
	byKey        map[string]int
	tierDefaults map[types.DeviceTier]string
}

// builtin entries, lowest quality tier first. MinStorageMB roughly tracks
// the download size plus slack.
var builtinModels = []types.Model{
	{
		Key:          "smollm2-360m-q8",
		Name:         "SmolLM2 360M (Q8)",
		File:         "smollm2-360m-instruct-q8_0.gguf",
		URL:          "https://huggingface.co/HuggingFaceTB/SmolLM2-360M-Instruct-GGUF/resolve/main/smollm2-360m-instruct-q8_0.gguf",
		MinRAMMB:     1024,
		MinStorageMB: 500,
		QualityTier:  1,
	},
	{
		Key:               "llama-3.2-1b-q4",
		Name:              "Llama 3.2 1B (Q4)",
		File:              "llama-3.2-1b-instruct-q4_k_m.gguf",
		URL:               "https://huggingface.co/hugging-quants/Llama-3.2-1B-Instruct-Q4_K_M-GGUF/resolve/main/llama-3.2-1b-instruct-q4_k_m.gguf",
		MinRAMMB:          2048,
		MinStorageMB:      900,
		MinBatteryPercent: 15,
		QualityTier:       2,
	},
	{
		Key:               "qwen2.5-3b-q4",
		Name:              "Qwen 2.5 3B (Q4)",
		File:              "qwen2.5-3b-instruct-q4_k_m.gguf",
		URL:               "https://huggingface.co/Qwen/Qwen2.5-3B-Instruct-GGUF/resolve/main/qwen2.5-3b-instruct-q4_k_m.gguf",
		MinRAMMB:          4096,
		MinStorageMB:      2200,
		MinBatteryPercent: 20,
		QualityTier:       3,
	},
	{
		Key:               "llama-3.1-8b-q4",
		Name:              "Llama 3.1 8B (Q4)",
		File:              "meta-llama-3.1-8b-instruct-q4_k_m.gguf",
		URL:               "https://huggingface.co/bartowski/Meta-Llama-3.1-8B-Instruct-GGUF/resolve/main/Meta-Llama-3.1-8B-Instruct-Q4_K_M.gguf",
		MinRAMMB:          6144,
		MinStorageMB:      5500,
		MinBatteryPercent: 30,
		QualityTier:       4,
	},
	{
		Key:               "qwen2.5-14b-q4",
		Name:              "Qwen 2.5 14B (Q4)",
		File:              "qwen2.5-14b-instruct-q4_k_m.gguf",
		URL:               "https://huggingface.co/Qwen/Qwen2.5-14B-Instruct-GGUF/resolve/main/qwen2.5-14b-instruct-q4_k_m.gguf",
		MinRAMMB:          10240,
		MinStorageMB:      9500,
		MinBatteryPercent: 40,
		QualityTier:       5,
	},
}

var builtinTierDefaults = map[types.DeviceTier]string{
	types.TierLow:    "smollm2-360m-q8",
	types.TierMedium: "llama-3.2-1b-q4",
	types.TierHigh:   "qwen2.5-3b-q4",
	types.TierUltra:  "llama-3.1-8b-q4",
}

// Builtin returns the compiled-in catalog.
func Builtin() *Catalog {
	return FromModels(builtinModels, builtinTierDefaults)
}

// FromModels builds a catalog from explicit entries; used by tests and by
// config-supplied catalogs. Declaration order is preserved and is the
// tie-break order for upgrade selection.
func FromModels(models []types.Model, tierDefaults map[types.DeviceTier]string) *Catalog {
	c := &Catalog{
		models:       make([]types.Model, len(models)),
		byKey:        make(map[string]int, len(models)),
		tierDefaults: make(map[types.DeviceTier]string, len(tierDefaults)),
	}
	copy(c.models, models)
	for i, m := range c.models {
		c.byKey[m.Key] = i
	}
	for tier, key := range tierDefaults {
		c.tierDefaults[tier] = key
	}
	return c
}

// AllKeys returns catalog keys in declaration order.
func (c *Catalog) AllKeys() []string {
	keys := make([]string, len(c.models))
	for i, m := range c.models {
		keys[i] = m.Key
	}
	return keys
}

// Models returns a copy of all entries in declaration order.
func (c *Catalog) Models() []types.Model {
	out := make([]types.Model, len(c.models))
	copy(out, c.models)
	return out
}

// Lookup returns the entry for key.
func (c *Catalog) Lookup(key string) (types.Model, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return types.Model{}, false
	}
	return c.models[i], true
}

// RequirementsFor is Lookup by another name, matching the admission-side
// vocabulary.
func (c *Catalog) RequirementsFor(key string) (types.Model, bool) {
	return c.Lookup(key)
}

// DisplayNameFor returns the human-readable name for key, or the key itself
// when unknown.
func (c *Catalog) DisplayNameFor(key string) string {
	if m, ok := c.Lookup(key); ok {
		return m.Name
	}
	return key
}

// URLFor returns the download URL for key.
func (c *Catalog) URLFor(key string) (string, bool) {
	m, ok := c.Lookup(key)
	if !ok {
		return "", false
	}
	return m.URL, true
}

// DefaultForTier returns the fixed default key for a device tier.
func (c *Catalog) DefaultForTier(tier types.DeviceTier) (string, bool) {
	key, ok := c.tierDefaults[tier]
	return key, ok
}
