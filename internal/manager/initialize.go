package manager

import (
	"context"

	"modelmgr/internal/policy"
	"modelmgr/pkg/types"
)

// Initialize samples resources and, when both the caller and the persisted
// preference allow it, runs the full selection, acquisition, and load
// pipeline. With autoLoad false it publishes the checking transition and the
// snapshot, then returns to idle without touching preferences.
func (m *Manager) Initialize(ctx context.Context, autoLoad bool) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	m.publish(Checking())
	snap := m.Resample()

	if !autoLoad || !m.prefs.AutoLoadEnabled() {
		m.publish(Idle())
		return nil
	}
	return m.runPipeline(ctx, snap)
}

// Acquire loads a specific catalog key on caller request, downloading first
// when the bytes are not local. Used for explicit model switches from Ready
// or Error.
func (m *Manager) Acquire(ctx context.Context, key string) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	m.publish(Checking())
	if _, ok := m.cat.Lookup(key); !ok {
		err := ErrModelNotFound(key)
		m.publish(Failed("%v", err))
		return err
	}
	id, isDownloaded, err := m.resolveHostModel(ctx, key)
	if err != nil {
		m.publish(Failed("%v", err))
		return err
	}
	if isDownloaded {
		return m.load(ctx, id, key)
	}
	return m.downloadAndLoad(ctx, id, key)
}

// runPipeline performs selection against a snapshot and drives the chosen
// model to Ready. Caller holds the in-flight slot.
func (m *Manager) runPipeline(ctx context.Context, snap types.ResourceSnapshot) error {
	downloaded, err := m.downloadedSet(ctx)
	if err != nil {
		m.publish(Failed("listing models: %v", err))
		return err
	}
	key := policy.SelectBestModel(m.cat, snap, m.prefs.Preferences(), downloaded, m.probe.SafetyMargin())
	m.log.Info().Str("model", key).Str("tier", string(snap.DeviceTier)).Msg("selected model")

	id, isDownloaded, err := m.resolveHostModel(ctx, key)
	if err != nil {
		m.publish(Failed("%v", err))
		return err
	}
	if isDownloaded {
		return m.load(ctx, id, key)
	}
	return m.downloadAndLoad(ctx, id, key)
}

// downloadedSet folds the host listing into per-catalog-key availability.
func (m *Manager) downloadedSet(ctx context.Context) (map[string]bool, error) {
	listed, err := m.lister.ListAvailableModels(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(listed))
	for _, l := range listed {
		if key, ok := m.keyForListed(l); ok {
			out[key] = l.IsDownloaded
		}
	}
	return out, nil
}

// resolveHostModel maps a catalog key to the host-assigned runtime ID and
// reports whether the bytes are already local. A key absent from the host
// listing is a configuration mismatch, surfaced as not-found.
func (m *Manager) resolveHostModel(ctx context.Context, key string) (string, bool, error) {
	listed, err := m.lister.ListAvailableModels(ctx)
	if err != nil {
		return "", false, err
	}
	name := m.cat.DisplayNameFor(key)
	for _, l := range listed {
		if l.ID == key || l.DisplayName == name {
			return l.ID, l.IsDownloaded, nil
		}
	}
	return "", false, ErrModelNotFound(key)
}

// keyForListed is the inverse mapping: host listing entry to catalog key.
func (m *Manager) keyForListed(l ListedModel) (string, bool) {
	if _, ok := m.cat.Lookup(l.ID); ok {
		return l.ID, true
	}
	for _, mdl := range m.cat.Models() {
		if mdl.Name == l.DisplayName {
			return mdl.Key, true
		}
	}
	return "", false
}
