package manager

import (
	"context"
	"time"

	"modelmgr/internal/policy"
	"modelmgr/pkg/types"
)

// Status builds the detailed response for GET /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.Lock()
	resp := types.StatusResponse{
		State:                 string(m.state.Stage),
		LastError:             m.state.Err,
		LoadsTotal:            m.loadsTotal,
		LoadFailuresTotal:     m.loadFailuresTotal,
		DownloadsTotal:        m.downloadsTotal,
		DownloadFailuresTotal: m.downloadFailuresTotal,
	}
	if m.cur != nil {
		resp.CurrentModelKey = m.cur.Key
		resp.CurrentModelID = m.cur.ID
	}
	start := m.startTime
	m.mu.Unlock()

	if snap, ok := m.probe.Latest(); ok {
		resp.Resources = &snap
	}
	now := time.Now()
	resp.UptimeSeconds = int64(now.Sub(start).Seconds())
	resp.ServerTimeUnix = now.Unix()
	return resp
}

// Models joins the catalog with the host listing for GET /models. Listing
// failures degrade to catalog-only entries rather than failing the request.
func (m *Manager) Models(ctx context.Context) []types.ModelStatus {
	byKeyID := map[string]string{}
	byKeyDown := map[string]bool{}
	if listed, err := m.lister.ListAvailableModels(ctx); err == nil {
		for _, l := range listed {
			if key, ok := m.keyForListed(l); ok {
				byKeyID[key] = l.ID
				byKeyDown[key] = l.IsDownloaded
			}
		}
	} else {
		m.log.Warn().Err(err).Msg("host model listing unavailable")
	}
	models := m.cat.Models()
	out := make([]types.ModelStatus, 0, len(models))
	for _, mdl := range models {
		out = append(out, types.ModelStatus{
			Model:        mdl,
			HostID:       byKeyID[mdl.Key],
			IsDownloaded: byKeyDown[mdl.Key],
		})
	}
	return out
}

// CanUpgradeModel reports whether a strictly better model than the current
// one could be loaded right now, and which.
func (m *Manager) CanUpgradeModel() (bool, string) {
	key := m.currentKey()
	if key == "" {
		return false, ""
	}
	snap, ok := m.probe.Latest()
	if !ok {
		snap = m.probe.Sample()
	}
	return policy.CanUpgrade(m.cat, snap, key, m.probe.SafetyMargin())
}

// GetModelRecommendation returns a human-readable recommendation derived
// from the device tier. No side effects beyond sampling when no snapshot
// exists yet.
func (m *Manager) GetModelRecommendation() string {
	snap, ok := m.probe.Latest()
	if !ok {
		snap = m.probe.Sample()
	}
	return policy.Recommendation(m.cat, snap, m.probe.SafetyMargin())
}
