package manager

import (
	"context"
	"math"
	"sync"
)

// DownloadAndLoad acquires and loads a model on caller request. Guarded by
// admission: a hard rejection publishes Error immediately without any I/O.
// Downloads are not auto-retried; a failed download may leave partial state
// whose cleanup the orchestrator does not own.
func (m *Manager) DownloadAndLoad(ctx context.Context, modelID, key string) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()
	return m.downloadAndLoad(ctx, modelID, key)
}

func (m *Manager) downloadAndLoad(ctx context.Context, modelID, key string) error {
	mdl, ok := m.cat.Lookup(key)
	if !ok {
		err := ErrModelNotFound(key)
		m.publish(Failed("%v", err))
		return err
	}
	admitted, reason := m.probe.CanLoad(mdl)
	if !admitted {
		m.publish(Failed("%s", reason))
		return resourceRejectedError{reason: reason}
	}
	if reason != "" {
		m.log.Warn().Str("model", key).Msg(reason)
	}

	m.publish(Downloading(mdl.Name, 0))
	guard := newProgressGuard(m.progressStepPct)
	err := m.downloader.Download(ctx, modelID, func(p float64) {
		if v, publish := guard.advance(p); publish {
			m.publish(Downloading(mdl.Name, v))
		}
	})
	if err != nil {
		m.mu.Lock()
		m.downloadFailuresTotal++
		m.mu.Unlock()
		downloadFailures.Inc()
		m.publish(Failed("download failed: %v", err))
		return downloadFailedError{err: err}
	}
	m.mu.Lock()
	m.downloadsTotal++
	m.mu.Unlock()
	downloads.Inc()
	return m.load(ctx, modelID, key)
}

// progressGuard folds an async progress stream into bounded, monotonic
// publications. A value is published only when it exceeds the last published
// value (out-of-order or retried chunks must never make the observed
// percentage go backward) and the integer percentage advanced by at least
// stepPct points, or reached 99.
type progressGuard struct {
	mu      sync.Mutex
	lastVal float64
	lastPct int
	stepPct int
}

func newProgressGuard(stepPct int) *progressGuard {
	if stepPct <= 0 {
		stepPct = defaultProgressStepPct
	}
	return &progressGuard{stepPct: stepPct}
}

// advance reports whether p should be published, updating the guard state
// only when it is.
func (g *progressGuard) advance(p float64) (float64, bool) {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if p <= g.lastVal {
		return 0, false
	}
	pct := int(math.Round(p * 100))
	if pct < 99 && pct-g.lastPct < g.stepPct {
		return 0, false
	}
	g.lastVal = p
	g.lastPct = pct
	return p, true
}
