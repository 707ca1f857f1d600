package manager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"modelmgr/internal/catalog"
	"modelmgr/internal/prefs"
	"modelmgr/internal/probe"
	"modelmgr/pkg/types"
)

func newTestCatalog() *catalog.Catalog {
	return catalog.FromModels([]types.Model{
		{Key: "tiny-1b", Name: "Tiny 1B", File: "tiny.gguf", MinRAMMB: 1024, MinStorageMB: 500, QualityTier: 1},
		{Key: "small-3b", Name: "Small 3B", File: "small.gguf", MinRAMMB: 2048, MinStorageMB: 1500, QualityTier: 2},
		{Key: "mid-7b", Name: "Mid 7B", File: "mid.gguf", MinRAMMB: 4096, MinStorageMB: 4000, QualityTier: 3},
	}, map[types.DeviceTier]string{
		types.TierLow:    "tiny-1b",
		types.TierMedium: "small-3b",
		types.TierHigh:   "mid-7b",
		types.TierUltra:  "mid-7b",
	})
}

func newTestProbe(availRAM, storageMB, batteryPct int, charging bool) *probe.Probe {
	return probe.New("/",
		probe.WithMemReader(func() (int, int, error) { return 16384, availRAM, nil }),
		probe.WithStorageReader(func(string) (int, error) { return storageMB, nil }),
		probe.WithBatteryReader(func() (int, bool, error) { return batteryPct, charging, nil }),
	)
}

// fakeDownloader replays a fixed progress sequence, then returns err.
type fakeDownloader struct {
	mu    sync.Mutex
	steps []float64
	err   error
	calls int
	ids   []string
}

func (d *fakeDownloader) Download(_ context.Context, modelID string, progress func(float64)) error {
	d.mu.Lock()
	d.calls++
	d.ids = append(d.ids, modelID)
	d.mu.Unlock()
	for _, p := range d.steps {
		progress(p)
	}
	return d.err
}

func (d *fakeDownloader) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// fakeLoader fails the first failures calls, then succeeds. With declined
// set it returns (false, nil) instead of an error. An optional block channel
// parks the call until closed, for busy-rejection tests.
type fakeLoader struct {
	mu       sync.Mutex
	failures int
	declined bool
	calls    int
	block    chan struct{}
	started  chan struct{}
}

func (l *fakeLoader) Load(ctx context.Context, modelID string) (bool, error) {
	l.mu.Lock()
	l.calls++
	n := l.calls
	started := l.started
	block := l.block
	l.mu.Unlock()
	if started != nil && n == 1 {
		close(started)
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if n <= l.failures {
		if l.declined {
			return false, nil
		}
		return false, errLoaderTransient
	}
	return true, nil
}

func (l *fakeLoader) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

var errLoaderTransient = errors.New("engine not warmed up")

// staticLister serves a fixed host listing where every catalog key is its
// own runtime ID.
type staticLister struct {
	downloaded map[string]bool
	err        error
}

func (s *staticLister) ListAvailableModels(context.Context) ([]ListedModel, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []ListedModel{
		{ID: "tiny-1b", DisplayName: "Tiny 1B", IsDownloaded: s.downloaded["tiny-1b"]},
		{ID: "small-3b", DisplayName: "Small 3B", IsDownloaded: s.downloaded["small-3b"]},
		{ID: "mid-7b", DisplayName: "Mid 7B", IsDownloaded: s.downloaded["mid-7b"]},
	}
	return out, nil
}

// env wires a Manager against in-memory collaborators.
type env struct {
	m      *Manager
	pub    *MemoryPublisher
	prefs  *prefs.Store
	dl     *fakeDownloader
	loader *fakeLoader
	lister *staticLister
}

type envOpt func(*Config, *env)

func withProbe(p *probe.Probe) envOpt {
	return func(cfg *Config, _ *env) { cfg.Probe = p }
}

func withLoader(l *fakeLoader) envOpt {
	return func(cfg *Config, e *env) { cfg.Loader = l; e.loader = l }
}

func withDownloader(d *fakeDownloader) envOpt {
	return func(cfg *Config, e *env) { cfg.Downloader = d; e.dl = d }
}

func withLister(l *staticLister) envOpt {
	return func(cfg *Config, e *env) { cfg.Lister = l; e.lister = l }
}

func withAttempts(n int) envOpt {
	return func(cfg *Config, _ *env) { cfg.LoadAttempts = n }
}

func newEnv(t *testing.T, opts ...envOpt) *env {
	t.Helper()
	store, err := prefs.OpenInMemory(zerolog.Nop())
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	e := &env{
		pub:    NewMemoryPublisher(),
		prefs:  store,
		dl:     &fakeDownloader{steps: []float64{0.5, 1}},
		loader: &fakeLoader{},
		lister: &staticLister{downloaded: map[string]bool{}},
	}
	cfg := Config{
		Catalog:    newTestCatalog(),
		Probe:      newTestProbe(8192, 100000, 90, true),
		Prefs:      store,
		Downloader: e.dl,
		Loader:     e.loader,
		Lister:     e.lister,
		Logger:     zerolog.Nop(),
		Publisher:  e.pub,
		RetryDelay: time.Millisecond,
	}
	for _, o := range opts {
		o(&cfg, e)
	}
	e.m = New(cfg)
	return e
}

// stages flattens the published sequence to its stage names.
func stages(states []State) []Stage {
	out := make([]Stage, len(states))
	for i, s := range states {
		out[i] = s.Stage
	}
	return out
}

// downloadProgresses extracts the progress values of Downloading states, in
// publication order.
func downloadProgresses(states []State) []float64 {
	var out []float64
	for _, s := range states {
		if s.Stage == StageDownloading {
			out = append(out, s.Progress)
		}
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
