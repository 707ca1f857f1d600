package manager

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"modelmgr/internal/catalog"
	"modelmgr/internal/prefs"
	"modelmgr/internal/probe"
	"modelmgr/internal/statebus"
	"modelmgr/pkg/types"
)

func newStateBus() *statebus.Bus[State]                   { return statebus.New[State]() }
func newSnapshotBus() *statebus.Bus[types.ResourceSnapshot] { return statebus.New[types.ResourceSnapshot]() }

// Manager drives the model lifecycle state machine: check resources, pick a
// model, acquire it, load it, publish every transition. One lifecycle
// operation is in flight at a time; concurrent calls are rejected with a
// busy error rather than cancelling the prior operation.
type Manager struct {
	mu    sync.Mutex
	busy  bool
	state State
	cur   *currentModel

	cat   *catalog.Catalog
	probe *probe.Probe
	prefs *prefs.Store

	downloader Downloader
	loader     Loader
	lister     ModelLister

	states    *statebus.Bus[State]
	snapshots *statebus.Bus[types.ResourceSnapshot]
	publisher StatePublisher

	log       zerolog.Logger
	startTime time.Time

	loadAttempts    int
	retryDelay      time.Duration
	progressStepPct int

	loadsTotal            uint64
	loadFailuresTotal     uint64
	downloadsTotal        uint64
	downloadFailuresTotal uint64
}

// begin reserves the single in-flight lifecycle slot.
func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return busyError{}
	}
	m.busy = true
	return nil
}

func (m *Manager) end() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

// publish records s as current and broadcasts it. Publication never blocks.
func (m *Manager) publish(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	observeStage(s.Stage)
	m.publisher.PublishState(s)
	m.states.Publish(s)
}

// CurrentState returns the latest published lifecycle state.
func (m *Manager) CurrentState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ready reports whether a model is loaded and serving.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Stage == StageReady && m.cur != nil
}

// SubscribeStates registers a lifecycle state observer. The latest state is
// delivered immediately.
func (m *Manager) SubscribeStates() (<-chan State, func()) {
	return m.states.Subscribe()
}

// SubscribeSnapshots registers a resource snapshot observer.
func (m *Manager) SubscribeSnapshots() (<-chan types.ResourceSnapshot, func()) {
	return m.snapshots.Subscribe()
}

// Resample takes a fresh resource snapshot and publishes it.
func (m *Manager) Resample() types.ResourceSnapshot {
	snap := m.probe.Sample()
	observeTier(snap.DeviceTier)
	m.snapshots.Publish(snap)
	return snap
}

// StartSampler re-samples resources on a fixed interval until ctx is done.
func (m *Manager) StartSampler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.Resample()
			}
		}
	}()
}

// Preferences returns the persisted user preferences.
func (m *Manager) Preferences() types.Preferences {
	return m.prefs.Preferences()
}

// SetPreferredModel records an explicit user choice. The key must exist in
// the catalog; an empty key clears the preference.
func (m *Manager) SetPreferredModel(key string) error {
	if key != "" {
		if _, ok := m.cat.Lookup(key); !ok {
			return ErrModelNotFound(key)
		}
	}
	return m.prefs.SetPreferredModel(key)
}

// SetAutoLoad records the auto-load flag.
func (m *Manager) SetAutoLoad(enabled bool) error {
	return m.prefs.SetAutoLoadEnabled(enabled)
}

// currentKey returns the loaded model's key, falling back to the persisted
// last-loaded key when nothing is loaded this session.
func (m *Manager) currentKey() string {
	m.mu.Lock()
	cur := m.cur
	m.mu.Unlock()
	if cur != nil {
		return cur.Key
	}
	return m.prefs.LastLoadedModel()
}
