package manager

import (
	"time"

	"github.com/rs/zerolog"

	"modelmgr/internal/catalog"
	"modelmgr/internal/prefs"
	"modelmgr/internal/probe"
)

// Defaults applied when corresponding Config fields are unset. Retry count
// and delay are policy defaults, not law; callers may tune them.
const (
	defaultLoadAttempts    = 3
	defaultRetryDelay      = 500 * time.Millisecond
	defaultProgressStepPct = 2
)

// Config encapsulates all tunables and collaborators for Manager
// construction. Catalog, Probe, Prefs, Downloader, Loader, and Lister are
// required.
type Config struct {
	Catalog *catalog.Catalog
	Probe   *probe.Probe
	Prefs   *prefs.Store

	Downloader Downloader
	Loader     Loader
	Lister     ModelLister

	Logger zerolog.Logger

	// Publisher observes every published state in order, in addition to the
	// latest-value bus. Nil installs a no-op.
	Publisher StatePublisher

	// LoadAttempts is the total number of load tries (not extra retries).
	LoadAttempts int
	// RetryDelay is the fixed wait between load attempts.
	RetryDelay time.Duration
	// ProgressStepPct is the minimum integer-percent advance between two
	// published download progress values.
	ProgressStepPct int
}

// New constructs a Manager from Config, applying package defaults for the
// zero-valued tunables.
func New(cfg Config) *Manager {
	m := &Manager{
		cat:        cfg.Catalog,
		probe:      cfg.Probe,
		prefs:      cfg.Prefs,
		downloader: cfg.Downloader,
		loader:     cfg.Loader,
		lister:     cfg.Lister,
		log:        cfg.Logger,
		publisher:  cfg.Publisher,
		state:      Idle(),
		startTime:  time.Now(),
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if cfg.LoadAttempts <= 0 {
		m.loadAttempts = defaultLoadAttempts
	} else {
		m.loadAttempts = cfg.LoadAttempts
	}
	if cfg.RetryDelay <= 0 {
		m.retryDelay = defaultRetryDelay
	} else {
		m.retryDelay = cfg.RetryDelay
	}
	if cfg.ProgressStepPct <= 0 {
		m.progressStepPct = defaultProgressStepPct
	} else {
		m.progressStepPct = cfg.ProgressStepPct
	}
	m.states = newStateBus()
	m.snapshots = newSnapshotBus()
	return m
}
