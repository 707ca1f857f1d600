// Package probe samples device resources (RAM, storage, battery) and gates
// model admission against them. Reads are cheap and safe from any goroutine;
// a failed read is never fatal and falls back to the last known value, since
// samples only feed admission heuristics.
package probe

import (
	"sync"
	"time"

	"github.com/distatus/battery"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"modelmgr/pkg/types"
)

// DefaultSafetyMargin multiplies a model's RAM requirement during admission.
// 1.0 means no slack.
const DefaultSafetyMargin = 1.0

const mib = 1024 * 1024

type memReading struct {
	totalMB     int
	availableMB int
}

// Probe reads live host counters and classifies the device tier.
type Probe struct {
	storagePath string
	thresholds  []TierThreshold
	margin      float64

	memFn     func() (memReading, error)
	storageFn func(path string) (freeMB int, err error)
	batteryFn func() (percent int, charging bool, err error)

	mu   sync.Mutex
	last types.ResourceSnapshot
	has  bool
}

// Option tweaks Probe construction; used mainly by tests to override the
// host readers and thresholds.
type Option func(*Probe)

// WithThresholds replaces the tier threshold table.
func WithThresholds(table []TierThreshold) Option {
	return func(p *Probe) { p.thresholds = table }
}

// WithSafetyMargin overrides the RAM admission margin.
func WithSafetyMargin(m float64) Option {
	return func(p *Probe) {
		if m > 0 {
			p.margin = m
		}
	}
}

// WithMemReader overrides the RAM reader.
func WithMemReader(fn func() (totalMB, availableMB int, err error)) Option {
	return func(p *Probe) {
		p.memFn = func() (memReading, error) {
			t, a, err := fn()
			return memReading{totalMB: t, availableMB: a}, err
		}
	}
}

// WithStorageReader overrides the free-storage reader.
func WithStorageReader(fn func(path string) (freeMB int, err error)) Option {
	return func(p *Probe) { p.storageFn = fn }
}

// WithBatteryReader overrides the battery reader.
func WithBatteryReader(fn func() (percent int, charging bool, err error)) Option {
	return func(p *Probe) { p.batteryFn = fn }
}

// New builds a Probe that measures free storage at storagePath (the models
// directory volume).
func New(storagePath string, opts ...Option) *Probe {
	p := &Probe{
		storagePath: storagePath,
		thresholds:  DefaultTierThresholds,
		margin:      DefaultSafetyMargin,
		memFn:       readMem,
		storageFn:   readStorage,
		batteryFn:   readBattery,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SafetyMargin returns the configured RAM admission margin. Selection and
// admission must agree on it.
func (p *Probe) SafetyMargin() float64 {
	return p.margin
}

// Sample reads the host counters and returns a fresh snapshot. On a partial
// read failure the last known value for that field is substituted; Sample
// never fails outright.
func (p *Probe) Sample() types.ResourceSnapshot {
	p.mu.Lock()
	snap := p.last
	p.mu.Unlock()

	if r, err := p.memFn(); err == nil {
		snap.TotalRAMMB = r.totalMB
		snap.AvailableRAMMB = r.availableMB
	}
	if freeMB, err := p.storageFn(p.storagePath); err == nil {
		snap.AvailableStorageMB = freeMB
	}
	if pct, charging, err := p.batteryFn(); err == nil {
		snap.BatteryPercent = pct
		snap.IsCharging = charging
	}
	snap.DeviceTier = TierFor(snap.AvailableRAMMB, p.thresholds)
	snap.SampledAt = time.Now()

	p.mu.Lock()
	p.last = snap
	p.has = true
	p.mu.Unlock()
	return snap
}

// Latest returns the most recent snapshot without re-reading the host.
func (p *Probe) Latest() (types.ResourceSnapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.has
}

func readMem() (memReading, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return memReading{}, err
	}
	return memReading{
		totalMB:     int(vm.Total / mib),
		availableMB: int(vm.Available / mib),
	}, nil
}

func readStorage(path string) (int, error) {
	u, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return int(u.Free / mib), nil
}

// readBattery reports 100%/charging for hosts without a battery, so desktop
// machines never trip the low-battery warning.
func readBattery() (int, bool, error) {
	bats, err := battery.GetAll()
	if err != nil || len(bats) == 0 {
		if err != nil {
			return 0, false, err
		}
		return 100, true, nil
	}
	b := bats[0]
	pct := 100
	if b.Full > 0 {
		pct = int(b.Current / b.Full * 100)
		if pct > 100 {
			pct = 100
		}
	}
	charging := b.State == battery.Charging || b.State == battery.Full
	return pct, charging, nil
}
