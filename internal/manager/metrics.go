package manager

import (
	"github.com/prometheus/client_golang/prometheus"

	"modelmgr/pkg/types"
)

var (
	loads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelmgr",
		Subsystem: "lifecycle",
		Name:      "loads_total",
		Help:      "Total successful model loads",
	})

	loadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelmgr",
		Subsystem: "lifecycle",
		Name:      "load_failures_total",
		Help:      "Total load pipelines that exhausted their retries",
	})

	downloads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelmgr",
		Subsystem: "lifecycle",
		Name:      "downloads_total",
		Help:      "Total completed model downloads",
	})

	downloadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "modelmgr",
		Subsystem: "lifecycle",
		Name:      "download_failures_total",
		Help:      "Total failed model downloads",
	})

	stageGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "modelmgr",
			Subsystem: "lifecycle",
			Name:      "stage",
			Help:      "Current lifecycle stage (1 for the active stage, 0 otherwise)",
		},
		[]string{"stage"},
	)

	tierGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "modelmgr",
			Subsystem: "resources",
			Name:      "device_tier",
			Help:      "Current device tier (1 for the active tier, 0 otherwise)",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(loads, loadFailures, downloads, downloadFailures, stageGauge, tierGauge)
}

var allStages = []Stage{StageIdle, StageChecking, StageDownloading, StageLoading, StageReady, StageError}

func observeStage(current Stage) {
	for _, s := range allStages {
		v := 0.0
		if s == current {
			v = 1.0
		}
		stageGauge.WithLabelValues(string(s)).Set(v)
	}
}

var allTiers = []types.DeviceTier{types.TierLow, types.TierMedium, types.TierHigh, types.TierUltra}

func observeTier(current types.DeviceTier) {
	for _, t := range allTiers {
		v := 0.0
		if t == current {
			v = 1.0
		}
		tierGauge.WithLabelValues(string(t)).Set(v)
	}
}
