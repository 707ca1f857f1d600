// Package manager is the lifecycle orchestrator: it decides which model to
// run, acquires it, loads it, and publishes every transition on a
// latest-value bus. It is structured into small files by concern:
//
//   - manager.go: core Manager type, in-flight guard, subscriptions.
//   - config.go: Config and package defaults; New applies defaults.
//   - types.go: lifecycle Stage/State and constructors.
//   - errors.go: typed errors and helpers (IsBusy, IsModelNotFound, ...).
//   - collab.go: external collaborator interfaces (Downloader, Loader,
//     ModelLister) and func adapters.
//   - initialize.go: Initialize/Acquire entry points and the selection
//     pipeline.
//   - download.go: download orchestration and progress folding.
//   - load.go: load orchestration with a fixed-delay retry budget.
//   - status.go: Status/Models/upgrade/recommendation projections.
//   - metrics.go: Prometheus counters and gauges.
//
// The state machine:
//
//	Idle -> Checking -> {Loading | Downloading -> Loading} -> Ready
//	any acquisition step -> Error
//
// Ready and Error accept a new Initialize/Acquire call to re-enter
// Checking. Exactly one lifecycle operation runs at a time; a second call
// while one is in flight returns a busy error (checked via IsBusy) instead
// of cancelling the first.
//
// External packages should treat this package as the orchestration layer and
// use public methods only. Internal types are subject to change.
package manager
