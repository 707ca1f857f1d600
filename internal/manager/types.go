package manager

import (
	"fmt"

	"modelmgr/pkg/types"
)

// Stage names the lifecycle phases. Exactly one stage is current at any
// time; transitions are sequential per Manager instance.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageChecking    Stage = "checking"
	StageDownloading Stage = "downloading"
	StageLoading     Stage = "loading"
	StageReady       Stage = "ready"
	StageError       Stage = "error"
)

// State is the lifecycle state published on the bus: a stage plus the
// payload fields meaningful for it. Consumers must switch exhaustively on
// Stage; payload fields not meaningful for a stage are zero.
type State struct {
	Stage Stage
	// ModelName is set while downloading, loading, and ready.
	ModelName string
	// ModelID is the host-assigned runtime ID, set when ready.
	ModelID string
	// Progress is in [0,1], meaningful only while downloading.
	Progress float64
	// Err is the human-readable failure, set only in the error stage.
	Err string
}

func Idle() State                 { return State{Stage: StageIdle} }
func Checking() State             { return State{Stage: StageChecking} }
func Loading(name string) State   { return State{Stage: StageLoading, ModelName: name} }
func Ready(name, id string) State { return State{Stage: StageReady, ModelName: name, ModelID: id} }

func Downloading(name string, progress float64) State {
	return State{Stage: StageDownloading, ModelName: name, Progress: progress}
}

func Failed(format string, args ...any) State {
	return State{Stage: StageError, Err: fmt.Sprintf(format, args...)}
}

// View projects the state onto the wire type served over HTTP.
func (s State) View() types.LifecycleStateView {
	return types.LifecycleStateView{
		Stage:     string(s.Stage),
		ModelName: s.ModelName,
		ModelID:   s.ModelID,
		Progress:  s.Progress,
		Error:     s.Err,
	}
}

// currentModel tracks what is loaded right now.
type currentModel struct {
	Key  string
	Name string
	ID   string
}
