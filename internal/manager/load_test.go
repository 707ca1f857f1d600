package manager

import (
	"context"
	"strings"
	"testing"
)

// Transient engine failures are retried up to the attempt budget; two
// failures followed by success still reaches Ready.
func TestLoadRetriesThenSucceeds(t *testing.T) {
	e := newEnv(t, withLoader(&fakeLoader{failures: 2}))

	if err := e.m.LoadModel(context.Background(), "small-3b", "small-3b"); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if got := e.loader.callCount(); got != 3 {
		t.Errorf("loader called %d times, want 3", got)
	}
	st := e.m.CurrentState()
	if st.Stage != StageReady || st.ModelName != "Small 3B" || st.ModelID != "small-3b" {
		t.Fatalf("unexpected terminal state: %+v", st)
	}
	if !e.m.Ready() {
		t.Error("Ready() should report true after a successful load")
	}
	// The last-loaded key persistence is fire-and-forget.
	waitFor(t, "last-loaded persistence", func() bool {
		return e.prefs.LastLoadedModel() == "small-3b"
	})
}

func TestLoadSequencePublishes(t *testing.T) {
	e := newEnv(t)

	if err := e.m.LoadModel(context.Background(), "tiny-1b", "tiny-1b"); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	got := stages(e.pub.States())
	want := []Stage{StageLoading, StageReady}
	if len(got) != len(want) {
		t.Fatalf("published stages %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("published stages %v, want %v", got, want)
		}
	}
}

// Exhausting the attempt budget publishes an error naming the attempt count
// and stops calling the engine.
func TestLoadExhaustsAttempts(t *testing.T) {
	e := newEnv(t, withLoader(&fakeLoader{failures: 10}))

	err := e.m.LoadModel(context.Background(), "small-3b", "small-3b")
	if !IsLoadFailed(err) {
		t.Fatalf("want load failure, got %v", err)
	}
	if got := e.loader.callCount(); got != 3 {
		t.Errorf("loader called %d times, want 3", got)
	}
	st := e.m.CurrentState()
	if st.Stage != StageError {
		t.Fatalf("stage = %s, want error", st.Stage)
	}
	if !strings.Contains(st.Err, "after 3 attempts") {
		t.Errorf("error message %q does not name the attempt count", st.Err)
	}
	if e.m.Ready() {
		t.Error("Ready() must be false after an exhausted load")
	}
	if e.prefs.LastLoadedModel() != "" {
		t.Error("failed load must not update the last-loaded key")
	}
}

// An attempt budget override is honored.
func TestLoadAttemptBudgetConfigurable(t *testing.T) {
	e := newEnv(t, withLoader(&fakeLoader{failures: 10}), withAttempts(5))

	err := e.m.LoadModel(context.Background(), "small-3b", "small-3b")
	if !IsLoadFailed(err) {
		t.Fatalf("want load failure, got %v", err)
	}
	if got := e.loader.callCount(); got != 5 {
		t.Errorf("loader called %d times, want 5", got)
	}
}

// (false, nil) from the engine is a decline, retried like a failure.
func TestLoadEngineDecline(t *testing.T) {
	e := newEnv(t, withLoader(&fakeLoader{failures: 10, declined: true}))

	err := e.m.LoadModel(context.Background(), "small-3b", "small-3b")
	if !IsLoadFailed(err) {
		t.Fatalf("want load failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "declined") {
		t.Errorf("error %q should mention the decline", err)
	}
}

// A resource rejection is not a transient failure: zero engine calls.
func TestLoadRejectedByAdmission(t *testing.T) {
	e := newEnv(t, withProbe(newTestProbe(1500, 100000, 90, true)))

	err := e.m.LoadModel(context.Background(), "small-3b", "small-3b")
	if !IsResourceRejected(err) {
		t.Fatalf("want resource rejection, got %v", err)
	}
	if e.loader.callCount() != 0 {
		t.Error("loader must not be invoked after rejection")
	}
	st := e.m.CurrentState()
	if st.Stage != StageError || !strings.Contains(st.Err, "insufficient RAM") {
		t.Fatalf("unexpected terminal state: %+v", st)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	e := newEnv(t)
	err := e.m.LoadModel(context.Background(), "nosuch", "nosuch")
	if !IsModelNotFound(err) {
		t.Fatalf("want not-found, got %v", err)
	}
}
