package boot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barracuda/internal/app/bus"
	"barracuda/internal/app/sud"
	"barracuda/internal/config/logger"
)

func newTestLogger() logger.Logger {
	return logger.NewNoopLogger()
}

func Test_Supervisor_Run_AllModulesCheckIn(t *testing.T) {
	b := bus.New()
	sup := NewSupervisor(b, newTestLogger(), 2)

	w1 := NewWorker(b, sud.Make(sud.KindIoManager, 0, 0))
	w2 := NewWorker(b, sud.Make(sud.KindProfile, 0, 0))

	done := make(chan struct{})
	go func() {
		w1.Run(nil, nil)
		w1.WaitApplication()
		done <- struct{}{}
	}()
	go func() {
		w2.Run(nil, nil)
		w2.WaitApplication()
		done <- struct{}{}
	}()

	err := sup.Run()
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker never observed Application stage")
		}
	}
}

func Test_Supervisor_Collect_SyncBarrierTimeout_WhenModuleNeverChecksIn(t *testing.T) {
	b := bus.New()
	sup := &Supervisor{bus: b, log: newTestLogger(), n: 2}

	// Only one of two expected modules ever checks in for Sync, so the
	// Sync barrier itself times out - collect is invoked directly with a
	// short deadline for a fast test.
	completes := bus.Subscribe[StageComplete](b)
	bus.Publish(b, StageComplete{Stage: StageSync, ModuleID: sud.Make(sud.KindIoManager, 0, 0)})

	ids, err := sup.collect(completes, StageSync, 20*time.Millisecond)
	assert.Error(t, err)
	assert.Len(t, ids, 1)
}

func Test_Supervisor_Collect_IgnoresOtherStages(t *testing.T) {
	b := bus.New()
	sup := &Supervisor{bus: b, log: newTestLogger(), n: 1}

	completes := bus.Subscribe[StageComplete](b)
	bus.Publish(b, StageComplete{Stage: StageHighLevelInit, ModuleID: sud.Make(sud.KindIoManager, 0, 0)})
	bus.Publish(b, StageComplete{Stage: StageSync, ModuleID: sud.Make(sud.KindIoManager, 0, 0)})

	ids, err := sup.collect(completes, StageSync, time.Second)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func Test_Worker_Run_InvokesLLIAndHLICallbacks(t *testing.T) {
	b := bus.New()
	sup := NewSupervisor(b, newTestLogger(), 1)
	w := NewWorker(b, sud.Make(sud.KindIoManager, 0, 0))

	var lliCalled, hliCalled bool

	go func() {
		w.Run(func() { lliCalled = true }, func() { hliCalled = true })
	}()

	err := sup.Run()
	require.NoError(t, err)

	assert.True(t, lliCalled)
	assert.True(t, hliCalled)
}

func Test_Stage_String(t *testing.T) {
	assert.Equal(t, "Sync", StageSync.String())
	assert.Equal(t, "LowLevelInit", StageLowLevelInit.String())
	assert.Equal(t, "HighLevelInit", StageHighLevelInit.String())
	assert.Equal(t, "Application", StageApplication.String())
	assert.Equal(t, "Shutdown", StageShutdown.String())
	assert.Equal(t, "Unknown", Stage(99).String())
}
