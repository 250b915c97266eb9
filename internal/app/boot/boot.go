// Package boot implements the phased startup supervisor: every module
// performs Sync -> wait LowLevelInit -> wait HighLevelInit -> wait
// Application, checking in with a StageComplete after each phase it runs,
// and the supervisor gates each transition on a completion barrier.
package boot

import (
	"fmt"
	"time"

	"barracuda/internal/app/bus"
	"barracuda/internal/app/errors"
	"barracuda/internal/app/sud"
	"barracuda/internal/config"
	"barracuda/internal/config/logger"
)

// Stage identifies one phase of the boot sequence.
type Stage int

const (
	StageSync Stage = iota
	StageLowLevelInit
	StageHighLevelInit
	StageApplication
	StageShutdown
)

func (s Stage) String() string {
	switch s {
	case StageSync:
		return "Sync"
	case StageLowLevelInit:
		return "LowLevelInit"
	case StageHighLevelInit:
		return "HighLevelInit"
	case StageApplication:
		return "Application"
	case StageShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// RunStage is broadcast by the supervisor to release every module into the
// next phase.
type RunStage struct {
	Stage Stage
}

// StageComplete is sent by a module once it has finished the work for Stage.
type StageComplete struct {
	Stage    Stage
	ModuleID sud.SUD
}

// Shutdown is broadcast to ask every module to stop.
type Shutdown struct{}

// Supervisor drives the barrier protocol for a fixed number of modules.
type Supervisor struct {
	bus       *bus.Bus
	log       logger.Logger
	n         int
	completes *bus.Receiver[StageComplete]
}

// NewSupervisor returns a Supervisor expecting n modules to check in at
// each barrier. It subscribes to StageComplete right away, so check-ins
// sent by workers started before Run are not lost.
func NewSupervisor(b *bus.Bus, log logger.Logger, n int) *Supervisor {
	return &Supervisor{bus: b, log: log.WithComponent("BOOT"), n: n, completes: bus.Subscribe[StageComplete](b)}
}

// Run executes the full barrier sequence. On success every module has
// observed RunStage(Application); the caller is then free to block on
// whatever signals process shutdown. On barrier timeout it returns
// ErrBarrierTimeout with the checked-in module IDs logged - the caller
// treats this as a programming error (fatal process abort per the error
// handling design) and should invoke crash reporting before exiting.
func (s *Supervisor) Run() error {
	completes := s.completes

	if _, err := s.collect(completes, StageSync, config.SyncBarrierTimeout); err != nil {
		return err
	}

	bus.Publish(s.bus, RunStage{Stage: StageLowLevelInit})

	if _, err := s.collect(completes, StageLowLevelInit, config.LLIBarrierTimeout); err != nil {
		return err
	}

	bus.Publish(s.bus, RunStage{Stage: StageHighLevelInit})

	if _, err := s.collect(completes, StageHighLevelInit, config.HLIBarrierTimeout); err != nil {
		return err
	}

	bus.Publish(s.bus, RunStage{Stage: StageApplication})

	return nil
}

func (s *Supervisor) collect(r *bus.Receiver[StageComplete], stage Stage, timeout time.Duration) ([]sud.SUD, error) {
	seen := make(map[sud.SUD]bool, s.n)
	deadline := time.Now().Add(timeout)

	for len(seen) < s.n {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			s.log.Error().
				Str("stage", stage.String()).
				Int("checked_in", len(seen)).
				Str("checked_in_ids", fmt.Sprintf("%#x", checkedIn(seen))).
				Int("expected", s.n).
				Msg("boot barrier timed out")

			return checkedIn(seen), errors.ErrBarrierTimeout
		}

		msg, ok := r.Queue().PopTimeout(remaining)
		if !ok {
			s.log.Error().
				Str("stage", stage.String()).
				Int("checked_in", len(seen)).
				Str("checked_in_ids", fmt.Sprintf("%#x", checkedIn(seen))).
				Int("expected", s.n).
				Msg("boot barrier timed out")

			return checkedIn(seen), errors.ErrBarrierTimeout
		}

		if msg.Stage == stage {
			seen[msg.ModuleID] = true
		}
	}

	return checkedIn(seen), nil
}

func checkedIn(seen map[sud.SUD]bool) []sud.SUD {
	ids := make([]sud.SUD, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	return ids
}

// Worker is the module-side half of the protocol: call Run with the
// module's own LLI/HLI callbacks, then block on WaitApplication before
// doing any application-level work.
type Worker struct {
	bus      *bus.Bus
	id       sud.SUD
	runStage *bus.Receiver[RunStage]
}

// NewWorker subscribes id to the boot protocol on b.
func NewWorker(b *bus.Bus, id sud.SUD) *Worker {
	return &Worker{bus: b, id: id, runStage: bus.Subscribe[RunStage](b)}
}

// Run performs the Sync -> LLI -> HLI handshake, invoking lli and hli (if
// non-nil) as each stage is released, and returns once HighLevelInit has
// completed. The caller should then wait for StageApplication via
// WaitApplication before starting steady-state work.
func (w *Worker) Run(lli, hli func()) {
	bus.Publish(w.bus, StageComplete{Stage: StageSync, ModuleID: w.id})

	w.awaitStage(StageLowLevelInit)

	if lli != nil {
		lli()
	}

	bus.Publish(w.bus, StageComplete{Stage: StageLowLevelInit, ModuleID: w.id})

	w.awaitStage(StageHighLevelInit)

	if hli != nil {
		hli()
	}

	bus.Publish(w.bus, StageComplete{Stage: StageHighLevelInit, ModuleID: w.id})
}

// WaitApplication blocks until the supervisor releases StageApplication.
func (w *Worker) WaitApplication() {
	w.awaitStage(StageApplication)
}

func (w *Worker) awaitStage(stage Stage) {
	for {
		msg := w.runStage.Recv()
		if msg.Stage == stage {
			return
		}
	}
}
