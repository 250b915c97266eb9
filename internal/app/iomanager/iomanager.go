// Package iomanager translates between the hardware-side SUD key space and
// the dense logical ID space the rest of the system operates on, and owns
// the auto-switchback timer for timed output pulses.
package iomanager

import (
	"time"

	"barracuda/internal/app/bus"
	"barracuda/internal/app/capability"
	"barracuda/internal/app/sud"
	"barracuda/internal/app/timer"
	"barracuda/internal/config/logger"
)

// PinState is the two-valued level a digital input or output carries.
type PinState int

const (
	Low PinState = iota
	High
)

// RawInputEvent is emitted by reader/HAL modules at the hardware SUD level.
type RawInputEvent struct {
	SUD   sud.SUD
	State PinState
}

// InputEvent is the logical-ID translation of a RawInputEvent, published
// once the manager has resolved the SUD to a logical input ID.
type InputEvent struct {
	LogicalID int
	State     PinState
}

// OutputSwitch is a request, at the logical-ID level, to drive an output
// and optionally auto-switchback after switchTimeMs.
type OutputSwitch struct {
	LogicalID    int
	TargetState  PinState
	SwitchTimeMs uint32
}

// RawOutputSwitch is the hardware-SUD-level translation of an OutputSwitch,
// consumed by the concrete GPIO driver collaborator.
type RawOutputSwitch struct {
	SUD         sud.SUD
	TargetState PinState
}

// Manager owns the capability aggregator and the per-logical-output
// switchback guards. It is built from capability advertisements gathered
// during LowLevelInit, then runs for the life of the process.
type Manager struct {
	bus   *bus.Bus
	caps  *capability.Aggregator
	timer *timer.Service
	log   logger.Logger

	guards map[int]*timer.Guard
}

// New returns a Manager wired onto b, using svc for scheduled switchbacks
// and caps (already built) for SUD<->logical translation.
func New(b *bus.Bus, caps *capability.Aggregator, svc *timer.Service, log logger.Logger) *Manager {
	return &Manager{
		bus:    b,
		caps:   caps,
		timer:  svc,
		log:    log.WithComponent("IOMGR"),
		guards: make(map[int]*timer.Guard),
	}
}

// HandleRawInput translates a hardware-level input event into its logical
// form and publishes it, or drops it silently if the SUD is unknown.
func (m *Manager) HandleRawInput(ev RawInputEvent) {
	logical, err := m.caps.SUDToLogical(ev.SUD, capability.KindInputs)
	if err != nil {
		m.log.Warn().Str("sud", "unknown").Msg("dropping raw input event for unadvertised sud")
		return
	}

	bus.Publish(m.bus, InputEvent{LogicalID: logical, State: ev.State})
}

// HandleOutputSwitch translates a logical output switch into its hardware
// form, publishes it, and - if SwitchTimeMs > 0 - arms an automatic
// switchback to the opposite state, cancelling any switchback already
// pending on the same logical output.
func (m *Manager) HandleOutputSwitch(sw OutputSwitch) {
	target, err := m.caps.LogicalToSUD(sw.LogicalID, capability.KindOutputs)
	if err != nil {
		m.log.Warn().Int("logical_id", sw.LogicalID).Msg("dropping output switch for unknown logical id")
		return
	}

	bus.Publish(m.bus, RawOutputSwitch{SUD: target, TargetState: sw.TargetState})

	if prev, ok := m.guards[sw.LogicalID]; ok {
		prev.Cancel()
		delete(m.guards, sw.LogicalID)
	}

	if sw.SwitchTimeMs == 0 {
		return
	}

	opposite := Low
	if sw.TargetState == Low {
		opposite = High
	}

	m.guards[sw.LogicalID] = m.timer.Schedule(time.Duration(sw.SwitchTimeMs)*time.Millisecond, func() {
		bus.Publish(m.bus, RawOutputSwitch{SUD: target, TargetState: opposite})
	})
}

// Run drains RawInputEvent and OutputSwitch messages for as long as stop
// is open. Capability advertisements are assumed already gathered and
// Build() already called on caps before Run starts; the App does this when
// it is constructed, before the boot barrier begins.
func (m *Manager) Run(stop <-chan struct{}) {
	inputs := bus.Subscribe[RawInputEvent](m.bus)
	outputs := bus.Subscribe[OutputSwitch](m.bus)

	shared := bus.NewSignal()
	inputs.Queue().ArmTrigger(shared, "input")
	outputs.Queue().ArmTrigger(shared, "output")

	for {
		select {
		case <-stop:
			return
		default:
		}

		tag, ok := shared.WaitTimeout(200 * time.Millisecond)
		if !ok {
			continue
		}

		switch tag {
		case "input":
			if v, ok := inputs.TryRecv(); ok {
				m.HandleRawInput(v)
			}
		case "output":
			if v, ok := outputs.TryRecv(); ok {
				m.HandleOutputSwitch(v)
			}
		}
	}
}
