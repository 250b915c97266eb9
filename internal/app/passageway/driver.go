package passageway

import (
	"context"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"barracuda/internal/app/bus"
	"barracuda/internal/app/eventlog"
	"barracuda/internal/app/iomanager"
	"barracuda/internal/app/ticker"
	"barracuda/internal/app/timer"
	"barracuda/internal/app/whitelist"
	"barracuda/internal/config"
	"barracuda/internal/config/logger"
)

// TimerKind distinguishes the two self-expiring timers a passageway arms.
type TimerKind int

const (
	TimerAutoswitch TimerKind = iota
	TimerTooLong
)

// PassagewayTimerExpired is routed through the bus rather than invoked
// directly from the timer goroutine, so a passageway's FSM is only ever
// touched from the goroutine that owns it.
type PassagewayTimerExpired struct {
	PassagewayID int
	Kind         TimerKind
}

var allEventKinds = []Event{
	ValidDoorOpenRequestSeen{}, Opened{}, Closed{},
	DoorOpenProfileActive{}, DoorOpenProfileInactive{},
	BlockingContactEngaged{}, BlockingContactDisengaged{},
	ReleaseSwitchEngaged{}, ReleaseSwitchDisengaged{},
	DoorOpenerKeyTriggered{}, DoorHandleTriggered{},
	DoorOpenTooLong{}, DoorTimerExpired{},
}

var allStates = []State{NormalOperation, ReleasedOnce, ReleasedPermanently, Blocked, Emergency}

// buildFSMEvents derives the looplab/fsm transition table from Dispatch
// itself, so the stateful driver can never diverge from the pure table:
// every (state, event-kind) pair becomes one fsm.EventDesc, including
// self-loops for pairs Dispatch treats as no-ops.
func buildFSMEvents() fsm.Events {
	var events fsm.Events

	for _, ev := range allEventKinds {
		for _, state := range allStates {
			dst, _ := Dispatch(0, state, ev)
			events = append(events, fsm.EventDesc{
				Name: ev.eventKind(),
				Src:  []string{string(state)},
				Dst:  string(dst),
			})
		}
	}

	return events
}

// Driver is the stateful, side-effecting wrapper around the pure
// transition table for one passageway: it owns the looplab/fsm instance,
// the input/output components wired to it, and the timer guards for its
// autoswitch and too-long alarms.
type Driver struct {
	ID int

	// AccessPoints lists the access points this passageway answers for.
	// A DoorOpenRequest naming any other access point is silently
	// dropped - the bus carries one global DoorOpenRequest type every
	// Driver subscribes to, so this is what keeps a grant at one door
	// from opening every other configured door.
	AccessPoints []int

	// DoorOpenProfileID/HasDoorOpenProfile bind this passageway to one
	// ticker-tracked time-window profile. HasDoorOpenProfile is needed
	// alongside the id because profile id 0 is a valid configured id,
	// and ticker.ProfileChangeEvent alone can't distinguish "unbound"
	// from "bound to profile 0".
	DoorOpenProfileID  int
	HasDoorOpenProfile bool

	bus      *bus.Bus
	timerSvc *timer.Service
	events   *eventlog.Buffer
	log      logger.Logger

	machine *fsm.FSM

	mu              sync.Mutex
	inputs          []InputComponent
	outputs         []OutputComponent
	autoswitchGuard *timer.Guard
	tooLongGuard    *timer.Guard
	autoswitchMs    uint32
	tooLongMs       uint32
}

// NewDriver returns a Driver for passageway id, starting in NormalOperation.
func NewDriver(id int, b *bus.Bus, svc *timer.Service, events *eventlog.Buffer, log logger.Logger) *Driver {
	d := &Driver{
		ID:           id,
		bus:          b,
		timerSvc:     svc,
		events:       events,
		log:          log.WithComponent("ADCM"),
		autoswitchMs: config.DefaultAutoswitchMs,
		tooLongMs:    config.DefaultTooLongMs,
	}

	d.machine = fsm.NewFSM(
		string(NormalOperation),
		buildFSMEvents(),
		fsm.Callbacks{
			// after_event runs for self-loops as well as real state
			// changes; enter_state would skip the self-loop commands.
			"after_event": func(_ context.Context, e *fsm.Event) {
				ev, _ := e.Args[0].(Event)
				_, cmds := Dispatch(d.ID, State(e.Src), ev)

				for _, cmd := range cmds {
					d.execute(cmd)
				}
			},
		},
	)

	return d
}

// AddInput registers an input component the driver translates raw
// InputEvents through before dispatching.
func (d *Driver) AddInput(c InputComponent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.inputs = append(d.inputs, c)
}

// AddOutput registers an output component commands are forwarded to.
func (d *Driver) AddOutput(c OutputComponent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.outputs = append(d.outputs, c)
}

// State returns the driver's current state.
func (d *Driver) State() State {
	return State(d.machine.Current())
}

// Fire dispatches ev through the stateful machine, executing whatever
// commands the pure table assigns to the current (state, event) pair.
func (d *Driver) Fire(ev Event) {
	_ = d.machine.Event(context.Background(), ev.eventKind(), ev)
}

// HandleInput translates a raw InputEvent into zero or more FSM events via
// the registered input components and fires them in LIFO order - the
// pending-events stack the spec requires.
func (d *Driver) HandleInput(ev iomanager.InputEvent) {
	d.mu.Lock()
	inputs := append([]InputComponent(nil), d.inputs...)
	d.mu.Unlock()

	var pending []Event
	for _, c := range inputs {
		pending = c.HandleInput(ev, pending)
	}

	for i := len(pending) - 1; i >= 0; i-- {
		d.Fire(pending[i])
	}
}

// HandleDoorOpenRequest fires ValidDoorOpenRequestSeen for a presented,
// validated token, provided req.AccessPoint is one of this passageway's own
// access points.
func (d *Driver) HandleDoorOpenRequest(req whitelist.DoorOpenRequest) {
	if !d.ownsAccessPoint(req.AccessPoint) {
		return
	}

	d.Fire(ValidDoorOpenRequestSeen{AccessPoint: req.AccessPoint, Token: req.Token})
}

func (d *Driver) ownsAccessPoint(ap int) bool {
	for _, owned := range d.AccessPoints {
		if owned == ap {
			return true
		}
	}

	return false
}

// HandleTimerExpired reacts to a PassagewayTimerExpired routed back through
// the bus from the timer worker.
func (d *Driver) HandleTimerExpired(kind TimerKind) {
	switch kind {
	case TimerAutoswitch:
		d.Fire(DoorTimerExpired{})
	case TimerTooLong:
		d.Fire(DoorOpenTooLong{})
	}
}

// HandleProfileChange fires DoorOpenProfileActive/Inactive for an edge on
// this passageway's bound time-window profile, ignoring edges for every
// other profile and ignoring all edges when no profile is bound.
func (d *Driver) HandleProfileChange(ev ticker.ProfileChangeEvent) {
	if !d.HasDoorOpenProfile || ev.ProfileID != d.DoorOpenProfileID {
		return
	}

	switch ev.Edge {
	case ticker.Active:
		d.Fire(DoorOpenProfileActive{})
	case ticker.Inactive:
		d.Fire(DoorOpenProfileInactive{})
	}
}

func (d *Driver) execute(cmd Command) {
	switch c := cmd.(type) {
	case ArmAutoswitchToNormal:
		d.arm(&d.autoswitchGuard, time.Duration(d.autoswitchMs)*time.Millisecond, TimerAutoswitch)
	case DisarmAutoswitchToNormal:
		d.disarm(&d.autoswitchGuard)
	case ArmDoorOpenTooLongAlarm:
		d.arm(&d.tooLongGuard, time.Duration(d.tooLongMs)*time.Millisecond, TimerTooLong)
	case DisarmDoorOpenTooLongAlarm:
		d.disarm(&d.tooLongGuard)
	case ShowSignal:
		kind := whitelist.SigAccessGranted
		durationMs := uint32(config.SigGrantedMs)
		if c.Denied {
			kind = whitelist.SigAccessDenied
			durationMs = config.SigDeniedMs
		}

		bus.Publish(d.bus, whitelist.SigCommand{AccessPoint: c.AccessPoint, Kind: kind, DurationMs: durationMs})
	case TriggerEvent:
		d.events.Push(c.Event)
	default:
		d.forwardToOutputs(cmd)
	}
}

func (d *Driver) forwardToOutputs(cmd Command) {
	d.mu.Lock()
	outputs := append([]OutputComponent(nil), d.outputs...)
	d.mu.Unlock()

	for _, out := range outputs {
		if sw, ok := out.HandleCommand(cmd); ok {
			bus.Publish(d.bus, sw)
		}
	}
}

func (d *Driver) arm(slot **timer.Guard, delay time.Duration, kind TimerKind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if *slot != nil {
		(*slot).Cancel()
	}

	id := d.ID
	b := d.bus

	*slot = d.timerSvc.Schedule(delay, func() {
		bus.Publish(b, PassagewayTimerExpired{PassagewayID: id, Kind: kind})
	})
}

func (d *Driver) disarm(slot **timer.Guard) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if *slot != nil {
		(*slot).Cancel()
		*slot = nil
	}
}

// Run drains InputEvent, DoorOpenRequest, PassagewayTimerExpired, and
// ticker.ProfileChangeEvent messages scoped to this passageway for as long
// as stop is open.
func (d *Driver) Run(stop <-chan struct{}) {
	inputs := bus.Subscribe[iomanager.InputEvent](d.bus)
	doorReqs := bus.Subscribe[whitelist.DoorOpenRequest](d.bus)
	expiries := bus.Subscribe[PassagewayTimerExpired](d.bus)
	profiles := bus.Subscribe[ticker.ProfileChangeEvent](d.bus)

	shared := bus.NewSignal()
	inputs.Queue().ArmTrigger(shared, "input")
	doorReqs.Queue().ArmTrigger(shared, "door")
	expiries.Queue().ArmTrigger(shared, "timer")
	profiles.Queue().ArmTrigger(shared, "profile")

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
				d.HandleInput(v)
			}
		case "door":
			if v, ok := doorReqs.TryRecv(); ok {
				d.HandleDoorOpenRequest(v)
			}
		case "timer":
			if v, ok := expiries.TryRecv(); ok && v.PassagewayID == d.ID {
				d.HandleTimerExpired(v.Kind)
			}
		case "profile":
			if v, ok := profiles.TryRecv(); ok {
				d.HandleProfileChange(v)
			}
		}
	}
}
