// Package passageway implements the per-door finite-state automaton: the
// heart of the appliance, driving strike, alarm, and signal outputs from
// sensor events, access grants, and time-window profile edges.
package passageway

import (
	"barracuda/internal/app/eventlog"
	"barracuda/internal/app/iomanager"
)

// State is one of the five door states a passageway can occupy.
type State string

const (
	NormalOperation     State = "normal_operation"
	ReleasedOnce        State = "released_once"
	ReleasedPermanently State = "released_permanently"
	Blocked             State = "blocked"
	Emergency           State = "emergency"
)

// Event is the consumed alphabet: sensor transitions, access decisions, and
// timer expiries that drive the FSM.
type Event interface{ eventKind() string }

type ValidDoorOpenRequestSeen struct {
	AccessPoint int
	Token       []byte
}
type Opened struct{}
type Closed struct{}
type DoorOpenProfileActive struct{}
type DoorOpenProfileInactive struct{}
type BlockingContactEngaged struct{}
type BlockingContactDisengaged struct{}
type ReleaseSwitchEngaged struct{}
type ReleaseSwitchDisengaged struct{}
type DoorOpenerKeyTriggered struct{}
type DoorHandleTriggered struct{}
type DoorOpenTooLong struct{}
type DoorTimerExpired struct{}

func (ValidDoorOpenRequestSeen) eventKind() string { return "ValidDoorOpenRequestSeen" }
func (Opened) eventKind() string                   { return "Opened" }
func (Closed) eventKind() string                   { return "Closed" }
func (DoorOpenProfileActive) eventKind() string     { return "DoorOpenProfileActive" }
func (DoorOpenProfileInactive) eventKind() string   { return "DoorOpenProfileInactive" }
func (BlockingContactEngaged) eventKind() string    { return "BlockingContactEngaged" }
func (BlockingContactDisengaged) eventKind() string { return "BlockingContactDisengaged" }
func (ReleaseSwitchEngaged) eventKind() string      { return "ReleaseSwitchEngaged" }
func (ReleaseSwitchDisengaged) eventKind() string   { return "ReleaseSwitchDisengaged" }
func (DoorOpenerKeyTriggered) eventKind() string    { return "DoorOpenerKeyTriggered" }
func (DoorHandleTriggered) eventKind() string       { return "DoorHandleTriggered" }
func (DoorOpenTooLong) eventKind() string           { return "DoorOpenTooLong" }
func (DoorTimerExpired) eventKind() string          { return "DoorTimerExpired" }

// Command is the emitted alphabet: output toggles, timer arm/disarm
// requests, signal and log-event side effects.
type Command interface{ commandKind() string }

type ToggleElectricStrike struct{ State iomanager.PinState }
type ToggleElectricStrikeTimed struct{ State iomanager.PinState }
type ToggleAccessAllowed struct{ State iomanager.PinState }
type ToggleAlarmRelay struct{ State iomanager.PinState }
type ArmDoorOpenTooLongAlarm struct{}
type DisarmDoorOpenTooLongAlarm struct{}
type ArmAutoswitchToNormal struct{}
type DisarmAutoswitchToNormal struct{}
type ShowSignal struct {
	AccessPoint int
	Denied      bool
}
type TriggerEvent struct{ Event eventlog.LogEvent }

func (ToggleElectricStrike) commandKind() string       { return "ToggleElectricStrike" }
func (ToggleElectricStrikeTimed) commandKind() string  { return "ToggleElectricStrikeTimed" }
func (ToggleAccessAllowed) commandKind() string        { return "ToggleAccessAllowed" }
func (ToggleAlarmRelay) commandKind() string           { return "ToggleAlarmRelay" }
func (ArmDoorOpenTooLongAlarm) commandKind() string    { return "ArmDoorOpenTooLongAlarm" }
func (DisarmDoorOpenTooLongAlarm) commandKind() string { return "DisarmDoorOpenTooLongAlarm" }
func (ArmAutoswitchToNormal) commandKind() string      { return "ArmAutoswitchToNormal" }
func (DisarmAutoswitchToNormal) commandKind() string   { return "DisarmAutoswitchToNormal" }
func (ShowSignal) commandKind() string                 { return "ShowSignal" }
func (TriggerEvent) commandKind() string               { return "TriggerEvent" }

// Dispatch is the pure transition function: the single source of truth for
// the passageway state machine, total over every (state, event) pair.
// Unlisted pairs are no-ops: same state, no commands.
func Dispatch(p int, state State, ev Event) (State, []Command) {
	switch state {
	case NormalOperation:
		return dispatchNormalOperation(p, ev)
	case ReleasedOnce:
		return dispatchReleasedOnce(p, ev)
	case ReleasedPermanently:
		return dispatchReleasedPermanently(ev)
	case Blocked:
		return dispatchBlocked(p, ev)
	case Emergency:
		return dispatchEmergency(p, ev)
	default:
		return state, nil
	}
}

func dispatchNormalOperation(p int, ev Event) (State, []Command) {
	switch e := ev.(type) {
	case ValidDoorOpenRequestSeen:
		return ReleasedOnce, []Command{
			ToggleElectricStrikeTimed{State: iomanager.High},
			ToggleAccessAllowed{State: iomanager.High},
			ArmAutoswitchToNormal{},
			ShowSignal{AccessPoint: e.AccessPoint, Denied: false},
			TriggerEvent{Event: eventlog.AccessGranted{PassagewayID: p, Token: e.Token, AccessPoint: e.AccessPoint}},
		}
	case Opened:
		return NormalOperation, []Command{
			ToggleAlarmRelay{State: iomanager.High},
			TriggerEvent{Event: eventlog.DoorForcedOpen{PassagewayID: p}},
		}
	case Closed:
		return NormalOperation, []Command{
			ToggleAlarmRelay{State: iomanager.Low},
			TriggerEvent{Event: eventlog.DoorClosedAgain{PassagewayID: p}},
		}
	case DoorOpenProfileActive:
		return ReleasedPermanently, []Command{
			ToggleElectricStrikeTimed{State: iomanager.High},
			ToggleAccessAllowed{State: iomanager.High},
			TriggerEvent{Event: eventlog.DoorPermanentlyReleased{PassagewayID: p}},
		}
	case DoorOpenerKeyTriggered:
		return ReleasedOnce, []Command{
			ToggleElectricStrikeTimed{State: iomanager.High},
			ToggleAccessAllowed{State: iomanager.High},
		}
	case DoorHandleTriggered:
		return ReleasedOnce, []Command{
			ToggleAccessAllowed{State: iomanager.High},
		}
	case BlockingContactEngaged:
		return Blocked, nil
	case ReleaseSwitchEngaged:
		return Emergency, nil
	default:
		return NormalOperation, nil
	}
}

func dispatchReleasedOnce(p int, ev Event) (State, []Command) {
	switch ev.(type) {
	case Opened:
		return ReleasedOnce, []Command{
			ArmDoorOpenTooLongAlarm{},
			ToggleElectricStrike{State: iomanager.Low},
			DisarmAutoswitchToNormal{},
			TriggerEvent{Event: eventlog.DoorReleasedOnce{PassagewayID: p}},
		}
	case Closed:
		return NormalOperation, []Command{
			DisarmDoorOpenTooLongAlarm{},
			ToggleAccessAllowed{State: iomanager.Low},
			TriggerEvent{Event: eventlog.DoorClosedAgain{PassagewayID: p}},
			TriggerEvent{Event: eventlog.DoorEnteredNormalOperation{PassagewayID: p}},
		}
	case DoorOpenProfileActive:
		return ReleasedPermanently, []Command{
			ToggleElectricStrike{State: iomanager.High},
			ToggleAccessAllowed{State: iomanager.High},
			TriggerEvent{Event: eventlog.DoorPermanentlyReleased{PassagewayID: p}},
		}
	case DoorTimerExpired:
		return NormalOperation, []Command{
			ToggleElectricStrike{State: iomanager.Low},
			ToggleAccessAllowed{State: iomanager.Low},
			TriggerEvent{Event: eventlog.DoorClosedAgain{PassagewayID: p}},
			TriggerEvent{Event: eventlog.DoorEnteredNormalOperation{PassagewayID: p}},
		}
	case BlockingContactEngaged:
		return Blocked, []Command{
			TriggerEvent{Event: eventlog.DoorBlocked{PassagewayID: p}},
		}
	case ReleaseSwitchEngaged:
		return Emergency, []Command{
			TriggerEvent{Event: eventlog.DoorEmergencyReleased{PassagewayID: p}},
		}
	default:
		return ReleasedOnce, nil
	}
}

func dispatchReleasedPermanently(ev Event) (State, []Command) {
	switch ev.(type) {
	case DoorOpenProfileInactive:
		return NormalOperation, nil
	case BlockingContactEngaged:
		return Blocked, nil
	case ReleaseSwitchEngaged:
		return Emergency, nil
	default:
		return ReleasedPermanently, nil
	}
}

func dispatchBlocked(p int, ev Event) (State, []Command) {
	switch e := ev.(type) {
	case ValidDoorOpenRequestSeen:
		return Blocked, []Command{
			ShowSignal{AccessPoint: e.AccessPoint, Denied: true},
			TriggerEvent{Event: eventlog.AccessDeniedDoorBlocked{PassagewayID: p, Token: e.Token, AccessPoint: e.AccessPoint}},
		}
	case BlockingContactDisengaged:
		return NormalOperation, []Command{
			TriggerEvent{Event: eventlog.DoorEnteredNormalOperation{PassagewayID: p}},
		}
	case ReleaseSwitchEngaged:
		return Emergency, nil
	default:
		return Blocked, nil
	}
}

func dispatchEmergency(p int, ev Event) (State, []Command) {
	switch ev.(type) {
	case ReleaseSwitchDisengaged:
		return NormalOperation, []Command{
			TriggerEvent{Event: eventlog.DoorEnteredNormalOperation{PassagewayID: p}},
		}
	default:
		return Emergency, nil
	}
}
