package passageway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"barracuda/internal/app/iomanager"
)

func commandKinds(cmds []Command) []string {
	kinds := make([]string, 0, len(cmds))
	for _, c := range cmds {
		kinds = append(kinds, c.commandKind())
	}

	return kinds
}

func Test_Dispatch_IsTotal_NeverPanics(t *testing.T) {
	for _, state := range allStates {
		for _, ev := range allEventKinds {
			assert.NotPanics(t, func() {
				dst, _ := Dispatch(1, state, ev)
				assert.NotEmpty(t, dst)
			})
		}
	}
}

func Test_Dispatch_NormalOperation_ValidDoorOpenRequestSeen(t *testing.T) {
	dst, cmds := Dispatch(1, NormalOperation, ValidDoorOpenRequestSeen{AccessPoint: 47, Token: []byte("tok")})

	assert.Equal(t, ReleasedOnce, dst)
	assert.Equal(t, []string{
		"ToggleElectricStrikeTimed",
		"ToggleAccessAllowed",
		"ArmAutoswitchToNormal",
		"ShowSignal",
		"TriggerEvent",
	}, commandKinds(cmds))
}

func Test_Dispatch_ReleasedOnce_Closed_ReturnsToNormalOperation(t *testing.T) {
	dst, cmds := Dispatch(1, ReleasedOnce, Closed{})

	assert.Equal(t, NormalOperation, dst)

	kinds := commandKinds(cmds)
	assert.Contains(t, kinds, "DisarmDoorOpenTooLongAlarm")
	assert.Contains(t, kinds, "ToggleAccessAllowed")
}

func Test_Dispatch_Blocked_ValidDoorOpenRequestSeen_StaysBlockedAndDenies(t *testing.T) {
	dst, cmds := Dispatch(1, Blocked, ValidDoorOpenRequestSeen{AccessPoint: 1, Token: []byte("t")})

	assert.Equal(t, Blocked, dst)

	kinds := commandKinds(cmds)
	assert.Contains(t, kinds, "ShowSignal")

	show := cmds[0].(ShowSignal)
	assert.True(t, show.Denied)
}

func Test_Dispatch_UnlistedPair_IsNoOp(t *testing.T) {
	dst, cmds := Dispatch(1, NormalOperation, DoorTimerExpired{})

	assert.Equal(t, NormalOperation, dst)
	assert.Empty(t, cmds)
}

func Test_Dispatch_Emergency_ReleaseSwitchDisengaged_ReturnsToNormalOperation(t *testing.T) {
	dst, _ := Dispatch(1, Emergency, ReleaseSwitchDisengaged{})
	assert.Equal(t, NormalOperation, dst)
}

func Test_FrameContact_TranslatesInputEvents(t *testing.T) {
	c := FrameContact{LogicalID: 1}

	events := c.HandleInput(iomanager.InputEvent{LogicalID: 1, State: iomanager.High}, nil)
	assert.Equal(t, []Event{Closed{}}, events)

	events = c.HandleInput(iomanager.InputEvent{LogicalID: 1, State: iomanager.Low}, nil)
	assert.Equal(t, []Event{Opened{}}, events)

	events = c.HandleInput(iomanager.InputEvent{LogicalID: 2, State: iomanager.High}, nil)
	assert.Empty(t, events)
}

func Test_DoorOpenerKey_FiresOnlyOnRisingEdge(t *testing.T) {
	c := &DoorOpenerKey{LogicalID: 1}

	events := c.HandleInput(iomanager.InputEvent{LogicalID: 1, State: iomanager.High}, nil)
	assert.Equal(t, []Event{DoorOpenerKeyTriggered{}}, events)

	events = c.HandleInput(iomanager.InputEvent{LogicalID: 1, State: iomanager.High}, nil)
	assert.Empty(t, events, "must not re-fire while held high")
}

func Test_ElectricStrike_IgnoresUnrelatedCommands(t *testing.T) {
	c := ElectricStrike{LogicalID: 1, OperationMs: 100}

	_, ok := c.HandleCommand(ToggleAlarmRelay{State: iomanager.High})
	assert.False(t, ok)

	sw, ok := c.HandleCommand(ToggleElectricStrikeTimed{State: iomanager.High})
	assert.True(t, ok)
	assert.Equal(t, uint32(100), sw.SwitchTimeMs)
}
