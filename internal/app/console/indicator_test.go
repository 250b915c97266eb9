package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Indicator_IdleByDefault(t *testing.T) {
	ind := newIndicator()
	assert.Equal(t, indicatorEmpty, ind.Frame())
}

func Test_Indicator_Trigger_EntersHoldPhase(t *testing.T) {
	ind := newIndicator()
	ind.Trigger(false)

	assert.Equal(t, phaseHold, ind.phase)
	assert.False(t, ind.denied)
}

func Test_Indicator_Update_EventuallyReturnsToIdle(t *testing.T) {
	ind := newIndicator()
	ind.Trigger(true)

	for i := 0; i < 200; i++ {
		ind.Update()
	}

	assert.Equal(t, phaseIdle, ind.phase)
}
