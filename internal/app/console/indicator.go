package console

import (
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

const (
	indicatorEmpty = "○"
	indicatorFull  = "●"

	indicatorFPS              = 20
	indicatorAngularFrequency = 8.0
	indicatorDampingRatio     = 0.6

	indicatorHoldTicks      = 4 // how long the indicator stays lit
	indicatorRecoverTicks   = 3 // settle-back phase after the hold
	indicatorFrameThreshold = 0.3

	indicatorPositionOn  = 1.0
	indicatorPositionOff = 0.0
)

type indicatorPhase int

const (
	phaseIdle indicatorPhase = iota
	phaseHold
	phaseRecover
)

// indicator renders the granted/denied reader feedback as a spring-driven
// blink, the same physics-based animation shape as the teacher's service
// heartbeat indicator, retargeted to access-grant feedback.
type indicator struct {
	spring   harmonica.Spring
	position float64
	velocity float64
	target   float64
	phase    indicatorPhase
	tick     int
	denied   bool
}

func newIndicator() *indicator {
	return &indicator{
		spring: harmonica.NewSpring(harmonica.FPS(indicatorFPS), indicatorAngularFrequency, indicatorDampingRatio),
		phase:  phaseIdle,
	}
}

// Trigger starts (or restarts) the blink; denied selects the deny styling.
func (ind *indicator) Trigger(denied bool) {
	ind.denied = denied
	ind.phase = phaseHold
	ind.tick = 0
	ind.target = indicatorPositionOn
}

// Update advances the spring by one UI tick.
func (ind *indicator) Update() {
	if ind.phase == phaseIdle {
		return
	}

	ind.tick++

	switch ind.phase {
	case phaseHold:
		if ind.tick >= indicatorHoldTicks {
			ind.phase = phaseRecover
			ind.target = indicatorPositionOff
			ind.tick = 0
		}
	case phaseRecover:
		if ind.tick >= indicatorRecoverTicks {
			ind.phase = phaseIdle
			ind.tick = 0
		}
	}

	ind.position, ind.velocity = ind.spring.Update(ind.position, ind.velocity, ind.target)
}

// Frame returns the current glyph based on the spring position.
func (ind *indicator) Frame() string {
	if ind.phase != phaseIdle && ind.position >= indicatorFrameThreshold {
		return indicatorFull
	}

	return indicatorEmpty
}

// Render styles the current frame green (granted) or red (denied).
func (ind *indicator) Render() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	if ind.denied {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}

	return style.Render(ind.Frame())
}
