// Package console implements the reference console reader: an interactive
// terminal prompt standing in for a physical keypad/RFID reader, the only
// one of the spec's three reader device kinds expressible without real
// hardware.
package console

import (
	tea "github.com/charmbracelet/bubbletea"

	"barracuda/internal/app/bus"
	"barracuda/internal/config/logger"
)

// Reader runs the console reader's bubbletea program.
type Reader struct {
	program *tea.Program
}

// NewReader builds a Reader publishing onto b.
func NewReader(b *bus.Bus, log logger.Logger) *Reader {
	return &Reader{
		program: tea.NewProgram(NewModel(b, log)),
	}
}

// Run blocks until the program quits (esc/ctrl+c) or stop closes.
func (r *Reader) Run(stop <-chan struct{}) error {
	go func() {
		<-stop
		r.program.Quit()
	}()

	_, err := r.program.Run()

	return err
}
