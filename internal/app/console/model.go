package console

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"barracuda/internal/app/bus"
	"barracuda/internal/app/sud"
	"barracuda/internal/app/whitelist"
	"barracuda/internal/config/logger"
)

const consoleTickInterval = 50 * time.Millisecond

// moduleID is the fixed SUD this reference reader device presents itself
// under. The App advertises the console's access points to the capability
// aggregator with this SUD as their base; the console has no input/output
// pins.
var moduleID = sud.Make(sud.KindConsoleInput, 0, 0)

type sigMsg whitelist.SigCommand

type tickMsg time.Time

type focusField int

const (
	focusToken focusField = iota
	focusAccessPoint
)

// Model is the bubbletea model for the console reader: a token + access
// point prompt and a granted/denied indicator fed by SigCommand.
type Model struct {
	bus *bus.Bus
	log logger.Logger

	tokenInput textinput.Model
	apInput    textinput.Model
	focus      focusField

	sig       *bus.Receiver[whitelist.SigCommand]
	indicator *indicator

	status string
	width  int
}

// NewModel returns a console Model subscribed to whitelist.SigCommand
// feedback on b.
func NewModel(b *bus.Bus, log logger.Logger) Model {
	token := textinput.New()
	token.Placeholder = "token"
	token.Focus()
	token.CharLimit = 64

	ap := textinput.New()
	ap.Placeholder = "access point id"
	ap.CharLimit = 8

	return Model{
		bus:        b,
		log:        log.WithComponent("CONSOLE"),
		tokenInput: token,
		apInput:    ap,
		focus:      focusToken,
		sig:        bus.Subscribe[whitelist.SigCommand](b),
		indicator:  newIndicator(),
	}
}

// Init starts the blink tick loop and arms the first wait for SigCommand
// feedback.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd(), waitForSigCmd(m.sig))
}

func tickCmd() tea.Cmd {
	return tea.Tick(consoleTickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForSigCmd(r *bus.Receiver[whitelist.SigCommand]) tea.Cmd {
	return func() tea.Msg {
		return sigMsg(r.Recv())
	}
}

// Update handles key presses, the blink tick, and incoming SigCommand.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.focus = (m.focus + 1) % 2
			m.applyFocus()

			return m, nil
		case "enter":
			return m.submit()
		}

		var cmd tea.Cmd

		if m.focus == focusToken {
			m.tokenInput, cmd = m.tokenInput.Update(msg)
		} else {
			m.apInput, cmd = m.apInput.Update(msg)
		}

		return m, cmd

	case tickMsg:
		m.indicator.Update()
		return m, tickCmd()

	case sigMsg:
		m.indicator.Trigger(msg.Kind == whitelist.SigAccessDenied)
		if msg.Kind == whitelist.SigAccessDenied {
			m.status = "access denied"
		} else {
			m.status = "access granted"
		}

		return m, waitForSigCmd(m.sig)
	}

	return m, nil
}

func (m *Model) applyFocus() {
	if m.focus == focusToken {
		m.tokenInput.Focus()
		m.apInput.Blur()
	} else {
		m.apInput.Focus()
		m.tokenInput.Blur()
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	ap, err := strconv.Atoi(m.apInput.Value())
	if err != nil {
		m.status = "access point must be a number"
		return m, nil
	}

	token := []byte(m.tokenInput.Value())
	if len(token) == 0 {
		m.status = "token is empty"
		return m, nil
	}

	bus.Publish(m.bus, whitelist.WhitelistAccessRequest{Token: token, AccessPoint: ap})
	m.log.Info().Int("access_point", ap).Msg("token presented")
	m.status = "submitted"
	m.tokenInput.SetValue("")

	return m, nil
}

// View renders the prompt and indicator.
func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).Render("access console")

	tokenLabel := "token:     "
	apLabel := "access pt: "

	body := title + "\n\n" +
		tokenLabel + m.tokenInput.View() + "\n" +
		apLabel + m.apInput.View() + "\n\n" +
		m.indicator.Render() + " " + m.status + "\n\n" +
		"tab: switch field  enter: submit  esc: quit\n"

	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}
