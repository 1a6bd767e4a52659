// Package tui provides the interactive terminal form for explaining a
// diagnosis and its medicines, built on Bubble Tea.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/medsum/medsum/relay"
)

// BusyText is shown next to the spinner while a request is running.
const BusyText = "Contacting the medical assistant..."

const (
	fieldDiagnosis = iota
	fieldMedicines
	fieldCount
)

// Explainer is the part of relay.Relay the form needs.
type Explainer interface {
	Explain(ctx context.Context, req relay.Request) (*relay.Result, error)
}

// resultMsg carries the outcome of a submission back into Update.
type resultMsg struct {
	result *relay.Result
	err    error
}

// Model is the root Bubble Tea model for the diagnosis form.
type Model struct {
	ctx       context.Context
	explainer Explainer

	inputs  [fieldCount]textinput.Model
	focus   int
	spinner spinner.Model
	busy    bool

	warning string
	result  *relay.Result
	err     error

	width int
}

// New creates a form that submits through e. ctx bounds every request the
// form makes.
func New(ctx context.Context, e Explainer) *Model {
	m := &Model{
		ctx:       ctx,
		explainer: e,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:     80,
	}

	diagnosis := textinput.New()
	diagnosis.Prompt = "> "
	diagnosis.Placeholder = "e.g., Hypertension"
	diagnosis.CharLimit = 500

	medicines := textinput.New()
	medicines.Prompt = "> "
	medicines.Placeholder = "e.g., Metformin, Lisinopril"
	medicines.CharLimit = 500

	m.inputs[fieldDiagnosis] = diagnosis
	m.inputs[fieldMedicines] = medicines
	m.inputs[fieldDiagnosis].Focus()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resultMsg:
		m.busy = false
		m.result = msg.result
		m.err = msg.err
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case matchesBinding(msg, keys.Quit):
		return m, tea.Quit

	case matchesBinding(msg, keys.Next):
		return m, m.setFocus((m.focus + 1) % fieldCount)

	case matchesBinding(msg, keys.Prev):
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)

	case matchesBinding(msg, keys.Submit):
		return m, m.submit()
	}

	if m.busy {
		return m, nil
	}
	return m.updateFocused(msg)
}

func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

// submit validates the form and starts a request. While one is in flight
// further submits are ignored.
func (m *Model) submit() tea.Cmd {
	if m.busy {
		return nil
	}

	req := m.request()
	if err := req.Validate(); err != nil {
		m.warning = relay.MissingFieldsWarning
		return nil
	}

	m.warning = ""
	m.result = nil
	m.err = nil
	m.busy = true
	return tea.Batch(m.spinner.Tick, m.explain(req))
}

func (m *Model) explain(req relay.Request) tea.Cmd {
	ctx, e := m.ctx, m.explainer
	return func() tea.Msg {
		res, err := e.Explain(ctx, req)
		return resultMsg{result: res, err: err}
	}
}

func (m *Model) request() relay.Request {
	return relay.Request{
		Diagnosis: strings.TrimSpace(m.inputs[fieldDiagnosis].Value()),
		Medicines: strings.TrimSpace(m.inputs[fieldMedicines].Value()),
	}
}

// matchesBinding checks if a key message matches a key binding.
func matchesBinding(msg tea.KeyMsg, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if msg.String() == k {
			return true
		}
	}
	return false
}
