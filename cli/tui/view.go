package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var fieldLabels = [fieldCount]string{"Diagnosis", "Medicines"}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" Medical Diagnosis & Prescription Explainer"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(" Enter your diagnosis and prescribed medicines to get an easy-to-understand explanation."))
	b.WriteString("\n\n")

	for i := range m.inputs {
		label := labelStyle.Render(" " + fieldLabels[i])
		if i == m.focus {
			label = focusedLabelStyle.Render("▸" + fieldLabels[i])
		}
		b.WriteString(label)
		b.WriteString("\n ")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}

	switch {
	case m.busy:
		b.WriteString(" " + m.spinner.View() + " " + BusyText)
		b.WriteString("\n")
	case m.warning != "":
		b.WriteString(warningStyle.Render(" " + m.warning))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(errorPanelStyle.Width(m.panelWidth()).Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case m.result != nil:
		body := successHeaderStyle.Render("Explanation:") + "\n" + m.result.Content
		b.WriteString(successPanelStyle.Width(m.panelWidth()).Render(body))
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render(" " + resultFooter(m)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(" tab next field  shift+tab prev field  enter explain  esc quit"))
	b.WriteString("\n")

	return b.String()
}

func (m *Model) panelWidth() int {
	if m.width < 20 {
		return 20
	}
	return m.width - 4
}

func resultFooter(m *Model) string {
	model := m.result.Model
	if model == "" {
		model = "answered"
	}
	footer := fmt.Sprintf("%s in %s", model, m.result.Elapsed.Round(10*time.Millisecond))
	if m.result.CompletionTokens > 0 {
		footer += fmt.Sprintf(", %s tokens", humanize.Comma(int64(m.result.PromptTokens+m.result.CompletionTokens)))
	}
	return footer
}
