//go:build !js
// +build !js

package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/simukka/filter-surface/loader"
	"github.com/simukka/filter-surface/session"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4a9eff"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5fd787"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
)

const barWidth = 30

type progressMsg loader.Progress
type outcomeMsg loader.Outcome
type doneMsg loader.Report

type model struct {
	events   <-chan tea.Msg
	progress loader.Progress
	outcomes []loader.Outcome
	report   *loader.Report
}

func newModel(events <-chan tea.Msg) model {
	return model{events: events}
}

func waitFor(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func (m model) Init() tea.Cmd {
	return waitFor(m.events)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	case progressMsg:
		m.progress = loader.Progress(msg)
		return m, waitFor(m.events)
	case outcomeMsg:
		m.outcomes = append(m.outcomes, loader.Outcome(msg))
		return m, waitFor(m.events)
	case doneMsg:
		r := loader.Report(msg)
		m.report = &r
		return m, tea.Quit
	}
	return m, nil
}

// renderBar draws fraction as a fixed-width bar.
func renderBar(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*barWidth + 0.5)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Asset check"))
	b.WriteString("\n\n")

	b.WriteString(renderBar(m.progress.Fraction))
	b.WriteString(fmt.Sprintf(" %d/%d", m.progress.Loaded, m.progress.Total))
	if m.progress.Current != "" {
		if m.progress.Percent < 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %s %d KB", m.progress.Current, m.progress.Bytes/1024)))
		} else {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %s %.0f%%", m.progress.Current, m.progress.Percent)))
		}
	}
	b.WriteString("\n\n")

	for _, o := range m.outcomes {
		b.WriteString(outcomeLine(o))
		b.WriteString("\n")
	}
	if m.report != nil {
		b.WriteString("\n")
		b.WriteString(session.ReadyText(*m.report))
		b.WriteString("\n")
	}
	return b.String()
}

func outcomeLine(o loader.Outcome) string {
	if o.Status == loader.Failed {
		return failStyle.Render(fmt.Sprintf("✗ %-16s %v", o.ID, o.Err))
	}
	return okStyle.Render(fmt.Sprintf("✓ %-16s %s", o.ID, o.Source))
}
