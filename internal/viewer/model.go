// Package viewer is a terminal UI that steps through the placements of a
// compiled circuit.
package viewer

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qzone/internal/arch"
	"qzone/internal/compiler"
	"qzone/internal/reuse"
)

// Model represents the viewer state. The compile result is never modified.
type Model struct {
	arch *arch.Architecture
	res  *compiler.Result

	step      int
	showMoves bool
	width     int
	height    int

	keys keyMap
	help help.Model
}

func New(a *arch.Architecture, res *compiler.Result) Model {
	return Model{
		arch: a,
		res:  res,
		keys: defaultKeyMap(),
		help: help.New(),
	}
}

// Step returns the index of the placement on screen.
func (m Model) Step() int { return m.step }

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		last := len(m.res.Placements) - 1
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			if m.step > 0 {
				m.step--
			}
		case key.Matches(msg, m.keys.Next):
			if m.step < last {
				m.step++
			}
		case key.Matches(msg, m.keys.First):
			m.step = 0
		case key.Matches(msg, m.keys.Last):
			m.step = max(last, 0)
		case key.Matches(msg, m.keys.Moves):
			m.showMoves = !m.showMoves
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

// ──────────────────────────── View ────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	infoWidth := max(m.width/3, 24)
	gridWidth := max(m.width-infoWidth-4, 20)

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderGridPanel(gridWidth),
		m.renderInfoPanel(infoWidth),
	)
	frame := lipgloss.JoinVertical(lipgloss.Left, top, " "+m.help.View(m.keys))

	if m.showMoves {
		frame = overlayAt(frame, m.renderMoves(), 2, 2)
	}
	return frame
}

// reused returns the qubits that sit still around the current step: the
// set kept after the layer that precedes it, or before the layer it shows.
func (m Model) reused() reuse.Set {
	if m.step == 0 {
		return reuse.NewSet()
	}
	// Step 2i+1 executes layer i and step 2i+2 rests after it.
	t := (m.step - 1) / 2
	if m.step%2 == 1 {
		t--
	}
	if t < 0 || t >= len(m.res.Reuse) {
		return reuse.NewSet()
	}
	return m.res.Reuse[t]
}
