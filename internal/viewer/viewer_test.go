package viewer

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qzone/internal/arch"
	"qzone/internal/circuit"
	"qzone/internal/compiler"
)

func testModel(t *testing.T) Model {
	t.Helper()
	a, err := arch.New(arch.Spec{
		Name: "test",
		StorageZones: []arch.ZoneSpec{{
			Name: "storage", Rows: 2, Cols: 6,
			Separation: arch.Point{X: 3, Y: 3},
		}},
		EntanglementZones: []arch.ZoneSpec{{
			Name: "entanglement", Rows: 1, Cols: 3,
			Origin:     arch.Point{X: 0, Y: 20},
			Separation: arch.Point{X: 12, Y: 10},
			PairOffset: arch.Point{X: 2, Y: 0},
		}},
	})
	require.NoError(t, err)

	c, err := compiler.New(a, compiler.DefaultConfig())
	require.NoError(t, err)
	circ, err := circuit.ParseQASM("qreg q[3];\ncx q[0],q[1];\ncx q[1],q[2];\n")
	require.NoError(t, err)
	res, err := c.Compile(circ)
	require.NoError(t, err)
	return New(a, res)
}

func press(m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNavigation(t *testing.T) {
	m := testModel(t)
	require.Len(t, m.res.Placements, 5)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.Step())

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight}, runes("l"))
	assert.Equal(t, 2, m.Step())

	m, _ = press(m, runes("h"))
	assert.Equal(t, 1, m.Step())

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnd}, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 4, m.Step())

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyHome})
	assert.Equal(t, 0, m.Step())
}

func TestQuit(t *testing.T) {
	for _, msg := range []tea.Msg{runes("q"), tea.KeyMsg{Type: tea.KeyCtrlC}} {
		_, cmd := press(testModel(t), msg)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestView(t *testing.T) {
	m := testModel(t)
	assert.Equal(t, "Loading...", m.View())

	m, _ = press(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	assert.Contains(t, view, "initial placement")
	assert.Contains(t, view, "storage")
	assert.Contains(t, view, "entanglement")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
	view = m.View()
	assert.Contains(t, view, "layer 0 gates")
	assert.Contains(t, view, "(0,1)")

	m, _ = press(m, runes("m"))
	assert.Contains(t, m.View(), "Move groups")
	assert.Contains(t, m.View(), "group 0:")

	m, _ = press(m, runes("m"), runes("?"))
	view = m.View()
	assert.NotContains(t, view, "Move groups")
	assert.Contains(t, view, "first step")
}

func TestReusedHighlight(t *testing.T) {
	m := testModel(t)
	kept := m.res.Reuse[0]

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, kept, m.reused())
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, kept, m.reused())
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Zero(t, m.reused().Len())
}

func TestOverlayAt(t *testing.T) {
	bg := "abcdef\nghijkl\nmnopqr"
	out := overlayAt(bg, "XY\nZW", 2, 1)
	assert.Equal(t, "abcdef\nghXYkl\nmnZWqr", out)

	styled := "\x1b[1mabc\x1b[0mdef"
	assert.Equal(t, 6, visibleLen(styled))
	spliced := spliceLineAt(styled, "Z", 1)
	assert.Equal(t, "aZcdef", stripANSI(spliced))

	assert.Equal(t, "ab  XY", spliceLineAt("ab", "XY", 4))
}

func stripANSI(s string) string {
	var sb strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if isEscEnd(r) {
				inEsc = false
			}
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func TestPadCenter(t *testing.T) {
	assert.Equal(t, " 7  ", padCenter("7", 4))
	assert.Equal(t, "123", padCenter("12345", 3))
}
