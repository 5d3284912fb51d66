package viewer

import (
	"fmt"
	"strconv"
	"strings"

	"qzone/internal/arch"
	"qzone/internal/compiler"
	"qzone/internal/reuse"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// occupants maps every occupied site of the current step to its qubit.
func (m Model) occupants() map[arch.Site]int {
	pl := m.res.Placements[m.step]
	occ := make(map[arch.Site]int, len(pl))
	for q, s := range pl {
		occ[s] = q
	}
	return occ
}

// renderSite renders one trap of width w.
func renderSite(occ map[arch.Site]int, hl reuse.Set, s arch.Site, w int) string {
	q, ok := occ[s]
	if !ok {
		return dimStyle.Render(padCenter(".", w))
	}
	text := padCenter(strconv.Itoa(q), w)
	if hl.Contains(q) {
		return reusedStyle.Render(text)
	}
	return qubitStyle.Render(text)
}

// ──────────────────────────── Panel rendering ────────────────────────────

func (m Model) stepTitle() string {
	step := m.res.Steps[m.step]
	title := fmt.Sprintf("Step %d/%d  ", m.step, len(m.res.Steps)-1)
	switch {
	case step.Layer < 0:
		title += "initial placement"
	case step.Kind == compiler.StepEntanglement:
		title += fmt.Sprintf("layer %d gates", step.Layer)
	default:
		title += fmt.Sprintf("rest after layer %d", step.Layer)
	}
	return title
}

// renderGridPanel draws every SLM array with the qubits it holds.
func (m Model) renderGridPanel(width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.stepTitle()))
	sb.WriteString("\n")

	occ := m.occupants()
	hl := m.reused()

	for i, slm := range m.arch.SLMs {
		if slm.Kind != arch.Storage {
			continue
		}
		sb.WriteString("\n" + zoneLabelStyle.Render(slm.Name) + "\n")
		for r := 0; r < slm.Rows; r++ {
			for c := 0; c < slm.Cols; c++ {
				sb.WriteString(renderSite(occ, hl, arch.Site{SLM: i, Row: r, Col: c}, siteW))
			}
			sb.WriteString("\n")
		}
	}

	for z, zone := range m.arch.EntanglementZones {
		sb.WriteString("\n" + zoneLabelStyle.Render(zone.Name) + "\n")
		for r := 0; r < zone.Rows; r++ {
			for c := 0; c < zone.Cols; c++ {
				left, right := m.arch.Sites(arch.GateSite{Zone: z, Row: r, Col: c})
				sb.WriteString(dimStyle.Render("["))
				sb.WriteString(renderSite(occ, hl, left, 3))
				sb.WriteString(dimStyle.Render("|"))
				sb.WriteString(renderSite(occ, hl, right, 3))
				sb.WriteString(dimStyle.Render("]"))
			}
			sb.WriteString("\n")
		}
	}

	return gridStyle.Width(width).Render(sb.String())
}

// renderInfoPanel shows the layer on screen and the compile statistics.
func (m Model) renderInfoPanel(width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.res.Architecture))
	sb.WriteString("\n\n")

	if step := m.res.Steps[m.step]; step.Kind == compiler.StepEntanglement {
		sb.WriteString("Gates: ")
		for i, g := range m.res.Layers[step.Layer] {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(gateStyle.Render(g.String()))
		}
		sb.WriteString("\n")
	}
	if hl := m.reused(); hl.Len() > 0 {
		fmt.Fprintf(&sb, "Reused: %s\n", reusedStyle.Render(fmt.Sprint(hl.Sorted())))
	}
	if m.step > 0 {
		tr := m.res.Transitions[m.step-1]
		fmt.Fprintf(&sb, "Moves:  %d in %d groups\n", len(tr.Moves), len(tr.Groups))
	}

	s := m.res.Stats
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("layers %d  gates %d\nreused %d  moves %d\ncost %.2f",
		s.Layers, s.TwoQubitGates, s.ReusedQubits, s.Moves, s.MovementCost)))

	return infoStyle.Width(width).Render(sb.String())
}

// renderMoves lists the move groups leading into the current step.
func (m Model) renderMoves() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Move groups"))
	sb.WriteString("\n\n")
	if m.step == 0 {
		sb.WriteString(dimStyle.Render("initial placement, nothing moves"))
		return overlayStyle.Render(sb.String())
	}
	tr := m.res.Transitions[m.step-1]
	if len(tr.Groups) == 0 {
		sb.WriteString(dimStyle.Render("no moves"))
	}
	for i, g := range tr.Groups {
		fmt.Fprintf(&sb, "group %d:", i)
		for _, mv := range g {
			fmt.Fprintf(&sb, " %s %s→%s", qubitStyle.Render("q"+strconv.Itoa(mv.Qubit)), mv.From, mv.To)
		}
		if i < len(tr.Groups)-1 {
			sb.WriteString("\n")
		}
	}
	return overlayStyle.Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
// It handles ANSI escape sequences by tracking visible column positions.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// isEscEnd reports whether r terminates an ANSI escape sequence.
func isEscEnd(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// spliceLineAt replaces the visible columns of bgLine starting at x with
// overlay, keeping escape sequences of the background intact.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	width := visibleLen(overlay)

	var prefix, suffix strings.Builder
	col, i := 0, 0

	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			prefix.WriteRune(runes[i])
			i++
			for i < len(runes) {
				r := runes[i]
				prefix.WriteRune(r)
				i++
				if r != '[' && isEscEnd(r) {
					break
				}
			}
			continue
		}
		prefix.WriteRune(runes[i])
		col++
		i++
	}
	for ; col < x; col++ {
		prefix.WriteRune(' ')
	}

	for skipped := 0; i < len(runes) && skipped < width; {
		if runes[i] == '\x1b' {
			i++
			for i < len(runes) {
				r := runes[i]
				i++
				if r != '[' && isEscEnd(r) {
					break
				}
			}
			continue
		}
		skipped++
		i++
	}

	for ; i < len(runes); i++ {
		suffix.WriteRune(runes[i])
	}
	return prefix.String() + overlay + suffix.String()
}

// visibleLen returns the number of visible (non-ANSI-escape) characters in a string.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if isEscEnd(r) {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}
