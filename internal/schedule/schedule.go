// Package schedule layers a circuit as soon as possible: every two-qubit gate
// goes into the earliest layer after the previous gates on its operands.
package schedule

import (
	"github.com/pkg/errors"

	"qzone/internal/circuit"
)

// ErrUnsupportedGate is returned for gates acting on three or more qubits.
var ErrUnsupportedGate = errors.New("unsupported gate")

// Schedule is the layered form of a circuit.
type Schedule struct {
	NumQubits      int
	TwoQubitLayers []circuit.TwoQubitGateLayer
	// SingleQubitLayers[i] runs before TwoQubitLayers[i]; the final entry
	// holds the gates after the last two-qubit layer.
	SingleQubitLayers [][]circuit.Gate
}

// NumTwoQubitGates returns the number of scheduled interactions.
func (s *Schedule) NumTwoQubitGates() int {
	n := 0
	for _, l := range s.TwoQubitLayers {
		n += len(l)
	}
	return n
}

// ASAP schedules the circuit. Barriers synchronise the qubits they span.
func ASAP(c *circuit.Circuit) (*Schedule, error) {
	front := make([]int, c.NumQubits)
	var layers []circuit.TwoQubitGateLayer
	singles := make(map[int][]circuit.Gate)

	for _, g := range c.Gates {
		for _, q := range g.Qubits {
			if q < 0 || q >= c.NumQubits {
				return nil, errors.Errorf("line %d: %s: qubit %d out of range", g.Line, g, q)
			}
		}

		switch {
		case g.IsBarrier():
			sync := 0
			for _, q := range g.Qubits {
				sync = max(sync, front[q])
			}
			for _, q := range g.Qubits {
				front[q] = sync
			}
		case len(g.Qubits) == 1:
			q := g.Qubits[0]
			singles[front[q]] = append(singles[front[q]], g)
		case len(g.Qubits) == 2:
			a, b := g.Qubits[0], g.Qubits[1]
			layer := max(front[a], front[b])
			for len(layers) <= layer {
				layers = append(layers, nil)
			}
			layers[layer] = append(layers[layer], circuit.NewTwoQubitGate(a, b))
			front[a] = layer + 1
			front[b] = layer + 1
		default:
			return nil, errors.Wrapf(ErrUnsupportedGate, "line %d: %s acts on %d qubits, decompose it into one- and two-qubit gates first", g.Line, g, len(g.Qubits))
		}
	}

	s := &Schedule{
		NumQubits:         c.NumQubits,
		TwoQubitLayers:    layers,
		SingleQubitLayers: make([][]circuit.Gate, len(layers)+1),
	}
	for i := range s.SingleQubitLayers {
		s.SingleQubitLayers[i] = singles[i]
	}
	return s, nil
}
