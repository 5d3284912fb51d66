package circuit

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"
)

// ErrInvalidLayer is returned by TwoQubitGateLayer.Validate.
var ErrInvalidLayer = errors.New("invalid two-qubit gate layer")

// Qubit is an index into the logical qubit register.
type Qubit = int

// TwoQubitGate is an unordered pair of qubits. Use NewTwoQubitGate so that
// (a, b) and (b, a) compare equal.
type TwoQubitGate struct {
	Q1, Q2 Qubit
}

// NewTwoQubitGate returns the normalised gate with Q1 <= Q2.
func NewTwoQubitGate(a, b Qubit) TwoQubitGate {
	if b < a {
		a, b = b, a
	}
	return TwoQubitGate{Q1: a, Q2: b}
}

// Contains reports whether q is one of the gate's operands.
func (g TwoQubitGate) Contains(q Qubit) bool {
	return g.Q1 == q || g.Q2 == q
}

// Other returns the partner of q in the gate.
func (g TwoQubitGate) Other(q Qubit) Qubit {
	if g.Q1 == q {
		return g.Q2
	}
	return g.Q1
}

func (g TwoQubitGate) String() string {
	return fmt.Sprintf("(%d,%d)", g.Q1, g.Q2)
}

// MarshalYAML writes the gate in its "(a,b)" form.
func (g TwoQubitGate) MarshalYAML() (any, error) {
	return g.String(), nil
}

// TwoQubitGateLayer is a set of two-qubit gates executed in parallel. No
// qubit appears in more than one gate of a layer.
type TwoQubitGateLayer []TwoQubitGate

// Qubits returns the qubits used by the layer in ascending order.
func (l TwoQubitGateLayer) Qubits() []Qubit {
	qubits := make([]Qubit, 0, 2*len(l))
	for _, g := range l {
		qubits = append(qubits, g.Q1, g.Q2)
	}
	slices.Sort(qubits)
	return qubits
}

// Validate checks operand ranges and the parallel execution invariant.
func (l TwoQubitGateLayer) Validate(nQubits int) error {
	seen := make(map[Qubit]bool, 2*len(l))
	for i, g := range l {
		if g.Q1 == g.Q2 {
			return errors.Wrapf(ErrInvalidLayer, "gate %d %s: both operands are the same qubit", i, g)
		}
		for _, q := range []Qubit{g.Q1, g.Q2} {
			if q < 0 || q >= nQubits {
				return errors.Wrapf(ErrInvalidLayer, "gate %d %s: qubit %d out of range [0,%d)", i, g, q, nQubits)
			}
			if seen[q] {
				return errors.Wrapf(ErrInvalidLayer, "gate %d %s: qubit %d used twice in one layer", i, g, q)
			}
			seen[q] = true
		}
	}
	return nil
}
