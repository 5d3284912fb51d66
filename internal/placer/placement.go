package placer

import (
	"math"

	"github.com/pkg/errors"

	"qzone/internal/arch"
	"qzone/internal/circuit"
)

// Placement maps every qubit to the site it occupies.
type Placement []arch.Site

func (p Placement) Clone() Placement {
	return append(Placement(nil), p...)
}

func (p Placement) Equal(other Placement) bool {
	if len(p) != len(other) {
		return false
	}
	for q := range p {
		if p[q] != other[q] {
			return false
		}
	}
	return true
}

// Validate checks that every site exists in a and that no two qubits share
// a site.
func (p Placement) Validate(a *arch.Architecture) error {
	owner := make(map[arch.Site]circuit.Qubit, len(p))
	for q, s := range p {
		if !a.Contains(s) {
			return errors.Wrapf(ErrIllegalState, "qubit %d placed at unknown site %s", q, s)
		}
		if other, ok := owner[s]; ok {
			return errors.Wrapf(ErrIllegalState, "qubits %d and %d share site %s", other, q, s)
		}
		owner[s] = q
	}
	return nil
}

// Moved lists the qubits whose site differs between p and next.
func (p Placement) Moved(next Placement) []circuit.Qubit {
	var qs []circuit.Qubit
	for q := range p {
		if p[q] != next[q] {
			qs = append(qs, q)
		}
	}
	return qs
}

// siteCost is the cost of moving a single atom from one site to another.
func siteCost(a *arch.Architecture, from, to arch.Site, transfer float64) float64 {
	if from == to {
		return 0
	}
	c := math.Sqrt(a.Distance(from, to))
	if a.Kind(from) != a.Kind(to) {
		c *= transfer
	}
	return c
}

// MovementCost sums the per-atom cost of going from one placement to the
// next.
func (p *Placer) MovementCost(from, to Placement) float64 {
	total := 0.0
	for q := range from {
		total += siteCost(p.arch, from[q], to[q], p.cfg.AtomTransferCost)
	}
	return total
}
