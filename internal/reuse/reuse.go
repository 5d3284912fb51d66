// Package reuse decides which qubits can stay in the entanglement zone
// between two consecutive two-qubit gate layers.
package reuse

import (
	"sort"

	"qzone/internal/circuit"
	"qzone/internal/matching"
)

// Set is a set of qubits that keep their site across one layer transition.
type Set map[circuit.Qubit]struct{}

// NewSet returns a set holding qs.
func NewSet(qs ...circuit.Qubit) Set {
	s := make(Set, len(qs))
	for _, q := range qs {
		s.Add(q)
	}
	return s
}

func (s Set) Add(q circuit.Qubit) { s[q] = struct{}{} }

func (s Set) Contains(q circuit.Qubit) bool {
	_, ok := s[q]
	return ok
}

func (s Set) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s Set) Sorted() []circuit.Qubit {
	qs := make([]circuit.Qubit, 0, len(s))
	for q := range s {
		qs = append(qs, q)
	}
	sort.Ints(qs)
	return qs
}

// MarshalYAML encodes the set as a sorted list.
func (s Set) MarshalYAML() (any, error) {
	return s.Sorted(), nil
}

// Analyze returns one Set per transition between consecutive layers.
func Analyze(layers []circuit.TwoQubitGateLayer) []Set {
	if len(layers) < 2 {
		return []Set{}
	}
	sets := make([]Set, 0, len(layers)-1)
	for i := 0; i+1 < len(layers); i++ {
		sets = append(sets, analyzeTransition(layers[i], layers[i+1]))
	}
	return sets
}

// analyzeTransition picks reused qubits for the step from prev to next. A
// gate of next may inherit at most one qubit from each gate of prev, unless
// it repeats that gate exactly, in which case the pair stays put.
func analyzeTransition(prev, next circuit.TwoQubitGateLayer) Set {
	gateOf := make(map[circuit.Qubit]int, 2*len(prev))
	for i, g := range prev {
		gateOf[g.Q1] = i
		gateOf[g.Q2] = i
	}

	reused := NewSet()
	adj := make([][]int, len(next))
	for i, g := range next {
		g1, ok1 := gateOf[g.Q1]
		g2, ok2 := gateOf[g.Q2]
		if ok1 && ok2 && g1 == g2 {
			reused.Add(g.Q1)
			reused.Add(g.Q2)
			continue
		}
		if ok1 {
			adj[i] = append(adj[i], g1)
		}
		if ok2 {
			adj[i] = append(adj[i], g2)
		}
	}

	for donor, gate := range matching.MaximumBipartiteMatching(adj, true) {
		if gate == matching.Unmatched {
			continue
		}
		g := next[gate]
		if gi, ok := gateOf[g.Q1]; ok && gi == donor {
			reused.Add(g.Q1)
		} else {
			reused.Add(g.Q2)
		}
	}
	return reused
}
