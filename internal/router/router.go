// Package router turns consecutive placements into atom moves and packs the
// moves into groups that one AOD pickup can perform together.
package router

import (
	"cmp"
	"sort"

	"qzone/internal/arch"
	"qzone/internal/circuit"
	"qzone/internal/placer"
)

// Move relocates one atom.
type Move struct {
	Qubit circuit.Qubit `yaml:"qubit"`
	From  arch.Site     `yaml:"from,flow"`
	To    arch.Site     `yaml:"to,flow"`
}

// Group is a set of moves that keep the relative row and column order of
// their atoms, so they can be carried by one AOD grid.
type Group []Move

// Transition is the movement between two consecutive placements.
type Transition struct {
	Moves  []Move  `yaml:"-"`
	Groups []Group `yaml:"groups"`
}

// Route returns one Transition per pair of consecutive placements.
func Route(a *arch.Architecture, placements []placer.Placement) []Transition {
	if len(placements) < 2 {
		return []Transition{}
	}
	ts := make([]Transition, 0, len(placements)-1)
	for i := 0; i+1 < len(placements); i++ {
		from, to := placements[i], placements[i+1]
		var moves []Move
		for _, q := range from.Moved(to) {
			moves = append(moves, Move{Qubit: q, From: from[q], To: to[q]})
		}
		ts = append(ts, Transition{Moves: moves, Groups: group(a, moves)})
	}
	return ts
}

// group packs moves greedily, longest first, into the first group that
// accepts them.
func group(a *arch.Architecture, moves []Move) []Group {
	order := append([]Move(nil), moves...)
	sort.SliceStable(order, func(i, j int) bool {
		di, dj := a.Distance(order[i].From, order[i].To), a.Distance(order[j].From, order[j].To)
		if di != dj {
			return di > dj
		}
		return order[i].Qubit < order[j].Qubit
	})

	var groups []Group
next:
	for _, m := range order {
		for gi, g := range groups {
			if fits(a, g, m) {
				groups[gi] = append(g, m)
				continue next
			}
		}
		groups = append(groups, Group{m})
	}
	return groups
}

func fits(a *arch.Architecture, g Group, m Move) bool {
	for _, other := range g {
		if !Compatible(a, other, m) {
			return false
		}
	}
	return true
}

// Compatible reports whether two moves can share an AOD: atoms that share a
// row or column must still share it afterwards, and atoms must not overtake
// each other along either axis.
func Compatible(a *arch.Architecture, m1, m2 Move) bool {
	f1, t1 := a.Position(m1.From), a.Position(m1.To)
	f2, t2 := a.Position(m2.From), a.Position(m2.To)
	return cmp.Compare(f1.X, f2.X) == cmp.Compare(t1.X, t2.X) &&
		cmp.Compare(f1.Y, f2.Y) == cmp.Compare(t1.Y, t2.Y)
}
