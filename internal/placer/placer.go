// Package placer assigns qubits to sites for every step of a layered
// circuit: an entanglement placement for each layer of two-qubit gates and a
// resting placement between layers.
package placer

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"qzone/internal/arch"
	"qzone/internal/circuit"
	"qzone/internal/matching"
	"qzone/internal/reuse"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrIllegalState    = errors.New("illegal state")
)

// Placer is safe to reuse across Place calls; it keeps no per-call state.
type Placer struct {
	arch   *arch.Architecture
	cfg    Config
	logger log.FieldLogger

	order     []arch.Site // storage sites in initial-placement order
	gateSites []arch.GateSite
}

type Option func(*Placer)

// WithLogger sets the logger used for per-layer decisions.
func WithLogger(l log.FieldLogger) Option {
	return func(p *Placer) { p.logger = l }
}

// New returns a placer for a.
func New(a *arch.Architecture, cfg Config, opts ...Option) (*Placer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if a.EntanglementCapacity() == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "architecture contains no entanglement-capable site")
	}
	order := a.StorageSites()
	if len(order) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "architecture contains no storage site")
	}
	if cfg.ReverseInitialPlacement {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	p := &Placer{
		arch:      a,
		cfg:       cfg,
		logger:    log.StandardLogger(),
		order:     order,
		gateSites: a.GateSites(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Result is the outcome of Place.
type Result struct {
	// Placements holds the initial resting placement followed by an
	// entanglement and a resting placement per layer.
	Placements []Placement
	// Reuse holds the reuse sets that were honoured, one per transition.
	// A set is emptied when moving every atom back to storage was cheaper.
	Reuse []reuse.Set
}

// InitialPlacement parks qubit i on the i-th storage site.
func (p *Placer) InitialPlacement(nQubits int) (Placement, error) {
	if nQubits < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "negative qubit count %d", nQubits)
	}
	if nQubits > len(p.order) {
		return nil, errors.Wrapf(ErrInvalidArgument, "%d qubits do not fit into %d storage sites", nQubits, len(p.order))
	}
	return append(Placement(nil), p.order[:nQubits]...), nil
}

// Place computes the placement sequence for layers. reuseSets must hold one
// set per transition, as returned by reuse.Analyze.
func (p *Placer) Place(nQubits int, layers []circuit.TwoQubitGateLayer, reuseSets []reuse.Set) (*Result, error) {
	initial, err := p.InitialPlacement(nQubits)
	if err != nil {
		return nil, err
	}
	if err := validateInput(nQubits, layers, reuseSets); err != nil {
		return nil, err
	}

	res := &Result{
		Placements: make([]Placement, 0, 2*len(layers)+1),
		Reuse:      make([]reuse.Set, len(reuseSets)),
	}
	res.Placements = append(res.Placements, initial)

	rest := initial
	var next Placement // entanglement placement chosen by the lookahead
	for i, layer := range layers {
		logger := p.logger.WithField("layer", i)

		ent := next
		if ent == nil {
			reused := reuse.NewSet()
			if i > 0 {
				reused = res.Reuse[i-1]
			}
			if ent, err = p.placeGatesInEntanglementZone(rest, reused, layer, i); err != nil {
				return nil, err
			}
		}
		next = nil
		res.Placements = append(res.Placements, ent)

		if i == len(layers)-1 || reuseSets[i].Len() == 0 {
			if rest, err = p.placeQubitsInStorageZone(ent, reuse.NewSet()); err != nil {
				return nil, err
			}
			if i < len(reuseSets) {
				res.Reuse[i] = reuse.NewSet()
			}
			res.Placements = append(res.Placements, rest)
			logger.Debugf("placed %d gates", len(layer))
			continue
		}

		var keep reuse.Set
		rest, next, keep, err = p.filterMapping(ent, reuseSets[i], layers[i+1], i+1)
		if err != nil {
			return nil, err
		}
		res.Reuse[i] = keep
		res.Placements = append(res.Placements, rest)
		logger.Debugf("placed %d gates, keeping %d of %d reusable qubits", len(layer), keep.Len(), reuseSets[i].Len())
	}

	for i, pl := range res.Placements {
		if err := pl.Validate(p.arch); err != nil {
			return nil, errors.WithMessagef(err, "placement %d", i)
		}
	}
	return res, nil
}

// filterMapping decides whether honouring reused pays off. It places the
// following layer once with the reused qubits left in place and once with
// every qubit sent back to storage, and keeps the cheaper of the two over
// both moves. Ties keep the reuse.
func (p *Placer) filterMapping(ent Placement, reused reuse.Set, following circuit.TwoQubitGateLayer, followingIdx int) (rest, next Placement, keep reuse.Set, err error) {
	restReuse, err := p.placeQubitsInStorageZone(ent, reused)
	if err != nil {
		return nil, nil, nil, err
	}
	nextReuse, err := p.placeGatesInEntanglementZone(restReuse, reused, following, followingIdx)
	if err != nil {
		return nil, nil, nil, err
	}
	costReuse := p.MovementCost(ent, restReuse) + p.MovementCost(restReuse, nextReuse)

	none := reuse.NewSet()
	restNone, err := p.placeQubitsInStorageZone(ent, none)
	if err != nil {
		return nil, nil, nil, err
	}
	nextNone, err := p.placeGatesInEntanglementZone(restNone, none, following, followingIdx)
	if err != nil {
		return nil, nil, nil, err
	}
	costNone := p.MovementCost(ent, restNone) + p.MovementCost(restNone, nextNone)

	p.logger.WithFields(log.Fields{
		"layer":    followingIdx - 1,
		"reuse":    costReuse,
		"no_reuse": costNone,
	}).Debug("reuse lookahead")

	if costNone < costReuse {
		return restNone, nextNone, none, nil
	}
	return restReuse, nextReuse, reused, nil
}

// placeGatesInEntanglementZone moves the qubits of layer into interaction
// slots. Gates holding a reused qubit stay in that qubit's slot; the others
// are assigned to free slots by minimum-weight matching.
func (p *Placer) placeGatesInEntanglementZone(prev Placement, reused reuse.Set, layer circuit.TwoQubitGateLayer, layerIdx int) (Placement, error) {
	next := prev.Clone()

	occupied := make(map[arch.GateSite]bool)
	for _, s := range prev {
		if gs, ok := p.arch.GateSiteOf(s); ok {
			occupied[gs] = true
		}
	}

	var pending []circuit.TwoQubitGate
	for _, g := range layer {
		var anchor, partner circuit.Qubit
		switch {
		case reused.Contains(g.Q1):
			anchor, partner = g.Q1, g.Q2
		case reused.Contains(g.Q2):
			anchor, partner = g.Q2, g.Q1
		default:
			pending = append(pending, g)
			continue
		}
		if reused.Contains(partner) {
			if m, ok := p.arch.Mirror(prev[anchor]); !ok || m != prev[partner] {
				return nil, errors.Wrapf(ErrIllegalState, "layer %d: reused qubits %d and %d do not share a slot", layerIdx, anchor, partner)
			}
			continue
		}
		mirror, ok := p.arch.Mirror(prev[anchor])
		if !ok {
			return nil, errors.Wrapf(ErrIllegalState, "layer %d: reused qubit %d is not in the entanglement zone", layerIdx, anchor)
		}
		next[partner] = mirror
	}
	if len(pending) == 0 {
		return next, nil
	}

	var free []arch.GateSite
	for _, gs := range p.gateSites {
		if !occupied[gs] {
			free = append(free, gs)
		}
	}
	if len(pending) > len(free) {
		return nil, errors.Wrapf(ErrInvalidArgument, "layer %d: %d gates need an interaction slot but only %d are free", layerIdx, len(pending), len(free))
	}

	costs := make([][]float64, len(pending))
	for i, g := range pending {
		costs[i] = make([]float64, len(free))
		for j, gs := range free {
			costs[i][j], _ = p.gateCost(prev, g, gs)
		}
	}
	assigned, err := p.solve(costs)
	if err != nil {
		return nil, errors.Wrapf(err, "layer %d: place gates", layerIdx)
	}
	for i, g := range pending {
		gs := free[assigned[i]]
		left, right := p.arch.Sites(gs)
		if _, flipped := p.gateCost(prev, g, gs); flipped {
			left, right = right, left
		}
		next[g.Q1], next[g.Q2] = left, right
	}
	return next, nil
}

// gateCost is the cheaper of the two ways of loading g into slot gs.
// flipped reports that Q1 should take the right-hand site.
func (p *Placer) gateCost(prev Placement, g circuit.TwoQubitGate, gs arch.GateSite) (cost float64, flipped bool) {
	left, right := p.arch.Sites(gs)
	t := p.cfg.AtomTransferCost
	straight := siteCost(p.arch, prev[g.Q1], left, t) + siteCost(p.arch, prev[g.Q2], right, t)
	crossed := siteCost(p.arch, prev[g.Q1], right, t) + siteCost(p.arch, prev[g.Q2], left, t)
	if crossed < straight {
		return crossed, true
	}
	return straight, false
}

// placeQubitsInStorageZone sends every qubit in the entanglement zone that
// is not in keep back to storage.
func (p *Placer) placeQubitsInStorageZone(ent Placement, keep reuse.Set) (Placement, error) {
	next := ent.Clone()

	var movers []circuit.Qubit
	taken := make(map[arch.Site]bool, len(ent))
	for q, s := range ent {
		taken[s] = true
		if p.arch.Kind(s) == arch.Entanglement && !keep.Contains(q) {
			movers = append(movers, q)
		}
	}
	if len(movers) == 0 {
		return next, nil
	}

	if !p.cfg.DynamicPlacement {
		for _, q := range movers {
			next[q] = p.order[q]
		}
		return next, nil
	}

	var free []arch.Site
	for _, s := range p.order {
		if !taken[s] {
			free = append(free, s)
		}
	}
	costs := make([][]float64, len(movers))
	for i, q := range movers {
		costs[i] = make([]float64, len(free))
		for j, s := range free {
			costs[i][j] = siteCost(p.arch, ent[q], s, p.cfg.AtomTransferCost)
		}
	}
	assigned, err := p.solve(costs)
	if err != nil {
		return nil, errors.Wrap(err, "place resting qubits")
	}
	for i, q := range movers {
		next[q] = free[assigned[i]]
	}
	return next, nil
}

// solve runs the windowed matching first when configured and falls back to
// the full matrix if the window leaves no feasible assignment. A failure of
// the full matrix matches both ErrInvalidArgument and the matcher's error.
func (p *Placer) solve(costs [][]float64) ([]int, error) {
	if p.cfg.UseWindow && len(costs) > 0 && p.cfg.WindowSize < len(costs[0]) {
		assigned, _, err := matching.MinimumWeightFullMatching(window(costs, p.cfg.WindowSize))
		if err == nil {
			return assigned, nil
		}
		if !errors.Is(err, matching.ErrInvalidInput) {
			return nil, err
		}
		p.logger.Debug("windowed matching infeasible, retrying with all candidates")
	}
	assigned, _, err := matching.MinimumWeightFullMatching(costs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, ErrInvalidArgument)
	}
	return assigned, nil
}

// window keeps the size cheapest entries of every row and drops the rest.
func window(costs [][]float64, size int) [][]float64 {
	out := make([][]float64, len(costs))
	idx := make([]int, len(costs[0]))
	for i, row := range costs {
		for j := range idx {
			idx[j] = j
		}
		sort.SliceStable(idx, func(a, b int) bool { return row[idx[a]] < row[idx[b]] })
		out[i] = make([]float64, len(row))
		for j := range out[i] {
			out[i][j] = matching.NoEdge
		}
		for _, j := range idx[:size] {
			out[i][j] = row[j]
		}
	}
	return out
}

func validateInput(nQubits int, layers []circuit.TwoQubitGateLayer, reuseSets []reuse.Set) error {
	for i, l := range layers {
		if err := l.Validate(nQubits); err != nil {
			return errors.Wrapf(ErrInvalidArgument, "layer %d: %v", i, err)
		}
	}
	want := len(layers) - 1
	if want < 0 {
		want = 0
	}
	if len(reuseSets) != want {
		return errors.Wrapf(ErrInvalidArgument, "%d reuse sets for %d layers, want %d", len(reuseSets), len(layers), want)
	}

	for i, set := range reuseSets {
		prev := gatesByQubit(layers[i])
		next := gatesByQubit(layers[i+1])
		for _, q := range set.Sorted() {
			pg, ok1 := prev[q]
			ng, ok2 := next[q]
			if !ok1 || !ok2 {
				return errors.Wrapf(ErrInvalidArgument, "transition %d: reused qubit %d is not active in both layers", i, q)
			}
			// A slot holds one gate, so both atoms of a slot may only stay
			// together if they interact again.
			if set.Contains(pg.Other(q)) && pg != ng {
				return errors.Wrapf(ErrInvalidArgument, "transition %d: reused qubits %d and %d split into different gates", i, q, pg.Other(q))
			}
			if set.Contains(ng.Other(q)) && pg != ng {
				return errors.Wrapf(ErrInvalidArgument, "transition %d: reused qubits %d and %d come from different gates", i, q, ng.Other(q))
			}
		}
	}
	return nil
}

func gatesByQubit(l circuit.TwoQubitGateLayer) map[circuit.Qubit]circuit.TwoQubitGate {
	m := make(map[circuit.Qubit]circuit.TwoQubitGate, 2*len(l))
	for _, g := range l {
		g = circuit.NewTwoQubitGate(g.Q1, g.Q2)
		m[g.Q1] = g
		m[g.Q2] = g
	}
	return m
}
