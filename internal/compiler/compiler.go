// Package compiler runs the full pipeline from a parsed circuit to routed
// atom movement: scheduling, reuse analysis, placement and routing.
package compiler

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"qzone/internal/arch"
	"qzone/internal/circuit"
	"qzone/internal/placer"
	"qzone/internal/reuse"
	"qzone/internal/router"
	"qzone/internal/schedule"
)

type Compiler struct {
	arch   *arch.Architecture
	cfg    Config
	logger log.FieldLogger
	placer *placer.Placer
}

type Option func(*Compiler)

func WithLogger(l log.FieldLogger) Option {
	return func(c *Compiler) { c.logger = l }
}

// New returns a compiler targeting a.
func New(a *arch.Architecture, cfg Config, opts ...Option) (*Compiler, error) {
	c := &Compiler{
		arch:   a,
		cfg:    cfg,
		logger: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	p, err := placer.New(a, cfg.Placer, placer.WithLogger(c.logger.WithField("stage", "place")))
	if err != nil {
		return nil, errors.WithMessage(err, "placer")
	}
	c.placer = p
	return c, nil
}

// StepKind tells a resting placement from an entanglement placement.
type StepKind string

const (
	StepRest         StepKind = "rest"
	StepEntanglement StepKind = "entanglement"
)

// Step is one placement in the report.
type Step struct {
	Kind  StepKind    `yaml:"kind"`
	Layer int         `yaml:"layer"` // -1 for the initial placement
	Sites []arch.Site `yaml:"sites,flow"`
}

type Stats struct {
	Layers        int     `yaml:"layers"`
	TwoQubitGates int     `yaml:"two_qubit_gates"`
	ReusedQubits  int     `yaml:"reused_qubits"`
	MovementCost  float64 `yaml:"movement_cost"`
	Moves         int     `yaml:"moves"`
	MoveGroups    int     `yaml:"move_groups"`
}

// Result is everything the pipeline produced for one circuit. It marshals
// to the YAML compile report.
type Result struct {
	Architecture string                      `yaml:"architecture"`
	NumQubits    int                         `yaml:"num_qubits"`
	Layers       []circuit.TwoQubitGateLayer `yaml:"layers"`
	Schedule     *schedule.Schedule          `yaml:"-"`

	// AnalyzedReuse is what reuse analysis allowed; Reuse is what the
	// placer kept after its lookahead.
	AnalyzedReuse []reuse.Set `yaml:"analyzed_reuse"`
	Reuse         []reuse.Set `yaml:"reuse"`

	Placements  []placer.Placement  `yaml:"-"`
	Steps       []Step              `yaml:"steps"`
	Transitions []router.Transition `yaml:"transitions"`
	Stats       Stats               `yaml:"stats"`
}

// Compile runs every stage on circ.
func (c *Compiler) Compile(circ *circuit.Circuit) (*Result, error) {
	sched, err := schedule.ASAP(circ)
	if err != nil {
		return nil, errors.WithMessage(err, "schedule")
	}
	c.logger.WithFields(log.Fields{
		"stage":  "schedule",
		"layers": len(sched.TwoQubitLayers),
		"gates":  sched.NumTwoQubitGates(),
	}).Debug("scheduled circuit")

	analyzed := reuse.Analyze(sched.TwoQubitLayers)
	c.logger.WithField("stage", "reuse").Debugf("analyzed %d transitions", len(analyzed))

	placed, err := c.placer.Place(circ.NumQubits, sched.TwoQubitLayers, analyzed)
	if err != nil {
		return nil, errors.WithMessage(err, "place")
	}

	transitions := router.Route(c.arch, placed.Placements)
	c.logger.WithField("stage", "route").Debugf("routed %d transitions", len(transitions))

	res := &Result{
		Architecture:  c.arch.Name,
		NumQubits:     circ.NumQubits,
		Layers:        sched.TwoQubitLayers,
		Schedule:      sched,
		AnalyzedReuse: analyzed,
		Reuse:         placed.Reuse,
		Placements:    placed.Placements,
		Transitions:   transitions,
	}
	for i, pl := range placed.Placements {
		step := Step{Kind: StepRest, Layer: i/2 - 1, Sites: pl}
		if i%2 == 1 {
			step.Kind, step.Layer = StepEntanglement, i/2
		}
		res.Steps = append(res.Steps, step)
	}
	res.Stats = c.stats(res)
	return res, nil
}

func (c *Compiler) stats(res *Result) Stats {
	s := Stats{
		Layers:        len(res.Layers),
		TwoQubitGates: res.Schedule.NumTwoQubitGates(),
	}
	for _, set := range res.Reuse {
		s.ReusedQubits += set.Len()
	}
	for i := 0; i+1 < len(res.Placements); i++ {
		s.MovementCost += c.placer.MovementCost(res.Placements[i], res.Placements[i+1])
	}
	for _, t := range res.Transitions {
		s.Moves += len(t.Moves)
		s.MoveGroups += len(t.Groups)
	}
	return s
}
