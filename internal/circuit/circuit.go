package circuit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrParse is returned for QASM input the front-end cannot read.
var ErrParse = errors.New("qasm parse error")

// Pre-compiled regexps for QASM parsing.
var (
	qregRegex    = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	cregRegex    = regexp.MustCompile(`^creg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	measureRegex = regexp.MustCompile(`^measure\s+(.+?)\s*->\s*(.+)$`)
	ifRegex      = regexp.MustCompile(`^if\s*\(\s*(\w+)\s*==\s*(\d+)\s*\)\s*(.+)$`)
	gateRegex    = regexp.MustCompile(`^(\w+)\s*(?:\(([^)]*)\))?\s+(.+)$`)
	operandRegex = regexp.MustCompile(`^(\w+)(?:\s*\[\s*(\d+)\s*\])?$`)
)

// Gate is one operation of a circuit. Names are lower-case QASM names, e.g.
// "h", "cx", "measure", "barrier".
type Gate struct {
	Name      string
	Qubits    []Qubit
	Params    []float64
	Condition string // classical condition such as "c==1", empty if unconditional
	Line      int    // source line, 0 for gates added programmatically
}

// IsBarrier reports whether the gate is a barrier.
func (g Gate) IsBarrier() bool {
	return g.Name == "barrier"
}

func (g Gate) String() string {
	var sb strings.Builder
	if g.Condition != "" {
		fmt.Fprintf(&sb, "if(%s) ", g.Condition)
	}
	sb.WriteString(g.Name)
	if len(g.Params) > 0 {
		params := make([]string, len(g.Params))
		for i, p := range g.Params {
			params[i] = formatParam(p)
		}
		fmt.Fprintf(&sb, "(%s)", strings.Join(params, ","))
	}
	for i, q := range g.Qubits {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "q[%d]", q)
	}
	return sb.String()
}

type register struct {
	name   string
	offset int
	size   int
}

// Circuit holds a flat gate list over a single global qubit index space.
// Multiple qreg declarations are concatenated in declaration order.
type Circuit struct {
	NumQubits int
	Gates     []Gate

	qregs []register
	cregs map[string]bool
}

// New returns an empty circuit over n qubits.
func New(n int) *Circuit {
	return &Circuit{NumQubits: n, cregs: make(map[string]bool)}
}

// AddGate appends a gate acting on the given qubits.
func (c *Circuit) AddGate(name string, qubits []Qubit, params ...float64) {
	c.Gates = append(c.Gates, Gate{
		Name:   strings.ToLower(name),
		Qubits: append([]Qubit(nil), qubits...),
		Params: params,
	})
}

// TwoQubitGates returns every two-qubit interaction in program order.
func (c *Circuit) TwoQubitGates() []TwoQubitGate {
	var gates []TwoQubitGate
	for _, g := range c.Gates {
		if !g.IsBarrier() && len(g.Qubits) == 2 {
			gates = append(gates, NewTwoQubitGate(g.Qubits[0], g.Qubits[1]))
		}
	}
	return gates
}

// ParseQASM parses an OpenQASM 2.0 program. Gate definitions are not
// supported; every standard and user gate name is accepted by arity.
func ParseQASM(src string) (*Circuit, error) {
	c := New(0)

	for lineNo, raw := range strings.Split(src, "\n") {
		line := raw
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		for _, stmt := range strings.Split(line, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := c.parseStatement(stmt, lineNo+1); err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo+1)
			}
		}
	}

	return c, nil
}

func (c *Circuit) parseStatement(stmt string, line int) error {
	switch {
	case strings.HasPrefix(stmt, "OPENQASM"), strings.HasPrefix(stmt, "include"):
		return nil
	case strings.HasPrefix(stmt, "gate "), strings.HasPrefix(stmt, "opaque "), strings.HasPrefix(stmt, "{"), strings.HasPrefix(stmt, "}"):
		return errors.Wrapf(ErrParse, "gate definitions are not supported: %q", stmt)
	}

	if matches := qregRegex.FindStringSubmatch(stmt); matches != nil {
		size, _ := strconv.Atoi(matches[2])
		for _, r := range c.qregs {
			if r.name == matches[1] {
				return errors.Wrapf(ErrParse, "qreg %s declared twice", r.name)
			}
		}
		c.qregs = append(c.qregs, register{name: matches[1], offset: c.NumQubits, size: size})
		c.NumQubits += size
		return nil
	}

	if matches := cregRegex.FindStringSubmatch(stmt); matches != nil {
		c.cregs[matches[1]] = true
		return nil
	}

	condition := ""
	if matches := ifRegex.FindStringSubmatch(stmt); matches != nil {
		if !c.cregs[matches[1]] {
			return errors.Wrapf(ErrParse, "unknown creg %s", matches[1])
		}
		condition = matches[1] + "==" + matches[2]
		stmt = strings.TrimSpace(matches[3])
	}

	if matches := measureRegex.FindStringSubmatch(stmt); matches != nil {
		qubits, err := c.resolveOperand(matches[1])
		if err != nil {
			return err
		}
		for _, q := range qubits {
			c.Gates = append(c.Gates, Gate{Name: "measure", Qubits: []Qubit{q}, Condition: condition, Line: line})
		}
		return nil
	}

	matches := gateRegex.FindStringSubmatch(stmt)
	if matches == nil {
		return errors.Wrapf(ErrParse, "unrecognised statement %q", stmt)
	}
	name := strings.ToLower(matches[1])
	params, err := parseParamList(matches[2])
	if err != nil {
		return errors.Wrap(ErrParse, err.Error())
	}

	operands := strings.Split(matches[3], ",")
	resolved := make([][]Qubit, len(operands))
	for i, op := range operands {
		if resolved[i], err = c.resolveOperand(op); err != nil {
			return err
		}
	}

	if name == "barrier" {
		var qubits []Qubit
		for _, r := range resolved {
			qubits = append(qubits, r...)
		}
		c.Gates = append(c.Gates, Gate{Name: name, Qubits: qubits, Line: line})
		return nil
	}

	// Register operands broadcast the gate; all registers must have the same size.
	width := 1
	for _, r := range resolved {
		if len(r) > 1 {
			if width > 1 && len(r) != width {
				return errors.Wrapf(ErrParse, "register size mismatch in %q", stmt)
			}
			width = len(r)
		}
	}
	for k := 0; k < width; k++ {
		qubits := make([]Qubit, len(resolved))
		seen := make(map[Qubit]bool, len(resolved))
		for i, r := range resolved {
			if len(r) == 1 {
				qubits[i] = r[0]
			} else {
				qubits[i] = r[k]
			}
			if seen[qubits[i]] {
				return errors.Wrapf(ErrParse, "qubit %d used twice in %q", qubits[i], stmt)
			}
			seen[qubits[i]] = true
		}
		c.Gates = append(c.Gates, Gate{Name: name, Qubits: qubits, Params: params, Condition: condition, Line: line})
	}
	return nil
}

// resolveOperand maps "q[3]" or a whole register "q" to global qubit indices.
func (c *Circuit) resolveOperand(op string) ([]Qubit, error) {
	op = strings.TrimSpace(op)
	matches := operandRegex.FindStringSubmatch(op)
	if matches == nil {
		return nil, errors.Wrapf(ErrParse, "malformed operand %q", op)
	}
	for _, r := range c.qregs {
		if r.name != matches[1] {
			continue
		}
		if matches[2] == "" {
			qubits := make([]Qubit, r.size)
			for i := range qubits {
				qubits[i] = r.offset + i
			}
			return qubits, nil
		}
		idx, _ := strconv.Atoi(matches[2])
		if idx >= r.size {
			return nil, errors.Wrapf(ErrParse, "%s[%d] out of range, register has %d qubits", r.name, idx, r.size)
		}
		return []Qubit{r.offset + idx}, nil
	}
	return nil, errors.Wrapf(ErrParse, "unknown qreg %s", matches[1])
}
