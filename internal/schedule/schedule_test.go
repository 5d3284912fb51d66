package schedule

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qzone/internal/circuit"
)

func TestASAP(t *testing.T) {
	c, err := circuit.ParseQASM(`OPENQASM 2.0;
qreg q[4];
h q[0];
cx q[0], q[1];
cz q[2], q[3];
x q[1];
cx q[1], q[2];
cz q[0], q[3];
measure q[0] -> c[0];`)
	require.NoError(t, err)

	s, err := ASAP(c)
	require.NoError(t, err)

	assert.Equal(t, 4, s.NumQubits)
	assert.Equal(t, []circuit.TwoQubitGateLayer{
		{{Q1: 0, Q2: 1}, {Q1: 2, Q2: 3}},
		{{Q1: 1, Q2: 2}, {Q1: 0, Q2: 3}},
	}, s.TwoQubitLayers)
	assert.Equal(t, 4, s.NumTwoQubitGates())

	require.Len(t, s.SingleQubitLayers, 3)
	require.Len(t, s.SingleQubitLayers[0], 1)
	assert.Equal(t, "h", s.SingleQubitLayers[0][0].Name)
	require.Len(t, s.SingleQubitLayers[1], 1)
	assert.Equal(t, "x", s.SingleQubitLayers[1][0].Name)
	require.Len(t, s.SingleQubitLayers[2], 1)
	assert.Equal(t, "measure", s.SingleQubitLayers[2][0].Name)
}

func TestASAPBarrier(t *testing.T) {
	c := circuit.New(4)
	c.AddGate("cx", []circuit.Qubit{0, 1})
	c.AddGate("barrier", []circuit.Qubit{0, 1, 2, 3})
	c.AddGate("cx", []circuit.Qubit{2, 3})

	s, err := ASAP(c)
	require.NoError(t, err)
	assert.Equal(t, []circuit.TwoQubitGateLayer{{{Q1: 0, Q2: 1}}, {{Q1: 2, Q2: 3}}}, s.TwoQubitLayers)
}

func TestASAPEmpty(t *testing.T) {
	s, err := ASAP(circuit.New(3))
	require.NoError(t, err)
	assert.Empty(t, s.TwoQubitLayers)
	assert.Len(t, s.SingleQubitLayers, 1)
}

func TestASAPRejectsMultiQubitGates(t *testing.T) {
	c := circuit.New(3)
	c.AddGate("ccx", []circuit.Qubit{0, 1, 2})

	_, err := ASAP(c)
	assert.True(t, errors.Is(err, ErrUnsupportedGate), "got %v", err)
}
