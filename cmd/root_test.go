package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const archYAML = `name: compact
storage_zones:
  - name: storage
    rows: 2
    cols: 8
    origin: {x: 0, y: 0}
    separation: {x: 3, y: 3}
entanglement_zones:
  - name: entanglement
    rows: 1
    cols: 4
    origin: {x: 0, y: 20}
    separation: {x: 12, y: 10}
    pair_offset: {x: 2, y: 0}
`

const bellQASM = `OPENQASM 2.0;
qreg q[4];
h q[0];
cx q[0],q[1];
cx q[1],q[2];
cx q[2],q[3];
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd := createRootCommand(context.Background(), &Input{}, "test")
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	return exitErr.Code
}

func TestCompileToStdout(t *testing.T) {
	dir := writeFiles(t, map[string]string{"arch.yaml": archYAML, "c.qasm": bellQASM})

	out, _, err := run(t, "compile", "--arch", filepath.Join(dir, "arch.yaml"), filepath.Join(dir, "c.qasm"))
	require.NoError(t, err)

	var report struct {
		Architecture string           `yaml:"architecture"`
		Steps        []map[string]any `yaml:"steps"`
		Stats        map[string]any   `yaml:"stats"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, "compact", report.Architecture)
	assert.Len(t, report.Steps, 7)
	assert.Equal(t, 3, report.Stats["layers"])
}

func TestCompileToFileWithConfig(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"arch.yaml":   archYAML,
		"c.qasm":      bellQASM,
		"config.yaml": "placer:\n  dynamic_placement: false\n",
	})
	output := filepath.Join(dir, "report.yaml")

	out, stderr, err := run(t, "compile", "-v", "--log-format", "json",
		"-a", filepath.Join(dir, "arch.yaml"),
		"-c", filepath.Join(dir, "config.yaml"),
		"-o", output,
		filepath.Join(dir, "c.qasm"))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, `"msg":"compiled 4 qubits"`)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "two_qubit_gates: 3")
}

func TestCompileErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"arch.yaml":  archYAML,
		"c.qasm":     bellQASM,
		"bad.qasm":   "qreg q[2];\nfoo bar baz;\n",
		"big.qasm":   "qreg q[20];\ncx q[0],q[1];\n",
		"cfg.yaml":   "placer:\n  window_size: -1\n",
		"broken.yml": "name: [\n",
	})
	archPath := filepath.Join(dir, "arch.yaml")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"missing arch", []string{"compile", filepath.Join(dir, "c.qasm")}, 2},
		{"bad log format", []string{"compile", "--log-format", "xml", "-a", archPath, filepath.Join(dir, "c.qasm")}, 2},
		{"unreadable arch", []string{"compile", "-a", filepath.Join(dir, "broken.yml"), filepath.Join(dir, "c.qasm")}, 2},
		{"invalid config", []string{"compile", "-a", archPath, "-c", filepath.Join(dir, "cfg.yaml"), filepath.Join(dir, "c.qasm")}, 2},
		{"parse error", []string{"compile", "-a", archPath, filepath.Join(dir, "bad.qasm")}, 2},
		{"missing circuit", []string{"compile", "-a", archPath, filepath.Join(dir, "none.qasm")}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, exitCode(t, err))
		})
	}

	_, _, err := run(t, "compile", "-a", archPath, filepath.Join(dir, "big.qasm"))
	require.Error(t, err)
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr), "placement failures are not usage errors")
	assert.Contains(t, err.Error(), "place")
}

func TestViewRequiresTerminal(t *testing.T) {
	if isTerminal(os.Stdout) {
		t.Skip("stdout is a terminal")
	}
	dir := writeFiles(t, map[string]string{"arch.yaml": archYAML, "c.qasm": bellQASM})
	_, _, err := run(t, "view", "-a", filepath.Join(dir, "arch.yaml"), filepath.Join(dir, "c.qasm"))
	assert.Equal(t, 2, exitCode(t, err))
}
