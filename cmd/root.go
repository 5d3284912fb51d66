package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"qzone/internal/arch"
	"qzone/internal/circuit"
	"qzone/internal/compiler"
)

// Input holds the values of all command line flags.
type Input struct {
	verbose    bool
	logFormat  string
	archPath   string
	configPath string
	outputPath string
}

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks bad flags or unreadable inputs.
func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// Execute is the entry point to running the CLI
func Execute(ctx context.Context, version string) {
	input := new(Input)
	if err := createRootCommand(ctx, input, version).Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createRootCommand(ctx context.Context, input *Input, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "qzone",
		Short:             "Place and route circuits on a zoned neutral-atom architecture.",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogging(input),
	}
	rootCmd.PersistentFlags().BoolVarP(&input.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&input.logFormat, "log-format", "text", "log output format: text or json")
	rootCmd.PersistentFlags().StringVarP(&input.archPath, "arch", "a", "", "path to the architecture YAML file")
	rootCmd.PersistentFlags().StringVarP(&input.configPath, "config", "c", "", "path to the compiler config YAML file")

	rootCmd.AddCommand(
		newCompileCommand(ctx, input),
		newViewCommand(ctx, input),
	)
	return rootCmd
}

func setupLogging(input *Input) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		log.SetOutput(cmd.ErrOrStderr())
		switch strings.ToLower(input.logFormat) {
		case "text":
			log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
		case "json":
			log.SetFormatter(&log.JSONFormatter{})
		default:
			return &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
		}
		if input.verbose {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.InfoLevel)
		}
		return nil
	}
}

// compileFile loads the architecture and configuration named by the flags
// and compiles the QASM file at path.
func compileFile(input *Input, path string) (*arch.Architecture, *compiler.Result, error) {
	if input.archPath == "" {
		return nil, nil, &ExitError{Code: 2, Message: "an architecture is required: pass --arch"}
	}
	a, err := arch.LoadFile(input.archPath)
	if err != nil {
		return nil, nil, usageError(err)
	}

	cfg := compiler.DefaultConfig()
	if input.configPath != "" {
		if cfg, err = compiler.LoadConfigFile(input.configPath); err != nil {
			return nil, nil, usageError(errors.WithMessagef(err, "config %s", input.configPath))
		}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, usageError(errors.Wrap(err, "read circuit"))
	}
	circ, err := circuit.ParseQASM(string(src))
	if err != nil {
		return nil, nil, usageError(errors.WithMessage(err, path))
	}

	logger := log.WithFields(log.Fields{"circuit": path, "arch": a.Name})
	c, err := compiler.New(a, cfg, compiler.WithLogger(logger))
	if err != nil {
		return nil, nil, usageError(err)
	}
	res, err := c.Compile(circ)
	if err != nil {
		return nil, nil, errors.WithMessagef(err, "compile %s", path)
	}
	logger.WithFields(log.Fields{
		"layers":        res.Stats.Layers,
		"reused_qubits": res.Stats.ReusedQubits,
		"moves":         res.Stats.Moves,
		"move_groups":   res.Stats.MoveGroups,
	}).Infof("compiled %d qubits", res.NumQubits)
	return a, res, nil
}
