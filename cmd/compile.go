package cmd

import (
	"context"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newCompileCommand(ctx context.Context, input *Input) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [flags] circuit.qasm",
		Short: "Compile a QASM circuit and write the placement report as YAML.",
		Args:  cobra.ExactArgs(1),
		RunE:  newCompileAction(ctx, input),
	}
	cmd.Flags().StringVarP(&input.outputPath, "output", "o", "", "write the report to this file instead of stdout")
	return cmd
}

func newCompileAction(_ context.Context, input *Input) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		_, res, err := compileFile(input, args[0])
		if err != nil {
			return err
		}

		report, err := yaml.Marshal(res)
		if err != nil {
			return errors.Wrap(err, "encode report")
		}
		if input.outputPath == "" {
			_, err = cmd.OutOrStdout().Write(report)
			return err
		}
		if err := os.WriteFile(input.outputPath, report, 0o644); err != nil {
			return errors.Wrap(err, "write report")
		}
		log.Debugf("wrote report to %s", input.outputPath)
		return nil
	}
}
