package cmd

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"qzone/internal/viewer"
)

func newViewCommand(ctx context.Context, input *Input) *cobra.Command {
	return &cobra.Command{
		Use:   "view [flags] circuit.qasm",
		Short: "Compile a QASM circuit and step through its placements.",
		Args:  cobra.ExactArgs(1),
		RunE:  newViewAction(ctx, input),
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newViewAction(ctx context.Context, input *Input) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if !isTerminal(os.Stdout) {
			return &ExitError{Code: 2, Message: "view needs an interactive terminal; use compile instead"}
		}
		a, res, err := compileFile(input, args[0])
		if err != nil {
			return err
		}
		p := tea.NewProgram(viewer.New(a, res), tea.WithAltScreen(), tea.WithContext(ctx))
		_, err = p.Run()
		return err
	}
}
