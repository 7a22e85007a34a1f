package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rdbg-bridge/rdbg-dap/dap"
	"github.com/rdbg-bridge/rdbg-dap/internal/rdbgdap"
)

// newRootCmd builds the rdbg-dap root command. Unlike a multi-command
// CLI, this binary has exactly one job: speak DAP over stdio, so the
// root command itself runs the adapter rather than delegating to a
// subcommand.
func newRootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:           "rdbg-dap",
		Short:         "Debug Adapter Protocol bridge for the 1C:Enterprise RDBG debug server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return runAdapter(cmd.Context())
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

// runAdapter wires stdin/stdout to a fresh rdbgdap.Adapter and blocks
// until the connection closes or the process is interrupted.
func runAdapter(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	conn := dap.NewConn(os.Stdin, os.Stdout)
	defer conn.Close()

	adapter := rdbgdap.New()
	if _, err := adapter.Start(ctx, conn); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- adapter.Wait() }()

	select {
	case <-ctx.Done():
		return adapter.Stop()
	case err := <-done:
		return err
	}
}
