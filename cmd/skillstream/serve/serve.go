// Package servecmder provides the serve command with subcommands for running
// the mock worker and the MCP server.
package servecmder

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

const serveLongDesc string = `Run skillstream services.

  skillstream serve mock    Run a mock chat and tutor worker
  skillstream serve mcp     Expose the workers as MCP tools`

const serveShortDesc string = "Run skillstream services"

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
	}

	cmd.AddCommand(newMockCmd())
	cmd.AddCommand(newMCPCmd())

	return cmd
}

// serveUntilDone runs a server until it fails or ctx is cancelled, then
// shuts it down.
func serveUntilDone(ctx context.Context, log *slog.Logger, name string, run func() error, shutdown func() error) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- run()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info("shutting down", "server", name)
		if err := shutdown(); err != nil {
			return err
		}
		return nil
	}
}
