// Package skillstreamcmder is the skillstream root command.
package skillstreamcmder

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/skillstream/cmd/skillstream/auth"
	chatcmder "github.com/papercomputeco/skillstream/cmd/skillstream/chat"
	"github.com/papercomputeco/skillstream/cmd/skillstream/cmdutil"
	configcmder "github.com/papercomputeco/skillstream/cmd/skillstream/config"
	healthcmder "github.com/papercomputeco/skillstream/cmd/skillstream/health"
	servecmder "github.com/papercomputeco/skillstream/cmd/skillstream/serve"
	tutorcmder "github.com/papercomputeco/skillstream/cmd/skillstream/tutor"
	versioncmder "github.com/papercomputeco/skillstream/cmd/version"
	"github.com/papercomputeco/skillstream/pkg/telemetry"
)

const skillstreamLongDesc string = `skillstream talks to the career assistant and course tutor workers,
printing their streamed replies as they arrive.

  skillstream chat         Chat with the career assistant
  skillstream tutor chat   Ask the course tutor about a course
  skillstream auth         Store worker access tokens
  skillstream config       Manage persistent configuration
  skillstream serve mock   Run a local mock worker
  skillstream serve mcp    Expose the workers as MCP tools
  skillstream health       Check that the workers are reachable

Set telemetry.exporter to "stdout" or "otlp" to export traces and logs.`

const skillstreamShortDesc string = "skillstream - streaming career and course chat"

const telemetryFlushTimeout = 5 * time.Second

type skillstreamCommander struct {
	shutdown telemetry.ShutdownFunc
}

func NewSkillstreamCmd() *cobra.Command {
	return (&skillstreamCommander{}).command()
}

// Execute runs the root command and flushes telemetry, including when the
// command fails.
func Execute(ctx context.Context) error {
	cmder := &skillstreamCommander{}
	err := cmder.command().ExecuteContext(ctx)
	return errors.Join(err, cmder.flush())
}

func (c *skillstreamCommander) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "skillstream",
		Short:        skillstreamShortDesc,
		Long:         skillstreamLongDesc,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			shutdown, err := cmdutil.Telemetry(cmd)
			c.shutdown = shutdown
			return err
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return c.flush()
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .skillstream/ config directory")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(tutorcmder.NewTutorCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(healthcmder.NewHealthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

// flush shuts the telemetry providers down once.
func (c *skillstreamCommander) flush() error {
	if c.shutdown == nil {
		return nil
	}
	shutdown := c.shutdown
	c.shutdown = nil

	ctx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
	defer cancel()
	return shutdown(ctx)
}
