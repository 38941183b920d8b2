package servecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillstream/api/mcp"
	"github.com/papercomputeco/skillstream/cmd/skillstream/cmdutil"
	"github.com/papercomputeco/skillstream/pkg/client/career"
	"github.com/papercomputeco/skillstream/pkg/client/tutor"
	"github.com/papercomputeco/skillstream/pkg/config"
	"github.com/papercomputeco/skillstream/pkg/credentials"
)

type mcpCommander struct {
	listen       string
	careerTarget string
	courseTarget string
	timeout      string
}

const mcpLongDesc string = `Run an MCP server exposing the workers as tools.

Tools:
  career_chat        Ask the career assistant a question
  tutor_chat         Ask the course tutor about a course
  tutor_suggestions  Starter questions for a lesson

The server speaks streamable HTTP at ` + mcp.Path + `.

Examples:
  skillstream serve mcp
  skillstream serve mcp --listen :9001 --career-target http://localhost:8787`

const mcpShortDesc string = "Expose the workers as MCP tools"

func newMCPCmd() *cobra.Command {
	cmder := &mcpCommander{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagMCPListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagCareerTarget, &cmder.careerTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagCourseTarget, &cmder.courseTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)

	return cmd
}

func (c *mcpCommander) run(cmd *cobra.Command) error {
	log := cmdutil.Logger(cmd)

	cfg, err := cmdutil.LoadConfig(cmd,
		config.FlagMCPListen,
		config.FlagCareerTarget,
		config.FlagCourseTarget,
		config.FlagTimeout,
	)
	if err != nil {
		return err
	}

	careerOpts, err := cmdutil.ClientOptions(cmd, cfg, credentials.ServiceCareer, log)
	if err != nil {
		return err
	}
	careerClient, err := career.New(cfg.Career.URL, careerOpts...)
	if err != nil {
		return fmt.Errorf("creating career client: %w", err)
	}

	tutorOpts, err := cmdutil.ClientOptions(cmd, cfg, credentials.ServiceCourse, log)
	if err != nil {
		return err
	}
	tutorClient, err := tutor.New(cfg.Course.URL, tutorOpts...)
	if err != nil {
		return fmt.Errorf("creating tutor client: %w", err)
	}

	server, err := mcp.NewServer(mcp.Config{
		Career: careerClient,
		Tutor:  tutorClient,
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	log.Debug("MCP workers", "career", cfg.Career.URL, "course", cfg.Course.URL)

	return serveUntilDone(cmd.Context(), log, "mcp",
		func() error { return server.Run(cfg.MCP.Listen) },
		server.Shutdown,
	)
}
