package servecmder

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillstream/api"
	"github.com/papercomputeco/skillstream/cmd/skillstream/cmdutil"
	"github.com/papercomputeco/skillstream/pkg/config"
)

type mockCommander struct {
	listen      string
	dialect     string
	reply       string
	requireAuth bool
	tokenDelay  time.Duration
}

const mockLongDesc string = `Run a mock worker that serves the career assistant and course tutor
endpoints on one address.

Chat replies are streamed word by word in the chosen dialect:
  typed     every record is an "event:" line plus a "data:" line
  inferred  bare "data:" lines, classified by payload shape

Send the message "!error" to get a mid-stream error, or "!blocked" to get a
guardrail response.

Examples:
  skillstream serve mock
  skillstream serve mock --dialect inferred --listen :9000
  skillstream serve mock --reply "You said: {message}"`

const mockShortDesc string = "Run a mock chat and tutor worker"

func newMockCmd() *cobra.Command {
	cmder := &mockCommander{}

	cmd := &cobra.Command{
		Use:   "mock",
		Short: mockShortDesc,
		Long:  mockLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagMockListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagMockDialect, &cmder.dialect)
	config.AddStringFlag(cmd, config.Flags, config.FlagMockReply, &cmder.reply)
	config.AddBoolFlag(cmd, config.Flags, config.FlagMockAuth, &cmder.requireAuth)
	cmd.Flags().DurationVar(&cmder.tokenDelay, "token-delay", 25*time.Millisecond, "Pause between streamed tokens")

	return cmd
}

func (c *mockCommander) run(cmd *cobra.Command) error {
	log := cmdutil.Logger(cmd)

	cfg, err := cmdutil.LoadConfig(cmd,
		config.FlagMockListen,
		config.FlagMockDialect,
		config.FlagMockReply,
		config.FlagMockAuth,
	)
	if err != nil {
		return err
	}

	server, err := api.NewServer(api.Config{
		ListenAddr:  cfg.Mock.Listen,
		Dialect:     api.Dialect(cfg.Mock.Dialect),
		Reply:       cfg.Mock.Reply,
		RequireAuth: cfg.Mock.RequireAuth,
		TokenDelay:  c.tokenDelay,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("creating mock worker: %w", err)
	}

	return serveUntilDone(cmd.Context(), log, "mock", server.Run, server.Shutdown)
}
