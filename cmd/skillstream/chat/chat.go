// Package chatcmder provides the chat command for streaming conversations
// with the career assistant.
package chatcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillstream/cmd/skillstream/cmdutil"
	"github.com/papercomputeco/skillstream/pkg/chatstream"
	"github.com/papercomputeco/skillstream/pkg/client/career"
	"github.com/papercomputeco/skillstream/pkg/cliui"
	"github.com/papercomputeco/skillstream/pkg/config"
	"github.com/papercomputeco/skillstream/pkg/conversation"
	"github.com/papercomputeco/skillstream/pkg/credentials"
	"github.com/papercomputeco/skillstream/pkg/dotdir"
	"github.com/papercomputeco/skillstream/pkg/eventstream"
	"github.com/papercomputeco/skillstream/pkg/utils"
)

// SessionKey is the sessions.json key of the career conversation.
const SessionKey = "career"

type chatCommander struct {
	careerTarget   string
	timeout        string
	render         bool
	eventsProvider string
	eventsBrokers  []string
	eventsTopic    string
	newSession     bool
	chips          []string

	logger *slog.Logger
}

const chatLongDesc string = `Chat with the career assistant.

With a message argument, sends that single message and prints the streamed
reply. Without one, starts an interactive session: type a message and press
Enter, /new to start a fresh conversation, /exit or Ctrl+D to quit.

The conversation id the assistant returns is remembered in sessions.json in
the .skillstream/ directory so the next run continues the same conversation.
Use --new to start over.

Examples:
  skillstream chat "How do I get into data engineering?"
  skillstream chat --chip "Explore careers" "What fits me?"
  skillstream chat --render
  skillstream chat --new --career-target http://localhost:8787`

const chatShortDesc string = "Chat with the career assistant"

var chatFlags = []string{
	config.FlagCareerTarget,
	config.FlagTimeout,
	config.FlagRender,
	config.FlagEventsProvider,
	config.FlagEventsBrokers,
	config.FlagEventsTopic,
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.logger = cmdutil.Logger(cmd)
			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagCareerTarget, &cmder.careerTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddBoolFlag(cmd, config.Flags, config.FlagRender, &cmder.render)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringSliceFlag(cmd, config.Flags, config.FlagEventsBrokers, &cmder.eventsBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsTopic, &cmder.eventsTopic)
	cmd.Flags().BoolVar(&cmder.newSession, "new", false, "Start a new conversation instead of resuming the last one")
	cmd.Flags().StringArrayVar(&cmder.chips, "chip", nil, "Quick-reply chip to send with the message (repeatable)")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command, message string) error {
	cfg, err := cmdutil.LoadConfig(cmd, chatFlags...)
	if err != nil {
		return err
	}

	opts, err := cmdutil.ClientOptions(cmd, cfg, credentials.ServiceCareer, c.logger)
	if err != nil {
		return err
	}

	careerClient, err := career.New(cfg.Career.URL, opts...)
	if err != nil {
		return fmt.Errorf("creating career client: %w", err)
	}

	pool, err := cmdutil.EventPool(cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := pool.Close(); err != nil {
			c.logger.Warn("closing event pool", "error", err)
		}
	}()

	sessions, err := dotdir.NewManager().Sessions(cmdutil.ConfigDir(cmd))
	if err != nil {
		return fmt.Errorf("opening sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	chips := c.chips
	runner := &conversation.Runner{
		Service: "career",
		Source:  eventstream.EventSource{Service: "career", WorkerURL: careerClient.BaseURL()},
		Path:    career.ChatPath,
		Send: func(ctx context.Context, conversationID, msg string, h chatstream.Handlers) {
			careerClient.Chat(ctx, career.ChatRequest{
				ConversationID: conversationID,
				Message:        msg,
				SelectedChips:  chips,
			}, h)
		},
		Out:        out,
		Render:     cfg.Client.Render,
		Style:      cfg.Client.RenderStyle,
		Width:      cliui.WordWrap(out),
		Events:     pool,
		Sessions:   sessions,
		SessionKey: SessionKey,
		Logger:     c.logger,
	}

	if err := Start(runner, out, c.newSession); err != nil {
		return err
	}

	if message != "" {
		_, err := runner.RunTurn(cmd.Context(), message)
		return err
	}

	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /new starts over, /exit or Ctrl+D quits."))
	return runner.Loop(cmd.Context(), cmd.InOrStdin())
}

// Start resets or resumes the runner's conversation and says which.
func Start(runner *conversation.Runner, out io.Writer, fresh bool) error {
	fmt.Fprintln(out)

	if fresh {
		if err := runner.Reset(); err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s New conversation\n", cliui.DimStyle.Render("●"))
		return nil
	}

	resumed, err := runner.Resume()
	if err != nil {
		return err
	}
	if resumed {
		fmt.Fprintf(out, "  %s Resuming %s\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(utils.Truncate(runner.ConversationID(), 16)),
		)
		return nil
	}

	fmt.Fprintf(out, "  %s New conversation\n", cliui.DimStyle.Render("●"))
	return nil
}
