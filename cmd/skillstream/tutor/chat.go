package tutorcmder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/skillstream/cmd/skillstream/chat"
	"github.com/papercomputeco/skillstream/cmd/skillstream/cmdutil"
	"github.com/papercomputeco/skillstream/pkg/chatstream"
	"github.com/papercomputeco/skillstream/pkg/client/tutor"
	"github.com/papercomputeco/skillstream/pkg/cliui"
	"github.com/papercomputeco/skillstream/pkg/config"
	"github.com/papercomputeco/skillstream/pkg/conversation"
	"github.com/papercomputeco/skillstream/pkg/dotdir"
	"github.com/papercomputeco/skillstream/pkg/eventstream"
)

type chatCommander struct {
	courseTarget   string
	timeout        string
	render         bool
	eventsProvider string
	eventsBrokers  []string
	eventsTopic    string
	courseID       string
	lessonID       string
	newSession     bool
}

const chatLongDesc string = `Ask the course tutor about a course.

With a message argument, sends that single message and prints the streamed
reply. Without one, starts an interactive session: /new starts a fresh
conversation, /exit or Ctrl+D quits. The conversation is remembered per
course.

Examples:
  skillstream tutor chat --course bio-101 "What is osmosis?"
  skillstream tutor chat --course bio-101 --lesson cells-2`

func newChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the course tutor about a course",
		Long:  chatLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	addClientFlags(cmd, &cmder.courseTarget, &cmder.timeout)
	config.AddBoolFlag(cmd, config.Flags, config.FlagRender, &cmder.render)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringSliceFlag(cmd, config.Flags, config.FlagEventsBrokers, &cmder.eventsBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsTopic, &cmder.eventsTopic)
	cmd.Flags().StringVar(&cmder.courseID, "course", "", "Course id (required)")
	cmd.Flags().StringVar(&cmder.lessonID, "lesson", "", "Lesson id to scope the question to")
	cmd.Flags().BoolVar(&cmder.newSession, "new", false, "Start a new conversation instead of resuming the last one")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command, message string) error {
	if strings.TrimSpace(c.courseID) == "" {
		return errors.New("--course is required")
	}

	log := cmdutil.Logger(cmd)
	tutorClient, cfg, err := newClient(cmd, log,
		config.FlagRender,
		config.FlagEventsProvider,
		config.FlagEventsBrokers,
		config.FlagEventsTopic,
	)
	if err != nil {
		return err
	}

	pool, err := cmdutil.EventPool(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := pool.Close(); err != nil {
			log.Warn("closing event pool", "error", err)
		}
	}()

	sessions, err := dotdir.NewManager().Sessions(cmdutil.ConfigDir(cmd))
	if err != nil {
		return fmt.Errorf("opening sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	courseID, lessonID := c.courseID, c.lessonID
	runner := &conversation.Runner{
		Service: "tutor",
		Source: eventstream.EventSource{
			Service:   "tutor",
			WorkerURL: tutorClient.BaseURL(),
			CourseID:  courseID,
			LessonID:  lessonID,
		},
		Path: tutor.ChatPath,
		Send: func(ctx context.Context, conversationID, msg string, h chatstream.Handlers) {
			tutorClient.Chat(ctx, tutor.ChatRequest{
				ConversationID: conversationID,
				CourseID:       courseID,
				LessonID:       lessonID,
				Message:        msg,
			}, h)
		},
		Out:        out,
		Render:     cfg.Client.Render,
		Style:      cfg.Client.RenderStyle,
		Width:      cliui.WordWrap(out),
		Events:     pool,
		Sessions:   sessions,
		SessionKey: SessionKey(courseID),
		Logger:     log,
	}

	if err := chatcmder.Start(runner, out, c.newSession); err != nil {
		return err
	}

	if message != "" {
		_, err := runner.RunTurn(cmd.Context(), message)
		return err
	}

	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /new starts over, /exit or Ctrl+D quits."))
	return runner.Loop(cmd.Context(), cmd.InOrStdin())
}
