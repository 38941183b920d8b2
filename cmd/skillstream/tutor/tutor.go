// Package tutorcmder provides the tutor command and its subcommands for the
// course tutor worker.
package tutorcmder

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillstream/cmd/skillstream/cmdutil"
	"github.com/papercomputeco/skillstream/pkg/client/tutor"
	"github.com/papercomputeco/skillstream/pkg/config"
	"github.com/papercomputeco/skillstream/pkg/credentials"
)

const tutorLongDesc string = `Talk to the course tutor.

  skillstream tutor chat --course <id> [message]   Ask the tutor about a course
  skillstream tutor suggest <lesson id>            Starter questions for a lesson
  skillstream tutor feedback                       Rate a tutor reply
  skillstream tutor progress --course <id>         Show or update course progress`

const tutorShortDesc string = "Talk to the course tutor"

func NewTutorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tutor",
		Short: tutorShortDesc,
		Long:  tutorLongDesc,
	}

	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newSuggestCmd())
	cmd.AddCommand(newFeedbackCmd())
	cmd.AddCommand(newProgressCmd())

	return cmd
}

// SessionKey is the sessions.json key of a course's tutor conversation.
func SessionKey(courseID string) string {
	return "tutor:" + courseID
}

// addClientFlags registers the flags every tutor subcommand needs to reach
// the worker.
func addClientFlags(cmd *cobra.Command, courseTarget, timeout *string) {
	config.AddStringFlag(cmd, config.Flags, config.FlagCourseTarget, courseTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, timeout)
}

// newClient resolves config and credentials into a tutor client.
func newClient(cmd *cobra.Command, log *slog.Logger, flagKeys ...string) (*tutor.Client, *config.Config, error) {
	flagKeys = append(flagKeys, config.FlagCourseTarget, config.FlagTimeout)

	cfg, err := cmdutil.LoadConfig(cmd, flagKeys...)
	if err != nil {
		return nil, nil, err
	}

	opts, err := cmdutil.ClientOptions(cmd, cfg, credentials.ServiceCourse, log)
	if err != nil {
		return nil, nil, err
	}

	c, err := tutor.New(cfg.Course.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating tutor client: %w", err)
	}

	return c, cfg, nil
}
