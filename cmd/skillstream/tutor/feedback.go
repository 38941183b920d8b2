package tutorcmder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillstream/cmd/skillstream/cmdutil"
	"github.com/papercomputeco/skillstream/pkg/client/tutor"
	"github.com/papercomputeco/skillstream/pkg/cliui"
	"github.com/papercomputeco/skillstream/pkg/dotdir"
)

type feedbackCommander struct {
	courseTarget   string
	timeout        string
	courseID       string
	conversationID string
	messageIndex   int
	rating         string
	text           string
}

const feedbackLongDesc string = `Rate one tutor reply with a thumbs up or down.

The conversation defaults to the last tutor conversation of --course.

Examples:
  skillstream tutor feedback --course bio-101 --index 1 --rating up
  skillstream tutor feedback --conversation 3f2a... --index 3 --rating down --text "Too vague"`

func newFeedbackCmd() *cobra.Command {
	cmder := &feedbackCommander{}

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Rate a tutor reply",
		Long:  feedbackLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	addClientFlags(cmd, &cmder.courseTarget, &cmder.timeout)
	cmd.Flags().StringVar(&cmder.courseID, "course", "", "Course whose last conversation is rated")
	cmd.Flags().StringVar(&cmder.conversationID, "conversation", "", "Conversation id (overrides --course)")
	cmd.Flags().IntVar(&cmder.messageIndex, "index", 0, "Index of the rated message in the conversation")
	cmd.Flags().StringVar(&cmder.rating, "rating", "", "up, down, 1 or -1")
	cmd.Flags().StringVar(&cmder.text, "text", "", "Optional feedback text")

	return cmd
}

func (c *feedbackCommander) run(cmd *cobra.Command) error {
	rating, err := ParseRating(c.rating)
	if err != nil {
		return err
	}

	conversationID := c.conversationID
	if conversationID == "" && c.courseID != "" {
		sessions, err := dotdir.NewManager().Sessions(cmdutil.ConfigDir(cmd))
		if err != nil {
			return fmt.Errorf("opening sessions: %w", err)
		}
		session, err := sessions.Load(SessionKey(c.courseID))
		if err != nil {
			return err
		}
		if session != nil {
			conversationID = session.ConversationID
		}
	}

	tutorClient, _, err := newClient(cmd, cmdutil.Logger(cmd))
	if err != nil {
		return err
	}

	resp, err := tutorClient.Feedback(cmd.Context(), tutor.FeedbackRequest{
		ConversationID: conversationID,
		MessageIndex:   c.messageIndex,
		Rating:         rating,
		FeedbackText:   c.text,
	})
	if err != nil {
		return err
	}

	msg := resp.Message
	if msg == "" {
		msg = "Feedback submitted"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n  %s %s\n\n", cliui.SuccessMark, msg)
	return nil
}

// ParseRating maps "up"/"down" and "1"/"-1" to the worker's rating values.
func ParseRating(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "+1":
		return 1, nil
	case "down":
		return -1, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || (n != 1 && n != -1) {
		return 0, tutor.ErrInvalidRating
	}
	return n, nil
}
