package tutorcmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillstream/cmd/skillstream/cmdutil"
	"github.com/papercomputeco/skillstream/pkg/cliui"
)

type progressCommander struct {
	courseTarget string
	timeout      string
	courseID     string
	lessonID     string
	status       string
}

const progressLongDesc string = `Show course progress, or record a lesson's status.

Examples:
  skillstream tutor progress --course bio-101
  skillstream tutor progress --course bio-101 --lesson cells-2 --status completed`

func newProgressCmd() *cobra.Command {
	cmder := &progressCommander{}

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show or update course progress",
		Long:  progressLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	addClientFlags(cmd, &cmder.courseTarget, &cmder.timeout)
	cmd.Flags().StringVar(&cmder.courseID, "course", "", "Course id (required)")
	cmd.Flags().StringVar(&cmder.lessonID, "lesson", "", "Lesson to update")
	cmd.Flags().StringVar(&cmder.status, "status", "", "New lesson status: not_started, in_progress or completed")

	return cmd
}

func (c *progressCommander) run(cmd *cobra.Command) error {
	if c.courseID == "" {
		return errors.New("--course is required")
	}
	if (c.lessonID == "") != (c.status == "") {
		return errors.New("--lesson and --status must be set together")
	}

	tutorClient, _, err := newClient(cmd, cmdutil.Logger(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if c.lessonID != "" {
		if err := tutorClient.UpdateProgress(cmd.Context(), c.courseID, c.lessonID, c.status); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n  %s %s marked %s\n\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(c.lessonID),
			cliui.ValueStyle.Render(c.status),
		)
		return nil
	}

	progress, err := tutorClient.Progress(cmd.Context(), c.courseID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s %s\n\n",
		cliui.HeaderStyle.Render(progress.CourseID),
		cliui.DimStyle.Render(fmt.Sprintf("%d/%d lessons, %d%%",
			progress.CompletedLessons, progress.TotalLessons, progress.CompletionPercentage)),
	)
	for _, lesson := range progress.Lessons {
		fmt.Fprintf(out, "  %-24s %s\n", lesson.LessonID, cliui.KeyStyle.Render(lesson.Status))
	}
	if progress.LastAccessedLessonID != "" {
		fmt.Fprintf(out, "\n  %s %s\n", cliui.KeyStyle.Render("Last accessed:"), progress.LastAccessedLessonID)
	}
	fmt.Fprintln(out)
	return nil
}
