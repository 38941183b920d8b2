package tutorcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillstream/cmd/skillstream/cmdutil"
	"github.com/papercomputeco/skillstream/pkg/cliui"
)

func newSuggestCmd() *cobra.Command {
	var courseTarget, timeout string

	cmd := &cobra.Command{
		Use:   "suggest <lesson id>",
		Short: "List starter questions for a lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tutorClient, _, err := newClient(cmd, cmdutil.Logger(cmd))
			if err != nil {
				return err
			}

			suggestions, err := tutorClient.Suggestions(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			title := suggestions.LessonTitle
			if title == "" {
				title = suggestions.LessonID
			}
			fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render(title))
			for i, q := range suggestions.Questions {
				fmt.Fprintf(out, "  %s %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)), q)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	addClientFlags(cmd, &courseTarget, &timeout)

	return cmd
}
