// Package authcmder provides the auth command for storing worker access
// tokens.
package authcmder

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillstream/cmd/skillstream/cmdutil"
	"github.com/papercomputeco/skillstream/pkg/cliui"
	"github.com/papercomputeco/skillstream/pkg/credentials"
)

const authLongDesc string = `Store access tokens for the chat and tutor workers.

Tokens are stored in credentials.toml in the .skillstream/ directory and sent
as a bearer token on every worker request. An environment variable for the
service (SKILLSTREAM_CAREER_TOKEN, SKILLSTREAM_COURSE_TOKEN) takes precedence
over the stored token.

Supported services: career, course

Examples:
  skillstream auth career              Prompt for the career chat token
  skillstream auth course              Prompt for the course tutor token
  skillstream auth --list              List stored tokens
  skillstream auth --remove career     Remove the stored career token
  echo $TOKEN | skillstream auth course  Pipe a token from stdin`

const authShortDesc string = "Store access tokens for the workers"

func NewAuthCmd() *cobra.Command {
	var listFlag bool
	var removeFlag string

	cmd := &cobra.Command{
		Use:   "auth [service]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir := cmdutil.ConfigDir(cmd)
			out := cmd.OutOrStdout()

			switch {
			case listFlag:
				return runList(out, configDir)
			case removeFlag != "":
				return runRemove(out, removeFlag, configDir)
			default:
				if len(args) == 0 {
					return fmt.Errorf("service argument required\n\nSupported services: %s",
						strings.Join(credentials.SupportedServices(), ", "))
				}
				return runAuth(cmd.InOrStdin(), out, args[0], configDir)
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return credentials.SupportedServices(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&listFlag, "list", false, "List stored tokens")
	cmd.Flags().StringVar(&removeFlag, "remove", "", "Remove the stored token for a service")

	return cmd
}

func runAuth(in io.Reader, out io.Writer, service, configDir string) error {
	service = strings.ToLower(strings.TrimSpace(service))

	if !credentials.IsSupportedService(service) {
		return fmt.Errorf("unsupported service: %q\n\nSupported services: %s",
			service, strings.Join(credentials.SupportedServices(), ", "))
	}

	envVar := credentials.EnvVarForService(service)
	token, err := cliui.ReadSecret(in, out, fmt.Sprintf("Enter access token for %s (%s): ", service, envVar))
	if err != nil {
		return err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token cannot be empty")
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetToken(service, token); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s Stored %s token %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(service),
		cliui.DimStyle.Render("("+credentials.Mask(token)+")"),
	)
	return nil
}

func runList(out io.Writer, configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	services, err := mgr.ListServices()
	if err != nil {
		return err
	}

	if len(services) == 0 {
		fmt.Fprintf(out, "\n  %s No stored tokens.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(out, "  Use 'skillstream auth <service>' to store a token.\n")
		fmt.Fprintf(out, "  Supported services: %s\n\n", strings.Join(credentials.SupportedServices(), ", "))
		return nil
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render("Stored tokens"))
	for _, s := range services {
		token, err := mgr.GetToken(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s  %s  %s  %s\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(s),
			cliui.ValueStyle.Render(credentials.Mask(token)),
			cliui.DimStyle.Render("→ "+credentials.EnvVarForService(s)),
		)
	}
	fmt.Fprintln(out)

	return nil
}

func runRemove(out io.Writer, service, configDir string) error {
	service = strings.ToLower(strings.TrimSpace(service))

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveToken(service); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s Removed %s token.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(service))

	return nil
}
