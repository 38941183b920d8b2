// Package healthcmder provides the health command, which checks that the
// configured workers are reachable.
package healthcmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillstream/cmd/skillstream/cmdutil"
	"github.com/papercomputeco/skillstream/pkg/client"
	"github.com/papercomputeco/skillstream/pkg/cliui"
	"github.com/papercomputeco/skillstream/pkg/config"
	"github.com/papercomputeco/skillstream/pkg/credentials"
)

type healthCommander struct {
	careerTarget string
	courseTarget string
	timeout      string
}

const healthLongDesc string = `Check that the career assistant and course tutor workers are reachable.

Calls each worker's /health endpoint and reports its status. Exits non-zero
when any worker is unhealthy.

Examples:
  skillstream health
  skillstream health --career-target http://localhost:8787`

const healthShortDesc string = "Check that the workers are reachable"

// ErrUnhealthy is returned when at least one worker failed its check.
var ErrUnhealthy = errors.New("one or more workers are unhealthy")

func NewHealthCmd() *cobra.Command {
	cmder := &healthCommander{}

	cmd := &cobra.Command{
		Use:   "health",
		Short: healthShortDesc,
		Long:  healthLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagCareerTarget, &cmder.careerTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagCourseTarget, &cmder.courseTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)

	return cmd
}

func (c *healthCommander) run(cmd *cobra.Command) error {
	log := cmdutil.Logger(cmd)

	cfg, err := cmdutil.LoadConfig(cmd,
		config.FlagCareerTarget,
		config.FlagCourseTarget,
		config.FlagTimeout,
	)
	if err != nil {
		return err
	}

	targets := []struct {
		service string
		url     string
	}{
		{credentials.ServiceCareer, cfg.Career.URL},
		{credentials.ServiceCourse, cfg.Course.URL},
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)

	healthy := true
	for _, t := range targets {
		opts, err := cmdutil.ClientOptions(cmd, cfg, t.service, log)
		if err != nil {
			return err
		}

		wc, err := client.New(t.url, opts...)
		if err != nil {
			return fmt.Errorf("%s: %w", t.service, err)
		}

		var status string
		err = cliui.Step(out, fmt.Sprintf("%s %s", cliui.ServiceStyle.Render(t.service), cliui.DimStyle.Render(t.url)), func() error {
			h, err := wc.Health(cmd.Context())
			if err != nil {
				return err
			}
			status = h.Status
			return nil
		})
		if err != nil {
			healthy = false
			fmt.Fprintf(out, "    %s\n", cliui.ErrorStyle.Render(err.Error()))
			continue
		}
		if status != "" && status != "ok" && status != "healthy" {
			healthy = false
			fmt.Fprintf(out, "    %s\n", cliui.WarnStyle.Render("status: "+status))
		}
	}
	fmt.Fprintln(out)

	if !healthy {
		return ErrUnhealthy
	}
	return nil
}
