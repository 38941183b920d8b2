// Package configcmder provides the config command for managing persistent
// skillstream configuration stored in the .skillstream/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent skillstream configuration.

Configuration is stored as config.toml in the .skillstream/ directory and
provides default values for command flags. CLI flags and SKILLSTREAM_*
environment variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  career.url, course.url,
  client.timeout, client.render, client.render_style,
  events.provider, events.brokers, events.topic, events.client_id,
  telemetry.exporter, telemetry.endpoint,
  mock.listen, mock.dialect, mock.reply, mock.require_auth,
  mcp.listen

Use subcommands to get, set, or list configuration values:
  skillstream config set <key> <value>    Set a configuration value
  skillstream config get <key>            Get a configuration value
  skillstream config list                 List all configuration values

Examples:
  skillstream config set career.url https://career-chat.example.workers.dev
  skillstream config set events.brokers localhost:9092,localhost:9093
  skillstream config get client.timeout
  skillstream config list`

const configShortDesc string = "Manage persistent skillstream configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
