package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/skillstream/pkg/dotdir"
)

// EnvPrefix prefixes every environment override (SKILLSTREAM_CAREER_URL, ...).
const EnvPrefix = "SKILLSTREAM"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the SKILLSTREAM_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (SKILLSTREAM_CAREER_URL, SKILLSTREAM_MOCK_LISTEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: SKILLSTREAM_CAREER_URL, SKILLSTREAM_EVENTS_BROKERS, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Resolve reads the effective Config out of v.
func Resolve(v *viper.Viper) *Config {
	// A SKILLSTREAM_EVENTS_BROKERS env value arrives as one comma separated
	// string.
	var brokers []string
	for _, b := range v.GetStringSlice("events.brokers") {
		brokers = append(brokers, splitList(b)...)
	}

	return &Config{
		Version: v.GetInt("version"),
		Career:  WorkerConfig{URL: v.GetString("career.url")},
		Course:  WorkerConfig{URL: v.GetString("course.url")},
		Client: ClientConfig{
			Timeout:     v.GetString("client.timeout"),
			Render:      v.GetBool("client.render"),
			RenderStyle: v.GetString("client.render_style"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  brokers,
			Topic:    v.GetString("events.topic"),
			ClientID: v.GetString("events.client_id"),
		},
		Telemetry: TelemetryConfig{
			Exporter: v.GetString("telemetry.exporter"),
			Endpoint: v.GetString("telemetry.endpoint"),
		},
		Mock: MockConfig{
			Listen:      v.GetString("mock.listen"),
			Dialect:     v.GetString("mock.dialect"),
			Reply:       v.GetString("mock.reply"),
			RequireAuth: v.GetBool("mock.require_auth"),
		},
		MCP: MCPConfig{Listen: v.GetString("mcp.listen")},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Workers
	v.SetDefault("career.url", d.Career.URL)
	v.SetDefault("course.url", d.Course.URL)

	// Client
	v.SetDefault("client.timeout", d.Client.Timeout)
	v.SetDefault("client.render", d.Client.Render)
	v.SetDefault("client.render_style", d.Client.RenderStyle)

	// Events
	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
	v.SetDefault("events.client_id", d.Events.ClientID)

	// Telemetry
	v.SetDefault("telemetry.exporter", d.Telemetry.Exporter)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)

	// Mock worker
	v.SetDefault("mock.listen", d.Mock.Listen)
	v.SetDefault("mock.dialect", d.Mock.Dialect)
	v.SetDefault("mock.reply", d.Mock.Reply)
	v.SetDefault("mock.require_auth", d.Mock.RequireAuth)

	// MCP
	v.SetDefault("mcp.listen", d.MCP.Listen)
}
