package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent skillstream configuration stored as
// config.toml in the .skillstream/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Career  WorkerConfig `toml:"career"`
	Course  WorkerConfig `toml:"course"`
	Client    ClientConfig    `toml:"client"`
	Events    EventsConfig    `toml:"events"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Mock      MockConfig      `toml:"mock"`
	MCP       MCPConfig       `toml:"mcp"`
}

// WorkerConfig locates one streaming worker. URL is a full base URL
// (scheme + host + optional port).
type WorkerConfig struct {
	URL string `toml:"url,omitempty"`
}

// ClientConfig holds settings shared by the CLI commands that call the
// workers.
type ClientConfig struct {
	// Timeout bounds one request including its streamed reply, as a Go
	// duration string (e.g. "5m").
	Timeout string `toml:"timeout,omitempty"`

	// Render buffers replies and prints them as rendered markdown.
	Render bool `toml:"render,omitempty"`

	// RenderStyle is a glamour style name. "auto" picks one from the
	// terminal.
	RenderStyle string `toml:"render_style,omitempty"`
}

// TimeoutDuration parses Timeout, falling back to the default.
func (c ClientConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultClientTimeout)
	}
	return d
}

// EventsConfig configures turn event publishing.
type EventsConfig struct {
	// Provider is "none" (default) or "kafka".
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
	ClientID string   `toml:"client_id,omitempty"`
}

// TelemetryConfig configures the OpenTelemetry exporters.
type TelemetryConfig struct {
	// Exporter is "none" (default), "stdout" or "otlp".
	Exporter string `toml:"exporter,omitempty"`

	// Endpoint is the OTLP/HTTP collector base URL.
	Endpoint string `toml:"endpoint,omitempty"`
}

// MockConfig configures the development mock worker.
type MockConfig struct {
	Listen string `toml:"listen,omitempty"`

	// Dialect is "typed" (event: + data: lines) or "inferred" (bare data:
	// lines).
	Dialect     string `toml:"dialect,omitempty"`
	Reply       string `toml:"reply,omitempty"`
	RequireAuth bool   `toml:"require_auth,omitempty"`
}

// MCPConfig configures the MCP tool server.
type MCPConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func parseBool(key, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return b, nil
}

// splitList parses a comma separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"career.url": {
		get: func(c *Config) string { return c.Career.URL },
		set: func(c *Config, v string) error { c.Career.URL = v; return nil },
	},
	"course.url": {
		get: func(c *Config) string { return c.Course.URL },
		set: func(c *Config, v string) error { c.Course.URL = v; return nil },
	},
	"client.timeout": {
		get: func(c *Config) string { return c.Client.Timeout },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid value for client.timeout: %w", err)
			}
			if d <= 0 {
				return fmt.Errorf("invalid value for client.timeout: must be positive")
			}
			c.Client.Timeout = v
			return nil
		},
	},
	"client.render": {
		get: func(c *Config) string { return strconv.FormatBool(c.Client.Render) },
		set: func(c *Config, v string) error {
			b, err := parseBool("client.render", v)
			if err != nil {
				return err
			}
			c.Client.Render = b
			return nil
		},
	},
	"client.render_style": {
		get: func(c *Config) string { return c.Client.RenderStyle },
		set: func(c *Config, v string) error {
			if !slices.Contains(RenderStyles, v) {
				return fmt.Errorf("invalid value for client.render_style: %q (available: %s)", v, strings.Join(RenderStyles, ", "))
			}
			c.Client.RenderStyle = v
			return nil
		},
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case "none", "kafka":
				c.Events.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for events.provider: %q (available: none, kafka)", v)
			}
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error { c.Events.Brokers = splitList(v); return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"events.client_id": {
		get: func(c *Config) string { return c.Events.ClientID },
		set: func(c *Config, v string) error { c.Events.ClientID = v; return nil },
	},
	"telemetry.exporter": {
		get: func(c *Config) string { return c.Telemetry.Exporter },
		set: func(c *Config, v string) error {
			switch v {
			case "none", "stdout", "otlp":
				c.Telemetry.Exporter = v
				return nil
			default:
				return fmt.Errorf("invalid value for telemetry.exporter: %q (available: none, stdout, otlp)", v)
			}
		},
	},
	"telemetry.endpoint": {
		get: func(c *Config) string { return c.Telemetry.Endpoint },
		set: func(c *Config, v string) error { c.Telemetry.Endpoint = strings.TrimSuffix(v, "/"); return nil },
	},
	"mock.listen": {
		get: func(c *Config) string { return c.Mock.Listen },
		set: func(c *Config, v string) error { c.Mock.Listen = v; return nil },
	},
	"mock.dialect": {
		get: func(c *Config) string { return c.Mock.Dialect },
		set: func(c *Config, v string) error {
			switch v {
			case DialectTyped, DialectInferred:
				c.Mock.Dialect = v
				return nil
			default:
				return fmt.Errorf("invalid value for mock.dialect: %q (available: typed, inferred)", v)
			}
		},
	},
	"mock.reply": {
		get: func(c *Config) string { return c.Mock.Reply },
		set: func(c *Config, v string) error { c.Mock.Reply = v; return nil },
	},
	"mock.require_auth": {
		get: func(c *Config) string { return strconv.FormatBool(c.Mock.RequireAuth) },
		set: func(c *Config, v string) error {
			b, err := parseBool("mock.require_auth", v)
			if err != nil {
				return err
			}
			c.Mock.RequireAuth = b
			return nil
		},
	},
	"mcp.listen": {
		get: func(c *Config) string { return c.MCP.Listen },
		set: func(c *Config, v string) error { c.MCP.Listen = v; return nil },
	},
}
