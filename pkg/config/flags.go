package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g.
// --career-target on "skillstream chat" and "skillstream serve mcp").
type Flag struct {
	// Name is the long flag name (e.g. "career-target").
	Name string

	// Shorthand is the one-letter short flag (e.g. "c"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "career.url").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddBoolFlag, and
// BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagCareerTarget   = "career-target"
	FlagCourseTarget   = "course-target"
	FlagTimeout        = "timeout"
	FlagRender         = "render"
	FlagEventsProvider = "events-provider"
	FlagEventsBrokers  = "events-brokers"
	FlagEventsTopic    = "events-topic"
	FlagMockDialect    = "dialect"
	FlagMockReply      = "reply"
	FlagMockAuth       = "require-auth"

	// Standalone server variants use "listen" as the flag name
	// but bind to different viper keys depending on the server.
	FlagMockListen = "mock-listen"
	FlagMCPListen  = "mcp-listen"
)

// Flags is the registry of every shared flag.
var Flags = FlagSet{
	FlagCareerTarget: {
		Name:        "career-target",
		ViperKey:    "career.url",
		Description: "Career assistant worker URL",
	},
	FlagCourseTarget: {
		Name:        "course-target",
		ViperKey:    "course.url",
		Description: "Course tutor worker URL",
	},
	FlagTimeout: {
		Name:        "timeout",
		Shorthand:   "t",
		ViperKey:    "client.timeout",
		Description: "Request timeout, including the streamed reply",
	},
	FlagRender: {
		Name:        "render",
		Shorthand:   "r",
		ViperKey:    "client.render",
		Description: "Buffer replies and render them as markdown",
	},
	FlagEventsProvider: {
		Name:        "events-provider",
		ViperKey:    "events.provider",
		Description: "Turn event provider (none, kafka)",
	},
	FlagEventsBrokers: {
		Name:        "events-brokers",
		ViperKey:    "events.brokers",
		Description: "Comma separated Kafka brokers for turn events",
	},
	FlagEventsTopic: {
		Name:        "events-topic",
		ViperKey:    "events.topic",
		Description: "Kafka topic for turn events",
	},
	FlagMockListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "mock.listen",
		Description: "Address for the mock worker to listen on",
	},
	FlagMockDialect: {
		Name:        "dialect",
		ViperKey:    "mock.dialect",
		Description: "Stream framing: typed (event: + data:) or inferred (data: only)",
	},
	FlagMockReply: {
		Name:        "reply",
		ViperKey:    "mock.reply",
		Description: "Reply text the mock worker streams back",
	},
	FlagMockAuth: {
		Name:        "require-auth",
		ViperKey:    "mock.require_auth",
		Description: "Reject chat requests without a bearer token",
	},
	FlagMCPListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "mcp.listen",
		Description: "Address for the MCP server to listen on",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddStringSliceFlag registers a comma separated list flag on cmd.
func AddStringSliceFlag(cmd *cobra.Command, fs FlagSet, key string, target *[]string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultStringSlice(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringSliceVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringSliceVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaultsViper() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	return defaultsViper().GetString(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	return defaultsViper().GetBool(viperKey)
}

func defaultStringSlice(viperKey string) []string {
	return defaultsViper().GetStringSlice(viperKey)
}
