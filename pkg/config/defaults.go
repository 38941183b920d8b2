package config

const (
	// DialectTyped frames every record as an event: line plus a data: line.
	DialectTyped = "typed"

	// DialectInferred sends bare data: lines.
	DialectInferred = "inferred"

	defaultWorkerURL     = "http://localhost:8787"
	defaultClientTimeout = "5m"
	defaultRenderStyle   = "auto"

	defaultEventsProvider = "none"
	defaultEventsTopic    = "skillstream.turns"
	defaultEventsClientID = "skillstream"

	defaultTelemetryExporter = "none"

	defaultMockListen  = ":8787"
	defaultMockDialect = DialectTyped
	defaultMockReply   = "Great question! Start by listing the skills you already enjoy using, " +
		"then look for roles and courses that build on them."

	defaultMCPListen = ":8788"
)

// RenderStyles lists the accepted client.render_style values: "auto" plus
// glamour's standard styles.
var RenderStyles = []string{"auto", "ascii", "dark", "dracula", "light", "notty", "pink", "tokyo-night"}

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values. Both workers
// default to the local mock so a fresh install works offline.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Career: WorkerConfig{
			URL: defaultWorkerURL,
		},
		Course: WorkerConfig{
			URL: defaultWorkerURL,
		},
		Client: ClientConfig{
			Timeout:     defaultClientTimeout,
			RenderStyle: defaultRenderStyle,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
			ClientID: defaultEventsClientID,
		},
		Telemetry: TelemetryConfig{
			Exporter: defaultTelemetryExporter,
		},
		Mock: MockConfig{
			Listen:  defaultMockListen,
			Dialect: defaultMockDialect,
			Reply:   defaultMockReply,
		},
		MCP: MCPConfig{
			Listen: defaultMCPListen,
		},
	}
}
