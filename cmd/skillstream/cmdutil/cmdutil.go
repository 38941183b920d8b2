// Package cmdutil holds the setup shared by the skillstream commands:
// logger, resolved config, worker client options, telemetry and the turn
// event pool.
package cmdutil

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/skillstream/pkg/client"
	"github.com/papercomputeco/skillstream/pkg/config"
	"github.com/papercomputeco/skillstream/pkg/credentials"
	eventstreamutils "github.com/papercomputeco/skillstream/pkg/eventstream/utils"
	"github.com/papercomputeco/skillstream/pkg/eventstream/worker"
	"github.com/papercomputeco/skillstream/pkg/logger"
	"github.com/papercomputeco/skillstream/pkg/telemetry"
	"github.com/papercomputeco/skillstream/pkg/utils"
)

const otelScope = "github.com/papercomputeco/skillstream"

// ConfigDir returns the --config-dir override, empty when unset.
func ConfigDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("config-dir")
	return dir
}

// Logger builds the command logger from the --debug flag. Logs go to the
// command's error stream so replies on stdout stay clean.
func Logger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	return logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(true),
		logger.WithWriter(cmd.ErrOrStderr()),
		logger.WithOTel(otelScope),
	)
}

// LoadConfig resolves the effective configuration for cmd, binding the
// given registry flags over the config file and environment.
func LoadConfig(cmd *cobra.Command, flagKeys ...string) (*config.Config, error) {
	v, err := config.InitViper(ConfigDir(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)
	return config.Resolve(v), nil
}

// Telemetry installs the configured OpenTelemetry exporter for the run of
// cmd. The stdout exporter writes to the command's error stream.
func Telemetry(cmd *cobra.Command) (telemetry.ShutdownFunc, error) {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return nil, err
	}

	return telemetry.Setup(cmd.Context(), telemetry.SetupOpts{
		Exporter: cfg.Telemetry.Exporter,
		Endpoint: cfg.Telemetry.Endpoint,
		Writer:   cmd.ErrOrStderr(),
		Version:  utils.Version,
	})
}

// ClientOptions returns the worker client options for service: its stored
// or environment token, the configured timeout and the logger.
func ClientOptions(cmd *cobra.Command, cfg *config.Config, service string, log *slog.Logger) ([]client.Option, error) {
	mgr, err := credentials.NewManager(ConfigDir(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	token, err := mgr.Token(service)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	if token == "" {
		log.Debug("no access token configured", "service", service, "env", credentials.EnvVarForService(service))
	}

	return []client.Option{
		client.WithToken(token),
		client.WithTimeout(cfg.Client.TimeoutDuration()),
		client.WithLogger(log),
	}, nil
}

// EventPool starts the turn event pool for the configured provider.
// Callers must Close it to flush queued events.
func EventPool(cfg *config.Config, log *slog.Logger) (*worker.Pool, error) {
	pub, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.Events.Provider,
		Brokers:      cfg.Events.Brokers,
		Topic:        cfg.Events.Topic,
		ClientID:     cfg.Events.ClientID,
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("creating event publisher: %w", err)
	}

	pool, err := worker.NewPool(&worker.Config{
		Publisher: pub,
		Logger:    log,
	})
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("creating event pool: %w", err)
	}

	return pool, nil
}
