package main

import (
	"context"
	"fmt"

	"github.com/Sternrassler/datatable-client/internal/config"
	"github.com/Sternrassler/datatable-client/internal/telemetry"
	"github.com/Sternrassler/datatable-client/pkg/logging"
	"github.com/Sternrassler/datatable-client/pkg/render"
	"github.com/spf13/cobra"
)

const serviceName = "tableview"

// rootOptions are flags shared by every subcommand. Set flags override the
// environment configuration.
type rootOptions struct {
	endpoint     string
	datasetParam string
	redisAddr    string
	runDB        string
	runID        string
	logLevel     string
	pretty       bool
	sanitize     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "tableview",
		Short:        "Fetch, cache and render paginated data tables",
		SilenceUsage: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.endpoint, "endpoint", "", "data API URL (overrides host based selection)")
	f.StringVar(&opts.datasetParam, "dataset-param", "", "query parameter carrying the dataset id")
	f.StringVar(&opts.redisAddr, "redis-addr", "", "Redis address for the page store")
	f.StringVar(&opts.runDB, "run-db", "", "SQLite file persisting the run id")
	f.StringVar(&opts.runID, "run-id", "", "run identifier (default: new UUID)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.BoolVar(&opts.pretty, "pretty", false, "human readable logs")
	f.BoolVar(&opts.sanitize, "sanitize", true, "sanitize cell HTML with the UGC policy")

	cmd.AddCommand(newFetchCmd(opts), newServeCmd(opts))
	return cmd
}

// loadConfig reads the environment and applies the flags that were set.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.LocalEndpoint, cfg.RemoteEndpoint = o.endpoint, o.endpoint
	}
	if flags.Changed("dataset-param") {
		cfg.DatasetParam = o.datasetParam
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr = o.redisAddr
	}
	if flags.Changed("run-db") {
		cfg.RunDB = o.runDB
	}
	if flags.Changed("run-id") {
		cfg.RunID = o.runID
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("pretty") {
		cfg.LogPretty = o.pretty
	}
	return cfg, cfg.Validate()
}

// setup configures logging and tracing and wires the fetch path. The
// returned cleanup flushes spans and closes stores.
func (o *rootOptions) setup(cmd *cobra.Command) (*app, func(), error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := cfg.LoggingConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logging.Setup(logCfg)
	logger := logging.NewLogger(logging.ComponentServer)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		logger.Warn().Err(err).Msg("Tracing disabled")
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		_ = shutdown(context.Background())
		logger.Error().Err(err).Msg("Startup failed")
		return nil, nil, err
	}

	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("Close stores")
		}
		if err := shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("Flush traces")
		}
	}
	return a, cleanup, nil
}

func (o *rootOptions) tableRenderer() *render.TableRenderer {
	if o.sanitize {
		return render.NewTableRenderer(render.WithSanitizer(render.UGC()))
	}
	return render.NewTableRenderer()
}
