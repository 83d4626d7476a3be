// Package app provides the application context for the pluginevent CLI.
// It owns configuration, logging, and the importer used to rebuild events
// received from other tool instances.
package app

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/agentstation/pluginevent/internal/config"
	"github.com/agentstation/pluginevent/pkg/forward"
	"github.com/agentstation/pluginevent/pkg/logging"
	"github.com/agentstation/pluginevent/pkg/toolevents"
)

// App represents the pluginevent CLI with its dependencies.
type App struct {
	version string
	commit  string
	date    string

	viper  *viper.Viper
	config *config.Config
	logger *zerolog.Logger

	stdin  io.Reader
	stdout io.Writer

	// flags
	configFile string
	format     string
	verbose    bool
	quiet      bool
}

// New creates a new App with the given version information.
func New(version, commit, date string) *App {
	return &App{
		version: version,
		commit:  commit,
		date:    date,
		viper:   config.New(),
		logger:  logging.Default(),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
	}
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Config returns the loaded configuration. It is nil until a command runs.
func (a *App) Config() *config.Config {
	return a.config
}

// load reads .env files and configuration and configures logging.
func (a *App) load() error {
	loaded := config.LoadEnvFiles(config.DefaultEnvFiles...)

	cfg, err := config.Load(a.viper, a.configFile)
	if err != nil {
		return err
	}

	switch {
	case a.verbose:
		cfg.Logging.Level = "debug"
	case a.quiet:
		cfg.Logging.Level = "warn"
	}

	logging.Configure(&cfg.Logging)
	a.logger = logging.Default()
	a.config = cfg

	a.logger.Debug().
		Strs("env_files", loaded).
		Str("config_file", a.viper.ConfigFileUsed()).
		Str("source", cfg.Source).
		Msg("Configuration loaded")
	return nil
}

// operationContext returns ctx carrying the application logger tagged
// with the named operation.
func (a *App) operationContext(ctx context.Context, operation string) context.Context {
	return logging.WithOperation(logging.WithLogger(ctx, a.logger), operation)
}

// importer returns an importer with decoders for every exportable stock
// event kind, logging through the logger carried by ctx.
func (a *App) importer(ctx context.Context) (*forward.Importer, error) {
	imp := forward.NewImporter(logging.Ctx(ctx))
	if err := toolevents.RegisterDecoders(imp); err != nil {
		return nil, err
	}
	return imp, nil
}
