package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/baiirun/minitodo/internal/config"
	"github.com/baiirun/minitodo/internal/db"
	"github.com/baiirun/minitodo/internal/ingest"
	"github.com/baiirun/minitodo/internal/jsonfile"
	"github.com/baiirun/minitodo/internal/logging"
	"github.com/baiirun/minitodo/internal/rules"
	"github.com/baiirun/minitodo/internal/todo"
)

// store is what both backends provide.
type store interface {
	todo.Store
	rules.Store
	io.Closer
}

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	ConfigPath string
	DBPath     string
	Backend    string
	LogLevel   string
	LogFile    string
	JSON       bool
}

// app holds the services built from configuration for one command run.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    store
	todos    *todo.Service
	rules    *rules.Service
	pipeline *ingest.Pipeline
	closeLog func()
}

func openApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	configPath := flags.ConfigPath
	if configPath == "" {
		configPath = config.DefaultPath(dataDir)
	}

	cfg, err := config.Load(configPath, dataDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd, flags, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Stderr:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	log.Logger = logger

	st, err := openStore(cfg)
	if err != nil {
		closeLog()
		return nil, err
	}

	todos := todo.NewService(st, logging.Component("todo"))
	a := &app{
		cfg:   cfg,
		log:   logger,
		store: st,
		todos: todos,
		rules: rules.NewService(st, logging.Component("rules")),
		pipeline: ingest.New(todos, logging.Component("ingest"),
			ingest.WithConcurrency(cfg.Ingest.Concurrency),
			ingest.WithExclude(cfg.Ingest.Exclude...),
		),
		closeLog: closeLog,
	}
	logger.Debug().Str("backend", cfg.Backend).Str("path", cfg.StorePath()).Msg("store opened")
	return a, nil
}

// applyFlags lets explicitly set flags override file and environment values.
func applyFlags(cmd *cobra.Command, flags *rootFlags, cfg *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("db") {
		cfg.DBPath = flags.DBPath
	}
	if changed("backend") {
		cfg.Backend = flags.Backend
	}
	if changed("log-level") {
		cfg.Log.Level = flags.LogLevel
	}
	if changed("log-file") {
		cfg.Log.File = flags.LogFile
	}
}

func openStore(cfg *config.Config) (store, error) {
	path := cfg.StorePath()
	switch cfg.Backend {
	case config.BackendJSON:
		s, err := jsonfile.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open json store: %w", err)
		}
		return s, nil
	default:
		database, err := db.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := database.Init(); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("init database: %w", err)
		}
		return database, nil
	}
}

func (a *app) Close() error {
	err := a.store.Close()
	a.closeLog()
	return err
}

// errNotInitialized guards commands that run without the root pre-run.
var errNotInitialized = errors.New("app not initialized")
