package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/maestro/internal/config"
	"github.com/harrison/maestro/internal/executor"
	"github.com/harrison/maestro/internal/filelock"
	"github.com/harrison/maestro/internal/logger"
	"github.com/harrison/maestro/internal/planner"
	"github.com/harrison/maestro/internal/provider"
	"github.com/harrison/maestro/internal/quality"
	"github.com/harrison/maestro/internal/router"
	"github.com/harrison/maestro/internal/stages"
	"github.com/harrison/maestro/internal/store"
)

// pipeline bundles the wired components behind the serve and run commands.
type pipeline struct {
	cfg        *config.Config
	store      store.Store
	classifier *router.RuleClassifier
	planner    *planner.Planner
	orch       *executor.Orchestrator
	log        *logger.ConsoleLogger
	lock       *filelock.FileLock
}

// loadConfig resolves the configuration for a command: the --config flag if
// set, otherwise .maestro/config.yaml in the working directory, with
// --data-dir and --log-level overriding the file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// addConfigFlags registers the flags shared by commands that wire the
// pipeline.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .maestro/config.yaml)")
	cmd.Flags().String("data-dir", "", "Directory for the task database and lock file")
	cmd.Flags().String("log-level", "", "Log verbosity: trace, debug, info, warn, error")
}

// buildPipeline wires the classifier, planner, stage registry, store, and
// orchestrator from configuration. With exclusive set, the data directory is
// locked against other maestro processes; the caller must Close the pipeline.
func buildPipeline(cfg *config.Config, exclusive bool) (*pipeline, error) {
	var lock *filelock.FileLock
	if exclusive {
		var err error
		lock, err = filelock.AcquireDataDir(cfg.DataDir)
		if err != nil {
			return nil, err
		}
	}

	st, err := store.NewSQLiteStore(filepath.Join(cfg.DataDir, "tasks.db"))
	if err != nil {
		if lock != nil {
			lock.Unlock()
		}
		return nil, fmt.Errorf("failed to open task store: %w", err)
	}

	log := logger.NewConsoleLogger(os.Stdout, cfg.LogLevel)
	eval := quality.NewEvaluator(&quality.HeuristicScorer{}, cfg.Quality.AcceptanceThreshold)
	registry := stages.NewRegistry(&provider.StaticGenerator{}, &provider.StaticImageSearcher{}, eval)

	classifier := router.NewRuleClassifier()
	classifier.ConfidenceThreshold = cfg.Router.ConfidenceThreshold

	orch := executor.New(st, registry, &provider.NullPublisher{}, log, cfg.ExecutorOptions())

	return &pipeline{
		cfg:        cfg,
		store:      st,
		classifier: classifier,
		planner:    planner.New(),
		orch:       orch,
		log:        log,
		lock:       lock,
	}, nil
}

// Close releases the store and the data directory lock.
func (p *pipeline) Close() {
	if p.store != nil {
		p.store.Close()
	}
	if p.lock != nil {
		p.lock.Unlock()
	}
}
