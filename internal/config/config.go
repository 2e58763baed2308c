// Package config loads maestro configuration from YAML with layered
// defaults: built-in defaults, then the config file, then CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/maestro/internal/executor"
)

// PipelineConfig represents stage execution configuration
type PipelineConfig struct {
	// StageTimeout is the maximum execution time per stage attempt
	StageTimeout time.Duration `yaml:"stage_timeout"`

	// RetryBudget is the number of retries per stage for transient failures
	RetryBudget int `yaml:"retry_budget"`

	// RetryBackoff is the base delay between retries (doubled per attempt)
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// RefinementCap is the maximum number of extra creative attempts driven
	// by quality review
	RefinementCap int `yaml:"refinement_cap"`

	// MaxConcurrency is the maximum number of concurrent stages in a
	// parallel wave
	MaxConcurrency int `yaml:"max_concurrency"`

	// ApprovalRequired holds tasks with a publish stage in awaiting_approval
	// until explicitly approved
	ApprovalRequired bool `yaml:"approval_required"`

	// AssetFailurePolicy maps task type to "proceed" or "fail" when asset
	// selection finds nothing
	AssetFailurePolicy map[string]string `yaml:"asset_failure_policy"`
}

// QualityConfig represents quality evaluation configuration
type QualityConfig struct {
	// AcceptanceThreshold is the composite score (0-10) a draft must reach
	AcceptanceThreshold float64 `yaml:"acceptance_threshold"`
}

// RouterConfig represents intent classification configuration
type RouterConfig struct {
	// ConfidenceThreshold below which classification requires confirmation
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// Config represents maestro configuration options
type Config struct {
	// ListenAddr is the HTTP API listen address
	ListenAddr string `yaml:"listen_addr"`

	// DataDir is the directory holding the task database and lock file
	DataDir string `yaml:"data_dir"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Budget is the per-task cost ceiling in dollars (0 = no ceiling)
	Budget float64 `yaml:"budget"`

	Pipeline PipelineConfig `yaml:"pipeline"`
	Quality  QualityConfig  `yaml:"quality"`
	Router   RouterConfig   `yaml:"router"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		ListenAddr: "127.0.0.1:8170",
		DataDir:    ".maestro",
		LogLevel:   "info",
		Budget:     0,
		Pipeline: PipelineConfig{
			StageTimeout:     2 * time.Minute,
			RetryBudget:      2,
			RetryBackoff:     2 * time.Second,
			RefinementCap:    2,
			MaxConcurrency:   3,
			ApprovalRequired: false,
			AssetFailurePolicy: map[string]string{
				"blog_post":    executor.AssetPolicyProceed,
				"social_media": executor.AssetPolicyProceed,
			},
		},
		Quality: QualityConfig{
			AcceptanceThreshold: 7.0,
		},
		Router: RouterConfig{
			ConfidenceThreshold: 0.5,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations arrive as strings ("90s", "2m"), so unmarshal into a
	// string-typed shadow and parse.
	type yamlPipeline struct {
		StageTimeout       string            `yaml:"stage_timeout"`
		RetryBudget        *int              `yaml:"retry_budget"`
		RetryBackoff       string            `yaml:"retry_backoff"`
		RefinementCap      *int              `yaml:"refinement_cap"`
		MaxConcurrency     *int              `yaml:"max_concurrency"`
		ApprovalRequired   *bool             `yaml:"approval_required"`
		AssetFailurePolicy map[string]string `yaml:"asset_failure_policy"`
	}
	type yamlConfig struct {
		ListenAddr string       `yaml:"listen_addr"`
		DataDir    string       `yaml:"data_dir"`
		LogLevel   string       `yaml:"log_level"`
		Budget     *float64     `yaml:"budget"`
		Pipeline   yamlPipeline `yaml:"pipeline"`
		Quality    struct {
			AcceptanceThreshold *float64 `yaml:"acceptance_threshold"`
		} `yaml:"quality"`
		Router struct {
			ConfidenceThreshold *float64 `yaml:"confidence_threshold"`
		} `yaml:"router"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.ListenAddr != "" {
		cfg.ListenAddr = yamlCfg.ListenAddr
	}
	if yamlCfg.DataDir != "" {
		cfg.DataDir = yamlCfg.DataDir
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.Budget != nil {
		cfg.Budget = *yamlCfg.Budget
	}

	if yamlCfg.Pipeline.StageTimeout != "" {
		d, err := time.ParseDuration(yamlCfg.Pipeline.StageTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid stage_timeout format %q: %w", yamlCfg.Pipeline.StageTimeout, err)
		}
		cfg.Pipeline.StageTimeout = d
	}
	if yamlCfg.Pipeline.RetryBackoff != "" {
		d, err := time.ParseDuration(yamlCfg.Pipeline.RetryBackoff)
		if err != nil {
			return nil, fmt.Errorf("invalid retry_backoff format %q: %w", yamlCfg.Pipeline.RetryBackoff, err)
		}
		cfg.Pipeline.RetryBackoff = d
	}
	if yamlCfg.Pipeline.RetryBudget != nil {
		cfg.Pipeline.RetryBudget = *yamlCfg.Pipeline.RetryBudget
	}
	if yamlCfg.Pipeline.RefinementCap != nil {
		cfg.Pipeline.RefinementCap = *yamlCfg.Pipeline.RefinementCap
	}
	if yamlCfg.Pipeline.MaxConcurrency != nil {
		cfg.Pipeline.MaxConcurrency = *yamlCfg.Pipeline.MaxConcurrency
	}
	if yamlCfg.Pipeline.ApprovalRequired != nil {
		cfg.Pipeline.ApprovalRequired = *yamlCfg.Pipeline.ApprovalRequired
	}
	for taskType, policy := range yamlCfg.Pipeline.AssetFailurePolicy {
		cfg.Pipeline.AssetFailurePolicy[taskType] = policy
	}

	if yamlCfg.Quality.AcceptanceThreshold != nil {
		cfg.Quality.AcceptanceThreshold = *yamlCfg.Quality.AcceptanceThreshold
	}
	if yamlCfg.Router.ConfidenceThreshold != nil {
		cfg.Router.ConfidenceThreshold = *yamlCfg.Router.ConfidenceThreshold
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .maestro/config.yaml in the
// specified directory. If the directory or file doesn't exist, returns
// default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".maestro", "config.yaml"))
}

// ExecutorOptions converts the pipeline section into orchestrator options.
func (c *Config) ExecutorOptions() executor.Options {
	return executor.Options{
		StageTimeout:         c.Pipeline.StageTimeout,
		RetryBudget:          c.Pipeline.RetryBudget,
		RetryBackoff:         c.Pipeline.RetryBackoff,
		RefinementCap:        c.Pipeline.RefinementCap,
		MaxConcurrency:       c.Pipeline.MaxConcurrency,
		ApprovalRequired:     c.Pipeline.ApprovalRequired,
		AssetFailurePolicies: c.Pipeline.AssetFailurePolicy,
	}
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr cannot be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Budget < 0 {
		return fmt.Errorf("budget must be >= 0, got %v", c.Budget)
	}
	if c.Pipeline.StageTimeout <= 0 {
		return fmt.Errorf("pipeline.stage_timeout must be > 0, got %v", c.Pipeline.StageTimeout)
	}
	if c.Pipeline.RetryBudget < 0 {
		return fmt.Errorf("pipeline.retry_budget must be >= 0, got %d", c.Pipeline.RetryBudget)
	}
	if c.Pipeline.RefinementCap < 0 {
		return fmt.Errorf("pipeline.refinement_cap must be >= 0, got %d", c.Pipeline.RefinementCap)
	}
	if c.Pipeline.MaxConcurrency <= 0 {
		return fmt.Errorf("pipeline.max_concurrency must be > 0, got %d", c.Pipeline.MaxConcurrency)
	}
	for taskType, policy := range c.Pipeline.AssetFailurePolicy {
		if policy != executor.AssetPolicyProceed && policy != executor.AssetPolicyFail {
			return fmt.Errorf("invalid asset_failure_policy for %q: %q, must be %q or %q",
				taskType, policy, executor.AssetPolicyProceed, executor.AssetPolicyFail)
		}
	}
	if c.Quality.AcceptanceThreshold < 0 || c.Quality.AcceptanceThreshold > 10 {
		return fmt.Errorf("quality.acceptance_threshold must be in [0, 10], got %v", c.Quality.AcceptanceThreshold)
	}
	if c.Router.ConfidenceThreshold < 0 || c.Router.ConfidenceThreshold > 1 {
		return fmt.Errorf("router.confidence_threshold must be in [0, 1], got %v", c.Router.ConfidenceThreshold)
	}

	return nil
}
