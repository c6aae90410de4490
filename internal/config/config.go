package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ayoisaiah/repcheck/internal/api"
	"github.com/ayoisaiah/repcheck/internal/progress"
	"github.com/ayoisaiah/repcheck/internal/video"
)

type (
	// Config holds all configuration settings
	Config struct {
		Server   ServerConfig   `mapstructure:"server"`
		Upload   UploadConfig   `mapstructure:"upload"`
		Probe    ProbeConfig    `mapstructure:"probe"`
		Progress ProgressConfig `mapstructure:"progress"`
		Analysis AnalysisConfig `mapstructure:"analysis"`
		Settings SettingsConfig `mapstructure:"settings"`
		CLI      CLIConfig      `mapstructure:"-"`
		System   SystemConfig   `mapstructure:"-"`
	}

	// ServerConfig locates the analysis service
	ServerConfig struct {
		BaseURL            string `mapstructure:"base_url"`
		Token              string `mapstructure:"token"`
		AnonymousLimitPath string `mapstructure:"anonymous_limit_path"`
		UploadPath         string `mapstructure:"upload_path"`
		AnalyzePath        string `mapstructure:"analyze_path"`
		CleanupPath        string `mapstructure:"cleanup_path"`
		ActivatePath       string `mapstructure:"activate_path"`
	}

	// UploadConfig holds the local file limits
	UploadConfig struct {
		MaxSizeMB   int64         `mapstructure:"max_size_mb"`
		WarnSizeMB  int64         `mapstructure:"warn_size_mb"`
		MaxDuration time.Duration `mapstructure:"max_duration"`
	}

	// ProbeConfig holds the metadata probe settings
	ProbeConfig struct {
		Cmd     string        `mapstructure:"cmd"`
		Timeout time.Duration `mapstructure:"timeout"`
	}

	// ProgressConfig holds the analysis time estimation constants
	ProgressConfig struct {
		Tick       time.Duration `mapstructure:"tick"`
		Base       time.Duration `mapstructure:"base"`
		PerMB      time.Duration `mapstructure:"per_mb"`
		PerFrame   time.Duration `mapstructure:"per_frame"`
		Default    time.Duration `mapstructure:"default"`
		Max        time.Duration `mapstructure:"max"`
		AssumedFPS float64       `mapstructure:"assumed_fps"`
		SizeScaled bool          `mapstructure:"size_scaled"`
	}

	// AnalysisConfig holds analysis request settings
	AnalysisConfig struct {
		// Exercises maps exercise ids to display names
		Exercises       map[string]string `mapstructure:"exercises"`
		DefaultExercise string            `mapstructure:"default_exercise"`
		AllowNotes      bool              `mapstructure:"allow_notes"`
	}

	// SettingsConfig holds general settings
	SettingsConfig struct {
		OnCompleteCmd string `mapstructure:"on_complete_cmd"`
		LogLevel      string `mapstructure:"log_level"`
		Notify        bool   `mapstructure:"notify"`
		DarkTheme     bool   `mapstructure:"dark_theme"`
	}

	// CLIConfig holds per-invocation values that only come from flags
	CLIConfig struct {
		Since     time.Time
		Until     time.Time
		Exercise  string
		Notes     string
		Exercises []string
		JSON      bool
	}

	// SystemConfig holds system-related settings
	SystemConfig struct {
		ConfigPath string
		DBPath     string
		LogPath    string
	}

	// Option is a function that modifies Config
	Option func(*Config) error
)

const Version = "v0.3.0"

var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// New creates a new Config and applies options in order.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("config option error: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigValidation.Wrap(err)
	}

	return cfg, nil
}

// WithPaths records where the database and log file live.
func WithPaths(dbPath, logPath string) Option {
	return func(c *Config) error {
		c.System.DBPath = dbPath
		c.System.LogPath = logPath

		return nil
	}
}

// Endpoints returns the service paths in the form the API client expects.
func (c *Config) Endpoints() api.Endpoints {
	return api.Endpoints{
		AnonymousLimit: c.Server.AnonymousLimitPath,
		Upload:         c.Server.UploadPath,
		Analyze:        c.Server.AnalyzePath,
		Cleanup:        c.Server.CleanupPath,
		Activate:       c.Server.ActivatePath,
	}
}

// Limits returns the file limits for validation.
func (c *Config) Limits() video.Limits {
	return video.Limits{
		MaxSize:     c.Upload.MaxSizeMB * video.MiB,
		WarnSize:    c.Upload.WarnSizeMB * video.MiB,
		MaxDuration: c.Upload.MaxDuration,
	}
}

// ProgressModel returns the estimation constants.
func (c *Config) ProgressModel() progress.Model {
	return progress.Model{
		Base:       c.Progress.Base,
		PerMB:      c.Progress.PerMB,
		PerFrame:   c.Progress.PerFrame,
		Default:    c.Progress.Default,
		Max:        c.Progress.Max,
		AssumedFPS: c.Progress.AssumedFPS,
		SizeScaled: c.Progress.SizeScaled,
	}
}

// Exercise returns the exercise chosen on the command line, falling back to
// the configured default.
func (c *Config) Exercise() string {
	if c.CLI.Exercise != "" {
		return c.CLI.Exercise
	}

	return c.Analysis.DefaultExercise
}
