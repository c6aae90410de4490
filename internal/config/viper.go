package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "REPCHECK"

const (
	keyBaseURL            = "server.base_url"
	keyToken              = "server.token"
	keyAnonymousLimitPath = "server.anonymous_limit_path"
	keyUploadPath         = "server.upload_path"
	keyAnalyzePath        = "server.analyze_path"
	keyCleanupPath        = "server.cleanup_path"
	keyActivatePath       = "server.activate_path"
	keyMaxSizeMB          = "upload.max_size_mb"
	keyWarnSizeMB         = "upload.warn_size_mb"
	keyMaxDuration        = "upload.max_duration"
	keyProbeCmd           = "probe.cmd"
	keyProbeTimeout       = "probe.timeout"
	keyTick               = "progress.tick"
	keyBase               = "progress.base"
	keyPerMB              = "progress.per_mb"
	keyPerFrame           = "progress.per_frame"
	keyAssumedFPS         = "progress.assumed_fps"
	keyDefault            = "progress.default"
	keyMax                = "progress.max"
	keySizeScaled         = "progress.size_scaled"
	keyAllowNotes         = "analysis.allow_notes"
	keyExercises          = "analysis.exercises"
	keyDefaultExercise    = "analysis.default_exercise"
	keyNotify             = "settings.notify"
	keyOnCompleteCmd      = "settings.on_complete_cmd"
	keyLogLevel           = "settings.log_level"
	keyDarkTheme          = "settings.dark_theme"
)

// DefaultExercises is the exercise table written to a new config file.
var DefaultExercises = map[string]string{
	"1":  "Squat",
	"2":  "Deadlift",
	"3":  "Bench press",
	"4":  "Overhead press",
	"5":  "Barbell row",
	"6":  "Lunge",
	"7":  "Push-up",
	"8":  "Pull-up",
	"9":  "Hip thrust",
	"10": "Romanian deadlift",
}

// WithViperConfig returns an Option that loads configuration from the file
// at configPath, writing one with default values if it does not exist.
// REPCHECK_ environment variables override file values but are never
// written to the file.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setDefaults(v, c)

		err := v.ReadInConfig()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return errReadConfig.Wrap(err)
			}

			if err := v.WriteConfig(); err != nil {
				return errWriteConfig.Wrap(err)
			}
		}

		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		c.System.ConfigPath = configPath

		return loadViperConfig(v, c)
	}
}

// setDefaults registers every key with its default value. Values already
// present in c, such as answers to the first-run prompts, take precedence.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault(keyBaseURL, "http://localhost:8000")
	v.SetDefault(keyToken, "")
	v.SetDefault(keyAnonymousLimitPath, "/api/anonymous-limit")
	v.SetDefault(keyUploadPath, "/api/upload")
	v.SetDefault(keyAnalyzePath, "/api/analyze")
	v.SetDefault(keyCleanupPath, "/api/cleanup/{session_id}")
	v.SetDefault(keyActivatePath, "/api/tokens/activate")
	v.SetDefault(keyMaxSizeMB, 500)
	v.SetDefault(keyWarnSizeMB, 50)
	v.SetDefault(keyMaxDuration, "120s")
	v.SetDefault(keyProbeCmd, "ffprobe -v error")
	v.SetDefault(keyProbeTimeout, "5s")
	v.SetDefault(keyTick, "100ms")
	v.SetDefault(keyBase, "8s")
	v.SetDefault(keyPerMB, "900ms")
	v.SetDefault(keyPerFrame, "40ms")
	v.SetDefault(keyAssumedFPS, 30)
	v.SetDefault(keyDefault, "30s")
	v.SetDefault(keyMax, "90s")
	v.SetDefault(keySizeScaled, false)
	v.SetDefault(keyAllowNotes, true)
	v.SetDefault(keyExercises, DefaultExercises)
	v.SetDefault(keyDefaultExercise, "")
	v.SetDefault(keyNotify, true)
	v.SetDefault(keyOnCompleteCmd, "")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyDarkTheme, true)

	if c.Server.BaseURL != "" {
		v.SetDefault(keyBaseURL, c.Server.BaseURL)
	}

	if c.Analysis.DefaultExercise != "" {
		v.SetDefault(keyDefaultExercise, c.Analysis.DefaultExercise)
	}
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	if err := v.Unmarshal(c); err != nil {
		return errReadConfig.Wrap(err)
	}

	c.Server.Token = strings.TrimSpace(c.Server.Token)

	return nil
}
