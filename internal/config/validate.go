package config

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
)

var (
	// Upload size bounds in MB.
	minSizeMB int64 = 1
	maxSizeMB int64 = 4096

	minVideoDuration = 1 * time.Second
	maxVideoDuration = 30 * time.Minute

	minProbeTimeout = 100 * time.Millisecond
	maxProbeTimeout = 1 * time.Minute

	minTick = 10 * time.Millisecond
	maxTick = 5 * time.Second

	minEstimate = 1 * time.Second
	maxEstimate = 1 * time.Hour

	minFPS = 1.0
	maxFPS = 240.0

	logLevels = []string{"debug", "info", "warn", "error"}
)

// Validate performs validation checks on the Config struct and its fields.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateUpload(); err != nil {
		return err
	}

	if err := c.validateProbe(); err != nil {
		return err
	}

	if err := c.validateProgress(); err != nil {
		return err
	}

	if err := c.validateAnalysis(); err != nil {
		return err
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Settings.LogLevel)) {
		return errInvalidLogLevel.Fmt(c.Settings.LogLevel)
	}

	return nil
}

func (c *Config) validateServer() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errInvalidBaseURL.Fmt(c.Server.BaseURL)
	}

	paths := []struct {
		name  string
		value string
	}{
		{"anonymous limit", c.Server.AnonymousLimitPath},
		{"upload", c.Server.UploadPath},
		{"analyze", c.Server.AnalyzePath},
		{"cleanup", c.Server.CleanupPath},
		{"activate", c.Server.ActivatePath},
	}

	for _, p := range paths {
		if strings.TrimSpace(p.value) == "" {
			return errEmptyPath.Fmt(p.name)
		}
	}

	if !strings.Contains(c.Server.CleanupPath, "{session_id}") {
		return errCleanupPlaceholder.Fmt(c.Server.CleanupPath)
	}

	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.MaxSizeMB < minSizeMB || c.Upload.MaxSizeMB > maxSizeMB {
		return errInvalidSize.Fmt("max size", minSizeMB, maxSizeMB)
	}

	if c.Upload.WarnSizeMB < 0 || c.Upload.WarnSizeMB > maxSizeMB {
		return errInvalidSize.Fmt("warn size", 0, maxSizeMB)
	}

	if c.Upload.WarnSizeMB > c.Upload.MaxSizeMB {
		return errWarnAboveMax.Fmt(c.Upload.WarnSizeMB, c.Upload.MaxSizeMB)
	}

	return checkDuration("upload max duration", c.Upload.MaxDuration, minVideoDuration, maxVideoDuration)
}

func (c *Config) validateProbe() error {
	args, err := shellquote.Split(c.Probe.Cmd)
	if err != nil || len(args) == 0 {
		return errEmptyProbeCmd
	}

	return checkDuration("probe timeout", c.Probe.Timeout, minProbeTimeout, maxProbeTimeout)
}

func (c *Config) validateProgress() error {
	p := c.Progress

	if err := checkDuration("progress tick", p.Tick, minTick, maxTick); err != nil {
		return err
	}

	if err := checkDuration("progress default", p.Default, minEstimate, maxEstimate); err != nil {
		return err
	}

	if err := checkDuration("progress max", p.Max, minEstimate, maxEstimate); err != nil {
		return err
	}

	if err := checkDuration("progress base", p.Base, 0, maxEstimate); err != nil {
		return err
	}

	if p.PerMB < 0 || p.PerFrame < 0 {
		return errInvalidDuration.Fmt("progress per_mb and per_frame", time.Duration(0), maxEstimate)
	}

	if p.Default > p.Max {
		return errDefaultAboveMax.Fmt(p.Default, p.Max)
	}

	if p.AssumedFPS < minFPS || p.AssumedFPS > maxFPS {
		return errInvalidFPS.Fmt(minFPS, maxFPS)
	}

	return nil
}

func (c *Config) validateAnalysis() error {
	if len(c.Analysis.Exercises) == 0 {
		return errNoExercises
	}

	for id, name := range c.Analysis.Exercises {
		if strings.TrimSpace(name) == "" {
			return errEmptyExercise.Fmt(id)
		}
	}

	if c.Analysis.DefaultExercise != "" {
		if _, ok := c.Analysis.Exercises[c.Analysis.DefaultExercise]; !ok {
			return errUnknownDefaultExercise.Fmt(c.Analysis.DefaultExercise)
		}
	}

	return nil
}

func checkDuration(name string, d, lower, upper time.Duration) error {
	if d < lower || d > upper {
		return errInvalidDuration.Fmt(name, lower, upper)
	}

	return nil
}
