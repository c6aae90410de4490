package config

import (
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/repcheck/internal/timeutil"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	Server     string
	Token      string
	Exercise   string
	Notes      string
	OnComplete string
	Since      string
	Until      string
	NoNotify   bool
	JSON       bool
}

// WithCLIConfig returns an Option that loads configuration from CLI flags.
// It must follow WithViperConfig so that flags win over the file and the
// environment.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		opts := CLIOptions{
			Server:     ctx.String("server"),
			Token:      ctx.String("token"),
			Exercise:   ctx.String("exercise"),
			Notes:      ctx.String("notes"),
			OnComplete: ctx.String("on-complete"),
			Since:      ctx.String("since"),
			Until:      ctx.String("until"),
			NoNotify:   ctx.Bool("no-notify"),
			JSON:       ctx.Bool("json"),
		}

		return applyCLIOptions(c, opts, time.Now())
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts CLIOptions, now time.Time) error {
	if opts.Server != "" {
		c.Server.BaseURL = strings.TrimSpace(opts.Server)
	}

	if opts.Token != "" {
		c.Server.Token = strings.TrimSpace(opts.Token)
	}

	if opts.OnComplete != "" {
		c.Settings.OnCompleteCmd = opts.OnComplete
	}

	if opts.NoNotify {
		c.Settings.Notify = false
	}

	c.CLI.JSON = opts.JSON
	c.CLI.Notes = strings.TrimSpace(opts.Notes)
	c.CLI.Exercise = strings.TrimSpace(opts.Exercise)

	if c.CLI.Exercise != "" {
		c.CLI.Exercises = splitAndTrim(c.CLI.Exercise)
	}

	return applyCLIRange(c, opts, now)
}

// applyCLIRange sets the history window. A bare --until date covers the
// whole day.
func applyCLIRange(c *Config, opts CLIOptions, now time.Time) error {
	c.CLI.Until = now

	if opts.Since != "" {
		since, err := timeutil.FromStr(opts.Since, now)
		if err != nil {
			return errInvalidTime.Fmt("since", opts.Since).Wrap(err)
		}

		c.CLI.Since = since
	}

	if opts.Until != "" {
		until, err := timeutil.FromStr(opts.Until, now)
		if err != nil {
			return errInvalidTime.Fmt("until", opts.Until).Wrap(err)
		}

		if timeutil.IsDateOnly(until) {
			until = timeutil.RoundToEnd(until)
		}

		c.CLI.Until = until
	}

	if c.CLI.Until.Before(c.CLI.Since) {
		return errInvalidRange.Fmt(c.CLI.Since.Format(time.DateTime), c.CLI.Until.Format(time.DateTime))
	}

	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	split := strings.Split(s, ",")

	trimmed := make([]string, 0, len(split))

	for _, v := range split {
		if v = strings.TrimSpace(v); v != "" {
			trimmed = append(trimmed, v)
		}
	}

	return trimmed
}
