package app

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/repcheck/internal/api"
	"github.com/ayoisaiah/repcheck/internal/config"
	"github.com/ayoisaiah/repcheck/internal/gate"
	"github.com/ayoisaiah/repcheck/internal/identity"
	"github.com/ayoisaiah/repcheck/internal/logging"
	"github.com/ayoisaiah/repcheck/internal/models"
	"github.com/ayoisaiah/repcheck/internal/pathutil"
	"github.com/ayoisaiah/repcheck/internal/store"
)

const envFile = ".env"

// deps bundles what every network-facing command needs.
type deps struct {
	cfg    *config.Config
	logger *slog.Logger
	db     store.DB
	client *api.Client
	ident  identity.Identity
	closer io.Closer
}

// interactive reports whether the user can answer prompts.
var interactive = func() bool {
	fd := os.Stdin.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// loadConfig builds the configuration. Later sources win: defaults, the
// config file, the environment (including .env), then flags.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	opts := []config.Option{config.WithEnvFile(envFile)}

	if interactive() {
		opts = append(opts, config.WithPromptConfig(pathutil.ConfigFilePath()))
	}

	opts = append(opts,
		config.WithViperConfig(pathutil.ConfigFilePath()),
		config.WithPaths(pathutil.DBFilePath(), pathutil.LogFilePath()),
		config.WithCLIConfig(ctx),
	)

	return config.New(opts...)
}

// newDeps loads the configuration, sets up logging and opens the store.
// The caller must call Close.
func newDeps(ctx *cli.Context) (*deps, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.Setup(cfg.System.LogPath, cfg.Settings.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := store.NewClient(cfg.System.DBPath)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	ident := identity.Parse(cfg.Server.Token, time.Now())
	if ident.Expired {
		pterm.Warning.Printfln(
			"The configured token expired on %s: continuing as an anonymous user",
			ident.ExpiresAt.Local().Format(time.DateTime),
		)
	}

	opts := []api.Option{
		api.WithEndpoints(cfg.Endpoints()),
		api.WithLogger(logger),
	}

	if ident.Authenticated() {
		opts = append(opts, api.WithToken(ident.Token))
	}

	logger.InfoContext(ctx.Context, "starting repcheck",
		slog.String("server", cfg.Server.BaseURL),
		slog.String("identity", ident.String()),
	)

	return &deps{
		cfg:    cfg,
		logger: logger,
		db:     db,
		client: api.New(cfg.Server.BaseURL, opts...),
		ident:  ident,
		closer: closer,
	}, nil
}

func (d *deps) gate() *gate.Gate {
	return gate.New(d.db, d.client, d.ident.Authenticated(), d.logger)
}

// saveBalance records a remaining-token figure. Failures are logged only.
func (d *deps) saveBalance(remaining int) {
	err := d.db.SaveBalance(models.Balance{
		UpdatedAt: time.Now(),
		Remaining: remaining,
	})
	if err != nil {
		d.logger.Warn("saving token balance failed", slog.Any("error", err))
	}
}

func (d *deps) Close() error {
	return errors.Join(d.db.Close(), d.closer.Close())
}
