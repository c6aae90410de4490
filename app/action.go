package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/repcheck/internal/api"
	"github.com/ayoisaiah/repcheck/internal/config"
	"github.com/ayoisaiah/repcheck/internal/failure"
	"github.com/ayoisaiah/repcheck/internal/gate"
	"github.com/ayoisaiah/repcheck/internal/logging"
	"github.com/ayoisaiah/repcheck/internal/osutil"
	"github.com/ayoisaiah/repcheck/internal/pathutil"
	"github.com/ayoisaiah/repcheck/internal/timeutil"
	"github.com/ayoisaiah/repcheck/internal/ui"
	"github.com/ayoisaiah/repcheck/internal/video"
)

const (
	envNoColor         = "NO_COLOR"
	envRepcheckNoColor = "REPCHECK_NO_COLOR"
)

// editConfigAction handles the edit-config command which opens the repcheck
// config file in the user's default text editor.
func editConfigAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	editor, err := shellquote.Split(osutil.Editor())
	if err != nil || len(editor) == 0 {
		editor = []string{osutil.Editor()}
	}

	//nolint:gosec // the editor is chosen by the user
	cmd := exec.Command(editor[0], append(editor[1:], cfg.System.ConfigPath)...)

	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout

	return cmd.Run()
}

// validateAction checks FILE against the configured limits and prints what
// the probe could read, without contacting the service.
func validateAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errFileRequired.Fmt("validate")
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, "error")

	f, err := video.Open(path)
	if err != nil {
		return err
	}

	verdict := video.Validate(f, cfg.Limits())

	fields := []ui.Field{
		{Label: "File", Value: f.Name},
		{Label: "Type", Value: f.MIMEType},
		{Label: "Size", Value: fmt.Sprintf("%.2f MB", f.SizeMB())},
	}

	if verdict.Valid {
		prober, err := video.NewProber(cfg.Probe.Cmd, cfg.Probe.Timeout, logger)
		if err != nil {
			return err
		}

		spinner, _ := pterm.DefaultSpinner.
			WithWriter(config.Stderr).
			Start("Reading video metadata...")

		meta := prober.Probe(ctx.Context, f.Path)

		if spinner != nil {
			_ = spinner.Stop()
		}

		fields = append(fields, metadataFields(meta)...)

		if err := video.CheckDuration(meta, cfg.Upload.MaxDuration); err != nil {
			verdict.Valid, verdict.Reason = false, err.Error()
		}
	}

	if verdict.Warning != "" {
		fields = append(fields, ui.Field{Label: "Warning", Value: ui.Yellow(verdict.Warning)})
	}

	if !verdict.Valid {
		fields = append(fields, ui.Field{Label: "Result", Value: ui.Red(verdict.Reason)})
		ui.PrintFields(fields, config.Stdout)

		return errSessionFailed.Fmt("validation failed", verdict.Reason)
	}

	fields = append(fields, ui.Field{Label: "Result", Value: ui.Green("ready to upload")})
	ui.PrintFields(fields, config.Stdout)

	return nil
}

func metadataFields(meta video.Metadata) []ui.Field {
	duration, fps := "unknown", "unknown"

	if meta.Duration > 0 {
		duration = fmt.Sprintf("%.1f seconds", meta.Duration.Seconds())
	}

	if meta.FPS > 0 {
		fps = fmt.Sprintf("%.2f", meta.FPS)
	}

	return []ui.Field{
		{Label: "Duration", Value: duration},
		{Label: "Frame rate", Value: fps},
	}
}

// activateAction activates the pending tokens of the configured credential
// outside a session.
func activateAction(ctx *cli.Context) error {
	d, err := newDeps(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	act, err := d.client.ActivateTokens(ctx.Context, uuid.NewString())
	if errors.Is(err, api.ErrNoCredential) {
		return err
	}

	if err != nil {
		return errActivation.Fmt(failure.Classify(err).Message)
	}

	msg := act.Message
	if msg == "" {
		msg = "Tokens activated"
	}

	pterm.Success.Println(msg)

	if act.RemainingTokens != nil {
		d.saveBalance(*act.RemainingTokens)

		pterm.Info.Printfln("%d tokens available", *act.RemainingTokens)
	}

	return nil
}

// statusAction prints who repcheck sends requests as, whether the free
// analysis is still available and the last known token balance.
func statusAction(ctx *cli.Context) error {
	d, err := newDeps(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	fields := []ui.Field{
		{Label: "Server", Value: d.cfg.Server.BaseURL},
		{Label: "Identity", Value: d.ident.String()},
	}

	if !d.ident.ExpiresAt.IsZero() {
		fields = append(fields, ui.Field{
			Label: "Token expiry",
			Value: d.ident.ExpiresAt.Local().Format(time.DateTime),
		})
	}

	if !d.ident.Authenticated() {
		state, err := d.gate().Load(ctx.Context)

		value := ui.Green("available")
		if state == gate.Exhausted {
			value = ui.Red("used")
		}

		if err != nil {
			d.logger.WarnContext(ctx.Context, "anonymous limit check failed",
				slog.Any("error", err),
			)

			value += " (server unreachable)"
		}

		fields = append(fields, ui.Field{Label: "Free analysis", Value: value})
	}

	bal, err := d.db.Balance()
	if err != nil {
		return err
	}

	if bal != nil {
		fields = append(fields, ui.Field{
			Label: "Tokens",
			Value: fmt.Sprintf(
				"%d (as of %s ago)",
				bal.Remaining,
				timeutil.Human(time.Since(bal.UpdatedAt)),
			),
		})
	}

	ui.PrintFields(fields, config.Stdout)

	return nil
}

// cleanupAction deletes an upload that was never analyzed.
func cleanupAction(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return errSessionIDRequired
	}

	d, err := newDeps(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	if err := d.client.Cleanup(ctx.Context, id); err != nil {
		return errSessionFailed.Fmt("cleanup failed", failure.Classify(err).Message)
	}

	pterm.Success.Printfln("Deleted upload %s", id)

	return nil
}

func beforeAction(ctx *cli.Context) error {
	// Override the default help template
	cli.AppHelpTemplate = helpText()

	if err := pathutil.Initialize(); err != nil {
		return err
	}

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	// Disable colour output if NO_COLOR is set
	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	// Disable colour output if REPCHECK_NO_COLOR is set
	if _, exists := os.LookupEnv(envRepcheckNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	return nil
}

func afterAction(ctx *cli.Context) error {
	slog.InfoContext(ctx.Context, "exiting repcheck")

	return nil
}
