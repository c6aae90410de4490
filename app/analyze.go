package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/repcheck/internal/config"
	"github.com/ayoisaiah/repcheck/internal/models"
	"github.com/ayoisaiah/repcheck/internal/monitor"
	"github.com/ayoisaiah/repcheck/internal/notify"
	"github.com/ayoisaiah/repcheck/internal/pathutil"
	"github.com/ayoisaiah/repcheck/internal/progress"
	"github.com/ayoisaiah/repcheck/internal/session"
	"github.com/ayoisaiah/repcheck/internal/timeutil"
	"github.com/ayoisaiah/repcheck/internal/ui"
	"github.com/ayoisaiah/repcheck/internal/video"
)

// cleanupWait bounds how long the program waits for a cleanup request
// after the session ends.
const cleanupWait = 5 * time.Second

// analyzeAction handles the default command: it uploads FILE, analyzes it
// and records the result.
func analyzeAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errFileRequired.Fmt("analyze")
	}

	d, err := newDeps(ctx)
	if err != nil {
		return err
	}

	defer d.Close()

	cfg := d.cfg

	ui.DarkTheme = cfg.Settings.DarkTheme

	f, err := video.Open(path)
	if err != nil {
		return err
	}

	sess, err := newSession(d)
	if err != nil {
		return err
	}

	defer func() {
		sess.Teardown()

		waitCtx, cancel := context.WithTimeout(context.Background(), cleanupWait)
		defer cancel()

		if err := sess.Wait(waitCtx); err != nil {
			d.logger.Warn("background work did not finish", slog.Any("error", err))
		}
	}()

	if err := sess.Select(f); err != nil {
		return err
	}

	prompted, err := chooseExercise(cfg, sess)
	if err != nil {
		return err
	}

	if err := addNotes(cfg, sess, prompted); err != nil {
		return err
	}

	var snap session.Snapshot

	if cfg.CLI.JSON || !interactive() {
		snap, err = runHeadless(ctx.Context, sess)
	} else {
		snap, err = runMonitor(ctx.Context, sess, cfg, d.logger)
	}

	if cfg.CLI.JSON {
		if perr := printJSON(config.Stdout, snap); perr != nil {
			return perr
		}
	}

	if err != nil {
		return err
	}

	if snap.Phase != session.AnalysisComplete {
		if snap.Outcome != nil {
			return errSessionFailed.Fmt(snap.Phase, snap.Outcome.Message)
		}

		pterm.Info.Println("Analysis cancelled")

		return nil
	}

	record := newRecord(snap, time.Now())

	if err := d.db.SaveAnalysis(record); err != nil {
		d.logger.Warn("saving analysis failed", slog.Any("error", err))
	}

	name := exerciseName(cfg.Analysis.Exercises, record.Exercise)

	n := notify.New(
		cfg.Settings.Notify,
		cfg.Settings.OnCompleteCmd,
		pathutil.IconPath(),
		d.logger,
	)

	if err := n.Completed(ctx.Context, record, name); err != nil {
		pterm.Warning.Println(err)
	}

	if !cfg.CLI.JSON {
		printSummary(config.Stdout, snap, name)
	}

	return nil
}

func newSession(d *deps) (*session.Session, error) {
	cfg := d.cfg

	prober, err := video.NewProber(cfg.Probe.Cmd, cfg.Probe.Timeout, d.logger)
	if err != nil {
		return nil, err
	}

	return session.New(d.client, prober, d.gate(), session.Options{
		Estimator:  progress.New(cfg.ProgressModel(), nil, cfg.Progress.Tick),
		Logger:     d.logger,
		Exercises:  cfg.Analysis.Exercises,
		OnBalance:  d.saveBalance,
		Limits:     cfg.Limits(),
		AllowNotes: cfg.Analysis.AllowNotes,
	}), nil
}

// chooseExercise selects the exercise from the flag or the configured
// default, and asks for it otherwise. It reports whether the user was
// prompted.
func chooseExercise(cfg *config.Config, sess *session.Session) (bool, error) {
	id := cfg.Exercise()
	prompted := false

	if id == "" {
		if cfg.CLI.JSON || !interactive() {
			return false, errExerciseRequired.Fmt(cfg.System.ConfigPath)
		}

		var err error

		id, err = config.PromptExercise(cfg.Analysis.Exercises)
		if err != nil {
			return false, err
		}

		prompted = true
	}

	return prompted, sess.SelectExercise(id)
}

// addNotes attaches the --notes value. Notes are only asked for when the
// exercise was chosen interactively too.
func addNotes(cfg *config.Config, sess *session.Session, prompt bool) error {
	if !cfg.Analysis.AllowNotes {
		return nil
	}

	notes := cfg.CLI.Notes

	if notes == "" && prompt {
		var err error

		notes, err = config.PromptNotes()
		if err != nil {
			return err
		}
	}

	sess.SetNotes(notes)

	return nil
}

// runHeadless uploads and analyzes without a terminal view.
func runHeadless(ctx context.Context, sess *session.Session) (session.Snapshot, error) {
	if err := sess.Upload(ctx); err != nil {
		return sess.Snapshot(), err
	}

	if sess.Snapshot().Phase != session.UploadComplete {
		return sess.Snapshot(), nil
	}

	if err := sess.StartAnalysis(ctx); err != nil {
		return sess.Snapshot(), err
	}

	return sess.Snapshot(), nil
}

// runMonitor runs the session inside the terminal view until the analysis
// completes or the user quits.
func runMonitor(
	ctx context.Context,
	sess *session.Session,
	cfg *config.Config,
	logger *slog.Logger,
) (session.Snapshot, error) {
	m := monitor.New(ctx, sess, monitor.Options{
		Logger:    logger,
		Exercises: cfg.Analysis.Exercises,
		DarkTheme: cfg.Settings.DarkTheme,
	})

	p := tea.NewProgram(m, tea.WithContext(ctx))

	unsubscribe := sess.Subscribe(func(snap session.Snapshot) {
		p.Send(monitor.SnapshotMsg(snap))
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return sess.Snapshot(), err
	}

	snap := sess.Snapshot()

	if snap.Phase != session.AnalysisComplete && snap.Outcome == nil {
		return snap, m.Err()
	}

	return snap, nil
}

// newRecord converts a completed snapshot into a history entry.
func newRecord(snap session.Snapshot, completedAt time.Time) *models.Analysis {
	a := &models.Analysis{
		CompletedAt: completedAt,
		SessionID:   snap.SessionID,
		Exercise:    snap.Exercise,
		Elapsed:     snap.Elapsed,
	}

	if snap.File != nil {
		a.FileName = snap.File.Name
		a.Size = snap.File.Size
	}

	if snap.Upload != nil {
		a.FrameCount = snap.Upload.FrameCount
		a.FPS = snap.Upload.FPS
	}

	if res := snap.Result; res != nil {
		if res.FrameCount != 0 {
			a.FrameCount = res.FrameCount
		}

		if res.FPS != 0 {
			a.FPS = res.FPS
		}

		a.Warnings = res.Warnings

		if score, ok := res.Score(); ok {
			a.Score = &score
		}
	}

	return a
}

func exerciseName(exercises map[string]string, id string) string {
	if name, ok := exercises[id]; ok {
		return name
	}

	return id
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))

	return err
}

// printSummary prints the result of a completed analysis.
func printSummary(w io.Writer, snap session.Snapshot, exercise string) {
	fields := []ui.Field{
		{Label: "Session", Value: snap.SessionID},
		{Label: "Exercise", Value: exercise},
	}

	if snap.File != nil {
		fields = append(fields, ui.Field{
			Label: "File",
			Value: fmt.Sprintf("%s (%.2f MB)", snap.File.Name, snap.File.SizeMB()),
		})
	}

	if res := snap.Result; res != nil {
		if score, ok := res.Score(); ok {
			fields = append(fields, ui.Field{Label: "Score", Value: ui.Score(score)})
		}

		if res.FrameCount != 0 {
			fields = append(fields, ui.Field{
				Label: "Frames",
				Value: fmt.Sprintf("%d at %.0f fps", res.FrameCount, res.FPS),
			})
		}

		for _, warning := range res.Warnings {
			fields = append(fields, ui.Field{Label: "Warning", Value: ui.Yellow(warning)})
		}
	}

	fields = append(fields, ui.Field{Label: "Took", Value: timeutil.Human(snap.Elapsed)})

	if snap.Balance != nil {
		fields = append(fields, ui.Field{
			Label: "Tokens",
			Value: fmt.Sprintf("%d remaining", *snap.Balance),
		})
	}

	ui.PrintFields(fields, w)
}
