// Package monitor is the terminal view of a running session. It drives the
// session through upload and analysis and renders every snapshot the
// session publishes.
package monitor

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/davecgh/go-spew/spew"

	"github.com/ayoisaiah/repcheck/internal/session"
)

// Controller is the part of a session the monitor drives.
type Controller interface {
	Upload(ctx context.Context) error
	StartAnalysis(ctx context.Context) error
	RetryAnalysis(ctx context.Context) error
	Activate(ctx context.Context) error
	Snapshot() session.Snapshot
}

// SnapshotMsg carries a published snapshot into the program.
type SnapshotMsg session.Snapshot

type action int

const (
	actUpload action = iota
	actAnalyze
	actRetry
	actActivate
)

// doneMsg reports that a session call returned.
type doneMsg struct {
	err    error
	action action
}

// Options configures a Model.
type Options struct {
	Logger *slog.Logger
	// Exercises maps exercise ids to display names.
	Exercises map[string]string
	DarkTheme bool
}

// Model is the bubbletea model of the monitor.
type Model struct {
	ctx       context.Context
	ctl       Controller
	logger    *slog.Logger
	exercises map[string]string
	// err is the last local rejection returned by the session.
	err      error
	style    Style
	progress progress.Model
	help     help.Model
	snap     session.Snapshot
	width    int
	running  bool
	quitting bool
}

// New returns a monitor for ctl. Session calls made from the monitor use
// ctx.
func New(ctx context.Context, ctl Controller, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	p := progress.New(progress.WithDefaultGradient())
	p.Width = maxWidth - padding*2 - 4

	return &Model{
		ctx:       ctx,
		ctl:       ctl,
		logger:    opts.Logger,
		exercises: opts.Exercises,
		style:     NewStyle(opts.DarkTheme),
		progress:  p,
		help:      help.New(),
		width:     maxWidth,
	}
}

// Snapshot returns the last snapshot the monitor rendered.
func (m *Model) Snapshot() session.Snapshot {
	return m.snap
}

// Err returns the last local rejection, if any.
func (m *Model) Err() error {
	return m.err
}

// Init starts whichever request the session is ready for.
func (m *Model) Init() tea.Cmd {
	m.snap = m.ctl.Snapshot()

	switch m.snap.Phase {
	case session.FileSelected:
		return m.run(actUpload)
	case session.UploadComplete:
		return m.run(actAnalyze)
	}

	return nil
}

func (m *Model) run(a action) tea.Cmd {
	m.running = true
	m.err = nil

	call := map[action]func(context.Context) error{
		actUpload:   m.ctl.Upload,
		actAnalyze:  m.ctl.StartAnalysis,
		actRetry:    m.ctl.RetryAnalysis,
		actActivate: m.ctl.Activate,
	}[a]

	ctx := m.ctx

	return func() tea.Msg {
		return doneMsg{action: a, err: call(ctx)}
	}
}

// handleDone refreshes the snapshot after a session call and decides what
// runs next: a successful upload moves straight on to analysis and a
// finished analysis ends the program.
func (m *Model) handleDone(msg doneMsg) (tea.Model, tea.Cmd) {
	m.running = false
	m.err = msg.err

	if snap := m.ctl.Snapshot(); snap.Seq >= m.snap.Seq {
		m.snap = snap
	}

	if msg.err != nil {
		m.logger.Debug("session call rejected", slog.Any("error", msg.err))
		return m, nil
	}

	switch m.snap.Phase {
	case session.UploadComplete:
		if msg.action == actUpload {
			return m, m.run(actAnalyze)
		}
	case session.AnalysisComplete:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, defaultKeymap.quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, defaultKeymap.retry):
		if a, ok := m.retryAction(); ok {
			return m, m.run(a)
		}

	case key.Matches(msg, defaultKeymap.activate):
		if m.canActivate() {
			return m, m.run(actActivate)
		}
	}

	return m, nil
}

// retryAction returns the request the retry key repeats in the current
// phase.
func (m *Model) retryAction() (action, bool) {
	if m.running {
		return 0, false
	}

	switch m.snap.Phase {
	case session.UploadFailed:
		if m.snap.Outcome != nil && m.snap.Outcome.Recoverable {
			return actUpload, true
		}
	case session.UploadComplete, session.AnalysisFailed:
		return actRetry, true
	}

	return 0, false
}

func (m *Model) canActivate() bool {
	return !m.running &&
		m.snap.Phase == session.AnalysisFailed &&
		m.snap.Outcome != nil &&
		m.snap.Outcome.NeedsActivation()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		if msg.Seq >= m.snap.Seq {
			m.snap = session.Snapshot(msg)
		}

		return m, nil

	case doneMsg:
		return m.handleDone(msg)

	case tea.KeyMsg:
		m.logger.Debug(spew.Sdump(msg))

		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = min(msg.Width, maxWidth)
		m.progress.Width = min(msg.Width-padding*2-4, maxWidth)

		return m, nil
	}

	return m, nil
}
