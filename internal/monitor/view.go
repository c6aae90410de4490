package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/muesli/reflow/wordwrap"

	"github.com/ayoisaiah/repcheck/internal/failure"
	"github.com/ayoisaiah/repcheck/internal/session"
	"github.com/ayoisaiah/repcheck/internal/timeutil"
)

var phaseTitles = map[session.Phase]string{
	session.Idle:             "Waiting for a video",
	session.FileSelected:     "Ready to upload",
	session.Uploading:        "Uploading",
	session.UploadFailed:     "Upload failed",
	session.UploadComplete:   "Upload complete",
	session.Analyzing:        "Analyzing",
	session.AnalysisFailed:   "Analysis failed",
	session.AnalysisComplete: "Analysis complete",
}

func (m *Model) wrap(s string) string {
	return wordwrap.String(s, max(m.width-padding*2, 20))
}

func (m *Model) headerView() string {
	var s strings.Builder

	if f := m.snap.File; f != nil {
		s.WriteString(m.style.Main.Render(f.Name))
		s.WriteString(m.style.Hint.Render(fmt.Sprintf(" (%.1f MB)", f.SizeMB())))
	}

	if ex := m.snap.Exercise; ex != "" {
		name := ex
		if n, ok := m.exercises[ex]; ok {
			name = n
		}

		s.WriteString("\n" + m.style.Secondary.Render(name))
	}

	return s.String()
}

func (m *Model) progressView() string {
	var s strings.Builder

	s.WriteString(m.progress.ViewAs(m.snap.Progress / 100))

	switch m.snap.Phase {
	case session.Uploading:
		s.WriteString("\n" + m.style.Hint.Render(fmt.Sprintf("%.0f%% sent", m.snap.Progress)))
	case session.Analyzing:
		hint := m.snap.Stage
		if m.snap.Remaining > 0 {
			hint += fmt.Sprintf(", about %s left", timeutil.Human(m.snap.Remaining))
		}

		s.WriteString("\n" + m.style.Hint.Render(hint))
	}

	return s.String()
}

func (m *Model) outcomeView(o *failure.Outcome) string {
	var s strings.Builder

	s.WriteString(m.style.Error.Render(m.wrap(o.Message)))

	d := o.Details

	if d.RetryAfter != nil {
		s.WriteString("\n" + m.style.Hint.Render(fmt.Sprintf("Try again in %d seconds", *d.RetryAfter)))
	}

	if d.AngleEstimate != nil {
		s.WriteString("\n" + m.style.Hint.Render(fmt.Sprintf("Estimated camera angle: %.0f°", *d.AngleEstimate)))
	}

	if d.ValidFramePercentage != nil {
		s.WriteString("\n" + m.style.Hint.Render(fmt.Sprintf("Frames with a detected pose: %.0f%%", *d.ValidFramePercentage)))
	}

	if d.DetectedCodec != "" {
		s.WriteString("\n" + m.style.Hint.Render("Detected codec: "+d.DetectedCodec))
	}

	for _, w := range d.Warnings {
		s.WriteString("\n" + m.style.Warning.Render(m.wrap(w)))
	}

	if m.snap.Phase == session.UploadFailed && !o.Recoverable {
		s.WriteString("\n\n" + m.style.Hint.Render("Choose a different video to continue."))
	}

	return s.String()
}

func (m *Model) resultView() string {
	var s strings.Builder

	s.WriteString(m.style.Success.Render("Your form has been analyzed"))

	if r := m.snap.Result; r != nil {
		if score, ok := r.Score(); ok {
			s.WriteString("\n" + m.style.Main.Render(fmt.Sprintf("Overall score: %.0f", score)))
		}
	}

	if m.snap.Elapsed > 0 {
		s.WriteString("\n" + m.style.Hint.Render("Took "+timeutil.Human(m.snap.Elapsed)))
	}

	return s.String()
}

func (m *Model) helpView() string {
	bindings := make([]key.Binding, 0, 3)

	if _, ok := m.retryAction(); ok {
		bindings = append(bindings, defaultKeymap.retry)
	}

	if m.canActivate() {
		bindings = append(bindings, defaultKeymap.activate)
	}

	bindings = append(bindings, defaultKeymap.quit)

	return m.help.ShortHelpView(bindings)
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	if header := m.headerView(); header != "" {
		s.WriteString(header + "\n\n")
	}

	s.WriteString(m.style.Main.Render(phaseTitles[m.snap.Phase]))
	s.WriteString("\n\n")

	switch m.snap.Phase {
	case session.Uploading, session.Analyzing:
		s.WriteString(m.progressView())
	case session.UploadFailed, session.AnalysisFailed:
		if m.snap.Outcome != nil {
			s.WriteString(m.outcomeView(m.snap.Outcome))
		}
	case session.AnalysisComplete:
		s.WriteString(m.resultView())
	case session.UploadComplete:
		if m.snap.Balance != nil {
			s.WriteString(m.style.Success.Render(fmt.Sprintf("%d tokens available", *m.snap.Balance)))
		}
	}

	if o := m.snap.ActivationError; o != nil {
		s.WriteString("\n\n" + m.style.Error.Render(m.wrap("Token activation failed: "+o.Message)))
	}

	if w := m.snap.Warning; w != "" {
		s.WriteString("\n\n" + m.style.Warning.Render(m.wrap(w)))
	}

	if r := m.snap.Rejection; r != "" {
		s.WriteString("\n\n" + m.style.Error.Render(m.wrap(r)))
	}

	if m.err != nil {
		s.WriteString("\n\n" + m.style.Error.Render(m.wrap(m.err.Error())))
	}

	s.WriteString("\n\n" + m.helpView())

	return m.style.Base.Render(s.String())
}
