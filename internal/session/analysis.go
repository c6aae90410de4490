package session

import (
	"context"
	"log/slog"

	"github.com/ayoisaiah/repcheck/internal/api"
	"github.com/ayoisaiah/repcheck/internal/failure"
	"github.com/ayoisaiah/repcheck/internal/progress"
)

// StartAnalysis asks the service to analyze the uploaded video. It needs a
// completed upload and a chosen exercise; both are checked locally before
// any request is made. Progress is simulated while the request runs.
func (s *Session) StartAnalysis(ctx context.Context) error {
	return s.analyze(ctx, "start the analysis", evAnalyze)
}

// RetryAnalysis runs the analysis again for the same upload after a
// failure, or after an activation has cleared one.
func (s *Session) RetryAnalysis(ctx context.Context) error {
	return s.analyze(ctx, "retry the analysis", evRetry)
}

func (s *Session) analyze(ctx context.Context, action string, ev event) error {
	s.mu.Lock()

	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}

	if _, err := s.checkLocked(action, ev); err != nil {
		s.mu.Unlock()
		return err
	}

	if s.exercise == "" {
		s.mu.Unlock()
		return ErrExerciseRequired
	}

	s.busy = true
	gen := s.gen
	s.mu.Unlock()

	if err := s.gate.Allow(ctx); err != nil {
		s.release()
		return err
	}

	s.mu.Lock()

	if gen != s.gen || s.closed {
		s.busy = false
		s.mu.Unlock()

		return ErrClosed
	}

	to, err := s.checkLocked(action, ev)
	if err != nil {
		s.busy = false
		s.mu.Unlock()

		return err
	}

	req := api.AnalyzeRequest{
		SessionID: s.sessionID,
		Exercise:  s.exercise,
	}

	if s.allowNotes {
		req.Notes = s.notes
	}

	signals := progress.Signals{
		SizeMB:   s.file.SizeMB(),
		Duration: s.metadata.Duration,
	}

	if s.upload != nil {
		signals.FrameCount = s.upload.FrameCount
	}

	plan := s.est.Plan(signals)
	stages := plan.Stages()

	s.phase = to
	s.outcome = nil
	s.activationErr = nil
	s.progress = 0
	s.stage = stages[0].Name
	s.estimated = plan.Total
	s.remaining = plan.Total
	s.reqSeq++
	seq := s.reqSeq

	reqCtx, cancel := context.WithCancel(ctx)
	s.cancelReq = cancel

	ticking := s.est.Start(plan, s.onTick(seq))
	s.ticking = ticking

	start := s.est.Clock.Now()

	s.logger.Info("analysis started",
		slog.String("session_id", req.SessionID),
		slog.String("exercise", req.Exercise),
		slog.Duration("estimate", plan.Total),
	)

	s.unlockAndPublish()

	res, err := s.backend.Analyze(reqCtx, req)

	cancel()
	// ticking must be fully stopped before the terminal state is applied, so
	// no late tick can overwrite it
	ticking.Stop()

	s.mu.Lock()

	s.busy = false
	s.cancelReq = nil
	s.ticking = nil

	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	s.stage = ""
	s.remaining = 0
	s.elapsed = s.est.Clock.Now().Sub(start)

	if err != nil {
		o := failure.Classify(err)

		if o.Kind == failure.KindCancelled {
			s.phase, _ = next(s.phase, evAborted)
			s.progress = 0
			s.unlockAndPublish()

			return nil
		}

		s.logger.Info("analysis failed",
			slog.String("session_id", req.SessionID),
			slog.String("kind", string(o.Kind)),
			slog.Int("status", o.Status),
			slog.Bool("needs_activation", o.NeedsActivation()),
		)

		s.phase, _ = next(s.phase, evAnalysisFailed)
		s.outcome = &o
		s.progress = 0
		s.unlockAndPublish()

		return nil
	}

	s.phase, _ = next(s.phase, evAnalyzed)
	s.result = res
	s.progress = 100

	authenticated := s.gate.Authenticated()
	if authenticated && res.RemainingTokens != nil {
		n := *res.RemainingTokens
		s.balance = &n
	}

	s.unlockAndPublish()

	s.logger.Info("analysis complete",
		slog.String("session_id", req.SessionID),
		slog.Duration("elapsed", s.Snapshot().Elapsed),
	)

	if !authenticated {
		if err := s.gate.MarkExhausted(); err != nil {
			s.logger.Warn("recording anonymous usage failed", slog.Any("error", err))
		}

		return nil
	}

	if res.RemainingTokens != nil {
		s.publishBalance(*res.RemainingTokens)
	}

	return nil
}

// onTick applies simulated progress for analysis request seq.
func (s *Session) onTick(seq uint64) func(progress.Update) {
	return func(u progress.Update) {
		s.mu.Lock()

		if seq != s.reqSeq || s.phase != Analyzing || s.closed {
			s.mu.Unlock()
			return
		}

		s.progress = max(s.progress, u.Progress)
		s.stage = u.Stage
		s.remaining = u.Remaining
		s.unlockAndPublish()
	}
}

// Activate runs token activation when the last analysis failure offers it.
// Success clears the failure and returns the session to UploadComplete so
// the analysis can be retried without a new upload. Failure is recorded in
// the snapshot's ActivationError and leaves the phase alone. When no
// activation is pending the call does nothing. Repeated attempts for the
// same failure reuse one idempotency key.
func (s *Session) Activate(ctx context.Context) error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}

	if s.phase != AnalysisFailed || s.outcome == nil || !s.outcome.NeedsActivation() {
		s.mu.Unlock()
		return nil
	}

	if s.activationKey == "" {
		s.activationKey = s.newKey()
	}

	key := s.activationKey
	gen := s.gen
	s.busy = true
	s.mu.Unlock()

	act, err := s.backend.ActivateTokens(ctx, key)

	s.mu.Lock()

	s.busy = false

	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return ErrClosed
	}

	if err != nil {
		o := failure.Classify(err)

		if o.Kind == failure.KindCancelled {
			s.mu.Unlock()
			return nil
		}

		s.logger.Info("token activation failed",
			slog.String("kind", string(o.Kind)),
			slog.String("message", o.Message),
		)

		s.activationErr = &o
		s.unlockAndPublish()

		return nil
	}

	to, ok := next(s.phase, evActivated)
	if !ok {
		s.mu.Unlock()
		return nil
	}

	s.phase = to
	s.outcome = nil
	s.activationErr = nil
	s.activationKey = ""

	if act.RemainingTokens != nil {
		n := *act.RemainingTokens
		s.balance = &n
	}

	s.unlockAndPublish()

	if act.RemainingTokens != nil {
		s.publishBalance(*act.RemainingTokens)
	}

	return nil
}

func (s *Session) publishBalance(n int) {
	if s.onBalance != nil {
		s.onBalance(n)
	}
}
