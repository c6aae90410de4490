// Package session drives one video from selection through upload and
// analysis. All state lives in a Session and changes only through its
// methods; everything else observes it through snapshots.
//
// Methods return errors only for local rejections: validation, the
// anonymous gate, illegal transitions and a missing exercise. Failures
// reported by the service or the network end up in the snapshot as a
// classified outcome.
package session

import (
	"context"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"

	"github.com/ayoisaiah/repcheck/internal/api"
	"github.com/ayoisaiah/repcheck/internal/failure"
	"github.com/ayoisaiah/repcheck/internal/progress"
	"github.com/ayoisaiah/repcheck/internal/video"
)

const uploadStage = "uploading"

// Backend is the analysis service.
type Backend interface {
	Upload(ctx context.Context, f *video.File, onProgress api.ProgressFunc) (*api.UploadResult, error)
	Analyze(ctx context.Context, r api.AnalyzeRequest) (*api.AnalyzeResult, error)
	Cleanup(ctx context.Context, sessionID string) error
	ActivateTokens(ctx context.Context, idempotencyKey string) (*api.Activation, error)
}

// Prober reads video metadata. It must not fail.
type Prober interface {
	Probe(ctx context.Context, path string) video.Metadata
}

// Gate is the anonymous usage gate.
type Gate interface {
	Allow(ctx context.Context) error
	MarkExhausted() error
	Authenticated() bool
}

// Options configures a Session.
type Options struct {
	Estimator *progress.Estimator
	Logger    *slog.Logger
	// Exercises maps exercise ids to display names. When empty any
	// non-blank id is accepted.
	Exercises map[string]string
	// OnBalance receives a remaining-token figure reported by the service.
	OnBalance  func(remaining int)
	Limits     video.Limits
	AllowNotes bool
}

// Session is one video's journey from selection to a finished analysis.
type Session struct {
	backend Backend
	prober  Prober
	gate    Gate
	est     *progress.Estimator
	logger  *slog.Logger

	onBalance func(int)
	newKey    func() string

	exercises  map[string]string
	limits     video.Limits
	allowNotes bool

	root       context.Context
	cancelRoot context.CancelFunc
	cancelReq  context.CancelFunc
	ticking    *progress.Ticking
	probeDone  chan struct{}
	probeErr   error

	file          *video.File
	upload        *api.UploadResult
	result        *api.AnalyzeResult
	outcome       *failure.Outcome
	activationErr *failure.Outcome
	balance       *int
	activationKey string
	sessionID     string
	exercise      string
	notes         string
	stage         string
	rejection     string
	warning       string
	metadata      video.Metadata
	phase         Phase
	progress      float64
	estimated     time.Duration
	remaining     time.Duration
	elapsed       time.Duration
	gen           uint64
	reqSeq        uint64
	seq           uint64
	busy          bool
	closed        bool

	listeners    map[int]Listener
	delivered    uint64
	nextListener int

	wg     sync.WaitGroup
	mu     sync.Mutex
	emitMu sync.Mutex
}

// New returns an idle session.
func New(backend Backend, prober Prober, gate Gate, opts Options) *Session {
	if opts.Estimator == nil {
		opts.Estimator = progress.New(progress.DefaultModel(), nil, 0)
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Limits == (video.Limits{}) {
		opts.Limits = video.DefaultLimits()
	}

	root, cancel := context.WithCancel(context.Background())

	return &Session{
		backend:    backend,
		prober:     prober,
		gate:       gate,
		est:        opts.Estimator,
		logger:     opts.Logger,
		onBalance:  opts.OnBalance,
		newKey:     uuid.NewString,
		exercises:  opts.Exercises,
		limits:     opts.Limits,
		allowNotes: opts.AllowNotes,
		root:       root,
		cancelRoot: cancel,
		listeners:  make(map[int]Listener),
	}
}

// checkLocked reports why action cannot run now, or the phase it leads to.
func (s *Session) checkLocked(action string, ev event) (Phase, error) {
	if s.closed {
		return 0, ErrClosed
	}

	to, ok := next(s.phase, ev)
	if !ok {
		return 0, ErrIllegalTransition.Fmt(action, s.phase)
	}

	return to, nil
}

// Select validates f and makes it the session's file. A rejected file
// leaves the session as it was and is reported inline through the returned
// error and the snapshot's Rejection. An accepted file is probed in the
// background; a video longer than the limit sends the session back to Idle.
// Selecting a new file discards the server-side upload of the previous one.
func (s *Session) Select(f *video.File) error {
	s.mu.Lock()

	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}

	to, err := s.checkLocked("select a file", evSelect)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	verdict := video.Validate(f, s.limits)
	if !verdict.Valid {
		s.rejection = verdict.Reason
		s.unlockAndPublish()

		return verdict.Err()
	}

	var orphan string
	if s.sessionID != "" && s.phase != AnalysisComplete {
		orphan = s.sessionID
	}

	file := *f

	s.gen++
	s.phase = to
	s.file = &file
	s.sessionID = ""
	s.exercise = ""
	s.notes = ""
	s.upload = nil
	s.result = nil
	s.outcome = nil
	s.activationErr = nil
	s.activationKey = ""
	s.metadata = video.Metadata{}
	s.probeErr = nil
	s.rejection = ""
	s.warning = verdict.Warning
	s.progress = 0
	s.stage = ""
	s.estimated, s.remaining, s.elapsed = 0, 0, 0

	s.startProbeLocked(s.gen, file.Path)

	s.unlockAndPublish()

	if orphan != "" {
		s.bestEffortCleanup(orphan)
	}

	return nil
}

func (s *Session) startProbeLocked(gen uint64, path string) {
	if s.prober == nil {
		s.probeDone = nil
		return
	}

	done := make(chan struct{})
	s.probeDone = done

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer close(done)

		md := s.prober.Probe(s.root, path)

		s.mu.Lock()

		if gen != s.gen || s.closed {
			s.mu.Unlock()
			return
		}

		s.metadata = md

		if err := video.CheckDuration(md, s.limits.MaxDuration); err != nil {
			if to, ok := next(s.phase, evProbeReject); ok {
				s.phase = to
				s.file = nil
				s.warning = ""
				s.probeErr = err
				s.rejection = err.Error()
			}
		}

		s.unlockAndPublish()
	}()
}

// SelectExercise sets the exercise the video shows. It is accepted while a
// file is selected or uploaded, and after a failed analysis so the retry
// can use a different exercise.
func (s *Session) SelectExercise(id string) error {
	id = strings.TrimSpace(id)

	s.mu.Lock()

	if _, err := s.checkLocked("choose an exercise", evSelectExercise); err != nil {
		s.mu.Unlock()
		return err
	}

	if id == "" {
		s.mu.Unlock()
		return ErrExerciseRequired
	}

	if len(s.exercises) > 0 {
		if _, ok := s.exercises[id]; !ok {
			s.mu.Unlock()
			return ErrUnknownExercise.Fmt(id, strings.Join(ExerciseIDs(s.exercises), ", "))
		}
	}

	s.exercise = id
	s.unlockAndPublish()

	return nil
}

// SetNotes records free-text notes for the analysis. They are sent only
// when the session allows notes.
func (s *Session) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = strings.TrimSpace(notes)
}

// ExerciseIDs returns the ids of exercises in natural order.
func ExerciseIDs(exercises map[string]string) []string {
	ids := slices.Collect(maps.Keys(exercises))
	slices.SortFunc(ids, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		default:
			return 0
		}
	})

	return ids
}

// Upload sends the selected file. It waits for the background probe first,
// so a video that is too long is rejected before any byte is sent. From
// UploadFailed the same file may be sent again only when the failure was
// recoverable.
func (s *Session) Upload(ctx context.Context) error {
	s.mu.Lock()

	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}

	if _, err := s.checkLocked("upload", evUpload); err != nil {
		s.mu.Unlock()
		return err
	}

	if s.phase == UploadFailed && s.outcome != nil && !s.outcome.Recoverable {
		msg := s.outcome.Message
		s.mu.Unlock()

		return ErrNewFileRequired.Fmt(msg)
	}

	s.busy = true
	done := s.probeDone
	gen := s.gen
	s.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			s.release()
			return ctx.Err()
		}
	}

	if err := s.probeRejection(gen); err != nil {
		s.release()
		return err
	}

	if err := s.gate.Allow(ctx); err != nil {
		s.release()
		return err
	}

	s.mu.Lock()

	to, err := s.checkLocked("upload", evUpload)
	if err != nil {
		s.busy = false
		s.mu.Unlock()

		return err
	}

	f := s.file
	s.phase = to
	s.outcome = nil
	s.progress = 0
	s.stage = uploadStage
	s.reqSeq++
	seq := s.reqSeq

	reqCtx, cancel := context.WithCancel(ctx)
	s.cancelReq = cancel

	s.unlockAndPublish()

	res, err := s.backend.Upload(reqCtx, f, s.uploadProgress(seq))

	cancel()

	s.mu.Lock()

	s.busy = false
	s.cancelReq = nil

	if s.closed {
		s.mu.Unlock()

		if err == nil {
			s.bestEffortCleanup(res.SessionID)
		}

		return ErrClosed
	}

	if err != nil {
		o := failure.Classify(err)

		if o.Kind == failure.KindCancelled {
			s.phase, _ = next(s.phase, evAborted)
			s.progress = 0
			s.stage = ""
			s.unlockAndPublish()

			return nil
		}

		s.logger.Info("upload failed",
			slog.String("kind", string(o.Kind)),
			slog.Int("status", o.Status),
			slog.String("message", o.Message),
		)

		s.phase, _ = next(s.phase, evUploadFailed)
		s.outcome = &o
		s.progress = 0
		s.stage = ""
		s.unlockAndPublish()

		return nil
	}

	s.logger.Info("upload complete",
		slog.String("session_id", res.SessionID),
		slog.Int("frame_count", res.FrameCount),
	)

	s.phase, _ = next(s.phase, evUploaded)
	s.sessionID = res.SessionID
	s.upload = res
	s.progress = 100
	s.stage = ""
	s.unlockAndPublish()

	return nil
}

// uploadProgress returns the byte-progress callback for request seq. It
// publishes only when the whole percentage changes.
func (s *Session) uploadProgress(seq uint64) api.ProgressFunc {
	return func(sent, total int64) {
		pct := 100.0
		if total > 0 {
			pct = math.Floor(100 * float64(sent) / float64(total))
		}

		s.mu.Lock()

		if seq != s.reqSeq || s.phase != Uploading || s.closed || pct <= s.progress {
			s.mu.Unlock()
			return
		}

		s.progress = min(pct, 100)
		s.unlockAndPublish()
	}
}

// probeRejection returns the reason the probe for selection gen sent the
// session back to Idle, if it did.
func (s *Session) probeRejection(gen uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if gen != s.gen || s.phase != Idle {
		return nil
	}

	if s.probeErr != nil {
		return s.probeErr
	}

	return ErrIllegalTransition.Fmt("upload", Idle)
}

// release clears the busy flag after a request that never started.
func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false
}
