package session_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/repcheck/internal/api"
	"github.com/ayoisaiah/repcheck/internal/failure"
	"github.com/ayoisaiah/repcheck/internal/gate"
	"github.com/ayoisaiah/repcheck/internal/progress"
	"github.com/ayoisaiah/repcheck/internal/session"
	"github.com/ayoisaiah/repcheck/internal/video"
)

type fakeBackend struct {
	uploadRes   *api.UploadResult
	uploadErr   error
	analyzeRes  *api.AnalyzeResult
	analyzeErr  error
	activateRes *api.Activation
	activateErr error

	// analyzeGate, when set, holds Analyze until it is closed or the
	// request is cancelled.
	analyzeGate    chan struct{}
	analyzeStarted chan struct{}
	uploadProgress [][2]int64

	requests    []api.AnalyzeRequest
	keys        []string
	cleanups    []string
	uploads     int
	activations int
	mu          sync.Mutex
}

func (b *fakeBackend) Upload(
	_ context.Context,
	f *video.File,
	onProgress api.ProgressFunc,
) (*api.UploadResult, error) {
	b.mu.Lock()
	b.uploads++
	steps := b.uploadProgress
	res, err := b.uploadRes, b.uploadErr
	b.mu.Unlock()

	for _, s := range steps {
		onProgress(s[0], s[1])
	}

	if err != nil {
		return nil, err
	}

	if res == nil {
		res = &api.UploadResult{SessionID: "s1"}
	}

	return res, nil
}

func (b *fakeBackend) Analyze(ctx context.Context, r api.AnalyzeRequest) (*api.AnalyzeResult, error) {
	b.mu.Lock()
	b.requests = append(b.requests, r)
	hold, started := b.analyzeGate, b.analyzeStarted
	res, err := b.analyzeRes, b.analyzeErr
	b.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	if res == nil {
		res = &api.AnalyzeResult{Status: "success"}
	}

	return res, nil
}

func (b *fakeBackend) Cleanup(_ context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cleanups = append(b.cleanups, sessionID)

	return nil
}

func (b *fakeBackend) ActivateTokens(_ context.Context, key string) (*api.Activation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.activations++
	b.keys = append(b.keys, key)

	if b.activateErr != nil {
		return nil, b.activateErr
	}

	if b.activateRes == nil {
		return &api.Activation{}, nil
	}

	return b.activateRes, nil
}

func (b *fakeBackend) cleaned() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.cleanups...)
}

func (b *fakeBackend) analyzeCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.requests)
}

type fixedProber struct {
	md video.Metadata
}

func (p fixedProber) Probe(context.Context, string) video.Metadata {
	return p.md
}

type memStore struct {
	exhausted bool
	mu        sync.Mutex
}

func (m *memStore) AnonymousExhausted() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.exhausted, nil
}

func (m *memStore) SetAnonymousExhausted(v bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exhausted = v

	return nil
}

func (m *memStore) get() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.exhausted
}

type openChecker struct{}

func (openChecker) AnonymousLimitReached(context.Context) (bool, error) {
	return false, nil
}

type fixture struct {
	backend *fakeBackend
	store   *memStore
	clock   *progress.ManualClock
	sess    *session.Session

	balances []int
	mu       sync.Mutex
}

func (f *fixture) published() []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int(nil), f.balances...)
}

type fixtureOpts struct {
	metadata      video.Metadata
	authenticated bool
	exhausted     bool
}

func newFixture(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()

	f := &fixture{
		backend: &fakeBackend{},
		store:   &memStore{exhausted: opts.exhausted},
		clock:   progress.NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	}

	g := gate.New(f.store, openChecker{}, opts.authenticated, nil)

	f.sess = session.New(f.backend, fixedProber{md: opts.metadata}, g, session.Options{
		Estimator:  progress.New(progress.DefaultModel(), f.clock, 100*time.Millisecond),
		Exercises:  map[string]string{"1": "Squat", "2": "Push-up", "10": "Lunge"},
		AllowNotes: true,
		OnBalance: func(n int) {
			f.mu.Lock()
			defer f.mu.Unlock()

			f.balances = append(f.balances, n)
		},
	})

	t.Cleanup(func() {
		f.sess.Teardown()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_ = f.sess.Wait(ctx)
	})

	return f
}

func mp4(sizeMB float64) *video.File {
	return &video.File{
		Path:     "/videos/squat.mp4",
		Name:     "squat.mp4",
		MIMEType: "video/mp4",
		Size:     int64(sizeMB * video.MiB),
	}
}

// uploaded brings a fixture to UploadComplete with exercise "1".
func uploaded(t *testing.T, f *fixture) {
	t.Helper()

	ctx := context.Background()

	require.NoError(t, f.sess.Select(mp4(10)))
	require.NoError(t, f.sess.Upload(ctx))
	require.Equal(t, session.UploadComplete, f.sess.Snapshot().Phase)
	require.NoError(t, f.sess.SelectExercise("1"))
}

func TestScenarioAnonymousAnalysis(t *testing.T) {
	f := newFixture(t, fixtureOpts{metadata: video.Metadata{Duration: 8 * time.Second, FPS: 30}})
	f.backend.uploadRes = &api.UploadResult{SessionID: "s1"}
	f.backend.analyzeRes = &api.AnalyzeResult{Status: "success", FrameCount: 240, FPS: 30}

	ctx := context.Background()

	require.NoError(t, f.sess.Select(mp4(10)))
	assert.Equal(t, session.FileSelected, f.sess.Snapshot().Phase)

	require.NoError(t, f.sess.Upload(ctx))

	snap := f.sess.Snapshot()
	assert.Equal(t, session.UploadComplete, snap.Phase)
	assert.Equal(t, "s1", snap.SessionID)
	assert.Equal(t, 8*time.Second, snap.Metadata.Duration)

	require.NoError(t, f.sess.SelectExercise("1"))
	require.NoError(t, f.sess.StartAnalysis(ctx))

	snap = f.sess.Snapshot()
	assert.Equal(t, session.AnalysisComplete, snap.Phase)
	assert.InDelta(t, 100.0, snap.Progress, 0.001)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 240, snap.Result.FrameCount)
	assert.True(t, f.store.get())

	assert.ErrorIs(t, f.sess.Upload(ctx), session.ErrIllegalTransition)
}

func TestScenarioOversizeFile(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	err := f.sess.Select(mp4(600))
	require.ErrorIs(t, err, video.ErrTooLarge)

	snap := f.sess.Snapshot()
	assert.Equal(t, session.Idle, snap.Phase)
	assert.Contains(t, snap.Rejection, "600.00 MB")
	assert.Contains(t, snap.Rejection, "500 MB")
	assert.Nil(t, snap.File)
}

func TestScenarioTokenActivation(t *testing.T) {
	f := newFixture(t, fixtureOpts{authenticated: true})
	f.backend.analyzeErr = &api.ResponseError{
		Status: http.StatusPaymentRequired,
		Header: http.Header{},
		Body:   []byte(`{"detail":{"error":"insufficient_tokens","message":"Not enough tokens","needs_activation":true}}`),
	}

	remaining := 5
	f.backend.activateRes = &api.Activation{RemainingTokens: &remaining}

	ctx := context.Background()

	uploaded(t, f)
	require.NoError(t, f.sess.StartAnalysis(ctx))

	snap := f.sess.Snapshot()
	require.Equal(t, session.AnalysisFailed, snap.Phase)
	require.NotNil(t, snap.Outcome)
	assert.Equal(t, "Not enough tokens", snap.Outcome.Message)
	assert.True(t, snap.Outcome.NeedsActivation())
	assert.Equal(t, "s1", snap.SessionID)

	require.NoError(t, f.sess.Activate(ctx))

	snap = f.sess.Snapshot()
	assert.Equal(t, session.UploadComplete, snap.Phase)
	assert.Nil(t, snap.Outcome)
	assert.Equal(t, []int{5}, f.published())

	// nothing left to activate
	require.NoError(t, f.sess.Activate(ctx))
	assert.Equal(t, 1, f.backend.activations)

	f.backend.mu.Lock()
	f.backend.analyzeErr = nil
	f.backend.mu.Unlock()

	require.NoError(t, f.sess.RetryAnalysis(ctx))

	snap = f.sess.Snapshot()
	assert.Equal(t, session.AnalysisComplete, snap.Phase)
	assert.Equal(t, "s1", f.backend.requests[1].SessionID)
	assert.Equal(t, 1, f.backend.uploads)
	assert.False(t, f.store.get())
}

func TestScenarioUnparseableRateLimit(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.backend.analyzeErr = &api.ResponseError{
		Status: http.StatusTooManyRequests,
		Header: http.Header{},
		Body:   []byte("<html>Too Many Requests</html>"),
	}

	uploaded(t, f)
	require.NoError(t, f.sess.StartAnalysis(context.Background()))

	snap := f.sess.Snapshot()
	require.Equal(t, session.AnalysisFailed, snap.Phase)
	require.NotNil(t, snap.Outcome)
	assert.Equal(t, failure.FromResponse(http.StatusTooManyRequests, nil).Message, snap.Outcome.Message)
	assert.False(t, snap.Outcome.NeedsActivation())
	assert.False(t, f.store.get())
}

func TestActivationFailureKeepsPhase(t *testing.T) {
	f := newFixture(t, fixtureOpts{authenticated: true})
	f.backend.analyzeErr = &api.ResponseError{
		Status: http.StatusPaymentRequired,
		Header: http.Header{},
		Body:   []byte(`{"detail":{"error":"insufficient_tokens","message":"Not enough tokens","needs_activation":true}}`),
	}
	f.backend.activateErr = &api.ResponseError{
		Status: http.StatusBadRequest,
		Header: http.Header{},
		Body:   []byte(`{"detail":"No pending tokens to activate"}`),
	}

	ctx := context.Background()

	uploaded(t, f)
	require.NoError(t, f.sess.StartAnalysis(ctx))
	require.NoError(t, f.sess.Activate(ctx))

	snap := f.sess.Snapshot()
	assert.Equal(t, session.AnalysisFailed, snap.Phase)
	require.NotNil(t, snap.ActivationError)
	assert.Equal(t, "No pending tokens to activate", snap.ActivationError.Message)
	assert.Equal(t, "Not enough tokens", snap.Outcome.Message)

	require.NoError(t, f.sess.Activate(ctx))

	require.Len(t, f.backend.keys, 2)
	assert.NotEmpty(t, f.backend.keys[0])
	assert.Equal(t, f.backend.keys[0], f.backend.keys[1])
}

func TestStartAnalysisGuards(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ctx := context.Background()

	err := f.sess.StartAnalysis(ctx)
	assert.ErrorIs(t, err, session.ErrIllegalTransition)
	assert.Equal(t, session.Idle, f.sess.Snapshot().Phase)

	require.NoError(t, f.sess.Select(mp4(10)))
	require.NoError(t, f.sess.Upload(ctx))

	err = f.sess.StartAnalysis(ctx)
	assert.ErrorIs(t, err, session.ErrExerciseRequired)
	assert.Equal(t, session.UploadComplete, f.sess.Snapshot().Phase)
	assert.Zero(t, f.backend.analyzeCalls())
}

func TestSelectExercise(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	assert.ErrorIs(t, f.sess.SelectExercise("1"), session.ErrIllegalTransition)

	require.NoError(t, f.sess.Select(mp4(1)))

	err := f.sess.SelectExercise("99")
	require.ErrorIs(t, err, session.ErrUnknownExercise)
	assert.Contains(t, err.Error(), "1, 2, 10")

	assert.ErrorIs(t, f.sess.SelectExercise("  "), session.ErrExerciseRequired)

	require.NoError(t, f.sess.SelectExercise(" 2 "))
	assert.Equal(t, "2", f.sess.Snapshot().Exercise)
}

func TestNotesAreSent(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	uploaded(t, f)
	f.sess.SetNotes("  knees cave in  ")

	require.NoError(t, f.sess.StartAnalysis(context.Background()))
	assert.Equal(t, "knees cave in", f.backend.requests[0].Notes)
}

func TestProbeRejectsLongVideo(t *testing.T) {
	f := newFixture(t, fixtureOpts{metadata: video.Metadata{Duration: 150 * time.Second}})

	require.NoError(t, f.sess.Select(mp4(10)))

	err := f.sess.Upload(context.Background())
	require.ErrorIs(t, err, video.ErrTooLong)

	snap := f.sess.Snapshot()
	assert.Equal(t, session.Idle, snap.Phase)
	assert.Contains(t, snap.Rejection, "150.0 seconds")
	assert.Zero(t, f.backend.uploads)
}

func TestAnonymousAllowanceExhausted(t *testing.T) {
	f := newFixture(t, fixtureOpts{exhausted: true})

	require.NoError(t, f.sess.Select(mp4(10)))

	err := f.sess.Upload(context.Background())
	assert.ErrorIs(t, err, gate.ErrAllowanceExhausted)
	assert.Equal(t, session.FileSelected, f.sess.Snapshot().Phase)
	assert.Zero(t, f.backend.uploads)
}

func TestUploadFailureRetry(t *testing.T) {
	testCases := []struct {
		Name        string
		Err         error
		CanRetry    bool
		Recoverable bool
	}{
		{
			Name:        "network failure",
			Err:         errors.New("connection reset by peer"),
			CanRetry:    true,
			Recoverable: true,
		},
		{
			Name: "unsupported format",
			Err: &api.ResponseError{
				Status: http.StatusUnsupportedMediaType,
				Header: http.Header{},
				Body:   []byte(`{"detail":{"error":"unsupported_video_format","message":"HEVC is not supported"}}`),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			f := newFixture(t, fixtureOpts{})
			f.backend.uploadErr = tc.Err

			ctx := context.Background()

			require.NoError(t, f.sess.Select(mp4(10)))
			require.NoError(t, f.sess.Upload(ctx))

			snap := f.sess.Snapshot()
			require.Equal(t, session.UploadFailed, snap.Phase)
			require.NotNil(t, snap.Outcome)
			assert.Equal(t, tc.Recoverable, snap.Outcome.Recoverable)
			assert.Empty(t, snap.SessionID)

			f.backend.mu.Lock()
			f.backend.uploadErr = nil
			f.backend.mu.Unlock()

			err := f.sess.Upload(ctx)
			if !tc.CanRetry {
				require.ErrorIs(t, err, session.ErrNewFileRequired)
				assert.Equal(t, 1, f.backend.uploads)

				require.NoError(t, f.sess.Select(mp4(5)))
				require.NoError(t, f.sess.Upload(ctx))
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, session.UploadComplete, f.sess.Snapshot().Phase)
		})
	}
}

func TestUploadProgressIsExact(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.backend.uploadProgress = [][2]int64{{25, 100}, {25, 100}, {50, 100}, {100, 100}}

	var (
		mu     sync.Mutex
		values []float64
	)

	unsubscribe := f.sess.Subscribe(func(s session.Snapshot) {
		if s.Phase != session.Uploading {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		values = append(values, s.Progress)
	})
	defer unsubscribe()

	require.NoError(t, f.sess.Select(mp4(10)))
	require.NoError(t, f.sess.Upload(context.Background()))

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []float64{0, 25, 50, 100}, values)
}

func TestSelectNewFileAfterFailedAnalysis(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.backend.analyzeErr = errors.New("connection refused")

	ctx := context.Background()

	uploaded(t, f)
	require.NoError(t, f.sess.StartAnalysis(ctx))
	require.Equal(t, session.AnalysisFailed, f.sess.Snapshot().Phase)

	f.sess.SetNotes("bar path drifts")
	require.NoError(t, f.sess.Select(mp4(3)))

	snap := f.sess.Snapshot()
	assert.Equal(t, session.FileSelected, snap.Phase)
	assert.Empty(t, snap.SessionID)
	assert.Empty(t, snap.Exercise)
	assert.Nil(t, snap.Outcome)

	require.NoError(t, f.sess.Upload(ctx))

	err := f.sess.StartAnalysis(ctx)
	require.ErrorIs(t, err, session.ErrExerciseRequired)

	require.NoError(t, f.sess.SelectExercise("2"))

	f.backend.mu.Lock()
	f.backend.analyzeErr = nil
	f.backend.mu.Unlock()

	require.NoError(t, f.sess.StartAnalysis(ctx))
	require.Len(t, f.backend.requests, 2)
	assert.Equal(t, "2", f.backend.requests[1].Exercise)
	assert.Empty(t, f.backend.requests[1].Notes)

	require.NoError(t, f.sess.Wait(ctx))
	assert.Equal(t, []string{"s1"}, f.backend.cleaned())
}

func TestCancelledAnalysisIsNotSurfaced(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.backend.analyzeErr = context.Canceled

	uploaded(t, f)
	require.NoError(t, f.sess.StartAnalysis(context.Background()))

	snap := f.sess.Snapshot()
	assert.Equal(t, session.UploadComplete, snap.Phase)
	assert.Nil(t, snap.Outcome)
	assert.Equal(t, "s1", snap.SessionID)
}

func TestBalancePublishedForAuthenticatedCaller(t *testing.T) {
	f := newFixture(t, fixtureOpts{authenticated: true})

	remaining := 3
	f.backend.analyzeRes = &api.AnalyzeResult{Status: "success", RemainingTokens: &remaining}

	uploaded(t, f)
	require.NoError(t, f.sess.StartAnalysis(context.Background()))

	snap := f.sess.Snapshot()
	require.NotNil(t, snap.Balance)
	assert.Equal(t, 3, *snap.Balance)
	assert.Equal(t, []int{3}, f.published())
	assert.False(t, f.store.get())
}

// startBlockedAnalysis begins an analysis that does not finish until the
// returned channel is closed. The second channel receives StartAnalysis'
// result.
func startBlockedAnalysis(t *testing.T, f *fixture) (chan struct{}, chan error) {
	t.Helper()

	release := make(chan struct{})
	started := make(chan struct{}, 1)

	f.backend.mu.Lock()
	f.backend.analyzeGate = release
	f.backend.analyzeStarted = started
	f.backend.mu.Unlock()

	done := make(chan error, 1)

	go func() {
		done <- f.sess.StartAnalysis(context.Background())
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("analysis request was not sent")
	}

	return release, done
}

func waitFor(t *testing.T, snaps <-chan session.Snapshot, cond func(session.Snapshot) bool) session.Snapshot {
	t.Helper()

	timeout := time.After(2 * time.Second)

	for {
		select {
		case s := <-snaps:
			if cond(s) {
				return s
			}
		case <-timeout:
			t.Fatal("expected snapshot was not published")
		}
	}
}

func TestSimulatedProgress(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.backend.uploadRes = &api.UploadResult{SessionID: "s1", FrameCount: 240}

	uploaded(t, f)

	snaps := make(chan session.Snapshot, 256)
	unsubscribe := f.sess.Subscribe(func(s session.Snapshot) {
		select {
		case snaps <- s:
		default:
		}
	})
	defer unsubscribe()

	release, done := startBlockedAnalysis(t, f)

	first := f.sess.Snapshot()
	assert.Equal(t, session.Analyzing, first.Phase)
	assert.Equal(t, 17600*time.Millisecond, first.Estimated)
	assert.Equal(t, "extracting frames", first.Stage)

	f.clock.Advance(4 * time.Second)

	s := waitFor(t, snaps, func(s session.Snapshot) bool {
		return s.Phase == session.Analyzing && s.Progress > 0
	})
	assert.Equal(t, "detecting pose", s.Stage)
	assert.Less(t, s.Progress, 100.0)

	f.clock.Advance(time.Minute)

	s = waitFor(t, snaps, func(s session.Snapshot) bool {
		return s.Phase == session.Analyzing && s.Stage == "calculating scores"
	})
	assert.InDelta(t, 99.0, s.Progress, 0.001)

	close(release)
	require.NoError(t, <-done)

	final := f.sess.Snapshot()
	assert.Equal(t, session.AnalysisComplete, final.Phase)
	assert.InDelta(t, 100.0, final.Progress, 0.001)
	assert.Equal(t, 0, f.clock.Tickers())

	f.clock.Advance(time.Minute)

	assert.Equal(t, final.Seq, f.sess.Snapshot().Seq)
}

func TestFailureResetsProgress(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.backend.analyzeErr = &api.ResponseError{
		Status: http.StatusInternalServerError,
		Header: http.Header{},
	}

	uploaded(t, f)

	snaps := make(chan session.Snapshot, 256)
	unsubscribe := f.sess.Subscribe(func(s session.Snapshot) {
		select {
		case snaps <- s:
		default:
		}
	})
	defer unsubscribe()

	release, done := startBlockedAnalysis(t, f)

	f.clock.Advance(5 * time.Second)

	waitFor(t, snaps, func(s session.Snapshot) bool {
		return s.Phase == session.Analyzing && s.Progress > 0
	})

	close(release)
	require.NoError(t, <-done)

	snap := f.sess.Snapshot()
	require.Equal(t, session.AnalysisFailed, snap.Phase)
	assert.Zero(t, snap.Progress)
	assert.Empty(t, snap.Stage)
}

func TestUploadFailureResetsProgress(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.backend.uploadProgress = [][2]int64{{40, 100}}
	f.backend.uploadErr = errors.New("connection reset by peer")

	require.NoError(t, f.sess.Select(mp4(10)))
	require.NoError(t, f.sess.Upload(context.Background()))

	snap := f.sess.Snapshot()
	require.Equal(t, session.UploadFailed, snap.Phase)
	assert.Zero(t, snap.Progress)
}

func TestActivationWithoutCredential(t *testing.T) {
	f := newFixture(t, fixtureOpts{authenticated: true})
	f.backend.analyzeErr = &api.ResponseError{
		Status: http.StatusPaymentRequired,
		Header: http.Header{},
		Body:   []byte(`{"detail":{"error":"insufficient_tokens","message":"Not enough tokens","needs_activation":true}}`),
	}
	f.backend.activateErr = api.ErrNoCredential

	ctx := context.Background()

	uploaded(t, f)
	require.NoError(t, f.sess.StartAnalysis(ctx))
	require.NoError(t, f.sess.Activate(ctx))

	snap := f.sess.Snapshot()
	assert.Equal(t, session.AnalysisFailed, snap.Phase)
	require.NotNil(t, snap.ActivationError)
	assert.Equal(t, failure.KindClientError, snap.ActivationError.Kind)
	assert.Equal(t, api.ErrNoCredential.Message, snap.ActivationError.Message)
}

func TestTeardownWhileAnalyzing(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	uploaded(t, f)

	_, done := startBlockedAnalysis(t, f)

	f.sess.Teardown()

	assert.ErrorIs(t, <-done, session.ErrClosed)
	assert.Equal(t, 0, f.clock.Tickers())

	require.NoError(t, f.sess.Wait(context.Background()))
	assert.Equal(t, []string{"s1"}, f.backend.cleaned())

	f.sess.Teardown()
	require.NoError(t, f.sess.Wait(context.Background()))
	assert.Len(t, f.backend.cleaned(), 1)

	assert.ErrorIs(t, f.sess.RetryAnalysis(context.Background()), session.ErrClosed)
}

func TestTeardownAfterCompletion(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	uploaded(t, f)
	require.NoError(t, f.sess.StartAnalysis(context.Background()))
	require.Equal(t, session.AnalysisComplete, f.sess.Snapshot().Phase)

	f.sess.Teardown()

	require.NoError(t, f.sess.Wait(context.Background()))
	assert.Empty(t, f.backend.cleaned())
}

func TestTeardownBeforeUpload(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	require.NoError(t, f.sess.Select(mp4(10)))
	f.sess.Teardown()

	require.NoError(t, f.sess.Wait(context.Background()))
	assert.Empty(t, f.backend.cleaned())
	assert.True(t, f.sess.Snapshot().Closed)
}
