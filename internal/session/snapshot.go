package session

import (
	"time"

	"github.com/ayoisaiah/repcheck/internal/api"
	"github.com/ayoisaiah/repcheck/internal/failure"
	"github.com/ayoisaiah/repcheck/internal/video"
)

// Snapshot is a copy of the session state for rendering. It is never
// modified after it is handed out.
type Snapshot struct {
	File    *video.File        `json:"file,omitempty"`
	Upload  *api.UploadResult  `json:"upload,omitempty"`
	Result  *api.AnalyzeResult `json:"result,omitempty"`
	Outcome *failure.Outcome   `json:"error,omitempty"`
	// ActivationError is the failure of the last activation attempt. The
	// phase is left as it was.
	ActivationError *failure.Outcome `json:"activation_error,omitempty"`
	Balance         *int             `json:"remaining_tokens,omitempty"`
	SessionID       string           `json:"session_id,omitempty"`
	Exercise        string           `json:"exercise,omitempty"`
	Stage           string           `json:"stage,omitempty"`
	// Rejection is the inline message of the last rejected selection.
	Rejection string         `json:"rejection,omitempty"`
	Warning   string         `json:"warning,omitempty"`
	Metadata  video.Metadata `json:"metadata"`
	Phase     Phase          `json:"phase"`
	Progress  float64        `json:"progress"`
	Estimated time.Duration  `json:"estimated,omitempty"`
	Remaining time.Duration  `json:"remaining,omitempty"`
	// Elapsed is the time the last analysis request took.
	Elapsed time.Duration `json:"elapsed,omitempty"`
	Seq     uint64        `json:"-"`
	Closed  bool          `json:"closed,omitempty"`
}

// Listener receives every published snapshot in order. It runs on the
// goroutine that changed the session and must not call back into it.
type Listener func(Snapshot)

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		File:            s.file,
		Upload:          s.upload,
		Result:          s.result,
		Outcome:         s.outcome,
		ActivationError: s.activationErr,
		Balance:         s.balance,
		SessionID:       s.sessionID,
		Exercise:        s.exercise,
		Stage:           s.stage,
		Rejection:       s.rejection,
		Warning:         s.warning,
		Metadata:        s.metadata,
		Phase:           s.phase,
		Progress:        s.progress,
		Estimated:       s.estimated,
		Remaining:       s.remaining,
		Elapsed:         s.elapsed,
		Seq:             s.seq,
		Closed:          s.closed,
	}

	return snap
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Subscribe registers l for every snapshot published from now on and
// returns a function that removes it.
func (s *Session) Subscribe(l Listener) func() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l

	return func() {
		s.emitMu.Lock()
		defer s.emitMu.Unlock()

		delete(s.listeners, id)
	}
}

// unlockAndPublish records a state change, releases s.mu and delivers the
// new snapshot to listeners.
func (s *Session) unlockAndPublish() {
	s.seq++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.deliver(snap)
}

// deliver hands snap to the listeners unless a newer snapshot has already
// been delivered.
func (s *Session) deliver(snap Snapshot) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	if snap.Seq <= s.delivered {
		return
	}

	s.delivered = snap.Seq

	for _, l := range s.listeners {
		l(snap)
	}
}
