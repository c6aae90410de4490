package session

import (
	"context"
	"log/slog"
)

// Teardown ends the session. It stops simulated progress, abandons any
// request in flight and, when the session holds an upload that was never
// analyzed to completion, asks the service to delete it without waiting
// for the answer. Later calls do nothing.
func (s *Session) Teardown() {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	s.closed = true

	ticking := s.ticking
	s.ticking = nil

	if s.cancelReq != nil {
		s.cancelReq()
	}

	s.cancelRoot()

	var orphan string
	if s.sessionID != "" && s.phase != AnalysisComplete {
		orphan = s.sessionID
	}

	s.unlockAndPublish()

	if ticking != nil {
		ticking.Stop()
	}

	if orphan != "" {
		s.bestEffortCleanup(orphan)
	}
}

// bestEffortCleanup deletes a server-side upload in the background. The
// outcome is logged and otherwise ignored.
func (s *Session) bestEffortCleanup(sessionID string) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		err := s.backend.Cleanup(context.Background(), sessionID)
		if err != nil {
			s.logger.Debug("cleanup failed",
				slog.String("session_id", sessionID),
				slog.Any("error", err),
			)

			return
		}

		s.logger.Debug("cleanup sent", slog.String("session_id", sessionID))
	}()
}

// Wait blocks until background work (metadata probes and cleanup requests)
// has finished or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
