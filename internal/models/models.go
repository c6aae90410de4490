// Package models holds the records repcheck persists between runs.
package models

import "time"

// Analysis is a completed analysis as recorded in the local history.
type Analysis struct {
	CompletedAt time.Time `json:"completed_at"`
	// Score is the overall form score, when the service reported one.
	Score      *float64      `json:"score,omitempty"`
	SessionID  string        `json:"session_id"`
	FileName   string        `json:"file_name"`
	Exercise   string        `json:"exercise"`
	Warnings   []string      `json:"warnings,omitempty"`
	Size       int64         `json:"size"`
	FrameCount int           `json:"frame_count,omitempty"`
	FPS        float64       `json:"fps,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Balance is the last remaining-token figure reported by the service.
type Balance struct {
	UpdatedAt time.Time `json:"updated_at"`
	Remaining int       `json:"remaining"`
}
