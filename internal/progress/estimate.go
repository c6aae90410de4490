// Package progress estimates analysis progress for a phase that reports no
// incremental status of its own.
package progress

import "time"

// Stage is a named share of the estimated analysis time.
type Stage struct {
	Name  string
	Share float64
}

// DefaultStages are the analysis stages in the order the service runs them.
var DefaultStages = []Stage{
	{Name: "extracting frames", Share: 0.15},
	{Name: "detecting pose", Share: 0.25},
	{Name: "analyzing form", Share: 0.35},
	{Name: "calculating scores", Share: 0.25},
}

// Model holds the tunable constants of the time estimate. They were fitted
// against one deployment of the service and carry no meaning beyond that.
type Model struct {
	// Base is the fixed overhead of an analysis.
	Base time.Duration
	// PerMB is the added time per megabyte of upload, used only when
	// SizeScaled is set.
	PerMB time.Duration
	// PerFrame is the added time per video frame.
	PerFrame time.Duration
	// Default is used when no signal is available.
	Default time.Duration
	// Max caps every estimate.
	Max        time.Duration
	AssumedFPS float64
	// SizeScaled marks deployments whose cost grows with upload size.
	SizeScaled bool
}

// DefaultModel returns the stock estimation constants.
func DefaultModel() Model {
	return Model{
		Base:       8 * time.Second,
		PerMB:      900 * time.Millisecond,
		PerFrame:   40 * time.Millisecond,
		AssumedFPS: 30,
		Default:    30 * time.Second,
		Max:        90 * time.Second,
	}
}

// Signals are the facts known about a video when analysis starts.
type Signals struct {
	SizeMB     float64
	FrameCount int
	Duration   time.Duration
}

// Estimate returns the expected analysis time from the best available
// signal: upload size on size-scaled deployments, then the frame count
// reported by the upload, then duration at the assumed frame rate, and
// finally the default. The result never exceeds m.Max.
func (m Model) Estimate(s Signals) time.Duration {
	var est time.Duration

	switch {
	case m.SizeScaled && s.SizeMB > 0:
		est = m.Base + time.Duration(s.SizeMB*float64(m.PerMB))
	case s.FrameCount > 0:
		est = m.Base + time.Duration(s.FrameCount)*m.PerFrame
	case s.Duration > 0 && m.AssumedFPS > 0:
		frames := s.Duration.Seconds() * m.AssumedFPS
		est = m.Base + time.Duration(frames*float64(m.PerFrame))
	default:
		est = m.Default
	}

	if m.Max > 0 && est > m.Max {
		est = m.Max
	}

	if est <= 0 {
		est = time.Second
	}

	return est
}
