package video

import (
	"fmt"
	"time"
)

// Limits holds the acceptance thresholds for a file.
type Limits struct {
	// MaxSize is the hard size limit in bytes.
	MaxSize int64
	// WarnSize is the size in bytes above which a slow-upload warning is given.
	WarnSize int64
	// MaxDuration is the longest video the service accepts.
	MaxDuration time.Duration
}

// DefaultLimits returns the limits enforced by the analysis service.
func DefaultLimits() Limits {
	return Limits{
		MaxSize:     500 * MiB,
		WarnSize:    50 * MiB,
		MaxDuration: 120 * time.Second,
	}
}

// Verdict is the outcome of validating a file.
type Verdict struct {
	err     error
	Reason  string `json:"reason,omitempty"`
	Warning string `json:"warning,omitempty"`
	Valid   bool   `json:"valid"`
}

// Err returns the rejection as an error, or nil if the file was accepted.
func (v Verdict) Err() error {
	return v.err
}

func reject(err error) Verdict {
	return Verdict{
		Reason: err.Error(),
		err:    err,
	}
}

// Validate checks f against l. The rules apply in order: a file must be
// present, must declare a video type and must not exceed the hard size
// limit. Accepted files above the warning size carry a warning.
func Validate(f *File, l Limits) Verdict {
	if f == nil {
		return reject(ErrNoFile)
	}

	if !f.IsVideo() {
		declared := f.MIMEType
		if declared == "" {
			declared = "unknown type"
		}

		return reject(ErrNotVideo.Fmt(declared))
	}

	if f.Size > l.MaxSize {
		return reject(ErrTooLarge.Fmt(f.SizeMB(), l.MaxSize/MiB))
	}

	v := Verdict{Valid: true}

	if l.WarnSize > 0 && f.Size > l.WarnSize {
		v.Warning = fmt.Sprintf(
			"large file (%.2f MB): the upload may take a while",
			f.SizeMB(),
		)
	}

	return v
}

// CheckDuration rejects metadata whose duration is known and exceeds limit.
// Unknown durations pass, since the service validates them independently.
func CheckDuration(m Metadata, limit time.Duration) error {
	if limit <= 0 || m.Duration <= limit {
		return nil
	}

	return ErrTooLong.Fmt(m.Duration.Seconds(), int(limit.Seconds()))
}
