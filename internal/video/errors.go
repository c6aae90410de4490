package video

import "github.com/ayoisaiah/repcheck/internal/apperr"

var (
	errIsDir = &apperr.Error{
		Message: "%s is a directory, not a video file",
	}

	ErrNoFile = &apperr.Error{
		Message: "no file selected: choose a video to upload",
	}

	ErrNotVideo = &apperr.Error{
		Message: "please select a video file (%s is not a video format)",
	}

	ErrTooLarge = &apperr.Error{
		Message: "file is too large (%.2f MB): the maximum size is %d MB",
	}

	ErrTooLong = &apperr.Error{
		Message: "video is too long (%.1f seconds): the maximum duration is %d seconds",
	}
)
