package session

import "github.com/ayoisaiah/repcheck/internal/apperr"

var (
	ErrClosed = &apperr.Error{
		Message: "the session has ended",
	}

	ErrBusy = &apperr.Error{
		Message: "another request for this session is still in progress",
	}

	ErrIllegalTransition = &apperr.Error{
		Message: "cannot %s while the session is %s",
	}

	ErrExerciseRequired = &apperr.Error{
		Message: "choose an exercise before starting the analysis",
	}

	ErrUnknownExercise = &apperr.Error{
		Message: "unknown exercise %q: choose one of %s",
	}

	ErrNewFileRequired = &apperr.Error{
		Message: "the upload cannot be retried with this file (%s): select a new file",
	}
)
