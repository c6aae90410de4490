package app

import "github.com/ayoisaiah/repcheck/internal/apperr"

var (
	errFileRequired = &apperr.Error{
		Message: "no video file given: run 'repcheck FILE' or 'repcheck %s FILE'",
	}

	errSessionIDRequired = &apperr.Error{
		Message: "no session id given: run 'repcheck cleanup SESSION_ID'",
	}

	errExerciseRequired = &apperr.Error{
		Message: "no exercise chosen: pass --exercise or set analysis.default_exercise in %s",
	}

	errSessionFailed = &apperr.Error{
		Message: "%s: %s",
	}

	errActivation = &apperr.Error{
		Message: "token activation failed: %s",
	}
)
