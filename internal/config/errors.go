package config

import "github.com/ayoisaiah/repcheck/internal/apperr"

var (
	errConfigValidation = &apperr.Error{
		Message: "config validation error",
	}

	errReadConfig = &apperr.Error{
		Message: "reading config file failed",
	}

	errWriteConfig = &apperr.Error{
		Message: "writing default config failed",
	}

	errReadEnvFile = &apperr.Error{
		Message: "reading env file %s failed",
	}

	errInvalidTime = &apperr.Error{
		Message: "invalid --%s time %q",
	}

	errInvalidRange = &apperr.Error{
		Message: "the history range is empty: --since (%s) is after --until (%s)",
	}

	errInvalidBaseURL = &apperr.Error{
		Message: "server base url must be an absolute http(s) url, got %q",
	}

	errEmptyPath = &apperr.Error{
		Message: "server %s path cannot be empty",
	}

	errCleanupPlaceholder = &apperr.Error{
		Message: "server cleanup path must contain {session_id}, got %q",
	}

	errInvalidSize = &apperr.Error{
		Message: "upload %s must be between %d and %d MB",
	}

	errWarnAboveMax = &apperr.Error{
		Message: "upload warn size (%d MB) must not exceed the max size (%d MB)",
	}

	errInvalidDuration = &apperr.Error{
		Message: "%s must be between %v and %v",
	}

	errDefaultAboveMax = &apperr.Error{
		Message: "progress default (%v) must not exceed progress max (%v)",
	}

	errInvalidFPS = &apperr.Error{
		Message: "progress assumed fps must be between %v and %v",
	}

	errNoExercises = &apperr.Error{
		Message: "analysis exercises cannot be empty",
	}

	errEmptyExercise = &apperr.Error{
		Message: "exercise %q must have a name",
	}

	errUnknownDefaultExercise = &apperr.Error{
		Message: "default exercise %q is not in the exercise table",
	}

	errInvalidLogLevel = &apperr.Error{
		Message: "unknown log level %q: choose one of debug, info, warn, error",
	}

	errEmptyProbeCmd = &apperr.Error{
		Message: "probe command cannot be empty",
	}
)
