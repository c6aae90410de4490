package failure

import (
	"fmt"
	"net/http"
)

// Code is a domain error code reported by the analysis service.
type Code string

const (
	CodeInsufficientTokens         Code = "insufficient_tokens"
	CodeCameraAngleTooExtreme      Code = "camera_angle_too_extreme"
	CodeInsufficientPoseDetections Code = "insufficient_pose_detections"
	CodeInvalidFileHeaders         Code = "invalid_file_headers"
	CodeInvalidFileContent         Code = "invalid_file_content"
	CodeUnsupportedVideoFormat     Code = "unsupported_video_format"
	CodeFrameExtractionFailed      Code = "frame_extraction_failed"
	CodeFPSValidationFailed        Code = "fps_validation_failed"
	CodeDurationExceeded           Code = "duration_exceeded"
	CodeRateLimitExceeded          Code = "rate_limit_exceeded"
)

// codeEntry describes how a domain code is presented.
type codeEntry struct {
	// message is used when the payload carries none.
	message     string
	recoverable bool
	// activatable codes offer token activation when the payload says so.
	activatable bool
}

var codeTable = map[Code]codeEntry{
	CodeInsufficientTokens: {
		message:     "You do not have enough tokens to run an analysis.",
		recoverable: true,
		activatable: true,
	},
	CodeCameraAngleTooExtreme: {
		message: "The camera angle is too extreme. Record from the side at about hip height.",
	},
	CodeInsufficientPoseDetections: {
		message: "Not enough of your body was detected. Make sure you stay fully in frame.",
	},
	CodeInvalidFileHeaders: {
		message: "The file does not look like a valid video.",
	},
	CodeInvalidFileContent: {
		message: "The video content could not be read.",
	},
	CodeUnsupportedVideoFormat: {
		message: "This video format is not supported. Use MP4, MOV or WebM.",
	},
	CodeFrameExtractionFailed: {
		message: "Frames could not be extracted from the video.",
	},
	CodeFPSValidationFailed: {
		message: "The video frame rate is outside the supported range.",
	},
	CodeDurationExceeded: {
		message: "The video is too long.",
	},
	CodeRateLimitExceeded: {
		message:     "Too many requests. Please wait a moment and try again.",
		recoverable: true,
	},
}

// statusEntry is the fallback for a response whose body says nothing useful.
type statusEntry struct {
	message     string
	recoverable bool
}

var statusTable = map[int]statusEntry{
	http.StatusBadRequest: {
		message: "The request was invalid. Check the video and try again.",
	},
	http.StatusUnauthorized: {
		message: "Your sign-in has expired. Sign in again to continue.",
	},
	http.StatusForbidden: {
		message: "You do not have permission to do this. Sign in to continue.",
	},
	http.StatusNotFound: {
		message: "The upload could not be found. Upload the video again.",
	},
	http.StatusRequestEntityTooLarge: {
		message: "The video is too large for the server to accept.",
	},
	http.StatusUnsupportedMediaType: {
		message: "This video format is not supported. Use MP4, MOV or WebM.",
	},
	http.StatusUnprocessableEntity: {
		message: "The video could not be processed. Check the file and try again.",
	},
	http.StatusTooManyRequests: {
		message:     "Too many requests. Please wait a moment and try again.",
		recoverable: true,
	},
}

const serverErrorMessage = "The analysis service is having trouble. Please try again later."

func statusFallback(status int) statusEntry {
	if e, ok := statusTable[status]; ok {
		return e
	}

	if status >= http.StatusInternalServerError && status <= 599 {
		return statusEntry{message: serverErrorMessage, recoverable: true}
	}

	return statusEntry{
		message:     fmt.Sprintf("An error occurred (status %d). Please try again.", status),
		recoverable: true,
	}
}
