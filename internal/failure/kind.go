// Package failure classifies upload and analysis failures into outcomes the
// user interface can act on.
package failure

import "strings"

// Kind is the classified category of a failure.
type Kind string

const (
	KindValidationRejected Kind = "validation_rejected"
	KindNetworkError       Kind = "network_error"
	KindCancelled          Kind = "cancelled"
	KindParseError         Kind = "parse_error"
	KindClientError        Kind = "client_error"
	KindServerGeneric      Kind = "server_rejected:generic"
)

const serverRejectedPrefix = "server_rejected:"

// ServerRejected returns the kind for a known domain error code.
func ServerRejected(code Code) Kind {
	return Kind(serverRejectedPrefix + string(code))
}

// Code returns the domain code of a server rejection, or "" for every other
// kind (including the generic rejection).
func (k Kind) Code() Code {
	code, ok := strings.CutPrefix(string(k), serverRejectedPrefix)
	if !ok || code == "generic" {
		return ""
	}

	return Code(code)
}

// Surfaced reports whether failures of this kind belong on the shared error
// surface. Validation rejections are shown where the file is selected and
// cancellations are never shown.
func (k Kind) Surfaced() bool {
	return k != KindValidationRejected && k != KindCancelled
}

// RecoveryAction is a follow-up operation that resolves a failure without
// restarting the session.
type RecoveryAction string

const (
	RecoveryNone               RecoveryAction = ""
	RecoveryActivationRequired RecoveryAction = "activation_required"
)
