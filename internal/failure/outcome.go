package failure

// Details holds the structured fields a server rejection may carry. They are
// passed through for display without modification.
type Details struct {
	AngleEstimate        *float64 `json:"angle_estimate,omitempty"`
	ValidFramePercentage *float64 `json:"valid_frame_percentage,omitempty"`
	RetryAfter           *int     `json:"retry_after,omitempty"`
	DetectedCodec        string   `json:"detected_codec,omitempty"`
	Warnings             []string `json:"warnings,omitempty"`
}

// Empty reports whether no structured field is set.
func (d Details) Empty() bool {
	return d.AngleEstimate == nil &&
		d.ValidFramePercentage == nil &&
		d.RetryAfter == nil &&
		d.DetectedCodec == "" &&
		len(d.Warnings) == 0
}

// Outcome is the classified result of a failure.
type Outcome struct {
	Kind           Kind           `json:"kind"`
	Message        string         `json:"message"`
	RecoveryAction RecoveryAction `json:"recovery_action,omitempty"`
	Details        Details        `json:"details"`
	Status         int            `json:"status,omitempty"`
	// Recoverable reports whether the failed request may be retried with the
	// same file. When false a fresh file selection is needed.
	Recoverable bool `json:"recoverable"`
}

// NeedsActivation reports whether token activation can resolve the failure.
func (o Outcome) NeedsActivation() bool {
	return o.RecoveryAction == RecoveryActivationRequired
}

func (o Outcome) Error() string {
	return o.Message
}
