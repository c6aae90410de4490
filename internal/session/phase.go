package session

// Phase is the position of a session in the upload and analysis sequence.
type Phase int

const (
	Idle Phase = iota
	FileSelected
	Uploading
	UploadFailed
	UploadComplete
	Analyzing
	AnalysisFailed
	AnalysisComplete
)

var phaseNames = [...]string{
	Idle:             "idle",
	FileSelected:     "file_selected",
	Uploading:        "uploading",
	UploadFailed:     "upload_failed",
	UploadComplete:   "upload_complete",
	Analyzing:        "analyzing",
	AnalysisFailed:   "analysis_failed",
	AnalysisComplete: "analysis_complete",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}

	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// HasUpload reports whether a session in this phase holds a server-side
// upload. The session id is set exactly in these phases.
func (p Phase) HasUpload() bool {
	switch p {
	case UploadComplete, Analyzing, AnalysisFailed, AnalysisComplete:
		return true
	default:
		return false
	}
}

// Failed reports whether the phase shows a classified failure.
func (p Phase) Failed() bool {
	return p == UploadFailed || p == AnalysisFailed
}

type event int

const (
	evSelect event = iota
	evProbeReject
	evUpload
	evUploaded
	evUploadFailed
	evSelectExercise
	evAnalyze
	evAnalyzed
	evAnalysisFailed
	evRetry
	evActivated
	// evAborted returns a cancelled request to the phase it started from.
	evAborted
)

type edge struct {
	from Phase
	ev   event
}

// transitions is the complete state machine. A pair that is absent is an
// illegal transition.
var transitions = map[edge]Phase{
	{Idle, evSelect}: FileSelected,

	{FileSelected, evSelect}:         FileSelected,
	{FileSelected, evProbeReject}:    Idle,
	{FileSelected, evUpload}:         Uploading,
	{FileSelected, evSelectExercise}: FileSelected,

	{Uploading, evUploaded}:       UploadComplete,
	{Uploading, evUploadFailed}:   UploadFailed,
	{Uploading, evAborted}:        FileSelected,
	{Uploading, evSelectExercise}: Uploading,

	{UploadFailed, evSelect}:         FileSelected,
	{UploadFailed, evUpload}:         Uploading,
	{UploadFailed, evSelectExercise}: UploadFailed,

	{UploadComplete, evSelect}:         FileSelected,
	{UploadComplete, evSelectExercise}: UploadComplete,
	{UploadComplete, evAnalyze}:        Analyzing,
	{UploadComplete, evRetry}:          Analyzing,

	{Analyzing, evAnalyzed}:       AnalysisComplete,
	{Analyzing, evAnalysisFailed}: AnalysisFailed,
	{Analyzing, evAborted}:        UploadComplete,

	{AnalysisFailed, evSelect}:         FileSelected,
	{AnalysisFailed, evSelectExercise}: AnalysisFailed,
	{AnalysisFailed, evRetry}:          Analyzing,
	{AnalysisFailed, evActivated}:      UploadComplete,

	{AnalysisComplete, evSelect}: FileSelected,
}

func next(from Phase, ev event) (Phase, bool) {
	to, ok := transitions[edge{from, ev}]
	return to, ok
}
