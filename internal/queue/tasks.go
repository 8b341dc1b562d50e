package queue

const (
	TypeTranscriptionProcess = "transcription:process"
)

// TranscriptionProcessPayload points the worker at an uploaded recording.
// AudioPath is a temp file owned by the job; the worker removes it once
// the job reaches a terminal state.
type TranscriptionProcessPayload struct {
	JobID     string `json:"job_id"`
	AudioPath string `json:"audio_path"`
	Date      string `json:"date"`
}
