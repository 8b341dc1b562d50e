package stt

import "context"

// TranscriptionRequest holds one chunk of audio for transcription.
// Audio is a complete, self-describing file (WAV) rather than a path so
// the pipeline can feed in-memory chunk slices without touching disk.
type TranscriptionRequest struct {
	Audio    []byte `json:"-"`
	Filename string `json:"filename,omitempty"`
	Language string `json:"language,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
}

// TranscriptionSegment is one timed row as reported by the model, with
// timestamps relative to the submitted audio.
type TranscriptionSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language"`
	Duration float64                `json:"duration"`
	Segments []TranscriptionSegment `json:"segments"`
}

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}
