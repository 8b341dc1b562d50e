package stt

import (
	"context"

	"github.com/rmehra/captainslog/internal/transcribe"
)

// Backend adapts a Provider to the chunk pipeline contract. The concrete
// provider is chosen once at configuration time; the pipeline never
// branches on which one it got.
type Backend struct {
	provider Provider
	language string
}

// NewBackend wraps provider for use by the transcription pipeline.
// language may be empty to let the model detect it.
func NewBackend(provider Provider, language string) *Backend {
	return &Backend{provider: provider, language: language}
}

func (b *Backend) Transcribe(ctx context.Context, chunk []byte, prompt string) (transcribe.Result, error) {
	resp, err := b.provider.Transcribe(ctx, TranscriptionRequest{
		Audio:    chunk,
		Filename: "chunk.wav",
		Language: b.language,
		Prompt:   prompt,
	})
	if err != nil {
		return transcribe.Result{}, err
	}

	out := transcribe.Result{Text: resp.Text}
	for _, s := range resp.Segments {
		out.Segments = append(out.Segments, transcribe.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return out, nil
}
