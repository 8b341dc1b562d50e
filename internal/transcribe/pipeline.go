package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Source is a finite audio recording with a known total duration.
// Slice returns the audio data for the half-open interval [start, end),
// framed so a backend can decode it on its own.
type Source interface {
	Duration() time.Duration
	Slice(start, end time.Duration) ([]byte, error)
}

// Segment is one timed row of the transcript. Start and End are seconds
// relative to the whole recording, not the chunk the backend saw.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the assembled transcript: the concatenation of all chunk
// texts in chunk order plus the ordered segment table.
type Result struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// Backend converts one chunk of audio into text and timed segments.
// The prompt carries prior transcript text so the backend can keep
// terminology and sentence flow consistent across chunk boundaries.
type Backend interface {
	Transcribe(ctx context.Context, chunk []byte, prompt string) (Result, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, chunk []byte, prompt string) (Result, error)

func (f BackendFunc) Transcribe(ctx context.Context, chunk []byte, prompt string) (Result, error) {
	return f(ctx, chunk, prompt)
}

// ContextMode selects how much prior transcript is handed to the backend
// as the prompt for each chunk.
type ContextMode int

const (
	// ContextCumulative passes everything transcribed so far.
	ContextCumulative ContextMode = iota
	// ContextPrevious passes only the immediately preceding chunk's text.
	ContextPrevious
)

// Span is a half-open time interval [Start, End) over a recording.
type Span struct {
	Start time.Duration
	End   time.Duration
}

// PlanChunks tiles [0, total) with ceil(total/chunk) spans of length chunk,
// the last one possibly shorter. A zero total yields no spans.
func PlanChunks(total, chunk time.Duration) []Span {
	if total <= 0 || chunk <= 0 {
		return nil
	}
	n := int((total + chunk - 1) / chunk)
	spans := make([]Span, 0, n)
	for i := 0; i < n; i++ {
		start := time.Duration(i) * chunk
		end := start + chunk
		if end > total {
			end = total
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}

// Options configures a Pipeline.
type Options struct {
	// ChunkDuration is the nominal length of each chunk. Required.
	ChunkDuration time.Duration
	// ContextMode defaults to ContextCumulative.
	ContextMode ContextMode
}

// Pipeline splits a recording into fixed-duration chunks and transcribes
// them strictly in order, feeding each chunk the transcript accumulated
// before it. The ordering is a hard dependency: chunk i+1's prompt is
// derived from chunk i's output, so chunks are never transcribed in
// parallel.
type Pipeline struct {
	backend Backend
	opts    Options
}

// NewPipeline validates opts and returns a ready pipeline.
func NewPipeline(backend Backend, opts Options) (*Pipeline, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrConfig)
	}
	if opts.ChunkDuration <= 0 {
		return nil, fmt.Errorf("%w: chunk duration %v is not positive", ErrConfig, opts.ChunkDuration)
	}
	return &Pipeline{backend: backend, opts: opts}, nil
}

// Run transcribes src in full. A zero-duration source yields an empty
// result without touching the backend. If the backend fails on any chunk
// the error is a *ChunkError carrying the failing chunk index and the
// partial result accumulated before it; remaining chunks are not
// attempted and nothing is retried.
func (p *Pipeline) Run(ctx context.Context, src Source) (*Result, error) {
	total := src.Duration()
	if total < 0 {
		return nil, fmt.Errorf("%w: source duration %v is negative", ErrConfig, total)
	}

	spans := PlanChunks(total, p.opts.ChunkDuration)

	var (
		transcript strings.Builder
		prev       string
		segments   []Segment
	)
	for i, span := range spans {
		if err := ctx.Err(); err != nil {
			return nil, &ChunkError{Chunk: i, Partial: p.result(transcript.String(), segments), Err: err}
		}

		data, err := src.Slice(span.Start, span.End)
		if err != nil {
			return nil, &ChunkError{Chunk: i, Partial: p.result(transcript.String(), segments), Err: fmt.Errorf("slice audio: %w", err)}
		}

		prompt := transcript.String()
		if p.opts.ContextMode == ContextPrevious {
			prompt = prev
		}

		out, err := p.backend.Transcribe(ctx, data, prompt)
		if err != nil {
			return nil, &ChunkError{Chunk: i, Partial: p.result(transcript.String(), segments), Err: err}
		}

		offset := span.Start.Seconds()
		for _, seg := range out.Segments {
			segments = append(segments, Segment{
				Start: seg.Start + offset,
				End:   seg.End + offset,
				Text:  seg.Text,
			})
		}
		transcript.WriteString(out.Text)
		prev = out.Text
	}

	return p.result(transcript.String(), segments), nil
}

func (p *Pipeline) result(text string, segments []Segment) *Result {
	return &Result{Text: text, Segments: segments}
}
