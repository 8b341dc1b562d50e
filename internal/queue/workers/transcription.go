package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/rmehra/captainslog/internal/audio"
	"github.com/rmehra/captainslog/internal/jobs"
	"github.com/rmehra/captainslog/internal/logstore"
	"github.com/rmehra/captainslog/internal/queue"
	"github.com/rmehra/captainslog/internal/transcribe"
)

// TranscriptionWorker runs queued recordings through the chunk pipeline
// and persists the transcript.
type TranscriptionWorker struct {
	pipeline *transcribe.Pipeline
	jobStore *jobs.Store
	logStore logstore.Store
}

func NewTranscriptionWorker(pipeline *transcribe.Pipeline, jobStore *jobs.Store, logStore logstore.Store) *TranscriptionWorker {
	return &TranscriptionWorker{
		pipeline: pipeline,
		jobStore: jobStore,
		logStore: logStore,
	}
}

func (w *TranscriptionWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.TranscriptionProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	defer os.Remove(payload.AudioPath)

	slog.Info("processing transcription job", "job_id", payload.JobID)

	rec, err := w.jobStore.Get(ctx, payload.JobID)
	if err != nil {
		return fmt.Errorf("get job %s: %w", payload.JobID, err)
	}

	rec.Status = jobs.StatusProcessing
	if err := w.jobStore.Put(ctx, rec); err != nil {
		return fmt.Errorf("update job status: %w", err)
	}

	data, err := os.ReadFile(payload.AudioPath)
	if err != nil {
		return w.fail(ctx, rec, nil, fmt.Errorf("read audio file: %w", err))
	}

	src, err := audio.Decode(data)
	if err != nil {
		return w.fail(ctx, rec, nil, fmt.Errorf("decode audio: %w", err))
	}

	result, err := w.pipeline.Run(ctx, src)
	if err != nil {
		var chunkErr *transcribe.ChunkError
		if errors.As(err, &chunkErr) {
			return w.fail(ctx, rec, chunkErr, err)
		}
		return w.fail(ctx, rec, nil, err)
	}

	location, err := w.logStore.Append(ctx, payload.Date, result.Text)
	if err != nil {
		return w.fail(ctx, rec, nil, fmt.Errorf("persist transcript: %w", err))
	}

	rec.Status = jobs.StatusCompleted
	rec.Transcript = result.Text
	rec.Segments = result.Segments
	rec.Location = location
	if err := w.jobStore.Put(ctx, rec); err != nil {
		return fmt.Errorf("store job result: %w", err)
	}

	slog.Info("transcription job completed",
		"job_id", payload.JobID,
		"location", location,
		"segments", len(result.Segments))
	return nil
}

// fail records the terminal failure on the job. The task itself is
// reported as handled: retrying would rerun the whole pipeline, and the
// caller decides whether that is worth doing.
func (w *TranscriptionWorker) fail(ctx context.Context, rec *jobs.Record, chunkErr *transcribe.ChunkError, cause error) error {
	rec.Status = jobs.StatusFailed
	rec.Error = cause.Error()
	if chunkErr != nil {
		chunk := chunkErr.Chunk
		rec.FailedChunk = &chunk
		if chunkErr.Partial != nil {
			rec.Transcript = chunkErr.Partial.Text
			rec.Segments = chunkErr.Partial.Segments
		}
	}
	if err := w.jobStore.Put(ctx, rec); err != nil {
		return fmt.Errorf("store job failure: %w", err)
	}

	slog.Error("transcription job failed", "job_id", rec.ID, "error", cause)
	return nil
}
