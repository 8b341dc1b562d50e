// Package jobs tracks asynchronous transcription jobs. Records live in
// Redis with a TTL; a job is transient bookkeeping, the transcript itself
// is persisted by the log store.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rmehra/captainslog/internal/transcribe"
)

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Record is the stored state of one transcription job.
type Record struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Filename  string    `json:"filename"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated on completion. On failure Transcript holds whatever was
	// assembled before the failing chunk.
	Transcript  string               `json:"transcript,omitempty"`
	Segments    []transcribe.Segment `json:"segments,omitempty"`
	Location    string               `json:"location,omitempty"`
	Error       string               `json:"error,omitempty"`
	FailedChunk *int                 `json:"failed_chunk,omitempty"`
}

// ErrNotFound reports an unknown or expired job ID.
var ErrNotFound = errors.New("job not found")

// NewID returns a fresh job identifier.
func NewID() string { return uuid.NewString() }

// Store keeps job records in Redis as JSON values.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Put(ctx context.Context, rec *Record) error {
	rec.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal job record: %w", err)
	}
	if err := s.client.Set(ctx, key(rec.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store job record: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	val, err := s.client.Get(ctx, key(id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load job record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal job record: %w", err)
	}
	return &rec, nil
}

func key(id string) string { return "job:" + id }
