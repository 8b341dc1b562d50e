package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rmehra/captainslog/internal/audio"
	"github.com/rmehra/captainslog/internal/jobs"
	"github.com/rmehra/captainslog/internal/logstore"
	"github.com/rmehra/captainslog/internal/queue"
	"github.com/rmehra/captainslog/internal/transcribe"
)

// TranscriptionHandler accepts audio uploads and exposes job state.
type TranscriptionHandler struct {
	pipeline *transcribe.Pipeline
	jobStore *jobs.Store
	logStore logstore.Store
	queue    *queue.Client
	tempDir  string
	maxBody  int64
}

func NewTranscriptionHandler(pipeline *transcribe.Pipeline, jobStore *jobs.Store, logStore logstore.Store, qc *queue.Client, tempDir string, maxBodyMB int) *TranscriptionHandler {
	return &TranscriptionHandler{
		pipeline: pipeline,
		jobStore: jobStore,
		logStore: logStore,
		queue:    qc,
		tempDir:  tempDir,
		maxBody:  int64(maxBodyMB) << 20,
	}
}

// Create accepts a multipart recording upload and queues it for
// transcription. The response is 202 with the job id to poll.
func (h *TranscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	// Reject undecodable uploads before queueing so the caller hears about
	// it synchronously.
	if _, err := audio.Decode(data); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	path := filepath.Join(h.tempDir, fmt.Sprintf("upload-%s.wav", jobs.NewID()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store upload: " + err.Error()})
		return
	}

	rec := &jobs.Record{
		ID:        jobs.NewID(),
		Status:    jobs.StatusQueued,
		Filename:  filename,
		Date:      logstore.Today(),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.jobStore.Put(r.Context(), rec); err != nil {
		os.Remove(path)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	err := h.queue.EnqueueTranscriptionProcess(queue.TranscriptionProcessPayload{
		JobID:     rec.ID,
		AudioPath: path,
		Date:      rec.Date,
	})
	if err != nil {
		os.Remove(path)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"id": rec.ID, "status": string(rec.Status)})
}

// CreateSync transcribes an upload inline and returns the full result.
// With persist=true the transcript is also appended to today's log.
func (h *TranscriptionHandler) CreateSync(w http.ResponseWriter, r *http.Request) {
	data, _, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	src, err := audio.Decode(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.pipeline.Run(r.Context(), src)
	if err != nil {
		writeTranscribeError(w, err)
		return
	}

	resp := map[string]interface{}{
		"transcript": result.Text,
		"segments":   result.Segments,
	}
	if r.FormValue("persist") == "true" {
		location, err := h.logStore.Append(r.Context(), logstore.Today(), result.Text)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "persist transcript: " + err.Error()})
			return
		}
		resp["location"] = location
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns the state of one job, including partial transcript and
// failing chunk index when the pipeline aborted mid-recording.
func (h *TranscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// CSV streams the job's segment table as start,end,text rows, matching
// the transcript download format of the original tool.
func (h *TranscriptionHandler) CSV(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if rec.Status != jobs.StatusCompleted {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "job is " + string(rec.Status)})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "transcript_"+rec.ID+".csv"))

	cw := csv.NewWriter(w)
	cw.Write([]string{"start", "end", "text"})
	for _, seg := range rec.Segments {
		cw.Write([]string{
			strconv.FormatFloat(seg.Start, 'f', -1, 64),
			strconv.FormatFloat(seg.End, 'f', -1, 64),
			seg.Text,
		})
	}
	cw.Flush()
}

func (h *TranscriptionHandler) lookup(w http.ResponseWriter, r *http.Request) (*jobs.Record, bool) {
	id := chi.URLParam(r, "id")
	rec, err := h.jobStore.Get(r.Context(), id)
	if errors.Is(err, jobs.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown job"})
		return nil, false
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	return rec, true
}

func (h *TranscriptionHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := r.ParseMultipartForm(h.maxBody); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart body: " + err.Error()})
		return nil, "", false
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file field required"})
		return nil, "", false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read upload: " + err.Error()})
		return nil, "", false
	}
	return data, header.Filename, true
}

func writeTranscribeError(w http.ResponseWriter, err error) {
	var chunkErr *transcribe.ChunkError
	switch {
	case errors.Is(err, transcribe.ErrConfig):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &chunkErr):
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":              err.Error(),
			"failed_chunk":       chunkErr.Chunk,
			"partial_transcript": chunkErr.Partial.Text,
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
