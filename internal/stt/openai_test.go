package stt_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rmehra/captainslog/internal/stt"
)

func TestOpenAISTTTranscribe(t *testing.T) {
	var gotModel, gotFormat, gotPrompt, gotLanguage string
	var gotAudio []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotModel = r.FormValue("model")
		gotFormat = r.FormValue("response_format")
		gotPrompt = r.FormValue("prompt")
		gotLanguage = r.FormValue("language")

		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		buf := make([]byte, 64)
		n, _ := f.Read(buf)
		gotAudio = buf[:n]

		json.NewEncoder(w).Encode(map[string]interface{}{
			"text":     "hello there",
			"language": "en",
			"duration": 1.5,
			"segments": []map[string]interface{}{
				{"start": 0.0, "end": 0.8, "text": "hello"},
				{"start": 0.8, "end": 1.5, "text": " there"},
			},
		})
	}))
	defer srv.Close()

	provider := stt.NewOpenAISTT(stt.OpenAIConfig{BaseURL: srv.URL, APIKey: "test"})

	resp, err := provider.Transcribe(context.Background(), stt.TranscriptionRequest{
		Audio:    []byte("RIFFfake"),
		Filename: "chunk.wav",
		Language: "en",
		Prompt:   "prior text",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if gotModel != "whisper-1" {
		t.Errorf("model = %q, want whisper-1", gotModel)
	}
	if gotFormat != "verbose_json" {
		t.Errorf("response_format = %q, want verbose_json", gotFormat)
	}
	if gotPrompt != "prior text" {
		t.Errorf("prompt = %q, want %q", gotPrompt, "prior text")
	}
	if gotLanguage != "en" {
		t.Errorf("language = %q, want en", gotLanguage)
	}
	if string(gotAudio) != "RIFFfake" {
		t.Errorf("uploaded audio = %q", gotAudio)
	}

	if resp.Text != "hello there" {
		t.Errorf("text = %q", resp.Text)
	}
	if len(resp.Segments) != 2 || resp.Segments[1].End != 1.5 {
		t.Errorf("segments = %+v", resp.Segments)
	}
}

func TestOpenAISTTErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	provider := stt.NewOpenAISTT(stt.OpenAIConfig{BaseURL: srv.URL})

	tests := []struct {
		name string
		req  stt.TranscriptionRequest
	}{
		{name: "empty audio", req: stt.TranscriptionRequest{}},
		{name: "api error status", req: stt.TranscriptionRequest{Audio: []byte("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := provider.Transcribe(context.Background(), tt.req); err == nil {
				t.Error("Transcribe() did not fail")
			}
		})
	}
}

func TestBackendAdaptsSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"text": "a b",
			"segments": []map[string]interface{}{
				{"start": 0.0, "end": 2.0, "text": "a b"},
			},
		})
	}))
	defer srv.Close()

	backend := stt.NewBackend(stt.NewLocalSTT(stt.LocalConfig{BaseURL: srv.URL}), "")
	out, err := backend.Transcribe(context.Background(), []byte("RIFFfake"), "")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if out.Text != "a b" {
		t.Errorf("text = %q", out.Text)
	}
	if len(out.Segments) != 1 || out.Segments[0].End != 2.0 {
		t.Errorf("segments = %+v", out.Segments)
	}
}
