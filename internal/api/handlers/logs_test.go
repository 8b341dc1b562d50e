package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/rmehra/captainslog/internal/api/handlers"
	"github.com/rmehra/captainslog/internal/logstore"
	"github.com/rmehra/captainslog/internal/summary"
)

func seedStore(t *testing.T) logstore.Store {
	t.Helper()
	store, err := logstore.NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, entry := range []string{"first entry", "second entry"} {
		if _, err := store.Append(ctx, "2026-08-31", entry); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestLogsDates(t *testing.T) {
	h := handlers.NewLogsHandler(seedStore(t))

	rr := httptest.NewRecorder()
	h.Dates(rr, httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Dates []string `json:"dates"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Dates) != 1 || resp.Dates[0] != "2026-08-31" {
		t.Errorf("dates = %v", resp.Dates)
	}
}

func TestLogsList(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/logs/{date}", handlers.NewLogsHandler(seedStore(t)).List)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/logs/2026-08-31", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Entries []struct {
			Name    string `json:"name"`
			Content string `json:"content"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("entries = %+v", resp.Entries)
	}
	if resp.Entries[0].Name != "2026-08-31/log_1.txt" || resp.Entries[0].Content != "first entry" {
		t.Errorf("entry 0 = %+v", resp.Entries[0])
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/logs/yesterday", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid date status = %d, want 400", rr.Code)
	}
}

type fixedProvider struct{ out string }

func (p fixedProvider) Name() string { return "fixed" }
func (p fixedProvider) Complete(_ context.Context, _, _ string) (string, error) {
	return p.out, nil
}

func TestSummariesCreate(t *testing.T) {
	svc := summary.NewService(fixedProvider{out: "the digest"})
	h := handlers.NewSummariesHandler(seedStore(t), svc)

	body := bytes.NewBufferString(`{"date": "2026-08-31"}`)
	rr := httptest.NewRecorder()
	h.Create(rr, httptest.NewRequest(http.MethodPost, "/api/v1/summaries", body))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Summary string `json:"summary"`
		Entries int    `json:"entries"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Summary != "the digest" || resp.Entries != 2 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSummariesCreateEdgeCases(t *testing.T) {
	store := seedStore(t)
	svc := summary.NewService(fixedProvider{out: "x"})

	tests := []struct {
		name     string
		handler  *handlers.SummariesHandler
		body     string
		wantCode int
	}{
		{name: "no provider", handler: handlers.NewSummariesHandler(store, nil), body: `{"date": "2026-08-31"}`, wantCode: http.StatusNotImplemented},
		{name: "bad json", handler: handlers.NewSummariesHandler(store, svc), body: `{`, wantCode: http.StatusBadRequest},
		{name: "bad date", handler: handlers.NewSummariesHandler(store, svc), body: `{"date": "soon"}`, wantCode: http.StatusBadRequest},
		{name: "empty date", handler: handlers.NewSummariesHandler(store, svc), body: `{"date": "2020-01-01"}`, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.handler.Create(rr, httptest.NewRequest(http.MethodPost, "/api/v1/summaries", bytes.NewBufferString(tt.body)))
			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}
