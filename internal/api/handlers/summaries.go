package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rmehra/captainslog/internal/logstore"
	"github.com/rmehra/captainslog/internal/summary"
)

// SummariesHandler produces a journal digest of one day's log entries.
type SummariesHandler struct {
	store     logstore.Store
	summaries *summary.Service
}

func NewSummariesHandler(store logstore.Store, svc *summary.Service) *SummariesHandler {
	return &SummariesHandler{store: store, summaries: svc}
}

func (h *SummariesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.summaries == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "no summary provider configured"})
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !logstore.ValidDate(req.Date) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date required (YYYY-MM-DD)"})
		return
	}

	names, err := h.store.List(r.Context(), req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if len(names) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no log entries for " + req.Date})
		return
	}

	entries := make([]string, 0, len(names))
	for _, name := range names {
		content, err := h.store.Read(r.Context(), name)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		entries = append(entries, content)
	}

	text, err := h.summaries.Summarize(r.Context(), entries)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":    req.Date,
		"entries": len(entries),
		"summary": text,
	})
}
