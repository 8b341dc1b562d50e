package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmehra/captainslog/internal/logstore"
)

// LogsHandler exposes the persisted transcript log.
type LogsHandler struct {
	store logstore.Store
}

func NewLogsHandler(store logstore.Store) *LogsHandler {
	return &LogsHandler{store: store}
}

// Dates lists every date with at least one log entry.
func (h *LogsHandler) Dates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.store.Dates(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dates": dates})
}

type logEntry struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// List returns the entries recorded under one date with their content.
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if !logstore.ValidDate(date) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date"})
		return
	}

	names, err := h.store.List(r.Context(), date)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	entries := make([]logEntry, 0, len(names))
	for _, name := range names {
		content, err := h.store.Read(r.Context(), name)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		entries = append(entries, logEntry{Name: name, Content: content})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"date": date, "entries": entries})
}
