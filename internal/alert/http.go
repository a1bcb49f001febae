package alert

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

// Source supplies the current alert snapshot. The sweeper implements it;
// the handler never scans tasks itself.
type Source interface {
	Alerts() []model.AlertItem
	Problems() []DataError
}

type Handler struct {
	source    Source
	dismissed *DismissalStore
}

func NewHandler(source Source, dismissed *DismissalStore) *Handler {
	return &Handler{source: source, dismissed: dismissed}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// AlertsRoot serves /api/alerts: the live (non-dismissed) alert list plus
// any data problems found during the last scan.
func (h *Handler) AlertsRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	alerts := h.source.Alerts()
	problems := h.source.Problems()
	if problems == nil {
		problems = []DataError{}
	}
	writeJSON(w, 200, map[string]any{
		"alerts":   alerts,
		"problems": problems,
	})
}

// Dismiss serves POST /api/alerts/dismiss with body {"id": "..."}.
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	var in struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}
	if strings.TrimSpace(in.ID) == "" {
		writeErr(w, 400, "id is required")
		return
	}
	if err := h.dismissed.Dismiss(in.ID); err != nil {
		writeErr(w, 500, "dismissal not saved: "+err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
}

// DismissAll serves POST /api/alerts/dismiss-all: dismisses every alert
// currently active.
func (h *Handler) DismissAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	alerts := h.source.Alerts()
	ids := make([]string, 0, len(alerts))
	for _, a := range alerts {
		ids = append(ids, a.ID)
	}
	if err := h.dismissed.DismissAll(ids); err != nil {
		writeErr(w, 500, "dismissals not saved: "+err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true, "dismissed": len(ids)})
}
