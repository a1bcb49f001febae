package project

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

// TaskUnlinker detaches tasks from a project being deleted. Deleting a
// project never deletes its tasks; they just lose the reference.
type TaskUnlinker interface {
	ClearProjectRefs(projectID model.ProjectID) (int, error)
}

type Handler struct {
	repo     Repo
	tasks    TaskUnlinker
	onChange func()
}

func NewHandler(repo Repo, tasks TaskUnlinker) *Handler {
	return &Handler{repo: repo, tasks: tasks}
}

func (h *Handler) SetChangeListener(fn func()) {
	h.onChange = fn
}

func (h *Handler) notifyChange() {
	if h.onChange != nil {
		h.onChange()
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

type projectCreate struct {
	Name       string              `json:"name"`
	Status     model.ProjectStatus `json:"status"`
	Priority   model.Priority      `json:"priority"`
	TargetDate *string             `json:"targetDate,omitempty"`
	StartDate  *string             `json:"startDate,omitempty"`
	Owner      string              `json:"owner,omitempty"`
	Links      []model.ProjectLink `json:"links,omitempty"`
}

// /api/projects  (collection)
func (h *Handler) ProjectsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ps, err := h.repo.List()
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, ps)

	case http.MethodPost:
		var in projectCreate
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		if strings.TrimSpace(in.Name) == "" {
			writeErr(w, 400, "name is required")
			return
		}
		created, err := h.repo.Create(model.Project{
			Name:       strings.TrimSpace(in.Name),
			Status:     in.Status,
			Priority:   in.Priority,
			TargetDate: in.TargetDate,
			StartDate:  in.StartDate,
			Owner:      in.Owner,
			Links:      in.Links,
		})
		if err != nil {
			writeJSON(w, 500, map[string]any{
				"error":   "project created but not saved: " + err.Error(),
				"project": created,
			})
			return
		}
		writeJSON(w, 201, created)

	default:
		writeErr(w, 405, "method not allowed")
	}
}

// /api/projects/{id}
func (h *Handler) ProjectsSub(w http.ResponseWriter, r *http.Request) {
	id := model.ProjectID(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/projects/"), "/"))
	if id == "" || strings.Contains(string(id), "/") {
		writeErr(w, 404, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.repo.Get(id)
		if err == ErrNotFound {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, p)

	case http.MethodPatch:
		var patch Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		p, err := h.repo.Update(id, patch)
		if err == ErrNotFound {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeJSON(w, 500, map[string]any{
				"error":   "change applied but not saved: " + err.Error(),
				"project": p,
			})
			return
		}
		writeJSON(w, 200, p)

	case http.MethodDelete:
		if err := h.repo.Delete(id); err != nil {
			if err == ErrNotFound {
				writeErr(w, 404, "not found")
				return
			}
			writeErr(w, 500, err.Error())
			return
		}
		unlinked, err := h.tasks.ClearProjectRefs(id)
		if err != nil {
			writeJSON(w, 500, map[string]any{
				"error":    "project deleted but task unlink not saved: " + err.Error(),
				"unlinked": unlinked,
			})
			return
		}
		if unlinked > 0 {
			h.notifyChange()
		}
		writeJSON(w, 200, map[string]any{"ok": true, "unlinked": unlinked})

	default:
		writeErr(w, 405, "method not allowed")
	}
}
