package task

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

type Handler struct {
	repo     Repo
	onChange func()
}

func NewHandler(repo Repo) *Handler {
	return &Handler{repo: repo}
}

// SetChangeListener registers a callback fired after every successful
// mutation; the sweeper uses it to rescan without waiting for the timer.
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

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// writeRepoResult maps a repo outcome to a response. A failed persistence
// write still carries the updated task: respond 500 so the client knows the
// change may not have been saved, but include the in-memory state.
func writeRepoResult(w http.ResponseWriter, t model.Task, err error) {
	if err == ErrNotFound {
		writeErr(w, 404, "not found")
		return
	}
	if err != nil {
		writeJSON(w, 500, map[string]any{
			"error": "change applied but not saved: " + err.Error(),
			"task":  t,
		})
		return
	}
	writeJSON(w, 200, t)
}

type taskCreate struct {
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	TaskType     model.TaskType          `json:"taskType"`
	Status       model.TaskStatus        `json:"status"`
	Priority     model.Priority          `json:"priority"`
	DueDate      *string                 `json:"dueDate,omitempty"`
	StartDate    *string                 `json:"startDate,omitempty"`
	ReminderDays *int                    `json:"reminderDays,omitempty"`
	ProjectID    *string                 `json:"projectId,omitempty"`
	IsRecurring  bool                    `json:"isRecurring"`
	Recurrence   *model.RecurrenceConfig `json:"recurrence,omitempty"`
	Links        []model.TaskLink        `json:"links,omitempty"`
}

// /api/tasks  (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		filter := ListFilter{
			Status:  q.Get("status"),
			Project: q.Get("project"),
			Due:     q.Get("due"),
		}
		ts, err := h.repo.List(filter)
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, ts)

	case http.MethodPost:
		var in taskCreate
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		if strings.TrimSpace(in.Title) == "" {
			writeErr(w, 400, "title is required")
			return
		}
		t := model.Task{
			Title:        strings.TrimSpace(in.Title),
			Description:  in.Description,
			TaskType:     in.TaskType,
			Status:       in.Status,
			Priority:     in.Priority,
			DueDate:      in.DueDate,
			StartDate:    in.StartDate,
			ReminderDays: in.ReminderDays,
			IsRecurring:  in.IsRecurring,
			Recurrence:   in.Recurrence,
			Links:        in.Links,
		}
		if in.ProjectID != nil && strings.TrimSpace(*in.ProjectID) != "" {
			pid := model.ProjectID(*in.ProjectID)
			t.ProjectID = &pid
		}
		created, err := h.repo.Create(t)
		if err != nil {
			writeJSON(w, 500, map[string]any{
				"error": "task created but not saved: " + err.Error(),
				"task":  created,
			})
			return
		}
		h.notifyChange()
		writeJSON(w, 201, created)

	default:
		writeErr(w, 405, "method not allowed")
	}
}

// /api/tasks/{id}[/...]
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tasks/"), "/")
	if tail == "" {
		writeErr(w, 404, "not found")
		return
	}
	parts := strings.Split(tail, "/")
	id := model.TaskID(parts[0])

	switch len(parts) {
	case 1:
		h.taskByID(w, r, id)
	case 2:
		switch parts[1] {
		case "subtasks":
			h.subtaskRoot(w, r, id)
		case "milestones":
			h.milestoneRoot(w, r, id)
		case "updates":
			h.updateRoot(w, r, id)
		case "changelog":
			h.changelog(w, r, id)
		case "calendar.ics":
			h.calendar(w, r, id)
		default:
			writeErr(w, 404, "not found")
		}
	case 3:
		switch parts[1] {
		case "subtasks":
			h.subtaskByID(w, r, id, parts[2])
		case "milestones":
			h.milestoneByID(w, r, id, parts[2])
		case "updates":
			h.updateByID(w, r, id, parts[2])
		default:
			writeErr(w, 404, "not found")
		}
	default:
		writeErr(w, 404, "not found")
	}
}

func (h *Handler) taskByID(w http.ResponseWriter, r *http.Request, id model.TaskID) {
	switch r.Method {
	case http.MethodGet:
		t, err := h.repo.Get(id)
		if err == ErrNotFound {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		writeJSON(w, 200, t)

	case http.MethodPatch:
		var p Patch
		if err := decodeJSON(r, &p); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		t, err := h.repo.Update(id, p)
		if err == nil {
			h.notifyChange()
		}
		writeRepoResult(w, t, err)

	case http.MethodDelete:
		err := h.repo.Delete(id)
		if err == ErrNotFound {
			writeErr(w, 404, "not found")
			return
		}
		if err != nil {
			writeErr(w, 500, err.Error())
			return
		}
		h.notifyChange()
		writeJSON(w, 200, map[string]any{"ok": true})

	default:
		writeErr(w, 405, "method not allowed")
	}
}

func (h *Handler) subtaskRoot(w http.ResponseWriter, r *http.Request, id model.TaskID) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	var in struct {
		Title   string  `json:"title"`
		DueDate *string `json:"dueDate,omitempty"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeErr(w, 400, "title is required")
		return
	}
	t, err := h.repo.AddSubtask(id, in.Title, in.DueDate)
	if err == nil {
		h.notifyChange()
	}
	writeRepoResult(w, t, err)
}

func (h *Handler) subtaskByID(w http.ResponseWriter, r *http.Request, id model.TaskID, subtaskID string) {
	switch r.Method {
	case http.MethodPatch:
		var p SubtaskPatch
		if err := decodeJSON(r, &p); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		t, err := h.repo.UpdateSubtask(id, subtaskID, p)
		if err == nil {
			h.notifyChange()
		}
		writeRepoResult(w, t, err)

	case http.MethodDelete:
		t, err := h.repo.DeleteSubtask(id, subtaskID)
		if err == nil {
			h.notifyChange()
		}
		writeRepoResult(w, t, err)

	default:
		writeErr(w, 405, "method not allowed")
	}
}

func (h *Handler) milestoneRoot(w http.ResponseWriter, r *http.Request, id model.TaskID) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	var in struct {
		Name       string `json:"name"`
		TargetDate string `json:"targetDate"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.TargetDate) == "" {
		writeErr(w, 400, "name and targetDate are required")
		return
	}
	t, err := h.repo.AddMilestone(id, in.Name, in.TargetDate)
	if err == nil {
		h.notifyChange()
	}
	writeRepoResult(w, t, err)
}

func (h *Handler) milestoneByID(w http.ResponseWriter, r *http.Request, id model.TaskID, milestoneID string) {
	switch r.Method {
	case http.MethodPatch:
		var p MilestonePatch
		if err := decodeJSON(r, &p); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		t, err := h.repo.UpdateMilestone(id, milestoneID, p)
		if err == nil {
			h.notifyChange()
		}
		writeRepoResult(w, t, err)

	case http.MethodDelete:
		t, err := h.repo.DeleteMilestone(id, milestoneID)
		if err == nil {
			h.notifyChange()
		}
		writeRepoResult(w, t, err)

	default:
		writeErr(w, 405, "method not allowed")
	}
}

func (h *Handler) updateRoot(w http.ResponseWriter, r *http.Request, id model.TaskID) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	var in struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		writeErr(w, 400, "text is required")
		return
	}
	t, err := h.repo.AddUpdateEntry(id, in.Text)
	if err == nil {
		h.notifyChange()
	}
	writeRepoResult(w, t, err)
}

func (h *Handler) updateByID(w http.ResponseWriter, r *http.Request, id model.TaskID, entryID string) {
	if r.Method != http.MethodDelete {
		writeErr(w, 405, "method not allowed")
		return
	}
	t, err := h.repo.DeleteUpdateEntry(id, entryID)
	if err == nil {
		h.notifyChange()
	}
	writeRepoResult(w, t, err)
}

func (h *Handler) changelog(w http.ResponseWriter, r *http.Request, id model.TaskID) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	t, err := h.repo.Get(id)
	if err == ErrNotFound {
		writeErr(w, 404, "not found")
		return
	}
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	writeJSON(w, 200, t.Changelog)
}

func (h *Handler) calendar(w http.ResponseWriter, r *http.Request, id model.TaskID) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	t, err := h.repo.Get(id)
	if err == ErrNotFound {
		writeErr(w, 404, "not found")
		return
	}
	if err != nil {
		writeErr(w, 500, err.Error())
		return
	}
	ics, err := BuildTaskCalendarICS(t, time.Now())
	if err != nil {
		writeErr(w, 400, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(200)
	_, _ = w.Write([]byte(ics))
}
