package task

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/ident"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

var ErrNotFound = errors.New("task not found")

type ListFilter struct {
	// Status:
	//   "" | "all" | "open" (neither complete nor cancelled) | exact status
	Status string

	// Project:
	//   "" | "any" | "none" (unassigned) | "<exact project id>"
	Project string

	// Due:
	//   "" | "any" | "overdue" | "today" | "upcoming"
	Due string
}

type Repo interface {
	Create(t model.Task) (model.Task, error)
	Get(id model.TaskID) (model.Task, error)
	Update(id model.TaskID, p Patch) (model.Task, error)
	Delete(id model.TaskID) error
	List(filter ListFilter) ([]model.Task, error)

	// ClearProjectRefs unlinks every task pointing at projectID and returns
	// how many were touched. Used when a project is deleted: unlink, never
	// cascade.
	ClearProjectRefs(projectID model.ProjectID) (int, error)

	AddSubtask(id model.TaskID, title string, dueDate *string) (model.Task, error)
	UpdateSubtask(id model.TaskID, subtaskID string, p SubtaskPatch) (model.Task, error)
	DeleteSubtask(id model.TaskID, subtaskID string) (model.Task, error)
	AddMilestone(id model.TaskID, name, targetDate string) (model.Task, error)
	UpdateMilestone(id model.TaskID, milestoneID string, p MilestonePatch) (model.Task, error)
	DeleteMilestone(id model.TaskID, milestoneID string) (model.Task, error)
	AddUpdateEntry(id model.TaskID, text string) (model.Task, error)
	DeleteUpdateEntry(id model.TaskID, entryID string) (model.Task, error)
}

func newTaskID() model.TaskID {
	return model.TaskID(ident.New("task"))
}

// initTask stamps identity/creation fields and fills enum defaults on a
// freshly created task.
func initTask(t *model.Task, now time.Time) {
	t.ID = newTaskID()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.CompletedAt = nil
	t.Changelog = []model.ChangelogEntry{}
	if t.Status == "" {
		t.Status = model.StatusNotStarted
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.TaskType == "" {
		t.TaskType = model.TypeFeature
	}
	if t.Status == model.StatusComplete {
		ts := now
		t.CompletedAt = &ts
	}
	normalizeTask(t)
}

func normalizeTask(t *model.Task) {
	if t.Subtasks == nil {
		t.Subtasks = []model.Subtask{}
	}
	if t.Milestones == nil {
		t.Milestones = []model.Milestone{}
	}
	if t.Updates == nil {
		t.Updates = []model.UpdateEntry{}
	}
	if t.Changelog == nil {
		t.Changelog = []model.ChangelogEntry{}
	}
}

func matchesFilter(t model.Task, f ListFilter, today string) bool {
	switch status := strings.ToLower(strings.TrimSpace(f.Status)); status {
	case "", "all":
	case "open":
		if t.Status == model.StatusComplete || t.Status == model.StatusCancelled {
			return false
		}
	default:
		if string(t.Status) != status {
			return false
		}
	}

	project := strings.TrimSpace(f.Project)
	switch strings.ToLower(project) {
	case "", "any":
	case "none":
		if t.ProjectID != nil {
			return false
		}
	default:
		if t.ProjectID == nil || string(*t.ProjectID) != project {
			return false
		}
	}

	// YYYY-MM-DD compares lexicographically.
	switch strings.ToLower(strings.TrimSpace(f.Due)) {
	case "", "any":
	case "overdue":
		if t.DueDate == nil || *t.DueDate >= today {
			return false
		}
	case "today":
		if t.DueDate == nil || *t.DueDate != today {
			return false
		}
	case "upcoming":
		if t.DueDate == nil || *t.DueDate <= today {
			return false
		}
	}

	return true
}

// sortTasks orders due soonest first (no due date last), then most recently
// updated first.
func sortTasks(out []model.Task) {
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].DueDate, out[j].DueDate
		switch {
		case di == nil && dj == nil:
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		case di == nil:
			return false
		case dj == nil:
			return true
		case *di != *dj:
			return *di < *dj
		default:
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
	})
}

type MemoryRepo struct {
	mu    sync.RWMutex
	tasks map[model.TaskID]model.Task
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tasks: map[model.TaskID]model.Task{}}
}

func (r *MemoryRepo) Create(t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	initTask(&t, time.Now())
	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) Get(id model.TaskID) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) Update(id model.TaskID, p Patch) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	next := ApplyUpdate(t, p, time.Now())
	r.tasks[id] = next
	return next, nil
}

func (r *MemoryRepo) Delete(id model.TaskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryRepo) List(filter ListFilter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	today := time.Now().Format(ymdLayout)
	out := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if matchesFilter(t, filter, today) {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out, nil
}

func (r *MemoryRepo) ClearProjectRefs(projectID model.ProjectID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cleared := 0
	for id, t := range r.tasks {
		if t.ProjectID == nil || *t.ProjectID != projectID {
			continue
		}
		empty := ""
		r.tasks[id] = ApplyUpdate(t, Patch{ProjectID: &empty}, now)
		cleared++
	}
	return cleared, nil
}

func (r *MemoryRepo) mutate(id model.TaskID, fn func(model.Task, time.Time) (model.Task, bool)) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	next, changed := fn(t, time.Now())
	if !changed {
		return t, nil
	}
	r.tasks[id] = next
	return next, nil
}

func (r *MemoryRepo) AddSubtask(id model.TaskID, title string, dueDate *string) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return AddSubtask(t, title, dueDate, now)
	})
}

func (r *MemoryRepo) UpdateSubtask(id model.TaskID, subtaskID string, p SubtaskPatch) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return UpdateSubtask(t, subtaskID, p, now)
	})
}

func (r *MemoryRepo) DeleteSubtask(id model.TaskID, subtaskID string) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return DeleteSubtask(t, subtaskID, now)
	})
}

func (r *MemoryRepo) AddMilestone(id model.TaskID, name, targetDate string) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return AddMilestone(t, name, targetDate, now)
	})
}

func (r *MemoryRepo) UpdateMilestone(id model.TaskID, milestoneID string, p MilestonePatch) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return UpdateMilestone(t, milestoneID, p, now)
	})
}

func (r *MemoryRepo) DeleteMilestone(id model.TaskID, milestoneID string) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return DeleteMilestone(t, milestoneID, now)
	})
}

func (r *MemoryRepo) AddUpdateEntry(id model.TaskID, text string) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return AddUpdateEntry(t, text, now)
	})
}

func (r *MemoryRepo) DeleteUpdateEntry(id model.TaskID, entryID string) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return DeleteUpdateEntry(t, entryID, now)
	})
}
