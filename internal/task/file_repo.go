package task

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

type fileState struct {
	Tasks map[model.TaskID]model.Task `json:"tasks"`
}

// FileRepo is the persistent task repository: one JSON document holding the
// whole collection, rewritten after every mutation.
//
// Failure policy: a missing or unreadable/corrupt file loads as an empty
// collection (warn and keep running); a failed save is returned to the
// caller together with the already-updated entity. In-memory state is
// never rolled back; the caller decides how loudly to warn.
type FileRepo struct {
	mu     sync.RWMutex
	path   string
	s      fileState
	logger zerolog.Logger
}

func NewFileRepo(dataDir string, logger zerolog.Logger) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{
		path:   filepath.Join(dataDir, "tasks.json"),
		s:      fileState{Tasks: map[model.TaskID]model.Task{}},
		logger: logger.With().Str("component", "task_repo").Logger(),
	}
	r.load()
	return r, nil
}

func (r *FileRepo) load() {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn().Err(err).Str("path", r.path).Msg("task store unreadable, starting empty")
		}
		return
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("task store corrupt, starting empty")
		return
	}
	if loaded.Tasks == nil {
		loaded.Tasks = map[model.TaskID]model.Task{}
	}
	for id, t := range loaded.Tasks {
		normalizeTask(&t)
		loaded.Tasks[id] = t
	}
	r.s = loaded
}

func (r *FileRepo) saveLocked() error {
	b, err := json.MarshalIndent(r.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, b, 0o644)
}

func (r *FileRepo) Create(t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	initTask(&t, time.Now())
	r.s.Tasks[t.ID] = t
	return t, r.saveLocked()
}

func (r *FileRepo) Get(id model.TaskID) (model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.s.Tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *FileRepo) Update(id model.TaskID, p Patch) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.s.Tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	next := ApplyUpdate(t, p, time.Now())
	r.s.Tasks[id] = next
	return next, r.saveLocked()
}

func (r *FileRepo) Delete(id model.TaskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.s.Tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.Tasks, id)
	return r.saveLocked()
}

func (r *FileRepo) List(filter ListFilter) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	today := time.Now().Format(ymdLayout)
	out := make([]model.Task, 0, len(r.s.Tasks))
	for _, t := range r.s.Tasks {
		if matchesFilter(t, filter, today) {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out, nil
}

func (r *FileRepo) ClearProjectRefs(projectID model.ProjectID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cleared := 0
	for id, t := range r.s.Tasks {
		if t.ProjectID == nil || *t.ProjectID != projectID {
			continue
		}
		empty := ""
		r.s.Tasks[id] = ApplyUpdate(t, Patch{ProjectID: &empty}, now)
		cleared++
	}
	if cleared == 0 {
		return 0, nil
	}
	return cleared, r.saveLocked()
}

func (r *FileRepo) mutate(id model.TaskID, fn func(model.Task, time.Time) (model.Task, bool)) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.s.Tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	next, changed := fn(t, time.Now())
	if !changed {
		return t, nil
	}
	r.s.Tasks[id] = next
	return next, r.saveLocked()
}

func (r *FileRepo) AddSubtask(id model.TaskID, title string, dueDate *string) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return AddSubtask(t, title, dueDate, now)
	})
}

func (r *FileRepo) UpdateSubtask(id model.TaskID, subtaskID string, p SubtaskPatch) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return UpdateSubtask(t, subtaskID, p, now)
	})
}

func (r *FileRepo) DeleteSubtask(id model.TaskID, subtaskID string) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return DeleteSubtask(t, subtaskID, now)
	})
}

func (r *FileRepo) AddMilestone(id model.TaskID, name, targetDate string) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return AddMilestone(t, name, targetDate, now)
	})
}

func (r *FileRepo) UpdateMilestone(id model.TaskID, milestoneID string, p MilestonePatch) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return UpdateMilestone(t, milestoneID, p, now)
	})
}

func (r *FileRepo) DeleteMilestone(id model.TaskID, milestoneID string) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return DeleteMilestone(t, milestoneID, now)
	})
}

func (r *FileRepo) AddUpdateEntry(id model.TaskID, text string) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return AddUpdateEntry(t, text, now)
	})
}

func (r *FileRepo) DeleteUpdateEntry(id model.TaskID, entryID string) (model.Task, error) {
	return r.mutate(id, func(t model.Task, now time.Time) (model.Task, bool) {
		return DeleteUpdateEntry(t, entryID, now)
	})
}
