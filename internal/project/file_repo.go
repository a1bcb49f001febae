package project

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
	Projects map[model.ProjectID]model.Project `json:"projects"`
}

// FileRepo persists the project collection as one JSON document, same
// failure policy as the task store: tolerate bad reads, surface bad writes.
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
		path:   filepath.Join(dataDir, "projects.json"),
		s:      fileState{Projects: map[model.ProjectID]model.Project{}},
		logger: logger.With().Str("component", "project_repo").Logger(),
	}
	r.load()
	return r, nil
}

func (r *FileRepo) load() {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn().Err(err).Str("path", r.path).Msg("project store unreadable, starting empty")
		}
		return
	}
	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("project store corrupt, starting empty")
		return
	}
	if loaded.Projects == nil {
		loaded.Projects = map[model.ProjectID]model.Project{}
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

func (r *FileRepo) Create(p model.Project) (model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	initProject(&p, time.Now())
	r.s.Projects[p.ID] = p
	return p, r.saveLocked()
}

func (r *FileRepo) Get(id model.ProjectID) (model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.s.Projects[id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	return p, nil
}

func (r *FileRepo) Update(id model.ProjectID, patch Patch) (model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.s.Projects[id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	next := ApplyPatch(p, patch, time.Now())
	r.s.Projects[id] = next
	return next, r.saveLocked()
}

func (r *FileRepo) Delete(id model.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.s.Projects[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.Projects, id)
	return r.saveLocked()
}

func (r *FileRepo) List() ([]model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Project, 0, len(r.s.Projects))
	for _, p := range r.s.Projects {
		out = append(out, p)
	}
	sortProjects(out)
	return out, nil
}
