package project

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

var ErrNotFound = errors.New("project not found")

type Repo interface {
	Create(p model.Project) (model.Project, error)
	Get(id model.ProjectID) (model.Project, error)
	Update(id model.ProjectID, p Patch) (model.Project, error)
	Delete(id model.ProjectID) error
	List() ([]model.Project, error)
}

// sortProjects orders active-ish work first by target date (soonest first,
// none last), then most recently updated first.
func sortProjects(out []model.Project) {
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].TargetDate, out[j].TargetDate
		switch {
		case ti == nil && tj == nil:
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		case ti == nil:
			return false
		case tj == nil:
			return true
		case *ti != *tj:
			return *ti < *tj
		default:
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
	})
}

type MemoryRepo struct {
	mu       sync.RWMutex
	projects map[model.ProjectID]model.Project
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{projects: map[model.ProjectID]model.Project{}}
}

func (r *MemoryRepo) Create(p model.Project) (model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	initProject(&p, time.Now())
	r.projects[p.ID] = p
	return p, nil
}

func (r *MemoryRepo) Get(id model.ProjectID) (model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) Update(id model.ProjectID, patch Patch) (model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	next := ApplyPatch(p, patch, time.Now())
	r.projects[id] = next
	return next, nil
}

func (r *MemoryRepo) Delete(id model.ProjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *MemoryRepo) List() ([]model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, p)
	}
	sortProjects(out)
	return out, nil
}
