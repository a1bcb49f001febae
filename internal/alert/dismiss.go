package alert

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
)

// DismissalStore holds the set of alert IDs the user has dismissed. The set
// only grows: because alert IDs are deterministic, a stale entry for a
// condition that no longer holds is harmless, and keeping it means the
// dismissal sticks if the condition comes back unchanged.
//
// Persisted as a sorted JSON array so the file diffs cleanly.
type DismissalStore struct {
	mu     sync.RWMutex
	path   string
	ids    map[string]struct{}
	logger zerolog.Logger
}

func NewDismissalStore(dataDir string, logger zerolog.Logger) (*DismissalStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	s := &DismissalStore{
		path:   filepath.Join(dataDir, "dismissed_alerts.json"),
		ids:    map[string]struct{}{},
		logger: logger.With().Str("component", "dismissals").Logger(),
	}
	s.load()
	return s, nil
}

func (s *DismissalStore) load() {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("dismissal store unreadable, starting empty")
		}
		return
	}
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("dismissal store corrupt, starting empty")
		return
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

func (s *DismissalStore) saveLocked() error {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	b, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (s *DismissalStore) Dismiss(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return nil
	}
	s.ids[id] = struct{}{}
	return s.saveLocked()
}

func (s *DismissalStore) DismissAll(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := false
	for _, id := range ids {
		if _, ok := s.ids[id]; !ok {
			s.ids[id] = struct{}{}
			added = true
		}
	}
	if !added {
		return nil
	}
	return s.saveLocked()
}

func (s *DismissalStore) IsDismissed(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.ids[id]
	return ok
}

// Filter drops dismissed alerts from the slice, preserving order.
func (s *DismissalStore) Filter(alerts []model.AlertItem) []model.AlertItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AlertItem, 0, len(alerts))
	for _, a := range alerts {
		if _, ok := s.ids[a.ID]; ok {
			continue
		}
		out = append(out, a)
	}
	return out
}
