package memory

import (
	"context"
	"sort"
	"sync"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/storage"
)

// ScenarioStore is an in-memory implementation of storage.ScenarioStore.
type ScenarioStore struct {
	mu     sync.RWMutex
	data   map[string]*domain.Scenario // keyed by id
	byName map[string]string           // name -> id
}

// NewScenarioStore creates a new in-memory scenario store.
func NewScenarioStore() *ScenarioStore {
	return &ScenarioStore{
		data:   make(map[string]*domain.Scenario),
		byName: make(map[string]string),
	}
}

// Compile-time interface check.
var _ storage.ScenarioStore = (*ScenarioStore)(nil)

// Save adds a new scenario. Returns ErrDuplicateKey if the id or name exists.
func (s *ScenarioStore) Save(_ context.Context, sc *domain.Scenario) error {
	if sc == nil || sc.ID == "" || sc.Name == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sc.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byName[sc.Name]; exists {
		return storage.ErrDuplicateKey
	}

	scCopy := *sc
	s.data[sc.ID] = &scCopy
	s.byName[sc.Name] = sc.ID
	return nil
}

// List retrieves all scenarios, newest first.
func (s *ScenarioStore) List(_ context.Context) ([]*domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Scenario, 0, len(s.data))
	for _, sc := range s.data {
		scCopy := *sc
		result = append(result, &scCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Delete removes a scenario. Returns ErrNotFound if not exists.
func (s *ScenarioStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	delete(s.byName, sc.Name)
	delete(s.data, id)
	return nil
}

// Load retrieves a scenario by its ID. Returns ErrNotFound if not exists.
func (s *ScenarioStore) Load(_ context.Context, id string) (*domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	scCopy := *sc
	return &scCopy, nil
}
