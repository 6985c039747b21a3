package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/program-cycles-api/internal/lifecycle"
	"github.com/noah-isme/program-cycles-api/internal/models"
	"github.com/noah-isme/program-cycles-api/internal/repository"
	appErrors "github.com/noah-isme/program-cycles-api/pkg/errors"
	"github.com/noah-isme/program-cycles-api/pkg/events"
)

var testNow = time.Date(2025, time.January, 3, 10, 0, 0, 0, time.UTC)

func testDeps(pub *eventRecorder) LifecycleDeps {
	ids := 0
	deps := LifecycleDeps{
		Ledger: lifecycle.Ledger{EnforceCapacity: true},
		Now:    func() time.Time { return testNow },
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
	}
	if pub != nil {
		deps.Events = pub
	}
	return deps
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *eventRecorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// programStore is an in-memory stand-in for the participant, registration,
// enrollment and cycle repositories.
type programStore struct {
	mu            sync.Mutex
	participants  map[string]models.Participant
	registrations map[string]models.Registration
	cycles        map[string]models.Cycle
	sequence      int64
	writes        int
}

func newProgramStore() *programStore {
	return &programStore{
		participants:  map[string]models.Participant{},
		registrations: map[string]models.Registration{},
		cycles:        map[string]models.Cycle{},
	}
}

func (s *programStore) Mutate(_ context.Context, id, targetCycleID string, fn repository.MutateFunc) (*models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.participants[id]
	if !ok {
		return nil, repository.ErrParticipantNotFound
	}
	var target *models.Cycle
	if targetCycleID != "" {
		c, ok := s.cycles[targetCycleID]
		if !ok {
			return nil, repository.ErrCycleNotFound
		}
		target = &c
	}
	next, cycle, err := fn(current, target)
	if err != nil {
		return &current, err
	}
	if cycle != nil {
		s.cycles[cycle.ID] = *cycle
	}
	s.participants[id] = next
	s.writes++
	return &next, nil
}

func (s *programStore) Create(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registrations[reg.ID] = *reg
	return nil
}

func (s *programStore) FindByID(_ context.Context, id string) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &reg, nil
}

func (s *programStore) List(_ context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Registration{}
	for _, reg := range s.registrations {
		if filter.Status != "" && reg.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(reg.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, reg)
	}
	return out, len(out), nil
}

func (s *programStore) Review(_ context.Context, id string, fn repository.RegistrationFunc) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.registrations[id]
	if !ok {
		return nil, repository.ErrRegistrationNotFound
	}
	next, err := fn(current)
	if err != nil {
		return &current, err
	}
	s.registrations[id] = next
	return &next, nil
}

func (s *programStore) Convert(_ context.Context, registrationID, cycleID string, fn repository.ConvertFunc) (*models.Registration, *models.Participant, *models.Cycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[registrationID]
	if !ok {
		return nil, nil, nil, repository.ErrRegistrationNotFound
	}
	cycle, ok := s.cycles[cycleID]
	if !ok {
		return nil, nil, nil, repository.ErrCycleNotFound
	}
	p, c, err := fn(reg, cycle)
	if err != nil {
		return &reg, nil, nil, err
	}
	s.sequence++
	p.Sequence = s.sequence
	s.cycles[c.ID] = c
	s.participants[p.ID] = p
	delete(s.registrations, registrationID)
	return &reg, &p, &c, nil
}

// memoryCache is a CacheRepository that round-trips values through JSON like Redis does.
type memoryCache struct {
	mu          sync.Mutex
	values      map[string][]byte
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.values {
		if strings.HasPrefix(key, prefix) {
			delete(m.values, key)
		}
	}
	return nil
}
