package idempotent

import (
	"context"
	"sort"
	"sync"
)

type jobKey struct {
	jobID string
	key   string
}

// MemoryStore is an in-process [Store] for tests and one-shot runs.
type MemoryStore struct {
	mu     sync.Mutex
	values map[jobKey]string
	errors map[jobKey]ErrorDetail
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[jobKey]string),
		errors: make(map[jobKey]ErrorDetail),
	}
}

func (s *MemoryStore) Get(_ context.Context, jobID, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[jobKey{jobID, key}]
	return v, ok, nil
}

func (s *MemoryStore) Record(_ context.Context, jobID, key, _, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := jobKey{jobID, key}
	if _, exists := s.values[k]; !exists {
		s.values[k] = value
	}
	return nil
}

func (s *MemoryStore) RecordError(_ context.Context, jobID string, detail ErrorDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errors[jobKey{jobID, detail.Key}] = detail
	return nil
}

func (s *MemoryStore) ClearError(_ context.Context, jobID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.errors, jobKey{jobID, key})
	return nil
}

// Errors returns the job's failures ordered by time of occurrence.
func (s *MemoryStore) Errors(_ context.Context, jobID string) ([]ErrorDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var details []ErrorDetail
	for k, d := range s.errors {
		if k.jobID == jobID {
			details = append(details, d)
		}
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].OccurredAt.Before(details[j].OccurredAt)
	})
	return details, nil
}
