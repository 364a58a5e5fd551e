package database

import (
	"context"
	"sync"

	apperrors "chatbot/errors"
)

// MemoryStore is a process-local Store. Questions scan in insertion order.
// Versions come from one store-wide clock, so a re-created question never
// gets a version it held before.
type MemoryStore struct {
	mu       sync.RWMutex
	order    []string
	entries  map[string]AnswerSet
	versions map[string]uint64
	clock    uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]AnswerSet),
		versions: make(map[string]uint64),
	}
}

// Seed loads fixed entries, mostly for tests and local runs.
func (s *MemoryStore) Seed(question string, answers ...string) *MemoryStore {
	set := NewAnswerSet(answers...)
	if set.Len() == 0 {
		return s
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(question, set)
	return s
}

func (s *MemoryStore) Get(ctx context.Context, question string) (AnswerSet, error) {
	set, _, err := s.GetVersioned(ctx, question)
	return set, err
}

func (s *MemoryStore) GetVersioned(ctx context.Context, question string) (AnswerSet, uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, apperrors.StoreError("memory get", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.entries[question]
	if !ok {
		return NewAnswerSet(), 0, nil
	}
	return set.Clone(), s.versions[question], nil
}

func (s *MemoryStore) Put(ctx context.Context, question string, answers AnswerSet) error {
	if answers.Len() == 0 {
		return apperrors.InvalidInputf("refusing to store empty answer set for %q", question)
	}
	if err := ctx.Err(); err != nil {
		return apperrors.StoreError("memory put", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(question, answers.Clone())
	return nil
}

func (s *MemoryStore) PutIfVersion(ctx context.Context, question string, answers AnswerSet, version uint64) error {
	if answers.Len() == 0 {
		return apperrors.InvalidInputf("refusing to store empty answer set for %q", question)
	}
	if err := ctx.Err(); err != nil {
		return apperrors.StoreError("memory conditional put", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[question] != version {
		return apperrors.WrapErrorf(apperrors.ErrConflict, "question %q changed since it was read", question)
	}
	s.putLocked(question, answers.Clone())
	return nil
}

func (s *MemoryStore) putLocked(question string, answers AnswerSet) {
	if _, ok := s.entries[question]; !ok {
		s.order = append(s.order, question)
	}
	s.entries[question] = answers
	s.clock++
	s.versions[question] = s.clock
}

func (s *MemoryStore) Delete(ctx context.Context, question string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.StoreError("memory delete", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(question)
	return nil
}

func (s *MemoryStore) DeleteIfVersion(ctx context.Context, question string, version uint64) error {
	if version == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return apperrors.StoreError("memory conditional delete", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[question] != version {
		return apperrors.WrapErrorf(apperrors.ErrConflict, "question %q changed since it was read", question)
	}
	s.deleteLocked(question)
	return nil
}

func (s *MemoryStore) deleteLocked(question string) {
	if _, ok := s.entries[question]; !ok {
		return
	}
	delete(s.entries, question)
	delete(s.versions, question)
	for i, q := range s.order {
		if q == question {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *MemoryStore) ScanQuestions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.StoreError("memory scan", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
