package database

import (
	"context"
	"sort"
)

// AnswerSet is the set of canned answers stored for one question.
type AnswerSet map[string]struct{}

// NewAnswerSet builds a set from answers, dropping empty strings and duplicates.
func NewAnswerSet(answers ...string) AnswerSet {
	set := make(AnswerSet, len(answers))
	for _, a := range answers {
		set.Add(a)
	}
	return set
}

// Add inserts answer and reports whether the set changed.
func (s AnswerSet) Add(answer string) bool {
	if answer == "" {
		return false
	}
	if _, ok := s[answer]; ok {
		return false
	}
	s[answer] = struct{}{}
	return true
}

// Remove deletes answer and reports whether it was present.
func (s AnswerSet) Remove(answer string) bool {
	if _, ok := s[answer]; !ok {
		return false
	}
	delete(s, answer)
	return true
}

func (s AnswerSet) Has(answer string) bool {
	_, ok := s[answer]
	return ok
}

func (s AnswerSet) Len() int {
	return len(s)
}

// Sorted returns the answers in lexical order.
func (s AnswerSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func (s AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(s))
	for a := range s {
		out[a] = struct{}{}
	}
	return out
}

func (s AnswerSet) Equal(other AnswerSet) bool {
	if len(s) != len(other) {
		return false
	}
	for a := range s {
		if _, ok := other[a]; !ok {
			return false
		}
	}
	return true
}

// Store is the question -> answer set mapping the chatbot reads and mutates.
// Get returns an empty set for unknown questions. Put replaces the full set
// and must not be called with an empty set; callers delete instead.
type Store interface {
	Get(ctx context.Context, question string) (AnswerSet, error)
	Put(ctx context.Context, question string, answers AnswerSet) error
	Delete(ctx context.Context, question string) error
	ScanQuestions(ctx context.Context) ([]string, error)
	Close() error
}

// VersionedStore adds compare-and-swap writes on top of Store. Version 0
// means the question is absent; every successful write bumps the version.
// Conditional writes fail with ErrConflict when the stored version moved.
type VersionedStore interface {
	Store
	GetVersioned(ctx context.Context, question string) (AnswerSet, uint64, error)
	PutIfVersion(ctx context.Context, question string, answers AnswerSet, version uint64) error
	DeleteIfVersion(ctx context.Context, question string, version uint64) error
}
