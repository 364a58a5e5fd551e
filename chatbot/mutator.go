package chatbot

import (
	"context"
	"strings"

	"chatbot/database"
	apperrors "chatbot/errors"
)

// Mutation reports what an add or remove did to a question's entry.
type Mutation struct {
	Question string
	Changed  bool
	// Deleted is set when the last answer went and the entry was removed.
	Deleted  bool
	Answers  []string
	Attempts int
}

// Mutator adds and removes canned answers. Each call is a read followed by a
// write of the full set. By default the write is unconditional and the last
// writer wins; when maxRetries > 0 and the store is a VersionedStore the
// write only lands if the entry is unchanged since the read, and conflicts
// are retried up to maxRetries times.
type Mutator struct {
	store      database.Store
	maxRetries int
}

func NewMutator(store database.Store, maxRetries int) *Mutator {
	return &Mutator{store: store, maxRetries: maxRetries}
}

// AddAnswer unions answer into question's set. Adding an existing answer is a no-op.
func (m *Mutator) AddAnswer(ctx context.Context, question, answer string) (Mutation, error) {
	if err := validatePair(question, answer); err != nil {
		return Mutation{}, err
	}
	return m.mutate(ctx, question, func(set database.AnswerSet) bool {
		return set.Add(answer)
	})
}

// RemoveAnswer drops answer from question's set, deleting the entry once it
// is empty. Removing an answer that is not there is a no-op.
func (m *Mutator) RemoveAnswer(ctx context.Context, question, answer string) (Mutation, error) {
	if err := validatePair(question, answer); err != nil {
		return Mutation{}, err
	}
	return m.mutate(ctx, question, func(set database.AnswerSet) bool {
		return set.Remove(answer)
	})
}

func (m *Mutator) mutate(ctx context.Context, question string, apply func(database.AnswerSet) bool) (Mutation, error) {
	if vs, ok := m.store.(database.VersionedStore); ok && m.maxRetries > 0 {
		return m.mutateVersioned(ctx, vs, question, apply)
	}

	set, err := m.store.Get(ctx, question)
	if err != nil {
		return Mutation{}, apperrors.WrapErrorf(err, "read %q", question)
	}
	res := Mutation{Question: question, Attempts: 1}
	if !apply(set) {
		res.Answers = set.Sorted()
		return res, nil
	}
	res.Changed = true
	res.Answers = set.Sorted()

	if set.Len() == 0 {
		res.Deleted = true
		return res, apperrors.WrapErrorf(m.store.Delete(ctx, question), "delete %q", question)
	}
	return res, apperrors.WrapErrorf(m.store.Put(ctx, question, set), "write %q", question)
}

func (m *Mutator) mutateVersioned(ctx context.Context, vs database.VersionedStore, question string, apply func(database.AnswerSet) bool) (Mutation, error) {
	var lastErr error
	for attempt := 1; attempt <= m.maxRetries+1; attempt++ {
		set, version, err := vs.GetVersioned(ctx, question)
		if err != nil {
			return Mutation{}, apperrors.WrapErrorf(err, "read %q", question)
		}
		res := Mutation{Question: question, Attempts: attempt}
		if !apply(set) {
			res.Answers = set.Sorted()
			return res, nil
		}
		res.Changed = true
		res.Answers = set.Sorted()

		if set.Len() == 0 {
			res.Deleted = true
			err = vs.DeleteIfVersion(ctx, question, version)
		} else {
			err = vs.PutIfVersion(ctx, question, set, version)
		}
		if err == nil {
			return res, nil
		}
		if !apperrors.IsConflict(err) {
			return Mutation{}, apperrors.WrapErrorf(err, "write %q", question)
		}
		lastErr = err
	}
	return Mutation{}, apperrors.WrapErrorf(lastErr, "gave up on %q after %d attempts", question, m.maxRetries+1)
}

func validatePair(question, answer string) error {
	if strings.TrimSpace(question) == "" {
		return apperrors.InvalidInputf("question must not be empty")
	}
	if strings.TrimSpace(answer) == "" {
		return apperrors.InvalidInputf("answer must not be empty")
	}
	return nil
}
