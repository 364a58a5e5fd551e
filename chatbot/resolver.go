package chatbot

import (
	"context"
	"strings"

	"chatbot/database"
	apperrors "chatbot/errors"
)

// ResolutionPath names the step of the resolver that produced an answer.
type ResolutionPath string

const (
	PathExact     ResolutionPath = "exact"
	PathSimilar   ResolutionPath = "similar"
	PathTransform ResolutionPath = "transform"
	PathBlacklist ResolutionPath = "blacklist"
)

// Resolution is an answer plus how it was found.
type Resolution struct {
	Answer string
	Path   ResolutionPath
	// Question is the stored question whose answers were used. For
	// PathSimilar it is the nearest question, not the input.
	Question string
	Distance int
	// Index is the position of Answer within the sorted answer set.
	Index       int
	SetSize     int
	Blacklisted string
}

// Transform produces an answer from the input alone when the store has nothing to offer.
type Transform func(input string) string

// PunctuationTransform echoes the input with question marks turned into exclamation marks.
func PunctuationTransform(input string) string {
	return strings.NewReplacer("?", "!", "？", "！").Replace(input)
}

// Resolver answers a question from the store: exact match first, then the
// answers of the nearest stored question, then the fallback transform.
type Resolver struct {
	store    database.Store
	rng      Randomizer
	fallback Transform
}

// NewResolver builds a Resolver. With a nil fallback an empty store makes
// Resolve fail with ErrNoDataAvailable.
func NewResolver(store database.Store, rng Randomizer, fallback Transform) *Resolver {
	return &Resolver{store: store, rng: rng, fallback: fallback}
}

func (r *Resolver) Resolve(ctx context.Context, input string) (Resolution, error) {
	if strings.TrimSpace(input) == "" {
		return Resolution{}, apperrors.InvalidInputf("question must not be empty")
	}

	answers, err := r.store.Get(ctx, input)
	if err != nil {
		return Resolution{}, apperrors.WrapErrorf(err, "lookup %q", input)
	}
	if answers.Len() > 0 {
		return r.choose(answers, input, PathExact, 0), nil
	}

	questions, err := r.store.ScanQuestions(ctx)
	if err != nil {
		return Resolution{}, apperrors.WrapError(err, "scan questions")
	}
	nearest, distance, ok := Nearest(input, questions)
	if !ok {
		return r.fallbackFor(input)
	}

	answers, err = r.store.Get(ctx, nearest)
	if err != nil {
		return Resolution{}, apperrors.WrapErrorf(err, "lookup nearest %q", nearest)
	}
	if answers.Len() == 0 {
		// removed between the scan and the lookup
		return r.fallbackFor(input)
	}
	return r.choose(answers, nearest, PathSimilar, distance), nil
}

func (r *Resolver) choose(answers database.AnswerSet, question string, path ResolutionPath, distance int) Resolution {
	list := answers.Sorted()
	answer, index := pick(r.rng, list)
	return Resolution{
		Answer:   answer,
		Path:     path,
		Question: question,
		Distance: distance,
		Index:    index,
		SetSize:  len(list),
	}
}

func (r *Resolver) fallbackFor(input string) (Resolution, error) {
	if r.fallback == nil {
		return Resolution{}, apperrors.WrapErrorf(apperrors.ErrNoDataAvailable, "no stored questions to answer %q", input)
	}
	return Resolution{Answer: r.fallback(input), Path: PathTransform}, nil
}
