package chatbot

import (
	"context"
	"strings"
	"time"

	"chatbot/blacklist"
	"chatbot/config"
	"chatbot/database"
	apperrors "chatbot/errors"
	"chatbot/notify"

	"go.uber.org/zap"
)

// Options wires a Service. Store and Logger are required.
type Options struct {
	Store      database.Store
	Randomizer Randomizer
	// Fallback answers when the store is empty; nil means ErrNoDataAvailable.
	Fallback     Transform
	Blacklist    *blacklist.Filter
	Sender       notify.Sender
	StoreTimeout time.Duration
	MaxRetries   int
	Logger       *zap.Logger
}

// Service is the request-level API: ask, teach, forget, list, and send a conversation.
type Service struct {
	store    database.Store
	resolver *Resolver
	mutator  *Mutator
	filter   *blacklist.Filter
	sender   notify.Sender
	rng      Randomizer
	timeout  time.Duration
	logger   *zap.Logger
}

func NewService(opts Options) *Service {
	rng := opts.Randomizer
	if rng == nil {
		rng = NewRandomizer(0)
	}
	sender := opts.Sender
	if sender == nil {
		sender = notify.NewLogSender(opts.Logger)
	}
	return &Service{
		store:    opts.Store,
		resolver: NewResolver(opts.Store, rng, opts.Fallback),
		mutator:  NewMutator(opts.Store, opts.MaxRetries),
		filter:   opts.Blacklist,
		sender:   sender,
		rng:      rng,
		timeout:  opts.StoreTimeout,
		logger:   opts.Logger,
	}
}

// NewServiceFromConfig builds a Service around store using the configured
// blacklist, empty-store policy, SMS gateway and retry settings.
func NewServiceFromConfig(cfg *config.Config, store database.Store, logger *zap.Logger) (*Service, error) {
	opts := Options{
		Store:        store,
		Randomizer:   NewRandomizer(cfg.RandomSeed),
		StoreTimeout: cfg.StoreTimeout,
		MaxRetries:   cfg.MutationMaxRetries,
		Logger:       logger,
	}

	if cfg.EmptyStorePolicy == config.EmptyStorePolicyTransform {
		opts.Fallback = PunctuationTransform
	}

	if cfg.BlacklistEnabled {
		if cfg.BlacklistFile != "" {
			filter, err := blacklist.Load(cfg.BlacklistFile)
			if err != nil {
				return nil, err
			}
			opts.Blacklist = filter
		} else {
			opts.Blacklist = blacklist.Default()
		}
	}

	if cfg.SMSWebhookURL != "" {
		opts.Sender = notify.NewWebhookSender(cfg.SMSWebhookURL, cfg.SMSTimeout, logger)
	}

	return NewService(opts), nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Ask answers input, checking the blacklist before the store.
func (s *Service) Ask(ctx context.Context, input string) (res Resolution, err error) {
	start := time.Now()
	defer func() {
		operationDuration.WithLabelValues("ask", statusLabel(err)).Observe(time.Since(start).Seconds())
	}()

	if strings.TrimSpace(input) == "" {
		return Resolution{}, apperrors.InvalidInputf("question must not be empty")
	}

	if s.filter != nil {
		if m, ok := s.filter.Check(input, s.rng); ok {
			s.logger.Info("Found blacklisted word",
				zap.String("input", input),
				zap.String("language", m.Language),
				zap.String("word", m.Word))
			resolutionsTotal.WithLabelValues(string(PathBlacklist)).Inc()
			return Resolution{Answer: m.Response, Path: PathBlacklist, Blacklisted: m.Word}, nil
		}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err = s.resolver.Resolve(ctx, input)
	if err != nil {
		s.logger.Error("Failed to resolve answer", zap.String("input", input), zap.Error(err))
		return Resolution{}, err
	}

	resolutionsTotal.WithLabelValues(string(res.Path)).Inc()
	fields := []zap.Field{
		zap.String("input", input),
		zap.String("path", string(res.Path)),
		zap.String("answer", res.Answer),
	}
	if res.Path == PathSimilar {
		nearestDistance.Observe(float64(res.Distance))
		fields = append(fields, zap.String("nearest_question", res.Question), zap.Int("distance", res.Distance))
	}
	if res.SetSize > 0 {
		fields = append(fields, zap.Int("pick", res.Index+1), zap.Int("of", res.SetSize))
	}
	s.logger.Info("Resolved answer", fields...)
	return res, nil
}

// Teach adds answer to question's canned answers.
func (s *Service) Teach(ctx context.Context, question, answer string) (m Mutation, err error) {
	start := time.Now()
	defer func() {
		operationDuration.WithLabelValues("teach", statusLabel(err)).Observe(time.Since(start).Seconds())
		mutationsTotal.WithLabelValues("add", mutationResult(m, err)).Inc()
	}()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	m, err = s.mutator.AddAnswer(ctx, question, answer)
	if err != nil {
		s.logger.Error("Failed to add answer", zap.String("question", question), zap.String("answer", answer), zap.Error(err))
		return m, err
	}
	s.logger.Info("Answers updated",
		zap.String("question", question),
		zap.Bool("changed", m.Changed),
		zap.Strings("answers", m.Answers),
		zap.Int("attempts", m.Attempts))
	return m, nil
}

// Forget removes answer from question's canned answers.
func (s *Service) Forget(ctx context.Context, question, answer string) (m Mutation, err error) {
	start := time.Now()
	defer func() {
		operationDuration.WithLabelValues("forget", statusLabel(err)).Observe(time.Since(start).Seconds())
		mutationsTotal.WithLabelValues("remove", mutationResult(m, err)).Inc()
	}()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	m, err = s.mutator.RemoveAnswer(ctx, question, answer)
	if err != nil {
		s.logger.Error("Failed to remove answer", zap.String("question", question), zap.String("answer", answer), zap.Error(err))
		return m, err
	}
	if m.Deleted {
		s.logger.Info("Answer set empty after deletion, entry removed", zap.String("question", question))
	} else {
		s.logger.Info("Answers updated",
			zap.String("question", question),
			zap.Bool("changed", m.Changed),
			zap.Strings("answers", m.Answers),
			zap.Int("attempts", m.Attempts))
	}
	return m, nil
}

// Answers lists question's stored answers, sorted. No fallback is applied.
func (s *Service) Answers(ctx context.Context, question string) (answers []string, err error) {
	start := time.Now()
	defer func() {
		operationDuration.WithLabelValues("answers", statusLabel(err)).Observe(time.Since(start).Seconds())
	}()

	if strings.TrimSpace(question) == "" {
		return nil, apperrors.InvalidInputf("question must not be empty")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	set, err := s.store.Get(ctx, question)
	if err != nil {
		s.logger.Error("Failed to list answers", zap.String("question", question), zap.Error(err))
		return nil, apperrors.WrapErrorf(err, "lookup %q", question)
	}
	return set.Sorted(), nil
}

// SendConversation texts a conversation transcript to a ten-digit phone number.
func (s *Service) SendConversation(ctx context.Context, conversation, phone string) (err error) {
	start := time.Now()
	defer func() {
		operationDuration.WithLabelValues("notify", statusLabel(err)).Observe(time.Since(start).Seconds())
	}()

	msg, err := notify.PrepareConversation(conversation, phone)
	if err != nil {
		s.logger.Warn("Rejected conversation", zap.String("phone", phone), zap.Error(err))
		return err
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to send conversation", zap.String("target", msg.PhoneNumber), zap.Error(err))
		return err
	}
	return nil
}
