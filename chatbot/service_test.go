package chatbot

import (
	"context"
	"testing"
	"time"

	"chatbot/blacklist"
	"chatbot/config"
	"chatbot/database"
	apperrors "chatbot/errors"
	"chatbot/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent []notify.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg notify.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestService(store database.Store, sender notify.Sender) *Service {
	return NewService(Options{
		Store:        store,
		Randomizer:   fixedRand(0),
		Fallback:     PunctuationTransform,
		Blacklist:    blacklist.Default(),
		Sender:       sender,
		StoreTimeout: time.Second,
		Logger:       zap.NewNop(),
	})
}

func TestServiceAskBlacklistBeforeStore(t *testing.T) {
	store := database.NewMemoryStore().Seed("tell me about soup", "it is tasty")
	svc := newTestService(store, nil)

	res, err := svc.Ask(context.Background(), "tell me about soup")
	require.NoError(t, err)
	assert.Equal(t, PathBlacklist, res.Path)
	assert.Equal(t, "soup", res.Blacklisted)
	assert.Equal(t, "Don't mention soup to me, if you still wanna stay alive.", res.Answer)
}

func TestServiceAskWithoutBlacklist(t *testing.T) {
	store := database.NewMemoryStore().Seed("tell me about soup", "it is tasty")
	svc := NewService(Options{Store: store, Randomizer: fixedRand(0), Logger: zap.NewNop()})

	res, err := svc.Ask(context.Background(), "tell me about soup")
	require.NoError(t, err)
	assert.Equal(t, PathExact, res.Path)
	assert.Equal(t, "it is tasty", res.Answer)
}

func TestServiceTeachAskForget(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(database.NewMemoryStore(), nil)

	res, err := svc.Ask(ctx, "hi?")
	require.NoError(t, err)
	assert.Equal(t, "hi!", res.Answer, "empty store echoes the transformed input")

	_, err = svc.Teach(ctx, "hi", "hello")
	require.NoError(t, err)
	_, err = svc.Teach(ctx, "hi", "hey")
	require.NoError(t, err)

	answers, err := svc.Answers(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "hey"}, answers)

	res, err = svc.Ask(ctx, "hii")
	require.NoError(t, err)
	assert.Equal(t, PathSimilar, res.Path)
	assert.Equal(t, "hello", res.Answer)

	answers, err = svc.Answers(ctx, "hii")
	require.NoError(t, err)
	assert.Empty(t, answers, "listing never falls back to similar questions")

	_, err = svc.Forget(ctx, "hi", "hello")
	require.NoError(t, err)
	m, err := svc.Forget(ctx, "hi", "hey")
	require.NoError(t, err)
	assert.True(t, m.Deleted)

	answers, err = svc.Answers(ctx, "hi")
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestServiceSendConversation(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(database.NewMemoryStore(), sender)

	require.NoError(t, svc.SendConversation(context.Background(), "Me: hi___Bot: hello", "4155550100"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, notify.Message{Message: "Me: hi\nBot: hello", PhoneNumber: "+14155550100"}, sender.sent[0])

	err := svc.SendConversation(context.Background(), "hi", "12345")
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Len(t, sender.sent, 1)

	sender.err = apperrors.ErrServiceUnavailable
	err = svc.SendConversation(context.Background(), "hi", "4155550100")
	assert.True(t, apperrors.IsServiceUnavailable(err))
}

func TestNewServiceFromConfig(t *testing.T) {
	cfg := &config.Config{
		EmptyStorePolicy: config.EmptyStorePolicyError,
		BlacklistEnabled: false,
		RandomSeed:       7,
	}
	svc, err := NewServiceFromConfig(cfg, database.NewMemoryStore(), zap.NewNop())
	require.NoError(t, err)

	_, err = svc.Ask(context.Background(), "soup?")
	assert.True(t, apperrors.IsNoDataAvailable(err), "error policy and no blacklist, got %v", err)

	cfg.BlacklistFile = "/does/not/exist.yaml"
	cfg.BlacklistEnabled = true
	_, err = NewServiceFromConfig(cfg, database.NewMemoryStore(), zap.NewNop())
	assert.Error(t, err)
}
