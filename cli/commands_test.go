package cli

import (
	"bytes"
	"context"
	"testing"

	"chatbot/config"
	"chatbot/database"
	apperrors "chatbot/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runCLI(t *testing.T, store database.Store, args ...string) (string, error) {
	t.Helper()
	app := &App{OpenStore: func(context.Context, *config.Config, *zap.Logger) (database.Store, error) {
		return store, nil
	}}
	root := NewRootCmd(app)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLITeachAskForget(t *testing.T) {
	t.Setenv("EMPTY_STORE_POLICY", "transform")
	t.Setenv("LOG_LEVEL", "error")
	store := database.NewMemoryStore()

	out, err := runCLI(t, store, "ask", "anyone home?")
	require.NoError(t, err)
	assert.Equal(t, "anyone home!\n", out)

	out, err = runCLI(t, store, "teach", "hi", "hello")
	require.NoError(t, err)
	assert.Equal(t, "\"hi\" now has 1 answer(s)\n", out)

	out, err = runCLI(t, store, "teach", "hi", "hello")
	require.NoError(t, err)
	assert.Equal(t, "\"hello\" already answers \"hi\"\n", out)

	out, err = runCLI(t, store, "ask", "hii")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	out, err = runCLI(t, store, "answers", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	out, err = runCLI(t, store, "forget", "hi", "nope")
	require.NoError(t, err)
	assert.Equal(t, "\"nope\" was not an answer to \"hi\"\n", out)

	out, err = runCLI(t, store, "forget", "hi", "hello")
	require.NoError(t, err)
	assert.Equal(t, "\"hi\" has no answers left and was removed\n", out)

	questions, err := store.ScanQuestions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, questions)
}

func TestCLIErrors(t *testing.T) {
	t.Setenv("EMPTY_STORE_POLICY", "error")
	t.Setenv("LOG_LEVEL", "error")
	store := database.NewMemoryStore()

	_, err := runCLI(t, store, "ask", "hello?")
	assert.True(t, apperrors.IsNoDataAvailable(err), "got %v", err)

	_, err = runCLI(t, store, "teach", " ", "x")
	assert.True(t, apperrors.IsInvalidInput(err), "got %v", err)

	_, err = runCLI(t, store, "notify", "123", "hello")
	assert.True(t, apperrors.IsInvalidInput(err), "got %v", err)

	_, err = runCLI(t, store, "teach", "only-one-arg")
	assert.Error(t, err)
}
