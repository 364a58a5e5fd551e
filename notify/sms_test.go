package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "chatbot/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPrepareConversation(t *testing.T) {
	tests := []struct {
		name         string
		conversation string
		phone        string
		want         Message
		wantErr      bool
	}{
		{
			name:         "separator_becomes_newline",
			conversation: "Me: hi___Bot: hello",
			phone:        "4155550100",
			want:         Message{Message: "Me: hi\nBot: hello", PhoneNumber: "+14155550100"},
		},
		{
			name:         "exactly_max_length",
			conversation: strings.Repeat("字", MaxConversationLength),
			phone:        "4155550100",
			want:         Message{Message: strings.Repeat("字", MaxConversationLength), PhoneNumber: "+14155550100"},
		},
		{
			name:         "too_long",
			conversation: strings.Repeat("a", MaxConversationLength+1),
			phone:        "4155550100",
			wantErr:      true,
		},
		{
			name:         "emoji_at_max_length",
			conversation: strings.Repeat("😀", MaxConversationLength/2),
			phone:        "4155550100",
			want:         Message{Message: strings.Repeat("😀", MaxConversationLength/2), PhoneNumber: "+14155550100"},
		},
		{
			name:         "emoji_count_twice",
			conversation: strings.Repeat("😀", MaxConversationLength/2+1),
			phone:        "4155550100",
			wantErr:      true,
		},
		{
			name:         "short_phone",
			conversation: "hi",
			phone:        "5550100",
			wantErr:      true,
		},
		{
			name:         "phone_with_country_code",
			conversation: "hi",
			phone:        "+14155550100",
			wantErr:      true,
		},
		{
			name:         "empty_conversation",
			conversation: "___",
			phone:        "4155550100",
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PrepareConversation(tt.conversation, tt.phone)
			if tt.wantErr {
				assert.True(t, apperrors.IsInvalidInput(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWebhookSenderPostsJSON(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewWebhookSender(srv.URL, time.Second, zap.NewNop())
	msg := Message{Message: "hello", PhoneNumber: "+14155550100"}
	require.NoError(t, sender.Send(context.Background(), msg))
	assert.Equal(t, msg, got)
}

func TestWebhookSenderGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	sender := NewWebhookSender(srv.URL, time.Second, zap.NewNop())
	err := sender.Send(context.Background(), Message{Message: "hello", PhoneNumber: "+14155550100"})
	assert.True(t, apperrors.IsServiceUnavailable(err))
	assert.Contains(t, err.Error(), "quota exceeded")
}
