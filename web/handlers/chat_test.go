package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatbot/chatbot"
	apperrors "chatbot/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService records calls and returns canned results.
type stubService struct {
	err   error
	calls []string
}

func (s *stubService) Ask(_ context.Context, input string) (chatbot.Resolution, error) {
	s.calls = append(s.calls, "ask:"+input)
	return chatbot.Resolution{Answer: "answer to " + input}, s.err
}

func (s *stubService) Teach(_ context.Context, q, a string) (chatbot.Mutation, error) {
	s.calls = append(s.calls, "teach:"+q+"="+a)
	return chatbot.Mutation{}, s.err
}

func (s *stubService) Forget(_ context.Context, q, a string) (chatbot.Mutation, error) {
	s.calls = append(s.calls, "forget:"+q+"="+a)
	return chatbot.Mutation{}, s.err
}

func (s *stubService) Answers(_ context.Context, q string) ([]string, error) {
	s.calls = append(s.calls, "answers:"+q)
	return []string{"a", "b"}, s.err
}

func (s *stubService) SendConversation(_ context.Context, conv, phone string) error {
	s.calls = append(s.calls, "send:"+phone)
	return s.err
}

func newTestRouter(svc ChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewChatHandler(svc)
	r.GET("/", h.Handle)
	r.POST("/", h.Handle)
	r.DELETE("/", h.Handle)
	r.PUT("/", h.Handle)
	return r
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHandleDispatch(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		wantCall string
		wantBody string
	}{
		{"get_answer", http.MethodGet, "/?type=getairesponse&input=hi", "ask:hi", `"answer to hi"`},
		{"list_answers", http.MethodGet, "/?type=getfirsttimes&input=hi", "answers:hi", `["a","b"]`},
		{"set_answer", http.MethodPost, "/?type=setairesponse&input=hi&output=hello", "teach:hi=hello", `"Success!"`},
		{"send_conversation", http.MethodPost, "/?type=sendconversation&conversation=a___b&phone=4155550100", "send:4155550100", `"Success!"`},
		{"delete_answer_any_type", http.MethodDelete, "/?input=hi&output=hello", "forget:hi=hello", `"Success!"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			w := do(newTestRouter(svc), tt.method, tt.target)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, []string{tt.wantCall}, svc.calls)
		})
	}
}

func TestHandleUnsupported(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc)

	w := do(r, http.MethodGet, "/?type=setairesponse&input=hi")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/?type=bogus")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/?type=getairesponse")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	assert.Empty(t, svc.calls)
}

func TestHandleErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.InvalidInputf("question must not be empty"), http.StatusBadRequest},
		{apperrors.ErrNoDataAvailable, http.StatusNotFound},
		{apperrors.WrapError(apperrors.ErrConflict, "q"), http.StatusConflict},
		{apperrors.StoreError("get", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{apperrors.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{context.Canceled, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := do(newTestRouter(&stubService{err: tt.err}), http.MethodGet, "/?type=getairesponse&input=hi")
			assert.Equal(t, tt.want, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}
