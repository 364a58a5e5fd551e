package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf16"

	apperrors "chatbot/errors"

	"go.uber.org/zap"
)

// MaxConversationLength is the longest conversation that fits one message,
// in UTF-16 code units as SMS gateways count them. Emoji outside the BMP
// take two.
const MaxConversationLength = 240

// LineSeparator is how clients encode newlines inside a conversation parameter.
const LineSeparator = "___"

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// Message is a single outbound SMS.
type Message struct {
	Message     string `json:"message"`
	PhoneNumber string `json:"phone_number"`
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// PrepareConversation validates a conversation and phone number and builds
// the message to send. The phone must be ten digits and is sent as +1<phone>.
func PrepareConversation(conversation, phone string) (Message, error) {
	text := strings.ReplaceAll(conversation, LineSeparator, "\n")
	if strings.TrimSpace(text) == "" {
		return Message{}, apperrors.InvalidInputf("conversation must not be empty")
	}
	if n := messageLength(text); n > MaxConversationLength {
		return Message{}, apperrors.InvalidInputf("cannot send conversation longer than %d characters (got %d)", MaxConversationLength, n)
	}
	if !phonePattern.MatchString(phone) {
		return Message{}, apperrors.InvalidInputf("phone number must be 10 digits")
	}
	return Message{Message: text, PhoneNumber: "+1" + phone}, nil
}

func messageLength(text string) int {
	return len(utf16.Encode([]rune(text)))
}

// WebhookSender posts messages as JSON to an SMS gateway.
type WebhookSender struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewWebhookSender(url string, timeout time.Duration, logger *zap.Logger) *WebhookSender {
	return &WebhookSender{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (w *WebhookSender) Send(ctx context.Context, msg Message) error {
	jsonBody, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrServiceUnavailable, fmt.Sprintf("sms gateway: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.WrapErrorf(apperrors.ErrServiceUnavailable, "sms gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	w.logger.Info("Sent message", zap.String("target", msg.PhoneNumber), zap.Int("length", messageLength(msg.Message)))
	return nil
}

// LogSender only logs messages. Used when no gateway is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) Send(_ context.Context, msg Message) error {
	l.logger.Info("SMS gateway not configured, message logged only",
		zap.String("target", msg.PhoneNumber),
		zap.String("message", msg.Message))
	return nil
}
