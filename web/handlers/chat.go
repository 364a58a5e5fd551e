package handlers

import (
	"context"
	"fmt"
	"net/http"

	"chatbot/chatbot"
	"chatbot/utils"
	"chatbot/web/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Request types accepted in the "type" query parameter.
const (
	TypeGetAIResponse    = "getairesponse"
	TypeGetFirstTimes    = "getfirsttimes"
	TypeSetAIResponse    = "setairesponse"
	TypeSendConversation = "sendconversation"
)

// SuccessMessage is the body of every successful mutation.
const SuccessMessage = "Success!"

const logInputLimit = 200

// ChatService is what the handler needs from the chatbot.
type ChatService interface {
	Ask(ctx context.Context, input string) (chatbot.Resolution, error)
	Teach(ctx context.Context, question, answer string) (chatbot.Mutation, error)
	Forget(ctx context.Context, question, answer string) (chatbot.Mutation, error)
	Answers(ctx context.Context, question string) ([]string, error)
	SendConversation(ctx context.Context, conversation, phone string) error
}

type ChatHandler struct {
	service ChatService
}

// ChatRequest mirrors the query parameters of the single chat endpoint.
type ChatRequest struct {
	Type         string `form:"type"`
	Input        string `form:"input"`
	Output       string `form:"output"`
	Conversation string `form:"conversation"`
	Phone        string `form:"phone"`
}

func NewChatHandler(service ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Handle dispatches on HTTP method and the type parameter.
func (h *ChatHandler) Handle(c *gin.Context) {
	logger := middleware.LoggerFrom(c)

	var req ChatRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Info("Failed to bind chat request", zap.Error(err))
		respondWithClientError(c, http.StatusBadRequest, "Invalid request")
		return
	}

	logger = logger.With(
		zap.String("method", c.Request.Method),
		zap.String("type", req.Type),
		zap.String("input", utils.Truncate(req.Input, logInputLimit)))

	switch c.Request.Method {
	case http.MethodGet:
		switch req.Type {
		case TypeGetAIResponse:
			h.getAIResponse(c, req, logger)
		case TypeGetFirstTimes:
			h.getFirstTimes(c, req, logger)
		default:
			h.unsupported(c, req, logger)
		}

	case http.MethodPost:
		switch req.Type {
		case TypeSetAIResponse:
			h.setAIResponse(c, req, logger)
		case TypeSendConversation:
			h.sendConversation(c, req, logger)
		default:
			h.unsupported(c, req, logger)
		}

	case http.MethodDelete:
		h.deleteAIResponse(c, req, logger)

	default:
		respondWithClientError(c, http.StatusMethodNotAllowed, fmt.Sprintf("method %q is not supported", c.Request.Method))
	}
}

func (h *ChatHandler) getAIResponse(c *gin.Context, req ChatRequest, logger *zap.Logger) {
	res, err := h.service.Ask(c.Request.Context(), req.Input)
	if err != nil {
		respondWithError(c, err, logger)
		return
	}
	c.JSON(http.StatusOK, res.Answer)
}

func (h *ChatHandler) getFirstTimes(c *gin.Context, req ChatRequest, logger *zap.Logger) {
	answers, err := h.service.Answers(c.Request.Context(), req.Input)
	if err != nil {
		respondWithError(c, err, logger)
		return
	}
	c.JSON(http.StatusOK, answers)
}

func (h *ChatHandler) setAIResponse(c *gin.Context, req ChatRequest, logger *zap.Logger) {
	if _, err := h.service.Teach(c.Request.Context(), req.Input, req.Output); err != nil {
		respondWithError(c, err, logger)
		return
	}
	c.JSON(http.StatusOK, SuccessMessage)
}

func (h *ChatHandler) deleteAIResponse(c *gin.Context, req ChatRequest, logger *zap.Logger) {
	if _, err := h.service.Forget(c.Request.Context(), req.Input, req.Output); err != nil {
		respondWithError(c, err, logger)
		return
	}
	c.JSON(http.StatusOK, SuccessMessage)
}

func (h *ChatHandler) sendConversation(c *gin.Context, req ChatRequest, logger *zap.Logger) {
	if err := h.service.SendConversation(c.Request.Context(), req.Conversation, req.Phone); err != nil {
		respondWithError(c, err, logger, zap.String("phone", req.Phone))
		return
	}
	c.JSON(http.StatusOK, SuccessMessage)
}

func (h *ChatHandler) unsupported(c *gin.Context, req ChatRequest, logger *zap.Logger) {
	logger.Info("Unsupported request type")
	respondWithClientError(c, http.StatusBadRequest, fmt.Sprintf("type %q is not supported", req.Type))
}

// Health reports liveness.
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
