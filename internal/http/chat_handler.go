package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fin-assist/internal/domain"
	"fin-assist/internal/llm"
	"fin-assist/internal/service"
)

// ChatHandler expone el orquestador de conversacion por HTTP.
type ChatHandler struct {
	logger *zap.Logger
	chat   *service.ChatService
}

func NewChatHandler(logger *zap.Logger, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{logger: logger, chat: chat}
}

// PostChat maneja POST /chat.
func (h *ChatHandler) PostChat(c *gin.Context) {
	var req struct {
		Question string `json:"question" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userMsg, assistantMsg, err := h.chat.Answer(c.Request.Context(), req.Question)
	if err != nil {
		h.respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_message":      userMsg,
		"assistant_message": assistantMsg,
		"session_name":      h.chat.SessionName(),
	})
}

// PostSummary maneja POST /summary. Sin fecha usa el dia UTC actual.
func (h *ChatHandler) PostSummary(c *gin.Context) {
	var req struct {
		Date string `json:"date"`
	}
	// El cuerpo es opcional; un body vacio deja la fecha en blanco.
	_ = c.ShouldBindJSON(&req)

	var (
		userMsg, assistantMsg domain.Message
		err                   error
	)
	if req.Date == "" {
		userMsg, assistantMsg, err = h.chat.SummarizeToday(c.Request.Context())
	} else {
		userMsg, assistantMsg, err = h.chat.SummarizeDay(c.Request.Context(), req.Date)
	}

	if errors.Is(err, service.ErrNoNewsForDay) {
		c.JSON(http.StatusNotFound, gin.H{"error": "нет новостей за этот день, обновите базу данных"})
		return
	}
	if err != nil {
		h.respondChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_message":      userMsg,
		"assistant_message": assistantMsg,
		"session_name":      h.chat.SessionName(),
	})
}

// UpdateCorpus maneja POST /corpus/update: corre la ingesta y reemplaza
// el corpus. Un fallo parcial por canal no es fatal; se reporta junto
// con la cantidad cargada.
func (h *ChatHandler) UpdateCorpus(c *gin.Context) {
	count, err := h.chat.UpdateCorpus(c.Request.Context())
	if err != nil && count == 0 {
		h.logger.Error("corpus update failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"documents": count}
	if err != nil {
		resp["warning"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// GetHistory maneja GET /history.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"messages":     h.chat.History(),
		"session_name": h.chat.SessionName(),
	})
}

// ClearHistory maneja POST /history/clear. Solo descarta la sesion en
// memoria; lo persistido queda intacto.
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	h.chat.ClearSession()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// respondChatError traduce la taxonomia de errores a respuestas HTTP
// legibles sin tumbar el proceso.
func (h *ChatHandler) respondChatError(c *gin.Context, err error) {
	var upstream *llm.UpstreamError
	switch {
	case errors.As(err, &upstream):
		h.logger.Error("upstream completion error",
			zap.Int("status", upstream.StatusCode),
			zap.String("body", upstream.Body),
		)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":           "completion service error",
			"upstream_status": upstream.StatusCode,
			"upstream_body":   upstream.Body,
		})
	case errors.Is(err, llm.ErrAPIKeyMissing):
		h.logger.Error("llm api key missing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "llm api key not configured"})
	default:
		h.logger.Error("chat failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
