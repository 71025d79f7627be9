package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fin-assist/internal/history"
	"fin-assist/internal/service"
)

// SessionHandler expone el ciclo de vida de sesiones persistidas:
// listar, guardar, cargar, borrar y exportar.
type SessionHandler struct {
	logger *zap.Logger
	chat   *service.ChatService
	store  history.Store
}

func NewSessionHandler(logger *zap.Logger, chat *service.ChatService, store history.Store) *SessionHandler {
	return &SessionHandler{logger: logger, chat: chat, store: store}
}

// ListSessions maneja GET /sessions.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	summaries, err := h.store.List()
	if err != nil {
		h.logger.Error("list sessions failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": summaries})
}

// SaveSession maneja POST /sessions/save. Sin nombre explicito usa el
// nombre derivado de la sesion actual.
func (h *SessionHandler) SaveSession(c *gin.Context) {
	var req struct {
		SessionName string `json:"session_name"`
	}
	_ = c.ShouldBindJSON(&req)

	var (
		path string
		err  error
	)
	if req.SessionName != "" {
		path, err = h.chat.SaveSessionAs(req.SessionName)
	} else {
		path, err = h.chat.SaveSession()
	}

	if errors.Is(err, service.ErrEmptyHistory) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat history is empty"})
		return
	}
	if err != nil {
		h.logger.Error("save session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"path":         path,
		"session_name": h.chat.SessionName(),
	})
}

// LoadSession maneja POST /sessions/:id/load: reemplaza el historial en
// memoria por la sesion guardada.
func (h *SessionHandler) LoadSession(c *gin.Context) {
	identifier := c.Param("id")

	messages, err := h.chat.LoadSession(identifier)
	switch {
	case errors.Is(err, history.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	case errors.Is(err, history.ErrInvalidFormat):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid chat history file format"})
		return
	case err != nil:
		h.logger.Error("load session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":     messages,
		"session_name": h.chat.SessionName(),
	})
}

// DeleteSession maneja DELETE /sessions/:id. Un identificador
// inexistente no es un error del servidor: responde 404.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if !h.store.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"deleted": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ExportText maneja GET /export/text.
func (h *SessionHandler) ExportText(c *gin.Context) {
	c.String(http.StatusOK, history.ExportText(h.chat.History()))
}

// ExportJSON maneja GET /export/json: el historial crudo, sin sobre.
func (h *SessionHandler) ExportJSON(c *gin.Context) {
	data, err := history.ExportJSON(h.chat.History())
	if err != nil {
		h.logger.Error("export json failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export history"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}
