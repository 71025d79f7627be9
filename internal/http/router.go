package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, chatH *ChatHandler, sessionH *SessionHandler) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.POST("/chat", chatH.PostChat)
	r.POST("/summary", chatH.PostSummary)
	r.POST("/corpus/update", chatH.UpdateCorpus)
	r.GET("/history", chatH.GetHistory)
	r.POST("/history/clear", chatH.ClearHistory)

	sessions := r.Group("/sessions")
	sessions.GET("", sessionH.ListSessions)
	sessions.POST("/save", sessionH.SaveSession)
	sessions.POST("/:id/load", sessionH.LoadSession)
	sessions.DELETE("/:id", sessionH.DeleteSession)

	export := r.Group("/export")
	export.GET("/text", sessionH.ExportText)
	export.GET("/json", sessionH.ExportJSON)

	return r
}

// zapLoggerMiddleware registra cada request con un request_id generado.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
