package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/delivery/http/middleware"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/session"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/usecase"
)

const maxBodySize = 1 << 20 // 1 MB

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	SubmitUC        *usecase.SubmitTranslationUsecase
	PollUC          *usecase.PollTranslationUsecase
	SpeechUC        *usecase.SynthesizeSpeechUsecase
	SessionManager  *session.Manager
	Logger          *zap.Logger
	RateLimitPerMin int
}

// NewRouter creates and configures the Gin router with all routes and middleware.
func NewRouter(deps *RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// Metrics endpoint (no rate limiting)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Health check (no rate limiting)
		healthHandler := NewHealthHandler(deps.Logger)
		v1.GET("/health", healthHandler.Health)

		// Translation submit/poll (with rate limiting)
		limited := v1.Group("")
		limited.Use(middleware.RateLimiter(deps.RateLimitPerMin))

		translateHandler := NewTranslateHandler(deps.SubmitUC, deps.PollUC, deps.Logger)
		limited.POST("/audio-to-sign", translateHandler.Handle)

		speechHandler := NewSpeechHandler(deps.SpeechUC, deps.Logger)
		limited.POST("/text-to-speech", speechHandler.Synthesize)

		// WebSocket for streaming clients
		streamHandler := NewStreamHandler(deps.SessionManager, deps.Logger)
		v1.GET("/stream", streamHandler.Stream)
	}

	return router
}
