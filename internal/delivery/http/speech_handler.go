package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/usecase"
)

// SpeechHandler serves the synchronous text-to-speech endpoint.
type SpeechHandler struct {
	speechUC *usecase.SynthesizeSpeechUsecase
	logger   *zap.Logger
}

// NewSpeechHandler creates a new SpeechHandler.
func NewSpeechHandler(speechUC *usecase.SynthesizeSpeechUsecase, logger *zap.Logger) *SpeechHandler {
	return &SpeechHandler{
		speechUC: speechUC,
		logger:   logger,
	}
}

type speechRequest struct {
	Text    string `json:"text" binding:"required"`
	VoiceID string `json:"voiceId"`
}

// Synthesize handles POST /api/v1/text-to-speech
func (h *SpeechHandler) Synthesize(c *gin.Context) {
	var req speechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Text is required"})
		return
	}

	audio, err := h.speechUC.Execute(c.Request.Context(), req.Text, req.VoiceID)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyText) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Text is required"})
			return
		}
		h.logger.Error("Speech synthesis failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Speech stage unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audioContent": audio})
}
