package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/usecase"
)

// TranslateHandler serves the audio-to-sign endpoint. One POST route carries
// two operations, dispatched by parameter shape for wire compatibility with
// the original API: a handle means poll, anything else is a submission.
type TranslateHandler struct {
	submitUC *usecase.SubmitTranslationUsecase
	pollUC   *usecase.PollTranslationUsecase
	logger   *zap.Logger
}

// NewTranslateHandler creates a new TranslateHandler.
func NewTranslateHandler(submitUC *usecase.SubmitTranslationUsecase, pollUC *usecase.PollTranslationUsecase, logger *zap.Logger) *TranslateHandler {
	return &TranslateHandler{
		submitUC: submitUC,
		pollUC:   pollUC,
		logger:   logger,
	}
}

// Handle handles POST /api/v1/audio-to-sign
func (h *TranslateHandler) Handle(c *gin.Context) {
	if handle := c.Query("sfn_execution_arn"); handle != "" {
		h.poll(c, handle)
		return
	}
	h.submit(c)
}

func (h *TranslateHandler) submit(c *gin.Context) {
	req := &usecase.SubmitRequest{
		Text:   c.Query("Text"),
		Gloss:  c.Query("Gloss"),
		Bucket: c.Query("BucketName"),
		Key:    c.Query("KeyName"),
	}

	handle, err := h.submitUC.Execute(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyText),
			errors.Is(err, domain.ErrEmptyGloss),
			errors.Is(err, domain.ErrInvalidMediaReference),
			errors.Is(err, domain.ErrInvalidSubmission):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrPublishFailed):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
		default:
			h.logger.Error("Submit translation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"sfn_execution_arn": handle})
}

func (h *TranslateHandler) poll(c *gin.Context, handle string) {
	exec, err := h.pollUC.Execute(c.Request.Context(), handle)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownHandle) {
			c.JSON(http.StatusNotFound, gin.H{"Error": err.Error()})
			return
		}
		h.logger.Error("Poll translation failed", zap.Error(err), zap.String("handle", handle))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	switch {
	case !exec.State.IsTerminal():
		// Same shape as the submit response; the client keeps polling.
		c.JSON(http.StatusOK, gin.H{"sfn_execution_arn": handle})
	case exec.State == domain.StateSucceeded:
		c.JSON(http.StatusOK, exec.Result)
	default:
		// Business-level failure is a terminal document, not a transport error.
		c.JSON(http.StatusOK, gin.H{"Error": exec.FailureReason, "Stage": exec.FailureStage})
	}
}
