package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/stage"
)

// SynthesizeSpeechUsecase invokes the speech stage synchronously; no
// execution record is involved because the call is cheap enough to block on.
type SynthesizeSpeechUsecase struct {
	stages stage.Client
	logger *zap.Logger
}

// NewSynthesizeSpeechUsecase creates a new SynthesizeSpeechUsecase.
func NewSynthesizeSpeechUsecase(stages stage.Client, logger *zap.Logger) *SynthesizeSpeechUsecase {
	return &SynthesizeSpeechUsecase{
		stages: stages,
		logger: logger,
	}
}

// Execute converts text to base64-encoded audio with the given voice.
func (uc *SynthesizeSpeechUsecase) Execute(ctx context.Context, text, voiceID string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyText
	}

	audio, err := uc.stages.SynthesizeSpeech(ctx, text, voiceID)
	if err != nil {
		uc.logger.Error("Speech synthesis failed", zap.Error(err))
		return "", err
	}
	return audio, nil
}
