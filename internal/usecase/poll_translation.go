package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/registry"
)

// PollTranslationUsecase resolves a handle to the execution's current state.
type PollTranslationUsecase struct {
	reg    registry.Registry
	logger *zap.Logger
}

// NewPollTranslationUsecase creates a new PollTranslationUsecase.
func NewPollTranslationUsecase(reg registry.Registry, logger *zap.Logger) *PollTranslationUsecase {
	return &PollTranslationUsecase{
		reg:    reg,
		logger: logger,
	}
}

// Execute looks up an execution by handle. A terminal execution is evicted
// on first read: the terminal payload is delivered at most once, and a
// re-poll afterwards reports an unknown handle.
func (uc *PollTranslationUsecase) Execute(ctx context.Context, handle string) (*domain.Execution, error) {
	exec, err := uc.reg.Get(ctx, handle)
	if err != nil {
		uc.logger.Debug("Execution not found", zap.String("handle", handle), zap.Error(err))
		return nil, domain.ErrUnknownHandle
	}

	if exec.State.IsTerminal() {
		if err := uc.reg.Delete(ctx, handle); err != nil {
			// Eviction is best effort; the TTL bounds growth regardless.
			uc.logger.Warn("Failed to evict delivered execution",
				zap.String("handle", handle), zap.Error(err))
		}
	}
	return exec, nil
}
