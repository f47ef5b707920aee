package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/engine"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/results"
)

// RunTranslationUsecase executes one consumed job end to end: engine run,
// terminal registry record, and a result-bus push for session-originated jobs.
type RunTranslationUsecase struct {
	runner *engine.Runner
	bus    results.Bus
	logger *zap.Logger
}

// NewRunTranslationUsecase creates a new RunTranslationUsecase.
func NewRunTranslationUsecase(runner *engine.Runner, bus results.Bus, logger *zap.Logger) *RunTranslationUsecase {
	return &RunTranslationUsecase{
		runner: runner,
		bus:    bus,
		logger: logger,
	}
}

// Execute runs the workflow for one job. A Failed execution is a delivered
// outcome, not an error; an error here means the job itself was unusable.
func (uc *RunTranslationUsecase) Execute(ctx context.Context, job *domain.Job) error {
	if !job.Kind.IsValid() {
		return fmt.Errorf("job %s: unknown input kind %q", job.Handle, job.Kind)
	}

	exec := uc.runner.Run(ctx, job)

	if job.ConnectionID == "" {
		return nil
	}

	payload, err := terminalPayload(exec)
	if err != nil {
		return fmt.Errorf("job %s: encode terminal payload: %w", job.Handle, err)
	}
	if err := uc.bus.Publish(ctx, &results.Delivery{
		ConnectionID: job.ConnectionID,
		Payload:      payload,
	}); err != nil {
		uc.logger.Error("Failed to publish result for session",
			zap.String("handle", job.Handle),
			zap.String("connection_id", job.ConnectionID),
			zap.Error(err),
		)
		return fmt.Errorf("job %s: publish result: %w", job.Handle, err)
	}
	return nil
}

// terminalPayload renders the wire document pushed to a streaming client.
func terminalPayload(exec *domain.Execution) (json.RawMessage, error) {
	if exec.State == domain.StateSucceeded && exec.Result != nil {
		return json.Marshal(exec.Result)
	}
	return json.Marshal(map[string]string{
		"Error": exec.FailureReason,
		"Stage": exec.FailureStage,
	})
}
