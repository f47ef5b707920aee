package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/publisher"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/registry"
)

// SubmitRequest is a flattened translation submission. Exactly one of Text,
// Gloss, or Bucket+Key selects the flow.
type SubmitRequest struct {
	Text         string
	Gloss        string
	Bucket       string
	Key          string
	ConnectionID string
}

// SubmitTranslationUsecase validates a submission, registers a pending
// execution, and hands the job to the broker. It never waits for the run.
type SubmitTranslationUsecase struct {
	reg    registry.Registry
	pub    publisher.Publisher
	logger *zap.Logger
}

// NewSubmitTranslationUsecase creates a new SubmitTranslationUsecase.
func NewSubmitTranslationUsecase(reg registry.Registry, pub publisher.Publisher, logger *zap.Logger) *SubmitTranslationUsecase {
	return &SubmitTranslationUsecase{
		reg:    reg,
		pub:    pub,
		logger: logger,
	}
}

// Execute validates the request and starts an asynchronous workflow run,
// returning the execution handle the client polls with.
func (uc *SubmitTranslationUsecase) Execute(ctx context.Context, req *SubmitRequest) (string, error) {
	job, err := uc.buildJob(req)
	if err != nil {
		return "", err
	}
	return uc.Dispatch(ctx, job)
}

// Dispatch registers a pending execution for an already-built job and
// publishes it. Used by both the HTTP submit path and the session manager.
func (uc *SubmitTranslationUsecase) Dispatch(ctx context.Context, job *domain.Job) (string, error) {
	now := time.Now().UTC()
	exec := &domain.Execution{
		Handle:    job.Handle,
		State:     domain.StateStart,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := uc.reg.Create(ctx, exec); err != nil {
		uc.logger.Error("Failed to register execution", zap.Error(err), zap.String("handle", job.Handle))
		return "", fmt.Errorf("register execution: %w", err)
	}

	if err := uc.pub.Publish(ctx, job); err != nil {
		uc.logger.Error("Failed to publish job to queue", zap.Error(err), zap.String("handle", job.Handle))
		// The run will never start; leave a failed record for pollers.
		exec.State = domain.StateFailed
		exec.FailureReason = domain.ErrPublishFailed.Error()
		exec.UpdatedAt = time.Now().UTC()
		_ = uc.reg.Update(ctx, exec)
		return "", domain.ErrPublishFailed
	}

	uc.logger.Info("Translation job submitted",
		zap.String("handle", job.Handle),
		zap.String("kind", string(job.Kind)),
	)
	return job.Handle, nil
}

// buildJob validates the submission shape and creates the immutable job.
func (uc *SubmitTranslationUsecase) buildJob(req *SubmitRequest) (*domain.Job, error) {
	jobID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate UUIDv7: %w", err)
	}

	job := &domain.Job{
		JobID:        jobID,
		Handle:       jobID.String(),
		ConnectionID: req.ConnectionID,
		CreatedAt:    time.Now().UTC(),
	}

	switch {
	case req.Text != "":
		if strings.TrimSpace(req.Text) == "" {
			return nil, domain.ErrEmptyText
		}
		job.Kind = domain.KindText
		job.Text = req.Text

	case req.Gloss != "":
		if strings.TrimSpace(req.Gloss) == "" {
			return nil, domain.ErrEmptyGloss
		}
		job.Kind = domain.KindGloss
		job.Gloss = req.Gloss

	case req.Bucket != "" || req.Key != "":
		if req.Bucket == "" || req.Key == "" {
			return nil, domain.ErrInvalidMediaReference
		}
		job.Kind = domain.KindMedia
		job.Media = domain.MediaReference{Bucket: req.Bucket, Key: req.Key}

	default:
		return nil, domain.ErrInvalidSubmission
	}

	return job, nil
}
