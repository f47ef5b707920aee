package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/config"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/engine"
	registrymock "github.com/aws-samples/sample-genai-sign-language-translator/internal/registry/mock"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/stage"
	stagemock "github.com/aws-samples/sample-genai-sign-language-translator/internal/stage/mock"
)

// fastPolicy keeps retry waits in the microsecond range so exhaustion
// tests finish quickly.
var fastPolicy = engine.Policy{MaxAttempts: 5, Interval: time.Microsecond, Multiplier: 1.0}

func newTestRunner(stages *stagemock.MockStageClient, reg *registrymock.MockRegistry) *engine.Runner {
	cfg := config.EngineConfig{
		TranscriptionPollInterval: time.Millisecond,
		TranscriptionDeadline:     time.Second,
		RegistryTTL:               time.Hour,
	}
	return engine.NewRunner(stages, reg, cfg, zap.NewNop()).
		WithPolicies(fastPolicy, fastPolicy, engine.Policy{MaxAttempts: 3, Interval: time.Microsecond, Multiplier: 1.0})
}

func textJob(handle, text string) *domain.Job {
	return &domain.Job{Handle: handle, Kind: domain.KindText, Text: text}
}

// Test: a text job succeeds without ever touching the transcription stage.
func TestRunner_TextFlow(t *testing.T) {
	stages := stagemock.NewMockStageClient()
	reg := registrymock.NewMockRegistry()
	runner := newTestRunner(stages, reg)

	exec := runner.Run(context.Background(), textJob("h-text", "hello world"))

	if exec.State != domain.StateSucceeded {
		t.Fatalf("expected Succeeded, got %s (%s)", exec.State, exec.FailureReason)
	}
	if exec.Result == nil {
		t.Fatal("expected a translation result")
	}
	if exec.Result.Gloss != "HELLO WORLD" {
		t.Errorf("unexpected gloss %q", exec.Result.Gloss)
	}
	if n := stages.Calls(stage.Transcription); n != 0 {
		t.Errorf("text flow invoked transcription %d times", n)
	}
	if n := stages.Calls(stage.Gloss); n != 1 {
		t.Errorf("expected 1 gloss call, got %d", n)
	}
	if n := stages.Calls(stage.Pose); n != 1 {
		t.Errorf("expected 1 pose call, got %d", n)
	}

	state, ok := reg.States("h-text")
	if !ok || state != domain.StateSucceeded {
		t.Errorf("registry holds %s/%v, want Succeeded", state, ok)
	}
}

// Test: a media job polls transcription until completion, then runs the
// text pipeline on the extracted transcript.
func TestRunner_MediaFlow(t *testing.T) {
	stages := stagemock.NewMockStageClient()
	reg := registrymock.NewMockRegistry()

	var fetches int
	stages.GetTranscriptionFunc = func(ctx context.Context, jobName string) (*stage.TranscriptionJob, error) {
		fetches++
		status := stage.TranscriptionInProgress
		if fetches >= 3 {
			status = stage.TranscriptionCompleted
		}
		return &stage.TranscriptionJob{JobName: jobName, Status: status}, nil
	}

	job := &domain.Job{
		Handle: "h-media",
		Kind:   domain.KindMedia,
		Media:  domain.MediaReference{Bucket: "uploads", Key: "clip.mp4"},
	}

	exec := newTestRunner(stages, reg).Run(context.Background(), job)

	if exec.State != domain.StateSucceeded {
		t.Fatalf("expected Succeeded, got %s (%s)", exec.State, exec.FailureReason)
	}
	if fetches != 3 {
		t.Errorf("expected 3 status fetches, got %d", fetches)
	}
	if n := stages.Calls(stage.Transcription); n != 1 {
		t.Errorf("expected 1 transcription start, got %d", n)
	}
	if n := stages.Calls(stage.TranscriptProcess); n != 1 {
		t.Errorf("expected 1 transcript extraction, got %d", n)
	}
	if exec.Result == nil || exec.Result.Gloss != "HELLO WORLD" {
		t.Errorf("unexpected result %+v", exec.Result)
	}
}

// Test: a gloss job goes straight to the blending stage.
func TestRunner_GlossFlow(t *testing.T) {
	stages := stagemock.NewMockStageClient()
	reg := registrymock.NewMockRegistry()

	job := &domain.Job{Handle: "h-gloss", Kind: domain.KindGloss, Gloss: "HELLO"}
	exec := newTestRunner(stages, reg).Run(context.Background(), job)

	if exec.State != domain.StateSucceeded {
		t.Fatalf("expected Succeeded, got %s (%s)", exec.State, exec.FailureReason)
	}
	if n := stages.Calls(stage.Blend); n != 1 {
		t.Errorf("expected 1 blend call, got %d", n)
	}
	if n := stages.Calls(stage.Gloss); n != 0 {
		t.Errorf("gloss flow invoked gloss generation %d times", n)
	}
	if exec.Result == nil || exec.Result.PoseURL == "" {
		t.Errorf("unexpected result %+v", exec.Result)
	}
}

// Test: a retryable gloss failure is retried up to its budget and the
// failure record names the stage.
func TestRunner_GlossRetryExhaustion(t *testing.T) {
	stages := stagemock.NewMockStageClient()
	reg := registrymock.NewMockRegistry()

	stages.GenerateGlossFunc = func(ctx context.Context, text string) (*stage.GlossResult, error) {
		return nil, stage.NewRetryable(stage.Gloss, errors.New("model endpoint timed out"))
	}

	exec := newTestRunner(stages, reg).Run(context.Background(), textJob("h-retry", "hi"))

	if exec.State != domain.StateFailed {
		t.Fatalf("expected Failed, got %s", exec.State)
	}
	if n := stages.Calls(stage.Gloss); n != 5 {
		t.Errorf("expected 5 gloss attempts, got %d", n)
	}
	if exec.FailureStage != stage.Gloss {
		t.Errorf("expected failure stage %q, got %q", stage.Gloss, exec.FailureStage)
	}
	if exec.FailureReason == "" {
		t.Error("expected a failure reason")
	}
}

// Test: a terminal stage error is never retried.
func TestRunner_TerminalErrorNotRetried(t *testing.T) {
	stages := stagemock.NewMockStageClient()
	reg := registrymock.NewMockRegistry()

	stages.GenerateGlossFunc = func(ctx context.Context, text string) (*stage.GlossResult, error) {
		return nil, stage.NewTerminal(stage.Gloss, errors.New("unsupported language"))
	}

	exec := newTestRunner(stages, reg).Run(context.Background(), textJob("h-terminal", "hi"))

	if exec.State != domain.StateFailed {
		t.Fatalf("expected Failed, got %s", exec.State)
	}
	if n := stages.Calls(stage.Gloss); n != 1 {
		t.Errorf("expected exactly 1 gloss attempt, got %d", n)
	}
}

// Test: the transcription start honors its smaller retry budget.
func TestRunner_TranscriptionRetryBudget(t *testing.T) {
	stages := stagemock.NewMockStageClient()
	reg := registrymock.NewMockRegistry()

	stages.StartTranscriptionFunc = func(ctx context.Context, jobName string, media domain.MediaReference) error {
		return stage.NewRetryable(stage.Transcription, errors.New("service throttled"))
	}

	job := &domain.Job{
		Handle: "h-throttle",
		Kind:   domain.KindMedia,
		Media:  domain.MediaReference{Bucket: "uploads", Key: "clip.mp4"},
	}
	exec := newTestRunner(stages, reg).Run(context.Background(), job)

	if exec.State != domain.StateFailed {
		t.Fatalf("expected Failed, got %s", exec.State)
	}
	if n := stages.Calls(stage.Transcription); n != 3 {
		t.Errorf("expected 3 start attempts, got %d", n)
	}
	if exec.FailureStage != stage.Transcription {
		t.Errorf("expected failure stage %q, got %q", stage.Transcription, exec.FailureStage)
	}
}

// Test: a transcription job that never completes fails closed at the
// wall-clock deadline instead of polling forever.
func TestRunner_TranscriptionDeadline(t *testing.T) {
	stages := stagemock.NewMockStageClient()
	reg := registrymock.NewMockRegistry()

	stages.GetTranscriptionFunc = func(ctx context.Context, jobName string) (*stage.TranscriptionJob, error) {
		return &stage.TranscriptionJob{JobName: jobName, Status: stage.TranscriptionInProgress}, nil
	}

	cfg := config.EngineConfig{
		TranscriptionPollInterval: time.Millisecond,
		TranscriptionDeadline:     20 * time.Millisecond,
		RegistryTTL:               time.Hour,
	}
	runner := engine.NewRunner(stages, reg, cfg, zap.NewNop()).
		WithPolicies(fastPolicy, fastPolicy, fastPolicy)

	job := &domain.Job{
		Handle: "h-deadline",
		Kind:   domain.KindMedia,
		Media:  domain.MediaReference{Bucket: "uploads", Key: "clip.mp4"},
	}
	exec := runner.Run(context.Background(), job)

	if exec.State != domain.StateFailed {
		t.Fatalf("expected Failed, got %s", exec.State)
	}
	if exec.FailureStage != stage.Transcription {
		t.Errorf("expected failure stage %q, got %q", stage.Transcription, exec.FailureStage)
	}
}

// Test: a FAILED transcription status terminates the run with the stage
// recorded on the execution.
func TestRunner_TranscriptionJobFailed(t *testing.T) {
	stages := stagemock.NewMockStageClient()
	reg := registrymock.NewMockRegistry()

	stages.GetTranscriptionFunc = func(ctx context.Context, jobName string) (*stage.TranscriptionJob, error) {
		return &stage.TranscriptionJob{JobName: jobName, Status: stage.TranscriptionFailed}, nil
	}

	job := &domain.Job{
		Handle: "h-tfailed",
		Kind:   domain.KindMedia,
		Media:  domain.MediaReference{Bucket: "uploads", Key: "clip.mp4"},
	}
	exec := newTestRunner(stages, reg).Run(context.Background(), job)

	if exec.State != domain.StateFailed {
		t.Fatalf("expected Failed, got %s", exec.State)
	}
	if exec.FailureStage != stage.Transcription {
		t.Errorf("expected failure stage %q, got %q", stage.Transcription, exec.FailureStage)
	}
	if exec.FailureReason != "transcription job failed" {
		t.Errorf("unexpected failure reason %q", exec.FailureReason)
	}
	if n := stages.Calls(stage.TranscriptProcess); n != 0 {
		t.Errorf("failed transcription still processed transcript %d times", n)
	}
}

// Test: cancelling the context during the poll wait ends the run.
func TestRunner_ContextCancelDuringWait(t *testing.T) {
	stages := stagemock.NewMockStageClient()
	reg := registrymock.NewMockRegistry()

	stages.GetTranscriptionFunc = func(ctx context.Context, jobName string) (*stage.TranscriptionJob, error) {
		return &stage.TranscriptionJob{JobName: jobName, Status: stage.TranscriptionInProgress}, nil
	}

	cfg := config.EngineConfig{
		TranscriptionPollInterval: time.Hour,
		TranscriptionDeadline:     time.Hour,
		RegistryTTL:               time.Hour,
	}
	runner := engine.NewRunner(stages, reg, cfg, zap.NewNop()).
		WithPolicies(fastPolicy, fastPolicy, fastPolicy)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	job := &domain.Job{
		Handle: "h-cancel",
		Kind:   domain.KindMedia,
		Media:  domain.MediaReference{Bucket: "uploads", Key: "clip.mp4"},
	}

	done := make(chan *domain.Execution, 1)
	go func() { done <- runner.Run(ctx, job) }()

	select {
	case exec := <-done:
		if exec.State != domain.StateFailed {
			t.Errorf("expected Failed, got %s", exec.State)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after context cancellation")
	}
}
