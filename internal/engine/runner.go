package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/config"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/metrics"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/registry"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/stage"
)

// errTranscriptionDeadline fails the await/poll loop closed once the
// configured wall-clock budget is spent.
var errTranscriptionDeadline = errors.New("transcription did not reach a terminal status within the deadline")

// Runner executes the workflow state machine for one job at a time. A single
// Runner is shared by all worker goroutines; per-run state lives on the stack.
type Runner struct {
	stages stage.Client
	reg    registry.Registry
	logger *zap.Logger

	pollInterval          time.Duration
	transcriptionDeadline time.Duration

	glossPolicy      Policy
	posePolicy       Policy
	transcriptPolicy Policy
}

// NewRunner creates a workflow runner with the default stage retry policies.
func NewRunner(stages stage.Client, reg registry.Registry, cfg config.EngineConfig, logger *zap.Logger) *Runner {
	return &Runner{
		stages:                stages,
		reg:                   reg,
		logger:                logger,
		pollInterval:          cfg.TranscriptionPollInterval,
		transcriptionDeadline: cfg.TranscriptionDeadline,
		glossPolicy:           GlossPolicy,
		posePolicy:            PosePolicy,
		transcriptPolicy:      TranscriptPolicy,
	}
}

// WithPolicies overrides the stage retry budgets.
func (r *Runner) WithPolicies(gloss, pose, transcript Policy) *Runner {
	r.glossPolicy = gloss
	r.posePolicy = pose
	r.transcriptPolicy = transcript
	return r
}

// runState is the data accumulated across one execution's transitions.
type runState struct {
	transcriptionJobName string
	lastStatus           string
	text                 string
	gloss                *stage.GlossResult
	result               *domain.TranslationResult
}

// Run drives one execution from Start to a terminal state, recording every
// transition in the registry. Failures are encoded in the returned execution,
// never as a Go error: a Failed run is a delivered outcome.
func (r *Runner) Run(ctx context.Context, job *domain.Job) *domain.Execution {
	started := time.Now().UTC()
	exec := &domain.Execution{
		Handle:    job.Handle,
		State:     domain.StateStart,
		StartedAt: started,
		UpdatedAt: started,
	}
	r.record(ctx, exec)

	run := &runState{
		// Fresh job name per run, as the transcription stage requires.
		transcriptionJobName: uuid.NewString(),
		text:                 job.Text,
	}

	ev := Event{Kind: EventStart, Input: job.Kind}
	var deadline time.Time

	for !exec.State.IsTerminal() {
		next, effect := Next(exec.State, ev)

		if next == domain.StateTranscribing && exec.State == domain.StateStart {
			deadline = time.Now().Add(r.transcriptionDeadline)
		}

		exec.State = next
		exec.UpdatedAt = time.Now().UTC()

		if next.IsTerminal() {
			r.finish(exec, run, ev)
			r.record(ctx, exec)
			break
		}
		r.record(ctx, exec)

		ev = r.perform(ctx, effect, job, run, deadline)
	}

	flow := string(job.Kind)
	status := "succeeded"
	if exec.State == domain.StateFailed {
		status = "failed"
	}
	metrics.ExecutionsTotal.WithLabelValues(flow, status).Inc()
	metrics.ExecutionDuration.WithLabelValues(flow).Observe(time.Since(started).Seconds())

	r.logger.Info("Workflow execution finished",
		zap.String("handle", exec.Handle),
		zap.String("flow", flow),
		zap.String("state", string(exec.State)),
	)
	return exec
}

// perform executes one effect and turns its outcome into the next event.
func (r *Runner) perform(ctx context.Context, effect Effect, job *domain.Job, run *runState, deadline time.Time) Event {
	switch effect {
	case EffectStartTranscription:
		err := withRetry(ctx, r.transcriptPolicy, stage.Transcription, r.logger, func() error {
			return r.stages.StartTranscription(ctx, run.transcriptionJobName, job.Media)
		})
		if err != nil {
			return Event{Kind: EventStageFailed, Err: err}
		}
		return Event{Kind: EventStageAccepted}

	case EffectWait:
		if !deadline.IsZero() && time.Now().After(deadline) {
			return Event{Kind: EventStageFailed, Err: stage.NewTerminal(stage.Transcription, errTranscriptionDeadline)}
		}
		select {
		case <-ctx.Done():
			return Event{Kind: EventStageFailed, Err: ctx.Err()}
		case <-time.After(r.pollInterval):
		}
		return Event{Kind: EventWaitElapsed}

	case EffectFetchTranscription:
		var tj *stage.TranscriptionJob
		err := withRetry(ctx, r.transcriptPolicy, stage.Transcription, r.logger, func() error {
			var ferr error
			tj, ferr = r.stages.GetTranscription(ctx, run.transcriptionJobName)
			return ferr
		})
		if err != nil {
			return Event{Kind: EventStageFailed, Err: err}
		}
		run.lastStatus = tj.Status
		return Event{Kind: EventStatusFetched, Status: tj.Status}

	case EffectEvaluateStatus:
		return Event{Kind: EventStatusFetched, Status: run.lastStatus}

	case EffectProcessTranscript:
		var text string
		err := withRetry(ctx, r.transcriptPolicy, stage.TranscriptProcess, r.logger, func() error {
			var ferr error
			text, ferr = r.stages.ProcessTranscript(ctx, run.transcriptionJobName)
			return ferr
		})
		if err != nil {
			return Event{Kind: EventStageFailed, Err: err}
		}
		run.text = text
		return Event{Kind: EventStageSucceeded, Transcript: text}

	case EffectInvokeGloss:
		var gr *stage.GlossResult
		err := withRetry(ctx, r.glossPolicy, stage.Gloss, r.logger, func() error {
			var ferr error
			gr, ferr = r.stages.GenerateGloss(ctx, run.text)
			return ferr
		})
		if err != nil {
			return Event{Kind: EventStageFailed, Err: err}
		}
		run.gloss = gr
		return Event{Kind: EventStageSucceeded, Gloss: gr}

	case EffectInvokePose:
		var tr *domain.TranslationResult
		err := withRetry(ctx, r.posePolicy, stage.Pose, r.logger, func() error {
			var ferr error
			tr, ferr = r.stages.GeneratePose(ctx, run.gloss.Gloss, run.gloss.Text)
			return ferr
		})
		if err != nil {
			return Event{Kind: EventStageFailed, Err: err}
		}
		run.result = tr
		return Event{Kind: EventStageSucceeded, Result: tr}

	case EffectInvokeBlend:
		var tr *domain.TranslationResult
		err := withRetry(ctx, r.posePolicy, stage.Blend, r.logger, func() error {
			var ferr error
			tr, ferr = r.stages.BlendPose(ctx, job.Gloss)
			return ferr
		})
		if err != nil {
			return Event{Kind: EventStageFailed, Err: err}
		}
		run.result = tr
		return Event{Kind: EventStageSucceeded, Result: tr}
	}

	return Event{Kind: EventStageFailed, Err: errors.New("no effect to perform")}
}

// finish fixes the terminal result on the execution record.
func (r *Runner) finish(exec *domain.Execution, run *runState, ev Event) {
	if exec.State == domain.StateSucceeded {
		exec.Result = run.result
		return
	}

	switch {
	case ev.Err != nil:
		exec.FailureReason = ev.Err.Error()
		var se *stage.Error
		if errors.As(ev.Err, &se) {
			exec.FailureStage = se.Stage
			metrics.StageFailuresTotal.WithLabelValues(se.Stage).Inc()
		}
	case ev.Kind == EventStatusFetched && ev.Status == stage.TranscriptionFailed:
		exec.FailureReason = "transcription job failed"
		exec.FailureStage = stage.Transcription
		metrics.StageFailuresTotal.WithLabelValues(stage.Transcription).Inc()
	default:
		exec.FailureReason = "unexpected state machine transition"
	}
}

// record persists the current execution state. Registry write failures are
// logged, not fatal: the run itself must not die on a bookkeeping error.
func (r *Runner) record(ctx context.Context, exec *domain.Execution) {
	if err := r.reg.Update(ctx, exec); err != nil {
		r.logger.Error("Failed to record execution state",
			zap.String("handle", exec.Handle),
			zap.String("state", string(exec.State)),
			zap.Error(err),
		)
	}
}
