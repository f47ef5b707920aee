package stage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
)

// Stage names as they appear in failure reasons and metrics labels.
const (
	Transcription     = "transcription"
	TranscriptProcess = "process-transcript"
	Gloss             = "gloss"
	Pose              = "pose"
	Blend             = "blend"
	Speech            = "speech"
)

// Error is a classified stage-invocation failure. Retryable errors mean the
// remote call did not complete; terminal errors mean the stage explicitly
// reported a semantic failure.
type Error struct {
	Stage     string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewRetryable wraps err as a retryable invocation failure for a stage.
func NewRetryable(stageName string, err error) *Error {
	return &Error{Stage: stageName, Retryable: true, Err: err}
}

// NewTerminal wraps err as a terminal semantic failure for a stage.
func NewTerminal(stageName string, err error) *Error {
	return &Error{Stage: stageName, Retryable: false, Err: err}
}

// IsRetryable reports whether err is a stage error the engine may retry.
func IsRetryable(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Retryable
}

// TranscriptionStatus values reported by the remote transcription stage.
const (
	TranscriptionCompleted  = "COMPLETED"
	TranscriptionFailed     = "FAILED"
	TranscriptionInProgress = "IN_PROGRESS"
)

// TranscriptionJob is the observable state of a long-running transcription.
type TranscriptionJob struct {
	JobName string `json:"TranscriptionJobName"`
	Status  string `json:"TranscriptionJobStatus"`
}

// GlossResult is the output of the text-to-gloss stage.
type GlossResult struct {
	Gloss string `json:"Gloss"`
	Text  string `json:"Text"`
}

// Client is the uniform interface to the external processing stages. All
// implementations must be safe for concurrent use: independent executions
// invoke stages in parallel.
type Client interface {
	// StartTranscription submits a long-running transcription job under a
	// freshly generated job name for the given media reference.
	StartTranscription(ctx context.Context, jobName string, media domain.MediaReference) error

	// GetTranscription reports the current status of a transcription job.
	GetTranscription(ctx context.Context, jobName string) (*TranscriptionJob, error)

	// ProcessTranscript extracts the transcript text from a completed job.
	ProcessTranscript(ctx context.Context, jobName string) (string, error)

	// GenerateGloss converts English text to ASL gloss.
	GenerateGloss(ctx context.Context, text string) (*GlossResult, error)

	// GeneratePose renders gloss into sign/pose/avatar media references.
	GeneratePose(ctx context.Context, gloss, text string) (*domain.TranslationResult, error)

	// BlendPose runs the standalone pose-blending stage over a gloss.
	BlendPose(ctx context.Context, gloss string) (*domain.TranslationResult, error)

	// SynthesizeSpeech converts text to base64-encoded audio.
	SynthesizeSpeech(ctx context.Context, text, voiceID string) (string, error)
}
