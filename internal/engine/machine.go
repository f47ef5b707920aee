package engine

import (
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/stage"
)

// EventKind classifies what just happened to an execution.
type EventKind int

const (
	// EventStart kicks off a run; Input selects the stage sequence.
	EventStart EventKind = iota
	// EventStageAccepted means a long-running remote job was accepted.
	EventStageAccepted
	// EventWaitElapsed means a scheduled delay finished.
	EventWaitElapsed
	// EventStatusFetched carries the transcription job status.
	EventStatusFetched
	// EventStageSucceeded carries a synchronous stage's output.
	EventStageSucceeded
	// EventStageFailed means a stage failed terminally or exhausted retries.
	EventStageFailed
)

// Event is the input to one state transition.
type Event struct {
	Kind       EventKind
	Input      domain.InputKind
	Status     string
	Transcript string
	Gloss      *stage.GlossResult
	Result     *domain.TranslationResult
	Err        error
}

// Effect tells the runner what to do after a transition.
type Effect int

const (
	// EffectNone means the run is terminal; nothing left to do.
	EffectNone Effect = iota
	// EffectStartTranscription submits the remote transcription job.
	EffectStartTranscription
	// EffectWait schedules the fixed transcription poll delay.
	EffectWait
	// EffectFetchTranscription queries the transcription job status.
	EffectFetchTranscription
	// EffectEvaluateStatus re-feeds the fetched status to the machine.
	EffectEvaluateStatus
	// EffectProcessTranscript extracts text from the completed job.
	EffectProcessTranscript
	// EffectInvokeGloss runs the text-to-gloss stage.
	EffectInvokeGloss
	// EffectInvokePose runs the gloss-to-pose stage.
	EffectInvokePose
	// EffectInvokeBlend runs the standalone pose-blending stage.
	EffectInvokeBlend
)

// Next is the pure transition function: given the current state and an
// event it returns the next state and the effect the runner must perform.
// It touches no remote dependency, so every path is testable in isolation.
func Next(state domain.ExecutionState, ev Event) (domain.ExecutionState, Effect) {
	// A failed stage ends the run from any non-terminal state.
	if ev.Kind == EventStageFailed {
		return domain.StateFailed, EffectNone
	}

	switch state {
	case domain.StateStart:
		if ev.Kind != EventStart {
			break
		}
		switch ev.Input {
		case domain.KindText:
			// Text submissions skip transcription entirely.
			return domain.StateGeneratingGloss, EffectInvokeGloss
		case domain.KindMedia:
			return domain.StateTranscribing, EffectStartTranscription
		case domain.KindGloss:
			return domain.StateBlending, EffectInvokeBlend
		}

	case domain.StateTranscribing:
		if ev.Kind == EventStageAccepted {
			return domain.StateAwaitTranscription, EffectWait
		}

	case domain.StateAwaitTranscription:
		if ev.Kind == EventWaitElapsed {
			return domain.StateFetchTranscriptionResult, EffectFetchTranscription
		}

	case domain.StateFetchTranscriptionResult:
		if ev.Kind == EventStatusFetched {
			return domain.StateEvaluateTranscriptionStatus, EffectEvaluateStatus
		}

	case domain.StateEvaluateTranscriptionStatus:
		if ev.Kind != EventStatusFetched {
			break
		}
		switch ev.Status {
		case stage.TranscriptionCompleted:
			return domain.StateProcessingTranscript, EffectProcessTranscript
		case stage.TranscriptionFailed:
			return domain.StateFailed, EffectNone
		default:
			// Queued or in progress: loop back to the timed wait.
			return domain.StateAwaitTranscription, EffectWait
		}

	case domain.StateProcessingTranscript:
		if ev.Kind == EventStageSucceeded {
			return domain.StateGeneratingGloss, EffectInvokeGloss
		}

	case domain.StateGeneratingGloss:
		if ev.Kind == EventStageSucceeded {
			return domain.StateGeneratingPose, EffectInvokePose
		}

	case domain.StateGeneratingPose:
		if ev.Kind == EventStageSucceeded {
			return domain.StateSucceeded, EffectNone
		}

	case domain.StateBlending:
		if ev.Kind == EventStageSucceeded {
			return domain.StateSucceeded, EffectNone
		}
	}

	// Unexpected state/event pair: fail closed rather than hang.
	return domain.StateFailed, EffectNone
}
