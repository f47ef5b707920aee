package domain

import "time"

// ExecutionState is the workflow engine's machine state for one execution.
type ExecutionState string

const (
	StateStart                       ExecutionState = "Start"
	StateTranscribing                ExecutionState = "Transcribing"
	StateAwaitTranscription          ExecutionState = "AwaitTranscription"
	StateFetchTranscriptionResult    ExecutionState = "FetchTranscriptionResult"
	StateEvaluateTranscriptionStatus ExecutionState = "EvaluateTranscriptionStatus"
	StateProcessingTranscript        ExecutionState = "ProcessingTranscript"
	StateGeneratingGloss             ExecutionState = "GeneratingGloss"
	StateGeneratingPose              ExecutionState = "GeneratingPose"
	StateBlending                    ExecutionState = "Blending"
	StateSucceeded                   ExecutionState = "Succeeded"
	StateFailed                      ExecutionState = "Failed"
)

// IsTerminal returns true once no further transitions can occur.
func (s ExecutionState) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Execution is one run of the workflow engine against a job. It is mutated
// by exactly one engine run; clients only ever read it through the registry.
type Execution struct {
	Handle        string             `json:"handle"`
	State         ExecutionState     `json:"state"`
	Result        *TranslationResult `json:"result,omitempty"`
	FailureReason string             `json:"failure_reason,omitempty"`
	FailureStage  string             `json:"failure_stage,omitempty"`
	StartedAt     time.Time          `json:"started_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
