package domain

import (
	"time"

	"github.com/google/uuid"
)

// InputKind discriminates which stage sequence a job runs through.
type InputKind string

const (
	// KindText enters the pipeline at gloss generation.
	KindText InputKind = "text"
	// KindMedia enters the pipeline at transcription.
	KindMedia InputKind = "media"
	// KindGloss triggers the standalone pose-blending sub-flow.
	KindGloss InputKind = "gloss"
)

// IsValid checks if the input kind is one the engine knows how to route.
func (k InputKind) IsValid() bool {
	return k == KindText || k == KindMedia || k == KindGloss
}

// MediaReference identifies previously uploaded audio/video in object storage.
type MediaReference struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// IsZero reports whether the reference carries no location at all.
func (m MediaReference) IsZero() bool {
	return m.Bucket == "" && m.Key == ""
}

// Job is one client-submitted translation request. Jobs are immutable after
// creation and owned exclusively by the workflow run they spawn.
type Job struct {
	JobID  uuid.UUID      `json:"job_id"`
	Handle string         `json:"handle"`
	Kind   InputKind      `json:"kind"`
	Text   string         `json:"text,omitempty"`
	Media  MediaReference `json:"media,omitempty"`
	Gloss  string         `json:"gloss,omitempty"`
	// ConnectionID is set only for session-originated jobs; the terminal
	// payload is pushed to this connection instead of being polled.
	ConnectionID string    `json:"connection_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TranslationResult is the terminal success payload of a workflow run.
type TranslationResult struct {
	Gloss     string `json:"Gloss,omitempty"`
	Text      string `json:"Text,omitempty"`
	SignURL   string `json:"SignURL,omitempty"`
	PoseURL   string `json:"PoseURL,omitempty"`
	AvatarURL string `json:"AvatarURL,omitempty"`
}

// JobMessage wraps a job received from the broker with its ACK callbacks.
type JobMessage struct {
	Job  *Job
	Ack  func() error
	Nack func(requeue bool) error
}
