package domain

import "errors"

var (
	// ErrUnknownHandle is returned when a poll references an execution that
	// never existed or was already delivered and evicted.
	ErrUnknownHandle = errors.New("unknown or expired execution handle")

	// ErrEmptyText is returned when a text submission is blank.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyGloss is returned when a blending submission carries no gloss.
	ErrEmptyGloss = errors.New("gloss cannot be empty")

	// ErrInvalidMediaReference is returned when bucket or key is missing.
	ErrInvalidMediaReference = errors.New("media reference requires both bucket and key")

	// ErrInvalidSubmission is returned when the request matches no known shape.
	ErrInvalidSubmission = errors.New("submission must carry Text, Gloss, or BucketName+KeyName")

	// ErrPublishFailed is returned when the message broker publish fails.
	ErrPublishFailed = errors.New("failed to publish job to message queue")

	// ErrSessionNotFound is returned when a connection record cannot be found.
	ErrSessionNotFound = errors.New("session not found")
)
