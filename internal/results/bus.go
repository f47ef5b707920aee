package results

import (
	"context"
	"encoding/json"
)

// Delivery carries one terminal payload toward a streaming connection. The
// payload is already wire-shaped JSON: either a translation result or a
// failure document.
type Delivery struct {
	ConnectionID string          `json:"connection_id"`
	Payload      json.RawMessage `json:"payload"`
}

// Bus fans terminal results out to every API server instance. The worker
// publishes; each server instance subscribes and delivers to the connections
// it holds locally, ignoring the rest.
type Bus interface {
	// Publish broadcasts a delivery to all subscribers.
	Publish(ctx context.Context, d *Delivery) error

	// Subscribe invokes fn for every delivery until ctx is cancelled.
	Subscribe(ctx context.Context, fn func(*Delivery)) error
}
