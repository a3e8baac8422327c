package domain

import (
	"context"
	"errors"
)

// Stats aggregates one orchestrator run. Processed counts every eligible
// billing examined, Sent counts delivered reminders, Errors counts
// per-billing failures that did not abort the batch.
type Stats struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Errors    int `json:"errors"`
}

type Service interface {
	// Process runs one reminder pass over all pending billings. A
	// returned error means the run aborted on a transient store
	// failure; per-billing failures are folded into Stats.Errors.
	Process(ctx context.Context) (Stats, error)
}

var (
	ErrNoIntervals = errors.New("no_notification_intervals")
	ErrNoTemplate  = errors.New("no_default_template")
)
