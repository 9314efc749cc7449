// Package store defines the interface for persisting triage requests and
// build verdicts.
package store

import (
	"context"
	"fmt"

	"pipetriage/src/contracts"
)

// Store persists triage requests and their verdicts.
type Store interface {
	// CreateRequest records a new triage request as pending.
	CreateRequest(ctx context.Context, requestID string, buildID int) error

	// GetRequestStatus returns the state of a request.
	GetRequestStatus(ctx context.Context, requestID string) (*contracts.RequestStatus, error)

	// UpdateRequestStatus updates the state of a request.
	UpdateRequestStatus(ctx context.Context, status *contracts.RequestStatus) error

	// SaveVerdict persists the verdict produced for a request.
	SaveVerdict(ctx context.Context, verdict *contracts.BuildVerdict) error

	// GetVerdict retrieves the verdict for a request.
	GetVerdict(ctx context.Context, requestID string) (*contracts.BuildVerdict, error)

	// Close closes the store connection.
	Close() error
}

// ErrNotFound reports a missing request or verdict.
type ErrNotFound struct {
	RequestID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("request not found: %s", e.RequestID)
}
