package store

import (
	"context"
	"sync"

	"pipetriage/src/contracts"
)

// InMemoryStore is a thread-safe in-memory implementation of Store.
// Used for single-process mode and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[string]contracts.RequestStatus
	verdicts map[string]contracts.BuildVerdict
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		requests: make(map[string]contracts.RequestStatus),
		verdicts: make(map[string]contracts.BuildVerdict),
	}
}

// CreateRequest records a new request as pending. Creating an existing
// request again is a no-op, mirroring the Postgres ON CONFLICT behavior.
func (s *InMemoryStore) CreateRequest(ctx context.Context, requestID string, buildID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[requestID]; exists {
		return nil
	}
	s.requests[requestID] = contracts.RequestStatus{
		RequestID: requestID,
		BuildID:   buildID,
		Status:    contracts.StatusPending,
	}
	return nil
}

// GetRequestStatus returns the state of a request.
func (s *InMemoryStore) GetRequestStatus(ctx context.Context, requestID string) (*contracts.RequestStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.requests[requestID]
	if !ok {
		return nil, ErrNotFound{RequestID: requestID}
	}
	return &status, nil
}

// UpdateRequestStatus updates the state of a request.
func (s *InMemoryStore) UpdateRequestStatus(ctx context.Context, status *contracts.RequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[status.RequestID]; !ok {
		return ErrNotFound{RequestID: status.RequestID}
	}
	s.requests[status.RequestID] = *status
	return nil
}

// SaveVerdict persists the verdict for a request.
func (s *InMemoryStore) SaveVerdict(ctx context.Context, verdict *contracts.BuildVerdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.verdicts[verdict.RequestID] = *verdict
	return nil
}

// GetVerdict retrieves the verdict for a request.
func (s *InMemoryStore) GetVerdict(ctx context.Context, requestID string) (*contracts.BuildVerdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	verdict, ok := s.verdicts[requestID]
	if !ok {
		return nil, ErrNotFound{RequestID: requestID}
	}
	return &verdict, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
