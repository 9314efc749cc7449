package store

import (
	"context"
	"errors"
	"testing"

	"pipetriage/src/contracts"
)

func TestRequestLifecycle(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	if err := s.CreateRequest(ctx, "req-1", 105); err != nil {
		t.Fatalf("CreateRequest error: %v", err)
	}

	status, err := s.GetRequestStatus(ctx, "req-1")
	if err != nil {
		t.Fatalf("GetRequestStatus error: %v", err)
	}
	if status.Status != contracts.StatusPending || status.BuildID != 105 {
		t.Errorf("fresh request status = %+v", status)
	}

	update := &contracts.RequestStatus{
		RequestID:   "req-1",
		BuildID:     105,
		Status:      contracts.StatusCompleted,
		Verdict:     contracts.VerdictNewFailure,
		FailedTasks: 2,
		FailedJobs:  1,
	}
	if err := s.UpdateRequestStatus(ctx, update); err != nil {
		t.Fatalf("UpdateRequestStatus error: %v", err)
	}

	status, err = s.GetRequestStatus(ctx, "req-1")
	if err != nil {
		t.Fatalf("GetRequestStatus error: %v", err)
	}
	if status.Status != contracts.StatusCompleted || status.Verdict != contracts.VerdictNewFailure {
		t.Errorf("updated status = %+v", status)
	}
}

func TestCreateRequestIdempotent(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	s.CreateRequest(ctx, "req-1", 105)
	s.UpdateRequestStatus(ctx, &contracts.RequestStatus{
		RequestID: "req-1", BuildID: 105, Status: contracts.StatusProcessing,
	})

	// Re-creating must not reset the status.
	if err := s.CreateRequest(ctx, "req-1", 105); err != nil {
		t.Fatalf("CreateRequest error: %v", err)
	}
	status, _ := s.GetRequestStatus(ctx, "req-1")
	if status.Status != contracts.StatusProcessing {
		t.Errorf("status after duplicate create = %q, want processing", status.Status)
	}
}

func TestVerdictRoundTrip(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	verdict := &contracts.BuildVerdict{
		RequestID:       "req-1",
		BuildID:         105,
		PreviousBuildID: 104,
		Verdict:         contracts.VerdictRepeatedFailure,
		CurrentErrors: contracts.StageErrors{
			contracts.StageLabelJobErrors: {Jobs: []string{"build"}},
		},
		FailedTasks: 1,
	}
	if err := s.SaveVerdict(ctx, verdict); err != nil {
		t.Fatalf("SaveVerdict error: %v", err)
	}

	got, err := s.GetVerdict(ctx, "req-1")
	if err != nil {
		t.Fatalf("GetVerdict error: %v", err)
	}
	if got.Verdict != contracts.VerdictRepeatedFailure || got.PreviousBuildID != 104 {
		t.Errorf("round-tripped verdict = %+v", got)
	}
	if !got.CurrentErrors.Equal(verdict.CurrentErrors) {
		t.Errorf("CurrentErrors = %v", got.CurrentErrors)
	}
}

func TestNotFound(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	var notFound ErrNotFound
	if _, err := s.GetRequestStatus(ctx, "missing"); !errors.As(err, &notFound) {
		t.Errorf("GetRequestStatus error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetVerdict(ctx, "missing"); !errors.As(err, &notFound) {
		t.Errorf("GetVerdict error = %v, want ErrNotFound", err)
	}
	err := s.UpdateRequestStatus(ctx, &contracts.RequestStatus{RequestID: "missing"})
	if !errors.As(err, &notFound) {
		t.Errorf("UpdateRequestStatus error = %v, want ErrNotFound", err)
	}
}
