// Package agent provides the distributed triage agent: it consumes triage
// requests from the broker, runs the failure analyzer, persists the verdict
// and publishes it for downstream consumers.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pipetriage/src/analyze"
	"pipetriage/src/broker"
	"pipetriage/src/contracts"
	"pipetriage/src/logger"
	"pipetriage/src/store"
)

// consumerGroup identifies the agent's Kafka consumer group.
const consumerGroup = "pipetriage-agent"

// Agent drives the triage loop.
type Agent struct {
	broker   broker.Broker
	store    store.Store
	analyzer *analyze.Analyzer
	log      logger.Logger
}

// New creates a triage agent.
func New(b broker.Broker, st store.Store, analyzer *analyze.Analyzer, log logger.Logger) *Agent {
	if log == nil {
		log = logger.NewConsoleLogger()
	}
	return &Agent{broker: b, store: st, analyzer: analyzer, log: log}
}

// Run subscribes to the requests topic and processes messages until the
// context ends or the broker closes. A failed request marks its status and
// the loop continues.
func (a *Agent) Run(ctx context.Context) error {
	requests, err := a.broker.Subscribe(ctx, contracts.TopicRequests, consumerGroup)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicRequests, err)
	}

	a.log.Info("listening for triage requests on %q", contracts.TopicRequests)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-requests:
			if !ok {
				return nil
			}
			if err := a.processRequest(ctx, msg.Value); err != nil {
				a.log.Error("failed to process request: %v", err)
			}
		}
	}
}

// processRequest analyzes one build and records the outcome.
func (a *Agent) processRequest(ctx context.Context, payload []byte) error {
	var request contracts.TriageRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return fmt.Errorf("failed to unmarshal request: %w", err)
	}

	a.log.Info("processing request %s for build %d", request.RequestID, request.BuildID)

	if err := a.store.CreateRequest(ctx, request.RequestID, request.BuildID); err != nil {
		return err
	}
	if err := a.store.UpdateRequestStatus(ctx, &contracts.RequestStatus{
		RequestID: request.RequestID,
		BuildID:   request.BuildID,
		Status:    contracts.StatusProcessing,
	}); err != nil {
		return err
	}

	report, err := a.analyzer.Report(ctx, request.BuildID)
	if err != nil {
		if stErr := a.store.UpdateRequestStatus(ctx, &contracts.RequestStatus{
			RequestID: request.RequestID,
			BuildID:   request.BuildID,
			Status:    contracts.StatusFailed,
		}); stErr != nil {
			a.log.Error("failed to mark request %s failed: %v", request.RequestID, stErr)
		}
		return fmt.Errorf("analysis of build %d failed: %w", request.BuildID, err)
	}

	verdict := &contracts.BuildVerdict{
		RequestID:       request.RequestID,
		BuildID:         request.BuildID,
		PreviousBuildID: report.PreviousBuildID,
		Verdict:         report.Verdict,
		CurrentErrors:   report.CurrentErrors,
		FailedTasks:     len(report.Tasks),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}

	if err := a.store.SaveVerdict(ctx, verdict); err != nil {
		return err
	}

	failedJobs := 0
	for _, group := range report.CurrentErrors {
		failedJobs += len(group.Jobs)
	}
	if err := a.store.UpdateRequestStatus(ctx, &contracts.RequestStatus{
		RequestID:   request.RequestID,
		BuildID:     request.BuildID,
		Status:      contracts.StatusCompleted,
		Verdict:     report.Verdict,
		FailedTasks: len(report.Tasks),
		FailedJobs:  failedJobs,
	}); err != nil {
		return err
	}

	data, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}
	if err := a.broker.Publish(ctx, contracts.TopicVerdicts, request.RequestID, data); err != nil {
		return fmt.Errorf("failed to publish verdict: %w", err)
	}

	a.log.Info("published verdict %q for build %d", verdict.Verdict, request.BuildID)
	return nil
}
