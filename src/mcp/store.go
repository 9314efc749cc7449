package mcp

import (
	"sync"

	"pipetriage/src/contracts"
)

// ReportStore holds full failure reports so tool calls can drill into
// individual task logs after a triage_build response.
type ReportStore interface {
	// Store saves the full report for a request.
	Store(requestID string, report *contracts.FailureReport)
	// GetTask retrieves a single task diagnostic by task record ID.
	GetTask(requestID, taskID string) (contracts.TaskDiagnostic, bool)
	// Get retrieves the full report for a request.
	Get(requestID string) (*contracts.FailureReport, bool)
}

// InMemoryStore is a thread-safe in-memory implementation of ReportStore.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*contracts.FailureReport
	tasks   map[string]map[string]contracts.TaskDiagnostic // request_id -> task_id -> diagnostic
}

// NewInMemoryStore creates a new in-memory report store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		reports: make(map[string]*contracts.FailureReport),
		tasks:   make(map[string]map[string]contracts.TaskDiagnostic),
	}
}

// Store saves a report, indexed by task record ID for drill-down.
func (s *InMemoryStore) Store(requestID string, report *contracts.FailureReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[requestID] = report

	taskMap := make(map[string]contracts.TaskDiagnostic, len(report.Tasks))
	for _, task := range report.Tasks {
		taskMap[task.TaskID] = task
	}
	s.tasks[requestID] = taskMap
}

// GetTask retrieves a task diagnostic by record ID.
func (s *InMemoryStore) GetTask(requestID, taskID string) (contracts.TaskDiagnostic, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if taskMap, ok := s.tasks[requestID]; ok {
		task, found := taskMap[taskID]
		return task, found
	}
	return contracts.TaskDiagnostic{}, false
}

// Get retrieves the full report for a request.
func (s *InMemoryStore) Get(requestID string) (*contracts.FailureReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[requestID]
	return report, ok
}
