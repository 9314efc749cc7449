// Package contracts defines the message and report types shared between the
// analyzer, broker, store and UI surfaces.
package contracts

// Topic names used by the distributed triage agent.
const (
	// TopicRequests carries TriageRequest messages.
	TopicRequests = "pipetriage.requests"

	// TopicVerdicts carries BuildVerdict messages.
	TopicVerdicts = "pipetriage.verdicts"
)

// StageLabelJobErrors is the stage label every failed job is grouped under.
// The provider timeline does not expose stage records directly, so all job
// failures collapse into this one bucket; keeping the label stable keeps
// build-to-build comparisons stable.
const StageLabelJobErrors = "JobStageErrors"

// Verdict labels produced by comparing a build's failures with its
// predecessor's. An empty verdict means both builds were clean.
const (
	VerdictBackToNormal    = "back to normal"
	VerdictRepeatedFailure = "repeated failure"
	VerdictNewFailure      = "new failure!"
)

// StageGroup collects the failed jobs under one stage label. Jobs are
// deduplicated and sorted lexicographically ascending.
type StageGroup struct {
	Jobs []string `json:"jobs"`
}

// StageErrors maps a stage label to its failed jobs. An empty map signals a
// clean build.
type StageErrors map[string]StageGroup

// Equal reports structural equality of two failure groupings. Job lists are
// compared in order; both sides are sorted by construction.
func (s StageErrors) Equal(other StageErrors) bool {
	if len(s) != len(other) {
		return false
	}
	for stage, group := range s {
		otherGroup, ok := other[stage]
		if !ok || len(group.Jobs) != len(otherGroup.Jobs) {
			return false
		}
		for i, job := range group.Jobs {
			if job != otherGroup.Jobs[i] {
				return false
			}
		}
	}
	return true
}

// TaskMetadata describes one failed task. Keyed by task record ID in the
// analyzer's output maps; the display name lives here so duplicate task
// names across parallel jobs cannot shadow each other.
type TaskMetadata struct {
	// Name is the task's display name.
	Name string `json:"name"`
	// Issues holds the provider-reported issue messages, in order.
	Issues []string `json:"issues"`
	// Parent is the enclosing Job record's name, empty when the parent
	// could not be resolved.
	Parent string `json:"parent,omitempty"`
}

// Finding is one scanned log line that looks like a failure cause.
type Finding struct {
	// LineNumber is the 1-based position in the task's log.
	LineNumber int `json:"line_number"`
	// RawMessage is the original log line.
	RawMessage string `json:"raw_message"`
	// NormalizedMsg has volatile tokens (timestamps, UUIDs, numbers)
	// replaced with placeholders for grouping and hashing.
	NormalizedMsg string `json:"normalized_message"`
	// Severity is ERROR or FATAL.
	Severity string `json:"severity"`
	// ConfidenceScore ranks the finding (0.0 to 1.0).
	ConfidenceScore float64 `json:"confidence_score"`
	// MessageHash is the sha256 of the normalized message, for recurrence
	// tracking across builds.
	MessageHash string `json:"message_hash"`
}

// TaskDiagnostic bundles everything collected about one failed task.
type TaskDiagnostic struct {
	TaskID   string    `json:"task_id"`
	Name     string    `json:"name"`
	Parent   string    `json:"parent,omitempty"`
	Issues   []string  `json:"issues,omitempty"`
	LogLines []string  `json:"log_lines,omitempty"`
	Findings []Finding `json:"findings,omitempty"`
}

// BuildInfo is the report's snapshot of build metadata.
type BuildInfo struct {
	Name        string `json:"name"`
	BuildID     int    `json:"build_id"`
	Result      string `json:"result"`
	Status      string `json:"status"`
	URL         string `json:"url"`
	Branch      string `json:"branch"`
	CommitID    string `json:"commit_id"`
	TriggeredBy string `json:"triggered_by"`
}

// FailureReport is the full output of analyzing one build.
type FailureReport struct {
	RequestID       string           `json:"request_id,omitempty"`
	Build           BuildInfo        `json:"build"`
	Verdict         string           `json:"verdict,omitempty"`
	PreviousBuildID int              `json:"previous_build_id,omitempty"`
	CurrentErrors   StageErrors      `json:"current_errors"`
	PreviousErrors  StageErrors      `json:"previous_errors,omitempty"`
	Tasks           []TaskDiagnostic `json:"tasks"`
	Timestamp       string           `json:"timestamp"`
}

// TriageRequest asks the agent to analyze a build.
// Published to: pipetriage.requests. Key: request_id.
type TriageRequest struct {
	RequestID string `json:"request_id"`
	BuildID   int    `json:"build_id"`
	Timestamp string `json:"timestamp"`
}

// BuildVerdict is the agent's answer for one request.
// Published to: pipetriage.verdicts. Key: request_id.
type BuildVerdict struct {
	RequestID       string      `json:"request_id"`
	BuildID         int         `json:"build_id"`
	PreviousBuildID int         `json:"previous_build_id,omitempty"`
	Verdict         string      `json:"verdict"`
	CurrentErrors   StageErrors `json:"current_errors"`
	FailedTasks     int         `json:"failed_tasks"`
	Timestamp       string      `json:"timestamp"`
}

// Request lifecycle states tracked by the store.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// RequestStatus is the persisted state of one triage request.
type RequestStatus struct {
	RequestID   string
	BuildID     int
	Status      string
	Verdict     string
	FailedTasks int
	FailedJobs  int
}
