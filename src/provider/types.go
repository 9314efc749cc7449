package provider

// BuildSummary is a read-only snapshot of one build: the fields downstream
// consumers care about, detached from the provider's wire format.
type BuildSummary struct {
	Name         string `json:"name"`
	BuildID      int    `json:"build_id"`
	DefinitionID int    `json:"definition_id"`
	Result       string `json:"result"`
	Status       string `json:"status"`
	URL          string `json:"url"`
	Branch       string `json:"branch"`
	CommitID     string `json:"commit_id"`
	TriggeredBy  string `json:"triggered_by"`
}

// Record is one node in a build timeline: a job, task, or phase with a
// result and optional parent linkage.
type Record struct {
	ID       string  `json:"id"`
	ParentID string  `json:"parent_id,omitempty"`
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	Result   string  `json:"result,omitempty"`
	Log      *LogRef `json:"log,omitempty"`
	Issues   []Issue `json:"issues,omitempty"`
}

// LogRef points at the log blob attached to a record.
type LogRef struct {
	ID  int    `json:"id"`
	URL string `json:"url,omitempty"`
}

// Issue is one provider-reported problem message on a record.
type Issue struct {
	Type     string `json:"type,omitempty"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

// Timeline is the full set of execution records for one build run.
// Records are unique by ID per provider contract; iteration order is
// whatever the provider returned.
type Timeline struct {
	BuildID int      `json:"build_id"`
	Records []Record `json:"records"`
}

// Record type and result tags used by the failure analyzer.
const (
	TypeJob  = "Job"
	TypeTask = "Task"

	ResultFailed    = "failed"
	ResultSucceeded = "succeeded"
)

// IssueMessages returns the ordered issue messages of a record.
func (r Record) IssueMessages() []string {
	msgs := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		msgs = append(msgs, issue.Message)
	}
	return msgs
}
