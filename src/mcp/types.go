package mcp

import "pipetriage/src/contracts"

// TaskSummary is the lightweight per-task entry returned by triage_build.
// Log lines are omitted; use get_task_log with the task ID to drill in.
type TaskSummary struct {
	TaskID       string              `json:"task_id"`
	Name         string              `json:"name"`
	Parent       string              `json:"parent"`
	Issues       []string            `json:"issues,omitempty"`
	LogLineCount int                 `json:"log_line_count"`
	TopFindings  []contracts.Finding `json:"top_findings,omitempty"`
}

// Manifest is the triage_build response payload.
type Manifest struct {
	RequestID       string                 `json:"request_id"`
	Build           contracts.BuildInfo    `json:"build"`
	Verdict         string                 `json:"verdict"`
	PreviousBuildID int                    `json:"previous_build_id,omitempty"`
	CurrentErrors   contracts.StageErrors  `json:"current_errors"`
	PreviousErrors  contracts.StageErrors  `json:"previous_errors,omitempty"`
	FailedTasks     []TaskSummary          `json:"failed_tasks"`
	Timestamp       string                 `json:"timestamp"`
}

// maxManifestFindings caps the findings embedded per task in the manifest.
const maxManifestFindings = 5

// ToManifest builds the lightweight manifest from a full failure report.
func ToManifest(report *contracts.FailureReport) Manifest {
	tasks := make([]TaskSummary, 0, len(report.Tasks))
	for _, task := range report.Tasks {
		findings := task.Findings
		if len(findings) > maxManifestFindings {
			findings = findings[:maxManifestFindings]
		}
		tasks = append(tasks, TaskSummary{
			TaskID:       task.TaskID,
			Name:         task.Name,
			Parent:       task.Parent,
			Issues:       task.Issues,
			LogLineCount: len(task.LogLines),
			TopFindings:  findings,
		})
	}

	return Manifest{
		RequestID:       report.RequestID,
		Build:           report.Build,
		Verdict:         report.Verdict,
		PreviousBuildID: report.PreviousBuildID,
		CurrentErrors:   report.CurrentErrors,
		PreviousErrors:  report.PreviousErrors,
		FailedTasks:     tasks,
		Timestamp:       report.Timestamp,
	}
}
