package mcp

import (
	"testing"

	"pipetriage/src/contracts"
)

func sampleReport() *contracts.FailureReport {
	return &contracts.FailureReport{
		RequestID: "req-1",
		Build:     contracts.BuildInfo{BuildID: 105, Branch: "refs/heads/main"},
		Verdict:   contracts.VerdictNewFailure,
		CurrentErrors: contracts.StageErrors{
			contracts.StageLabelJobErrors: {Jobs: []string{"build"}},
		},
		Tasks: []contracts.TaskDiagnostic{
			{
				TaskID:   "task-1",
				Name:     "compile",
				Parent:   "build",
				LogLines: []string{"ERROR: nope"},
				Findings: []contracts.Finding{{LineNumber: 1, Severity: "ERROR"}},
			},
			{TaskID: "task-2", Name: "publish", Parent: "build"},
		},
	}
}

func TestStoreAndGetTask(t *testing.T) {
	s := NewInMemoryStore()
	report := sampleReport()
	s.Store("req-1", report)

	task, found := s.GetTask("req-1", "task-1")
	if !found {
		t.Fatal("task-1 not found")
	}
	if task.Name != "compile" || len(task.LogLines) != 1 {
		t.Errorf("unexpected task: %+v", task)
	}

	if _, found := s.GetTask("req-1", "task-9"); found {
		t.Error("unknown task ID reported found")
	}
	if _, found := s.GetTask("req-9", "task-1"); found {
		t.Error("unknown request ID reported found")
	}

	got, found := s.Get("req-1")
	if !found || got.Build.BuildID != 105 {
		t.Errorf("Get = %+v, found=%v", got, found)
	}
}

func TestToManifest(t *testing.T) {
	report := sampleReport()
	manifest := ToManifest(report)

	if manifest.RequestID != "req-1" || manifest.Verdict != contracts.VerdictNewFailure {
		t.Errorf("unexpected manifest header: %+v", manifest)
	}
	if len(manifest.FailedTasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(manifest.FailedTasks))
	}

	first := manifest.FailedTasks[0]
	if first.TaskID != "task-1" || first.LogLineCount != 1 {
		t.Errorf("unexpected task summary: %+v", first)
	}
	if len(first.TopFindings) != 1 {
		t.Errorf("findings not carried into the manifest: %+v", first)
	}
}

func TestToManifestCapsFindings(t *testing.T) {
	report := sampleReport()
	for i := 0; i < maxManifestFindings+3; i++ {
		report.Tasks[0].Findings = append(report.Tasks[0].Findings, contracts.Finding{LineNumber: i + 2})
	}

	manifest := ToManifest(report)
	if got := len(manifest.FailedTasks[0].TopFindings); got != maxManifestFindings {
		t.Errorf("manifest carries %d findings, want cap of %d", got, maxManifestFindings)
	}
}
