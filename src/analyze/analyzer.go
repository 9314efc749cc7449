// Package analyze implements the build failure analyzer: it isolates failed
// tasks and jobs from a build timeline, collects their logs and parent
// linkage, groups failures by stage, and classifies a build's outcome
// relative to its predecessor on the same branch.
package analyze

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pipetriage/src/contracts"
	"pipetriage/src/logger"
	"pipetriage/src/provider"
	"pipetriage/src/snapshot"
)

// maxLogFetchConcurrency caps the per-task log fan-out.
const maxLogFetchConcurrency = 4

// Analyzer answers "did this build fail, and how does it compare to the
// previous run?" on top of a BuildProvider. Each call is a pure function of
// its inputs except for the optional snapshot side effect.
type Analyzer struct {
	provider provider.BuildProvider
	log      logger.Logger
	snap     *snapshot.Writer
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSnapshots enables JSON side artifacts via the given writer.
func WithSnapshots(w *snapshot.Writer) Option {
	return func(a *Analyzer) { a.snap = w }
}

// New creates an Analyzer on top of a build provider.
func New(p provider.BuildProvider, log logger.Logger, opts ...Option) *Analyzer {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	a := &Analyzer{provider: p, log: log}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FailedTasks returns the timeline's failed Task records in timeline order.
func (a *Analyzer) FailedTasks(tl *provider.Timeline) []provider.Record {
	return filterRecords(tl, provider.TypeTask)
}

// FailedJobs returns the timeline's failed Job records in timeline order.
func (a *Analyzer) FailedJobs(tl *provider.Timeline) []provider.Record {
	return filterRecords(tl, provider.TypeJob)
}

func filterRecords(tl *provider.Timeline, recordType string) []provider.Record {
	failed := []provider.Record{}
	for _, record := range tl.Records {
		if record.Result == provider.ResultFailed && record.Type == recordType {
			failed = append(failed, record)
		}
	}
	return failed
}

// CollectTaskLogs fetches log lines and metadata for every failed task in
// the timeline. Both maps are keyed by task record ID so duplicate task
// names across parallel jobs cannot overwrite each other; the display name
// is carried in the metadata. Tasks without a log reference get no logs
// entry, which is not an error. Log fetches fan out concurrently; the
// ID-keyed maps make assembly independent of completion order.
func (a *Analyzer) CollectTaskLogs(ctx context.Context, tl *provider.Timeline) (map[string][]string, map[string]contracts.TaskMetadata, error) {
	failedTasks := a.FailedTasks(tl)

	logs := make(map[string][]string, len(failedTasks))
	metadata := make(map[string]contracts.TaskMetadata, len(failedTasks))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLogFetchConcurrency)

	for _, task := range failedTasks {
		meta := contracts.TaskMetadata{
			Name:   task.Name,
			Issues: task.IssueMessages(),
			Parent: resolveParent(tl, task),
		}
		a.log.Debug("resolved parent for task %s (%s): %q", task.Name, task.ID, meta.Parent)

		mu.Lock()
		metadata[task.ID] = meta
		mu.Unlock()

		if task.Log == nil {
			continue
		}

		task := task
		g.Go(func() error {
			lines, err := a.provider.GetLogLines(gctx, tl.BuildID, task.Log.ID)
			if err != nil {
				return err
			}
			mu.Lock()
			logs[task.ID] = lines
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if a.snap != nil {
		if err := a.snap.WriteJSON(snapshot.FailedTasksFile, failedTasks); err != nil {
			return nil, nil, err
		}
		if err := a.snap.WriteJSON(snapshot.TaskLogsFile, logs); err != nil {
			return nil, nil, err
		}
		if err := a.snap.WriteJSON(snapshot.TaskMetadataFile, metadata); err != nil {
			return nil, nil, err
		}
	}

	a.log.Debug("collected logs for %d of %d failed tasks", len(logs), len(failedTasks))
	return logs, metadata, nil
}

// resolveParent scans the timeline for the Job record enclosing a task.
// First match wins; an unresolvable parent yields "" (a lookup miss, not an
// error).
func resolveParent(tl *provider.Timeline, task provider.Record) string {
	if task.ParentID == "" {
		return ""
	}
	for _, record := range tl.Records {
		if record.Type == provider.TypeJob && record.ID == task.ParentID {
			return record.Name
		}
	}
	return ""
}

// GroupFailedJobsByStage fetches a build's timeline and groups its failed
// jobs by stage label. Failures deduplicate by (stage, job); job names come
// back sorted ascending. An empty result signals a clean build.
func (a *Analyzer) GroupFailedJobsByStage(ctx context.Context, buildID int) (contracts.StageErrors, error) {
	tl, err := a.fetchTimeline(ctx, buildID)
	if err != nil {
		return nil, err
	}
	return groupFailedJobs(a.FailedJobs(tl)), nil
}

func groupFailedJobs(failedJobs []provider.Record) contracts.StageErrors {
	groups := contracts.StageErrors{}
	seen := make(map[string]bool)

	for _, job := range failedJobs {
		// Every failed job lands under the single fixed stage label; the
		// dedup key still carries both halves of the (stage, job) pair.
		key := contracts.StageLabelJobErrors + "\x00" + job.Name
		if seen[key] {
			continue
		}
		seen[key] = true

		group := groups[contracts.StageLabelJobErrors]
		group.Jobs = append(group.Jobs, job.Name)
		groups[contracts.StageLabelJobErrors] = group
	}

	for stage, group := range groups {
		sort.Strings(group.Jobs)
		groups[stage] = group
	}
	return groups
}

// PreviousBuildID resolves the build chronologically before currentID for
// the same pipeline definition and branch. The second return is false when
// currentID is the oldest in the provider's window or fewer than two builds
// exist; that is an absent optional, not an error.
func (a *Analyzer) PreviousBuildID(ctx context.Context, definitionID int, branch string, currentID int) (int, bool, error) {
	ids, err := a.provider.ListBuilds(ctx, definitionID, branch)
	if err != nil {
		return 0, false, err
	}
	a.log.Debug("builds for definition %d on %s: %v", definitionID, branch, ids)

	if len(ids) < 2 {
		return 0, false, nil
	}
	for i, id := range ids {
		if id == currentID {
			if i+1 < len(ids) {
				return ids[i+1], true, nil
			}
			return 0, false, nil
		}
	}
	return 0, false, nil
}

// Compare classifies the current build's failures against the previous
// build's. prevID == 0 means there is no previous build; its failure set is
// treated as empty. The empty verdict means neither build had failures.
//
// The rules are evaluated sequentially and a later rule overwrites the
// verdict assigned by an earlier one; with both sets non-empty the equality
// check decides the final label.
func (a *Analyzer) Compare(ctx context.Context, prevID, currID int) (string, error) {
	a.log.Debug("comparing previous build %d to current build %d", prevID, currID)

	currErrors, err := a.GroupFailedJobsByStage(ctx, currID)
	if err != nil {
		return "", err
	}

	prevErrors := contracts.StageErrors{}
	if prevID != 0 {
		prevErrors, err = a.GroupFailedJobsByStage(ctx, prevID)
		if err != nil {
			return "", err
		}
	}

	verdict := classify(prevErrors, currErrors)
	a.log.Debug("verdict for build %d: %q", currID, verdict)
	return verdict, nil
}

// Report runs the full analysis for one build: summary, failed tasks with
// logs and scanned findings, stage grouping, previous-build lookup and the
// comparison verdict.
func (a *Analyzer) Report(ctx context.Context, buildID int) (*contracts.FailureReport, error) {
	if buildID == 0 {
		return nil, provider.ErrMissingBuildID
	}

	summary, err := a.provider.GetBuild(ctx, buildID)
	if err != nil {
		return nil, err
	}

	tl, err := a.fetchTimeline(ctx, buildID)
	if err != nil {
		return nil, err
	}

	logs, metadata, err := a.CollectTaskLogs(ctx, tl)
	if err != nil {
		return nil, err
	}

	currErrors := groupFailedJobs(a.FailedJobs(tl))

	prevID, havePrev, err := a.PreviousBuildID(ctx, summary.DefinitionID, summary.Branch, buildID)
	if err != nil {
		return nil, err
	}

	report := &contracts.FailureReport{
		Build: contracts.BuildInfo{
			Name:        summary.Name,
			BuildID:     summary.BuildID,
			Result:      summary.Result,
			Status:      summary.Status,
			URL:         summary.URL,
			Branch:      summary.Branch,
			CommitID:    summary.CommitID,
			TriggeredBy: summary.TriggeredBy,
		},
		CurrentErrors: currErrors,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}

	if havePrev {
		report.PreviousBuildID = prevID
		prevErrors, err := a.GroupFailedJobsByStage(ctx, prevID)
		if err != nil {
			return nil, err
		}
		report.PreviousErrors = prevErrors
		report.Verdict = classify(prevErrors, currErrors)
	} else {
		report.Verdict = classify(contracts.StageErrors{}, currErrors)
	}

	for _, task := range a.FailedTasks(tl) {
		meta := metadata[task.ID]
		diag := contracts.TaskDiagnostic{
			TaskID:   task.ID,
			Name:     meta.Name,
			Parent:   meta.Parent,
			Issues:   meta.Issues,
			LogLines: logs[task.ID],
		}
		diag.Findings = ScanLines(diag.LogLines)
		report.Tasks = append(report.Tasks, diag)
	}

	return report, nil
}

// classify applies the comparison rules to two already-computed failure
// sets. Kept separate from Compare so Report can reuse the timelines it has
// already fetched.
func classify(prevErrors, currErrors contracts.StageErrors) string {
	verdict := ""
	if len(currErrors) == 0 && len(prevErrors) > 0 {
		verdict = contracts.VerdictBackToNormal
	}
	if len(currErrors) > 0 && len(prevErrors) > 0 {
		if currErrors.Equal(prevErrors) {
			verdict = contracts.VerdictRepeatedFailure
		} else {
			verdict = contracts.VerdictNewFailure
		}
	}
	if len(currErrors) > 0 && len(prevErrors) == 0 {
		verdict = contracts.VerdictNewFailure
	}
	return verdict
}

// fetchTimeline wraps the provider call with the optional snapshot side
// effect.
func (a *Analyzer) fetchTimeline(ctx context.Context, buildID int) (*provider.Timeline, error) {
	a.log.Debug("fetching timeline for build %d", buildID)
	tl, err := a.provider.GetTimeline(ctx, buildID)
	if err != nil {
		return nil, err
	}
	if a.snap != nil {
		if err := a.snap.WriteJSON(snapshot.TimelineFile, tl); err != nil {
			return nil, err
		}
	}
	return tl, nil
}
