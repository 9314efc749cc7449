package azdevops

import (
	"context"
	"errors"
	"fmt"

	"pipetriage/src/provider"
)

func init() {
	provider.Register("azdevops", func(organizationURL, project, token string) provider.BuildProvider {
		return NewProvider(organizationURL, project, token)
	})
}

// Provider implements provider.BuildProvider for Azure DevOps.
type Provider struct {
	client *Client
}

// NewProvider creates an Azure DevOps provider from an organization URL,
// project name and personal access token.
func NewProvider(organizationURL, project, token string) *Provider {
	return &Provider{client: NewClient(organizationURL, project, token)}
}

// Name returns "azdevops".
func (p *Provider) Name() string {
	return "azdevops"
}

// GetBuild retrieves one build and maps it to the domain summary.
func (p *Provider) GetBuild(ctx context.Context, buildID int) (*provider.BuildSummary, error) {
	if buildID == 0 {
		return nil, provider.ErrMissingBuildID
	}

	build, err := p.client.GetBuild(ctx, buildID)
	if err != nil {
		return nil, err
	}

	summary := &provider.BuildSummary{
		Name:         build.Definition.Name,
		BuildID:      build.ID,
		DefinitionID: build.Definition.ID,
		Result:       build.Result,
		Status:       build.Status,
		URL:          build.Links.Web.Href,
		Branch:       build.SourceBranch,
		CommitID:     build.SourceVersion,
		TriggeredBy:  build.RequestedBy.DisplayName,
	}
	if summary.URL == "" {
		return nil, fmt.Errorf("%w: build %d", provider.ErrBuildURLNotFound, buildID)
	}
	return summary, nil
}

// GetTimeline retrieves a build's execution timeline.
func (p *Provider) GetTimeline(ctx context.Context, buildID int) (*provider.Timeline, error) {
	if buildID == 0 {
		return nil, provider.ErrMissingBuildID
	}

	wire, err := p.client.GetTimeline(ctx, buildID)
	if err != nil {
		if errors.Is(err, provider.ErrBuildNotFound) {
			return nil, fmt.Errorf("%w: build %d", provider.ErrTimelineNotFound, buildID)
		}
		return nil, err
	}
	if wire == nil || len(wire.Records) == 0 {
		return nil, fmt.Errorf("%w: build %d", provider.ErrTimelineNotFound, buildID)
	}

	timeline := &provider.Timeline{
		BuildID: buildID,
		Records: make([]provider.Record, 0, len(wire.Records)),
	}
	for _, rec := range wire.Records {
		record := provider.Record{
			ID:       rec.ID,
			ParentID: rec.ParentID,
			Type:     rec.Type,
			Name:     rec.Name,
			Result:   rec.Result,
		}
		if rec.Log != nil {
			record.Log = &provider.LogRef{ID: rec.Log.ID, URL: rec.Log.URL}
		}
		for _, issue := range rec.Issues {
			record.Issues = append(record.Issues, provider.Issue{
				Type:     issue.Type,
				Category: issue.Category,
				Message:  issue.Message,
			})
		}
		timeline.Records = append(timeline.Records, record)
	}
	return timeline, nil
}

// GetLogLines retrieves raw log lines for a build log.
func (p *Provider) GetLogLines(ctx context.Context, buildID, logID int) ([]string, error) {
	return p.client.GetLogLines(ctx, buildID, logID)
}

// ListBuilds returns build IDs for a definition and branch, most recent
// first (the API's startTimeDescending order is preserved).
func (p *Provider) ListBuilds(ctx context.Context, definitionID int, branch string) ([]int, error) {
	builds, err := p.client.ListBuilds(ctx, definitionID, branch)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(builds))
	for _, b := range builds {
		ids = append(ids, b.ID)
	}
	return ids, nil
}
