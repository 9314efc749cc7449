// Package azdevops provides a client for the Azure DevOps Build REST API.
package azdevops

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pipetriage/src/provider"
)

// APIVersion is the Azure DevOps REST API version the client speaks.
const APIVersion = "7.1"

// Client is an Azure DevOps Build API client for one organization/project.
type Client struct {
	organizationURL string
	project         string
	token           string
	httpClient      *http.Client
}

// Build is the wire representation of an Azure DevOps build.
type Build struct {
	ID            int    `json:"id"`
	BuildNumber   string `json:"buildNumber"`
	Status        string `json:"status"`
	Result        string `json:"result"`
	SourceBranch  string `json:"sourceBranch"`
	SourceVersion string `json:"sourceVersion"`
	Definition    struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"definition"`
	RequestedBy struct {
		DisplayName string `json:"displayName"`
	} `json:"requestedBy"`
	Links struct {
		Web struct {
			Href string `json:"href"`
		} `json:"web"`
	} `json:"_links"`
}

// TimelineRecord is one wire-format timeline entry.
type TimelineRecord struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Result   string `json:"result"`
	Log      *struct {
		ID  int    `json:"id"`
		URL string `json:"url"`
	} `json:"log"`
	Issues []struct {
		Type     string `json:"type"`
		Category string `json:"category"`
		Message  string `json:"message"`
	} `json:"issues"`
}

// Timeline is the wire representation of a build timeline.
type Timeline struct {
	ID      string           `json:"id"`
	Records []TimelineRecord `json:"records"`
}

// NewClient creates a new Azure DevOps Build API client.
// The token is a personal access token sent as the basic-auth password with
// an empty username, which is how Azure DevOps expects PATs.
func NewClient(organizationURL, project, token string) *Client {
	return &Client{
		organizationURL: organizationURL,
		project:         project,
		token:           token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetBuild fetches one build's metadata.
func (c *Client) GetBuild(ctx context.Context, buildID int) (*Build, error) {
	u := fmt.Sprintf("%s/%s/_apis/build/builds/%d?api-version=%s",
		c.organizationURL, url.PathEscape(c.project), buildID, APIVersion)

	var build Build
	if err := c.getJSON(ctx, u, &build); err != nil {
		return nil, err
	}
	return &build, nil
}

// GetTimeline fetches the execution timeline of a build.
func (c *Client) GetTimeline(ctx context.Context, buildID int) (*Timeline, error) {
	u := fmt.Sprintf("%s/%s/_apis/build/builds/%d/timeline?api-version=%s",
		c.organizationURL, url.PathEscape(c.project), buildID, APIVersion)

	var timeline Timeline
	if err := c.getJSON(ctx, u, &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

// GetLogLines fetches the log lines for a build log. The endpoint returns a
// JSON envelope {count, value} when asked for application/json.
func (c *Client) GetLogLines(ctx context.Context, buildID, logID int) ([]string, error) {
	u := fmt.Sprintf("%s/%s/_apis/build/builds/%d/logs/%d?api-version=%s",
		c.organizationURL, url.PathEscape(c.project), buildID, logID, APIVersion)

	var envelope struct {
		Count int      `json:"count"`
		Value []string `json:"value"`
	}
	if err := c.getJSON(ctx, u, &envelope); err != nil {
		return nil, err
	}
	return envelope.Value, nil
}

// ListBuilds fetches builds for a pipeline definition and branch, ordered by
// start time descending.
func (c *Client) ListBuilds(ctx context.Context, definitionID int, branch string) ([]Build, error) {
	q := url.Values{}
	q.Set("definitions", strconv.Itoa(definitionID))
	q.Set("branchName", branch)
	q.Set("queryOrder", "startTimeDescending")
	q.Set("api-version", APIVersion)
	u := fmt.Sprintf("%s/%s/_apis/build/builds?%s",
		c.organizationURL, url.PathEscape(c.project), q.Encode())

	var envelope struct {
		Count int     `json:"count"`
		Value []Build `json:"value"`
	}
	if err := c.getJSON(ctx, u, &envelope); err != nil {
		return nil, err
	}
	return envelope.Value, nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth("", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		// Azure DevOps also answers expired PATs with a sign-in redirect
		// page; both collapse to the same remediation for the caller.
		return fmt.Errorf("%w: status %d", provider.ErrAuthFailed, resp.StatusCode)
	case http.StatusNotFound:
		return provider.ErrBuildNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
