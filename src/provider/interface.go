// Package provider defines the CI build provider interface consumed by the
// failure analyzer, plus the domain model and error taxonomy shared by
// provider implementations.
package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// BuildProvider supplies build metadata, execution timelines and log content
// for one CI backend. All methods block until the provider responds;
// cancellation and timeouts ride on the context.
type BuildProvider interface {
	// Name returns the provider name (e.g. "azdevops").
	Name() string

	// GetBuild retrieves one build's summary.
	GetBuild(ctx context.Context, buildID int) (*BuildSummary, error)

	// GetTimeline retrieves the execution timeline for a build.
	GetTimeline(ctx context.Context, buildID int) (*Timeline, error)

	// GetLogLines retrieves the raw log lines behind a record's LogRef.
	GetLogLines(ctx context.Context, buildID, logID int) ([]string, error)

	// ListBuilds returns build IDs for a pipeline definition and branch,
	// ordered by start time descending (most recent first).
	ListBuilds(ctx context.Context, definitionID int, branch string) ([]int, error)
}

// Factory constructs a provider from an org URL, project and token.
type Factory func(organizationURL, project, token string) BuildProvider

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a provider implementation available by name.
// Implementations call this from an init function.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New constructs the named provider, or an error listing the registered
// names when it is unknown.
func New(name, organizationURL, project, token string) (BuildProvider, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrProviderUnknown, name, Registered())
	}
	return factory(organizationURL, project, token), nil
}

// Registered returns the sorted names of all registered providers.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
