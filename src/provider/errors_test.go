package provider

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHint string
	}{
		{"missing build id", ErrMissingBuildID, "pipetriage triage"},
		{"auth failed", ErrAuthFailed, "AZURE_PIPELINES_TOKEN"},
		{"build not found", ErrBuildNotFound, "build id"},
		{"timeline not found", ErrTimelineNotFound, "queued"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapError(fmt.Errorf("context: %w", tt.err))

			var userErr *UserError
			if !errors.As(wrapped, &userErr) {
				t.Fatalf("WrapError(%v) = %T, want *UserError", tt.err, wrapped)
			}
			if !strings.Contains(userErr.Hint, tt.wantHint) {
				t.Errorf("hint %q does not mention %q", userErr.Hint, tt.wantHint)
			}
			// The original sentinel survives unwrapping.
			if !errors.Is(wrapped, tt.err) {
				t.Errorf("wrapped error lost the sentinel %v", tt.err)
			}
		})
	}
}

func TestWrapErrorPassthrough(t *testing.T) {
	if got := WrapError(nil); got != nil {
		t.Errorf("WrapError(nil) = %v, want nil", got)
	}

	unknown := errors.New("something else")
	if got := WrapError(unknown); got != unknown {
		t.Errorf("WrapError passed-through error changed: %v", got)
	}
}

func TestUserErrorMessage(t *testing.T) {
	err := &UserError{Message: "Broken", Hint: "fix it", Err: errors.New("cause")}
	msg := err.Error()
	for _, want := range []string{"Broken", "fix it", "cause"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestRegistry(t *testing.T) {
	fake := func(organizationURL, project, token string) BuildProvider { return nil }
	Register("testprov", fake)

	if _, err := New("testprov", "https://example", "proj", "token"); err != nil {
		t.Errorf("New(testprov) error: %v", err)
	}

	_, err := New("nope", "https://example", "proj", "token")
	if !errors.Is(err, ErrProviderUnknown) {
		t.Errorf("New(nope) error = %v, want ErrProviderUnknown", err)
	}

	found := false
	for _, name := range Registered() {
		if name == "testprov" {
			found = true
		}
	}
	if !found {
		t.Errorf("Registered() = %v, missing testprov", Registered())
	}
}
