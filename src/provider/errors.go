package provider

import (
	"errors"
	"fmt"
)

var (
	ErrProviderUnknown  = errors.New("unknown CI provider")
	ErrMissingBuildID   = errors.New("build id is required")
	ErrAuthFailed       = errors.New("authentication failed")
	ErrBuildNotFound    = errors.New("build not found")
	ErrTimelineNotFound = errors.New("timeline not found")
	ErrBuildURLNotFound = errors.New("build url not found")
)

// UserError wraps errors with operator-facing messages for the CLI boundary.
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// WrapError converts provider errors into user-friendly messages. Errors it
// does not recognize pass through unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrMissingBuildID):
		return &UserError{
			Message: "No build specified",
			Hint:    "Pass an existing build id, e.g. pipetriage triage 1234",
			Err:     err,
		}
	case errors.Is(err, ErrAuthFailed):
		return &UserError{
			Message: "Authentication failed",
			Hint: "Create a personal access token with Build (read) scope and set it:\n" +
				"  export AZURE_PIPELINES_TOKEN=<your_access_token>",
			Err: err,
		}
	case errors.Is(err, ErrBuildNotFound):
		return &UserError{
			Message: "Build not found",
			Hint:    "Check the build id and that your token can read the project's builds.",
			Err:     err,
		}
	case errors.Is(err, ErrTimelineNotFound):
		return &UserError{
			Message: "Timeline not found for this build",
			Hint:    "The build may still be queued, or its timeline may have expired.",
			Err:     err,
		}
	}

	return err
}
