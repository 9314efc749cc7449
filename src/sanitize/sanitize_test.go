package sanitize

import (
	"reflect"
	"testing"
)

func TestCleanLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"timestamp prefix stripped",
			"2023-06-01T12:34:56.7890123Z npm install failed",
			"npm install failed",
		},
		{
			"ansi codes stripped",
			"\x1b[31merror:\x1b[0m build failed",
			"error: build failed",
		},
		{
			"vso marker stripped, message kept",
			"##[error]Process completed with exit code 1.",
			"Process completed with exit code 1.",
		},
		{
			"all three combined",
			"2023-06-01T12:34:56.7890123Z ##[section]\x1b[1mStarting: Build\x1b[0m",
			"Starting: Build",
		},
		{
			"embedded timestamp untouched",
			"started at 2023-06-01T12:34:56 sharp",
			"started at 2023-06-01T12:34:56 sharp",
		},
		{"plain line untouched", "hello world", "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanLine(tt.in); got != tt.want {
				t.Errorf("CleanLine(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanLines(t *testing.T) {
	in := []string{
		"##[debug]verbose output",
		"plain",
	}
	want := []string{"verbose output", "plain"}

	if got := CleanLines(in); !reflect.DeepEqual(got, want) {
		t.Errorf("CleanLines(%v) = %v, want %v", in, got, want)
	}
}
