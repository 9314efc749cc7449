package tui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		maxLen   int
		ellipsis bool
		want     string
	}{
		{"fits untouched", "hello", 10, true, "hello"},
		{"truncated with ellipsis", "hello world", 8, true, "hello..."},
		{"truncated without ellipsis", "hello world", 8, false, "hello wo"},
		{"zero width", "hello", 0, true, ""},
		{"whitespace trimmed", "  hello  ", 10, false, "hello"},
		{"wide runes counted by display width", "日本語テスト", 7, false, "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.maxLen, tt.ellipsis); got != tt.want {
				t.Errorf("Truncate(%q, %d, %v) = %q, want %q", tt.in, tt.maxLen, tt.ellipsis, got, tt.want)
			}
		})
	}
}

func TestTruncateAndPad(t *testing.T) {
	got := TruncateAndPad("ab", 5, false)
	if got != "ab   " {
		t.Errorf("TruncateAndPad = %q, want %q", got, "ab   ")
	}
	if VisualWidth(got) != 5 {
		t.Errorf("padded width = %d, want 5", VisualWidth(got))
	}

	got = TruncateAndPad("abcdefgh", 5, false)
	if got != "abcde" {
		t.Errorf("TruncateAndPad over-width = %q", got)
	}
}

func TestVisualWidth(t *testing.T) {
	if w := VisualWidth("abc"); w != 3 {
		t.Errorf("VisualWidth(abc) = %d, want 3", w)
	}
	// CJK characters render two cells wide.
	if w := VisualWidth("日本"); w != 4 {
		t.Errorf("VisualWidth(日本) = %d, want 4", w)
	}
}
