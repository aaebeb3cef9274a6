package log

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Level
	}{
		{"trace", "trace", LevelTrace},
		{"debug", "debug", LevelDebug},
		{"info", "info", LevelInfo},
		{"warn", "warn", LevelWarn},
		{"error", "error", LevelError},
		{"mixed_case", "WARN", LevelWarn},
		{"unknown", "bogus", DefaultLevel},
		{"empty", "", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Format
	}{
		{"json", "json", FormatJSON},
		{"text", "text", FormatText},
		{"mixed_case", "JSON", FormatJSON},
		{"unknown", "yaml", DefaultFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFormat(tt.in); got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevels_ContainsAllNames(t *testing.T) {
	got := slices.Collect(Levels())

	want := []string{"trace", "debug", "info", "warn", "error"}
	if !slices.Equal(got, want) {
		t.Errorf("Levels() = %v, want %v", got, want)
	}
}

func TestFormats_ContainsAllNames(t *testing.T) {
	got := slices.Collect(Formats())

	want := []string{"json", "text"}
	if !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestMakeFormatTimeFunc(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{"empty_suppresses", "", ""},
		{"named_rfc3339", "RFC3339", "2024-06-01T12:30:00Z"},
		{"named_kitchen", "Kitchen", "12:30PM"},
		{"literal_layout", "2006-01-02", "2024-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format := makeFormatTimeFunc(tt.layout)
			if got := format(ts); got != tt.want {
				t.Errorf("format(%v) = %q, want %q", ts, got, tt.want)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	if got := LevelTrace.String(); got != "trace" {
		t.Errorf("LevelTrace.String() = %q, want %q", got, "trace")
	}

	if got := strings.ToUpper(LevelInfo.String()); got != "INFO" {
		t.Errorf("upper LevelInfo = %q, want INFO", got)
	}
}
