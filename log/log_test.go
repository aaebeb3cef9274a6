package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.config.level != DefaultLevel {
		t.Errorf("expected default level %v, got %v", DefaultLevel, logger.config.level)
	}

	if logger.config.caller {
		t.Error("expected caller info disabled by default")
	}

	if logger.config.format != DefaultFormat {
		t.Errorf("expected default format %v, got %v", DefaultFormat, logger.config.format)
	}
}

func TestLogger_Make_WithLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelDebug))

	logger.Debug("debug message")

	if !strings.Contains(buf.String(), "debug message") {
		t.Error("debug message not logged after setting level to Debug")
	}

	buf.Reset()

	logger2 := Make(&buf, WithLevel(LevelError))
	logger2.Info("info message")

	if buf.Len() > 0 {
		t.Error("info message logged when level is Error")
	}

	logger2.Error("error message")

	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message not logged at Error level")
	}
}

func TestLogger_Make_TraceLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace), WithFormat(FormatText), WithPretty(false))
	logger.Trace("trace message")

	output := buf.String()

	if !strings.Contains(output, "trace message") {
		t.Error("trace message not logged at Trace level")
	}

	if !strings.Contains(output, "TRACE") {
		t.Errorf("expected TRACE level label, got: %s", output)
	}
}

func TestLogger_Make_WithFormat_SetsOutputFormat(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf, WithFormat(FormatJSON))
		logger.Info("test message", slog.String("key", "value"))

		var result map[string]any
		if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
			t.Fatalf("failed to parse JSON output: %v", err)
		}

		if result["msg"] != "test message" {
			t.Errorf("expected msg=test message, got %v", result["msg"])
		}

		if result["key"] != "value" {
			t.Errorf("expected key=value, got %v", result["key"])
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		logger := Make(&buf, WithFormat(FormatText), WithPretty(false))
		logger.Info("test message", slog.String("key", "value"))

		output := buf.String()

		if !strings.Contains(output, "test message") {
			t.Errorf("expected text output to contain message, got: %s", output)
		}

		if !strings.Contains(output, "key=value") {
			t.Errorf("expected text output to contain key=value, got: %s", output)
		}
	})
}

func TestLogger_Make_WithCaller_IncludesSource(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithCaller(true))
	logger.Info("test message")

	if !strings.Contains(buf.String(), "source") {
		t.Error("caller info not included when enabled")
	}

	buf.Reset()

	logger2 := Make(&buf, WithCaller(false))
	logger2.Info("test message")

	if strings.Contains(buf.String(), "source") {
		t.Error("caller info included when disabled")
	}
}

func TestLogger_Wrap_OverridesConfiguration(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelError))

	wrapped := logger.Wrap(WithLevel(LevelDebug))
	wrapped.Debug("debug message")

	if !strings.Contains(buf.String(), "debug message") {
		t.Error("wrapped logger did not apply new level")
	}

	// Original logger retains its own level.
	buf.Reset()
	logger.Debug("hidden")

	if buf.Len() > 0 {
		t.Error("original logger level changed by Wrap")
	}
}

func TestLogger_With_IncludesAttrs(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf).With(slog.String("unit", "greet"))
	logger.Info("test message")

	if !strings.Contains(buf.String(), "greet") {
		t.Errorf("attribute not included in output: %s", buf.String())
	}
}

func TestLogger_ZeroValue_IsSafe(t *testing.T) {
	var logger Logger

	// Must not panic.
	logger.Info("into the void")

	if logger.Level() != DefaultLevel {
		t.Errorf("zero logger Level() = %v, want %v", logger.Level(), DefaultLevel)
	}
}
