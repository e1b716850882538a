package logger

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/harrison/verdict/internal/models"
)

var _ Logger = (*ConsoleLogger)(nil)
var _ Logger = (*FileLogger)(nil)
var _ Logger = (*NoOpLogger)(nil)
var _ Logger = (*MultiLogger)(nil)

func sampleAnalysis() models.ErrorAnalysis {
	return models.ErrorAnalysis{
		ErrorType:      models.ErrorTypeRuntime,
		ErrorPattern:   models.PatternNullPointer,
		ErrorCategory:  models.CategoryVariableManagement,
		LineNumber:     models.IntPtr(12),
		ErrorMessage:   "TypeError: Cannot read property 'length' of undefined at line 12",
		CodeSnippet:    "  11 | function solve(input) {\n▶ 12 |   return input.words.length;",
		FailedTestCase: "[]",
		ExpectedOutput: "0",
		ActualOutput:   "",
		ProblemContext: &models.ProblemContext{ProblemID: "two-sum"},
	}
}

// TestNewConsoleLogger verifies the constructor creates a ConsoleLogger with the provided writer.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "INFO")

		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.logLevel != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.logLevel)
		}
		if logger.colorOutput {
			t.Error("color must be off for non-terminal writers")
		}
	})

	t.Run("invalid level defaults to info", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "loud")
		if logger.logLevel != "info" {
			t.Errorf("expected info, got %q", logger.logLevel)
		}
	})

	t.Run("with nil writer", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "info")
		logger.LogInfo("discarded")
		logger.LogAnalysis(sampleAnalysis())
	})
}

// TestLogLevelFiltering verifies that messages are filtered based on log level
func TestLogLevelFiltering(t *testing.T) {
	levels := []string{"trace", "debug", "info", "warn", "error"}

	for ci, configured := range levels {
		for mi, message := range levels {
			name := fmt.Sprintf("%s logger, %s message", configured, message)
			t.Run(name, func(t *testing.T) {
				buf := &bytes.Buffer{}
				logger := NewConsoleLogger(buf, configured)

				switch message {
				case "trace":
					logger.LogTrace("msg")
				case "debug":
					logger.LogDebug("msg")
				case "info":
					logger.LogInfo("msg")
				case "warn":
					logger.LogWarn("msg")
				case "error":
					logger.LogError("msg")
				}

				shouldAppear := mi >= ci
				if got := strings.Contains(buf.String(), "msg"); got != shouldAppear {
					t.Errorf("appeared = %v, want %v (output %q)", got, shouldAppear, buf.String())
				}
			})
		}
	}
}

func TestFormattedVariants(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "debug")

	logger.Debugf("replayed %d analyses", 4)
	logger.Infof("listening on %s", ":8080")
	logger.Warnf("publish failed: %v", "timeout")
	logger.Errorf("fatal: %s", "boom")

	out := buf.String()
	for _, want := range []string{
		"[DEBUG] replayed 4 analyses",
		"[INFO] listening on :8080",
		"[WARN] publish failed: timeout",
		"[ERROR] fatal: boom",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLogFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogInfo("hello")

	line := buf.String()
	// [HH:MM:SS] [INFO] hello\n
	if len(line) < 11 || line[0] != '[' || line[9] != ']' {
		t.Fatalf("unexpected timestamp prefix: %q", line)
	}
	if !strings.HasSuffix(line, " [INFO] hello\n") {
		t.Errorf("unexpected line: %q", line)
	}
}

func TestConsoleLogAnalysis(t *testing.T) {
	t.Run("info shows the summary only", func(t *testing.T) {
		buf := &bytes.Buffer{}
		NewConsoleLogger(buf, "info").LogAnalysis(sampleAnalysis())

		out := buf.String()
		if !strings.Contains(out, "[INFO] RUNTIME/NULL_POINTER (VARIABLE_MANAGEMENT) line 12 problem=two-sum") {
			t.Errorf("missing summary:\n%s", out)
		}
		if strings.Contains(out, "snippet") {
			t.Errorf("snippet should be debug only:\n%s", out)
		}
	})

	t.Run("debug adds message and snippet", func(t *testing.T) {
		buf := &bytes.Buffer{}
		NewConsoleLogger(buf, "debug").LogAnalysis(sampleAnalysis())

		out := buf.String()
		if !strings.Contains(out, "message: TypeError") {
			t.Errorf("missing message:\n%s", out)
		}
		if !strings.Contains(out, "▶ 12 |") {
			t.Errorf("missing snippet:\n%s", out)
		}
	})

	t.Run("warn suppresses analyses", func(t *testing.T) {
		buf := &bytes.Buffer{}
		NewConsoleLogger(buf, "warn").LogAnalysis(sampleAnalysis())
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

func TestFormatAnalysisLine(t *testing.T) {
	tests := []struct {
		name     string
		analysis models.ErrorAnalysis
		want     string
	}{
		{"full", sampleAnalysis(), "RUNTIME/NULL_POINTER (VARIABLE_MANAGEMENT) line 12 problem=two-sum"},
		{"type only", models.ErrorAnalysis{ErrorType: models.ErrorTypeUnknown}, "UNKNOWN"},
		{"no line", models.ErrorAnalysis{
			ErrorType:     models.ErrorTypeWrongAnswer,
			ErrorPattern:  models.PatternOffByOne,
			ErrorCategory: models.CategoryLoops,
		}, "WRONG_ANSWER/OFF_BY_ONE (LOOPS)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAnalysisLine(tt.analysis, false); got != tt.want {
				t.Errorf("formatAnalysisLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsoleLoggerConcurrentWrites(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.Infof("message %d", i)
		}(i)
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "\n"); got != 20 {
		t.Errorf("expected 20 lines, got %d", got)
	}
}

type recordingLogger struct {
	NoOpLogger
	analyses int
	warnings []string
}

func (r *recordingLogger) LogAnalysis(models.ErrorAnalysis) { r.analyses++ }

func (r *recordingLogger) Warnf(format string, args ...interface{}) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func TestMultiLogger(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	multi := NewMultiLogger(a, nil, b)

	multi.LogAnalysis(sampleAnalysis())
	multi.Warnf("queue %s", "full")
	multi.Debugf("ignored")

	for i, r := range []*recordingLogger{a, b} {
		if r.analyses != 1 {
			t.Errorf("logger %d: analyses = %d, want 1", i, r.analyses)
		}
		if len(r.warnings) != 1 || r.warnings[0] != "queue full" {
			t.Errorf("logger %d: warnings = %v", i, r.warnings)
		}
	}
}
