package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harrison/verdict/internal/models"
)

func TestDetermineErrorType(t *testing.T) {
	tests := []struct {
		name   string
		status string
		errMsg string
		want   models.ErrorType
	}{
		{"time limit precedes wrong answer", "Time Limit Exceeded and Wrong Answer", "", models.ErrorTypeTimeLimit},
		{"memory limit", "Memory Limit Exceeded on test 4", "", models.ErrorTypeMemoryLimit},
		{"wrong answer", "Wrong Answer", "", models.ErrorTypeWrongAnswer},
		{"output limit is a wrong answer", "OUTPUT LIMIT EXCEEDED", "", models.ErrorTypeWrongAnswer},
		{"wrong answer only counts in the status", "", "wrong answer on test 3", models.ErrorTypeUnknown},
		{"compilation status", "Compilation Error", "", models.ErrorTypeCompilation},
		{"syntax error in message", "", "SyntaxError: syntax error near }", models.ErrorTypeCompilation},
		{"runtime status", "Runtime Error", "exit code 139", models.ErrorTypeRuntime},
		{"null in message", "", "java.lang.NullPointerException", models.ErrorTypeRuntime},
		{"undefined in message", "", "x is undefined", models.ErrorTypeRuntime},
		{"presentation error", "Presentation Error", "", models.ErrorTypeLogical},
		{"accepted", "Accepted", "", models.ErrorTypeLogical},
		{"unrecognized", "Judging", "", models.ErrorTypeUnknown},
		{"empty", "", "", models.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineErrorType(tt.status, tt.errMsg))
		})
	}
}
