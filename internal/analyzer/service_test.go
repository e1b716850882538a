package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/verdict/internal/frequency"
	"github.com/harrison/verdict/internal/models"
	"github.com/harrison/verdict/internal/publish"
)

type fakeLogger struct {
	mu       sync.Mutex
	analyses []models.ErrorAnalysis
	warnings []string
}

func (l *fakeLogger) LogAnalysis(a models.ErrorAnalysis) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.analyses = append(l.analyses, a)
}

func (l *fakeLogger) Debugf(string, ...interface{}) {}

func (l *fakeLogger) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

type fakeMetrics struct {
	analyses  int
	published int
	failed    int
}

func (m *fakeMetrics) ObserveAnalysis(models.ErrorAnalysis, time.Duration) { m.analyses++ }

func (m *fakeMetrics) ObservePublish(err error) {
	if err != nil {
		m.failed++
		return
	}
	m.published++
}

type fakeHistory struct {
	requests []models.Request
	err      error
}

func (h *fakeHistory) RecordAnalysis(_ context.Context, req models.Request, _ models.ErrorAnalysis) (string, error) {
	h.requests = append(h.requests, req)
	return "id-1", h.err
}

func nullPointerRequest(problemID string) models.Request {
	return models.Request{
		StatusMessage: "Runtime Error",
		ErrorMessage:  "TypeError: Cannot read property 'x' of undefined at line 2",
		Code:          "let a;\nconsole.log(a.x);",
		Language:      "javascript",
		ProblemID:     problemID,
	}
}

func TestServiceAnalyzePublishesWithProblemID(t *testing.T) {
	var reports []models.Report
	svc := NewService()
	svc.Publisher = publish.Func(func(_ context.Context, r models.Report) error {
		reports = append(reports, r)
		return nil
	})
	metrics := &fakeMetrics{}
	svc.Metrics = metrics

	got := svc.Analyze(context.Background(), nullPointerRequest("p1"))
	assert.Equal(t, models.PatternNullPointer, got.ErrorPattern)

	require.Len(t, reports, 1)
	r := reports[0]
	assert.Equal(t, "p1", r.ProblemID)
	assert.Equal(t, "RUNTIME", r.ErrorType)
	assert.Equal(t, "VARIABLE_MANAGEMENT", r.ErrorSubtype)
	assert.Equal(t, "NULL_POINTER", r.PatternName)
	assert.Equal(t, "VARIABLE_MANAGEMENT: NULL_POINTER", r.PatternDescription)
	assert.Equal(t, "javascript", r.Language)
	assert.Equal(t, "let a;\nconsole.log(a.x);", r.Code)
	require.NotNil(t, r.LineNumber)
	assert.Equal(t, 2, *r.LineNumber)
	assert.Contains(t, r.SnippetContext, "▶ 2 |")

	assert.Equal(t, 1, metrics.analyses)
	assert.Equal(t, 1, metrics.published)
}

func TestServiceAnalyzeSkipsPublishWithoutProblemID(t *testing.T) {
	called := false
	svc := NewService()
	svc.Publisher = publish.Func(func(context.Context, models.Report) error {
		called = true
		return nil
	})

	svc.Analyze(context.Background(), nullPointerRequest(""))
	assert.False(t, called)

	b, ok := svc.Store.Bucket(models.PatternNullPointer)
	require.True(t, ok, "analysis is recorded even without a problem")
	assert.Equal(t, 1, b.Count)
}

func TestServicePublishFailureDoesNotAffectResult(t *testing.T) {
	logger := &fakeLogger{}
	metrics := &fakeMetrics{}
	svc := NewService()
	svc.Logger = logger
	svc.Metrics = metrics
	svc.Publisher = publish.Func(func(context.Context, models.Report) error {
		return errors.New("connection refused")
	})

	want := NewClassifier(DefaultContextRadius).Classify(nullPointerRequest("p1"))
	got := svc.Analyze(context.Background(), nullPointerRequest("p1"))

	assert.Equal(t, want, got)
	assert.Equal(t, 1, metrics.failed)
	require.Len(t, logger.warnings, 1)
	assert.Contains(t, logger.warnings[0], "connection refused")
	assert.Len(t, logger.analyses, 1)
}

func TestServiceRecordsIntoStore(t *testing.T) {
	svc := NewService()
	for _, id := range []string{"p1", "p2", "p1"} {
		svc.Analyze(context.Background(), nullPointerRequest(id))
	}

	b, ok := svc.Store.Bucket(models.PatternNullPointer)
	require.True(t, ok)
	assert.Equal(t, 3, b.Count)
	assert.Equal(t, []string{"p1", "p2"}, b.Problems)
	assert.Len(t, b.Examples, 3)
}

func TestServiceHistory(t *testing.T) {
	history := &fakeHistory{}
	svc := NewService()
	svc.History = history

	svc.Analyze(context.Background(), nullPointerRequest("p1"))
	require.Len(t, history.requests, 1)
	assert.Equal(t, "p1", history.requests[0].ProblemID)

	logger := &fakeLogger{}
	svc.Logger = logger
	history.err = errors.New("disk full")
	got := svc.Analyze(context.Background(), nullPointerRequest("p1"))
	assert.Equal(t, models.ErrorTypeRuntime, got.ErrorType)
	require.Len(t, logger.warnings, 1)
	assert.Contains(t, logger.warnings[0], "disk full")
}

func TestServiceSimilarExamples(t *testing.T) {
	svc := &Service{Store: frequency.New()}
	first := svc.Analyze(context.Background(), models.Request{StatusMessage: "Runtime Error", ErrorMessage: "a is null"})
	svc.Analyze(context.Background(), models.Request{StatusMessage: "Runtime Error", ErrorMessage: "b is null"})

	assert.Equal(t, []string{"b is null"}, svc.SimilarExamples(first))
	assert.NoError(t, svc.Close())
}

func TestServiceQueuedPublishIsNotCountedAsDelivered(t *testing.T) {
	metrics := &fakeMetrics{}
	release := make(chan struct{})
	inner := publish.Func(func(context.Context, models.Report) error {
		<-release
		return nil
	})

	svc := NewService()
	svc.Metrics = metrics
	svc.Publisher = publish.NewAsync(inner, publish.WithBufferSize(1), publish.WithDropOnFull())

	for i := 0; i < 4; i++ {
		svc.Analyze(context.Background(), nullPointerRequest("p1"))
	}
	close(release)
	require.NoError(t, svc.Close())

	assert.Equal(t, 0, metrics.published, "a queued report is not a delivery")
	assert.GreaterOrEqual(t, metrics.failed, 1, "dropped reports are counted")
}
