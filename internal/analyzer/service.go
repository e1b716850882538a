package analyzer

import (
	"context"
	"time"

	"github.com/harrison/verdict/internal/frequency"
	"github.com/harrison/verdict/internal/models"
	"github.com/harrison/verdict/internal/publish"
)

// Logger receives analysis events. A nil Logger disables logging.
type Logger interface {
	LogAnalysis(analysis models.ErrorAnalysis)
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Metrics observes analyses and publish outcomes. A nil Metrics is ignored.
type Metrics interface {
	ObserveAnalysis(analysis models.ErrorAnalysis, duration time.Duration)
	ObservePublish(err error)
}

// HistoryRecorder persists analyses beyond the lifetime of the process.
type HistoryRecorder interface {
	RecordAnalysis(ctx context.Context, req models.Request, analysis models.ErrorAnalysis) (string, error)
}

// Service composes classification with its side effects: the frequency
// store, the reporting sink and optional history.
type Service struct {
	Classifier *Classifier
	Store      *frequency.Store
	Publisher  publish.Publisher
	History    HistoryRecorder
	Logger     Logger
	Metrics    Metrics
}

// NewService creates a Service with a default classifier, a fresh store and
// a no-op publisher.
func NewService() *Service {
	return &Service{
		Classifier: NewClassifier(DefaultContextRadius),
		Store:      frequency.New(),
		Publisher:  publish.Nop{},
	}
}

// Analyze classifies req, records the result and forwards it to the
// reporting sink when a problem ID is present. Side-effect failures are
// logged; the analysis is always returned.
func (s *Service) Analyze(ctx context.Context, req models.Request) models.ErrorAnalysis {
	start := time.Now()
	analysis := s.classifier().Classify(req)

	if s.Store != nil {
		s.Store.Record(analysis)
	}
	if s.Metrics != nil {
		s.Metrics.ObserveAnalysis(analysis, time.Since(start))
	}
	if s.Logger != nil {
		s.Logger.LogAnalysis(analysis)
	}

	if s.History != nil {
		if id, err := s.History.RecordAnalysis(ctx, req, analysis); err != nil {
			s.warnf("history: failed to record analysis: %v", err)
		} else {
			s.debugf("history: recorded analysis %s", id)
		}
	}

	s.publish(ctx, req, analysis)
	return analysis
}

// publish forwards analyses that belong to a problem. Failures never reach
// the caller of Analyze.
//
// An *publish.Async publisher only queues the report, so a nil error is not
// a delivery; its outcome is observed through publish.WithOnResult instead.
func (s *Service) publish(ctx context.Context, req models.Request, analysis models.ErrorAnalysis) {
	if s.Publisher == nil || analysis.ProblemID() == "" {
		return
	}
	err := s.Publisher.Publish(ctx, models.NewReport(analysis, req.Code, req.Language))
	_, queued := s.Publisher.(*publish.Async)
	if s.Metrics != nil && (err != nil || !queued) {
		s.Metrics.ObservePublish(err)
	}
	if err != nil {
		s.warnf("publish: problem %s: %v", analysis.ProblemID(), err)
	}
}

// SimilarExamples returns stored messages sharing the pattern of analysis.
func (s *Service) SimilarExamples(analysis models.ErrorAnalysis) []string {
	if s.Store == nil {
		return nil
	}
	return s.Store.SimilarExamples(analysis.ErrorPattern, analysis.ErrorMessage)
}

// Close releases the publisher.
func (s *Service) Close() error {
	if s.Publisher == nil {
		return nil
	}
	return s.Publisher.Close()
}

func (s *Service) classifier() *Classifier {
	if s.Classifier == nil {
		return NewClassifier(DefaultContextRadius)
	}
	return s.Classifier
}

func (s *Service) warnf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Warnf(format, args...)
	}
}

func (s *Service) debugf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Debugf(format, args...)
	}
}
