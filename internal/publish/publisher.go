// Package publish forwards analyses to the external ingestion endpoint.
//
// Publishing is a side channel: callers wrap a sink in Async so that a slow
// or failing endpoint never delays or fails classification.
package publish

import (
	"context"

	"github.com/harrison/verdict/internal/models"
)

// Publisher delivers ingestion reports.
type Publisher interface {
	Publish(ctx context.Context, report models.Report) error
	Close() error
}

// Nop discards every report.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, models.Report) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }

// Func adapts a function to the Publisher interface.
type Func func(ctx context.Context, report models.Report) error

// Publish calls f.
func (f Func) Publish(ctx context.Context, report models.Report) error { return f(ctx, report) }

// Close does nothing.
func (f Func) Close() error { return nil }
