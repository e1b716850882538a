package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/verdict/internal/analyzer"
	"github.com/harrison/verdict/internal/config"
	"github.com/harrison/verdict/internal/frequency"
	"github.com/harrison/verdict/internal/learning"
	"github.com/harrison/verdict/internal/logger"
	"github.com/harrison/verdict/internal/metrics"
	"github.com/harrison/verdict/internal/publish"
)

// appOptions selects the optional parts of the runtime a command needs.
type appOptions struct {
	history bool // open the history database when enabled in config
	publish bool // forward analyses when publishing is enabled
	metrics bool // register Prometheus collectors
	fileLog bool // write a run log under the log directory
	replay  bool // rebuild the frequency store from history
}

// app is the wired runtime shared by the subcommands.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	svc     *analyzer.Service
	history *learning.Store
	metrics *metrics.Collector
	closers []func() error
}

// loadConfig resolves $VERDICT_HOME, loads the config file and applies the
// flags that were set explicitly on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	home, err := config.GetVerdictHome()
	if err != nil {
		return nil, err
	}

	path := stringFlag(cmd, "config")
	var cfg *config.Config
	if path != nil && *path != "" {
		cfg, err = config.LoadConfig(*path)
	} else {
		cfg, err = config.LoadConfigFromHome(home)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.MergeWithFlags(
		stringFlag(cmd, "log-level"),
		stringFlag(cmd, "log-dir"),
		stringFlag(cmd, "db"),
		stringFlag(cmd, "endpoint"),
		stringFlag(cmd, "addr"),
	)
	cfg.ResolvePaths(home)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// stringFlag returns the value of a flag only if it exists on cmd and was
// set by the user.
func stringFlag(cmd *cobra.Command, name string) *string {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return nil
	}
	v := f.Value.String()
	return &v
}

// newApp loads configuration and wires the service for cmd.
func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	loggers := []logger.Logger{logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)}
	if opts.fileLog {
		fl, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			loggers[0].Warnf("run log disabled: %v", err)
		} else {
			loggers = append(loggers, fl)
			a.closers = append(a.closers, fl.Close)
		}
	}
	a.log = logger.NewMultiLogger(loggers...)

	a.svc = analyzer.NewService()
	a.svc.Classifier = analyzer.NewClassifier(cfg.Analyzer.ContextRadius)
	a.svc.Logger = a.log

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.history && cfg.History.Enabled {
		if err := a.openHistory(ctx, opts.replay); err != nil {
			a.Close()
			return nil, err
		}
	}

	if opts.metrics {
		collector, err := metrics.NewCollector()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		a.metrics = collector
		a.svc.Metrics = collector
	}

	if opts.publish && cfg.Publish.Enabled {
		a.svc.Publisher = newPublisher(cfg.Publish, a.log, a.metrics)
		a.log.Debugf("publishing analyses to %s", cfg.Publish.Endpoint)
	}

	return a, nil
}

func (a *app) openHistory(ctx context.Context, replay bool) error {
	store, err := learning.NewStore(a.cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	a.history = store
	a.svc.History = store
	a.closers = append(a.closers, store.Close)

	if days := a.cfg.History.KeepDays; days > 0 {
		cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
		removed, err := store.CleanupOlderThan(ctx, cutoff)
		if err != nil {
			a.log.Warnf("history cleanup failed: %v", err)
		} else if removed > 0 {
			a.log.Infof("removed %d analyses older than %d days", removed, days)
		}
	}

	if replay && a.cfg.History.ReplayOnStart {
		n, err := store.Replay(ctx, a.svc.Store)
		if err != nil {
			return err
		}
		a.log.Debugf("replayed %d analyses from %s", n, store.Path())
	}
	return nil
}

// newPublisher builds the asynchronous HTTP publisher described by cfg.
// Delivery results are counted on m when it is non-nil; reports dropped or
// rejected at enqueue time are counted by the service.
func newPublisher(cfg config.PublishConfig, log logger.Logger, m *metrics.Collector) publish.Publisher {
	sink := publish.NewHTTPSink(cfg.Endpoint,
		publish.WithTimeout(cfg.Timeout),
		publish.WithMaxRetries(cfg.MaxRetries),
		publish.WithHeaders(cfg.Headers),
	)

	opts := []publish.AsyncOption{
		publish.WithBufferSize(cfg.BufferSize),
		publish.WithOnError(func(err error) {
			log.Warnf("publish failed: %v", err)
		}),
	}
	if m != nil {
		opts = append(opts, publish.WithOnResult(m.ObservePublish))
	}
	if cfg.DropOnFull {
		opts = append(opts, publish.WithDropOnFull())
	}
	return publish.NewAsync(sink, opts...)
}

// patternStore returns the frequency store for reporting commands: the
// service store when history is disabled, otherwise one rebuilt from the
// persisted analyses matching f.
func (a *app) patternStore(ctx context.Context, f learning.Filter) (*frequency.Store, error) {
	if a.history == nil {
		return a.svc.Store, nil
	}

	records, err := a.history.ListAnalyses(ctx, f)
	if err != nil {
		return nil, err
	}
	fs := frequency.New()
	for i := len(records) - 1; i >= 0; i-- {
		fs.RecordAt(records[i].Analysis, records[i].CreatedAt)
	}
	return fs, nil
}

// requireHistory fails when the command needs the history database but it
// is disabled.
func (a *app) requireHistory() error {
	if a.history == nil {
		return errors.New("history is disabled (set history.enabled: true in config)")
	}
	return nil
}

// Close releases everything newApp opened. The publisher is drained first
// so queued reports are sent before the process exits.
func (a *app) Close() error {
	var errs []error
	if a.svc != nil {
		if err := a.svc.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
