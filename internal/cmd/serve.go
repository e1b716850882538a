package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/verdict/internal/server"
)

// NewServeCommand creates the 'verdict serve' command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Serve the analysis API over HTTP.

Routes:
  POST /analyze    classify a JSON request and record it
  GET  /patterns   pattern counts, most frequent first (?limit=N)
  GET  /similar    recorded messages for a pattern (?pattern=P&exclude=MSG)
  GET  /healthz    liveness
  GET  /metrics    Prometheus metrics

The pattern store is rebuilt from history on start when
history.replay_on_start is set. SIGINT or SIGTERM triggers a graceful
shutdown that drains queued reports.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default from config: 127.0.0.1:8080)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, appOptions{
		history: true,
		publish: true,
		metrics: true,
		fileLog: true,
		replay:  true,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.cfg.Server, a.svc, a.log, a.metrics)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		return err
	}
	return <-errCh
}
