package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/overlay/viewbridge"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Observe the page and publish a snapshot after every change",
	Long: `Attach to the page, observe structural and size changes of the root
container and publish a snapshot after every coalesced recompute.

Snapshots go to the configured sinks (stdout when none is configured). With
--listen the editor HTTP API is served, including the /api/stream websocket.`,
	RunE: runWatch,
}

var (
	watchListen   string
	watchThrottle time.Duration
)

func init() {
	watchCmd.Flags().StringVar(&watchListen, "listen", "", "HTTP listen address for the editor API (overrides http.listen)")
	watchCmd.Flags().DurationVar(&watchThrottle, "throttle", -1, "recompute quiet window; 0 recomputes on every change (overrides throttle.window)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchListen != "" {
		cfg.HTTP.Listen = watchListen
	}
	if watchThrottle >= 0 {
		cfg.Throttle.Window = watchThrottle
	}
	if len(cfg.Sinks) == 0 {
		cfg.Sinks = []viewbridge.SinkConfig{{Type: "stdout"}}
	}

	var hub *viewbridge.Hub
	if cfg.HTTP.Listen != "" {
		hub = viewbridge.NewHub(logger)
	}
	sinks, err := viewbridge.SinksFromConfig(cfg.Sinks, os.Stdout, hub, logger)
	if err != nil {
		return err
	}
	if hub != nil && !hasSink(cfg.Sinks, "websocket") {
		sinks = append(sinks, hub)
	}

	sess, err := viewbridge.Open(ctx, cfg, viewbridge.SessionOptions{
		Sinks:   sinks,
		Observe: true,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	if cfg.HTTP.Listen == "" {
		<-ctx.Done()
		return nil
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Listen,
		Handler:           sess.Bridge.Handler(viewbridge.HTTPOptions{Hub: hub}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("viewbridge: http listening", "addr", cfg.HTTP.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func hasSink(cfgs []viewbridge.SinkConfig, typ string) bool {
	for _, c := range cfgs {
		if c.Type == typ {
			return true
		}
	}
	return false
}
