package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/picklepete/icloudgo/internal/findmyiphone"
	"github.com/picklepete/icloudgo/internal/icloud"
	"github.com/picklepete/icloudgo/internal/instrumentation"
	"github.com/picklepete/icloudgo/internal/logging"
	"github.com/picklepete/icloudgo/internal/server"
)

func newWatchCmd() *cobra.Command {
	var interval time.Duration
	var metricsAddr string
	var detailedLabels bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll device locations and expose Prometheus metrics",
		Long: `watch runs as a daemon: it refreshes the Find My iPhone device list on
an interval and exposes request metrics on /metrics and a liveness
probe on /healthz. Intended for long-lived monitoring setups where the
session cookies have already been verified once interactively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, interval, metricsAddr, detailedLabels)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 5*time.Minute, "Polling interval")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Address for the /metrics and /healthz endpoints")
	cmd.Flags().BoolVar(&detailedLabels, "detailed-labels", false, "Include per-endpoint labels on metrics (higher cardinality)")
	return cmd
}

func runWatch(ctx context.Context, interval time.Duration, metricsAddr string, detailedLabels bool) error {
	if interval <= 0 {
		return fmt.Errorf("polling interval must be positive, got %s", interval)
	}

	cfg := instrumentation.DefaultConfig()
	cfg.Enabled = true
	cfg.MetricsExporter = instrumentation.ExporterPrometheus
	cfg.ServiceVersion = version
	cfg.DetailedLabels = detailedLabels

	provider, err := instrumentation.NewProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize instrumentation: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shut down instrumentation", logging.Err(err))
		}
	}()

	session, err := newSession(ctx, icloud.WithMetrics(provider.Metrics()))
	if err != nil {
		return err
	}
	serviceRoot, err := session.ServiceURL("findme")
	if err != nil {
		return err
	}
	client, err := findmyiphone.NewClient(ctx, session.Requester(), serviceRoot, session.WithFamily())
	if err != nil {
		return err
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    metricsAddr,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	slog.Info("watching devices",
		logging.Service("findme"),
		slog.Duration("interval", interval),
		slog.String("metrics_addr", metricsServer.Addr()))
	logDevices(client)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		case err := <-serverErr:
			return fmt.Errorf("metrics server failed: %w", err)
		case <-ticker.C:
			if err := client.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				slog.Warn("device refresh failed", logging.Service("findme"), logging.Err(err))
				continue
			}
			logDevices(client)
		}
	}
}

func logDevices(client *findmyiphone.Client) {
	devices := client.Devices()
	slog.Info("refreshed devices", logging.Service("findme"), slog.Int("count", len(devices)))
	for _, device := range devices {
		located := device.Location != nil
		slog.Debug("device state",
			slog.String("name", device.Name),
			logging.Status(device.StatusText()),
			slog.Bool("located", located))
	}
}
