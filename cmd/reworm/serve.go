package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pedronauck/reworm/internal/config"
	"github.com/pedronauck/reworm/internal/errors"
	"github.com/pedronauck/reworm/pkg/devtools"
	"github.com/pedronauck/reworm/pkg/observe"
	"github.com/pedronauck/reworm/pkg/reworm"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the store inspector and metrics",
		Long: `Start an HTTP server for the stores seeded from reworm.json.

Routes:
  /stores        every store with its initial and current value
  /stores/{id}   one store
  /stream        WebSocket stream of broadcasts
  /metrics       Prometheus metrics (when metrics are enabled)
  /health        liveness probe

Examples:
  reworm serve
  reworm serve --addr=0.0.0.0:7070`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Devtools.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.Devtools.Addr)
			if err != nil {
				return errors.New("R122").WithDetail("cannot listen on " + cfg.Devtools.Addr).Wrap(err)
			}
			return runServe(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, ln)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to reworm.json (default: search from working dir)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from reworm.json)")

	return cmd
}

// app is the wired container behind `reworm serve`.
type app struct {
	container *reworm.Container
	devtools  *devtools.Server
	handler   http.Handler
}

func (a *app) Close() {
	if a.devtools != nil {
		a.devtools.Close()
	}
}

// newApp builds the container, its observers and the HTTP routes.
func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	var opts []reworm.Option
	opts = append(opts, reworm.WithLogger(logger))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, reworm.WithObserver(observe.NewMetrics(
			observe.WithRegistry(registry),
			observe.WithNamespace(cfg.Metrics.Namespace),
			observe.WithSubsystem(cfg.Metrics.Subsystem),
		)))
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}

	if cfg.Tracing.Enabled {
		opts = append(opts, reworm.WithObserver(observe.NewTracing(
			observe.WithTracerName(cfg.Tracing.TracerName),
		)))
	}

	c, err := cfg.NewContainer(opts...)
	if err != nil {
		return nil, err
	}

	a := &app{container: c}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if cfg.Devtools.Enabled {
		a.devtools = devtools.New(c, devtools.WithLogger(logger))
		r.Mount("/", a.devtools)
	}

	a.handler = r
	return a, nil
}

func runServe(ctx context.Context, out, logOut io.Writer, cfg *config.Config, ln net.Listener) error {
	if !cfg.Devtools.Enabled && !cfg.Metrics.Enabled {
		ln.Close()
		return errors.New("R122").
			WithDetail("nothing to serve: devtools and metrics are both disabled").
			WithSuggestion("Set \"devtools\": {\"enabled\": true} in reworm.json")
	}

	logger := cfg.Logger(logOut)
	a, err := newApp(cfg, logger)
	if err != nil {
		ln.Close()
		return err
	}
	defer a.Close()

	server := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printBanner(out)
	success(out, "Serving %d stores on http://%s", a.container.Registry().Len(), ln.Addr())
	if path := cfg.Path(); path != "" {
		info(out, "Config:    %s", path)
	}
	if cfg.Devtools.Enabled {
		info(out, "Inspector: http://%s/stores", ln.Addr())
	}
	if cfg.Metrics.Enabled {
		info(out, "Metrics:   http://%s/metrics", ln.Addr())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Fprintln(out, "\n  Shutting down...")
	// Shutdown does not track hijacked WebSocket connections.
	a.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", "error", err)
	}
	return nil
}
