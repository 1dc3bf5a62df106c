package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/metrics/export/prometheus"
	"github.com/MrEthical07/goGate/middleware"
	"github.com/MrEthical07/goGate/signin"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(st *cliState) *cobra.Command {
	var (
		addr     string
		devRedis bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gate in front of a placeholder page handler",
		Long: `Starts an HTTP server with the sign-in API under /api/auth, the
Prometheus endpoint at Server.MetricsPath and every other path gated by the
guard pipeline.

With --dev-redis an in-process Redis is started for the session registry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := st.config
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b := goGate.New().WithConfig(cfg).WithLogger(st.logger)
			if devRedis {
				mr, err := miniredis.Run()
				if err != nil {
					return fmt.Errorf("start dev redis: %w", err)
				}
				defer mr.Close()
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				defer rdb.Close()
				b = b.WithRedis(rdb)
				st.logger.Info("using in-process redis", zap.String("addr", mr.Addr()))
			}

			g, err := b.Build()
			if err != nil {
				return err
			}
			defer g.Close()

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           newServeMux(g, cfg),
				ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
			}
			return runServer(ctx, srv, cfg.Server, st.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides Server.Addr)")
	cmd.Flags().BoolVar(&devRedis, "dev-redis", false, "Run an in-process Redis for the session registry")
	return cmd
}

// newServeMux mounts the metrics and health endpoints outside the pipeline
// and everything else behind it.
func newServeMux(g *goGate.Gate, cfg goGate.Config) http.Handler {
	pages := http.NewServeMux()
	signin.NewHandlerForGate(g, signin.StubVerifier{}).Register(pages)
	pages.HandleFunc("/", pageHandler)

	root := http.NewServeMux()
	if cfg.Metrics.Enabled && cfg.Server.MetricsPath != "" {
		root.Handle(cfg.Server.MetricsPath, prometheus.NewPrometheusExporter(g).Handler())
	}
	root.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := g.Ping(r.Context()); err != nil {
			http.Error(w, "session backend unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	root.Handle("/", middleware.RequestID(middleware.Gate(g)(pages)))
	return root
}

func pageHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "page %s\n", r.URL.Path)
}

func runServer(ctx context.Context, srv *http.Server, cfg goGate.ServerConfig, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
