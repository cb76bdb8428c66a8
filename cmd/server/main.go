package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"meeting-scheduler-api/internal/audit"
	"meeting-scheduler-api/internal/config"
	"meeting-scheduler-api/internal/grpcweb"
	"meeting-scheduler-api/internal/handler"
	"meeting-scheduler-api/internal/logging"
	"meeting-scheduler-api/internal/metrics"
	"meeting-scheduler-api/internal/middleware"
	"meeting-scheduler-api/internal/rpc"
	"meeting-scheduler-api/internal/service"
	"meeting-scheduler-api/internal/store"
	"meeting-scheduler-api/internal/store/postgres"
	"meeting-scheduler-api/internal/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.Setup(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()
	log.Info("store ready", "driver", cfg.DB.Driver)

	m := metrics.New()
	svc := service.New(repo, service.WithLogger(log), service.WithMetrics(m))
	rl := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	grpcSrv, health := rpc.New(svc, rpc.Options{Log: log, Metrics: m, Limiter: rl, Secret: cfg.APISecret})

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	var web http.Handler
	if cfg.GRPCAddr != "" {
		conn, err := grpc.NewClient(loopback(cfg.GRPCAddr), grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("grpc-web dial: %w", err)
		}
		defer conn.Close()
		web = grpcweb.New(conn, log).Handler()
	}
	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: handler.NewRouter(handler.Deps{
			Service:        svc,
			Log:            log,
			Metrics:        m,
			Limiter:        rl,
			Secret:         cfg.APISecret,
			AllowedOrigins: cfg.AllowedOrigins,
			Ping:           repo.Ping,
			GRPCWeb:        web,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.APISecret == "" {
		log.Warn("API_SECRET not set, write endpoints are unauthenticated")
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rl.Run(ctx)
		return nil
	})

	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})

	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		g.Go(func() error {
			log.Info("grpc listening", "addr", cfg.GRPCAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				return fmt.Errorf("grpc: %w", err)
			}
			return nil
		})
	}

	if cfg.AuditEnabled() {
		auditor := audit.New(repo, m, log, 7*24*time.Hour)
		c, err := auditor.Schedule(ctx, cfg.AuditSchedule)
		if err != nil {
			return err
		}
		c.Start()
		log.Info("conflict audit scheduled", "schedule", cfg.AuditSchedule)
		g.Go(func() error {
			<-ctx.Done()
			<-c.Stop().Done()
			return nil
		})
	}

	// graceful shutdown
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		health.Shutdown()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			grpcSrv.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-sctx.Done():
			grpcSrv.Stop()
		}
		return httpSrv.Shutdown(sctx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (store.Repository, error) {
	switch cfg.DB.Driver {
	case "postgres":
		return postgres.Connect(ctx, cfg.DB.URL)
	case "sqlite":
		return sqlite.New(cfg.DB.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DB.Driver)
	}
}

// loopback turns a listen address such as ":50051" into a dial target.
func loopback(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
