package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	httpadapter "dealmatch/internal/adapters/http"
	"dealmatch/internal/adapters/memory"
	pg "dealmatch/internal/adapters/postgres"
	"dealmatch/internal/config"
	"dealmatch/internal/documents"
	"dealmatch/internal/identity"
	"dealmatch/internal/logging"
	"dealmatch/internal/ports"
	"dealmatch/internal/schema"
	"dealmatch/internal/seed"
	analysissvc "dealmatch/internal/services/analysis"
	dashboardsvc "dealmatch/internal/services/dashboard"
	discoverysvc "dealmatch/internal/services/discovery"
	profilesvc "dealmatch/internal/services/profiles"
	analysisworker "dealmatch/internal/workers/analysisrunner"
)

// stores is the storage backend chosen at boot.
type stores struct {
	profiles  ports.ProfileRepository
	matches   ports.MatchRepository
	documents interface {
		ports.DocumentRepository
		ports.JobRepository
	}
	health ports.Pinger
	close  func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging)
	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	ids := identity.System{}
	if cfg.SeedSampleData {
		if err := seed.Load(ctx, st.profiles, st.documents, ids.Now()); err != nil {
			return err
		}
		logger.Info("sample data loaded")
	}

	pipeline := documents.New(st.documents, ids)
	runner := analysisworker.New(st.documents, pipeline, analysisworker.SimulatedAnalyzer{Delay: cfg.Analysis.Delay}, analysisworker.Options{
		Concurrency:  cfg.Analysis.Workers,
		PollInterval: cfg.Analysis.PollInterval,
		Timeout:      cfg.Analysis.Timeout,
		Logger:       logger.With("component", "analysis"),
	})
	onboarding := profilesvc.New(schema.MustDefault(), st.profiles, ids, logger.With("component", "onboarding"))
	srv := httpadapter.New(httpadapter.Services{
		Onboarding: onboarding,
		Profiles:   onboarding,
		Discovery:  discoverysvc.New(st.profiles, st.matches, ids, logger.With("component", "discovery")),
		Analysis:   analysissvc.New(pipeline, runner),
		Dashboard:  dashboardsvc.New(st.profiles, st.matches, st.documents),
		Health:     st.health,
	}, logger)

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}
	if cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConnections)
	}
	httpServer := &http.Server{
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", ln.Addr().String(), "env", cfg.Env)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if cfg.Analysis.Workers > 0 {
			logger.Info("analysis workers started", "workers", cfg.Analysis.Workers)
		}
		return runner.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStores uses Postgres when DATABASE_URL is set and the in-memory
// adapter otherwise.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		docs := memory.NewDocuments()
		return stores{
			profiles:  memory.NewProfiles(),
			matches:   memory.NewMatches(),
			documents: docs,
			health:    docs,
			close:     func() {},
		}, nil
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return stores{}, err
	}
	return stores{
		profiles:  db.Profiles(),
		matches:   db.Matches(),
		documents: db.Documents(),
		health:    db,
		close:     db.Close,
	}, nil
}
