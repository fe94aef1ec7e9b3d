// Package server wires storage, ledgers, orchestrator and transport together
// and runs the gRPC and metrics endpoints until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/accountkeeper/internal/server/notify"
	"github.com/dmitrijs2005/accountkeeper/internal/server/orchestrator"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"

	gs "github.com/dmitrijs2005/accountkeeper/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

// openRepositories is replaced in tests.
var openRepositories = repomanager.Open

type App struct {
	config       *config.Config
	logger       logging.Logger
	repositories repomanager.RepositoryManager
	metrics      *metrics.Metrics
	orchestrator *orchestrator.Orchestrator
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	rm, err := openRepositories(ctx, c.RepositoryOptions())
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	clock := timex.SystemClock{}
	entitlements := services.NewEntitlementService(rm.Plans(), rm.Subscriptions(), rm.Usage(), clock)

	seeded, err := entitlements.SeedPlans(ctx)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("seed plans error: %w", err)
	}
	if seeded {
		logger.Info(ctx, "Plan catalog seeded")
	}

	m := metrics.New()

	orch := orchestrator.New(
		services.NewCredentialService(rm.Accounts(), clock),
		services.NewTokenService(rm, clock, c.TokenValidityDuration),
		entitlements,
		notify.New(c.SMTP(), logger),
		logger,
		orchestrator.WithRecorder(m),
		orchestrator.WithSessionIssuer(auth.NewIssuer(c.SecretKey, c.AccessTokenValidityDuration)),
		orchestrator.WithFeatureQuota(c.EnforceFeatureQuota),
	)

	return &App{config: c, logger: logger, repositories: rm, metrics: m, orchestrator: orch}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(gs.Config{
		Address:       app.config.EndpointAddrGRPC,
		SecretKey:     app.config.SecretKey,
		AuthRateLimit: app.config.AuthRateLimit,
		AuthRateBurst: app.config.AuthRateBurst,
	}, app.logger, app.orchestrator, app.metrics)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())

	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.repositories.Close(closeCtx); err != nil {
		app.logger.Error(closeCtx, "close repositories", "error", err)
	}

	app.logger.Info(closeCtx, "App stopped")
}
