package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/HarshArya1405/typescriptDemo/api/routes"
	"github.com/HarshArya1405/typescriptDemo/internal/analytics"
	"github.com/HarshArya1405/typescriptDemo/internal/content"
	"github.com/HarshArya1405/typescriptDemo/internal/dispatch"
	"github.com/HarshArya1405/typescriptDemo/internal/followers"
	"github.com/HarshArya1405/typescriptDemo/internal/identity"
	"github.com/HarshArya1405/typescriptDemo/internal/onboarding"
	"github.com/HarshArya1405/typescriptDemo/internal/protocols"
	"github.com/HarshArya1405/typescriptDemo/internal/roles"
	"github.com/HarshArya1405/typescriptDemo/internal/tags"
	"github.com/HarshArya1405/typescriptDemo/internal/users"
	"github.com/HarshArya1405/typescriptDemo/internal/votes"
	"github.com/HarshArya1405/typescriptDemo/internal/wallets"
	"github.com/HarshArya1405/typescriptDemo/pkg/auth0"
	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	"github.com/HarshArya1405/typescriptDemo/pkg/db"
	"github.com/HarshArya1405/typescriptDemo/pkg/feeds"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/HarshArya1405/typescriptDemo/pkg/metrics"
	"github.com/HarshArya1405/typescriptDemo/pkg/migrate"
	"github.com/HarshArya1405/typescriptDemo/pkg/mixpanel"
	"github.com/HarshArya1405/typescriptDemo/pkg/redis"
	"github.com/HarshArya1405/typescriptDemo/pkg/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var enqueuer dispatch.Enqueuer = dispatch.Inline{Logger: logg}
	var dispatcher *dispatch.Dispatcher
	if cfg.Dispatcher.Workers > 0 {
		dispatcher, err = dispatch.New(cfg.Dispatcher, metrics.NewDispatchMetrics(registry), logg)
		requireResource(ctx, logg, "dispatcher", err)
		dispatcher.Start()
		enqueuer = dispatcher
	}

	var tracker analytics.Tracker
	if cfg.Mixpanel.Token != "" {
		mp, err := mixpanel.NewClient(cfg.Mixpanel, logg)
		requireResource(ctx, logg, "mixpanel", err)
		tracker = mp
	} else {
		logg.Warn(ctx, "mixpanel token not set, analytics disabled")
	}
	analyticsSvc := analytics.NewService(tracker, enqueuer, logg)

	var linker auth0.Linker
	if cfg.Auth0.Enabled() {
		a0, err := auth0.NewClient(cfg.Auth0, logg)
		requireResource(ctx, logg, "auth0", err)
		linker = a0
	} else {
		logg.Warn(ctx, "auth0 management api not configured, identity links stay local")
	}

	var verifier auth0.TokenVerifier
	if cfg.Auth0.VerifierEnabled() {
		v, err := auth0.NewVerifier(cfg.Auth0, logg)
		requireResource(ctx, logg, "auth0 token verifier", err)
		verifier = v
	} else {
		logg.Warn(ctx, "auth0 domain not configured, checkUser is unavailable")
	}

	storage, err := s3.NewClient(ctx, cfg.S3, logg)
	requireResource(ctx, logg, "s3", err)

	feedClient := feeds.NewClient(cfg.Catalog, logg)

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	rolesRepo := roles.NewRepository(gormDB)
	tagsRepo := tags.NewRepository(gormDB)
	protocolsRepo := protocols.NewRepository(gormDB)
	walletsRepo := wallets.NewRepository(gormDB)

	rolesSvc, err := roles.NewService(rolesRepo)
	requireResource(ctx, logg, "roles service", err)
	if cfg.FeatureFlags.BootstrapRoles {
		_, err := rolesSvc.Bootstrap(ctx)
		requireResource(ctx, logg, "role bootstrap", err)
	}

	tagsSvc, err := tags.NewService(tagsRepo, feedClient, logg)
	requireResource(ctx, logg, "tags service", err)

	protocolsSvc, err := protocols.NewService(protocolsRepo, feedClient, logg)
	requireResource(ctx, logg, "protocols service", err)

	usersSvc, err := users.NewService(users.ServiceParams{
		Repo:      usersRepo,
		Tx:        dbClient,
		Tags:      tagsRepo,
		Protocols: protocolsRepo,
		Roles:     rolesRepo,
		Signer:    storage,
		Analytics: analyticsSvc,
		Logger:    logg,
	})
	requireResource(ctx, logg, "users service", err)

	locker, err := redis.NewLocker(redisClient, cfg.Reconcile.LockTTL)
	requireResource(ctx, logg, "reconcile locker", err)

	identitySvc, err := identity.NewService(identity.ServiceParams{
		Repo:        identity.NewRepository(gormDB),
		Users:       usersRepo,
		Wallets:     walletsRepo,
		Roles:       rolesRepo,
		Profiles:    usersSvc,
		Tx:          dbClient,
		Locker:      locker,
		LockKey:     redisClient.LockKey,
		WaitTimeout: cfg.Reconcile.LockTTL,
		Linker:      linker,
		Dispatcher:  enqueuer,
		Analytics:   analyticsSvc,
		Logger:      logg,
	})
	requireResource(ctx, logg, "identity service", err)

	walletsSvc, err := wallets.NewService(walletsRepo, usersRepo)
	requireResource(ctx, logg, "wallets service", err)

	followersSvc, err := followers.NewService(followers.NewRepository(gormDB), usersRepo)
	requireResource(ctx, logg, "followers service", err)

	onboardingSvc, err := onboarding.NewService(onboarding.NewRepository(gormDB), usersRepo)
	requireResource(ctx, logg, "onboarding service", err)

	contentSvc, err := content.NewService(content.ServiceParams{
		Videos:    content.NewVideoRepository(gormDB),
		Texts:     content.NewTextRepository(gormDB),
		Users:     usersRepo,
		Tags:      tagsRepo,
		Protocols: protocolsRepo,
		Tx:        dbClient,
		Logger:    logg,
	})
	requireResource(ctx, logg, "content service", err)

	votesSvc, err := votes.NewService(votes.NewRepository(gormDB), usersRepo, dbClient)
	requireResource(ctx, logg, "votes service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			DB:         dbClient,
			Cache:      redisClient,
			Metrics:    metrics.NewHTTPMetrics(registry),
			Gatherer:   registry,
			Storage:    storage,
			Verifier:   verifier,
			Identity:   identitySvc,
			Users:      usersSvc,
			Roles:      rolesSvc,
			Tags:       tagsSvc,
			Protocols:  protocolsSvc,
			Wallets:    walletsSvc,
			Followers:  followersSvc,
			Onboarding: onboardingSvc,
			Content:    contentSvc,
			Votes:      votesSvc,
		}),
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	if dispatcher != nil {
		closeErr = multierr.Append(closeErr, dispatcher.Shutdown(shutdownCtx))
	}
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		for _, err := range multierr.Errors(closeErr) {
			logg.Error(shutdownCtx, "error during shutdown", err)
		}
		os.Exit(1)
	}
	logg.Info(shutdownCtx, "api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
