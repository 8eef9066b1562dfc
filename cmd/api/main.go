package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/campaign-system/internal/api"
	"github.com/99minutos/campaign-system/internal/core/ports"
	"github.com/99minutos/campaign-system/internal/core/service"
	"github.com/99minutos/campaign-system/internal/infrastructure/db/memory"
	mongostore "github.com/99minutos/campaign-system/internal/infrastructure/db/mongo"
	pgstore "github.com/99minutos/campaign-system/internal/infrastructure/db/postgres"
	redisstore "github.com/99minutos/campaign-system/internal/infrastructure/db/redis"
	"github.com/99minutos/campaign-system/internal/infrastructure/http/handlers"
	"github.com/99minutos/campaign-system/internal/infrastructure/queue"
	"github.com/99minutos/campaign-system/internal/pkg/config"
	"github.com/99minutos/campaign-system/internal/pkg/password"
	"github.com/99minutos/campaign-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// stores is the persistence wiring selected by STORE_DRIVER.
type stores struct {
	accounts  ports.AccountRepository
	campaigns ports.CampaignRepository
	lastLogin queue.LastLoginStore
	checks    []handlers.Checker
	close     func(context.Context)
}

// @title                       Campaign System API
// @version                     1.0
// @description                 Account registration, session tokens and owner-scoped campaign records.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "campaign-api",
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("campaign api stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("campaign api shut down")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		st.close(closeCtx)
	}()

	var idempotency ports.IdempotencyStore
	if cfg.Redis.Enabled {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		idempotency = redisstore.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		st.checks = append(st.checks, redisstore.NewHealthCheck(rdb))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis idempotency store enabled")
	} else {
		idempotency = memory.NewIdempotencyStore(cfg.Redis.IdempotencyTTL)
		log.Warn().Msg("redis disabled; idempotency keys are kept in process memory")
	}

	hasher, err := password.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL(),
	})
	if err != nil {
		return err
	}

	dispatcher := queue.NewDispatcher(cfg.LoginWorkers, st.lastLogin, log)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	authService := service.NewAuthService(st.accounts, hasher, tokens, log,
		service.WithLoginRecorder(dispatcher),
		service.WithDuplicateFieldDisclosure(cfg.Auth.RevealDuplicateField),
	)
	campaignService := service.NewCampaignService(st.campaigns, idempotency, log)

	e := api.NewRouter(api.Dependencies{
		AuthService:     authService,
		CampaignService: campaignService,
		Tokens:          tokens,
		HealthChecks:    st.checks,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Driver).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if cfg.Postgres.RunMigrations {
			if err := pgstore.Migrate(cfg.Postgres.URL); err != nil {
				return nil, err
			}
			log.Info().Msg("postgres migrations applied")
		}
		pool, err := pgstore.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		accounts := pgstore.NewAccountRepository(pool)
		return &stores{
			accounts:  accounts,
			campaigns: pgstore.NewCampaignRepository(pool),
			lastLogin: accounts,
			checks:    []handlers.Checker{pgstore.NewHealthCheck(pool)},
			close:     func(context.Context) { pool.Close() },
		}, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		accounts := memory.NewAccountRepository()
		return &stores{
			accounts:  accounts,
			campaigns: memory.NewCampaignRepository(),
			lastLogin: accounts,
			close:     func(context.Context) {},
		}, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		accounts := mongostore.NewAccountRepository(db)
		campaigns := mongostore.NewCampaignRepository(db)
		if err := ensureIndexes(ctx, accounts, campaigns); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			accounts:  accounts,
			campaigns: campaigns,
			lastLogin: accounts,
			checks:    []handlers.Checker{mongostore.NewHealthCheck(db)},
			close: func(ctx context.Context) {
				if err := client.Disconnect(ctx); err != nil {
					log.Warn().Err(err).Msg("mongo disconnect")
				}
			},
		}, nil
	}
}

func ensureIndexes(ctx context.Context, accounts *mongostore.AccountRepository, campaigns *mongostore.CampaignRepository) error {
	if err := accounts.EnsureIndexes(ctx); err != nil {
		return err
	}
	return campaigns.EnsureIndexes(ctx)
}
