package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"disciple-assessment-service/internal/app"
	"disciple-assessment-service/internal/auth"
	"disciple-assessment-service/internal/bank"
	"disciple-assessment-service/internal/config"
	"disciple-assessment-service/internal/infra/amqp"
	"disciple-assessment-service/internal/infra/memory"
	"disciple-assessment-service/internal/infra/postgres"
	infraredis "disciple-assessment-service/internal/infra/redis"
	transport "disciple-assessment-service/internal/transport/http"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), cfg, port, logger)
		},
	}
}

// backends holds whichever stores the configuration selected.
type backends struct {
	banks     app.BankRepository
	attempts  app.AttemptRepository
	results   app.ResultRepository
	fallback  app.FallbackStore
	users     auth.UserRepository
	profiles  app.ProfileRepository
	denylist  auth.Denylist
	publisher *amqp.Publisher
	closers   []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func runServer(ctx context.Context, cfg config.Config, portFlag string, logger *zap.Logger) error {
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	bankID := cfg.Assessment.BankID
	if bankID == "" && cfg.Postgres.URL != "" {
		bankID = bank.DefaultID
	}
	sink := app.NewResultSink(b.results, b.fallback, b.publisher, logger)
	assessments := app.NewAssessmentService(b.banks, b.attempts, b.results, sink, app.Options{
		BankID:   bankID,
		PageSize: cfg.Assessment.PageSize,
		Logger:   logger,
	})
	if _, err := assessments.Bank(ctx); err != nil {
		return err
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("auth.secret not set, using a random secret; sessions will not survive a restart")
	}
	authSvc := auth.NewService(b.users, b.denylist, secret, auth.Options{
		TokenTTL:   config.TTLDuration(cfg.Auth.TokenTTL, 8*time.Hour),
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})

	router := transport.NewRouter(transport.Deps{
		Assessments: assessments,
		Profiles:    app.NewProfileService(b.profiles, b.results),
		Auth:        authSvc,
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
		Checks: transport.HealthChecks{
			Postgres: cfg.Postgres.URL != "",
			Redis:    cfg.Redis.Addr != "",
			Events:   cfg.Events.AMQPURL != "",
		},
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting assessment service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openBackends(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{}
	bankTTL := config.TTLDuration(cfg.Assessment.BankTTL, 10*time.Minute)
	attemptTTL := config.TTLDuration(cfg.Assessment.AttemptTTL, config.TTLDuration(cfg.Redis.TTL, 2*time.Hour))
	fallbackTTL := config.TTLDuration(cfg.Assessment.FallbackTTL, 24*time.Hour)

	var loader memory.BankLoader
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		loader = postgres.NewBankLoader(pool)
		results := postgres.NewResultStore(pool)
		users := postgres.NewUserStore(pool)
		b.results, b.users, b.profiles = results, users, users
	} else {
		local, err := localBank(cfg.Assessment.BankPath)
		if err != nil {
			return nil, err
		}
		loader = memory.NewStaticBankLoader(local)
		users := memory.NewUserStore()
		b.results, b.users, b.profiles = memory.NewResultStore(), users, users
		logger.Info("postgres not configured, results and accounts are kept in memory")
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.banks = infraredis.NewBankRepository(client, loader, bankTTL)
		b.attempts = infraredis.NewAttemptStore(client, attemptTTL)
		b.fallback = infraredis.NewFallbackStore(client, fallbackTTL)
		b.denylist = infraredis.NewDenylist(client)
	} else {
		b.banks = memory.NewBankRepository(loader, bankTTL)
		b.attempts = memory.NewAttemptStore(attemptTTL)
		b.fallback = memory.NewFallbackStore(fallbackTTL)
		b.denylist = memory.NewDenylist()
	}

	publisher, err := amqp.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, logger)
	if err != nil {
		// Events are best-effort; run without them rather than refuse to start.
		logger.Error("event publisher unavailable, continuing without events", zap.Error(err))
		publisher, _ = amqp.NewPublisher("", cfg.Events.Exchange, logger)
	}
	b.publisher = publisher
	b.closers = append(b.closers, func() { _ = publisher.Close() })
	return b, nil
}
