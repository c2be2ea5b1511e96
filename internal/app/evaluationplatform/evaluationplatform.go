// Package evaluationplatform собирает и запускает основное приложение
// платформы проверки ответов.
package evaluationplatform

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/mainsmentor/answer-evaluation/internal/cache"
	"github.com/mainsmentor/answer-evaluation/internal/config"
	"github.com/mainsmentor/answer-evaluation/internal/lib/jwt"
	"github.com/mainsmentor/answer-evaluation/internal/lib/sl"
	"github.com/mainsmentor/answer-evaluation/internal/migrations"
	"github.com/mainsmentor/answer-evaluation/internal/notify"
	"github.com/mainsmentor/answer-evaluation/internal/paymentprovider"
	authservice "github.com/mainsmentor/answer-evaluation/internal/services/auth"
	entitlementservice "github.com/mainsmentor/answer-evaluation/internal/services/entitlement"
	evaluationservice "github.com/mainsmentor/answer-evaluation/internal/services/evaluation"
	paymentservice "github.com/mainsmentor/answer-evaluation/internal/services/payment"
	submissionservice "github.com/mainsmentor/answer-evaluation/internal/services/submission"
	subscriptionservice "github.com/mainsmentor/answer-evaluation/internal/services/subscription"
	"github.com/mainsmentor/answer-evaluation/internal/storage/filestore"
	"github.com/mainsmentor/answer-evaluation/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	events *notify.Publisher
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	files, err := filestore.New(cfg.FileStorage)
	if err != nil {
		return nil, err
	}

	var publisher *notify.Publisher
	if cfg.RabbitURL != "" {
		conn, err := notify.Connect(cfg.RabbitURL, 5, 2*time.Second)
		if err != nil {
			return nil, err
		}
		publisher, err = notify.NewPublisher(conn)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn("rabbitmq url is empty, evaluation events disabled")
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	providerClient := paymentprovider.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)

	authService := authservice.NewAuthService(db, jwtMaker)
	entitlementService := entitlementservice.NewEntitlementService(db, db, db, logger)
	submissionService := submissionservice.NewSubmissionService(db, files, entitlementService, logger)
	evaluationService := evaluationservice.NewEvaluationService(db, db, files, publisher, logger)
	subscriptionService := subscriptionservice.NewSubscriptionService(db, db, cacheRedis, logger)
	paymentService := paymentservice.NewPaymentService(db, db, providerClient, cfg.Razorpay.KeySecret, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, Services{
		Auth:         authService,
		Submission:   submissionService,
		Evaluation:   evaluationService,
		Subscription: subscriptionService,
		Payment:      paymentService,
		Files:        files,
		DB:           db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		events: publisher,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.events.Close(); cerr != nil {
			a.logger.Warn("failed to close event publisher", sl.Err(cerr))
		}
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Warn("failed to close database", sl.Err(cerr))
		}
		return err
	}
}
