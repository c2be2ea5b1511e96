// Package evaluationplatform предоставляет маршруты для основного приложения.
package evaluationplatform

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/mainsmentor/answer-evaluation/internal/http/handlers/answer/list"
	"github.com/mainsmentor/answer-evaluation/internal/http/handlers/answer/pending"
	"github.com/mainsmentor/answer-evaluation/internal/http/handlers/answer/read"
	"github.com/mainsmentor/answer-evaluation/internal/http/handlers/answer/stats"
	"github.com/mainsmentor/answer-evaluation/internal/http/handlers/answer/submit"
	"github.com/mainsmentor/answer-evaluation/internal/http/handlers/auth/login"
	"github.com/mainsmentor/answer-evaluation/internal/http/handlers/auth/register"
	evalattach "github.com/mainsmentor/answer-evaluation/internal/http/handlers/evaluation/attach"
	evalcreate "github.com/mainsmentor/answer-evaluation/internal/http/handlers/evaluation/create"
	evalupdate "github.com/mainsmentor/answer-evaluation/internal/http/handlers/evaluation/update"
	"github.com/mainsmentor/answer-evaluation/internal/http/handlers/files/serve"
	"github.com/mainsmentor/answer-evaluation/internal/http/handlers/health"
	"github.com/mainsmentor/answer-evaluation/internal/http/handlers/payment/activate"
	"github.com/mainsmentor/answer-evaluation/internal/http/handlers/payment/createorder"
	"github.com/mainsmentor/answer-evaluation/internal/http/handlers/payment/plans"
	"github.com/mainsmentor/answer-evaluation/internal/http/handlers/payment/verify"
	"github.com/mainsmentor/answer-evaluation/internal/http/middlewarectx"
	"github.com/mainsmentor/answer-evaluation/internal/models"
	authservice "github.com/mainsmentor/answer-evaluation/internal/services/auth"
	evaluationservice "github.com/mainsmentor/answer-evaluation/internal/services/evaluation"
	paymentservice "github.com/mainsmentor/answer-evaluation/internal/services/payment"
	submissionservice "github.com/mainsmentor/answer-evaluation/internal/services/submission"
	subscriptionservice "github.com/mainsmentor/answer-evaluation/internal/services/subscription"
	"github.com/mainsmentor/answer-evaluation/internal/storage/filestore"
	"github.com/mainsmentor/answer-evaluation/internal/storage/repository"
)

// Services собирает сервисы, необходимые маршрутам приложения.
type Services struct {
	Auth         *authservice.AuthService
	Submission   *submissionservice.SubmissionService
	Evaluation   *evaluationservice.EvaluationService
	Subscription *subscriptionservice.SubscriptionService
	Payment      *paymentservice.PaymentService
	Files        *filestore.Store
	DB           *repository.Storage
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/plans", plans.New(logger, s.Subscription).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/answers", submit.New(logger, s.Submission).ServeHTTP)
			r.Get("/answers", list.New(logger, s.Submission).ServeHTTP)
			r.Get("/answers/stats", stats.New(logger, s.Submission).ServeHTTP)
			r.Get("/answers/{id}", read.New(logger, s.Submission).ServeHTTP)

			r.Post("/payments/order", createorder.New(logger, s.Payment).ServeHTTP)
			r.Post("/payments/verify", verify.New(logger, s.Payment).ServeHTTP)
			r.Post("/payments/activate", activate.New(logger, s.Subscription).ServeHTTP)

			// Конечные точки проверяющих
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleEvaluator, models.RoleAdmin))
				r.Get("/answers/pending", pending.New(logger, s.Submission).ServeHTTP)
				r.Post("/answers/{id}/evaluation", evalcreate.New(logger, s.Evaluation).ServeHTTP)
				r.Put("/evaluations/{id}", evalupdate.New(logger, s.Evaluation).ServeHTTP)
				r.Post("/evaluations/{id}/document", evalattach.New(logger, s.Evaluation).ServeHTTP)
			})
		})
	})

	// Выдача файлов по подписанным ссылкам
	r.Get("/files/{key}", serve.New(logger, s.Files).ServeHTTP)

	r.Get("/health", health.New(logger, s.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
