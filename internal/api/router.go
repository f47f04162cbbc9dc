package api

import (
	"net/http"
	"time"

	"codecoach/internal/api/handler"
	"codecoach/internal/api/middleware"
	"codecoach/internal/app/service"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func NewRouter(
	log zerolog.Logger,
	gradingService *service.GradingService,
	questionService *service.QuestionService,
	feedbackService *service.FeedbackService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	handler.NewSubmissionHandler(gradingService).RegisterRoutes(r)
	handler.NewQuestionHandler(questionService).RegisterRoutes(r)
	handler.NewAnalysisHandler(feedbackService).RegisterRoutes(r)

	userHandler := handler.NewUserHandler(questionService, feedbackService)
	r.Route("/users", userHandler.RegisterRoutes)

	return r
}
