package handler

import (
	"net/http"

	"codecoach/internal/app/service"
	"codecoach/internal/common"

	"github.com/go-chi/chi/v5"
)

// UserHandler serves read-only views of a user's history.
type UserHandler struct {
	questionService *service.QuestionService
	feedbackService *service.FeedbackService
}

func NewUserHandler(qs *service.QuestionService, fs *service.FeedbackService) *UserHandler {
	return &UserHandler{questionService: qs, feedbackService: fs}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{userID}/progress", h.progress)
	r.Get("/{userID}/weaknesses", h.weaknesses)
}

func (h *UserHandler) progress(w http.ResponseWriter, r *http.Request) {
	p, err := h.questionService.Progress(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, p)
}

func (h *UserHandler) weaknesses(w http.ResponseWriter, r *http.Request) {
	wk, err := h.feedbackService.Weaknesses(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, wk)
}
