package handler

import (
	"net/http"

	"codecoach/internal/app/service"
	"codecoach/internal/common"
	"codecoach/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type QuestionHandler struct {
	questionService *service.QuestionService
}

func NewQuestionHandler(qs *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: qs}
}

func (h *QuestionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/generate-question", h.generateQuestion)
	r.Get("/questions/{questionID}", h.getQuestion)
}

type generateQuestionRequest struct {
	UserID string `json:"user_id"`
}

type questionResponse struct {
	Question *model.Question `json:"question"`
}

func (h *QuestionHandler) generateQuestion(w http.ResponseWriter, r *http.Request) {
	var req generateQuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	q, err := h.questionService.SelectNext(r.Context(), req.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, questionResponse{Question: q})
}

func (h *QuestionHandler) getQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.questionService.Get(r.Context(), chi.URLParam(r, "questionID"))
	if err != nil {
		respondError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, questionResponse{Question: q})
}
