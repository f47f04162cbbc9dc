package handler

import (
	"net/http"

	"codecoach/internal/app/service"
	"codecoach/internal/common"

	"github.com/go-chi/chi/v5"
)

type AnalysisHandler struct {
	feedbackService *service.FeedbackService
}

func NewAnalysisHandler(fs *service.FeedbackService) *AnalysisHandler {
	return &AnalysisHandler{feedbackService: fs}
}

func (h *AnalysisHandler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.analyze)
}

func (h *AnalysisHandler) analyze(w http.ResponseWriter, r *http.Request) {
	var req service.AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	feedback, err := h.feedbackService.Analyze(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, feedback)
}
