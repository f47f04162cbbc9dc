package handler

import (
	"net/http"

	"codecoach/internal/app/service"
	"codecoach/internal/common"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	gradingService *service.GradingService
}

func NewSubmissionHandler(gs *service.GradingService) *SubmissionHandler {
	return &SubmissionHandler{gradingService: gs}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/submit", h.submit) // grade and record the solve
	r.Post("/run", h.run)       // grade only
}

func (h *SubmissionHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	outcome, err := h.gradingService.Submit(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, outcome)
}

func (h *SubmissionHandler) run(w http.ResponseWriter, r *http.Request) {
	var req service.GradeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err)
		return
	}

	outcome, err := h.gradingService.Grade(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, outcome)
}
