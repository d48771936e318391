package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/guidedcare/pathway/internal/api/middleware"
	"github.com/guidedcare/pathway/internal/domain"
	"github.com/guidedcare/pathway/internal/scoring"
	"github.com/guidedcare/pathway/internal/service"
)

type AssessmentHandler struct {
	svc    *service.AssessmentService
	gating *service.GatingService
}

func NewAssessmentHandler(svc *service.AssessmentService, gating *service.GatingService) *AssessmentHandler {
	return &AssessmentHandler{svc: svc, gating: gating}
}

type startAssessmentRequest struct {
	PersonLabel string `json:"person_label"`
}

type saveAnswersRequest struct {
	Answers domain.AnswerSet `json:"answers"`
}

// Create starts an assessment session.
// POST /v1/assessments
func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	client := middleware.ClientFromContext(r.Context())
	if client == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req startAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.svc.Start(r.Context(), client.ID, req.PersonLabel)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start assessment")
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

// GetByID returns a session, including the contract once completed.
// GET /v1/assessments/{id}
func (h *AssessmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	client := middleware.ClientFromContext(r.Context())
	if client == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	sess, err := h.svc.Get(r.Context(), id, client.ID)
	if err != nil {
		if errors.Is(err, service.ErrAssessmentNotFound) {
			writeError(w, http.StatusNotFound, "assessment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load assessment")
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// SaveAnswers merges partial answers and recomputes progress.
// PUT /v1/assessments/{id}/answers
func (h *AssessmentHandler) SaveAnswers(w http.ResponseWriter, r *http.Request) {
	client := middleware.ClientFromContext(r.Context())
	if client == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	var req saveAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Answers == nil {
		writeError(w, http.StatusBadRequest, "answers is required")
		return
	}

	sess, err := h.svc.SaveAnswers(r.Context(), id, client.ID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssessmentNotFound):
			writeError(w, http.StatusNotFound, "assessment not found")
		case errors.Is(err, service.ErrAssessmentCompleted):
			writeError(w, http.StatusConflict, "assessment already completed; start a new one to reassess")
		default:
			writeError(w, http.StatusInternalServerError, "failed to save answers")
		}
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// Complete runs the scoring pipeline and returns the contract.
// POST /v1/assessments/{id}/complete
func (h *AssessmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	client := middleware.ClientFromContext(r.Context())
	if client == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	contract, err := h.svc.Complete(r.Context(), id, client.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssessmentNotFound):
			writeError(w, http.StatusNotFound, "assessment not found")
		case errors.Is(err, service.ErrAssessmentCompleted):
			writeError(w, http.StatusConflict, "assessment already completed; start a new one to reassess")
		case errors.Is(err, scoring.ErrInvalidOutcome):
			writeError(w, http.StatusInternalServerError, "scoring produced an invalid outcome; the assessment stays in progress")
		case errors.Is(err, scoring.ErrConfigMissing):
			writeError(w, http.StatusServiceUnavailable, "scoring configuration not loaded")
		default:
			writeError(w, http.StatusInternalServerError, "failed to complete assessment")
		}
		return
	}

	writeJSON(w, http.StatusOK, contract)
}

// Handoff returns the downstream projection for an unlocked session.
// GET /v1/assessments/{id}/handoff
func (h *AssessmentHandler) Handoff(w http.ResponseWriter, r *http.Request) {
	client := middleware.ClientFromContext(r.Context())
	if client == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assessment id")
		return
	}

	rec, err := h.gating.Handoff(r.Context(), id, client.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssessmentNotFound):
			writeError(w, http.StatusNotFound, "assessment not found")
		case errors.Is(err, service.ErrLocked):
			writeError(w, http.StatusConflict, "care plan not completed; finish the assessment to unlock")
		default:
			writeError(w, http.StatusInternalServerError, "failed to load handoff")
		}
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
