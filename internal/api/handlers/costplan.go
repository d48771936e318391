package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/guidedcare/pathway/internal/api/middleware"
	"github.com/guidedcare/pathway/internal/service"
)

type CostPlanHandler struct {
	planner *service.CostPlanner
}

func NewCostPlanHandler(planner *service.CostPlanner) *CostPlanHandler {
	return &CostPlanHandler{planner: planner}
}

// Estimate produces a cost projection.
// POST /v1/cost-planner/estimate
func (h *CostPlanHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	client := middleware.ClientFromContext(r.Context())
	if client == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var in service.EstimateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	est, err := h.planner.Estimate(r.Context(), client.ID, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssessmentNotFound):
			writeError(w, http.StatusNotFound, "assessment not found")
		case errors.Is(err, service.ErrLocked):
			writeError(w, http.StatusConflict, "care plan not completed; finish the assessment to unlock cost planning")
		case errors.Is(err, service.ErrInvalidEstimate):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoRegionalRate):
			writeError(w, http.StatusUnprocessableEntity, "no regional rate on file; provide monthly_base to continue")
		default:
			writeError(w, http.StatusInternalServerError, "failed to build estimate")
		}
		return
	}

	writeJSON(w, http.StatusOK, est)
}
