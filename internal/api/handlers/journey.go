package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/guidedcare/pathway/internal/api/middleware"
	"github.com/guidedcare/pathway/internal/domain"
	"github.com/guidedcare/pathway/internal/service"
)

type JourneyHandler struct {
	assessments *service.AssessmentService
	gating      *service.GatingService
}

func NewJourneyHandler(assessments *service.AssessmentService, gating *service.GatingService) *JourneyHandler {
	return &JourneyHandler{assessments: assessments, gating: gating}
}

type tilesResponse struct {
	Tiles []service.TileView `json:"tiles"`
}

// Tiles evaluates journey tile visibility for the calling client.
// Without an assessment_id the tiles reflect a fresh journey.
// GET /v1/journey/tiles?assessment_id=
func (h *JourneyHandler) Tiles(w http.ResponseWriter, r *http.Request) {
	client := middleware.ClientFromContext(r.Context())
	if client == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var sess *domain.AssessmentSession
	if raw := r.URL.Query().Get("assessment_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid assessment_id")
			return
		}

		sess, err = h.assessments.Get(r.Context(), id, client.ID)
		if err != nil {
			if errors.Is(err, service.ErrAssessmentNotFound) {
				writeError(w, http.StatusNotFound, "assessment not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to load assessment")
			return
		}
	}

	writeJSON(w, http.StatusOK, tilesResponse{Tiles: h.gating.Tiles(client.Role, sess)})
}
