package handlers

import (
	"net/http"

	"github.com/guidedcare/pathway/internal/domain"
	"github.com/guidedcare/pathway/internal/scoring"
)

type QuestionnaireHandler struct {
	engine *scoring.Engine
}

func NewQuestionnaireHandler(engine *scoring.Engine) *QuestionnaireHandler {
	return &QuestionnaireHandler{engine: engine}
}

type questionnaireResponse struct {
	Questions    []domain.Question `json:"questions"`
	Blurbs       map[string]string `json:"blurbs"`
	ConfigDigest string            `json:"config_digest"`
}

// Get returns the questionnaire and narrative blurbs for rendering.
// GET /v1/questionnaire
func (h *QuestionnaireHandler) Get(w http.ResponseWriter, r *http.Request) {
	bundle := h.engine.Bundle()
	if bundle == nil {
		writeError(w, http.StatusServiceUnavailable, "scoring configuration not loaded")
		return
	}

	writeJSON(w, http.StatusOK, questionnaireResponse{
		Questions:    bundle.Schema.Questions,
		Blurbs:       bundle.Blurbs,
		ConfigDigest: bundle.Digest,
	})
}
