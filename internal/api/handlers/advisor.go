package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/guidedcare/pathway/internal/faq"
	"github.com/guidedcare/pathway/internal/rates"
	"github.com/guidedcare/pathway/internal/scoring"
	"github.com/guidedcare/pathway/internal/service"
)

// AdvisorHandler serves the advisor console endpoints plus the admin
// reload. Both live behind the advisor role.
type AdvisorHandler struct {
	svc    *service.AdvisorService
	engine *scoring.Engine
	rates  *rates.Service
	faq    *faq.Service
	logger *zap.Logger
}

func NewAdvisorHandler(
	svc *service.AdvisorService,
	engine *scoring.Engine,
	ratesSvc *rates.Service,
	faqSvc *faq.Service,
	logger *zap.Logger,
) *AdvisorHandler {
	return &AdvisorHandler{
		svc:    svc,
		engine: engine,
		rates:  ratesSvc,
		faq:    faqSvc,
		logger: logger,
	}
}

// Pipeline summarizes the assessment funnel for the advisor console.
// GET /v1/advisor/pipeline?limit=
func (h *AdvisorHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	summary, err := h.svc.Pipeline(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build pipeline summary")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

type reloadResponse struct {
	ConfigDigest string `json:"config_digest"`
	FAQDocuments int    `json:"faq_documents"`
}

// Reload re-reads scoring configuration and rate tables from disk and
// reindexes the FAQ corpus. Each stage keeps its previous state on
// failure, so a bad push degrades to an error response, not an outage.
// POST /v1/admin/reload
func (h *AdvisorHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Reload(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "scoring configuration rejected: "+err.Error())
		return
	}
	if err := h.rates.Reload(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "rate tables rejected: "+err.Error())
		return
	}

	indexed, err := h.faq.Reindex(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "faq reindex failed: "+err.Error())
		return
	}

	digest := ""
	if bundle := h.engine.Bundle(); bundle != nil {
		digest = bundle.Digest
	}
	h.logger.Info("configuration reloaded",
		zap.String("config_digest", digest),
		zap.Int("faq_documents", indexed))

	writeJSON(w, http.StatusOK, reloadResponse{
		ConfigDigest: digest,
		FAQDocuments: indexed,
	})
}
