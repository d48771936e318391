package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/guidedcare/pathway/internal/domain"
	"github.com/guidedcare/pathway/internal/faq"
)

type FAQHandler struct {
	svc *faq.Service
}

func NewFAQHandler(svc *faq.Service) *FAQHandler {
	return &FAQHandler{svc: svc}
}

type faqSearchResponse struct {
	Query   string            `json:"query"`
	Matches []domain.FAQMatch `json:"matches"`
}

// Search ranks indexed help articles against a free-text question.
// GET /v1/faq/search?q=&top_k=
func (h *FAQHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	topK := 0
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "top_k must be an integer")
			return
		}
		topK = n
	}

	matches, err := h.svc.Search(r.Context(), query, topK)
	if err != nil {
		switch {
		case errors.Is(err, faq.ErrEmptyQuery):
			writeError(w, http.StatusBadRequest, "q is required")
		case errors.Is(err, faq.ErrNotIndexed):
			writeError(w, http.StatusServiceUnavailable, "faq corpus not indexed yet")
		default:
			writeError(w, http.StatusInternalServerError, "search failed")
		}
		return
	}

	if matches == nil {
		matches = []domain.FAQMatch{}
	}
	writeJSON(w, http.StatusOK, faqSearchResponse{Query: query, Matches: matches})
}
