package handlers

import (
	"net/http"
	"strconv"

	"github.com/guidedcare/pathway/internal/domain"
	"github.com/guidedcare/pathway/internal/rates"
)

type RatesHandler struct {
	svc *rates.Service
}

func NewRatesHandler(svc *rates.Service) *RatesHandler {
	return &RatesHandler{svc: svc}
}

// rateLookupResponse reports a lookup outcome. Found stays false on a
// miss so callers can distinguish "no data" from a zero-dollar rate.
type rateLookupResponse struct {
	Found   bool    `json:"found"`
	Monthly float64 `json:"monthly,omitempty"`
}

// VA looks up the monthly VA disability benefit.
// GET /v1/rates/va?rating=&dependents=
func (h *RatesHandler) VA(w http.ResponseWriter, r *http.Request) {
	rating, err := strconv.Atoi(r.URL.Query().Get("rating"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "rating must be an integer")
		return
	}
	dependents := r.URL.Query().Get("dependents")
	if dependents == "" {
		writeError(w, http.StatusBadRequest, "dependents is required")
		return
	}

	monthly, found := h.svc.VA(rating, dependents)
	writeJSON(w, http.StatusOK, rateLookupResponse{Found: found, Monthly: monthly})
}

// Home looks up the regional monthly median for a care setting.
// GET /v1/rates/home?zip=&setting=
func (h *RatesHandler) Home(w http.ResponseWriter, r *http.Request) {
	zip := r.URL.Query().Get("zip")
	if zip == "" {
		writeError(w, http.StatusBadRequest, "zip is required")
		return
	}
	setting := r.URL.Query().Get("setting")
	if !domain.ValidSetting(setting) {
		writeError(w, http.StatusBadRequest, "invalid care setting")
		return
	}

	monthly, found := h.svc.HomeCost(zip, domain.CareSetting(setting))
	writeJSON(w, http.StatusOK, rateLookupResponse{Found: found, Monthly: monthly})
}
