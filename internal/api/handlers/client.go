package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/guidedcare/pathway/internal/api/middleware"
	"github.com/guidedcare/pathway/internal/domain"
)

type ClientHandler struct {
	store domain.ClientStore
}

func NewClientHandler(store domain.ClientStore) *ClientHandler {
	return &ClientHandler{store: store}
}

type createClientRequest struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type createClientResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	APIKey string `json:"api_key"`
}

// Create registers an API client. The raw key is returned exactly
// once; only its hash is stored.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Role == "" {
		req.Role = string(domain.RoleConsumer)
	}
	if !domain.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate API key")
		return
	}

	client := &domain.Client{
		Name:       req.Name,
		Role:       domain.Role(req.Role),
		APIKeyHash: middleware.HashAPIKey(apiKey),
	}

	if err := h.store.Create(r.Context(), client); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create client")
		return
	}

	writeJSON(w, http.StatusCreated, createClientResponse{
		ID:     client.ID.String(),
		Name:   client.Name,
		Role:   string(client.Role),
		APIKey: apiKey,
	})
}

func generateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "pw_" + hex.EncodeToString(b), nil
}
