package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MesaStore defines the database methods needed by mesa registry handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MesaStore interface {
	ProvisionMesas(ctx context.Context, count int32) (int64, error)
	DeprovisionMesas(ctx context.Context, keep int32) (int64, error)
	CountMesas(ctx context.Context) (int64, error)
}

// MesaHandler handles mesa provisioning endpoints.
type MesaHandler struct {
	store MesaStore
}

// NewMesaHandler creates a new MesaHandler.
func NewMesaHandler(store MesaStore) *MesaHandler {
	return &MesaHandler{store: store}
}

// RegisterRoutes registers mesa registry endpoints on the given Chi router.
func (h *MesaHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Provision)
	r.Delete("/", h.Deprovision)
	r.Get("/count", h.Count)
}

type mesaCountRequest struct {
	Count *int32 `json:"count"`
}

// Provision ensures mesas 1..count exist. Existing mesas and their
// pending items are never touched; only missing numbers are created.
func (h *MesaHandler) Provision(w http.ResponseWriter, r *http.Request) {
	var req mesaCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Count == nil || *req.Count < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "count must be >= 1"})
		return
	}

	created, err := h.store.ProvisionMesas(r.Context(), *req.Count)
	if err != nil {
		log.Printf("ERROR: provision mesas: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"created": created})
}

// Deprovision drops mesas numbered above count, discarding their
// pending items irreversibly. Mesa 0 (mostrador) is never dropped.
func (h *MesaHandler) Deprovision(w http.ResponseWriter, r *http.Request) {
	var req mesaCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Count == nil || *req.Count < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "count must be >= 0"})
		return
	}

	dropped, err := h.store.DeprovisionMesas(r.Context(), *req.Count)
	if err != nil {
		log.Printf("ERROR: deprovision mesas: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"dropped": dropped})
}

// Count returns the number of provisioned mesas, excluding mostrador.
func (h *MesaHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountMesas(r.Context())
	if err != nil {
		log.Printf("ERROR: count mesas: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}
