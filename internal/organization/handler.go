package organization

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/elevohq/elevo-backend/internal/apperr"
	"github.com/elevohq/elevo-backend/internal/auth"
	"github.com/elevohq/elevo-backend/internal/config"
	"github.com/elevohq/elevo-backend/internal/user"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	org, err := h.service.Get(r.Context(), uuid.MustParse(claims.OrgID))
	if err != nil {
		if errors.Is(err, ErrOrgNotFound) {
			http.Error(w, "organization not found", http.StatusNotFound)
			return
		}
		log.WithError(err).Error("Failed to load organization")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	config.JSON(w, http.StatusOK, org)
}

func (h *Handler) UpdateWeights(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	claims, err := auth.GetUserClaimsFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if user.Role(claims.Role) != user.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var overrides map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&overrides); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	org, err := h.service.UpdateWeights(r.Context(), uuid.MustParse(claims.OrgID), overrides)
	if err != nil {
		if apperr.IsValidation(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrOrgNotFound) {
			http.Error(w, "organization not found", http.StatusNotFound)
			return
		}
		log.WithError(err).Error("Failed to update weights")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	config.JSON(w, http.StatusOK, org)
}
