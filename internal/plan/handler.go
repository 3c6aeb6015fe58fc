package plan

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/elevohq/elevo-backend/internal/apperr"
	"github.com/elevohq/elevo-backend/internal/config"
)

type Handler struct {
	service PlanService
}

func NewHandler(service PlanService) *Handler {
	return &Handler{service: service}
}

func respondError(w http.ResponseWriter, log logrus.FieldLogger, err error, action string) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, ErrPlanNotFound), errors.Is(err, ErrResourceEntryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case apperr.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case apperr.IsInvalidTransition(err), errors.Is(err, ErrResourcesLocked), errors.Is(err, ErrPlanLocked):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.WithError(err).Errorf("Failed to %s", action)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var dto CreatePlanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		log.WithError(err).Error("Invalid request body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.CreatePlan(r.Context(), dto)
	if err != nil {
		respondError(w, log, err, "create plan")
		return
	}

	config.JSON(w, http.StatusCreated, p)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	plans, err := h.service.FindAllByUser(r.Context())
	if err != nil {
		respondError(w, log, err, "list plans")
		return
	}

	config.JSON(w, http.StatusOK, plans)
}

func (h *Handler) ListForReview(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	plans, err := h.service.ListForReview(r.Context())
	if err != nil {
		respondError(w, log, err, "list plans for review")
		return
	}

	config.JSON(w, http.StatusOK, plans)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	p, err := h.service.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, log, err, "get plan")
		return
	}

	config.JSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	if err := h.service.DeleteByID(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, log, err, "delete plan")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	p, err := h.service.Submit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, log, err, "submit plan")
		return
	}

	config.JSON(w, http.StatusOK, p)
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var dto ReviewDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.Review(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		respondError(w, log, err, "review plan")
		return
	}

	config.JSON(w, http.StatusOK, p)
}

func (h *Handler) FinalReview(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var dto ReviewDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.FinalReview(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		respondError(w, log, err, "final-review plan")
		return
	}

	config.JSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateResourceStatus(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var dto UpdateResourceStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.UpdateResourceStatus(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "resourceId"), dto)
	if err != nil {
		respondError(w, log, err, "update plan resource")
		return
	}

	config.JSON(w, http.StatusOK, p)
}
