package plan

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/review", h.ListForReview)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/submit", h.Submit)
	r.Post("/{id}/review", h.Review)
	r.Post("/{id}/final-review", h.FinalReview)
	r.Put("/{id}/resources/{resourceId}", h.UpdateResourceStatus)

	return r
}
