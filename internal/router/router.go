package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/elevohq/elevo-backend/internal/auth"
	"github.com/elevohq/elevo-backend/internal/middlewares"
	"github.com/elevohq/elevo-backend/internal/organization"
	"github.com/elevohq/elevo-backend/internal/plan"
	"github.com/elevohq/elevo-backend/internal/resource"
	"github.com/elevohq/elevo-backend/internal/skill"
	"github.com/elevohq/elevo-backend/internal/user"
)

type RouterConfig struct {
	UserHandler         *user.Handler
	SkillHandler        *skill.Handler
	ResourceHandler     *resource.Handler
	OrganizationHandler *organization.Handler
	PlanHandler         *plan.Handler
}

func New(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CorsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.UserHandler.Register)
		r.Post("/login", cfg.UserHandler.Login)
		r.Post("/logout", auth.NewHandler().Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Mount("/users", user.Routes(cfg.UserHandler))
		r.Mount("/skills", skill.Routes(cfg.SkillHandler))
		r.Mount("/resources", resource.Routes(cfg.ResourceHandler))
		r.Mount("/orgs", organization.Routes(cfg.OrganizationHandler))
		r.Mount("/plans", plan.Routes(cfg.PlanHandler))
	})
	return r
}
