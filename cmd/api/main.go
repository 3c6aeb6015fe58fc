package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elevohq/elevo-backend/internal/config"
	"github.com/elevohq/elevo-backend/internal/container"
	"github.com/elevohq/elevo-backend/internal/router"
)

func main() {
	c := container.New()
	log := config.Logger()

	handler := router.New(router.RouterConfig{
		UserHandler:         c.UserContainer.Handler,
		SkillHandler:        c.SkillContainer.Handler,
		ResourceHandler:     c.ResourceContainer.Handler,
		OrganizationHandler: c.OrganizationContainer.Handler,
		PlanHandler:         c.PlanContainer.Handler,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("API listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
