package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/emojilens/backend/internal/config"
	"github.com/emojilens/backend/internal/handler/interpret"
	"github.com/emojilens/backend/internal/handler/ws"
	middlewarePkg "github.com/emojilens/backend/internal/middleware"
	"github.com/emojilens/backend/internal/quota"
	"github.com/emojilens/backend/internal/service/interpreter"
	"github.com/emojilens/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(governor *quota.Governor, generator interpreter.Generator, streamCfg config.StreamConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	interpretHandler := interpret.New(governor, generator, streamCfg)
	wsHandler := ws.New(governor, generator, streamCfg)

	r.Route("/api", func(api chi.Router) {
		interpretHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status":    "ok",
				"generator": generator.Name(),
			})
		})
	})

	return r
}
