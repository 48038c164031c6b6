package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sharetube/watchparty/pkg/rest"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			rest.WriteJSON(w, http.StatusOK, rest.Envelope{"status": "ok"})
		})

		r.Group(func(r chi.Router) {
			r.Use(c.rateLimitMw)

			r.Get("/ws", c.handleWS)
			r.Route("/rooms", func(r chi.Router) {
				r.Post("/", c.createRoom)
				r.Route("/{room-id}", func(r chi.Router) {
					r.Get("/", c.getRoom)
					r.Post("/video", c.uploadVideo)
				})
			})
		})

		r.Get("/video/{video-id}", c.streamVideo)
		r.Head("/video/{video-id}", c.streamVideo)
	})

	return r
}
