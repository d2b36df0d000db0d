package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sharetube/syncroom/internal/repository/media"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Get("/ws", c.serveWebsocket)

	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("OK"))
			})
		})
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", c.listRooms)
			r.Post("/", c.createRoom)
			r.Get("/{name}", c.getRoom)
		})
		r.Get("/videos", c.listVideos)
		r.Get("/videos/{name}", c.getVideo)
		r.Post("/upload", c.upload)
	})

	if c.metricsHandler != nil {
		r.Handle("/metrics", c.metricsHandler)
	}

	r.Handle(media.MediaURLPrefix+"*", http.StripPrefix(media.MediaURLPrefix, http.FileServer(http.Dir(c.cfg.MediaDir))))
	r.Handle(media.ThumbnailURLPrefix+"*", http.StripPrefix(media.ThumbnailURLPrefix, http.FileServer(http.Dir(c.cfg.ThumbnailDir))))
	r.Handle("/*", http.FileServer(http.Dir(c.cfg.StaticDir)))

	return r
}
