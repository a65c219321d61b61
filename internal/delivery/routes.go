package delivery

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const APIPrefix = "/api/v1"

// NewRouter builds the full HTTP surface. feed may be nil.
func NewRouter(log *logger.ZapLogger, hMedia *MediaHandler, feed http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(Recoverer(log))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, log, &HTTPError{
			Status:  http.StatusNotFound,
			Name:    "NotFoundException",
			Message: "Cannot " + r.Method + " " + r.URL.Path,
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, log, &HTTPError{
			Status:  http.StatusMethodNotAllowed,
			Name:    "MethodNotAllowed",
			Message: "Cannot " + r.Method + " " + r.URL.Path,
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	RegisterRoutes(r, hMedia, feed)
	return r
}

func RegisterRoutes(r chi.Router, hMedia *MediaHandler, feed http.Handler) {
	r.Route(APIPrefix+"/media", func(r chi.Router) {
		r.Get("/", hMedia.List)
		r.Post("/", hMedia.Create)
		r.Get("/search", hMedia.Search)

		// media change feed (websocket)
		if feed != nil {
			r.Method(http.MethodGet, "/ws", feed)
		}

		r.Get("/{id}", hMedia.Get)
		r.Patch("/{id}", hMedia.Update)
		r.Delete("/{id}", hMedia.Delete)
	})
}
