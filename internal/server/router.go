package server

import (
	"net/http"

	"github.com/qanooni-ai/qanooni/internal/api"
	"github.com/qanooni-ai/qanooni/internal/api/handlers"
	"github.com/qanooni-ai/qanooni/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	SearchHandler    *handlers.SearchHandler
	ChatHandler      *handlers.ChatHandler
	TranslateHandler *handlers.TranslateHandler
	AudioHandler     *handlers.AudioHandler
	AdminHandler     *handlers.AdminHandler
	AdminToken       string
	AdminRatePerMin  int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 25 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/search", cfg.SearchHandler.Search)
	r.Post("/chat", cfg.ChatHandler.Chat)
	r.Post("/translate", cfg.TranslateHandler.Translate)
	r.Post("/transcribe", cfg.AudioHandler.Transcribe)
	r.Post("/speak", cfg.AudioHandler.Speak)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.AdminToken))
		r.Use(middleware.RateLimit(cfg.AdminRatePerMin))

		r.Post("/reindex", cfg.AdminHandler.Reindex)
		r.Get("/stats", cfg.AdminHandler.Stats)
	})

	return r
}
