package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"carsales-backend/internal/handlers"
	"carsales-backend/internal/middleware"
	"carsales-backend/internal/websocket"
)

// New wires the HTTP surface. A nil limiter disables rate limiting.
func New(
	chatHandler *handlers.ChatHandler,
	audioHandler *handlers.AudioHandler,
	catalogHandler *handlers.CatalogHandler,
	wsHub *websocket.Hub,
	limiter *middleware.RateLimiter,
	corsOrigin string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(corsOrigin))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		// ──── Chat Routes ────
		r.Post("/chat", chatHandler.Chat)
		r.Get("/chat/ws", wsHub.HandleWebSocket)
		r.Post("/getaudio", audioHandler.GetAudio)

		// ──── Catalog Routes ────
		r.Get("/cars", catalogHandler.ListCars)
		r.Get("/cars/{id}", catalogHandler.GetCar)
		r.Get("/showrooms", catalogHandler.ListShowrooms)
	})

	return r
}
