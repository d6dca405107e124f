package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/rl1809/seckill/internal/logger"
)

type RouterConfig struct {
	// RateLimit is requests per second per client IP on /api, 0 disables it.
	RateLimit int
	Metrics   http.Handler
	Health    map[string]HealthChecker
}

func NewRouter(h *HTTPHandler, log logger.Logger, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Recovery(log))
	r.Use(logger.Middleware(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", HealthCheck(cfg.Health))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, time.Second))
		}

		r.Get("/time/now", h.Now)
		r.Get("/items", h.ListItems)
		r.Route("/items/{itemID}", func(r chi.Router) {
			r.Get("/", h.GetItem)
			r.Post("/exposure", h.Expose)
			r.Post("/purchase", h.Purchase)
		})
	})

	return r
}
