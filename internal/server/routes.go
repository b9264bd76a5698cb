package server

import (
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mkashifaslam/prompt-studio/internal/appid"
	"github.com/mkashifaslam/prompt-studio/internal/observability"
	"github.com/mkashifaslam/prompt-studio/internal/server/handlers"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	if s.opts.HealthEnabled {
		s.router.Get("/health", handlers.HealthHandler)
		s.router.Get("/health/live", handlers.LivenessHandler)
		s.router.Get("/health/ready", handlers.ReadinessHandler)
		s.router.Get("/health/startup", handlers.StartupHandler)
	}

	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)

	s.router.Route("/templates", func(r chi.Router) {
		r.Post("/extract", handlers.ExtractHandler)
		r.Post("/sync", handlers.SyncHandler)
		r.Post("/preview", handlers.PreviewHandler)
	})

	if s.opts.Prompts != nil {
		h := handlers.NewPromptHandler(s.opts.Prompts)
		s.router.Route("/prompts", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Post("/{id}/render", h.Render)
		})
	}

	if s.opts.Mcp != nil {
		h := handlers.NewMcpHandler(s.opts.Mcp)
		// {ref} is the record id for reads and deletes and the name for upserts.
		s.router.Route("/mcp", func(r chi.Router) {
			r.Get("/", h.List)
			r.Get("/{ref}", h.Get)
			r.Post("/{ref}", h.Upsert)
			r.Delete("/{ref}", h.Delete)
		})
	}

	// Admin signal endpoint (optional, requires PROMPTSTUDIO_ADMIN_TOKEN)
	s.registerAdminEndpoint()
}

// registerAdminEndpoint optionally registers the admin signal endpoint
func (s *Server) registerAdminEndpoint() {
	tokenVar := appid.Get().Env("ADMIN_TOKEN")
	adminToken := os.Getenv(tokenVar)
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no " + tokenVar + " set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,  // 10 requests per minute
		RateBurst: 5,   // burst size
		Manager:   nil, // use default global manager
	})

	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
