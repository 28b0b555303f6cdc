package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	hrest "portal-notification-service/internal/handler/http"
	wshandler "portal-notification-service/internal/handler/ws"
	"portal-notification-service/internal/middleware"
	"portal-notification-service/pkg/response"
)

// SetupRoutes configures the HTTP routes for the notification service.
func SetupRoutes(
	r chi.Router,
	h *hrest.NotificationHandler,
	wsHandler *wshandler.WSHandler,
	rdb *redis.Client,
) chi.Router {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-User-ID",
			"X-Correlation-ID",
		},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.CorrelationID)
	r.Use(middleware.RateLimiter(rdb, 100, time.Minute, 10*time.Minute, "global"))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// ============================================================
	// Dispatch routes (trusted internal workflow callers)
	// ============================================================
	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Post("/dispatch", h.Dispatch)
		r.Post("/dispatch/guest", h.DispatchGuest)

		// Inbox & preferences require a gateway-authenticated identity.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/", h.ListNotifications)
			r.Get("/unread", h.ListUnread)
			r.Get("/unread/count", h.CountUnread)
			r.Patch("/{id}/read", h.MarkAsRead)
			r.Patch("/{id}/hide", h.HideNotification)

			r.Get("/preferences", h.ListPreferences)
			r.Post("/preferences", h.UpsertPreference)

			r.Get("/ws", wsHandler.HandleNotifications)
		})
	})
	return r
}
