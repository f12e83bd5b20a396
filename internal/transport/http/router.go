package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"consentd/internal/consent/handler"
	"consentd/internal/platform/middleware"
	"consentd/internal/transport/http/json"
)

// RouterConfig carries the collaborators the router wires together.
type RouterConfig struct {
	Consent        *handler.Handler
	TokenValidator middleware.TokenValidator
	Metadata       *middleware.Metadata
	Health         func() error
	Logger         *slog.Logger
}

// NewRouter wires all public endpoints with the middleware stack.
//
// Authentication is optional on the consent routes: requests without a token
// pass through as anonymous callers and the service decides between 401, 403
// and success, so guests can still record consents while probing only what
// they own.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cfg.Metadata.Handler)

	r.Get("/healthz", handleHealth(cfg.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/legal", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Authenticate(cfg.TokenValidator, cfg.Logger))
		cfg.Consent.Register(r)
	})

	return r
}

func handleHealth(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				json.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
				return
			}
		}
		json.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
