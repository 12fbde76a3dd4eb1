package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dreschagin/buoywatch/internal/interfaces/http/handler"
	"github.com/dreschagin/buoywatch/internal/interfaces/http/middleware"
	"github.com/dreschagin/buoywatch/pkg/config"
	"github.com/dreschagin/buoywatch/pkg/logger"
)

// Router настраивает маршруты приложения
type Router struct {
	mux                *http.ServeMux
	snapshotHandler    *handler.SnapshotAPIHandler
	seriesHandler      *handler.SeriesAPIHandler
	alertsHandler      *handler.AlertsAPIHandler
	exportsHandler     *handler.ExportsAPIHandler
	preferencesHandler *handler.PreferencesAPIHandler
	websocketHandler   *handler.WebSocketHandler
	authAPIHandler     *handler.AuthAPIHandler
	security           config.SecurityConfig
	logger             *logger.Logger
}

// NewRouter создает новый router
func NewRouter(
	snapshotHandler *handler.SnapshotAPIHandler,
	seriesHandler *handler.SeriesAPIHandler,
	alertsHandler *handler.AlertsAPIHandler,
	exportsHandler *handler.ExportsAPIHandler,
	preferencesHandler *handler.PreferencesAPIHandler,
	websocketHandler *handler.WebSocketHandler,
	authAPIHandler *handler.AuthAPIHandler,
	security config.SecurityConfig,
	logger *logger.Logger,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		snapshotHandler:    snapshotHandler,
		seriesHandler:      seriesHandler,
		alertsHandler:      alertsHandler,
		exportsHandler:     exportsHandler,
		preferencesHandler: preferencesHandler,
		websocketHandler:   websocketHandler,
		authAPIHandler:     authAPIHandler,
		security:           security,
		logger:             logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	// Health endpoints are intentionally unauthenticated for probes.
	rt.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	rt.mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// Prometheus scrape endpoint.
	rt.mux.Handle("/metrics", promhttp.Handler())

	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Enabled:     rt.security.AuthEnabled,
		BearerToken: rt.security.AuthToken,
	}, rt.logger)

	// WebSocket
	rt.mux.Handle("/ws", authMiddleware(http.HandlerFunc(rt.websocketHandler.HandleConnection)))

	// Auth endpoints stay open so the login flow can reach them.
	rt.mux.HandleFunc("/api/v1/auth/login", rt.authAPIHandler.Login)
	rt.mux.HandleFunc("/api/v1/auth/logout", rt.authAPIHandler.Logout)
	rt.mux.HandleFunc("/api/v1/auth/status", rt.authAPIHandler.Status)

	// API endpoints
	rt.mux.Handle("/api/v1/snapshot", authMiddleware(http.HandlerFunc(rt.snapshotHandler.GetSnapshot)))
	rt.mux.Handle("/api/v1/series", authMiddleware(http.HandlerFunc(rt.seriesHandler.GetSeries)))
	rt.mux.Handle("/api/v1/alerts", authMiddleware(http.HandlerFunc(rt.alertsHandler.GetAlerts)))
	rt.mux.Handle("/api/v1/alerts/toasts", authMiddleware(http.HandlerFunc(rt.alertsHandler.GetToasts)))
	rt.mux.Handle("/api/v1/alerts/dismiss", authMiddleware(http.HandlerFunc(rt.alertsHandler.DismissToast)))
	rt.mux.Handle("/api/v1/exports", authMiddleware(http.HandlerFunc(rt.exportsHandler.HandleExports)))
	rt.mux.Handle("/api/v1/preferences", authMiddleware(http.HandlerFunc(rt.preferencesHandler.HandlePreferences)))

	// Применяем middleware
	rateLimiter := middleware.NewIPRateLimiter(rt.security.RateLimitRPS, rt.security.RateLimitBurst)

	var handler http.Handler = rt.mux
	handler = middleware.Metrics(handler)
	handler = middleware.Compression(handler)
	handler = middleware.RateLimit(rateLimiter)(handler)
	handler = middleware.Logger(rt.logger)(handler)
	handler = middleware.Recovery(rt.logger)(handler)

	return handler
}
