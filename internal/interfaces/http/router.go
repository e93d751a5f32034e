package http

import (
	"net/http"

	"github.com/briananderson1222/EdgeMind-sub003/internal/interfaces/http/handler"
	"github.com/briananderson1222/EdgeMind-sub003/internal/interfaces/http/middleware"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/config"
	"github.com/briananderson1222/EdgeMind-sub003/pkg/logger"
)

// Router настраивает маршруты приложения
type Router struct {
	mux                 *http.ServeMux
	schemaAPIHandler    *handler.SchemaAPIHandler
	hierarchyAPIHandler *handler.HierarchyAPIHandler
	oeeAPIHandler       *handler.OEEAPIHandler
	insightAPIHandler   *handler.InsightAPIHandler
	authAPIHandler      *handler.AuthAPIHandler
	security            config.SecurityConfig
	logger              *logger.Logger
}

// NewRouter создает новый router
func NewRouter(
	schemaAPIHandler *handler.SchemaAPIHandler,
	hierarchyAPIHandler *handler.HierarchyAPIHandler,
	oeeAPIHandler *handler.OEEAPIHandler,
	insightAPIHandler *handler.InsightAPIHandler,
	authAPIHandler *handler.AuthAPIHandler,
	security config.SecurityConfig,
	logger *logger.Logger,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		schemaAPIHandler:    schemaAPIHandler,
		hierarchyAPIHandler: hierarchyAPIHandler,
		oeeAPIHandler:       oeeAPIHandler,
		insightAPIHandler:   insightAPIHandler,
		authAPIHandler:      authAPIHandler,
		security:            security,
		logger:              logger,
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

	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Enabled:     rt.security.AuthEnabled,
		BearerToken: rt.security.AuthToken,
	}, rt.logger)

	// On-demand cycles touch the time-series store; throttle per client.
	runLimiter := middleware.NewIPRateLimiter(0.2, 2)

	// API endpoints
	rt.mux.HandleFunc("/api/v1/auth/login", rt.authAPIHandler.Login)
	rt.mux.HandleFunc("/api/v1/auth/logout", rt.authAPIHandler.Logout)
	rt.mux.HandleFunc("/api/v1/auth/status", rt.authAPIHandler.Status)

	rt.mux.Handle("/api/v1/schema/measurements", authMiddleware(http.HandlerFunc(rt.schemaAPIHandler.GetMeasurements)))
	rt.mux.Handle("/api/v1/hierarchy", authMiddleware(http.HandlerFunc(rt.hierarchyAPIHandler.GetHierarchy)))
	rt.mux.Handle("/api/v1/oee", authMiddleware(http.HandlerFunc(rt.oeeAPIHandler.GetOEE)))
	rt.mux.Handle("/api/v1/insight/status", authMiddleware(http.HandlerFunc(rt.insightAPIHandler.GetStatus)))
	rt.mux.Handle("/api/v1/insight/run", authMiddleware(middleware.RateLimit(runLimiter)(http.HandlerFunc(rt.insightAPIHandler.RunNow))))

	// Применяем middleware
	var handler http.Handler = rt.mux
	handler = middleware.Compression(handler)
	handler = middleware.Logger(rt.logger)(handler)
	handler = middleware.Recovery(rt.logger)(handler)

	return handler
}
