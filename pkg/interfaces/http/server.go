package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rigforge/rigforge/pkg/application/services/autobuild"
	"github.com/rigforge/rigforge/pkg/application/services/cart"
	"github.com/rigforge/rigforge/pkg/application/services/catalog"
	"github.com/rigforge/rigforge/pkg/application/services/order"
	"github.com/rigforge/rigforge/pkg/application/services/workspace"
	"github.com/rigforge/rigforge/pkg/domain/services"
	"github.com/rigforge/rigforge/pkg/infrastructure/auth"
	"go.uber.org/zap"
)

// Pinger is the health-check dependency, satisfied by pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles everything the HTTP layer serves
type Services struct {
	Catalog   *catalog.Service
	Workspace *workspace.Service
	Builder   *autobuild.Builder
	Cart      *cart.Service
	Orders    *order.Service
	Checker   *services.CompatibilityChecker
}

// Server is the configured HTTP front end
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewServer builds the router and wraps it in an http.Server
func NewServer(addr string, svcs Services, verifier auth.TokenVerifier, db Pinger, logger *zap.Logger) *Server {
	root := mux.NewRouter()
	root.Use(accessLog(logger), metricsMiddleware)

	root.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	root.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}).Methods(http.MethodGet)

	api := root.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware(verifier, logger))

	builder := &builderHandler{
		workspace: svcs.Workspace,
		builder:   svcs.Builder,
		checker:   svcs.Checker,
		logger:    logger,
	}
	builder.register(api)

	carts := &cartHandler{cart: svcs.Cart, logger: logger}
	carts.register(api)

	orders := &orderHandler{orders: svcs.Orders, logger: logger}
	orders.register(api)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(adminOnly)
	orders.registerAdmin(admin)
	(&adminHandler{catalog: svcs.Catalog, logger: logger}).register(admin)

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           root,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown or a listener error
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
