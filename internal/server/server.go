package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hongminglow/mf-tracker-be/internal/accounts"
	"github.com/hongminglow/mf-tracker-be/internal/auth"
	"github.com/hongminglow/mf-tracker-be/internal/config"
	"github.com/hongminglow/mf-tracker-be/internal/funds"
	"github.com/hongminglow/mf-tracker-be/internal/http/handlers"
	"github.com/hongminglow/mf-tracker-be/internal/middleware"
	"github.com/hongminglow/mf-tracker-be/internal/saved"
	"github.com/hongminglow/mf-tracker-be/internal/storage"
	"github.com/hongminglow/mf-tracker-be/internal/upstream"
)

// Server wraps an http.Server with configured routes and owns the upstream cache.
type Server struct {
	inner *http.Server
	cache *upstream.Cache
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.UserStore, logger *slog.Logger) *Server {
	cacheOpts := []upstream.Option{upstream.WithTTL(cfg.CacheTTL)}
	if cfg.CoalesceUpstream {
		cacheOpts = append(cacheOpts, upstream.WithCoalescing())
	}
	cache := upstream.NewCache(upstream.NewClient(cfg.UpstreamBaseURL), cacheOpts...)

	gatewayOpts := []funds.Option{funds.WithLogger(logger)}
	if cfg.CompareAllowPartial {
		gatewayOpts = append(gatewayOpts, funds.WithPartialCompare())
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(accounts.NewService(store), tokens, logger).Register(mux)
	handlers.NewSavedHandler(saved.NewManager(store), tokens, logger).Register(mux)
	handlers.NewFundsHandler(funds.NewGateway(cache, gatewayOpts...), logger).Register(mux)

	handler := middleware.RequestID(
		middleware.Logging(logger,
			middleware.CORS(cfg.CORSOrigins,
				middleware.Recover(logger, mux))))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// compare waits on upstream calls bounded at upstream.RequestTimeout
		WriteTimeout: upstream.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return &Server{inner: httpServer, cache: cache}
}

// Handler exposes the fully wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server and stops the cache expiry loop.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.cache.Close()
	return s.inner.Shutdown(ctx)
}
