// Package server exposes the sequencing engine over HTTP for a hosting UI.
//
// The SQLite store is the source of truth. Every request reads the captain
// from the store, runs the engine over that snapshot and, for mutations,
// writes the result back with a revision check. Mutations on one captain are
// serialized in-process; the revision check catches writers in other
// processes.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/roach88/expo/internal/config"
	"github.com/roach88/expo/internal/engine"
	"github.com/roach88/expo/internal/store"
)

// Server provides HTTP endpoints for captains and their firing sequences.
type Server struct {
	echo      *echo.Echo
	store     *store.Store
	estimator engine.Estimator
	logger    *slog.Logger
	config    config.ServerConfig
	locks     *captainLocks
}

// New creates a server over st.
func New(st *store.Store, est engine.Estimator, logger *slog.Logger, cfg config.ServerConfig) (*Server, error) {
	if st == nil {
		return nil, errors.New("store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger is required for request tracking and debugging")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	s := &Server{
		echo:      e,
		store:     st,
		estimator: est,
		logger:    logger,
		config:    cfg,
		locks:     newCaptainLocks(),
	}
	s.registerRoutes()

	return s, nil
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo write the error response so the status is final.
				c.Error(err)
			}

			logger.Info("http request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"duration", time.Since(start),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return nil
		}
	}
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/captains", s.handleListCaptains)
	v1.GET("/captains/:id", s.handleGetCaptain)
	v1.GET("/captains/:id/suggestions", s.handleSuggestions)
	v1.POST("/captains/:id/move", s.handleMove)
	v1.POST("/captains/:id/apply", s.handleApply)
	v1.GET("/captains/:id/timeline", s.handleTimeline)
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server. It blocks until the server stops; after
// Shutdown it returns http.ErrServerClosed.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.logger.Info("starting http server", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
