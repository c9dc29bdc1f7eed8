// Package api exposes the model lifecycle over HTTP: dataset upload,
// training, prediction, attribution, simulation and reporting.
package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"churnscope/internal/container"
)

// Server is the HTTP front end over the service container.
type Server struct {
	router    chi.Router
	container *container.Container
	http      *http.Server
}

// NewServer builds the router and binds all routes.
func NewServer(c *container.Container) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		container: c,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Post("/upload", s.handleUpload)
	s.router.Post("/train-model", s.handleTrain)
	s.router.Post("/predict", s.handlePredict)
	s.router.Post("/explain", s.handleExplain)
	s.router.Post("/simulate", s.handleSimulate)
	s.router.Post("/report", s.handleReport)

	s.router.Get("/models", s.handleListModels)
	s.router.Get("/runs", s.handleListRuns)
	s.router.Get("/download/{filename}", s.handleDownload)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on %s", addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
