package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// localHosts are the origins accepted unless AllowAll is set.
var localHosts = []string{"localhost", "127.0.0.1"}

// CheckOrigin returns the origin policy for WebSocket upgrades, matching
// the CORS policy: any origin when allowAll is set, otherwise local http
// pages or requests without an Origin header.
func CheckOrigin(allowAll bool) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme != "http" {
			return false
		}
		for _, h := range localHosts {
			if u.Hostname() == h {
				return true
			}
		}
		return false
	}
}

// Server is the HTTP host for tour sessions.
type Server struct {
	cfg        Config
	log        zerolog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. Feature packages mount their routes on Router().
func New(cfg Config, logger zerolog.Logger) *Server {
	s := &Server{
		cfg: cfg,
		log: logger.With().Str("component", "server").Logger(),
	}

	s.router = s.buildRouter()
	// WebSocket sessions are long-lived, so there is no write timeout and
	// no request timeout middleware.
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	var origins []string
	for _, h := range localHosts {
		origins = append(origins, "http://"+h+":*")
	}
	corsOpts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", s.cfg.Port, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("panotour server listening")
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
