package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/projboard/projboard/internal/event"
	"github.com/projboard/projboard/internal/state"
	"github.com/projboard/projboard/internal/view"
)

// Config holds server configuration.
type Config struct {
	Port         int
	Hostname     string
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:         8080,
		Hostname:     "127.0.0.1",
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // No write timeout for SSE
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Hostname, strconv.Itoa(c.Port))
}

// Server is the HTTP server.
type Server struct {
	config  *Config
	router  *chi.Mux
	httpSrv *http.Server

	store *state.Store
	board *view.Board
	bus   *event.Bus

	// closing ends open event streams on shutdown.
	closing   chan struct{}
	closeOnce sync.Once
}

// New creates a new Server instance.
func New(cfg *Config, store *state.Store, board *view.Board, bus *event.Bus) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		config:  cfg,
		router:  chi.NewRouter(),
		store:   store,
		board:   board,
		bus:     bus,
		closing: make(chan struct{}),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpSrv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// setupMiddleware configures middleware for the server.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)

	if s.config.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

// Start starts the HTTP server and blocks until it stops.
// It returns nil after a graceful Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown. After Shutdown it closes ln and
// returns nil at once.
func (s *Server) Serve(ln net.Listener) error {
	select {
	case <-s.closing:
		ln.Close()
		return nil
	default:
	}

	if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes open event streams and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.closing) })
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
