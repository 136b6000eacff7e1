package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"lost-algorithm/internal/command"
	"lost-algorithm/internal/config"
	"lost-algorithm/internal/game"

	"github.com/go-chi/chi/v5"
)

// DefaultBroadcastInterval is how often game:state is pushed (10 updates per second).
const DefaultBroadcastInterval = 100 * time.Millisecond

// ServerOptions wires the optional collaborators of a Server.
type ServerOptions struct {
	Commands          *command.Handler
	Queue             *command.CommandQueue
	Preview           FrameRenderer
	RateLimit         config.RateLimitConfig
	AllowedOrigins    []string
	BroadcastInterval time.Duration
	DisableLogging    bool
}

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with WebSocket hub for real-time updates.
type Server struct {
	engine      *game.Engine
	opts        ServerOptions
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter

	startOnce  sync.Once
	httpServer *http.Server
}

// NewServer creates a new API server.
//
// IMPORTANT: Background workers do NOT start until StartWorkers() or
// Start() is called, so tests can construct the server and use Router()
// without goroutines or listeners.
func NewServer(engine *game.Engine, opts ServerOptions) *Server {
	if opts.BroadcastInterval <= 0 {
		opts.BroadcastInterval = DefaultBroadcastInterval
	}
	origins := NewOriginChecker(opts.AllowedOrigins)

	s := &Server{
		engine:      engine,
		opts:        opts,
		rateLimiter: NewIPRateLimiter(opts.RateLimit),
	}
	s.httpServer = &http.Server{ReadHeaderTimeout: 5 * time.Second}

	var queue CommandEnqueuer
	if opts.Queue != nil {
		queue = opts.Queue
	}
	s.wsHub = NewWebSocketHub(origins, queue)

	rc := RouterConfig{
		Engine:         engine,
		Queue:          queue,
		Preview:        opts.Preview,
		RateLimiter:    s.rateLimiter,
		Origins:        origins,
		DisableLogging: opts.DisableLogging,
	}
	if opts.Commands != nil {
		rc.Commands = opts.Commands
	}
	s.router = NewRouter(rc)

	// WebSocket route needs the wsHub instance
	s.router.Get("/ws", s.wsHub.HandleWebSocket)
	s.httpServer.Handler = s.router

	return s
}

// StartWorkers hooks engine callbacks into the hub and starts the hub,
// the broadcast loop and the command queue. Safe to call more than once.
func (s *Server) StartWorkers() {
	s.startOnce.Do(func() {
		s.engine.SetCallbacks(s.onFragment, s.onZoneChange, s.onVictory)

		if q := s.opts.Queue; q != nil {
			q.OnResult = s.onCommandResult
			q.Start()
		}

		go s.wsHub.Run()
		s.wsHub.StartBroadcastLoop(s.engine, s.opts.BroadcastInterval)
	})
}

// Start begins the HTTP server AND starts background workers.
// It blocks until the server stops; http.ErrServerClosed is not an error.
func (s *Server) Start(addr string) error {
	s.StartWorkers()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	log.Printf("🌐 API server starting on %s", ln.Addr())
	log.Printf("🎮 State: http://%s/api/state", ln.Addr())

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
//
// Example:
//
//	server := api.NewServer(engine, api.ServerOptions{})
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/state")
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Shutdown stops the listener, then background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.wsHub.Stop()
	if s.opts.Queue != nil {
		s.opts.Queue.Stop()
	}
	s.rateLimiter.Stop()
	return err
}

func (s *Server) onFragment(zone game.ZoneID, fragments int) {
	UpdateFragments(fragments)
	s.wsHub.Broadcast(EventFragment, map[string]interface{}{
		"zone":      zone,
		"fragments": fragments,
		"total":     game.TotalFragments,
	})
}

func (s *Server) onZoneChange(from, to game.ZoneID) {
	RecordZoneChange(true)
	s.wsHub.Broadcast(EventZone, map[string]game.ZoneID{"from": from, "to": to})
}

func (s *Server) onVictory() {
	log.Println("🏆 Broadcasting victory")
	s.wsHub.Broadcast(EventVictory, map[string]interface{}{
		"fragments": game.TotalFragments,
	})
}

func (s *Server) onCommandResult(cmd command.Command, res command.Result, err error) {
	RecordCommand(err)
	payload := map[string]interface{}{
		"source":  cmd.Source,
		"command": cmd.Name,
	}
	if err != nil {
		payload["error"] = err.Error()
		s.wsHub.Reply(cmd.Source, EventCommandError, payload)
		return
	}
	payload["applied"] = res.Applied
	payload["message"] = res.Message
	s.wsHub.Reply(cmd.Source, EventCommandResult, payload)
}
