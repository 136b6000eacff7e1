package api

import (
	"io"
	"net/http"
	"time"

	"lost-algorithm/internal/command"
	"lost-algorithm/internal/config"
	"lost-algorithm/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the game engine methods used by the API.
// Keep this minimal - only include methods the API layer actually calls.
type EngineInterface interface {
	// GetState returns progression and per-zone progress
	GetState() game.GameState
	// GetSnapshot returns the latest lock-free immutable snapshot
	GetSnapshot() *game.GameSnapshot
	// SelectZone requests a zone change; false means it was rejected
	SelectZone(source string, zone game.ZoneID) bool
	// Interact routes an interaction to the current zone's puzzle
	Interact(source string, in game.Interaction) bool
	// Pointer clicks an entity id or a world position
	Pointer(source, entityID string, point *game.Vec3) bool
	// Zones lists zone metadata with live navigation state
	Zones() []game.ZoneInfo
	// RecentEvents returns up to n of the newest logged events
	RecentEvents(n int) []game.Event
	// GetEventLogStats returns event log counters
	GetEventLogStats() map[string]interface{}
}

// CommandProcessor runs a text command synchronously.
type CommandProcessor interface {
	ProcessLine(source, line string) (command.Result, error)
}

// CommandEnqueuer feeds the ordered command queue.
type CommandEnqueuer interface {
	EnqueueLine(source, line string) error
	Stats() command.QueueStats
}

// FrameRenderer draws a snapshot as a PNG.
type FrameRenderer interface {
	RenderPNG(w io.Writer, snap *game.GameSnapshot) error
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	router := api.NewRouter(api.RouterConfig{
//	    Engine:          engine,
//	    RateLimitConfig: &config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
//	    DisableLogging:  true,
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the game engine (required)
	Engine EngineInterface

	// Commands serves POST /api/command. Optional.
	Commands CommandProcessor

	// Queue serves GET /api/queue/stats. Optional.
	Queue CommandEnqueuer

	// Preview serves GET /api/frame.png. Optional.
	Preview FrameRenderer

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one is created from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is used only if RateLimiter is nil.
	// If both are nil, config.Default().RateLimit applies.
	RateLimitConfig *config.RateLimitConfig

	// Origins is the CORS allow list. If nil, DefaultAllowedOrigins applies.
	Origins *OriginChecker

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	engine   EngineInterface
	commands CommandProcessor
	queue    CommandEnqueuer
	preview  FrameRenderer
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE apart from the rate limiter's cleanup
// goroutine. No network listeners are opened, which makes it safe to use
// with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	r.Use(middleware.RequestID)
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := config.Default().RateLimit
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	origins := cfg.Origins
	if origins == nil {
		origins = NewOriginChecker(nil)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins.Origins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := &routerHandlers{
		engine:   cfg.Engine,
		commands: cfg.Commands,
		queue:    cfg.Queue,
		preview:  cfg.Preview,
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)

		// Game state
		r.Get("/state", h.handleGetState)
		r.Get("/zones", h.handleGetZones)

		// Input
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(5 * time.Second))
			r.Post("/zone", h.handleSelectZone)
			r.Post("/interact", h.handleInteract)
			r.Post("/pointer", h.handlePointer)
			r.Post("/command", h.handleCommand)
		})

		// Event log
		r.Get("/events", h.handleGetEvents)
		r.Get("/events/stats", h.handleGetEventStats)

		r.Get("/frame.png", h.handleFrame)
		r.Get("/queue/stats", h.handleQueueStats)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/state", http.StatusFound)
	})

	return r
}
