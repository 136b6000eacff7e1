// Package config provides centralized configuration management.
// Every setting has a default declared on its struct tag; environment
// variables override them.
//
// IMPORTANT: When changing defaults, only modify the tags in this file.
// All other parts of the codebase should reference these values.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `env:"PORT" envDefault:"3000"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return defaults[ServerConfig]()
}

// =============================================================================
// ENGINE CONFIGURATION
// =============================================================================

// EngineConfig controls the frame loop.
type EngineConfig struct {
	TickRate      int   `env:"TICK_RATE" envDefault:"60"`      // Frames per second
	ParticleCount int   `env:"PARTICLE_COUNT" envDefault:"50"` // Particles per celebration field
	Seed          int64 `env:"SEED" envDefault:"0"`            // 0 = seeded from the clock
	CueTicks      int   `env:"CUE_TICKS" envDefault:"60"`      // Lifetime of a sound cue indicator
}

// DefaultEngine returns the default engine configuration.
func DefaultEngine() EngineConfig {
	return defaults[EngineConfig]()
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits caps pool sizes so snapshots never grow unbounded.
type ResourceLimits struct {
	MaxParticlesPerField int `env:"MAX_PARTICLES_PER_FIELD" envDefault:"500"`
	MaxAnimationEntries  int `env:"MAX_ANIMATION_ENTRIES" envDefault:"1024"`
	MaxEntities          int `env:"MAX_ENTITIES" envDefault:"256"`
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return defaults[ResourceLimits]()
}

// =============================================================================
// EVENT LOG CONFIGURATION
// =============================================================================

// EventLogConfig controls the append-only event log.
type EventLogConfig struct {
	Path          string `env:"EVENT_LOG_PATH"` // Empty keeps events in memory only
	RatePerSec    int    `env:"EVENT_LOG_RATE" envDefault:"100"`
	PerSourceRate int    `env:"EVENT_LOG_SOURCE_RATE" envDefault:"20"`
}

// DefaultEventLog returns the default event log configuration.
func DefaultEventLog() EventLogConfig {
	return defaults[EventLogConfig]()
}

// =============================================================================
// OBSERVABILITY & RATE LIMITING
// =============================================================================

// ObservabilityConfig controls the debug server (pprof + metrics).
type ObservabilityConfig struct {
	DebugAddr    string `env:"DEBUG_ADDR" envDefault:"127.0.0.1:6060"`
	DebugEnabled bool   `env:"DEBUG_ENABLED" envDefault:"true"`
}

// RateLimitConfig controls per-IP limiting on the HTTP API.
type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"API_RATE_PER_SEC" envDefault:"10"`
	Burst             int     `env:"API_BURST" envDefault:"20"`
}

// CommandConfig controls the text command queue.
type CommandConfig struct {
	QueueSize     int     `env:"COMMAND_QUEUE_SIZE" envDefault:"256"`
	Workers       int     `env:"COMMAND_WORKERS" envDefault:"1"` // >1 gives up input ordering
	RatePerSecond float64 `env:"COMMAND_RATE_PER_SEC" envDefault:"20"`
	Burst         int     `env:"COMMAND_BURST" envDefault:"10"`
}

// DefaultCommands returns the default command configuration.
func DefaultCommands() CommandConfig {
	return defaults[CommandConfig]()
}

// =============================================================================
// TERMINAL CLIENT CONFIGURATION
// =============================================================================

// RemoteConfig controls the terminal client when attached to a server.
type RemoteConfig struct {
	ServerURL      string        `env:"SERVER_URL"` // Empty runs the engine in-process
	ReconnectDelay time.Duration `env:"RECONNECT_DELAY" envDefault:"2s"`
	Source         string        `env:"CLIENT_NAME" envDefault:"terminal"`
	FPS            int           `env:"TERMINAL_FPS" envDefault:"15"`
	LogPath        string        `env:"TERMINAL_LOG" envDefault:"terminal.log"` // the screen owns stdout
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server        ServerConfig
	Engine        EngineConfig
	Limits        ResourceLimits
	EventLog      EventLogConfig
	Observability ObservabilityConfig
	RateLimit     RateLimitConfig
	Commands      CommandConfig
	Remote        RemoteConfig
	CatalogPath   string `env:"ZONE_CATALOG_PATH"` // Empty uses the embedded catalog
}

// Default returns the configuration with no environment applied.
func Default() AppConfig {
	return defaults[AppConfig]()
}

// Load returns the complete configuration with environment overrides.
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c AppConfig) Validate() error {
	if c.Engine.TickRate <= 0 {
		return fmt.Errorf("TICK_RATE must be positive, got %d", c.Engine.TickRate)
	}
	if c.Engine.ParticleCount < 0 || c.Engine.ParticleCount > c.Limits.MaxParticlesPerField {
		return fmt.Errorf("PARTICLE_COUNT must be within 0..%d, got %d",
			c.Limits.MaxParticlesPerField, c.Engine.ParticleCount)
	}
	if c.Commands.QueueSize <= 0 {
		return fmt.Errorf("COMMAND_QUEUE_SIZE must be positive, got %d", c.Commands.QueueSize)
	}
	if c.Commands.Workers <= 0 {
		return fmt.Errorf("COMMAND_WORKERS must be positive, got %d", c.Commands.Workers)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Server.Port)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// defaults fills T from its envDefault tags only, ignoring the process environment.
func defaults[T any]() T {
	var cfg T
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		// Tags are static; a failure here is a typo in this file.
		panic(fmt.Sprintf("config: bad default tags on %T: %v", cfg, err))
	}
	return cfg
}
