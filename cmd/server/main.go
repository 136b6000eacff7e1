package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"lost-algorithm/internal/api"
	"lost-algorithm/internal/command"
	"lost-algorithm/internal/config"
	"lost-algorithm/internal/game"
	"lost-algorithm/internal/preview"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  LOST ALGORITHM - GAME SERVER")
	log.Println("🎮 ================================")

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	serverCfg := appConfig.Server

	catalog, err := config.LoadZoneCatalog(appConfig.CatalogPath)
	if err != nil {
		log.Fatalf("❌ Zone catalog: %v", err)
	}
	if appConfig.CatalogPath != "" {
		log.Printf("🗺️ Zone catalog: %s", appConfig.CatalogPath)
	}

	engine := game.NewEngine(game.EngineConfigFrom(appConfig, catalog))
	engine.SetTickObserver(api.RecordTick)
	limits := engine.GetLimits()
	log.Printf("🛡️ Resource limits: %d particles/field, %d animation entries, %d entities",
		limits.MaxParticlesPerField, limits.MaxAnimationEntries, limits.MaxEntities)

	// Start event log
	if err := engine.StartEventLog(); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else if appConfig.EventLog.Path != "" {
		log.Printf("📝 Event log: %s", appConfig.EventLog.Path)
	}

	// Start debug server
	debugServer := api.StartDebugServer(appConfig.Observability)

	commands := command.NewHandler(engine, appConfig.Commands)
	queue := command.NewCommandQueue(commands, appConfig.Commands)

	server := api.NewServer(engine, api.ServerOptions{
		Commands:       commands,
		Queue:          queue,
		Preview:        preview.NewFrameCache(preview.NewRenderer(preview.DefaultConfig()), preview.DefaultCachedFrames),
		RateLimit:      appConfig.RateLimit,
		AllowedOrigins: serverCfg.AllowedOrigins,
	})

	// Start game engine
	engine.Start()
	log.Println("✅ Game Engine started")

	// Start API server in goroutine
	go func() {
		addr := ":" + strconv.Itoa(serverCfg.Port)
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Println("")
	log.Println("📋 Try it:")
	log.Printf("   curl -X POST localhost:%d/api/command -d '{\"command\":\"goto forest\"}'", serverCfg.Port)
	log.Printf("   SERVER_URL=http://localhost:%d go run ./cmd/terminal", serverCfg.Port)
	log.Println("")

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ API shutdown: %v", err)
	}
	if debugServer != nil {
		debugServer.Shutdown(ctx)
	}
	commands.Close()
	engine.StopEventLog()
	engine.Stop()
	log.Println("👋 Goodbye!")
}
