// The terminal client plays Lost Algorithm in a terminal. With SERVER_URL
// unset it runs its own engine; otherwise it attaches to a game server
// over WebSocket.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"lost-algorithm/internal/command"
	"lost-algorithm/internal/config"
	"lost-algorithm/internal/game"
	"lost-algorithm/internal/remote"
	"lost-algorithm/internal/tui"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	remoteCfg := appConfig.Remote

	// The screen owns stdout from here on
	if remoteCfg.LogPath != "" {
		f, err := os.OpenFile(remoteCfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("❌ Open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	var (
		source  tui.SnapshotSource
		sink    tui.CommandSink
		catalog *config.ZoneCatalog
	)

	if remoteCfg.ServerURL == "" {
		catalog, err = config.LoadZoneCatalog(appConfig.CatalogPath)
		if err != nil {
			log.Fatalf("❌ Zone catalog: %v", err)
		}
		engine := game.NewEngine(game.EngineConfigFrom(appConfig, catalog))
		if err := engine.StartEventLog(); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		}
		engine.Start()
		defer func() {
			engine.StopEventLog()
			engine.Stop()
		}()

		handler := command.NewHandler(engine, appConfig.Commands)
		defer handler.Close()

		source = engine
		sink = tui.LocalSink{Handler: handler, Source: remoteCfg.Source}
		log.Println("🎮 Local mode")
	} else {
		client, err := remote.NewClient(remoteCfg)
		if err != nil {
			log.Fatalf("❌ Remote client: %v", err)
		}
		client.OnConnect(func() { log.Println("✅ Connected to game server") })
		client.OnDisconnect(func() { log.Println("⚠️ Disconnected from game server") })
		client.Start()
		defer client.Stop()

		source = client
		sink = client
		log.Printf("📡 Remote mode: %s", client.URL())
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("❌ Terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("❌ Terminal init: %v", err)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	composer := tui.NewComposer(screen, source, sink, catalog)
	if err := composer.Run(ctx, remoteCfg.FPS); err != nil {
		log.Printf("⚠️ Terminal loop: %v", err)
	}
	log.Println("👋 Goodbye!")
}
