package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	chatwebui "github.com/codychat/chat-web-ui"
	"github.com/codychat/chat-web-ui/internal/conversation"
	"github.com/codychat/chat-web-ui/internal/handlers"
	"github.com/codychat/chat-web-ui/internal/models"
	"github.com/codychat/chat-web-ui/internal/services"
)

func main() {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatal(fmt.Errorf("error getting user config dir: %w", err))
	}
	appDir := filepath.Join(cfgDir, "chatwebui")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		log.Fatal(fmt.Errorf("error creating config directory: %w", err))
	}

	cfg, err := loadConfig(filepath.Join(appDir, "config.yaml"))
	if err != nil {
		log.Fatal(err)
	}
	delay, err := cfg.responseDelay()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	storePath := cfg.StorePath
	if storePath == "" {
		storePath = filepath.Join(appDir, "store.db")
	}
	mirror, err := services.NewBoltMirror(storePath, logger)
	if err != nil {
		panic(err)
	}
	defer mirror.Close()

	catalog := models.SampleCatalog()
	store := conversation.NewStore(mirror, catalog, cfg.DefaultModel, logger)
	store.Load(context.Background())

	responder := services.NewSimulated(delay, logger)
	pipeline := conversation.NewPipeline(store, responder, logger)

	m, err := handlers.NewMain(store, pipeline, mirror, catalog, logger)
	if err != nil {
		panic(err)
	}

	// Serve static files
	staticFS, err := fs.Sub(chatwebui.StaticFS, "static")
	if err != nil {
		panic(err)
	}
	fileServer := http.FileServer(http.FS(staticFS))

	// Create custom mux
	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", fileServer))
	mux.HandleFunc("/", m.HandleHome)
	mux.HandleFunc("/chats", m.HandleChats)
	mux.HandleFunc("/chats/new", m.HandleNewChat)
	mux.HandleFunc("/chats/load", m.HandleLoadChat)
	mux.HandleFunc("/models/select", m.HandleSelectModel)
	mux.HandleFunc("/messages/delete", m.HandleDeleteMessage)
	mux.HandleFunc("/theme", m.HandleTheme)
	mux.HandleFunc("/sse", m.HandleSSE)

	// Create custom server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv.RegisterOnShutdown(func() {
		if err := m.Shutdown(context.Background()); err != nil {
			log.Printf("Failed to shutdown sse server: %v", err)
		}
	})

	// Channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Println("Server starting on :" + cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt/terminate signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Blocking select waiting for either interrupt or server error
	select {
	case err := <-serverErrors:
		log.Printf("Server error: %v", err)

	case sig := <-shutdown:
		log.Printf("Start shutdown, signal: %v", sig)

		// Create context with timeout for shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Gracefully shutdown the server
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Graceful shutdown failed: %v", err)
			if err := srv.Close(); err != nil {
				log.Printf("Forcing server close: %v", err)
			}
		}
	}
}
