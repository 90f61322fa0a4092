package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casino/internal/config"
	"casino/internal/db"
	"casino/internal/handlers"
	"casino/internal/ledger"
	"casino/internal/session"
	"casino/internal/store"
	"casino/internal/websocket"
)

func main() {
	cfg := config.Load()

	backend, closer, async, err := selectBackend(cfg)
	if err != nil {
		log.Fatalf("failed to open backend: %v", err)
	}
	defer closer.Close()
	log.Printf("using %s backend", backend.Name())

	refs := session.NewFileRefStore(cfg.SessionFile, cfg.JWTSecret)
	sessions := session.NewManager(backend, refs)
	if user, ok := sessions.Resolve(context.Background()); ok {
		log.Printf("restored session for %s", user.Profile.Username)
	}

	hub := websocket.NewHub()
	ledgerService := ledger.New(sessions, backend, async, hub)

	handler := handlers.New(cfg, sessions, ledgerService, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("casino API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

// selectBackend picks the persistence backend once for the process lifetime.
// The networked backend needs both the endpoint URL and the access key; with
// either missing the embedded database is used. Remote writes are
// fire-and-forget, local writes complete before the response.
func selectBackend(cfg config.Config) (store.Backend, io.Closer, bool, error) {
	if cfg.RemoteEnabled() {
		database, err := db.Connect(cfg.RemoteURL, cfg.RemoteKey)
		if err != nil {
			return nil, nil, false, err
		}
		return store.NewRemoteStore(database, db.NewTxRunner(database)), database, true, nil
	}
	local, err := store.OpenLocal(cfg.LocalDBPath)
	if err != nil {
		return nil, nil, false, err
	}
	return local, local, false, nil
}
