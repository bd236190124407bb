package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/auditsample/internal/config"
	"github.com/banshee-data/auditsample/internal/db"
)

func main() {
	cli := parseCLI()

	if len(cli.args) > 0 && cli.args[0] != "serve" {
		runCommand(cli)
		return
	}

	runServe(cli)
}

// runServe starts the HTTP server and blocks until SIGINT/SIGTERM.
func runServe(cli *cliArgs) {
	defaults := loadDefaults(cli.configPath)

	database, err := db.NewDB(cli.dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := buildMux(database, defaults, cli.dataDir)
		server := newHTTPServer(cli.listen, mux, defaults.GetRequestTimeout())

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("listening on %s", cli.listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// Create a shutdown context with a timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}

// newHTTPServer builds the serve-mode HTTP server with the configured
// request timeout applied to the read side.
func newHTTPServer(addr string, handler http.Handler, timeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
	}
}

// loadDefaults loads sampling defaults from path, or returns empty defaults
// (built-in fallbacks) when no config file is given.
func loadDefaults(path string) *config.Defaults {
	if path == "" {
		return config.EmptyDefaults()
	}
	defaults, err := config.LoadDefaults(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return defaults
}
