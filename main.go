package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mantle-data/tomography.report/api"
	"github.com/mantle-data/tomography.report/internal/store"
)

var (
	devMode       = flag.Bool("dev", false, "Run in dev mode")
	listen        = flag.String("listen", ":8080", "Listen address")
	dbFile        = flag.String("db", "tomography.db", "Path to the sqlite database")
	migrationsDir = flag.String("migrations", "", "Apply migrations from this directory before serving")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	db, err := store.Open(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *migrationsDir != "" {
		if err := db.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the admin debugging routes (accessible only in dev mode or over Tailscale)
		db.AttachAdminRoutes(mux)

		apiMux := api.NewServer(db).ServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiMux))
		mux.Handle("/", apiMux)

		h := http.Handler(mux)
		if *devMode {
			h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				log.Printf("got request %q", r.URL.Path)
				mux.ServeHTTP(w, r)
			})
		}

		server := &http.Server{
			Addr:    *listen,
			Handler: h,
		}

		go func() {
			log.Printf("listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

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
