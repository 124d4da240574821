package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcadeworks/arcade-ops/internal/api"
	"github.com/arcadeworks/arcade-ops/internal/assistant"
	"github.com/arcadeworks/arcade-ops/internal/config"
	"github.com/arcadeworks/arcade-ops/internal/database"
	"github.com/arcadeworks/arcade-ops/internal/tpt"
	"github.com/arcadeworks/arcade-ops/internal/weather"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("Arcade Ops server starting")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	if err := checkPortAvailable(cfg.Server.Host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	db, err := database.Open(cfg.Database.URL, cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	var sink tpt.Sink
	switch cfg.TPT.SnapshotBackend {
	case "s3":
		s3Sink, err := tpt.NewS3Sink(context.Background(),
			cfg.TPT.S3Bucket, cfg.TPT.S3Prefix, cfg.TPT.S3Region, cfg.TPT.AWSProfile)
		if err != nil {
			log.Fatalf("Failed to initialize S3 snapshot sink: %v", err)
		}
		sink = s3Sink
		log.Printf("[tpt] snapshots -> s3://%s/%s", cfg.TPT.S3Bucket, cfg.TPT.S3Prefix)
	default:
		sink = tpt.NewFileSink(cfg.TPT.ReportsDir)
		log.Printf("[tpt] snapshots -> %s", cfg.TPT.ReportsDir)
	}

	pipeline := tpt.NewPipeline(sink, cfg.TPT.ExclusionGroup)
	history := tpt.NewHistory(db)

	weatherClient := weather.NewClient(cfg.Weather.APIKey, cfg.Weather.Latitude, cfg.Weather.Longitude)
	assistantClient := assistant.NewClient(cfg.Assistant.APIKey, cfg.Assistant.Model)

	service := api.NewService(db, pipeline, history, weatherClient, assistantClient, cfg)

	// Daily retention sweep for old report snapshots.
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if removed, err := history.Prune(cfg.TPT.RetentionDays); err != nil {
					log.Printf("[tpt] retention sweep failed: %v", err)
				} else if removed > 0 {
					log.Printf("[tpt] retention sweep removed %d reports", removed)
				}
			}
		}
	}()

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: service.Routes(),
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	cancelSweep()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
