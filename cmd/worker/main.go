package main

import (
	"log"

	"video-uploader/internal/app"
	"video-uploader/internal/pkg/config"
)

// The standalone worker consumes the shared redis queue, so several can run
// next to a server started with SERVER_EMBEDDED_WORKER=false.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Queue.Backend != "redis" {
		log.Fatalf("worker needs QUEUE_BACKEND=redis, got %q", cfg.Queue.Backend)
	}
	if cfg.Database.Driver == "memory" {
		log.Fatal("worker cannot share an in-memory record store with the server")
	}

	app.Run(app.Core(cfg), app.Worker())
}
