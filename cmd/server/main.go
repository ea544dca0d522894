package main

import (
	"log"

	_ "video-uploader/docs"

	"video-uploader/internal/app"
	"video-uploader/internal/pkg/config"

	"go.uber.org/fx"
)

// @title Video Uploader API
// @version 1.0
// @description Resumable video uploads and HLS transcoding.
// @host localhost:3000
// @BasePath /api/v1
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	opts := []fx.Option{app.Core(cfg), app.HTTP()}
	if cfg.Server.EmbeddedWorker {
		opts = append(opts, app.Worker())
	} else if cfg.Queue.Backend != "redis" || cfg.Database.Driver == "memory" {
		log.Fatal("a standalone worker needs QUEUE_BACKEND=redis and a shared database")
	}

	app.Run(opts...)
}
