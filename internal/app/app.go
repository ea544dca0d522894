// Package app assembles the server and worker processes with fx.
package app

import (
	"context"
	"fmt"
	"time"

	"video-uploader/internal/delivery/http/handlers"
	"video-uploader/internal/delivery/http/routers"
	"video-uploader/internal/domain/repositories"
	"video-uploader/internal/infrastructure/db"
	"video-uploader/internal/infrastructure/processor"
	"video-uploader/internal/infrastructure/queue"
	infra_repo "video-uploader/internal/infrastructure/repositories"
	"video-uploader/internal/infrastructure/storage"
	"video-uploader/internal/pkg/config"
	"video-uploader/internal/pkg/logger"
	"video-uploader/internal/usecases"
	"video-uploader/pkg/bufferpool"
	apperrors "video-uploader/pkg/errors"
	"video-uploader/pkg/errors/i18n"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

// Core provides what both processes share: config, logging, the record
// store, staging, the blob store and the job queue.
func Core(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			newVideoRepository,
			newStaging,
			newBlobStore,
			newJobQueue,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(prepare),
	)
}

// HTTP serves the upload API and runs the staging sweep.
func HTTP() fx.Option {
	return fx.Options(
		fx.Provide(
			newBufferPool,
			usecases.NewUploadService,
			usecases.NewCleanupService,
			handlers.NewUploadHandler,
			handlers.NewVideoHandler,
			handlers.NewCleanupHandler,
			newFiberApp,
		),
		fx.Invoke(scheduleCleanup, serveHTTP),
	)
}

// Worker consumes transcode jobs.
func Worker() fx.Option {
	return fx.Options(
		fx.Provide(
			newTranscodeService,
			newWorkerPool,
		),
		fx.Invoke(runWorkers),
	)
}

func newLogger(cfg *config.Config, lc fx.Lifecycle) *zap.Logger {
	log := logger.New(cfg.Log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
	return log
}

func prepare(cfg *config.Config) error {
	if err := i18n.Load(cfg.Locale); err != nil {
		return fmt.Errorf("load locale %s: %w", cfg.Locale, err)
	}
	return cfg.EnsureDirs()
}

// newVideoRepository opens the configured record store. The memory store
// only makes sense with the embedded worker and the memory queue.
func newVideoRepository(cfg *config.Config, lc fx.Lifecycle, log *zap.Logger) (repositories.VideoRepository, error) {
	var database *gorm.DB
	var err error
	switch cfg.Database.Driver {
	case "memory":
		log.Warn("using in-memory record store, videos are lost on restart")
		return infra_repo.NewInMemoryVideoRepository(), nil
	case "sqlite":
		database, err = db.NewSqliteDB(cfg.Database.SqlitePath)
	case "postgres", "":
		database, err = db.NewPostgresDB(cfg.Database)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.Database.Driver == "sqlite" || !cfg.Database.AutoMigrate {
				return nil
			}
			log.Info("applying migrations")
			return db.Migrate(ctx, database)
		},
		OnStop: func(context.Context) error {
			sqlDB, err := database.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return infra_repo.NewVideoRepository(database), nil
}

func newStaging(cfg *config.Config, log *zap.Logger) repositories.StagingRepository {
	return infra_repo.NewStagingRepository(cfg.Upload.StagingDir, log)
}

func newBlobStore(cfg *config.Config) (repositories.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return storage.NewS3Storage(ctx, storage.S3Options{
			Bucket:        cfg.Storage.Bucket,
			Region:        cfg.Storage.Region,
			Endpoint:      cfg.Storage.Endpoint,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		})
	case "local", "":
		return storage.NewLocalStorage(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newJobQueue(cfg *config.Config, lc fx.Lifecycle, log *zap.Logger) (repositories.JobQueue, error) {
	switch cfg.Queue.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
			OnStop: func(context.Context) error {
				return rdb.Close()
			},
		})
		return queue.NewRedisQueue(rdb, cfg.Redis.QueueKey, log), nil
	case "memory", "":
		q := queue.NewChannelQueue(cfg.Queue.Capacity)
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				q.Close()
				return nil
			},
		})
		return q, nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.Queue.Backend)
	}
}

func newBufferPool(cfg *config.Config) *bufferpool.Pool {
	return bufferpool.New(cfg.Upload.BufferSize)
}

func newFiberApp(
	cfg *config.Config,
	log *zap.Logger,
	uploadHandler *handlers.UploadHandler,
	videoHandler *handlers.VideoHandler,
	cleanupHandler *handlers.CleanupHandler,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:         cfg.Server.BodyLimit,
		StreamRequestBody: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return apperrors.HandleError(c, log, err)
		},
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	if cfg.Storage.Backend == "local" || cfg.Storage.Backend == "" {
		routers.SetupMediaRoutes(app, cfg.Storage.LocalDir)
	}

	routers.SetupSystemRoutes(app)
	routers.SetupVideoRoutes(app, uploadHandler, videoHandler)
	routers.SetupCleanupRoutes(app, cleanupHandler)
	return app
}

func serveHTTP(lc fx.Lifecycle, cfg *config.Config, app *fiber.App, log *zap.Logger) {
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("server starting", zap.String("addr", addr))
				if err := app.Listen(addr); err != nil {
					log.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return app.ShutdownWithContext(ctx)
		},
	})
}

func scheduleCleanup(lc fx.Lifecycle, cfg *config.Config, cleanup usecases.CleanupService, log *zap.Logger) error {
	if cfg.Upload.StagingMaxAge <= 0 {
		log.Info("staging sweep disabled")
		return nil
	}
	c := cron.New(cron.WithSeconds())
	if err := cleanup.Schedule(c, cfg.Upload.CleanupSchedule, cfg.Upload.StagingMaxAge); err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-c.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}

func newTranscodeService(
	cfg *config.Config,
	videos repositories.VideoRepository,
	staging repositories.StagingRepository,
	jobs repositories.JobQueue,
	store repositories.BlobStore,
	log *zap.Logger,
) usecases.TranscodeService {
	runner := processor.NewExecRunner(cfg.Tools.Timeout, log)
	return usecases.NewTranscodeService(usecases.TranscodeDeps{
		Videos:    videos,
		Staging:   staging,
		Queue:     jobs,
		Store:     store,
		Prober:    processor.NewProber(runner, cfg.Tools.FFprobePath, log),
		Mosaic:    processor.NewMosaicGenerator(runner, cfg.Tools.FFmpegPath, log),
		Encoder:   processor.NewEncoder(runner, cfg.Tools.FFmpegPath, log),
		Publisher: processor.NewPublisher(store, cfg.Storage.Concurrency, log),
		Screener: usecases.PolicyScreener{
			MaxDurationSeconds: cfg.Policy.MaxDuration.Seconds(),
			RequireVideoStream: cfg.Policy.RequireVideoStream,
		},
	}, cfg.Transcode, cfg.Upload.WorkDir, log)
}

func newWorkerPool(cfg *config.Config, jobs repositories.JobQueue, svc usecases.TranscodeService, log *zap.Logger) *queue.WorkerPool {
	return queue.NewWorkerPool(cfg.Worker.Concurrency, jobs, queue.JobHandlerFunc(svc.Handle), log)
}

func runWorkers(lc fx.Lifecycle, pool *queue.WorkerPool, svc usecases.TranscodeService, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			pool.Start(ctx)
			go func() {
				if _, err := svc.RecoverQueued(ctx); err != nil {
					log.Error("recover queued videos failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			return pool.Shutdown(stopCtx)
		},
	})
}

// Run starts the fx application and blocks until a shutdown signal.
func Run(opts ...fx.Option) {
	opts = append(opts, fx.StopTimeout(shutdownTimeout))
	fx.New(opts...).Run()
}
