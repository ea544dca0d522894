package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Queue     QueueConfig
	Storage   StorageConfig
	Tools     ToolsConfig
	Worker    WorkerConfig
	Log       LogConfig
	Policy    PolicyConfig
	Locale    string
	Transcode TranscodeConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	BodyLimit      int
	EmbeddedWorker bool
}

type UploadConfig struct {
	StagingDir      string
	WorkDir         string
	BufferSize      int
	StagingMaxAge   time.Duration
	CleanupSchedule string
}

type DatabaseConfig struct {
	Driver      string // postgres | sqlite | memory
	SqlitePath  string
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	QueueKey string
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type QueueConfig struct {
	Backend  string // memory | redis
	Capacity int
}

type StorageConfig struct {
	Backend       string // s3 | local
	Bucket        string
	Region        string
	Endpoint      string
	LocalDir      string
	PublicBaseURL string
	Concurrency   int
}

// ToolsConfig locates the external media executables. It is passed to the
// processor constructors; nothing reads tool paths from globals.
type ToolsConfig struct {
	FFmpegPath  string
	FFprobePath string
	Timeout     time.Duration
}

type WorkerConfig struct {
	Concurrency int
}

// PolicyConfig drives the content screener. Zero values disable a rule.
type PolicyConfig struct {
	MaxDuration        time.Duration
	RequireVideoStream bool
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "3000"),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			BodyLimit:      int(getEnvAsInt64("SERVER_BODY_LIMIT", 64*1024*1024)),
			EmbeddedWorker: getEnvAsBool("SERVER_EMBEDDED_WORKER", true),
		},
		Upload: UploadConfig{
			StagingDir:      getEnv("UPLOAD_DIR", "uploads"),
			WorkDir:         getEnv("UPLOAD_WORK_DIR", os.TempDir()),
			BufferSize:      int(getEnvAsInt64("UPLOAD_BUFFER_SIZE", 256*1024)),
			StagingMaxAge:   getEnvAsDuration("STAGING_MAX_AGE", 0),
			CleanupSchedule: getEnv("STAGING_CLEANUP_SCHEDULE", "0 */15 * * * *"),
		},
		Database: DatabaseConfig{
			Driver:      getEnv("DB_DRIVER", "postgres"),
			SqlitePath:  getEnv("DB_SQLITE_PATH", "video_uploader.db"),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			DBName:      getEnv("DB_NAME", "video_uploader"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			AutoMigrate: getEnvAsBool("RUN_AUTO_MIGRATION", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       int(getEnvAsInt64("REDIS_DB", 0)),
			QueueKey: getEnv("REDIS_QUEUE_KEY", "transcode_queue"),
		},
		Queue: QueueConfig{
			Backend:  getEnv("QUEUE_BACKEND", "memory"),
			Capacity: int(getEnvAsInt64("QUEUE_CAPACITY", 1024)),
		},
		Storage: StorageConfig{
			Backend:       getEnv("STORAGE_BACKEND", "local"),
			Bucket:        getEnv("S3_BUCKET", ""),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Endpoint:      getEnv("S3_ENDPOINT", ""),
			LocalDir:      getEnv("STORAGE_LOCAL_DIR", "blobs"),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", ""),
			Concurrency:   int(getEnvAsInt64("STORAGE_PUBLISH_CONCURRENCY", 4)),
		},
		Tools: ToolsConfig{
			FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
			FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),
			Timeout:     getEnvAsDuration("TOOL_TIMEOUT", 2*time.Hour),
		},
		Worker: WorkerConfig{
			Concurrency: int(getEnvAsInt64("WORKER_CONCURRENCY", 1)),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  int(getEnvAsInt64("LOG_MAX_SIZE_MB", 100)),
			MaxBackups: int(getEnvAsInt64("LOG_MAX_BACKUPS", 5)),
			MaxAgeDays: int(getEnvAsInt64("LOG_MAX_AGE_DAYS", 14)),
		},
		Policy: PolicyConfig{
			MaxDuration:        getEnvAsDuration("POLICY_MAX_DURATION", 0),
			RequireVideoStream: getEnvAsBool("POLICY_REQUIRE_VIDEO_STREAM", true),
		},
		Locale: getEnv("I18N_LOCALE", "en"),
	}

	transcode, err := LoadTranscodeConfig(getEnv("TRANSCODE_CONFIG", ""))
	if err != nil {
		return nil, err
	}
	config.Transcode = *transcode

	return config, nil
}

// EnsureDirs creates the staging and working directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Upload.StagingDir, c.Upload.WorkDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
