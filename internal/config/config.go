package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

type Config struct {
	App
	Upload
	PostgreSQL
	Redis
	Storage
	S3
	HTTP
}

type App struct {
	QueueDriver       string
	StorageDriver     string
	WorkerConcurrency int
}

type Upload struct {
	MaxBatchFiles     int
	MaxBatchBytes     int64
	MaxFileBytes      int64
	AllowedExtensions []string
}

type PostgreSQL struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
}

type Redis struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type Storage struct {
	InputsDirectory  string
	OutputsDirectory string
}

type S3 struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type HTTP struct {
	Host         string
	Port         string
	IdleTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func Load(cmd *cli.Command) *Config {
	return &Config{
		App: App{
			QueueDriver:       cmd.String("queue-driver"),
			StorageDriver:     cmd.String("storage-driver"),
			WorkerConcurrency: cmd.Int("worker-concurrency"),
		},
		Upload: Upload{
			MaxBatchFiles:     cmd.Int("max-batch-files"),
			MaxBatchBytes:     cmd.Int64("max-batch-bytes"),
			MaxFileBytes:      cmd.Int64("max-file-bytes"),
			AllowedExtensions: cmd.StringSlice("allowed-extensions"),
		},
		PostgreSQL: PostgreSQL{
			Host:     cmd.String("pg-host"),
			Port:     cmd.String("pg-port"),
			Username: cmd.String("pg-username"),
			Password: cmd.String("pg-password"),
			DBName:   cmd.String("pg-dbname"),
		},
		Redis: Redis{
			Host:     cmd.String("redis-host"),
			Port:     cmd.String("redis-port"),
			Password: cmd.String("redis-password"),
			DB:       cmd.Int("redis-db"),
		},
		Storage: Storage{
			InputsDirectory:  cmd.String("inputs-dir"),
			OutputsDirectory: cmd.String("outputs-dir"),
		},
		S3: S3{
			Endpoint:  cmd.String("s3-endpoint"),
			AccessKey: cmd.String("s3-access-key"),
			SecretKey: cmd.String("s3-secret-key"),
			Bucket:    cmd.String("s3-bucket"),
			UseSSL:    cmd.Bool("s3-use-ssl"),
		},
		HTTP: HTTP{
			Host:         cmd.String("http-host"),
			Port:         cmd.String("http-port"),
			IdleTimeout:  cmd.Duration("http-idle-timeout"),
			ReadTimeout:  cmd.Duration("http-read-timeout"),
			WriteTimeout: cmd.Duration("http-write-timeout"),
		},
	}
}
