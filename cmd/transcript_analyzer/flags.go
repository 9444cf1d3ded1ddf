package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/stanford-ddl/transcript-analyzer/internal/app"
	"github.com/stanford-ddl/transcript-analyzer/internal/config"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func cmd() *cli.Command {
	return &cli.Command{
		Name:    "transcript_analyzer",
		Usage:   "batch file ingestion and transcript analysis service",
		Version: version,
		Flags:   flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log, ok := ctx.Value(loggerKey{}).(*slog.Logger)
			if !ok {
				return errors.New("failed to get logger from context")
			}

			cfg := config.Load(cmd)

			return app.New(log, cfg).Run(ctx)
		},
	}
}

func flags() []cli.Flag {
	var config string

	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Validator:   validateConfig,
			Usage:       "Load configuration from `FILE`",
			Destination: &config,
		},
		&cli.StringFlag{
			Name:    "queue-driver",
			Usage:   "Set task queue driver (redis or memory)",
			Value:   "redis",
			Sources: cli.NewValueSourceChain(yaml.YAML("app.queue_driver", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "storage-driver",
			Usage:   "Set storage driver (local or s3)",
			Value:   "local",
			Sources: cli.NewValueSourceChain(yaml.YAML("app.storage_driver", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.IntFlag{
			Name:    "worker-concurrency",
			Usage:   "Set number of processing workers",
			Value:   4,
			Sources: cli.NewValueSourceChain(yaml.YAML("app.worker_concurrency", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.IntFlag{
			Name:    "max-batch-files",
			Usage:   "Set maximum number of files per upload batch",
			Value:   100,
			Sources: cli.NewValueSourceChain(yaml.YAML("upload.max_batch_files", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.Int64Flag{
			Name:    "max-batch-bytes",
			Usage:   "Set maximum total size of an upload batch in bytes",
			Value:   500 << 20,
			Sources: cli.NewValueSourceChain(yaml.YAML("upload.max_batch_bytes", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.Int64Flag{
			Name:    "max-file-bytes",
			Usage:   "Set maximum size of a single file in bytes",
			Value:   50 << 20,
			Sources: cli.NewValueSourceChain(yaml.YAML("upload.max_file_bytes", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringSliceFlag{
			Name:    "allowed-extensions",
			Usage:   "Set allowed upload file extensions",
			Value:   []string{".xlsx", ".csv"},
			Sources: cli.NewValueSourceChain(yaml.YAML("upload.allowed_extensions", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:     "pg-host",
			Usage:    "Set PostgreSQL host",
			Value:    "localhost",
			Sources:  cli.NewValueSourceChain(yaml.YAML("postgresql.host", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pg-port",
			Usage:    "Set PostgreSQL port",
			Value:    "5432",
			Sources:  cli.NewValueSourceChain(yaml.YAML("postgresql.port", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pg-username",
			Usage:    "Set PostgreSQL username",
			Sources:  cli.NewValueSourceChain(yaml.YAML("postgresql.username", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pg-password",
			Usage:    "Set PostgreSQL password",
			Sources:  cli.NewValueSourceChain(yaml.YAML("postgresql.password", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pg-dbname",
			Usage:    "Set PostgreSQL database name",
			Value:    "transcript_analyzer",
			Sources:  cli.NewValueSourceChain(yaml.YAML("postgresql.dbname", altsrc.NewStringPtrSourcer(&config))),
			Required: true,
		},
		&cli.StringFlag{
			Name:    "redis-host",
			Usage:   "Set Redis host",
			Value:   "localhost",
			Sources: cli.NewValueSourceChain(yaml.YAML("redis.host", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "redis-port",
			Usage:   "Set Redis port",
			Value:   "6379",
			Sources: cli.NewValueSourceChain(yaml.YAML("redis.port", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Set Redis password",
			Sources: cli.NewValueSourceChain(yaml.YAML("redis.password", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.IntFlag{
			Name:    "redis-db",
			Usage:   "Set Redis database number",
			Sources: cli.NewValueSourceChain(yaml.YAML("redis.db", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "inputs-dir",
			Usage:   "Set directory for uploaded files (local storage)",
			Value:   "inputs",
			Sources: cli.NewValueSourceChain(yaml.YAML("storage.inputs_dir", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "outputs-dir",
			Usage:   "Set directory for processed artifacts (local storage)",
			Value:   "outputs",
			Sources: cli.NewValueSourceChain(yaml.YAML("storage.outputs_dir", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "s3-endpoint",
			Usage:   "Set S3 endpoint (s3 storage)",
			Sources: cli.NewValueSourceChain(yaml.YAML("s3.endpoint", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "s3-access-key",
			Usage:   "Set S3 access key",
			Sources: cli.NewValueSourceChain(yaml.YAML("s3.access_key", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "s3-secret-key",
			Usage:   "Set S3 secret key",
			Sources: cli.NewValueSourceChain(yaml.YAML("s3.secret_key", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "s3-bucket",
			Usage:   "Set S3 bucket name",
			Value:   "transcript-analyzer",
			Sources: cli.NewValueSourceChain(yaml.YAML("s3.bucket", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.BoolFlag{
			Name:    "s3-use-ssl",
			Usage:   "Use TLS for S3 connections",
			Sources: cli.NewValueSourceChain(yaml.YAML("s3.use_ssl", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "http-host",
			Usage:   "Set HTTP server host",
			Value:   "localhost",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.host", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.StringFlag{
			Name:    "http-port",
			Usage:   "Set HTTP server port",
			Value:   "8080",
			Sources: cli.NewValueSourceChain(yaml.YAML("http.port", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "http-idle-timeout",
			Usage:   "Set HTTP server idle timeout",
			Value:   1 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.idle_timeout", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "http-read-timeout",
			Usage:   "Set HTTP server read timeout",
			Value:   15 * time.Minute,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.read_timeout", altsrc.NewStringPtrSourcer(&config))),
		},
		&cli.DurationFlag{
			Name:    "http-write-timeout",
			Usage:   "Set HTTP server write timeout",
			Value:   15 * time.Second,
			Sources: cli.NewValueSourceChain(yaml.YAML("http.write_timeout", altsrc.NewStringPtrSourcer(&config))),
		},
	}
}

func validateConfig(config string) error {
	info, err := os.Stat(config)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q does not exist", config)
		}
		return fmt.Errorf("failed to stat %q: %w", config, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", config)
	}

	ext := filepath.Ext(info.Name())
	if ext != ".yml" && ext != ".yaml" {
		return fmt.Errorf("invalid extension %q", config)
	}

	return nil
}
