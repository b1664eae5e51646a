package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"downtime-panel-bot/internal/models"
)

var ErrPersistence = errors.New("persistence failure")

// Backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"
)

// Persister loads and saves the whole bot state.
type Persister interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap *models.Snapshot) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend     string
	DataFile    string
	DatabaseURL string
	RedisURL    string
	RedisKey    string
	S3Bucket    string
	S3Key       string
	S3Region    string
	// LegacyGuildID receives single-guild data from old state files. Zero
	// means there is no unambiguous target and such data is dropped.
	LegacyGuildID int64
}

// Open connects the configured backend.
func Open(ctx context.Context, opts Options, log *zap.Logger) (Persister, error) {
	codec := Codec{LegacyGuildID: opts.LegacyGuildID, Log: log}
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.DataFile, codec), nil
	case BackendPostgres:
		return NewPostgresStore(ctx, opts.DatabaseURL)
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisURL, opts.RedisKey, codec)
	case BackendS3:
		return NewS3Store(ctx, opts.S3Region, opts.S3Bucket, opts.S3Key, codec)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
