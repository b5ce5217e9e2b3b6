// Package storage persists record collections as JSON blobs on disk or in
// an S3-compatible object store.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("object not found")
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Backend reads and writes whole blobs by key.
type Backend interface {
	// Get returns ErrNotFound when key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Kind selects a Backend implementation.
type Kind string

const (
	KindFile  Kind = "file"
	KindMinIO Kind = "minio"
)

// Config for New.
type Config struct {
	Backend Kind        `yaml:"backend"`
	Dir     string      `yaml:"dir"`
	MinIO   MinIOConfig `yaml:"minio"`
}

// New creates the backend named by cfg.Backend.
func New(cfg Config) (Backend, error) {
	switch cfg.Backend {
	case "", KindFile:
		return NewFileBackend(cfg.Dir)
	case KindMinIO:
		return NewMinIOBackend(cfg.MinIO)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
