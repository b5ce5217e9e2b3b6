// internal/storage/minio.go
//
// Object store backend on top of github.com/minio/minio-go/v7.

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"` // host:port, no scheme
	AccessKeyID     string `yaml:"access_key"`
	SecretAccessKey string `yaml:"secret_key"`
	UseSSL          bool   `yaml:"use_ssl"`
	Region          string `yaml:"region"` // defaults to us-east-1
	Bucket          string `yaml:"bucket"`
}

// MinIOBackend stores each key as an object in one bucket.
type MinIOBackend struct {
	client *minio.Client
	config MinIOConfig

	mu          sync.Mutex
	bucketReady bool
}

func NewMinIOBackend(cfg MinIOConfig) (*MinIOBackend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("minio backend: bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinIOBackend{client: client, config: cfg}, nil
}

// ensureBucket creates the bucket on first successful use.
func (b *MinIOBackend) ensureBucket(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bucketReady {
		return nil
	}

	exists, err := b.client.BucketExists(ctx, b.config.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		err = b.client.MakeBucket(ctx, b.config.Bucket, minio.MakeBucketOptions{Region: b.config.Region})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", b.config.Bucket, err)
		}
	}
	b.bucketReady = true
	return nil
}

func (b *MinIOBackend) Get(ctx context.Context, key string) ([]byte, error) {
	reader, err := b.client.GetObject(ctx, b.config.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, b.mapErr(key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, b.mapErr(key, err)
	}
	return data, nil
}

func (b *MinIOBackend) Put(ctx context.Context, key string, data []byte) error {
	if err := b.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	_, err := b.client.PutObject(ctx, b.config.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put object failed: %w", err)
	}
	return nil
}

func (b *MinIOBackend) mapErr(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return fmt.Errorf("get object failed: %w", err)
}
