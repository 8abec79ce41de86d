package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Storage stores uploaded files (resumes, company logos) under
// slash-separated keys.
type Storage interface {
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// URL returns a link clients can download the file from.
	URL(ctx context.Context, key string) (string, error)
}

type Config struct {
	Type         string // local, s3
	BasePath     string // local
	BaseURL      string // public URL prefix
	Bucket       string
	Region       string
	AccessKey    string
	SecretKey    string
	Endpoint     string // custom S3-compatible endpoint (MinIO, R2)
	UsePathStyle bool
	SignedURLTTL time.Duration // s3: presign GET links when > 0
}

func NewStorage(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// NewKey builds a unique key such as "resumes/2024/03/<uuid>.pdf".
func NewKey(prefix, filename string) string {
	now := time.Now().UTC()
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%d/%02d/%s%s", prefix, now.Year(), now.Month(), uuid.NewString(), ext)
}

// cleanKey rejects absolute keys and keys escaping the storage root.
func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "./") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}
