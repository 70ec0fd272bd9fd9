// Package objectstore archives raw ingest payloads (transcripts, chat-export
// batches) behind a backend-selectable interfaces.ObjectStorage.
package objectstore

import (
	"fmt"

	"github.com/dkoraitest/consultant-copilot/internal/config"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// New builds the configured backend: "local", "minio", "cos", or "dummy"
// (the default when unset, so archival is opt-in).
func New(cfg *config.ObjectStorageConfig) (interfaces.ObjectStorage, error) {
	if cfg == nil {
		return &dummyStorage{}, nil
	}
	switch cfg.Backend {
	case "local":
		return newLocalStorage(cfg.LocalPath)
	case "minio":
		return newMinioStorage(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket)
	case "cos":
		return newCOSStorage(cfg.Bucket, cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	case "", "dummy":
		return &dummyStorage{}, nil
	default:
		return nil, fmt.Errorf("unknown object storage backend %q", cfg.Backend)
	}
}
