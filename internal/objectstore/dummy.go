package objectstore

import (
	"context"
	"fmt"

	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// dummyStorage is a no-op backend: archival is best-effort and optional, so
// disabling it must never fail an ingest path.
type dummyStorage struct{}

var _ interfaces.ObjectStorage = (*dummyStorage)(nil)

func (d *dummyStorage) Put(ctx context.Context, key string, data []byte) error {
	return nil
}

func (d *dummyStorage) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, fmt.Errorf("object storage disabled: %q not archived", key)
}
