package snapshot

import (
	"context"
	"fmt"

	"icut-go/internal/config"
)

// NewStoreFromConfig creates a Store based on the snapshot config type.
func NewStoreFromConfig(ctx context.Context, cfg config.SnapshotConfig) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(cfg.Name), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem snapshot store requires fs_root to be set")
		}
		return NewFileSystemStore(cfg.Name, cfg.FSRoot)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown snapshot store type: %s", cfg.Type)
	}
}

// NewStoresFromConfig creates every configured store, in config order.
func NewStoresFromConfig(ctx context.Context, cfgs []config.SnapshotConfig) ([]Store, error) {
	stores := make([]Store, 0, len(cfgs))
	for _, c := range cfgs {
		s, err := NewStoreFromConfig(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("snapshot store %q: %w", c.Name, err)
		}
		stores = append(stores, s)
	}
	return stores, nil
}
