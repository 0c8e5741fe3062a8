// Package assetstore persists the provider's coin list between restarts so
// the resolver can answer before the first refresh completes.
package assetstore

import (
	"context"
	"time"

	"SignalSG/internal/model"
)

// Store saves and loads the most recent coin list.
type Store interface {
	SaveAssets(ctx context.Context, assets []model.Asset) error
	// LoadAssets returns the stored list in provider order and when it was
	// saved. An empty store returns a nil slice and a zero time.
	LoadAssets(ctx context.Context) ([]model.Asset, time.Time, error)
	Close() error
}
