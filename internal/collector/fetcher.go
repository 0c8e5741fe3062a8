package collector

import (
	"context"

	"SignalSG/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	ListAssets(ctx context.Context) ([]model.Asset, error)
	FetchSnapshot(ctx context.Context, assetID string, currencies ...string) (*model.PriceSnapshot, error)
	FetchHistory(ctx context.Context, assetID string, days int) ([]model.PricePoint, error)
	Name() string
}
