package assetstore

import (
	"context"
	"time"

	"SignalSG/internal/model"
)

// NoopStore is a no-op implementation used when SQLite is not configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) SaveAssets(_ context.Context, _ []model.Asset) error { return nil }
func (n *NoopStore) LoadAssets(_ context.Context) ([]model.Asset, time.Time, error) {
	return nil, time.Time{}, nil
}
func (n *NoopStore) Close() error { return nil }
