package collector

import (
	"context"
	"sync"
	"time"

	"SignalSG/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// An id absent from Prices behaves like the provider omitting it.
type MockFetcher struct {
	Assets     []model.Asset
	Prices     map[string]model.PriceSnapshot
	History    map[string][]model.PricePoint
	ListErr    error
	PriceErr   error
	HistoryErr error

	mu         sync.Mutex
	listCalls  int
	priceCalls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) ListAssets(_ context.Context) ([]model.Asset, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]model.Asset, len(m.Assets))
	copy(out, m.Assets)
	return out, nil
}

func (m *MockFetcher) FetchSnapshot(_ context.Context, assetID string, _ ...string) (*model.PriceSnapshot, error) {
	m.mu.Lock()
	m.priceCalls++
	m.mu.Unlock()
	if m.PriceErr != nil {
		return nil, &FetchError{AssetID: assetID, Err: m.PriceErr}
	}
	snap, ok := m.Prices[assetID]
	if !ok {
		return nil, &FetchError{AssetID: assetID, Err: ErrAssetMissing}
	}
	snap.AssetID = assetID
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now()
	}
	return &snap, nil
}

func (m *MockFetcher) FetchHistory(_ context.Context, assetID string, _ int) ([]model.PricePoint, error) {
	if m.HistoryErr != nil {
		return nil, &FetchError{AssetID: assetID, Err: m.HistoryErr}
	}
	return m.History[assetID], nil
}

// ListCalls reports how many times the coin list was requested.
func (m *MockFetcher) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// PriceCalls reports how many price lookups were made.
func (m *MockFetcher) PriceCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.priceCalls
}
