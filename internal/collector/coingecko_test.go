package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *CoinGeckoFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCoinGeckoFetcher(srv.URL, "demo-key", "", 2*time.Second, nil)
}

func TestListAssets(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/list", r.URL.Path)
		assert.Equal(t, "demo-key", r.Header.Get("x-cg-demo-api-key"))
		_, _ = w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin"},
			{"id":"arbitrum","symbol":"arb","name":"Arbitrum"}
		]`))
	})

	assets, err := f.ListAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "bitcoin", assets[0].ID)
	assert.Equal(t, "arb", assets[1].Symbol)
}

func TestListAssets_StatusError(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := f.ListAssets(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDirectoryUnavailable))
}

func TestFetchSnapshot(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "bitcoin", q.Get("ids"))
		assert.Equal(t, "usd,sgd", q.Get("vs_currencies"))
		assert.Equal(t, "true", q.Get("include_24hr_change"))
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":65000.1234,"sgd":87500.5678,"usd_24h_change":2.15,"last_updated_at":1700000000}}`))
	})

	snap, err := f.FetchSnapshot(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "usd", snap.PrimaryCurrency)
	assert.Equal(t, "sgd", snap.SecondaryCurrency)
	assert.InDelta(t, 65000.1234, snap.Primary, 1e-9)
	assert.InDelta(t, 87500.5678, snap.Secondary, 1e-9)
	assert.InDelta(t, 2.15, snap.Change24h, 1e-9)
	assert.Equal(t, int64(1700000000), snap.UpdatedAt.Unix())
}

func TestFetchSnapshot_PartialBodyDefaultsToZero(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tiny-coin":{"usd":0.5,"usd_24h_change":null}}`))
	})

	snap, err := f.FetchSnapshot(context.Background(), "tiny-coin")
	require.NoError(t, err)
	assert.Equal(t, 0.5, snap.Primary)
	assert.Zero(t, snap.Secondary)
	assert.Zero(t, snap.Change24h)
	assert.True(t, snap.UpdatedAt.IsZero())
}

func TestFetchSnapshot_AssetOmitted(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := f.FetchSnapshot(context.Background(), "ghost")
	require.Error(t, err)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "ghost", fe.AssetID)
	assert.True(t, errors.Is(err, ErrAssetMissing))
}

func TestFetchSnapshot_ServerError(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := f.FetchSnapshot(context.Background(), "bitcoin")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.False(t, errors.Is(err, ErrAssetMissing))
}

func TestFetchHistory(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		assert.Equal(t, "daily", r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(`{"prices":[[1700000000000,60000],[1700086400000,62000.5],[1700172800000]]}`))
	})

	points, err := f.FetchHistory(context.Background(), "bitcoin", 7)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 62000.5, points[1].Price)
	assert.Equal(t, int64(1700086400), points[1].Time.Unix())
}

func TestNoAPIKeyHeaderWhenUnset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["X-Cg-Demo-Api-Key"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	f := NewCoinGeckoFetcher(srv.URL, "", "", 0, nil)
	_, err := f.ListAssets(context.Background())
	require.NoError(t, err)
}
