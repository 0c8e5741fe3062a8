package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"SignalSG/internal/model"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	apiKeyHeader   = "x-cg-demo-api-key"
)

// DefaultCurrencies are the primary and secondary quote currencies.
var DefaultCurrencies = []string{"usd", "sgd"}

// CoinGeckoFetcher implements Fetcher using the public CoinGecko v3 API.
type CoinGeckoFetcher struct {
	BaseURL    string
	APIKey     string
	Currencies []string
	Client     *http.Client
}

// NewCoinGeckoFetcher creates a fetcher with optional proxy support.
// A zero timeout falls back to 10 seconds.
func NewCoinGeckoFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration, currencies []string) *CoinGeckoFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if len(currencies) == 0 {
		currencies = DefaultCurrencies
	}
	return &CoinGeckoFetcher{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Currencies: currencies,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

func (f *CoinGeckoFetcher) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := f.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if f.APIKey != "" {
		req.Header.Set(apiKeyHeader, f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coingecko read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// ListAssets downloads the full coin list. Provider order is preserved.
func (f *CoinGeckoFetcher) ListAssets(ctx context.Context) ([]model.Asset, error) {
	body, err := f.get(ctx, "/coins/list", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	var assets []model.Asset
	if err := json.Unmarshal(body, &assets); err != nil {
		return nil, fmt.Errorf("%w: decode coin list: %w", ErrDirectoryUnavailable, err)
	}
	log.Debug().Int("assets", len(assets)).Msg("coin list downloaded")
	return assets, nil
}

// FetchSnapshot returns the price of assetID in each currency plus the 24h
// change in the first one. With no currencies given, f.Currencies is used.
func (f *CoinGeckoFetcher) FetchSnapshot(ctx context.Context, assetID string, currencies ...string) (*model.PriceSnapshot, error) {
	if len(currencies) == 0 {
		currencies = f.Currencies
	}
	params := url.Values{}
	params.Set("ids", assetID)
	params.Set("vs_currencies", strings.Join(currencies, ","))
	params.Set("include_24hr_change", "true")
	params.Set("include_last_updated_at", "true")

	body, err := f.get(ctx, "/simple/price", params)
	if err != nil {
		return nil, &FetchError{AssetID: assetID, Err: err}
	}

	// Values may be JSON null for thinly traded coins.
	var data map[string]map[string]*float64
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &FetchError{AssetID: assetID, Err: fmt.Errorf("decode price: %w", err)}
	}
	fields, ok := data[assetID]
	if !ok {
		return nil, &FetchError{AssetID: assetID, Err: ErrAssetMissing}
	}

	snap := snapshotFrom(assetID, currencies, fields)
	log.Debug().Str("asset_id", assetID).Float64("price", snap.Primary).Msg("price fetched")
	return snap, nil
}

func snapshotFrom(assetID string, currencies []string, fields map[string]*float64) *model.PriceSnapshot {
	value := func(key string) float64 {
		if v := fields[key]; v != nil {
			return *v
		}
		return 0
	}

	snap := &model.PriceSnapshot{AssetID: assetID}
	if len(currencies) > 0 {
		snap.PrimaryCurrency = currencies[0]
		snap.Primary = value(currencies[0])
		snap.Change24h = value(currencies[0] + "_24h_change")
	}
	if len(currencies) > 1 {
		snap.SecondaryCurrency = currencies[1]
		snap.Secondary = value(currencies[1])
	}
	if ts := value("last_updated_at"); ts > 0 {
		snap.UpdatedAt = time.Unix(int64(ts), 0)
	}
	return snap
}

// marketChart is the response structure from the market_chart endpoint.
type marketChart struct {
	Prices [][]float64 `json:"prices"`
}

// FetchHistory returns the price series of assetID in the primary currency.
func (f *CoinGeckoFetcher) FetchHistory(ctx context.Context, assetID string, days int) ([]model.PricePoint, error) {
	if days <= 0 {
		days = 7
	}
	interval := "hourly"
	if days > 1 {
		interval = "daily"
	}
	params := url.Values{}
	params.Set("vs_currency", f.Currencies[0])
	params.Set("days", strconv.Itoa(days))
	params.Set("interval", interval)

	body, err := f.get(ctx, "/coins/"+url.PathEscape(assetID)+"/market_chart", params)
	if err != nil {
		return nil, &FetchError{AssetID: assetID, Err: err}
	}
	var chart marketChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, &FetchError{AssetID: assetID, Err: fmt.Errorf("decode market chart: %w", err)}
	}

	points := make([]model.PricePoint, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		if len(p) < 2 {
			continue
		}
		points = append(points, model.PricePoint{
			Time:  time.UnixMilli(int64(p[0])),
			Price: p[1],
		})
	}
	return points, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
