package resolver

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"SignalSG/internal/assetstore"
	"SignalSG/internal/collector"
	"SignalSG/internal/model"
)

// Resolver turns a ticker or coin name into a provider asset id.
// A miss returns an error matching ErrNotFound; any other error means the
// directory itself could not be obtained.
type Resolver interface {
	Resolve(ctx context.Context, query string) (string, error)
}

// AssetLister is the part of collector.Fetcher the resolvers need.
type AssetLister interface {
	ListAssets(ctx context.Context) ([]model.Asset, error)
}

var _ AssetLister = (collector.Fetcher)(nil)

func lookup(d *Directory, query string) (string, error) {
	id, key, err := d.Lookup(query)
	if err != nil {
		return "", err
	}
	if alts := d.Collisions(key); len(alts) > 0 {
		log.Warn().Str("query", query).Str("key", key).Str("asset_id", id).
			Strs("candidates", alts).Msg("ambiguous ticker, using last listed asset")
	}
	return id, nil
}

// StaticResolver answers from a fixed directory.
type StaticResolver struct {
	Directory *Directory
}

func NewStaticResolver(assets []model.Asset) *StaticResolver {
	return &StaticResolver{Directory: NewDirectory(assets)}
}

func (s *StaticResolver) Resolve(_ context.Context, query string) (string, error) {
	return lookup(s.Directory, query)
}

// LiveResolver downloads and indexes the full coin list on every call.
type LiveResolver struct {
	Lister AssetLister
}

func NewLiveResolver(lister AssetLister) *LiveResolver {
	return &LiveResolver{Lister: lister}
}

func (l *LiveResolver) Resolve(ctx context.Context, query string) (string, error) {
	assets, err := l.Lister.ListAssets(ctx)
	if err != nil {
		return "", fmt.Errorf("load directory: %w", err)
	}
	d := NewDirectory(assets)
	log.Debug().Int("keys", d.Len()).Msg("directory rebuilt")
	return lookup(d, query)
}

// CachedResolver serves lookups from the last directory built by Refresh.
// Readers always see a complete directory.
type CachedResolver struct {
	lister AssetLister
	store  assetstore.Store

	dir         atomic.Pointer[Directory]
	refreshedAt atomic.Int64
	refreshMu   sync.Mutex
}

// NewCachedResolver creates a resolver with an empty directory. A nil store
// disables persistence.
func NewCachedResolver(lister AssetLister, store assetstore.Store) *CachedResolver {
	if store == nil {
		store = assetstore.NewNoopStore()
	}
	return &CachedResolver{lister: lister, store: store}
}

// Warm loads the directory saved by a previous run, if any.
func (c *CachedResolver) Warm(ctx context.Context) error {
	assets, at, err := c.store.LoadAssets(ctx)
	if err != nil {
		return fmt.Errorf("load stored directory: %w", err)
	}
	if len(assets) == 0 {
		return nil
	}
	c.install(NewDirectory(assets), at)
	log.Info().Int("assets", len(assets)).Time("saved_at", at).Msg("directory warmed from store")
	return nil
}

// Refresh rebuilds the directory from the provider. On failure the previous
// directory stays in service.
func (c *CachedResolver) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.refreshLocked(ctx)
}

// ensureLoaded refreshes only if no directory is in service once the
// refresh lock is held, so concurrent cold readers share a single download.
func (c *CachedResolver) ensureLoaded(ctx context.Context) (*Directory, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	if d := c.dir.Load(); d != nil {
		return d, nil
	}
	if err := c.refreshLocked(ctx); err != nil {
		return nil, err
	}
	return c.dir.Load(), nil
}

func (c *CachedResolver) refreshLocked(ctx context.Context) error {
	assets, err := c.lister.ListAssets(ctx)
	if err != nil {
		return fmt.Errorf("refresh directory: %w", err)
	}
	d := NewDirectory(assets)
	c.install(d, time.Now())
	log.Info().Int("assets", len(assets)).Int("keys", d.Len()).
		Int("ambiguous_keys", d.AmbiguousKeys()).Msg("directory refreshed")

	if err := c.store.SaveAssets(ctx, assets); err != nil {
		log.Warn().Err(err).Msg("persist directory failed")
	}
	return nil
}

func (c *CachedResolver) install(d *Directory, at time.Time) {
	c.dir.Store(d)
	c.refreshedAt.Store(at.Unix())
}

// RefreshedAt reports when the directory in service was built.
func (c *CachedResolver) RefreshedAt() time.Time {
	if c.dir.Load() == nil {
		return time.Time{}
	}
	return time.Unix(c.refreshedAt.Load(), 0)
}

func (c *CachedResolver) Resolve(ctx context.Context, query string) (string, error) {
	d := c.dir.Load()
	if d == nil {
		var err error
		if d, err = c.ensureLoaded(ctx); err != nil {
			return "", err
		}
	}
	return lookup(d, query)
}
