package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voiceshop/internal/metrics"
	"voiceshop/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Catalog source labels
const (
	SourceFakeStore = "fakestore"
	SourcePostgres  = "postgres"
	SourceCache     = "cache"
)

const catalogCacheKey = "catalog:products"

// maxCatalogBodyBytes caps how much of a catalog response is read.
var maxCatalogBodyBytes int64 = 8 << 20

// CatalogSource supplies the product list for a turn. Fetch never fails: any
// upstream problem yields an empty list.
type CatalogSource interface {
	Fetch(ctx context.Context) []model.Product
}

// ProductStore is a persistent product catalog.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// FakeStoreCatalog reads products from a FakeStore-compatible REST endpoint.
type FakeStoreCatalog struct {
	url        string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewFakeStoreCatalog creates a REST catalog with a bounded request timeout
func NewFakeStoreCatalog(url string, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *FakeStoreCatalog {
	return &FakeStoreCatalog{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
		logger:     logger,
	}
}

// Fetch performs one GET of the catalog URL.
func (c *FakeStoreCatalog) Fetch(ctx context.Context) []model.Product {
	products, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("catalog fetch failed", zap.String("url", c.url), zap.Error(err))
		recordFetch(c.metrics, SourceFakeStore, "error")
		return []model.Product{}
	}
	recordFetch(c.metrics, SourceFakeStore, "ok")
	return products
}

func (c *FakeStoreCatalog) fetch(ctx context.Context) ([]model.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > maxCatalogBodyBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", maxCatalogBodyBytes)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var products []model.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// StoreCatalog adapts a ProductStore to CatalogSource.
type StoreCatalog struct {
	store   ProductStore
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewStoreCatalog creates a catalog backed by store
func NewStoreCatalog(store ProductStore, m *metrics.Metrics, logger *zap.Logger) *StoreCatalog {
	return &StoreCatalog{store: store, metrics: m, logger: logger}
}

// Fetch lists every product in the store.
func (c *StoreCatalog) Fetch(ctx context.Context) []model.Product {
	products, err := c.store.ListProducts(ctx)
	if err != nil {
		c.logger.Warn("catalog query failed", zap.Error(err))
		recordFetch(c.metrics, SourcePostgres, "error")
		return []model.Product{}
	}
	recordFetch(c.metrics, SourcePostgres, "ok")
	if products == nil {
		return []model.Product{}
	}
	return products
}

// CachedCatalog is a read-through Redis cache in front of another source.
// Empty results are never stored, so a failed upstream fetch is retried on
// the next call.
type CachedCatalog struct {
	inner   CatalogSource
	client  redis.Cmdable
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewCachedCatalog wraps inner with a cache entry that expires after ttl
func NewCachedCatalog(inner CatalogSource, client redis.Cmdable, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{
		inner:   inner,
		client:  client,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}
}

// Fetch returns the cached catalog or loads and stores it.
func (c *CachedCatalog) Fetch(ctx context.Context) []model.Product {
	if products, ok := c.load(ctx); ok {
		recordFetch(c.metrics, SourceCache, "hit")
		return products
	}
	recordFetch(c.metrics, SourceCache, "miss")

	products := c.inner.Fetch(ctx)
	if len(products) == 0 {
		return products
	}

	payload, err := json.Marshal(products)
	if err != nil {
		c.logger.Warn("failed to encode catalog for cache", zap.Error(err))
		return products
	}
	if err := c.client.Set(ctx, catalogCacheKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to store catalog in cache", zap.Error(err))
	}
	return products
}

func (c *CachedCatalog) load(ctx context.Context) ([]model.Product, bool) {
	raw, err := c.client.Get(ctx, catalogCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("catalog cache unavailable", zap.Error(err))
		}
		return nil, false
	}

	var products []model.Product
	if err := json.Unmarshal(raw, &products); err != nil || len(products) == 0 {
		c.logger.Warn("discarding unreadable catalog cache entry", zap.Error(err))
		return nil, false
	}
	return products, true
}

func recordFetch(m *metrics.Metrics, source, outcome string) {
	if m != nil {
		m.CatalogFetches.WithLabelValues(source, outcome).Inc()
	}
}
