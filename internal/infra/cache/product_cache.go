package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/domain/catalog"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

const (
	productKeyPrefix = "product:"
	listVersionKey   = "products:version"
	listKeyPrefix    = "products:list:"
)

// CachedProductRepository reads through Redis and falls back to the wrapped
// repository on any cache failure. Listings are keyed by a version counter
// so one INCR retires every cached page.
type CachedProductRepository struct {
	repo  catalog.ProductRepository
	redis *redis.Client
	ttl   time.Duration
	log   *slog.Logger
}

func NewCachedProductRepository(
	repo catalog.ProductRepository,
	rdb *redis.Client,
	ttl time.Duration,
	log *slog.Logger,
) *CachedProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProductRepository{repo: repo, redis: rdb, ttl: ttl, log: log}
}

type cachedList struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

func productKey(id uuid.UUID) string {
	return productKeyPrefix + id.String()
}

func listKey(version int64, f catalog.ProductFilter) string {
	raw, _ := json.Marshal(f)
	sum := sha1.Sum(raw)
	return fmt.Sprintf("%s%d:%s", listKeyPrefix, version, hex.EncodeToString(sum[:]))
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	key := productKey(id)

	var p models.Product
	if c.get(ctx, key, &p) {
		return &p, nil
	}

	product, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.set(ctx, key, product)
	return product, nil
}

func (c *CachedProductRepository) List(ctx context.Context, f catalog.ProductFilter) ([]models.Product, int64, error) {
	version, err := c.redis.Get(ctx, listVersionKey).Int64()
	if err != nil && err != redis.Nil {
		c.log.Warn("redis error, reading products from database", slog.Any("error", err))
		return c.repo.List(ctx, f)
	}

	key := listKey(version, f)

	var cached cachedList
	if c.get(ctx, key, &cached) {
		return cached.Products, cached.Total, nil
	}

	products, total, err := c.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	c.set(ctx, key, cachedList{Products: products, Total: total})
	return products, total, nil
}

func (c *CachedProductRepository) Create(ctx context.Context, p *models.Product) error {
	if err := c.repo.Create(ctx, p); err != nil {
		return err
	}
	c.Invalidate(ctx)
	return nil
}

func (c *CachedProductRepository) Update(ctx context.Context, p *models.Product) error {
	if err := c.repo.Update(ctx, p); err != nil {
		return err
	}
	c.Invalidate(ctx, p.ID)
	return nil
}

// Invalidate drops the given products and retires every cached listing.
func (c *CachedProductRepository) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	if len(ids) > 0 {
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, productKey(id))
		}
		if err := c.redis.Del(ctx, keys...).Err(); err != nil {
			c.log.Warn("failed to drop cached products", slog.Any("error", err))
		}
	}

	if err := c.redis.Incr(ctx, listVersionKey).Err(); err != nil {
		c.log.Warn("failed to bump product list version", slog.Any("error", err))
	}
}

func (c *CachedProductRepository) get(ctx context.Context, key string, dst any) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == redis.Nil:
		return false
	case err != nil:
		c.log.Warn("redis error, continuing with database", slog.String("key", key), slog.Any("error", err))
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warn("corrupt cache entry", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func (c *CachedProductRepository) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("failed to encode cache entry", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("failed to cache entry", slog.String("key", key), slog.Any("error", err))
	}
}

var (
	_ catalog.ProductRepository  = (*CachedProductRepository)(nil)
	_ catalog.ProductInvalidator = (*CachedProductRepository)(nil)
)
