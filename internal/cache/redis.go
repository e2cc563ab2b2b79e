package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"order-engine/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OrderCache keeps full order projections in redis. Every operation is
// best-effort: failures are logged and never surfaced to the request.
type OrderCache struct {
	client *redis.Client
	log    *zap.Logger
	ttl    time.Duration
}

func NewOrderCache(addr, password string, db int, ttl time.Duration, log *zap.Logger) (*OrderCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))

	return &OrderCache{client: rdb, log: log, ttl: ttl}, nil
}

func (c *OrderCache) Close() error {
	return c.client.Close()
}

func orderKey(id uint) string { return fmt.Sprintf("order:%d", id) }

func (c *OrderCache) GetOrder(ctx context.Context, id uint) (*models.Order, bool) {
	raw, err := c.client.Get(ctx, orderKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("order cache read failed", zap.Uint("order_id", id), zap.Error(err))
		}
		return nil, false
	}
	var ord models.Order
	if err := json.Unmarshal(raw, &ord); err != nil {
		c.log.Warn("order cache entry corrupted", zap.Uint("order_id", id), zap.Error(err))
		return nil, false
	}
	return &ord, true
}

func (c *OrderCache) SetOrder(ctx context.Context, o *models.Order) {
	raw, err := json.Marshal(o)
	if err != nil {
		c.log.Warn("order cache marshal failed", zap.Uint("order_id", o.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, orderKey(o.ID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("order cache write failed", zap.Uint("order_id", o.ID), zap.Error(err))
	}
}

func (c *OrderCache) Invalidate(ctx context.Context, id uint) {
	if err := c.client.Del(ctx, orderKey(id)).Err(); err != nil {
		c.log.Warn("order cache invalidation failed", zap.Uint("order_id", id), zap.Error(err))
	}
}
