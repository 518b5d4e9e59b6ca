package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/automatikblog/metrica-click-sub000/internal/models"

	"github.com/redis/go-redis/v9"
)

const clickCacheTTL = 10 * time.Minute

// ClickCache is a read-through cache for the view/webhook hot path. A nil
// client disables it; every method degrades to a miss.
type ClickCache struct {
	rdb *redis.Client
}

func NewClickCache(rdb *redis.Client) *ClickCache {
	return &ClickCache{rdb: rdb}
}

func (c *ClickCache) Get(ctx context.Context, clickID string) (*models.Click, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	val, err := c.rdb.Get(ctx, "click:"+clickID).Result()
	if err != nil {
		return nil, false
	}
	var click models.Click
	if err := json.Unmarshal([]byte(val), &click); err != nil {
		return nil, false
	}
	return &click, true
}

func (c *ClickCache) Set(ctx context.Context, click *models.Click) {
	if c == nil || c.rdb == nil || click == nil {
		return
	}
	data, err := json.Marshal(click)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, "click:"+click.ClickID, data, clickCacheTTL)
}

// Invalidate drops a cached click after its conversion fields are stamped.
func (c *ClickCache) Invalidate(ctx context.Context, clickID string) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, "click:"+clickID)
}
