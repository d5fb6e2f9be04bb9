package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"reportai/internal/model"
)

// OrderCache handles Redis operations for short-lived upstream order
// snapshots, so the wizard doesn't hammer the order-management API.
type OrderCache interface {
	Get(ctx context.Context, orderID string) (*model.OrderSnapshot, error)
	Set(ctx context.Context, snapshot *model.OrderSnapshot) error
}

type orderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOrderCache creates a new order snapshot cache
func NewOrderCache(client *redis.Client) OrderCache {
	return &orderCache{
		client: client,
		ttl:    5 * time.Minute,
	}
}

func (c *orderCache) key(orderID string) string {
	return fmt.Sprintf("order:%s:snapshot", orderID)
}

func (c *orderCache) Get(ctx context.Context, orderID string) (*model.OrderSnapshot, error) {
	data, err := c.client.Get(ctx, c.key(orderID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot model.OrderSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *orderCache) Set(ctx context.Context, snapshot *model.OrderSnapshot) error {
	snapshot.FetchedAt = time.Now()
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(snapshot.OrderID), data, c.ttl).Err()
}
