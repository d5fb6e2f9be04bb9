package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"reportai/internal/model"
)

// KnowledgeCache handles Redis operations for platform and industry
// reference knowledge. A miss is (nil, nil), never an error: callers
// proceed with reduced context when knowledge is absent.
type KnowledgeCache interface {
	GetPlatform(ctx context.Context, code string) (*model.PlatformKnowledge, error)
	GetPlatforms(ctx context.Context, codes []string) ([]model.PlatformKnowledge, error)
	SetPlatform(ctx context.Context, pk *model.PlatformKnowledge) error
	SetPlatforms(ctx context.Context, pks []model.PlatformKnowledge) error

	GetIndustry(ctx context.Context, code string) (*model.IndustryKnowledge, error)
	SetIndustry(ctx context.Context, ik *model.IndustryKnowledge) error
}

type knowledgeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewKnowledgeCache creates a new knowledge cache
func NewKnowledgeCache(client *redis.Client) KnowledgeCache {
	return &knowledgeCache{
		client: client,
		ttl:    7 * 24 * time.Hour, // Re-published by the sync job well before expiry
	}
}

func (c *knowledgeCache) platformKey(code string) string {
	return fmt.Sprintf("kb:platform:%s", code)
}

func (c *knowledgeCache) industryKey(code string) string {
	return fmt.Sprintf("kb:industry:%s", code)
}

func (c *knowledgeCache) GetPlatform(ctx context.Context, code string) (*model.PlatformKnowledge, error) {
	data, err := c.client.Get(ctx, c.platformKey(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pk model.PlatformKnowledge
	if err := json.Unmarshal([]byte(data), &pk); err != nil {
		return nil, err
	}
	return &pk, nil
}

// GetPlatforms fetches many platforms at once. Absent entries are silently
// dropped; the result order follows the input order of present entries.
func (c *knowledgeCache) GetPlatforms(ctx context.Context, codes []string) ([]model.PlatformKnowledge, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = c.platformKey(code)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	result := make([]model.PlatformKnowledge, 0, len(codes))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue // Missing key
		}
		var pk model.PlatformKnowledge
		if err := json.Unmarshal([]byte(s), &pk); err != nil {
			continue // Corrupt entry, treat as absent
		}
		result = append(result, pk)
	}
	return result, nil
}

func (c *knowledgeCache) SetPlatform(ctx context.Context, pk *model.PlatformKnowledge) error {
	pk.UpdatedAt = time.Now()
	data, err := json.Marshal(pk)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.platformKey(pk.Code), data, c.ttl).Err()
}

func (c *knowledgeCache) SetPlatforms(ctx context.Context, pks []model.PlatformKnowledge) error {
	for i := range pks {
		if err := c.SetPlatform(ctx, &pks[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *knowledgeCache) GetIndustry(ctx context.Context, code string) (*model.IndustryKnowledge, error) {
	data, err := c.client.Get(ctx, c.industryKey(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ik model.IndustryKnowledge
	if err := json.Unmarshal([]byte(data), &ik); err != nil {
		return nil, err
	}
	return &ik, nil
}

func (c *knowledgeCache) SetIndustry(ctx context.Context, ik *model.IndustryKnowledge) error {
	ik.UpdatedAt = time.Now()
	data, err := json.Marshal(ik)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.industryKey(ik.Code), data, c.ttl).Err()
}
