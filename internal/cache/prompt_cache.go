package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"reportai/internal/model"
)

// PromptCache handles Redis operations for versioned system prompt
// documents. Exactly one version is current per slug.
type PromptCache interface {
	GetCurrent(ctx context.Context, slug string) (*model.SystemPromptDocument, error)

	// Publish stores content as the new current version for slug,
	// bumping the version monotonically. Returns the stored document.
	Publish(ctx context.Context, slug, name, content string) (*model.SystemPromptDocument, error)
}

type promptCache struct {
	client *redis.Client
}

// NewPromptCache creates a new prompt cache
func NewPromptCache(client *redis.Client) PromptCache {
	return &promptCache{client: client}
}

func (c *promptCache) key(slug string) string {
	return fmt.Sprintf("prompt:%s:current", slug)
}

func (c *promptCache) GetCurrent(ctx context.Context, slug string) (*model.SystemPromptDocument, error) {
	data, err := c.client.Get(ctx, c.key(slug)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc model.SystemPromptDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *promptCache) Publish(ctx context.Context, slug, name, content string) (*model.SystemPromptDocument, error) {
	current, err := c.GetCurrent(ctx, slug)
	if err != nil {
		return nil, err
	}

	version := 1
	if current != nil {
		version = current.Version + 1
		if name == "" {
			name = current.Name
		}
	}

	doc := &model.SystemPromptDocument{
		Slug:        slug,
		Name:        name,
		Content:     content,
		Version:     version,
		PublishedAt: time.Now(),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, c.key(slug), data, 0).Err(); err != nil {
		return nil, err
	}
	return doc, nil
}
