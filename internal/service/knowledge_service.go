package service

import (
	"context"
	"fmt"
	"log"

	"reportai/internal/cache"
	"reportai/internal/model"
)

// KnowledgeService handles admin writes and reads of the reference store
type KnowledgeService struct {
	knowledge cache.KnowledgeCache
	prompts   cache.PromptCache
}

// NewKnowledgeService creates a new knowledge service
func NewKnowledgeService(knowledge cache.KnowledgeCache, prompts cache.PromptCache) *KnowledgeService {
	return &KnowledgeService{knowledge: knowledge, prompts: prompts}
}

// UpsertPlatform replaces one platform knowledge document
func (s *KnowledgeService) UpsertPlatform(ctx context.Context, platform *model.PlatformKnowledge) error {
	if platform.Code == "" {
		return fmt.Errorf("platform code is required")
	}
	for _, q := range platform.Quirks {
		switch q.Impact {
		case model.ImpactHigh, model.ImpactMedium, model.ImpactLow:
		default:
			return fmt.Errorf("quirk %q has invalid impact %q", q.Text, q.Impact)
		}
	}
	log.Printf("[Knowledge] Upserting platform %s (%d quirks, %d kpis)",
		platform.Code, len(platform.Quirks), len(platform.Kpis))
	return s.knowledge.SetPlatform(ctx, platform)
}

// UpsertIndustry replaces one industry knowledge document
func (s *KnowledgeService) UpsertIndustry(ctx context.Context, industry *model.IndustryKnowledge) error {
	if industry.Code == "" {
		return fmt.Errorf("industry code is required")
	}
	log.Printf("[Knowledge] Upserting industry %s (%d benchmarks, %d insights)",
		industry.Code, len(industry.Benchmarks), len(industry.Insights))
	return s.knowledge.SetIndustry(ctx, industry)
}

// GetPlatform reads one platform document; nil when absent
func (s *KnowledgeService) GetPlatform(ctx context.Context, code string) (*model.PlatformKnowledge, error) {
	return s.knowledge.GetPlatform(ctx, code)
}

// GetIndustry reads one industry document; nil when absent
func (s *KnowledgeService) GetIndustry(ctx context.Context, code string) (*model.IndustryKnowledge, error) {
	return s.knowledge.GetIndustry(ctx, code)
}

// PublishPrompt publishes a new current version of a prompt document
func (s *KnowledgeService) PublishPrompt(ctx context.Context, slug, name, content string) (*model.SystemPromptDocument, error) {
	if slug == "" || content == "" {
		return nil, fmt.Errorf("prompt slug and content are required")
	}
	doc, err := s.prompts.Publish(ctx, slug, name, content)
	if err != nil {
		return nil, err
	}
	log.Printf("[Knowledge] Published prompt %s version %d", doc.Slug, doc.Version)
	return doc, nil
}

// GetCurrentPrompt reads the current prompt document; nil when absent
func (s *KnowledgeService) GetCurrentPrompt(ctx context.Context, slug string) (*model.SystemPromptDocument, error) {
	return s.prompts.GetCurrent(ctx, slug)
}
