package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"reportai/internal/cache"
	"reportai/internal/model"
)

// Seeds the reference store with starter platform knowledge, industry
// benchmarks, and the default report prompt for local development.
func main() {
	redisAddr := os.Getenv("REDIS_URI")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to ping Redis: %v", err)
	}

	knowledge := cache.NewKnowledgeCache(rdb)
	prompts := cache.NewPromptCache(rdb)

	platforms := []model.PlatformKnowledge{
		{
			Code:   "facebook",
			Name:   "Facebook / Meta",
			Active: true,
			Quirks: []model.Quirk{
				{
					Text:           "CPM spikes 30-50% in Q4 due to retail auction pressure",
					Impact:         model.ImpactHigh,
					Recommendation: "Set Q4 expectations against seasonal CPM baselines, not annual averages",
				},
				{
					Text:   "Frequency above 4 per week correlates with sharp CTR decay",
					Impact: model.ImpactMedium,
				},
			},
			Kpis: []model.Kpi{
				{Name: "CTR", TypicalRange: "0.8-1.2%", GoodThreshold: ">1.2%", BadThreshold: "<0.5%"},
				{Name: "CPM", TypicalRange: "$8-$14"},
			},
			Thresholds: []model.Threshold{
				{Metric: "frequency", Type: model.ThresholdMaximum, Value: 4, Context: "weekly"},
			},
			BuyerNotes: []model.BuyerNote{
				{Text: "Advantage+ placements skew delivery to Reels; check placement breakdown before judging CTR", Priority: 8},
				{Text: "Lead gen forms inflate conversion counts vs landing-page conversions", Priority: 6},
			},
		},
		{
			Code:   "google_ads",
			Name:   "Google Ads",
			Active: true,
			Quirks: []model.Quirk{
				{
					Text:           "Performance Max cannibalizes branded search volume",
					Impact:         model.ImpactHigh,
					Recommendation: "Compare branded search trends before and after PMax launch",
				},
			},
			Kpis: []model.Kpi{
				{Name: "CTR", TypicalRange: "2-4%", GoodThreshold: ">4%", BadThreshold: "<1%"},
				{Name: "Search Impression Share", GoodThreshold: ">70%"},
			},
			BuyerNotes: []model.BuyerNote{
				{Text: "Broad match with smart bidding needs 30+ conversions/month to stabilize", Priority: 7},
			},
		},
		{
			Code:   "programmatic",
			Name:   "Programmatic Display",
			Active: true,
			Quirks: []model.Quirk{
				{
					Text:   "Viewability below 60% usually indicates poor supply paths, not creative issues",
					Impact: model.ImpactHigh,
				},
			},
			Kpis: []model.Kpi{
				{Name: "Viewability", GoodThreshold: ">70%", BadThreshold: "<50%"},
				{Name: "CTR", TypicalRange: "0.05-0.1%"},
			},
		},
	}

	industries := []model.IndustryKnowledge{
		{
			Code: "automotive",
			Name: "Automotive",
			Benchmarks: []model.Benchmark{
				{Metric: "CTR", Value: 0.6, Unit: "%", Source: "vertical aggregate"},
				{Metric: "CPL", Value: 42, Unit: "USD"},
			},
			Insights: []model.Insight{
				{Text: "Dealership campaigns see strongest conversion lift Thursday through Saturday", Priority: 8},
				{Text: "Model-year clearance windows compress CPL by 20-30%", Priority: 6},
			},
			Seasonality: []model.Seasonality{
				{Period: "Q3", Impact: model.ImpactHigh, Description: "Model-year clearance"},
			},
		},
		{
			Code: "healthcare",
			Name: "Healthcare",
			Benchmarks: []model.Benchmark{
				{Metric: "CTR", Value: 0.8, Unit: "%"},
			},
			Insights: []model.Insight{
				{Text: "Restricted targeting categories inflate CPM versus other verticals", Priority: 9},
			},
		},
		{
			Code: "ecommerce",
			Name: "E-commerce",
			Benchmarks: []model.Benchmark{
				{Metric: "ROAS", Value: 4.0, Unit: "x"},
				{Metric: "CTR", Value: 1.1, Unit: "%"},
			},
			Insights: []model.Insight{
				{Text: "Cart-abandonment retargeting outperforms prospecting 3-5x on ROAS", Priority: 9},
				{Text: "Free-shipping thresholds in creative lift CTR 10-15%", Priority: 5},
			},
			Seasonality: []model.Seasonality{
				{Period: "Nov-Dec", Impact: model.ImpactHigh, Description: "Holiday peak"},
			},
		},
	}

	if err := knowledge.SetPlatforms(ctx, platforms); err != nil {
		log.Fatalf("Failed to seed platforms: %v", err)
	}
	for i := range industries {
		if err := knowledge.SetIndustry(ctx, &industries[i]); err != nil {
			log.Fatalf("Failed to seed industry %s: %v", industries[i].Code, err)
		}
	}

	promptContent := `You are an expert digital marketing analyst specializing in multi-channel campaign optimization.

For each tactic analyzed:
1. Compare metrics to provided industry benchmarks
2. Identify specific optimization opportunities with quantified impact
3. Flag warning indicators based on platform thresholds
4. Provide prioritized recommendations with expected outcomes

Ground ALL insights in provided data. Never invent metrics. Never combine metrics across different tactics. Reference specific benchmarks when making comparisons. Each recommendation must specify expected impact.`

	doc, err := prompts.Publish(ctx, "campaign-report", "Campaign Report Analyst", promptContent)
	if err != nil {
		log.Fatalf("Failed to publish prompt: %v", err)
	}

	fmt.Printf("Seeded %d platforms, %d industries, prompt %s v%d\n",
		len(platforms), len(industries), doc.Slug, doc.Version)
}
