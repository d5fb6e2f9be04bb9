package service

import (
	"fmt"
	"sort"
	"strings"

	"reportai/internal/model"
)

// Formatting limits. Tables and ranked lists are capped so a single large
// upload or knowledge entry cannot blow up the prompt.
const (
	maxTableRows             = 50
	maxInsights              = 5
	maxBuyerNotesPerPlatform = 2

	// Below this confidence a tactic bullet carries a detection note
	confidenceNoteThreshold = 0.9
)

// FormatCampaignData renders campaign identity plus optional performance
// and pacing tables. Returns "" when there is nothing to render.
func FormatCampaignData(campaign model.CampaignInfo, performance, pacing *model.FileDataset) string {
	var b strings.Builder

	if campaign.Name != "" || campaign.OrderID != "" {
		b.WriteString("<campaign_data>\n")
		if campaign.Name != "" {
			fmt.Fprintf(&b, "Campaign: %s\n", campaign.Name)
		}
		if campaign.OrderID != "" {
			fmt.Fprintf(&b, "Order ID: %s\n", campaign.OrderID)
		}
		if campaign.Advertiser != "" {
			fmt.Fprintf(&b, "Advertiser: %s\n", campaign.Advertiser)
		}
		if campaign.FlightStart != "" || campaign.FlightEnd != "" {
			fmt.Fprintf(&b, "Flight: %s to %s\n", campaign.FlightStart, campaign.FlightEnd)
		}
		if campaign.BudgetTotal > 0 {
			fmt.Fprintf(&b, "Total budget: $%.2f\n", campaign.BudgetTotal)
		}

		writeDataset(&b, "performance_data", performance)
		writeDataset(&b, "pacing_data", pacing)

		b.WriteString("</campaign_data>")
		return b.String()
	}

	// No identity, but datasets may still be worth rendering
	if (performance == nil || len(performance.Rows) == 0) && (pacing == nil || len(pacing.Rows) == 0) {
		return ""
	}
	b.WriteString("<campaign_data>\n")
	writeDataset(&b, "performance_data", performance)
	writeDataset(&b, "pacing_data", pacing)
	b.WriteString("</campaign_data>")
	return b.String()
}

func writeDataset(b *strings.Builder, tag string, ds *model.FileDataset) {
	if ds == nil || len(ds.Rows) == 0 {
		return
	}

	fmt.Fprintf(b, "<%s name=%q>\n", tag, ds.Name)
	b.WriteString(strings.Join(ds.Columns, " | "))
	b.WriteString("\n")

	rows := ds.Rows
	truncated := false
	if len(rows) > maxTableRows {
		rows = rows[:maxTableRows]
		truncated = true
	}
	for _, row := range rows {
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}
	if truncated {
		fmt.Fprintf(b, "(%d additional rows omitted)\n", len(ds.Rows)-maxTableRows)
	}
	fmt.Fprintf(b, "</%s>\n", tag)
}

// FormatCompanyInfo renders company identity and optional custom
// instructions. Returns "" for a zero-value company.
func FormatCompanyInfo(company model.CompanyInfo) string {
	if company.Name == "" && company.CustomInstructions == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("<company_context>\n")
	if company.Name != "" {
		fmt.Fprintf(&b, "Company: %s\n", company.Name)
	}
	if company.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", company.Industry)
	}
	if company.Website != "" {
		fmt.Fprintf(&b, "Website: %s\n", company.Website)
	}
	if company.CustomInstructions != "" {
		fmt.Fprintf(&b, "<custom_instructions>\n%s\n</custom_instructions>\n", company.CustomInstructions)
	}
	b.WriteString("</company_context>")
	return b.String()
}

// FormatTacticGuidance renders one bullet per detected tactic. A detection
// note is appended only when confidence is below the threshold.
func FormatTacticGuidance(tactics []model.DetectedTactic) string {
	if len(tactics) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<detected_tactics>\n")
	for _, t := range tactics {
		fmt.Fprintf(&b, "- %s", t.Platform)
		if t.Product != "" {
			fmt.Fprintf(&b, " / %s", t.Product)
		}
		if t.Subproduct != "" {
			fmt.Fprintf(&b, " / %s", t.Subproduct)
		}
		fmt.Fprintf(&b, ": %s", t.TacticType)
		if t.DataValue != "" {
			fmt.Fprintf(&b, " (%s)", t.DataValue)
		}
		if t.MatchConfidence < confidenceNoteThreshold {
			fmt.Fprintf(&b, " [detection confidence %.2f]", t.MatchConfidence)
		}
		b.WriteString("\n")
	}
	b.WriteString("</detected_tactics>")
	return b.String()
}

// FormatPlatformQuirks renders quirks filtered to exactly one impact level
func FormatPlatformQuirks(platforms []model.PlatformKnowledge, impact model.ImpactLevel) string {
	var b strings.Builder
	for _, p := range platforms {
		var lines []string
		for _, q := range p.Quirks {
			if q.Impact != impact {
				continue
			}
			line := "- " + q.Text
			if q.Recommendation != "" {
				line += " Recommendation: " + q.Recommendation
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&b, "<platform_quirks platform=%q impact=%q>\n", p.Code, string(impact))
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n</platform_quirks>\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// FormatPlatformKpis renders one line per KPI, omitting absent clauses
func FormatPlatformKpis(platforms []model.PlatformKnowledge) string {
	var b strings.Builder
	for _, p := range platforms {
		if len(p.Kpis) == 0 {
			continue
		}
		fmt.Fprintf(&b, "<platform_kpis platform=%q>\n", p.Code)
		for _, k := range p.Kpis {
			fmt.Fprintf(&b, "- %s", k.Name)
			if k.TypicalRange != "" {
				fmt.Fprintf(&b, ": typical %s", k.TypicalRange)
			}
			if k.GoodThreshold != "" {
				fmt.Fprintf(&b, ", good %s", k.GoodThreshold)
			}
			if k.BadThreshold != "" {
				fmt.Fprintf(&b, ", concerning %s", k.BadThreshold)
			}
			b.WriteString("\n")
		}
		b.WriteString("</platform_kpis>\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// FormatIndustryBenchmarks renders one line per benchmark
func FormatIndustryBenchmarks(industry *model.IndustryKnowledge) string {
	if industry == nil || len(industry.Benchmarks) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<industry_benchmarks industry=%q>\n", industry.Code)
	for _, bm := range industry.Benchmarks {
		fmt.Fprintf(&b, "- %s: %g", bm.Metric, bm.Value)
		if bm.Unit != "" {
			fmt.Fprintf(&b, " %s", bm.Unit)
		}
		if bm.Source != "" {
			fmt.Fprintf(&b, " (source: %s)", bm.Source)
		}
		b.WriteString("\n")
	}
	b.WriteString("</industry_benchmarks>")
	return b.String()
}

// FormatIndustryInsights renders the top insights by descending priority
func FormatIndustryInsights(industry *model.IndustryKnowledge) string {
	if industry == nil || len(industry.Insights) == 0 {
		return ""
	}

	insights := make([]model.Insight, len(industry.Insights))
	copy(insights, industry.Insights)
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Priority > insights[j].Priority
	})
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<industry_insights industry=%q>\n", industry.Code)
	for _, ins := range insights {
		fmt.Fprintf(&b, "- %s", ins.Text)
		if ins.Category != "" {
			fmt.Fprintf(&b, " [%s]", ins.Category)
		}
		b.WriteString("\n")
	}
	b.WriteString("</industry_insights>")
	return b.String()
}

// FormatBuyerNotes renders the top notes per platform by descending priority
func FormatBuyerNotes(platforms []model.PlatformKnowledge) string {
	var b strings.Builder
	for _, p := range platforms {
		if len(p.BuyerNotes) == 0 {
			continue
		}
		notes := make([]model.BuyerNote, len(p.BuyerNotes))
		copy(notes, p.BuyerNotes)
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].Priority > notes[j].Priority
		})
		if len(notes) > maxBuyerNotesPerPlatform {
			notes = notes[:maxBuyerNotesPerPlatform]
		}

		fmt.Fprintf(&b, "<buyer_notes platform=%q>\n", p.Code)
		for _, n := range notes {
			fmt.Fprintf(&b, "- %s\n", n.Text)
		}
		b.WriteString("</buyer_notes>\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// FormatPlatformReference renders the full platform knowledge as a
// standalone block with no campaign-specific fields, suitable for
// provider-side prompt caching.
func FormatPlatformReference(p model.PlatformKnowledge) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<platform_reference code=%q name=%q>\n", p.Code, p.Name)
	if p.Description != "" {
		b.WriteString(p.Description)
		b.WriteString("\n")
	}

	if len(p.Quirks) > 0 {
		b.WriteString("<quirks>\n")
		for _, q := range p.Quirks {
			fmt.Fprintf(&b, "- [%s] %s", q.Impact, q.Text)
			if q.Recommendation != "" {
				fmt.Fprintf(&b, " Recommendation: %s", q.Recommendation)
			}
			b.WriteString("\n")
		}
		b.WriteString("</quirks>\n")
	}

	if len(p.Kpis) > 0 {
		b.WriteString("<kpis>\n")
		for _, k := range p.Kpis {
			fmt.Fprintf(&b, "- %s", k.Name)
			if k.TypicalRange != "" {
				fmt.Fprintf(&b, ": typical %s", k.TypicalRange)
			}
			if k.GoodThreshold != "" {
				fmt.Fprintf(&b, ", good %s", k.GoodThreshold)
			}
			if k.BadThreshold != "" {
				fmt.Fprintf(&b, ", concerning %s", k.BadThreshold)
			}
			b.WriteString("\n")
		}
		b.WriteString("</kpis>\n")
	}

	if len(p.Thresholds) > 0 {
		b.WriteString("<warning_thresholds>\n")
		for _, t := range p.Thresholds {
			fmt.Fprintf(&b, "- %s (%s): %g", t.Metric, t.Type, t.Value)
			if t.Context != "" {
				fmt.Fprintf(&b, " - %s", t.Context)
			}
			b.WriteString("\n")
		}
		b.WriteString("</warning_thresholds>\n")
	}

	b.WriteString("</platform_reference>")
	return b.String()
}

// FormatIndustryReference renders the full industry knowledge as a
// standalone, campaign-independent block for prompt caching.
func FormatIndustryReference(ind model.IndustryKnowledge) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<industry_reference code=%q name=%q>\n", ind.Code, ind.Name)
	if ind.Description != "" {
		b.WriteString(ind.Description)
		b.WriteString("\n")
	}

	if len(ind.Benchmarks) > 0 {
		b.WriteString("<benchmarks>\n")
		for _, bm := range ind.Benchmarks {
			fmt.Fprintf(&b, "- %s: %g", bm.Metric, bm.Value)
			if bm.Unit != "" {
				fmt.Fprintf(&b, " %s", bm.Unit)
			}
			if bm.Source != "" {
				fmt.Fprintf(&b, " (source: %s)", bm.Source)
			}
			b.WriteString("\n")
		}
		b.WriteString("</benchmarks>\n")
	}

	if len(ind.Insights) > 0 {
		b.WriteString("<insights>\n")
		for _, ins := range ind.Insights {
			fmt.Fprintf(&b, "- %s\n", ins.Text)
		}
		b.WriteString("</insights>\n")
	}

	if len(ind.Seasonality) > 0 {
		b.WriteString("<seasonality>\n")
		for _, s := range ind.Seasonality {
			fmt.Fprintf(&b, "- %s: %s impact", s.Period, s.Impact)
			if s.Description != "" {
				fmt.Fprintf(&b, " - %s", s.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("</seasonality>\n")
	}

	b.WriteString("</industry_reference>")
	return b.String()
}
