package engine

import (
	"math"
	"time"

	"github.com/sells-group/visibility-engine/match"
	"github.com/sells-group/visibility-engine/model"
)

// Axis weights. They sum to 1 so the total stays on the same 0-100 scale as
// the individual axes.
const (
	weightAlignment     = 0.35
	weightFreshness     = 0.30
	weightPresence      = 0.20
	weightCompetitivity = 0.15
)

const (
	freshnessWindow    = 90 * 24 * time.Hour
	freshnessItemBonus = 2.0
	freshnessBonusCap  = 10.0
	alignmentBonus     = 7.5

	// presenceTarget is the fraction of observation slots a brand must
	// occupy to reach a full presence score.
	presenceTarget = 0.25
)

// ComputeScore derives the four-axis breakdown for one brand. It is a pure
// function of its inputs: same inputs, same output, no LLM involved. The
// clock is a parameter so freshness is reproducible.
func ComputeScore(
	classifications []model.Classification,
	items []model.ContentItem,
	mentions []model.Mention,
	brand string,
	competitors []string,
	now time.Time,
) model.ScoreBreakdown {
	s := model.ScoreBreakdown{
		Alignment:     alignmentScore(classifications),
		Freshness:     freshnessScore(items, now),
		Presence:      presenceScore(mentions, brand),
		Competitivity: competitivityScore(mentions, brand, competitors),
	}
	total := weightAlignment*s.Alignment +
		weightFreshness*s.Freshness +
		weightPresence*s.Presence +
		weightCompetitivity*s.Competitivity
	s.Total = int(math.Round(clamp(total)))
	return s
}

// alignmentScore rewards practical content, with a small bonus for having
// at least one series and one event format in the mix.
func alignmentScore(classifications []model.Classification) float64 {
	if len(classifications) == 0 {
		return 0
	}
	var practical int
	var hasSeries, hasEvent bool
	for _, c := range classifications {
		switch c.Category {
		case model.CategoryPractical:
			practical++
		case model.CategorySeries:
			hasSeries = true
		case model.CategoryEvent:
			hasEvent = true
		}
	}
	score := float64(practical) / float64(len(classifications)) * 100
	if hasSeries {
		score += alignmentBonus
	}
	if hasEvent {
		score += alignmentBonus
	}
	return clamp(score)
}

// freshnessScore is the share of items published inside the rolling window,
// with a small per-item bonus so an active publisher beats a dormant one at
// equal ratios.
func freshnessScore(items []model.ContentItem, now time.Time) float64 {
	if len(items) == 0 {
		return 0
	}
	cutoff := now.Add(-freshnessWindow)
	var recent int
	for _, item := range items {
		if item.PublishedAt.After(cutoff) {
			recent++
		}
	}
	score := float64(recent) / float64(len(items)) * 100
	score += math.Min(float64(recent)*freshnessItemBonus, freshnessBonusCap)
	return clamp(score)
}

// presenceScore measures how many observation slots the brand occupies. A
// slot is one (keyword, provider) pair observed in the mention set; failed
// provider calls produce no mentions and therefore no slots, so they do not
// dilute the score. Occupying a quarter of the slots scores 100.
func presenceScore(mentions []model.Mention, brand string) float64 {
	keywords := make(map[string]bool)
	providers := make(map[string]bool)
	brandSlots := make(map[[2]string]bool)

	for _, m := range mentions {
		keywords[m.Keyword] = true
		providers[m.ProviderID] = true
		if bindsTo(m.BrandName, brand) {
			brandSlots[[2]string{m.Keyword, m.ProviderID}] = true
		}
	}

	slots := len(keywords) * len(providers)
	if slots == 0 {
		return 0
	}
	target := float64(slots) * presenceTarget
	return clamp(float64(len(brandSlots)) / target * 100)
}

// competitivityScore compares the brand's mention count against the best
// count among the brand and its competitors. When nobody is mentioned at
// all the field is level, which is neither good nor bad: 50.
func competitivityScore(mentions []model.Mention, brand string, competitors []string) float64 {
	names := append([]string{brand}, competitors...)
	counts := make([]int, len(names))
	for _, m := range mentions {
		for i, name := range names {
			if bindsTo(m.BrandName, name) {
				counts[i]++
			}
		}
	}

	best := 0
	for _, c := range counts {
		if c > best {
			best = c
		}
	}
	if best == 0 {
		return 50
	}
	return clamp(float64(counts[0]) / float64(best) * 100)
}

func bindsTo(mentionName, brand string) bool {
	bound, ok := match.Match(mentionName, []string{brand})
	return ok && bound == brand
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
