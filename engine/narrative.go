package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/visibility-engine/model"
	"github.com/sells-group/visibility-engine/provider"
)

const fallbackDiagnostic = "No diagnostic could be generated for this run."

const narrativePromptTemplate = `You are writing a short visibility diagnostic for a brand, based on how generative answer engines talk about it.

Score breakdown (each axis 0-100):
- alignment: %.1f
- freshness: %.1f
- presence: %.1f
- competitivity: %.1f
- total: %d

%s%sWrite for a marketing lead, in plain language, no jargon. Respond with JSON only:
{
  "diagnostic": "3-5 sentence narrative of where the brand stands",
  "strengths": ["..."],
  "weaknesses": ["..."],
  "actions": ["concrete next step"]
}`

type narrativeResponse struct {
	Diagnostic string   `json:"diagnostic"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Actions    []string `json:"actions"`
}

// Synthesizer produces the qualitative reading of a scored run. It is the
// only place where an LLM writes prose for humans; everything it says is
// grounded in the numbers and mentions passed in.
type Synthesizer struct {
	analyst provider.Provider
}

func NewSynthesizer(analyst provider.Provider) *Synthesizer {
	return &Synthesizer{analyst: analyst}
}

// Synthesize makes one analysis call and parses the narrative out of it.
// Any failure degrades to a fixed apology diagnostic with empty lists, so
// callers can render the result without nil checks.
func (s *Synthesizer) Synthesize(
	ctx context.Context,
	score model.ScoreBreakdown,
	mentions []model.Mention,
	competitorScores map[string]model.ScoreBreakdown,
) model.NarrativeResult {
	if s.analyst == nil || !s.analyst.Available() {
		zap.L().Warn("narrative: no analysis provider, returning fallback")
		return fallbackNarrative()
	}

	prompt := fmt.Sprintf(narrativePromptTemplate,
		score.Alignment, score.Freshness, score.Presence, score.Competitivity, score.Total,
		formatMentionHighlights(mentions),
		formatCompetitorScores(competitorScores),
	)

	raw, err := s.analyst.Ask(ctx, prompt)
	if err != nil {
		zap.L().Warn("narrative: analysis call failed", zap.Error(err))
		return fallbackNarrative()
	}

	var resp narrativeResponse
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &resp); err != nil {
		zap.L().Warn("narrative: unparseable analysis response", zap.Error(err))
		return fallbackNarrative()
	}
	if strings.TrimSpace(resp.Diagnostic) == "" {
		return fallbackNarrative()
	}

	return model.NarrativeResult{
		Diagnostic: strings.TrimSpace(resp.Diagnostic),
		Strengths:  orEmpty(resp.Strengths),
		Weaknesses: orEmpty(resp.Weaknesses),
		Actions:    orEmpty(resp.Actions),
	}
}

func fallbackNarrative() model.NarrativeResult {
	return model.NarrativeResult{
		Diagnostic: fallbackDiagnostic,
		Strengths:  []string{},
		Weaknesses: []string{},
		Actions:    []string{},
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// formatMentionHighlights picks a handful of the most telling mentions,
// positives first, so the prompt stays small no matter how big the run was.
func formatMentionHighlights(mentions []model.Mention) string {
	const perTone = 5
	var positives, negatives []string
	for _, m := range mentions {
		line := fmt.Sprintf("- [%s/%s] %s (%s)", m.ProviderID, m.Keyword, m.BrandName, m.Sentiment)
		if m.Context != "" {
			line += ": " + m.Context
		}
		switch m.Sentiment {
		case model.SentimentPositive:
			if len(positives) < perTone {
				positives = append(positives, line)
			}
		case model.SentimentNegative:
			if len(negatives) < perTone {
				negatives = append(negatives, line)
			}
		}
	}
	if len(positives) == 0 && len(negatives) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Notable mentions across answer engines:\n")
	for _, l := range positives {
		b.WriteString(l + "\n")
	}
	for _, l := range negatives {
		b.WriteString(l + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func formatCompetitorScores(scores map[string]model.ScoreBreakdown) string {
	if len(scores) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Competitor totals for context:\n")
	for name, s := range scores {
		fmt.Fprintf(&b, "- %s: %d\n", name, s.Total)
	}
	b.WriteString("\n")
	return b.String()
}
