package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-engine/match"
	"github.com/sells-group/visibility-engine/model"
	"github.com/sells-group/visibility-engine/provider"
)

const extractionPromptTemplate = `You are a brand-visibility analyst. A generative answer engine was asked the question below and produced the answer below. Extract every brand, company or product it mentions.

Question: %s

Answer:
%s

Brands we are tracking (mentions of other brands must still be extracted):
%s

Respond with JSON only, no prose, using exactly this shape:
{
  "brands_mentioned": [
    {
      "name": "brand name as written in the answer",
      "position": 1,
      "recommended": true,
      "sentiment": "positive|neutral|negative",
      "context": "short quote or paraphrase of the surrounding sentence"
    }
  ],
  "primary_recommendation": "name of the single brand the answer pushes hardest, or empty string",
  "key_criteria": ["criteria the answer uses to rank or recommend"]
}

position is the 1-based rank when the answer presents an ordered list, otherwise omit it. recommended is true when the answer explicitly endorses the brand.`

type extractionResponse struct {
	BrandsMentioned       []extractedBrand `json:"brands_mentioned"`
	PrimaryRecommendation string           `json:"primary_recommendation"`
	KeyCriteria           []string         `json:"key_criteria"`
}

type extractedBrand struct {
	Name        string `json:"name"`
	Position    *int   `json:"position"`
	Recommended bool   `json:"recommended"`
	Sentiment   string `json:"sentiment"`
	Context     string `json:"context"`
}

var errExtractionParse = eris.New("extraction parse failure")

// Extractor turns one raw answer into structured brand mentions through a
// second LLM call against the analysis provider.
type Extractor struct {
	analyst provider.Provider
}

func NewExtractor(analyst provider.Provider) *Extractor {
	return &Extractor{analyst: analyst}
}

// AnalystID reports which provider performs the analysis calls, or "" when
// none is configured.
func (e *Extractor) AnalystID() string {
	if e.analyst == nil {
		return ""
	}
	return e.analyst.ID()
}

// Extract analyzes a settled answer attempt. Failed or blank attempts and a
// missing analysis provider short-circuit to no mentions without any LLM
// call. A non-nil error reports an analysis call or parse failure so the
// caller can record it; the mention slice is empty in that case rather than
// partially decoded.
func (e *Extractor) Extract(ctx context.Context, attempt model.AnswerAttempt, candidates []string) ([]model.Mention, error) {
	if !attempt.OK() {
		return nil, nil
	}
	if e.analyst == nil || !e.analyst.Available() {
		zap.L().Debug("extract: no analysis provider, skipping",
			zap.String("provider", attempt.ProviderID),
			zap.String("keyword", attempt.Question.Keyword),
		)
		return nil, nil
	}

	prompt := fmt.Sprintf(extractionPromptTemplate,
		attempt.Question.Text,
		attempt.Text,
		strings.Join(candidates, ", "),
	)

	raw, err := e.analyst.Ask(ctx, prompt)
	if err != nil {
		return nil, eris.Wrap(err, "extract: analysis call")
	}

	var resp extractionResponse
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &resp); err != nil {
		zap.L().Warn("extract: unparseable analysis response",
			zap.String("provider", attempt.ProviderID),
			zap.String("keyword", attempt.Question.Keyword),
			zap.Error(err),
		)
		return nil, errExtractionParse
	}

	return e.bind(attempt, resp, candidates), nil
}

// bind converts the decoded response into mentions, applying defaults and
// binding raw brand names to the tracked candidates.
func (e *Extractor) bind(attempt model.AnswerAttempt, resp extractionResponse, candidates []string) []model.Mention {
	primary := ""
	if strings.TrimSpace(resp.PrimaryRecommendation) != "" {
		primary, _ = match.Match(resp.PrimaryRecommendation, candidates)
	}

	mentions := make([]model.Mention, 0, len(resp.BrandsMentioned))
	seenPositions := make(map[int]bool)
	for _, b := range resp.BrandsMentioned {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			continue
		}

		bound, matched := match.Match(name, candidates)

		// Positions must be positive and unique within one answer; the
		// first mention claiming a rank keeps it.
		position := b.Position
		if position != nil && (*position < 1 || seenPositions[*position]) {
			position = nil
		}
		if position != nil {
			seenPositions[*position] = true
		}

		mentions = append(mentions, model.Mention{
			Keyword:               attempt.Question.Keyword,
			ProviderID:            attempt.ProviderID,
			BrandName:             bound,
			Matched:               matched,
			Position:              position,
			Recommended:           b.Recommended,
			Sentiment:             model.ParseSentiment(b.Sentiment),
			Context:               strings.TrimSpace(b.Context),
			PrimaryRecommendation: primary != "" && bound == primary,
		})
	}
	return mentions
}

// cleanJSON strips markdown code fences and surrounding prose so the payload
// can be fed to json.Unmarshal. Works for both object and array payloads.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}
	if idx := strings.LastIndex(text, "```"); idx != -1 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)

	opener, closer := "{", "}"
	objIdx, arrIdx := strings.Index(text, "{"), strings.Index(text, "[")
	if arrIdx != -1 && (objIdx == -1 || arrIdx < objIdx) {
		opener, closer = "[", "]"
	}
	start := strings.Index(text, opener)
	end := strings.LastIndex(text, closer)
	if start != -1 && end != -1 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}
