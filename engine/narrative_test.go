package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/visibility-engine/model"
)

var testScore = model.ScoreBreakdown{Alignment: 60, Freshness: 80, Presence: 40, Competitivity: 55, Total: 61}

func assertFallback(t *testing.T, got model.NarrativeResult) {
	t.Helper()
	assert.Equal(t, fallbackDiagnostic, got.Diagnostic)
	require.NotNil(t, got.Strengths)
	require.NotNil(t, got.Weaknesses)
	require.NotNil(t, got.Actions)
	assert.Empty(t, got.Strengths)
	assert.Empty(t, got.Weaknesses)
	assert.Empty(t, got.Actions)
}

func TestSynthesizeSuccess(t *testing.T) {
	analyst := answering("analyst", "```json\n"+`{
  "diagnostic": "The brand is visible but rarely recommended first.",
  "strengths": ["fresh content"],
  "weaknesses": ["weak presence on comparison questions"],
  "actions": ["publish buying guides"]
}`+"\n```")
	s := NewSynthesizer(analyst)

	got := s.Synthesize(context.Background(), testScore, nil, nil)

	assert.Equal(t, "The brand is visible but rarely recommended first.", got.Diagnostic)
	assert.Equal(t, []string{"fresh content"}, got.Strengths)
	assert.Equal(t, []string{"weak presence on comparison questions"}, got.Weaknesses)
	assert.Equal(t, []string{"publish buying guides"}, got.Actions)
}

func TestSynthesizeMissingListsBecomeEmpty(t *testing.T) {
	analyst := answering("analyst", `{"diagnostic": "Fine overall."}`)
	got := NewSynthesizer(analyst).Synthesize(context.Background(), testScore, nil, nil)

	assert.Equal(t, "Fine overall.", got.Diagnostic)
	require.NotNil(t, got.Strengths)
	assert.Empty(t, got.Strengths)
	require.NotNil(t, got.Actions)
}

func TestSynthesizeWithoutAnalyst(t *testing.T) {
	assertFallback(t, NewSynthesizer(nil).Synthesize(context.Background(), testScore, nil, nil))
	assertFallback(t, NewSynthesizer(&stubProvider{id: "analyst"}).Synthesize(context.Background(), testScore, nil, nil))
}

func TestSynthesizeCallFailure(t *testing.T) {
	analyst := &stubProvider{id: "analyst", available: true, ask: func(context.Context, string) (string, error) {
		return "", errors.New("overloaded")
	}}
	assertFallback(t, NewSynthesizer(analyst).Synthesize(context.Background(), testScore, nil, nil))
}

func TestSynthesizeParseFailure(t *testing.T) {
	analyst := answering("analyst", "Your brand is doing great, keep it up!")
	assertFallback(t, NewSynthesizer(analyst).Synthesize(context.Background(), testScore, nil, nil))
}

func TestSynthesizeBlankDiagnostic(t *testing.T) {
	analyst := answering("analyst", `{"diagnostic": "  ", "strengths": ["x"]}`)
	assertFallback(t, NewSynthesizer(analyst).Synthesize(context.Background(), testScore, nil, nil))
}

func TestSynthesizePromptCarriesContext(t *testing.T) {
	var gotPrompt string
	analyst := &stubProvider{id: "analyst", available: true, ask: func(_ context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return `{"diagnostic": "ok"}`, nil
	}}

	pos := 1
	mentions := []model.Mention{
		{Keyword: "drive", ProviderID: "openai", BrandName: "Acme", Matched: true, Position: &pos, Sentiment: model.SentimentPositive, Context: "Acme is the top pick"},
		{Keyword: "bio", ProviderID: "gemini", BrandName: "Acme", Matched: true, Sentiment: model.SentimentNegative, Context: "Acme lags on organic"},
		{Keyword: "bio", ProviderID: "gemini", BrandName: "Globex", Matched: true, Sentiment: model.SentimentNeutral},
	}
	competitorScores := map[string]model.ScoreBreakdown{"Globex": {Total: 72}}

	NewSynthesizer(analyst).Synthesize(context.Background(), testScore, mentions, competitorScores)

	assert.Contains(t, gotPrompt, "Acme is the top pick")
	assert.Contains(t, gotPrompt, "Acme lags on organic")
	assert.Contains(t, gotPrompt, "Globex: 72")
	assert.Contains(t, gotPrompt, "total: 61")
	// Neutral mentions are not highlighted.
	assert.Equal(t, 1, strings.Count(gotPrompt, "Globex"))
}
