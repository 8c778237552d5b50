package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/visibility-engine/model"
	"github.com/sells-group/visibility-engine/provider"
)

const acmeExtraction = `{"brands_mentioned": [{"name": "Acme", "position": 1, "recommended": true, "sentiment": "positive", "context": "Acme comes out on top"}], "primary_recommendation": "Acme", "key_criteria": ["price"]}`

func testQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{Keyword: "kw" + string(rune('a'+i)), Text: "question"}
	}
	return qs
}

func newTestScheduler(analyst provider.Provider, providers ...provider.Provider) *Scheduler {
	set := provider.NewProviderSetOf(time.Second, providers...)
	return NewScheduler(set, NewExtractor(analyst), 3, time.Millisecond)
}

func TestSchedulerFullPass(t *testing.T) {
	analyst := answering("analyst", acmeExtraction)
	s := newTestScheduler(analyst,
		answering("one", "Acme is great."),
		answering("two", "I would pick Acme."),
	)

	mentions, errs := s.Run(context.Background(), testQuestions(3), []string{"Acme", "Globex"})

	assert.Empty(t, errs)
	// 3 questions x 2 providers, one mention each.
	require.Len(t, mentions, 6)
	for _, m := range mentions {
		assert.Equal(t, "Acme", m.BrandName)
		assert.True(t, m.Matched)
		assert.True(t, m.Recommended)
		assert.Equal(t, model.SentimentPositive, m.Sentiment)
		assert.True(t, m.PrimaryRecommendation)
	}
	// One extraction call per successful answer.
	assert.Equal(t, 6, analyst.callCount())
}

func TestSchedulerNoProvidersConfigured(t *testing.T) {
	analyst := answering("analyst", acmeExtraction)
	s := newTestScheduler(analyst,
		&stubProvider{id: "one", available: false},
		&stubProvider{id: "two", available: false},
	)

	mentions, errs := s.Run(context.Background(), testQuestions(2), []string{"Acme"})

	assert.NotNil(t, mentions)
	assert.Empty(t, mentions)
	assert.Equal(t, []string{
		"one: provider not configured",
		"two: provider not configured",
	}, errs)
	assert.Zero(t, analyst.callCount())
}

func TestSchedulerPartialFailure(t *testing.T) {
	analyst := answering("analyst", acmeExtraction)
	s := newTestScheduler(analyst,
		answering("good", "Acme wins."),
		failing("bad", "service unavailable"),
	)

	mentions, errs := s.Run(context.Background(), testQuestions(4), []string{"Acme"})

	// The good provider still yields a mention per question.
	require.Len(t, mentions, 4)
	// Identical provider failures collapse to a single entry.
	assert.Equal(t, []string{"bad: service unavailable"}, errs)
}

func TestSchedulerExtractionParseFailures(t *testing.T) {
	analyst := answering("analyst", "this is not JSON at all")
	s := newTestScheduler(analyst, answering("one", "Acme wins."))

	mentions, errs := s.Run(context.Background(), testQuestions(2), []string{"Acme"})

	assert.Empty(t, mentions)
	assert.Equal(t, []string{"analyst: extraction parse failure"}, errs)
}

func TestSchedulerBlankAnswerReported(t *testing.T) {
	analyst := answering("analyst", acmeExtraction)
	s := newTestScheduler(analyst, answering("mute", "  \n "))

	mentions, errs := s.Run(context.Background(), testQuestions(1), []string{"Acme"})

	assert.Empty(t, mentions)
	assert.Equal(t, []string{"mute: empty answer"}, errs)
	assert.Zero(t, analyst.callCount())
}

func TestSchedulerBatchesAllQuestions(t *testing.T) {
	analyst := answering("analyst", acmeExtraction)
	p := answering("one", "Acme wins.")
	s := newTestScheduler(analyst, p)

	// 7 questions with batch size 3 means 3 batches.
	mentions, errs := s.Run(context.Background(), testQuestions(7), []string{"Acme"})

	assert.Empty(t, errs)
	assert.Len(t, mentions, 7)
	assert.Equal(t, 7, p.callCount())
}

func TestSchedulerPausesAfterSlowBatch(t *testing.T) {
	analyst := answering("analyst", acmeExtraction)
	slow := &stubProvider{id: "slow", available: true, ask: func(context.Context, string) (string, error) {
		time.Sleep(50 * time.Millisecond)
		return "Acme wins.", nil
	}}
	set := provider.NewProviderSetOf(time.Second, slow)
	s := NewScheduler(set, NewExtractor(analyst), 1, 40*time.Millisecond)

	begin := time.Now()
	mentions, errs := s.Run(context.Background(), testQuestions(2), []string{"Acme"})
	elapsed := time.Since(begin)

	assert.Empty(t, errs)
	assert.Len(t, mentions, 2)
	// Each batch outruns the delay, yet the full pause still separates
	// them: two 50ms batches plus one 40ms breather.
	assert.GreaterOrEqual(t, elapsed, 130*time.Millisecond)
}

func TestSchedulerCancelledBeforeStart(t *testing.T) {
	analyst := answering("analyst", acmeExtraction)
	p := answering("one", "Acme wins.")
	s := newTestScheduler(analyst, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mentions, errs := s.Run(ctx, testQuestions(3), []string{"Acme"})

	assert.Empty(t, mentions)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "context canceled")
	assert.Zero(t, p.callCount())
}
