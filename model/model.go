// Package model defines the core value types shared across the visibility engine.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Question is a single market question from the sector catalog.
type Question struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Text    string `yaml:"text" json:"text"`
}

// AnswerAttempt is the outcome of asking one provider one question.
// Exactly one of Text or Err is meaningful: a failed attempt has an empty
// Text and a non-empty Err reason.
type AnswerAttempt struct {
	Question   Question      `json:"question"`
	ProviderID string        `json:"provider_id"`
	Text       string        `json:"text,omitempty"`
	Err        string        `json:"error,omitempty"`
	Latency    time.Duration `json:"latency"`
}

// OK reports whether the attempt produced a usable answer.
func (a AnswerAttempt) OK() bool {
	return a.Err == "" && strings.TrimSpace(a.Text) != ""
}

// Sentiment is the tone of a brand mention.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment maps arbitrary model output to a valid Sentiment.
// Anything unrecognized defaults to neutral, never empty.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Mention records that a brand appeared in one provider's answer to one
// question. BrandName is the canonical candidate name when the extracted
// name could be bound to the candidate list, otherwise the raw extracted
// name with Matched=false.
type Mention struct {
	Keyword               string    `json:"keyword"`
	ProviderID            string    `json:"provider_id"`
	BrandName             string    `json:"brand_name"`
	Matched               bool      `json:"matched"`
	Position              *int      `json:"position,omitempty"`
	Recommended           bool      `json:"recommended"`
	Sentiment             Sentiment `json:"sentiment"`
	Context               string    `json:"context,omitempty"`
	PrimaryRecommendation bool      `json:"primary_recommendation,omitempty"`
}

// ContentItem is one published content piece (video, post) supplied by an
// external content source.
type ContentItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"published_at"`
}

// Category is the 3-way content-strategy taxonomy plus the mandatory
// UNKNOWN fallback.
type Category string

const (
	CategoryPractical Category = "PRACTICAL"
	CategorySeries    Category = "SERIES"
	CategoryEvent     Category = "EVENT"
	CategoryUnknown   Category = "UNKNOWN"
)

// ParseCategory maps arbitrary model output to a valid Category.
func ParseCategory(s string) Category {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryPractical:
		return CategoryPractical
	case CategorySeries:
		return CategorySeries
	case CategoryEvent:
		return CategoryEvent
	default:
		return CategoryUnknown
	}
}

// Classification labels exactly one ContentItem.
type Classification struct {
	ContentItemID string   `json:"content_item_id"`
	Category      Category `json:"category"`
	Keywords      []string `json:"keywords"`
}

// ScoreBreakdown is the deterministic 4-axis visibility score. Every
// component and the total are within [0,100].
type ScoreBreakdown struct {
	Alignment     float64 `json:"alignment"`
	Freshness     float64 `json:"freshness"`
	Presence      float64 `json:"presence"`
	Competitivity float64 `json:"competitivity"`
	Total         int     `json:"total"`
}

// NarrativeResult is the optional qualitative diagnostic. On any synthesis
// failure all lists are empty and Diagnostic carries a short apology.
type NarrativeResult struct {
	Diagnostic string   `json:"diagnostic"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Actions    []string `json:"actions"`
}

// Run correlates the artifacts of one visibility pass.
type Run struct {
	ID              uuid.UUID                 `json:"id"`
	Sector          string                    `json:"sector"`
	StartedAt       time.Time                 `json:"started_at"`
	Duration        time.Duration             `json:"duration"`
	Mentions        []Mention                 `json:"mentions"`
	Classifications []Classification          `json:"classifications,omitempty"`
	Scores          map[string]ScoreBreakdown `json:"scores,omitempty"`
	Errors          []string                  `json:"errors,omitempty"`
}

// NewRun allocates a run with a fresh correlation ID.
func NewRun(sector string) *Run {
	return &Run{
		ID:        uuid.New(),
		Sector:    sector,
		StartedAt: time.Now().UTC(),
		Scores:    make(map[string]ScoreBreakdown),
	}
}
