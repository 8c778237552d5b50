package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/visibility-engine/model"
	"github.com/sells-group/visibility-engine/provider"
)

// maxClassifyItems caps how many items go into one batched prompt. Items
// beyond the cap fall back to UNKNOWN instead of triggering a second call.
const maxClassifyItems = 20

const classifyPromptTemplate = `You are classifying a brand's published content. For each numbered item below, pick exactly one category:

- PRACTICAL: how-to guides, tutorials, advice, buying guides
- SERIES: recurring editorial formats, episodic or numbered content
- EVENT: announcements tied to a date, launches, contests, seasonal operations
- UNKNOWN: none of the above fits

Items:
%s

Respond with JSON only, no prose: an array with one entry per item, in any order, shaped as
[{"index": 0, "category": "PRACTICAL", "keywords": ["topic", "theme"]}]

index is the item number given above. keywords are 1 to 5 short topical tags taken from the item.`

type classifiedItem struct {
	Index    int      `json:"index"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// Classifier buckets content items into editorial categories with a single
// batched analysis call.
type Classifier struct {
	analyst provider.Provider
}

func NewClassifier(analyst provider.Provider) *Classifier {
	return &Classifier{analyst: analyst}
}

// Classify returns exactly one classification per input item, in input
// order. Any failure, from a missing analysis provider to an unparseable
// response, degrades to UNKNOWN with empty keywords rather than erroring:
// classification feeds a score, and a conservative default is preferable to
// losing the run.
func (c *Classifier) Classify(ctx context.Context, items []model.ContentItem) []model.Classification {
	out := make([]model.Classification, len(items))
	for i, item := range items {
		out[i] = model.Classification{
			ContentItemID: item.ID,
			Category:      model.CategoryUnknown,
			Keywords:      []string{},
		}
	}
	if len(items) == 0 {
		return out
	}

	if c.analyst == nil || !c.analyst.Available() {
		zap.L().Warn("classify: no analysis provider, defaulting to UNKNOWN",
			zap.Int("items", len(items)),
		)
		return out
	}

	batch := items
	if len(batch) > maxClassifyItems {
		zap.L().Warn("classify: batch truncated",
			zap.Int("items", len(items)),
			zap.Int("cap", maxClassifyItems),
		)
		batch = batch[:maxClassifyItems]
	}

	raw, err := c.analyst.Ask(ctx, fmt.Sprintf(classifyPromptTemplate, formatItems(batch)))
	if err != nil {
		zap.L().Warn("classify: analysis call failed", zap.Error(err))
		return out
	}

	var parsed []classifiedItem
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &parsed); err != nil {
		zap.L().Warn("classify: unparseable analysis response", zap.Error(err))
		return out
	}

	for _, entry := range parsed {
		if entry.Index < 0 || entry.Index >= len(batch) {
			continue
		}
		out[entry.Index].Category = model.ParseCategory(entry.Category)
		if len(entry.Keywords) > 0 {
			out[entry.Index].Keywords = entry.Keywords
		}
	}
	return out
}

func formatItems(items []model.ContentItem) string {
	var b strings.Builder
	for i, item := range items {
		desc := truncate(strings.TrimSpace(item.Description), 300)
		fmt.Fprintf(&b, "%d. %s", i, item.Title)
		if desc != "" {
			fmt.Fprintf(&b, " : %s", desc)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
