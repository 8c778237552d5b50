// Package engine runs the brand-visibility pipeline: fan questions out to
// answer engines, extract structured mentions, classify content, score, and
// optionally narrate the result.
package engine

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-engine/catalog"
	"github.com/sells-group/visibility-engine/config"
	"github.com/sells-group/visibility-engine/model"
	"github.com/sells-group/visibility-engine/provider"
)

// Engine is the in-process entry point. It owns no goroutines between
// calls and keeps no mutable state, so one Engine can serve concurrent
// runs.
type Engine struct {
	set         *provider.ProviderSet
	catalog     catalog.Catalog
	scheduler   *Scheduler
	classifier  *Classifier
	synthesizer *Synthesizer
}

func New(cfg *config.Config, set *provider.ProviderSet, cat catalog.Catalog) *Engine {
	analyst := set.Get(cfg.Visibility.AnalysisProvider)
	if analyst == nil {
		zap.L().Warn("engine: unknown analysis provider",
			zap.String("provider", cfg.Visibility.AnalysisProvider),
		)
	}

	return &Engine{
		set:         set,
		catalog:     cat,
		scheduler:   NewScheduler(set, NewExtractor(analyst), cfg.Visibility.BatchSize, time.Duration(cfg.Visibility.BatchDelayMS)*time.Millisecond),
		classifier:  NewClassifier(analyst),
		synthesizer: NewSynthesizer(analyst),
	}
}

// RunVisibilityPass asks every catalog question for the sector to every
// configured provider and returns the extracted mentions plus a completed
// Run record. An unknown sector is a caller bug and is the only condition
// that errors; provider and extraction failures end up in Run.Errors.
func (e *Engine) RunVisibilityPass(ctx context.Context, sector string, brandNames []string) (*model.Run, error) {
	questions, err := e.catalog.Questions(sector)
	if err != nil {
		return nil, eris.Wrap(err, "engine: visibility pass")
	}
	if len(brandNames) == 0 {
		return nil, eris.New("engine: visibility pass: no brand names given")
	}

	run := model.NewRun(sector)
	zap.L().Info("engine: visibility pass started",
		zap.String("run_id", run.ID.String()),
		zap.String("sector", sector),
		zap.Int("questions", len(questions)),
		zap.Strings("brands", brandNames),
	)

	run.Mentions, run.Errors = e.scheduler.Run(ctx, questions, brandNames)
	run.Duration = time.Since(run.StartedAt)

	zap.L().Info("engine: visibility pass finished",
		zap.String("run_id", run.ID.String()),
		zap.Int("mentions", len(run.Mentions)),
		zap.Int("errors", len(run.Errors)),
		zap.Duration("duration", run.Duration),
	)
	return run, nil
}

// RunContentClassification buckets a brand's content items. One entry per
// input item, always, in input order.
func (e *Engine) RunContentClassification(ctx context.Context, items []model.ContentItem) []model.Classification {
	return e.classifier.Classify(ctx, items)
}

// ComputeScore is the deterministic scoring step, exposed on the Engine for
// symmetry with the rest of the pipeline. See the package-level ComputeScore.
func (e *Engine) ComputeScore(
	classifications []model.Classification,
	items []model.ContentItem,
	mentions []model.Mention,
	brand string,
	competitors []string,
	now time.Time,
) model.ScoreBreakdown {
	return ComputeScore(classifications, items, mentions, brand, competitors, now)
}

// SynthesizeDiagnostic turns a scored run into a human-readable narrative.
func (e *Engine) SynthesizeDiagnostic(
	ctx context.Context,
	score model.ScoreBreakdown,
	mentions []model.Mention,
	competitorScores map[string]model.ScoreBreakdown,
) model.NarrativeResult {
	return e.synthesizer.Synthesize(ctx, score, mentions, competitorScores)
}
