package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/visibility-engine/model"
	"github.com/sells-group/visibility-engine/provider"
)

const (
	defaultBatchSize  = 3
	defaultBatchDelay = 500 * time.Millisecond
)

// Scheduler walks a question list in fixed-size batches, fanning each
// question out to every available provider and extracting mentions from each
// successful answer. A fixed pause follows every fan-in barrier so four
// providers times several questions do not land on the vendors all at once,
// no matter how long the batch itself ran.
type Scheduler struct {
	set        *provider.ProviderSet
	extractor  *Extractor
	batchSize  int
	batchDelay time.Duration
}

func NewScheduler(set *provider.ProviderSet, extractor *Extractor, batchSize int, batchDelay time.Duration) *Scheduler {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if batchDelay <= 0 {
		batchDelay = defaultBatchDelay
	}
	return &Scheduler{
		set:        set,
		extractor:  extractor,
		batchSize:  batchSize,
		batchDelay: batchDelay,
	}
}

type questionResult struct {
	mentions []model.Mention
	errs     []string
}

// Run executes the whole pass and always returns whatever was collected.
// Per-question and per-provider failures never abort the run; they are
// folded into a deduplicated, sorted error list. Cancellation is honored at
// batch boundaries only, so in-flight questions settle before Run returns.
func (s *Scheduler) Run(ctx context.Context, questions []model.Question, brandNames []string) ([]model.Mention, []string) {
	errSet := make(map[string]struct{})

	available := s.set.Available()
	for _, p := range s.set.All() {
		if !p.Available() {
			errSet[p.ID()+": provider not configured"] = struct{}{}
		}
	}
	if len(available) == 0 {
		zap.L().Warn("scheduler: no providers configured, nothing to ask")
		return []model.Mention{}, sortedErrors(errSet)
	}

	results := make([]questionResult, len(questions))

	for start := 0; start < len(questions); start += s.batchSize {
		if err := s.pause(ctx, start > 0); err != nil {
			zap.L().Warn("scheduler: run interrupted between batches", zap.Error(err))
			errSet["run: "+eris.Cause(err).Error()] = struct{}{}
			break
		}

		end := min(start+s.batchSize, len(questions))
		zap.L().Info("scheduler: running batch",
			zap.Int("from", start),
			zap.Int("to", end),
			zap.Int("providers", len(available)),
		)

		g := new(errgroup.Group)
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = s.runQuestion(ctx, questions[i], available, brandNames)
				return nil
			})
		}
		_ = g.Wait()
	}

	mentions := []model.Mention{}
	for _, qr := range results {
		mentions = append(mentions, qr.mentions...)
		for _, e := range qr.errs {
			errSet[e] = struct{}{}
		}
	}
	return mentions, sortedErrors(errSet)
}

// pause enforces the inter-batch delay. The clock starts when the previous
// batch's fan-in barrier released, so every batch gets the full breather
// even when the batch itself outran the delay. The first batch starts
// immediately; a cancelled context stops the run here, at the boundary.
func (s *Scheduler) pause(ctx context.Context, delay bool) error {
	if !delay {
		return ctx.Err()
	}

	timer := time.NewTimer(s.batchDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// runQuestion fans one question out, then extracts mentions from every
// successful answer concurrently. Results are merged in provider order so
// the output is deterministic for a given set of answers.
func (s *Scheduler) runQuestion(ctx context.Context, question model.Question, available []provider.Provider, brandNames []string) questionResult {
	attempts := RunFanOut(ctx, question, available)

	mentionSlots := make([][]model.Mention, len(available))
	errSlots := make([]string, len(available))

	var wg sync.WaitGroup
	for i, p := range available {
		attempt := attempts[p.ID()]
		if !attempt.OK() {
			errSlots[i] = fmt.Sprintf("%s: %s", p.ID(), attempt.Err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			mentions, err := s.extractor.Extract(ctx, attempt, brandNames)
			if err != nil {
				errSlots[i] = fmt.Sprintf("%s: %s", s.extractor.AnalystID(), eris.Cause(err).Error())
				return
			}
			mentionSlots[i] = mentions
		}()
	}
	wg.Wait()

	var qr questionResult
	for i := range available {
		qr.mentions = append(qr.mentions, mentionSlots[i]...)
		if errSlots[i] != "" {
			qr.errs = append(qr.errs, errSlots[i])
		}
	}
	return qr
}

func sortedErrors(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
