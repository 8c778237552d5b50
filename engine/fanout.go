package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-engine/model"
	"github.com/sells-group/visibility-engine/provider"
)

// RunFanOut asks one question to every given adapter concurrently and waits
// for all of them to settle. There is no early cancellation on first
// success: every provider's independent answer is wanted. The returned map
// has exactly one AnswerAttempt per adapter, failed or not; a blank
// successful response is recorded as a failure because it is useless
// downstream.
func RunFanOut(ctx context.Context, question model.Question, providers []provider.Provider) map[string]model.AnswerAttempt {
	attempts := make([]model.AnswerAttempt, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			attempts[i] = askOne(ctx, question, p)
		}()
	}
	wg.Wait()

	out := make(map[string]model.AnswerAttempt, len(providers))
	for _, a := range attempts {
		out[a.ProviderID] = a
	}
	return out
}

func askOne(ctx context.Context, question model.Question, p provider.Provider) model.AnswerAttempt {
	start := time.Now()
	text, err := p.Ask(ctx, question.Text)
	attempt := model.AnswerAttempt{
		Question:   question,
		ProviderID: p.ID(),
		Latency:    time.Since(start),
	}

	switch {
	case err != nil:
		attempt.Err = eris.Cause(err).Error()
		zap.L().Warn("fanout: provider call failed",
			zap.String("provider", p.ID()),
			zap.String("keyword", question.Keyword),
			zap.Error(err),
		)
	case strings.TrimSpace(text) == "":
		attempt.Err = "empty answer"
		zap.L().Warn("fanout: provider returned blank answer",
			zap.String("provider", p.ID()),
			zap.String("keyword", question.Keyword),
		)
	default:
		attempt.Text = text
		zap.L().Debug("fanout: answer received",
			zap.String("provider", p.ID()),
			zap.String("keyword", question.Keyword),
			zap.Duration("latency", attempt.Latency),
		)
	}
	return attempt
}
