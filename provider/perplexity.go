package provider

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-engine/config"
	"github.com/sells-group/visibility-engine/pkg/perplexity"
)

// perplexityProvider asks Perplexity via the pkg/perplexity client.
type perplexityProvider struct {
	client perplexity.Client
	key    string
}

func newPerplexity(cfg config.PerplexityConfig, timeout time.Duration) *perplexityProvider {
	opts := []perplexity.Option{perplexity.WithTimeout(timeout)}
	if cfg.BaseURL != "" {
		opts = append(opts, perplexity.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, perplexity.WithModel(cfg.Model))
	}
	return &perplexityProvider{
		client: perplexity.NewClient(cfg.Key, opts...),
		key:    cfg.Key,
	}
}

func (p *perplexityProvider) ID() string { return "perplexity" }

func (p *perplexityProvider) Available() bool { return p.key != "" }

func (p *perplexityProvider) Ask(ctx context.Context, question string) (string, error) {
	if !p.Available() {
		return "", ErrNotConfigured
	}
	text, err := p.client.Answer(ctx, question)
	if err != nil {
		return "", eris.Wrap(err, "perplexity: ask")
	}
	return text, nil
}
