package provider

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-engine/config"
	"github.com/sells-group/visibility-engine/pkg/anthropic"
)

// anthropicProvider asks Claude via the pkg/anthropic wrapper.
type anthropicProvider struct {
	client  anthropic.Client
	model   string
	key     string
	timeout time.Duration
}

func newAnthropic(cfg config.AnthropicConfig, timeout time.Duration) *anthropicProvider {
	return &anthropicProvider{
		client:  anthropic.NewClient(cfg.Key),
		model:   cfg.Model,
		key:     cfg.Key,
		timeout: timeout,
	}
}

func (p *anthropicProvider) ID() string { return "anthropic" }

func (p *anthropicProvider) Available() bool { return p.key != "" }

func (p *anthropicProvider) Ask(ctx context.Context, question string) (string, error) {
	if !p.Available() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: 1024,
		Messages: []anthropic.Message{
			{Role: "user", Content: question},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "anthropic: ask")
	}
	return anthropic.ExtractText(resp), nil
}
