package provider

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"

	"github.com/sells-group/visibility-engine/config"
)

// geminiProvider asks Google Gemini via google.golang.org/genai. The SDK
// client is created lazily on first Ask because its constructor needs a
// context; the once guard keeps concurrent Asks race-free.
type geminiProvider struct {
	key     string
	model   string
	timeout time.Duration

	initOnce sync.Once
	client   *genai.Client
	initErr  error
}

func newGemini(cfg config.GeminiConfig, timeout time.Duration) *geminiProvider {
	return &geminiProvider{
		key:     cfg.Key,
		model:   cfg.Model,
		timeout: timeout,
	}
}

func (p *geminiProvider) ID() string { return "gemini" }

func (p *geminiProvider) Available() bool { return p.key != "" }

func (p *geminiProvider) Ask(ctx context.Context, question string) (string, error) {
	if !p.Available() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.initOnce.Do(func() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: p.key})
		if err != nil {
			p.initErr = eris.Wrap(err, "gemini: create client")
			return
		}
		p.client = client
	})
	if p.initErr != nil {
		return "", p.initErr
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(question), nil)
	if err != nil {
		return "", eris.Wrap(err, "gemini: generate content")
	}
	return result.Text(), nil
}
