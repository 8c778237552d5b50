package provider

import (
	"context"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-engine/config"
)

// openAIProvider asks ChatGPT via the official openai-go SDK.
type openAIProvider struct {
	client  openai.Client
	model   string
	key     string
	timeout time.Duration
}

func newOpenAI(cfg config.OpenAIConfig, timeout time.Duration) *openAIProvider {
	return &openAIProvider{
		client:  openai.NewClient(option.WithAPIKey(cfg.Key)),
		model:   cfg.Model,
		key:     cfg.Key,
		timeout: timeout,
	}
}

func (p *openAIProvider) ID() string { return "openai" }

func (p *openAIProvider) Available() bool { return p.key != "" }

func (p *openAIProvider) Ask(ctx context.Context, question string) (string, error) {
	if !p.Available() {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(question),
		},
		Model: openai.ChatModel(p.model),
	})
	if err != nil {
		return "", eris.Wrap(err, "openai: chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("openai: response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
