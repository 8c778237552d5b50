// Package provider wraps the external answer engines behind a uniform
// ask-a-question interface.
package provider

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-engine/config"
)

// defaultAskTimeout bounds a single provider call. One slow provider must
// never stall its siblings in a fan-out batch.
const defaultAskTimeout = 30 * time.Second

// ErrNotConfigured marks a provider whose credential is missing. Detected
// before any network call so the orchestrator can report "not configured"
// distinctly from "call failed".
var ErrNotConfigured = eris.New("provider not configured")

// Provider is a single answer engine. Implementations are stateless and
// safe for concurrent use; Ask makes exactly one call with no retry and
// maps every vendor failure mode to an error return.
type Provider interface {
	ID() string
	Available() bool
	Ask(ctx context.Context, question string) (string, error)
}

// ProviderSet is the explicit, caller-owned collection of adapters passed
// into the orchestrator. There is no process-wide registry.
type ProviderSet struct {
	providers []Provider
	byID      map[string]Provider
	timeout   time.Duration
}

// NewProviderSet builds the four standard adapters from configuration.
func NewProviderSet(cfg *config.Config) *ProviderSet {
	timeout := defaultAskTimeout
	if cfg.Visibility.AskTimeoutSecs > 0 {
		timeout = time.Duration(cfg.Visibility.AskTimeoutSecs) * time.Second
	}

	return NewProviderSetOf(timeout,
		newOpenAI(cfg.OpenAI, timeout),
		newAnthropic(cfg.Anthropic, timeout),
		newGemini(cfg.Gemini, timeout),
		newPerplexity(cfg.Perplexity, timeout),
	)
}

// NewProviderSetOf builds a set from explicit adapters. Used directly in
// tests with fakes.
func NewProviderSetOf(timeout time.Duration, providers ...Provider) *ProviderSet {
	if timeout <= 0 {
		timeout = defaultAskTimeout
	}
	byID := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byID[p.ID()] = p
	}
	return &ProviderSet{providers: providers, byID: byID, timeout: timeout}
}

// All returns every adapter in registration order, configured or not.
func (s *ProviderSet) All() []Provider {
	return s.providers
}

// Available returns the adapters with usable credentials.
func (s *ProviderSet) Available() []Provider {
	var out []Provider
	for _, p := range s.providers {
		if p.Available() {
			out = append(out, p)
		}
	}
	return out
}

// Get returns an adapter by id, or nil.
func (s *ProviderSet) Get(id string) Provider {
	return s.byID[id]
}

// Timeout is the per-ask deadline shared by the set's adapters.
func (s *ProviderSet) Timeout() time.Duration {
	return s.timeout
}
