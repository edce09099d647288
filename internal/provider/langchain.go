package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/minssan9/aviation-bot/internal/config"
	logx "github.com/minssan9/aviation-bot/pkg/logx"
)

// llmProvider adapts a langchaingo model to the Provider interface.
type llmProvider struct {
	name    string
	model   llms.Model
	timeout time.Duration // per-call bound from config; 0 means orchestrator default
	log     logx.Logger
}

func (p *llmProvider) Name() string { return p.name }

// CallTimeout reports the configured per-call bound; 0 means use the
// orchestrator default.
func (p *llmProvider) CallTimeout() time.Duration { return p.timeout }

func (p *llmProvider) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt,
		llms.WithTemperature(0.7),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.name, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: empty completion", p.name)
	}
	return text, nil
}

// Probe issues a minimal completion. Anything other than a clean answer
// counts as unavailable.
func (p *llmProvider) Probe(ctx context.Context) bool {
	_, err := llms.GenerateFromSinglePrompt(ctx, p.model, "ping",
		llms.WithMaxTokens(8),
	)
	if err != nil {
		p.log.Debug("provider probe failed", logx.String("provider", p.name), logx.Err(err))
	}
	return err == nil
}

// Build constructs providers from config and returns them in ascending
// priority order. Construction failures are reported per provider; one bad
// backend does not prevent the others from being built.
func Build(ctx context.Context, cfgs []config.ProviderConfig, log logx.Logger) ([]Provider, error) {
	ordered := make([]config.ProviderConfig, len(cfgs))
	copy(ordered, cfgs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	var out []Provider
	var lastErr error
	for _, pc := range ordered {
		p, err := buildOne(ctx, pc, log)
		if err != nil {
			lastErr = err
			log.Warn("provider unavailable", logx.String("provider", pc.Name), logx.Err(err))
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoProviders, lastErr)
		}
		return nil, ErrNoProviders
	}
	return out, nil
}

func buildOne(ctx context.Context, pc config.ProviderConfig, log logx.Logger) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(pc.Name))
	timeout, err := config.ParseDurationOrDefault("timeout", pc.Timeout, 0)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", name, err)
	}

	var model llms.Model
	switch name {
	case "gemini":
		opts := []googleai.Option{googleai.WithAPIKey(pc.APIKey)}
		if pc.Model != "" {
			opts = append(opts, googleai.WithDefaultModel(pc.Model))
		}
		model, err = googleai.New(ctx, opts...)
	case "anthropic":
		opts := []anthropic.Option{anthropic.WithToken(pc.APIKey)}
		if pc.Model != "" {
			opts = append(opts, anthropic.WithModel(pc.Model))
		}
		model, err = anthropic.New(opts...)
	case "openai":
		opts := []openai.Option{openai.WithToken(pc.APIKey)}
		if pc.Model != "" {
			opts = append(opts, openai.WithModel(pc.Model))
		}
		model, err = openai.New(opts...)
	case "ollama":
		var opts []ollama.Option
		if pc.Model != "" {
			opts = append(opts, ollama.WithModel(pc.Model))
		}
		if pc.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(pc.BaseURL))
		}
		model, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unknown provider %q", pc.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s: %w", name, err)
	}
	return &llmProvider{name: name, model: model, timeout: timeout, log: log}, nil
}
