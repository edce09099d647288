package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	logx "github.com/minssan9/aviation-bot/pkg/logx"
)

// Options tune per-call bounds. Zero values fall back to defaults.
type Options struct {
	// CallTimeout bounds one provider's Generate call. A timed-out provider
	// is treated like any other failed provider: the next one is tried.
	CallTimeout time.Duration
	// ProbeTimeout bounds one provider's Probe call.
	ProbeTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.CallTimeout <= 0 {
		o.CallTimeout = 60 * time.Second
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = 10 * time.Second
	}
	return o
}

// Orchestrator tries providers in priority order until one succeeds.
// It holds no mutable state beyond its fixed provider list and is safe to
// share across concurrent callers.
type Orchestrator struct {
	providers []Provider // ascending priority, fixed at construction
	promptFn  func(topic, knowledgeArea string) string
	opt       Options
	log       logx.Logger
}

// NewOrchestrator builds an orchestrator over an already priority-ordered
// provider list. promptFn renders the request prompt; it must not be nil.
func NewOrchestrator(providers []Provider, promptFn func(topic, knowledgeArea string) string, opt Options, log logx.Logger) *Orchestrator {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Orchestrator{
		providers: providers,
		promptFn:  promptFn,
		opt:       opt.withDefaults(),
		log:       log,
	}
}

// Providers returns the configured provider names in priority order.
func (o *Orchestrator) Providers() []string {
	names := make([]string, len(o.providers))
	for i, p := range o.providers {
		names[i] = p.Name()
	}
	return names
}

// Generate asks each provider in priority order for quiz text. Each provider
// gets exactly one attempt per call; a backend that just failed or hit a
// rate limit is assumed to fail again within the same request, so retrying
// it only burns time the caller gave us. The first success wins.
func (o *Orchestrator) Generate(ctx context.Context, topic, knowledgeArea string) (GeneratedContent, error) {
	if len(o.providers) == 0 {
		return GeneratedContent{}, ErrNoProviders
	}

	prompt := o.promptFn(topic, knowledgeArea)

	var last error
	for _, p := range o.providers {
		start := time.Now()
		callCtx, cancel := context.WithTimeout(ctx, o.callTimeout(p))
		text, err := p.Generate(callCtx, prompt)
		cancel()
		if err != nil {
			last = err
			o.log.Warn("provider failed, trying next",
				logx.String("provider", p.Name()),
				logx.Duration("dur", time.Since(start)),
				logx.Err(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		o.log.Info("content generated",
			logx.String("provider", p.Name()),
			logx.String("topic", topic),
			logx.Duration("dur", time.Since(start)))
		return GeneratedContent{
			RawText:      text,
			ProviderName: p.Name(),
			GeneratedAt:  time.Now(),
		}, nil
	}

	if last == nil {
		last = ctx.Err()
	}
	return GeneratedContent{}, fmt.Errorf("%w: last error: %w", ErrAllExhausted, last)
}

// callTimeouter is implemented by providers that carry their own
// configured per-call bound.
type callTimeouter interface {
	CallTimeout() time.Duration
}

// callTimeout resolves the Generate bound for one provider: a configured
// per-provider timeout overrides the orchestrator default.
func (o *Orchestrator) callTimeout(p Provider) time.Duration {
	if ct, ok := p.(callTimeouter); ok {
		if d := ct.CallTimeout(); d > 0 {
			return d
		}
	}
	return o.opt.CallTimeout
}

// ProbeAll checks every provider's availability independently. A probe
// failure (or panic) in one provider never hides the result of another,
// and probing has no effect on the ordering Generate uses.
func (o *Orchestrator) ProbeAll(ctx context.Context) map[string]bool {
	out := make(map[string]bool, len(o.providers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, p := range o.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			ok := o.probeOne(ctx, p)
			mu.Lock()
			out[p.Name()] = ok
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	return out
}

func (o *Orchestrator) probeOne(ctx context.Context, p Provider) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Warn("provider probe panicked", logx.String("provider", p.Name()), logx.Any("panic", r))
			ok = false
		}
	}()
	probeCtx, cancel := context.WithTimeout(ctx, o.opt.ProbeTimeout)
	defer cancel()
	return p.Probe(probeCtx)
}
