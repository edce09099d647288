package provider

import (
	"context"
	"errors"
	"sync"
	"testing"

	logx "github.com/minssan9/aviation-bot/pkg/logx"
)

type fakeProvider struct {
	name string
	text string
	err  error
	up   bool

	mu    sync.Mutex
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeProvider) Probe(ctx context.Context) bool { return f.up }

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testPrompt(topic, area string) string { return topic + "/" + area }

func TestGenerateFallsThroughInOrder(t *testing.T) {
	t.Parallel()

	a := &fakeProvider{name: "a", err: errors.New("a down")}
	b := &fakeProvider{name: "b", err: errors.New("b down")}
	c := &fakeProvider{name: "c", text: "generated text"}

	o := NewOrchestrator([]Provider{a, b, c}, testPrompt, Options{}, logx.Nop())
	got, err := o.Generate(context.Background(), "항법", "VOR")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got.ProviderName != "c" {
		t.Errorf("ProviderName = %q, want c", got.ProviderName)
	}
	if got.RawText != "generated text" {
		t.Errorf("RawText = %q", got.RawText)
	}
	if a.callCount() != 1 || b.callCount() != 1 || c.callCount() != 1 {
		t.Errorf("calls = %d/%d/%d, want exactly one attempt each",
			a.callCount(), b.callCount(), c.callCount())
	}
}

func TestGenerateFirstSuccessShortCircuits(t *testing.T) {
	t.Parallel()

	a := &fakeProvider{name: "a", text: "from a"}
	b := &fakeProvider{name: "b", text: "from b"}

	o := NewOrchestrator([]Provider{a, b}, testPrompt, Options{}, logx.Nop())
	got, err := o.Generate(context.Background(), "t", "k")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got.ProviderName != "a" {
		t.Errorf("ProviderName = %q, want a", got.ProviderName)
	}
	if b.callCount() != 0 {
		t.Errorf("b was called %d times, want 0", b.callCount())
	}
}

func TestGenerateAllExhausted(t *testing.T) {
	t.Parallel()

	lastErr := errors.New("b exploded")
	a := &fakeProvider{name: "a", err: errors.New("a down")}
	b := &fakeProvider{name: "b", err: lastErr}

	o := NewOrchestrator([]Provider{a, b}, testPrompt, Options{}, logx.Nop())
	_, err := o.Generate(context.Background(), "t", "k")
	if !errors.Is(err, ErrAllExhausted) {
		t.Fatalf("Generate() error = %v, want ErrAllExhausted", err)
	}
	if !errors.Is(err, lastErr) {
		t.Errorf("error should wrap the last provider error, got %v", err)
	}
}

func TestGenerateNoProviders(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(nil, testPrompt, Options{}, logx.Nop())
	_, err := o.Generate(context.Background(), "t", "k")
	if !errors.Is(err, ErrNoProviders) {
		t.Fatalf("Generate() error = %v, want ErrNoProviders", err)
	}
}

func TestGenerateStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	a := &fakeProvider{name: "a", err: errors.New("a down")}
	b := &fakeProvider{name: "b", text: "never reached"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator([]Provider{a, b}, testPrompt, Options{}, logx.Nop())
	_, err := o.Generate(ctx, "t", "k")
	if !errors.Is(err, ErrAllExhausted) {
		t.Fatalf("Generate() error = %v, want ErrAllExhausted", err)
	}
	if b.callCount() != 0 {
		t.Errorf("b was called after cancellation")
	}
}

func TestProbeAllIndependent(t *testing.T) {
	t.Parallel()

	a := &fakeProvider{name: "a", up: true}
	b := &fakeProvider{name: "b", up: false}

	o := NewOrchestrator([]Provider{a, b}, testPrompt, Options{}, logx.Nop())
	got := o.ProbeAll(context.Background())
	if !got["a"] || got["b"] {
		t.Errorf("ProbeAll() = %v, want a=true b=false", got)
	}
}

func TestProvidersOrder(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator([]Provider{
		&fakeProvider{name: "first"},
		&fakeProvider{name: "second"},
	}, testPrompt, Options{}, logx.Nop())
	names := o.Providers()
	if len(names) != 2 || names[0] != "first" || names[1] != "second" {
		t.Errorf("Providers() = %v", names)
	}
}
