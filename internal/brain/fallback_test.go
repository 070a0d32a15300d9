package brain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/antoniostano/memora/internal/memory"
)

type slowGenerator struct {
	delay time.Duration
	text  string
}

func (g slowGenerator) Name() string { return "slow" }

func (g slowGenerator) Generate(ctx context.Context, message string, _ []memory.ContextEntry) (string, error) {
	select {
	case <-time.After(g.delay):
		return g.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestFallbackGeneratorPrimarySuccess(t *testing.T) {
	var source string
	chain := NewFallbackGenerator(NewMockGenerator(), NewTemplateGenerator(), time.Second)
	chain.onReply = func(s string) { source = s }

	got, err := chain.Generate(context.Background(), "hi", nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "I heard you: hi" {
		t.Errorf("Generate() = %q, want primary reply", got)
	}
	if source != "mock" {
		t.Errorf("served source = %q, want mock", source)
	}
}

func TestFallbackGeneratorPrimaryError(t *testing.T) {
	var source string
	failing := &MockGenerator{Err: errors.New("backend down")}
	chain := NewFallbackGenerator(failing, NewTemplateGenerator(), time.Second)
	chain.onReply = func(s string) { source = s }

	got, err := chain.Generate(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("Generate() error = %v, fallback must absorb primary failure", err)
	}
	if !strings.Contains(got, "hello") {
		t.Errorf("Generate() = %q, want templated reply echoing the input", got)
	}
	if source != "template" {
		t.Errorf("served source = %q, want template", source)
	}
}

func TestFallbackGeneratorTimeout(t *testing.T) {
	chain := NewFallbackGenerator(
		slowGenerator{delay: time.Second, text: "too late"},
		NewTemplateGenerator(),
		20*time.Millisecond,
	)

	start := time.Now()
	got, err := chain.Generate(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got == "too late" {
		t.Fatalf("Generate() returned the timed-out primary reply")
	}
	if !strings.Contains(got, "hello") {
		t.Errorf("Generate() = %q, want templated reply", got)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Generate() took %v, timeout was not enforced", elapsed)
	}
}

func TestNewGeneratorModes(t *testing.T) {
	ctx := context.Background()

	g, err := NewGenerator(ctx, Config{Mode: "template"})
	if err != nil {
		t.Fatalf("NewGenerator(template) error = %v", err)
	}
	if got, _ := g.Generate(ctx, "hello", nil); !strings.Contains(got, "hello") {
		t.Errorf("template generator reply = %q, want input echoed", got)
	}

	if _, err := NewGenerator(ctx, Config{Mode: "banana"}); err == nil {
		t.Fatalf("NewGenerator(banana) should fail")
	}

	// auto without an API key must degrade to templates, not error.
	g, err = NewGenerator(ctx, Config{Mode: "auto"})
	if err != nil {
		t.Fatalf("NewGenerator(auto, no key) error = %v", err)
	}
	if g.Name() != "template" {
		t.Errorf("auto mode without key selected %q, want template", g.Name())
	}
}

func TestNewGeneratorCountsReplies(t *testing.T) {
	ctx := context.Background()
	var sources []string
	g, err := NewGenerator(ctx, Config{
		Mode:    "mock",
		OnReply: func(s string) { sources = append(sources, s) },
	})
	if err != nil {
		t.Fatalf("NewGenerator(mock) error = %v", err)
	}
	if _, err := g.Generate(ctx, "ping", nil); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(sources) != 1 || sources[0] != "mock" {
		t.Fatalf("reply sources = %v, want [mock]", sources)
	}
}
