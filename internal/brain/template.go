package brain

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/antoniostano/memora/internal/memory"
)

// templateRule pairs a predicate over the lowercased message with a reply
// producer. Rules are evaluated top to bottom; the first match wins.
type templateRule struct {
	matches func(lower string) bool
	render  func(message string) string
}

// TemplateGenerator serves deterministic keyword-routed replies without any
// network access. Every template echoes the original message verbatim so the
// sender can tell their input was received.
type TemplateGenerator struct {
	rules []templateRule

	// rng is shared across concurrent message goroutines.
	mu  sync.Mutex
	rng *rand.Rand
}

func NewTemplateGenerator() *TemplateGenerator {
	return newTemplateGenerator(rand.New(rand.NewSource(rand.Int63())))
}

func newTemplateGenerator(rng *rand.Rand) *TemplateGenerator {
	return &TemplateGenerator{
		rng: rng,
		rules: []templateRule{
			{
				matches: containsAnyWord("hello", "hi", "hey", "greetings"),
				render: func(m string) string {
					return fmt.Sprintf("Hello! I received your greeting: '%s'. I'm your AI assistant, currently running in fallback mode, but I'm here to help!", m)
				},
			},
			{
				matches: containsAnyWord("help", "assist", "support"),
				render: func(m string) string {
					return fmt.Sprintf("I'd be happy to help! You asked: '%s'. While my full AI capabilities are being restored, I can still provide basic assistance.", m)
				},
			},
			{
				matches: containsAnyWord("thank", "thanks"),
				render: func(m string) string {
					return fmt.Sprintf("You're welcome! I'm glad I could help. You said: '%s'. I'm working on getting my advanced AI features online soon!", m)
				},
			},
			{
				matches: func(lower string) bool { return strings.Contains(lower, "?") },
				render: func(m string) string {
					return fmt.Sprintf("That's a great question: '%s'. I'm currently in simplified response mode, but I'm working on providing better answers soon!", m)
				},
			},
		},
	}
}

var genericTemplates = []string{
	"Thanks for your message: '%s'. I'm currently running in fallback mode, but I'm here to help!",
	"I received your message: '%s'. My AI service is temporarily simplified, but I can still chat with you!",
	"I understand you said: '%s'. I'm your AI assistant, working on restoring full capabilities!",
	"Interesting message: '%s'. I'm processing in basic mode while technical issues are resolved!",
}

func (g *TemplateGenerator) Name() string { return "template" }

func (g *TemplateGenerator) Generate(_ context.Context, message string, _ []memory.ContextEntry) (string, error) {
	lower := strings.ToLower(message)
	for _, rule := range g.rules {
		if rule.matches(lower) {
			return rule.render(message), nil
		}
	}
	g.mu.Lock()
	tmpl := genericTemplates[g.rng.Intn(len(genericTemplates))]
	g.mu.Unlock()
	return fmt.Sprintf(tmpl, message), nil
}

// containsAnyWord matches whole words only, so "hi" does not fire on "this"
// and "assist" does not fire on the bot's own name.
func containsAnyWord(words ...string) func(string) bool {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return func(lower string) bool {
		for _, field := range strings.FieldsFunc(lower, func(r rune) bool {
			return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
		}) {
			field = strings.Trim(field, "'")
			if _, ok := set[field]; ok {
				return true
			}
		}
		return false
	}
}
