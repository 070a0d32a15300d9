package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/antoniostano/memora/internal/memory"
)

const systemPrompt = `You are a helpful and friendly AI assistant in a chat room.

Key guidelines:
- Be conversational and engaging
- Remember context from previous messages when provided
- Keep responses concise (1-3 sentences typically)
- Be helpful and try to answer questions accurately
- If you don't know something, admit it honestly
- Use a friendly, approachable tone
- You can use emojis sparingly to add personality
- If someone greets you, greet them back warmly

You have access to conversation history to provide contextual responses.`

// Prompt context is capped at the last 5 exchanges to bound token usage.
const promptHistoryEntries = 10

// Bounded output keeps room replies short; 0.7 balances variety against
// consistency.
const (
	maxOutputTokens = 150
	temperature     = float32(0.7)
)

// GeminiGenerator produces replies through the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini API key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) Generate(ctx context.Context, message string, history []memory.ContextEntry) (string, error) {
	contents := promptContents(message, history)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		MaxOutputTokens:   maxOutputTokens,
		Temperature:       genai.Ptr(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned empty text")
	}
	return text, nil
}

// promptContents lays out the recent history as alternating user/model turns
// followed by the new message.
func promptContents(message string, history []memory.ContextEntry) []*genai.Content {
	if len(history) > promptHistoryEntries {
		history = history[len(history)-promptHistoryEntries:]
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, entry := range history {
		role := genai.Role(genai.RoleUser)
		if entry.Role == memory.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(entry.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))
	return contents
}

// Embedder generates embedding vectors on the same client; the postgres
// memory store uses it to fill the pgvector column.
type Embedder struct {
	client *genai.Client
}

func (g *GeminiGenerator) Embedder() *Embedder {
	return &Embedder{client: g.client}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Models.EmbedContent(ctx, "text-embedding-004", genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return resp.Embeddings[0].Values, nil
}
