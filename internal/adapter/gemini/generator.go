// Package gemini generates headline text with Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Strob0t/HeadlineForge/internal/resilience"
)

// ErrNoText is returned when the model answers without a text part.
var ErrNoText = errors.New("gemini: response contains no text")

// contentGenerator is satisfied by *genai.GenerativeModel.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Generator calls a Gemini model.
type Generator struct {
	client  *genai.Client
	model   contentGenerator
	breaker *resilience.Breaker
}

// New dials the Gemini API with the given key and model name.
func New(ctx context.Context, apiKey, model string) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Generator{client: client, model: client.GenerativeModel(model)}, nil
}

// SetBreaker guards every call with b.
func (g *Generator) SetBreaker(b *resilience.Breaker) {
	g.breaker = b
}

// Name identifies the backend.
func (g *Generator) Name() string { return "gemini" }

// Generate returns the concatenated text parts of the first candidate.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return resilience.Do(g.breaker, func() (string, error) {
		resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", fmt.Errorf("gemini generate: %w", err)
		}
		return firstText(resp)
	})
}

// Close releases the underlying client.
func (g *Generator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrNoText
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			return text, nil
		}
	}
	return "", ErrNoText
}
