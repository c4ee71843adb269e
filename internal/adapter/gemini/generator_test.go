package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"

	"github.com/Strob0t/HeadlineForge/internal/resilience"
)

type fakeModel struct {
	resp  *genai.GenerateContentResponse
	err   error
	calls int
	got   []genai.Part
}

func (f *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.got = parts
	return f.resp, f.err
}

func response(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestGenerate_JoinsTextParts(t *testing.T) {
	m := &fakeModel{resp: response(genai.Text("Descubra o "), genai.Text("Segredo"))}
	g := &Generator{model: m}

	got, err := g.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Descubra o Segredo" {
		t.Fatalf("Generate = %q", got)
	}
	if len(m.got) != 1 || m.got[0] != genai.Text("prompt") {
		t.Fatalf("unexpected prompt parts: %v", m.got)
	}
}

func TestGenerate_NoText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil response", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{"blank text", response(genai.Text("   "))},
		{"non-text part", response(genai.Blob{MIMEType: "image/png"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Generator{model: &fakeModel{resp: tt.resp}}
			_, err := g.Generate(context.Background(), "p")
			if !errors.Is(err, ErrNoText) {
				t.Fatalf("expected ErrNoText, got %v", err)
			}
		})
	}
}

func TestGenerate_BreakerShortCircuits(t *testing.T) {
	m := &fakeModel{err: errors.New("quota exhausted")}
	g := &Generator{model: m}
	g.SetBreaker(resilience.NewBreaker(1, time.Minute))

	_, _ = g.Generate(context.Background(), "p")
	_, err := g.Generate(context.Background(), "p")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if m.calls != 1 {
		t.Fatalf("expected 1 model call, got %d", m.calls)
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New(context.Background(), "", "gemini-1.5-flash"); err == nil {
		t.Fatal("expected error without api key")
	}
}
