// Package generator defines the text generation port.
package generator

import "context"

// Generator turns a prompt into generated text. Latency and failure modes
// are opaque to callers.
type Generator interface {
	// Name identifies the backend in logs and metrics (e.g. "gemini").
	Name() string

	Generate(ctx context.Context, prompt string) (string, error)
}
