// Package headline defines generated headlines, their versions and the
// generation request.
package headline

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Strob0t/HeadlineForge/internal/domain"
)

// EventGenerated is the domain event emitted after a headline is persisted.
const EventGenerated = "headline.generated"

// Style selects the tone of the generated copy.
type Style string

const (
	StyleWhite Style = "white"
	StyleBlack Style = "black"
)

const maxBriefingLength = 2000

// Headline is an immutable generation result.
type Headline struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Content   string    `json:"content"`
	Niche     string    `json:"niche"`
	Style     Style     `json:"style"`
	Score     int       `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
	CreatedAt time.Time `json:"created_at"`
}

// Version is an edited variant of a headline, stored as a separate record.
type Version struct {
	ID         string    `json:"id"`
	HeadlineID string    `json:"headline_id"`
	Content    string    `json:"content"`
	Label      string    `json:"label,omitempty"`
	Score      int       `json:"score"`
	Breakdown  Breakdown `json:"breakdown"`
	CreatedAt  time.Time `json:"created_at"`
}

// GenerateRequest is the payload of a generation call.
type GenerateRequest struct {
	Niche    string `json:"niche"`
	Briefing string `json:"briefing"`
	Style    Style  `json:"style"`
}

// Normalize trims fields and applies the default style.
func (r *GenerateRequest) Normalize() {
	r.Niche = strings.TrimSpace(r.Niche)
	r.Briefing = strings.TrimSpace(r.Briefing)
	if r.Style == "" {
		r.Style = StyleWhite
	}
}

// Validate checks the request fields. Call Normalize first.
func (r *GenerateRequest) Validate() error {
	if r.Niche == "" {
		return fmt.Errorf("%w: niche is required", domain.ErrValidation)
	}
	if r.Briefing == "" {
		return fmt.Errorf("%w: briefing is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(r.Briefing) > maxBriefingLength {
		return fmt.Errorf("%w: briefing must be at most %d characters", domain.ErrValidation, maxBriefingLength)
	}
	if r.Style != StyleWhite && r.Style != StyleBlack {
		return fmt.Errorf("%w: style must be %q or %q", domain.ErrValidation, StyleWhite, StyleBlack)
	}
	return nil
}

// Result is returned to the caller of a generation.
type Result struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Score     int       `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// CreateVersionRequest is the payload for adding a version to a headline.
type CreateVersionRequest struct {
	Content string `json:"content"`
	Label   string `json:"label,omitempty"`
}

// Validate checks the request fields.
func (r *CreateVersionRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	return nil
}
