// Package translate turns voice notes in any language into concise English before
// they reach the transcript parser.
package translate

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/jonathan/appycrew-ocr/internal/llm"
	"github.com/jonathan/appycrew-ocr/internal/prompts"
)

// ErrNotConfigured is returned when no model is available.
var ErrNotConfigured = errors.New("translation not configured")

// Generator is the part of llm.Client translation needs.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

// Translator translates through a language model.
type Translator struct {
	gen Generator
}

// New creates a Translator. A nil generator makes every call echo its input.
func New(gen Generator) *Translator {
	return &Translator{gen: gen}
}

// Translate returns the English text. On any failure it returns the original text
// together with the error so callers can carry on with it.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if t == nil || t.gen == nil {
		return text, ErrNotConfigured
	}

	out, err := t.gen.GenerateContent(ctx, prompts.Translate(text), llm.TierLite)
	if err != nil {
		log.Printf("[translate] failed: %v", err)
		return text, err
	}
	out = strings.Trim(strings.TrimSpace(out), `"`)
	if out == "" {
		return text, nil
	}
	return out, nil
}
