// Package ocr turns photos into text through a chain of OCR providers. The first
// provider that answers wins; a demo provider keeps the widget usable when no
// provider is configured.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/appycrew-ocr/internal/imaging"
	"github.com/jonathan/appycrew-ocr/internal/textnorm"
)

// Provider names reported in responses.
const (
	NameGoogleVision = "google-vision"
	NameOCRSpace     = "ocr-space"
	NameTesseract    = "tesseract"
	NameDemo         = "demo"
)

var (
	// ErrNotConfigured is returned when a chain has no usable provider.
	ErrNotConfigured = errors.New("no OCR service configured")
	// ErrAllFailed is returned when every configured provider failed.
	ErrAllFailed = errors.New("all OCR providers failed")
)

// Provider reads the text in an image.
type Provider interface {
	Name() string
	Recognize(ctx context.Context, img imaging.Image) (string, error)
}

// ProviderError is a failed provider call.
type ProviderError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Result is the outcome of a chain run.
type Result struct {
	// Text is RawText with noise phrases removed and whitespace normalized.
	Text     string `json:"text"`
	RawText  string `json:"rawText"`
	Provider string `json:"provider"`
	Demo     bool   `json:"demo,omitempty"`
}

// Chain tries providers in order.
type Chain struct {
	providers  []Provider
	fallback   Provider
	normalizer *textnorm.Normalizer
}

// NewChain creates a chain. fallback, usually Demo, answers only when providers is
// empty; it never hides a failure of a configured provider.
func NewChain(normalizer *textnorm.Normalizer, fallback Provider, providers ...Provider) *Chain {
	if normalizer == nil {
		normalizer = textnorm.Default()
	}
	var live []Provider
	for _, p := range providers {
		if p != nil {
			live = append(live, p)
		}
	}
	return &Chain{providers: live, fallback: fallback, normalizer: normalizer}
}

// Providers returns the configured provider names in order.
func (c *Chain) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Configured reports whether at least one real provider is set up.
func (c *Chain) Configured() bool {
	return len(c.providers) > 0
}

// Recognize runs the chain.
func (c *Chain) Recognize(ctx context.Context, img imaging.Image) (Result, error) {
	if len(c.providers) == 0 {
		if c.fallback == nil {
			return Result{}, ErrNotConfigured
		}
		raw, err := c.fallback.Recognize(ctx, img)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: raw, RawText: raw, Provider: c.fallback.Name(), Demo: true}, nil
	}

	var errs []error
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		raw, err := p.Recognize(ctx, img)
		if err != nil {
			log.Printf("[ocr] %s failed: %v", p.Name(), err)
			errs = append(errs, err)
			continue
		}
		log.Printf("[ocr] %s returned %d characters", p.Name(), len(raw))
		return Result{
			Text:     c.normalizer.Clean(raw),
			RawText:  raw,
			Provider: p.Name(),
		}, nil
	}
	return Result{}, fmt.Errorf("%w: %w", ErrAllFailed, errors.Join(errs...))
}

// DemoText is what the demo provider reads from every image.
const DemoText = "Demo mode: no OCR provider is configured.\n" +
	"Set GOOGLE_VISION_API_KEY or OCR_SPACE_API_KEY to enable real OCR."

// Demo answers with DemoText.
type Demo struct{}

// Name implements Provider.
func (Demo) Name() string { return NameDemo }

// Recognize implements Provider.
func (Demo) Recognize(context.Context, imaging.Image) (string, error) {
	return DemoText, nil
}

// IsDemoText reports whether text is the demo placeholder.
func IsDemoText(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "Demo mode:")
}
