// Package vision asks AI vision models for structured inventory facts about a photo.
package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/appycrew-ocr/internal/imaging"
	"github.com/jonathan/appycrew-ocr/internal/llm"
	"github.com/jonathan/appycrew-ocr/internal/prompts"
	"github.com/jonathan/appycrew-ocr/internal/schemas"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

var (
	// ErrNotConfigured is returned when no vision model is set up.
	ErrNotConfigured = errors.New("vision API not configured")
	// ErrFailed is returned when every configured model failed.
	ErrFailed = errors.New("vision processing failed")
)

// ParseError is an answer that could not be turned into a VisionResult.
type ParseError struct {
	Provider llm.Provider
	Raw      string
	Cause    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s vision answer: %v", e.Provider, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ImageAnalyzer is the part of llm.Client a vision chain needs.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, prompt string, img llm.Image) (string, error)
	Provider() llm.Provider
}

// Chain tries vision models in order.
type Chain struct {
	analyzers []ImageAnalyzer
}

// NewChain creates a chain; nil analyzers are skipped.
func NewChain(analyzers ...ImageAnalyzer) *Chain {
	c := &Chain{}
	for _, a := range analyzers {
		if a != nil {
			c.analyzers = append(c.analyzers, a)
		}
	}
	return c
}

// Configured reports whether any model is set up.
func (c *Chain) Configured() bool {
	return c != nil && len(c.analyzers) > 0
}

// Analyze returns the first valid answer and the provider that gave it.
func (c *Chain) Analyze(ctx context.Context, img imaging.Image, formType string) (*types.VisionResult, llm.Provider, error) {
	if !c.Configured() {
		return nil, "", ErrNotConfigured
	}

	prompt := prompts.Vision(formType)
	var errs []error
	for _, a := range c.analyzers {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		raw, err := a.AnalyzeImage(ctx, prompt, llm.Image{MIMEType: img.MIMEType, Data: img.Data})
		if err != nil {
			log.Printf("[vision] %s failed: %v", a.Provider(), err)
			errs = append(errs, err)
			continue
		}
		result, err := Parse(a.Provider(), raw)
		if err != nil {
			log.Printf("[vision] %s: %v", a.Provider(), err)
			errs = append(errs, err)
			continue
		}
		return result, a.Provider(), nil
	}
	return nil, "", fmt.Errorf("%w: %w", ErrFailed, errors.Join(errs...))
}

// answer accepts the American spelling some models use.
type answer struct {
	types.VisionResult
	Color string `json:"color"`
}

// Parse validates and decodes a model's JSON answer.
func Parse(provider llm.Provider, raw string) (*types.VisionResult, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.ValidateVision(cleaned); err != nil {
		return nil, &ParseError{Provider: provider, Raw: raw, Cause: err}
	}
	var a answer
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return nil, &ParseError{Provider: provider, Raw: raw, Cause: err}
	}
	if a.Colour == "" {
		a.Colour = a.Color
	}
	result := a.VisionResult
	return &result, nil
}
