// Package pipeline runs the capture step of a scan: one photo goes to the OCR chain
// and the vision chain in parallel and comes back as a RecognizedInput.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/appycrew-ocr/internal/imaging"
	"github.com/jonathan/appycrew-ocr/internal/llm"
	"github.com/jonathan/appycrew-ocr/internal/ocr"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

// Capture step names reported through progress events.
const (
	StepDecode = "decode"
	StepResize = "resize"
	StepOCR    = "ocr"
	StepVision = "vision"
)

// ProgressEvent represents a progress update during a capture
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// ProgressCallback is called when capture progress occurs
type ProgressCallback func(event ProgressEvent)

// TextReader is the OCR side of a capture (*ocr.Chain).
type TextReader interface {
	Recognize(ctx context.Context, img imaging.Image) (ocr.Result, error)
}

// Analyzer is the AI vision side of a capture (*vision.Chain).
type Analyzer interface {
	Configured() bool
	Analyze(ctx context.Context, img imaging.Image, formType string) (*types.VisionResult, llm.Provider, error)
}

// Capture holds the providers a photo scan uses.
type Capture struct {
	OCR        TextReader
	Vision     Analyzer
	MaxWidth   int
	OnProgress ProgressCallback
}

// Result is everything learned from one photo.
type Result struct {
	Input  types.RecognizedInput `json:"input"`
	OCR    ocr.Result            `json:"ocr"`
	Vision *types.VisionResult   `json:"vision"`
	Meta   types.OCRMeta         `json:"meta"`
}

func (c *Capture) emit(step, format string, args ...any) {
	if c.OnProgress != nil {
		c.OnProgress(ProgressEvent{Step: step, Message: fmt.Sprintf(format, args...)})
	}
}

// DataURL decodes a data URL (or raw base64) and runs the capture.
func (c *Capture) DataURL(ctx context.Context, dataURL, formType string) (*Result, error) {
	img, err := imaging.DecodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	c.emit(StepDecode, "decoded %s, %d bytes", img.MIMEType, len(img.Data))
	return c.Run(ctx, img, formType)
}

// Run downscales the image and queries OCR and vision concurrently. A failing channel
// contributes nothing; the capture fails only when OCR failed and vision has no answer.
func (c *Capture) Run(ctx context.Context, img imaging.Image, formType string) (*Result, error) {
	if small, err := imaging.Downscale(img, c.MaxWidth); err != nil {
		log.Printf("[capture] downscale skipped: %v", err)
	} else if len(small.Data) != len(img.Data) {
		c.emit(StepResize, "resized to %d bytes", len(small.Data))
		img = small
	}

	res := &Result{Meta: types.OCRMeta{FormType: formType}}
	aiEnabled := c.Vision != nil && c.Vision.Configured()
	res.Meta.AIEnabled = aiEnabled

	g, gCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	var ocrErr error

	g.Go(func() error {
		out, err := c.OCR.Recognize(gCtx, img)
		if err != nil {
			log.Printf("[ocr] no text: %v", err)
			mu.Lock()
			ocrErr = err
			mu.Unlock()
			return nil
		}
		c.emit(StepOCR, "%s read %d characters", out.Provider, len(out.Text))
		mu.Lock()
		res.OCR = out
		mu.Unlock()
		return nil
	})

	if aiEnabled {
		g.Go(func() error {
			v, provider, err := c.Vision.Analyze(gCtx, img, formType)
			if err != nil {
				log.Printf("[vision] skipped: %v", err)
				return nil
			}
			c.emit(StepVision, "%s identified %q", provider, v.Item)
			mu.Lock()
			res.Vision = v
			res.Meta.AIProvider = string(provider)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ocrErr != nil && res.Vision == nil {
		return nil, fmt.Errorf("ocr failed: %w", ocrErr)
	}

	res.Meta.OCRProvider = res.OCR.Provider
	res.Input = types.RecognizedInput{RawText: res.OCR.Text, Vision: res.Vision}
	return res, nil
}
