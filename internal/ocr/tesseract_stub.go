//go:build !tesseract

package ocr

import (
	"context"

	"github.com/jonathan/appycrew-ocr/internal/imaging"
)

// TesseractAvailable reports whether this binary links Tesseract.
const TesseractAvailable = false

// Recognize implements Provider.
func (t *Tesseract) Recognize(context.Context, imaging.Image) (string, error) {
	return "", &ProviderError{Provider: NameTesseract, Message: "built without tesseract support", Cause: ErrNotConfigured}
}
