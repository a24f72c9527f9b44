//go:build tesseract

package ocr

import (
	"context"

	"github.com/jonathan/appycrew-ocr/internal/imaging"
	"github.com/otiai10/gosseract/v2"
)

// TesseractAvailable reports whether this binary links Tesseract.
const TesseractAvailable = true

// Recognize implements Provider.
func (t *Tesseract) Recognize(ctx context.Context, img imaging.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.Languages...); err != nil {
		return "", &ProviderError{Provider: NameTesseract, Message: "set language", Cause: err}
	}
	// Labels and stickers are sparse; let Tesseract find the blocks.
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", &ProviderError{Provider: NameTesseract, Message: "set page segmentation", Cause: err}
	}
	if err := client.SetImageFromBytes(img.Data); err != nil {
		return "", &ProviderError{Provider: NameTesseract, Message: "load image", Cause: err}
	}
	text, err := client.Text()
	if err != nil {
		return "", &ProviderError{Provider: NameTesseract, Message: "recognize", Cause: err}
	}
	return text, nil
}
