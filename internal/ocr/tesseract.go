package ocr

// Tesseract reads text with a local Tesseract install. It is only functional in
// binaries built with the "tesseract" tag; otherwise Recognize reports ErrNotConfigured.
type Tesseract struct {
	Languages []string
}

// NewTesseract creates the provider. No languages means English.
func NewTesseract(languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{Languages: languages}
}

// Name implements Provider.
func (t *Tesseract) Name() string { return NameTesseract }
