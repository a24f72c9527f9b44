package types

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// OCRRequest is the body of POST /api/ocr. Older widgets send the photo as "image".
type OCRRequest struct {
	ImageBase64 string `json:"imageBase64,omitempty" validate:"required_without=Image"`
	Image       string `json:"image,omitempty" validate:"required_without=ImageBase64"`
	FormType    string `json:"formType,omitempty"`
}

// Source returns the photo, whichever field carried it.
func (r *OCRRequest) Source() string {
	if r.ImageBase64 != "" {
		return r.ImageBase64
	}
	return r.Image
}

// OCRMeta reports which providers served an OCR request.
type OCRMeta struct {
	OCRProvider string `json:"ocrProvider"`
	AIProvider  string `json:"aiProvider,omitempty"`
	AIEnabled   bool   `json:"aiEnabled"`
	FormType    string `json:"formType,omitempty"`
}

// OCRResponse is the body returned by POST /api/ocr.
type OCRResponse struct {
	Success bool          `json:"success"`
	Text    string        `json:"text"`
	RawText string        `json:"rawText,omitempty"`
	Vision  *VisionResult `json:"vision"`
	Meta    OCRMeta       `json:"meta"`
	Demo    bool          `json:"demo,omitempty"`
}

// VisionRequest is the body of POST /api/vision.
type VisionRequest struct {
	Image string `json:"image" validate:"required"`
}

// VisionResponse is the body returned by POST /api/vision. The answer's fields are
// inlined next to success and provider.
type VisionResponse struct {
	Success  bool   `json:"success"`
	Provider string `json:"provider,omitempty"`
	Message  string `json:"message,omitempty"`
	*VisionResult
}

// SpeechRequest is the body of POST /api/speech.
type SpeechRequest struct {
	Audio        string `json:"audio" validate:"required"`
	MimeType     string `json:"mimeType,omitempty"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// SpeechResponse is the body returned by POST /api/speech.
type SpeechResponse struct {
	Success      bool    `json:"success"`
	Text         string  `json:"text"`
	Confidence   float64 `json:"confidence"`
	LanguageCode string  `json:"languageCode,omitempty"`
}

// TranslateRequest is the body of POST /api/voice-translate.
type TranslateRequest struct {
	Text string `json:"text" validate:"required"`
}

// TranslateResponse is the body returned by POST /api/voice-translate. On failure Text
// echoes the input and Success is false.
type TranslateResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Error   string `json:"error,omitempty"`
}

// MapRequest is the body of POST /api/map and POST /api/fill.
type MapRequest struct {
	HTML         string        `json:"html" validate:"required"`
	FormSelector string        `json:"formSelector,omitempty"`
	Site         string        `json:"site,omitempty"`
	Text         string        `json:"text,omitempty"`
	Vision       *VisionResult `json:"vision,omitempty"`
	Transcript   string        `json:"transcript,omitempty"`
	// Accept lists the mapping indices to apply; nil applies every mapping.
	Accept []int `json:"accept,omitempty" validate:"omitempty,dive,gte=0"`
}

// Input returns the recognized input carried by the request.
func (r *MapRequest) Input() RecognizedInput {
	return RecognizedInput{RawText: r.Text, Vision: r.Vision, Transcript: r.Transcript}
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates the OCRRequest using the validator.
func (r *OCRRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the VisionRequest using the validator.
func (r *VisionRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SpeechRequest using the validator.
func (r *SpeechRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the TranslateRequest using the validator.
func (r *TranslateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the MapRequest using the validator.
func (r *MapRequest) Validate() error {
	return validate.Struct(r)
}
