package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/appycrew-ocr/internal/imaging"
)

// DefaultOCRSpaceURL is the public OCR.space parse endpoint.
const DefaultOCRSpaceURL = "https://api.ocr.space/parse/image"

// OCRSpace reads text with the OCR.space REST API.
type OCRSpace struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewOCRSpace creates the provider. An empty endpoint uses DefaultOCRSpaceURL.
func NewOCRSpace(apiKey, endpoint string) *OCRSpace {
	if endpoint == "" {
		endpoint = DefaultOCRSpaceURL
	}
	return &OCRSpace{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Name implements Provider.
func (o *OCRSpace) Name() string { return NameOCRSpace }

type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
	ErrorDetails          string          `json:"ErrorDetails"`
}

// errorText flattens ErrorMessage, which the API sends as a string or a list.
func (r ocrSpaceResponse) errorText() string {
	var list []string
	if err := json.Unmarshal(r.ErrorMessage, &list); err == nil && len(list) > 0 {
		return strings.Join(list, "; ")
	}
	var single string
	if err := json.Unmarshal(r.ErrorMessage, &single); err == nil && single != "" {
		return single
	}
	if r.ErrorDetails != "" {
		return r.ErrorDetails
	}
	return "unknown error"
}

// Recognize implements Provider.
func (o *OCRSpace) Recognize(ctx context.Context, img imaging.Image) (string, error) {
	form := url.Values{}
	form.Set("base64Image", "data:image/jpeg;base64,"+img.Base64())
	form.Set("language", "eng")
	form.Set("isOverlayRequired", "false")
	form.Set("detectOrientation", "true")
	form.Set("scale", "true")
	form.Set("OCREngine", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: NameOCRSpace, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &ProviderError{Provider: NameOCRSpace, Message: "failed to read response", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Provider: NameOCRSpace, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	var parsed ocrSpaceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ProviderError{Provider: NameOCRSpace, Message: "invalid response body", Cause: err}
	}
	if parsed.IsErroredOnProcessing {
		return "", &ProviderError{Provider: NameOCRSpace, Message: parsed.errorText()}
	}

	texts := make([]string, 0, len(parsed.ParsedResults))
	for _, r := range parsed.ParsedResults {
		texts = append(texts, r.ParsedText)
	}
	return strings.Join(texts, "\n"), nil
}
