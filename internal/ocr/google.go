package ocr

import (
	"context"
	"fmt"

	"github.com/jonathan/appycrew-ocr/internal/imaging"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// GoogleVision reads text with the Cloud Vision images:annotate API.
type GoogleVision struct {
	svc *vision.Service
}

// NewGoogleVision creates the provider. Pass option.WithAPIKey or credentials.
func NewGoogleVision(ctx context.Context, opts ...option.ClientOption) (*GoogleVision, error) {
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision service: %w", err)
	}
	return &GoogleVision{svc: svc}, nil
}

// Name implements Provider.
func (g *GoogleVision) Name() string { return NameGoogleVision }

// Recognize asks for both text and document detection and prefers the full document
// text when the API returns it.
func (g *GoogleVision) Recognize(ctx context.Context, img imaging.Image) (string, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: img.Base64()},
			Features: []*vision.Feature{
				{Type: "TEXT_DETECTION", MaxResults: 10},
				{Type: "DOCUMENT_TEXT_DETECTION", MaxResults: 1},
			},
		}},
	}

	resp, err := g.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", &ProviderError{Provider: NameGoogleVision, Message: "annotate failed", Cause: err}
	}
	if len(resp.Responses) == 0 {
		return "", nil
	}

	r := resp.Responses[0]
	if r.Error != nil && r.Error.Code != 0 {
		return "", &ProviderError{Provider: NameGoogleVision, Message: fmt.Sprintf("code %d: %s", r.Error.Code, r.Error.Message)}
	}
	if r.FullTextAnnotation != nil && r.FullTextAnnotation.Text != "" {
		return r.FullTextAnnotation.Text, nil
	}
	if len(r.TextAnnotations) > 0 {
		return r.TextAnnotations[0].Description, nil
	}
	return "", nil
}
