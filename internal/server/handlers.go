package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"

	"github.com/jonathan/appycrew-ocr/internal/apply"
	"github.com/jonathan/appycrew-ocr/internal/form"
	"github.com/jonathan/appycrew-ocr/internal/imaging"
	"github.com/jonathan/appycrew-ocr/internal/mapping"
	"github.com/jonathan/appycrew-ocr/internal/pipeline"
	"github.com/jonathan/appycrew-ocr/internal/server/middleware"
	"github.com/jonathan/appycrew-ocr/internal/session"
	"github.com/jonathan/appycrew-ocr/internal/speech"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

// Default values for /api/speech.
const (
	DefaultAudioMimeType = "audio/webm"
)

// MapResponse is the body returned by POST /api/map.
type MapResponse struct {
	Success  bool                   `json:"success"`
	Record   *types.ExtractedRecord `json:"record"`
	Mappings []mapping.Mapping      `json:"mappings"`
	Form     *form.Form             `json:"form,omitempty"`
}

// FillResponse is the body returned by POST /api/fill.
type FillResponse struct {
	MapResponse
	Applied int             `json:"applied"`
	Failed  []apply.Failure `json:"failed,omitempty"`
	HTML    string          `json:"html"`
}

type validatable interface {
	Validate() error
}

// decode reads a size-limited JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst validatable) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := dst.Validate(); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required", "required_without":
		return &ErrValidation{Field: fe.Field(), Message: "is required"}
	default:
		return &ErrValidation{Field: fe.Field(), Message: "failed on the '" + fe.Tag() + "' rule"}
	}
}

func ocrResponse(res *pipeline.Result) types.OCRResponse {
	return types.OCRResponse{
		Success: true,
		Text:    res.OCR.Text,
		RawText: res.OCR.RawText,
		Vision:  res.Vision,
		Meta:    res.Meta,
		Demo:    res.OCR.Demo,
	}
}

// handleOCR reads a photo with the OCR chain and, in parallel, the vision chain.
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	var req types.OCRRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err, `Request body must include "imageBase64" with a base64 data URL`)
		return
	}

	img, err := imaging.DecodeDataURL(req.Source())
	if err != nil {
		s.errorResponse(w, err, "Image must be a valid base64 data URL (e.g., data:image/jpeg;base64,...)")
		return
	}

	res, err := s.services.Capture.Run(r.Context(), img, req.FormType)
	if err != nil {
		s.errorResponse(w, err, "All OCR providers failed. Check API keys and try again.")
		return
	}
	s.jsonResponse(w, http.StatusOK, ocrResponse(res))
}

// handleOCRStream is handleOCR with capture progress streamed as Server-Sent Events.
func (s *Server) handleOCRStream(w http.ResponseWriter, r *http.Request) {
	var req types.OCRRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err, "")
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err, "")
		return
	}

	capture := *s.services.Capture
	capture.OnProgress = func(ev pipeline.ProgressEvent) {
		if err := sse.WriteEvent(EventProgress, ev); err != nil {
			log.Printf("[api] failed to stream progress: %v", err)
		}
	}

	res, err := capture.DataURL(r.Context(), req.Source(), req.FormType)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}
	sse.WriteEvent(EventResult, ocrResponse(res)) //nolint:errcheck
}

// handleVision asks the vision chain alone about a photo. Vision is optional, so an
// unconfigured or failing chain still answers 200.
func (s *Server) handleVision(w http.ResponseWriter, r *http.Request) {
	var req types.VisionRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err, `Request body must include "image" field with base64 data URL`)
		return
	}

	if !s.services.Vision.Configured() {
		s.jsonResponse(w, http.StatusOK, types.VisionResponse{Message: "Vision API not configured (optional)"})
		return
	}

	img, err := imaging.DecodeDataURL(req.Image)
	if err != nil {
		s.errorResponse(w, err, "")
		return
	}
	if small, err := imaging.Downscale(img, s.services.Capture.MaxWidth); err == nil {
		img = small
	}

	result, provider, err := s.services.Vision.Analyze(r.Context(), img, "")
	if err != nil {
		log.Printf("[vision] %v", err)
		s.jsonResponse(w, http.StatusOK, types.VisionResponse{Message: "Vision processing failed"})
		return
	}
	s.jsonResponse(w, http.StatusOK, types.VisionResponse{
		Success:      true,
		Provider:     string(provider),
		VisionResult: result,
	})
}

// handleSpeech transcribes one recorded clip.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req types.SpeechRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err, `Request body must include "audio" field with base64 audio data`)
		return
	}

	audio := req.Audio
	if _, after, ok := strings.Cut(audio, ","); ok {
		audio = after
	}
	if strings.TrimSpace(audio) == "" {
		s.errorResponse(w, &ErrValidation{Field: "audio", Message: "must be base64 encoded"}, "")
		return
	}

	if s.services.Speech == nil {
		s.errorResponse(w, &ErrNotConfigured{Service: "Speech API"}, "Set GOOGLE_SPEECH_API_KEY in environment variables")
		return
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = DefaultAudioMimeType
	}
	languageCode := req.LanguageCode
	if languageCode == "" {
		languageCode = speech.DefaultLanguage
	}

	tr, err := s.services.Speech.Transcribe(r.Context(), audio, mimeType, languageCode)
	if err != nil {
		s.errorResponse(w, err, "Could not transcribe audio. Try speaking more clearly.")
		return
	}
	s.jsonResponse(w, http.StatusOK, types.SpeechResponse{
		Success:      true,
		Text:         tr.Text,
		Confidence:   tr.Confidence,
		LanguageCode: languageCode,
	})
}

// handleVoiceTranslate turns a transcript into concise English. Without a model, or
// when the model fails, the text is echoed with success=false.
func (s *Server) handleVoiceTranslate(w http.ResponseWriter, r *http.Request) {
	var req types.TranslateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err, "Missing text")
		return
	}

	if s.services.Translator == nil {
		s.jsonResponse(w, http.StatusOK, types.TranslateResponse{Text: req.Text})
		return
	}

	out, err := s.services.Translator.Translate(r.Context(), req.Text)
	if err != nil {
		s.jsonResponse(w, http.StatusOK, types.TranslateResponse{Text: out, Error: err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, types.TranslateResponse{Success: true, Text: out})
}

// handleMap runs extraction and mapping against a posted HTML form.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	var req types.MapRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err, "")
		return
	}

	_, _, res, err := s.mapDocument(r.Context(), siteFor(r, req.Site), &req)
	if err != nil {
		s.errorResponse(w, err, "")
		return
	}
	s.jsonResponse(w, http.StatusOK, mapResponse(res))
}

// handleFill maps like handleMap, applies the accepted mappings and returns the
// filled document.
func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	var req types.MapRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err, "")
		return
	}

	ctx := r.Context()
	sess, doc, res, err := s.mapDocument(ctx, siteFor(r, req.Site), &req)
	if err != nil {
		s.errorResponse(w, err, "")
		return
	}
	if req.Accept != nil {
		if err := sess.CheckOnly(req.Accept); err != nil {
			s.errorResponse(w, err, "")
			return
		}
	}

	applied := sess.Apply(ctx)
	html, err := doc.Html()
	if err != nil {
		s.errorResponse(w, err, "")
		return
	}

	resp := FillResponse{
		MapResponse: mapResponse(res),
		Applied:     len(applied.Applied),
		Failed:      applied.Failed,
		HTML:        html,
	}
	resp.Mappings = orEmpty(sess.Mappings())
	s.jsonResponse(w, http.StatusOK, resp)
}

// mapDocument parses req.HTML and scans req's input into a fresh session over it.
func (s *Server) mapDocument(ctx context.Context, site string, req *types.MapRequest) (*session.Session, *goquery.Document, *session.Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(req.HTML))
	if err != nil {
		return nil, nil, nil, &ErrValidation{Field: "html", Message: err.Error()}
	}

	opts := []session.Option{session.WithExtractor(s.services.Extractor)}
	for key, synonyms := range s.services.Synonyms {
		opts = append(opts, session.WithSynonyms(key, synonyms))
	}
	if s.services.Learning != nil {
		opts = append(opts, session.WithLearning(s.services.Learning, site))
	}

	sess := session.New(apply.NewDocumentWriter(), opts...)
	sess.RescanForms(ctx, doc, form.StaticLayout{})
	if req.FormSelector != "" {
		if err := sess.SelectFormMatching(ctx, req.FormSelector); err != nil {
			return nil, nil, nil, err
		}
	}

	res, err := sess.Scan(ctx, req.Input())
	if err != nil {
		return nil, nil, nil, err
	}
	return sess, doc, res, nil
}

// siteFor prefers the site from a verified token over the one in the body.
func siteFor(r *http.Request, fallback string) string {
	if site, ok := middleware.GetSite(r); ok {
		return site
	}
	return fallback
}

func mapResponse(res *session.Result) MapResponse {
	return MapResponse{
		Success:  true,
		Record:   res.Record,
		Mappings: orEmpty(res.Mappings),
		Form:     res.Form,
	}
}

func orEmpty(ms []mapping.Mapping) []mapping.Mapping {
	if ms == nil {
		return []mapping.Mapping{}
	}
	return ms
}
