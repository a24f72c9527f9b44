package server

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/option"

	"github.com/jonathan/appycrew-ocr/internal/config"
	"github.com/jonathan/appycrew-ocr/internal/db"
	"github.com/jonathan/appycrew-ocr/internal/extract"
	"github.com/jonathan/appycrew-ocr/internal/learning"
	"github.com/jonathan/appycrew-ocr/internal/llm"
	"github.com/jonathan/appycrew-ocr/internal/ocr"
	"github.com/jonathan/appycrew-ocr/internal/pipeline"
	"github.com/jonathan/appycrew-ocr/internal/speech"
	"github.com/jonathan/appycrew-ocr/internal/translate"
	"github.com/jonathan/appycrew-ocr/internal/types"
	"github.com/jonathan/appycrew-ocr/internal/vision"
)

// Transcriber turns recorded audio into text (*speech.Transcriber).
type Transcriber interface {
	Transcribe(ctx context.Context, audioBase64, mimeType, languageCode string) (speech.Transcript, error)
}

// Services are the providers and stores the handlers use. Nil optional members turn
// the matching feature off.
type Services struct {
	OCR        *ocr.Chain
	Vision     *vision.Chain
	Capture    *pipeline.Capture
	Speech     Transcriber
	Translator *translate.Translator
	Extractor  *extract.Extractor
	Synonyms   map[types.Key][]string
	Learning   learning.Store
	SiteTokens *SiteTokenService

	closers []func()
}

// OCRProviders lists the configured OCR providers in the order they are tried.
func (s *Services) OCRProviders() []string {
	if s.OCR == nil {
		return nil
	}
	return s.OCR.Providers()
}

// Close releases clients and database connections.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// BuildServices wires every provider the environment has credentials for. cfg may be
// nil; it extends the keyword tables and synonyms.
func BuildServices(ctx context.Context, env config.Env, cfg *config.Config) (*Services, error) {
	s := &Services{Extractor: cfg.Extractor(), Synonyms: cfg.FieldSynonyms()}

	var providers []ocr.Provider
	if env.GoogleVisionAPIKey != "" {
		gv, err := ocr.NewGoogleVision(ctx, option.WithAPIKey(env.GoogleVisionAPIKey))
		if err != nil {
			return nil, err
		}
		providers = append(providers, gv)
	}
	if env.OCRSpaceAPIKey != "" {
		providers = append(providers, ocr.NewOCRSpace(env.OCRSpaceAPIKey, env.OCRSpaceURL))
	}
	if env.TesseractEnabled {
		if ocr.TesseractAvailable {
			providers = append(providers, ocr.NewTesseract())
		} else {
			log.Printf("[server] TESSERACT_ENABLED is set but this binary was built without the tesseract tag")
		}
	}
	s.OCR = ocr.NewChain(s.Extractor.Normalizer(), ocr.Demo{}, providers...)

	var analyzers []vision.ImageAnalyzer
	var generator translate.Generator
	if env.OpenAIAPIKey != "" {
		client, err := llm.NewOpenAIClient(llm.DefaultOpenAIConfig(), env.OpenAIAPIKey)
		if err != nil {
			return nil, err
		}
		analyzers = append(analyzers, client)
		generator = client
	}
	if env.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, llm.DefaultGeminiConfig(), env.GeminiAPIKey)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		analyzers = append(analyzers, client)
		if generator == nil {
			generator = client
		}
	}
	s.Vision = vision.NewChain(analyzers...)
	if generator != nil {
		s.Translator = translate.New(generator)
	}

	maxWidth := env.ImageMaxWidth
	if cfg != nil && cfg.ImageMaxWidth > 0 {
		maxWidth = cfg.ImageMaxWidth
	}
	s.Capture = &pipeline.Capture{OCR: s.OCR, Vision: s.Vision, MaxWidth: maxWidth}

	if env.SpeechConfigured() {
		t, err := speech.NewTranscriber(ctx, speech.Credentials{
			APIKey:             env.SpeechAPIKey,
			ServiceAccountJSON: env.ServiceAccountJSON,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Speech = t
	}

	databaseURL := env.DatabaseURL
	if cfg != nil && cfg.DatabaseURL != "" {
		databaseURL = cfg.DatabaseURL
	}
	if databaseURL != "" {
		database, err := db.Connect(ctx, databaseURL)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, database.Close)
		if err := database.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to prepare learning store: %w", err)
		}
		s.Learning = database
	} else {
		s.Learning = learning.NewMemoryStore(learning.DefaultCapacity)
	}

	tokenConfig, err := config.NewSiteTokenConfig()
	if err != nil {
		s.Close()
		return nil, err
	}
	if tokenConfig != nil {
		s.SiteTokens = NewSiteTokenService(tokenConfig)
	}

	log.Printf("[server] ocr providers: %v, vision models: %d, speech: %t, learning: %T",
		s.OCRProviders(), len(analyzers), s.Speech != nil, s.Learning)
	return s, nil
}
