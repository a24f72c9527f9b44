// Package speech transcribes short voice notes with Google Cloud Speech-to-Text.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/option"
	speechapi "google.golang.org/api/speech/v1"
)

var (
	// ErrNotConfigured is returned when no credentials are available.
	ErrNotConfigured = errors.New("speech API not configured")
	// ErrNoSpeech is returned when the audio held nothing recognizable.
	ErrNoSpeech = errors.New("could not transcribe audio")
)

// Recognizer produces one transcript. The session cancels ctx when a new scan starts.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context) (string, error)

// Recognize implements Recognizer.
func (f RecognizerFunc) Recognize(ctx context.Context) (string, error) { return f(ctx) }

// Transcript is a recognized utterance.
type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// DefaultLanguage is used when a request does not name one.
const DefaultLanguage = "en-US"

// defaultConfidence stands in when the API omits confidences.
const defaultConfidence = 0.8

// PhraseBoost weights the inventory vocabulary.
const PhraseBoost = 10

// Phrases biases recognition towards inventory vocabulary.
var Phrases = []string{
	// Items
	"wardrobe", "sofa", "couch", "table", "chair", "desk", "bed", "mattress",
	"dresser", "cabinet", "bookcase", "shelf", "lamp", "mirror", "box", "carton",
	// Locations
	"bedroom", "living room", "kitchen", "bathroom", "garage", "attic", "basement",
	"dining room", "office", "study", "hallway", "master bedroom", "guest room",
	// Descriptors
	"wooden", "metal", "glass", "leather", "fabric", "antique", "modern",
	"large", "small", "heavy", "fragile", "scratched", "damaged", "good condition",
}

// Encoding maps an audio MIME type to a Speech-to-Text encoding and sample rate.
// Unknown types are treated as WebM/Opus, which is what browsers record.
func Encoding(mimeType string) (encoding string, sampleRate int64) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	base, _, _ := strings.Cut(mt, ";")
	switch strings.TrimSpace(base) {
	case "audio/ogg":
		encoding = "OGG_OPUS"
	case "audio/mp3", "audio/mpeg", "audio/mp4", "audio/aac", "audio/m4a":
		// mp4/aac/m4a are approximations; the API has no AAC encoding
		encoding = "MP3"
	case "audio/wav", "audio/x-wav":
		encoding = "LINEAR16"
	case "audio/flac":
		encoding = "FLAC"
	default:
		encoding = "WEBM_OPUS"
	}
	if encoding == "WEBM_OPUS" {
		return encoding, 48000
	}
	return encoding, 16000
}

// Config builds the recognition config for a request.
func Config(mimeType, languageCode string) *speechapi.RecognitionConfig {
	if languageCode == "" {
		languageCode = DefaultLanguage
	}
	encoding, rate := Encoding(mimeType)
	cfg := &speechapi.RecognitionConfig{
		Encoding:                   encoding,
		SampleRateHertz:            rate,
		LanguageCode:               languageCode,
		EnableAutomaticPunctuation: true,
		Model:                      "latest_short",
		UseEnhanced:                true,
		SpeechContexts: []*speechapi.SpeechContext{{
			Phrases: Phrases,
			Boost:   PhraseBoost,
		}},
	}
	if languageCode == "en-US" {
		cfg.AlternativeLanguageCodes = []string{"en-GB", "en-AU"}
	}
	return cfg
}

// Transcriber calls the speech:recognize API.
type Transcriber struct {
	svc *speechapi.Service
}

// Credentials selects how the transcriber authenticates.
type Credentials struct {
	APIKey             string
	ServiceAccountJSON string
}

// Options returns client options for the credentials. The API key wins when both are set.
func (c Credentials) Options() ([]option.ClientOption, error) {
	switch {
	case c.APIKey != "":
		return []option.ClientOption{option.WithAPIKey(c.APIKey)}, nil
	case c.ServiceAccountJSON != "":
		return []option.ClientOption{
			option.WithCredentialsJSON([]byte(c.ServiceAccountJSON)),
			option.WithScopes(speechapi.CloudPlatformScope),
		}, nil
	default:
		return nil, ErrNotConfigured
	}
}

// NewTranscriber creates a transcriber; extra options are appended after the credentials.
func NewTranscriber(ctx context.Context, creds Credentials, extra ...option.ClientOption) (*Transcriber, error) {
	opts, err := creds.Options()
	if err != nil {
		return nil, err
	}
	svc, err := speechapi.NewService(ctx, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech service: %w", err)
	}
	return &Transcriber{svc: svc}, nil
}

// Transcribe recognizes base64 audio. Multiple results are joined with spaces and their
// confidences averaged.
func (t *Transcriber) Transcribe(ctx context.Context, audioBase64, mimeType, languageCode string) (Transcript, error) {
	req := &speechapi.RecognizeRequest{
		Config: Config(mimeType, languageCode),
		Audio:  &speechapi.RecognitionAudio{Content: audioBase64},
	}
	log.Printf("[speech] recognizing, encoding: %s", req.Config.Encoding)

	resp, err := t.svc.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		return Transcript{}, fmt.Errorf("speech recognize failed: %w", err)
	}

	var parts []string
	var total float64
	var counted int
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		if s := strings.TrimSpace(alt.Transcript); s != "" {
			parts = append(parts, s)
		}
		if alt.Confidence > 0 {
			total += alt.Confidence
			counted++
		}
	}
	text := strings.Join(parts, " ")
	if text == "" {
		return Transcript{}, ErrNoSpeech
	}

	confidence := defaultConfidence
	if counted > 0 {
		confidence = total / float64(counted)
	}
	return Transcript{Text: text, Confidence: confidence}, nil
}

// Clip is one recorded utterance waiting for recognition.
func (t *Transcriber) Clip(audioBase64, mimeType, languageCode string) Recognizer {
	return RecognizerFunc(func(ctx context.Context) (string, error) {
		tr, err := t.Transcribe(ctx, audioBase64, mimeType, languageCode)
		if err != nil {
			return "", err
		}
		return tr.Text, nil
	})
}
