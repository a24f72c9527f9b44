package config

import (
	"os"
	"strconv"
)

// Defaults for values read from the environment.
const (
	DefaultPort          = 8080
	DefaultImageMaxWidth = 1200
	DefaultDatabaseURL   = ""
)

// Env holds provider credentials and server settings read from environment variables.
// An empty key means the provider is not configured.
type Env struct {
	GoogleVisionAPIKey string
	OCRSpaceAPIKey     string
	OCRSpaceURL        string
	OpenAIAPIKey       string
	GeminiAPIKey       string
	SpeechAPIKey       string
	ServiceAccountJSON string
	DatabaseURL        string
	TesseractEnabled   bool
	ImageMaxWidth      int
	Port               int
}

// LoadEnv reads the environment. Call godotenv.Load first to pick up a .env file.
func LoadEnv() Env {
	gemini := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if gemini == "" {
		gemini = os.Getenv("GEMINI_API_KEY")
	}
	return Env{
		GoogleVisionAPIKey: os.Getenv("GOOGLE_VISION_API_KEY"),
		OCRSpaceAPIKey:     os.Getenv("OCR_SPACE_API_KEY"),
		OCRSpaceURL:        os.Getenv("OCR_SPACE_API_URL"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:       gemini,
		SpeechAPIKey:       os.Getenv("GOOGLE_SPEECH_API_KEY"),
		ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		DatabaseURL:        getEnvString("DATABASE_URL", DefaultDatabaseURL),
		TesseractEnabled:   getEnvBool("TESSERACT_ENABLED", false),
		ImageMaxWidth:      getEnvInt("IMAGE_MAX_WIDTH", DefaultImageMaxWidth),
		Port:               getEnvInt("PORT", DefaultPort),
	}
}

// SpeechConfigured reports whether any speech credentials are set.
func (e Env) SpeechConfigured() bool {
	return e.SpeechAPIKey != "" || e.ServiceAccountJSON != ""
}

// OCRConfigured reports whether any remote or local OCR provider is enabled.
func (e Env) OCRConfigured() bool {
	return e.GoogleVisionAPIKey != "" || e.OCRSpaceAPIKey != "" || e.TesseractEnabled
}

// VisionConfigured reports whether any AI vision model is available.
func (e Env) VisionConfigured() bool {
	return e.OpenAIAPIKey != "" || e.GeminiAPIKey != ""
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
