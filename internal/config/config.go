// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/appycrew-ocr/internal/extract"
	"github.com/jonathan/appycrew-ocr/internal/keywords"
	"github.com/jonathan/appycrew-ocr/internal/mapping"
	"github.com/jonathan/appycrew-ocr/internal/textnorm"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

// Config is the optional JSON configuration file. Table entries extend the built-in
// keyword and noise tables; they never replace them.
type Config struct {
	// Vocabulary
	Locations  keywords.Table         `json:"locations,omitempty"`   // Extra rooms and areas
	Items      keywords.Table         `json:"items,omitempty"`       // Extra item names
	LabelWords []string               `json:"label_words,omitempty"` // Extra bare labels dropped from OCR text
	NoiseWords []string               `json:"noise_words,omitempty"` // Extra brand/handling phrases
	Synonyms   map[types.Key][]string `json:"synonyms,omitempty"`    // Extra field-label synonyms per key

	// Server
	Port          int    `json:"port,omitempty"`
	DatabaseURL   string `json:"database_url,omitempty"`
	ImageMaxWidth int    `json:"image_max_width,omitempty"`

	// Behavior
	Site    string `json:"site,omitempty"`    // Site name used for learned field hints
	Verbose bool   `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

var knownKeys = map[types.Key]bool{
	types.KeyItem:        true,
	types.KeyLocation:    true,
	types.KeyQuantity:    true,
	types.KeyDescription: true,
	types.KeyNotes:       true,
	types.KeyItemType:    true,
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.ImageMaxWidth < 0 {
		return fmt.Errorf("config error: 'image_max_width' must be non-negative")
	}
	for key := range c.Synonyms {
		if !knownKeys[key] {
			return fmt.Errorf("config error: unknown synonym key %q", key)
		}
	}
	for _, s := range append(append([]keywords.Synonym(nil), c.Locations.Synonyms...), c.Items.Synonyms...) {
		if s.Phrase == "" || s.Canonical == "" {
			return fmt.Errorf("config error: synonyms need both 'phrase' and 'canonical'")
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Site == "" {
		result.Site = defaults.Site
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.ImageMaxWidth == 0 {
		result.ImageMaxWidth = defaults.ImageMaxWidth
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Matcher builds a keyword matcher over the built-in tables plus the configured extras.
func (c *Config) Matcher() *keywords.Matcher {
	if c == nil {
		return keywords.Default()
	}
	return keywords.NewMatcher(
		keywords.DefaultLocations().Extend(c.Locations),
		keywords.DefaultItems().Extend(c.Items),
	)
}

// Normalizer builds a text normalizer with the configured label and noise words added.
func (c *Config) Normalizer() *textnorm.Normalizer {
	if c == nil {
		return textnorm.Default()
	}
	labels := append(append([]string(nil), textnorm.DefaultLabelWords...), c.LabelWords...)
	noise := append(append([]string(nil), textnorm.DefaultNoiseWords...), c.NoiseWords...)
	return textnorm.New(labels, noise)
}

// Extractor builds an extractor from the configured vocabulary.
func (c *Config) Extractor() *extract.Extractor {
	return extract.New(c.Matcher(), c.Normalizer())
}

// FieldSynonyms returns the configured label synonyms appended to the built-in ones,
// for the keys that have extras. Keys without extras keep the engine's defaults.
func (c *Config) FieldSynonyms() map[types.Key][]string {
	if c == nil || len(c.Synonyms) == 0 {
		return nil
	}
	defaults := mapping.DefaultSynonyms()
	out := make(map[types.Key][]string, len(c.Synonyms))
	for key, extra := range c.Synonyms {
		out[key] = append(append([]string(nil), defaults[key]...), extra...)
	}
	return out
}
