package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/appycrew-ocr/internal/keywords"
	"github.com/jonathan/appycrew-ocr/internal/mapping"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"items": {"keywords": ["piano"], "synonyms": [{"phrase": "pianoforte", "canonical": "piano"}]},
		"locations": {"keywords": ["boot room"]},
		"noise_words": ["acme removals"],
		"synonyms": {"location": ["zone"]},
		"site": "crm.example.com",
		"port": 9090,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, []string{"piano"}, cfg.Items.Keywords)
	assert.Equal(t, keywords.Synonym{Phrase: "pianoforte", Canonical: "piano"}, cfg.Items.Synonyms[0])
	assert.Equal(t, []string{"boot room"}, cfg.Locations.Keywords)
	assert.Equal(t, []string{"zone"}, cfg.Synonyms[types.KeyLocation])
	assert.Equal(t, "crm.example.com", cfg.Site)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Verbose)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty config", cfg: Config{}},
		{name: "port out of range", cfg: Config{Port: 70000}, wantErr: "port"},
		{name: "negative width", cfg: Config{ImageMaxWidth: -1}, wantErr: "image_max_width"},
		{name: "unknown synonym key", cfg: Config{Synonyms: map[types.Key][]string{"colour": {"shade"}}}, wantErr: "unknown synonym key"},
		{
			name:    "synonym without canonical",
			cfg:     Config{Items: keywords.Table{Synonyms: []keywords.Synonym{{Phrase: "settee"}}}},
			wantErr: "canonical",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Config{
		DatabaseURL:   "postgres://localhost/appycrew",
		Site:          "default-site",
		Port:          8080,
		ImageMaxWidth: 1200,
	}

	partial := Config{
		Site: "custom-site",
		Port: 9090,
	}

	merged := partial.MergeWithDefaults(defaults)

	assert.Equal(t, "custom-site", merged.Site)
	assert.Equal(t, 9090, merged.Port)
	assert.Equal(t, "postgres://localhost/appycrew", merged.DatabaseURL)
	assert.Equal(t, 1200, merged.ImageMaxWidth)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Site: "test", Port: 3000}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "test", merged.Site)
	assert.Equal(t, 3000, merged.Port)
}

func TestConfig_ExtendsVocabulary(t *testing.T) {
	cfg := &Config{
		Items:      keywords.Table{Keywords: []string{"piano"}},
		Locations:  keywords.Table{Keywords: []string{"boot room"}},
		NoiseWords: []string{"acme removals"},
	}

	rec := cfg.Extractor().Extract(types.RecognizedInput{RawText: "ACME Removals\nPiano\nBoot room"})

	item, ok := rec.Get(types.KeyItem)
	require.True(t, ok)
	assert.Equal(t, "piano", strings.ToLower(item))

	location, ok := rec.Get(types.KeyLocation)
	require.True(t, ok)
	assert.Equal(t, "Boot room", location)

	cleaned := cfg.Normalizer().Clean("ACME Removals\nPiano")
	assert.NotContains(t, strings.ToLower(cleaned), "acme")

	// Built-in entries survive the extension.
	_, found := cfg.Matcher().FindLocation("kitchen")
	assert.True(t, found)
}

func TestConfig_NilUsesDefaults(t *testing.T) {
	var cfg *Config
	_, found := cfg.Matcher().FindLocation("garage")
	assert.True(t, found)
	assert.NotNil(t, cfg.Normalizer())
}

func TestConfig_FieldSynonyms(t *testing.T) {
	cfg := &Config{Synonyms: map[types.Key][]string{types.KeyLocation: {"zone"}}}

	got := cfg.FieldSynonyms()
	require.Contains(t, got, types.KeyLocation)
	assert.Subset(t, got[types.KeyLocation], mapping.DefaultSynonyms()[types.KeyLocation])
	assert.Contains(t, got[types.KeyLocation], "zone")
	assert.NotContains(t, got, types.KeyItem)

	assert.Nil(t, (&Config{}).FieldSynonyms())
}
