// Package prompts holds the model instructions used for image analysis and
// voice-note translation. The JSON files are embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Prompt files and keys.
const (
	VisionFile       = "vision.json"
	VisionExtract    = "extract-inventory"
	VisionFormType   = "form-type-hint"
	TranslateFile    = "translate.json"
	TranslateEnglish = "to-english"
)

//go:embed *.json
var promptFiles embed.FS

var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// Get retrieves a prompt by filename and key.
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet retrieves a prompt by filename and key, panicking if not found.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format replaces {{.Key}} placeholders with values from data.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, "{{."+key+"}}", value)
	}
	return result
}

// Vision returns the inventory extraction prompt. A non-empty formType is appended as
// context for the model.
func Vision(formType string) string {
	hint := ""
	if formType = strings.TrimSpace(formType); formType != "" {
		hint = Format(MustGet(VisionFile, VisionFormType), map[string]string{"FormType": formType})
	}
	return Format(MustGet(VisionFile, VisionExtract), map[string]string{"FormTypeHint": hint})
}

// Translate returns the translation prompt for text.
func Translate(text string) string {
	return Format(MustGet(TranslateFile, TranslateEnglish), map[string]string{"Text": text})
}

func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	if prompts, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return prompts, nil
	}
	cacheMu.RUnlock()

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()

	return prompts, nil
}

// ClearCache clears the prompt cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]string)
	cacheMu.Unlock()
}
