package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(VisionFile, VisionExtract)
	require.NoError(t, err)
	assert.Contains(t, prompt, "moving inventory")
	assert.Contains(t, prompt, `"quantity": number or null`)
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(TranslateFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	result := Format("Fill the {{.Form}} for {{.Site}}", map[string]string{
		"Form": "inventory",
		"Site": "crew.example.com",
	})
	assert.Equal(t, "Fill the inventory for crew.example.com", result)

	// Unknown placeholders remain
	assert.Equal(t, "Hello {{.Name}}", Format("Hello {{.Name}}", nil))
}

func TestVision(t *testing.T) {
	plain := Vision("")
	assert.NotContains(t, plain, "{{.")
	assert.NotContains(t, plain, "form.")

	withType := Vision(" survey ")
	assert.Contains(t, withType, `fill a "survey" form`)
}

func TestTranslate(t *testing.T) {
	p := Translate("sofá azul en el salón")
	assert.Contains(t, p, "concise English")
	assert.Contains(t, p, "sofá azul en el salón")
	assert.NotContains(t, p, "{{.Text}}")
}
