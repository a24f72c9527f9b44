package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"item\": \"Sofa\"}\n```",
			expected: `{"item": "Sofa"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"item\": \"Sofa\"}\n```",
			expected: `{"item": "Sofa"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"item\": \"Sofa\"}\n```",
			expected: `{"item": "Sofa"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"item": "Sofa"}`,
			expected: `{"item": "Sofa"}`,
		},
		{
			name:     "preamble before object",
			input:    "Here is the inventory record:\n{\"item\": \"Oak Wardrobe\", \"quantity\": 1}",
			expected: `{"item": "Oak Wardrobe", "quantity": 1}`,
		},
		{
			name:     "trailing text",
			input:    "{\"item\": \"Lamp\"}\n\nLet me know if you need anything else!",
			expected: `{"item": "Lamp"}`,
		},
		{
			name:     "array after preamble",
			input:    "Items:\n[\"chair\", \"desk\"]",
			expected: `["chair", "desk"]`,
		},
		{
			name:     "escaped quotes",
			input:    "Result: {\"notes\": \"label says \\\"top}\\\"\"}",
			expected: `{"notes": "label says \"top}\""}`,
		},
		{
			name:     "no JSON at all",
			input:    "  I could not see an item.  ",
			expected: "I could not see an item.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		object string
		array  string
	}{
		{name: "object", input: `{"a": {"b": 1}} tail`, object: `{"a": {"b": 1}}`},
		{name: "braces in strings", input: `{"t": "Hello {name}!"}`, object: `{"t": "Hello {name}!"}`},
		{name: "array of objects", input: `[{"id": 1}, {"id": 2}] extra`, array: `[{"id": 1}, {"id": 2}]`},
		{name: "unterminated", input: `{"a": 1`},
		{name: "empty", input: ""},
		{name: "not json", input: "not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.object, extractJSONObject(tt.input))
			assert.Equal(t, tt.array, extractJSONArray(tt.input))
		})
	}
}
