package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/appycrew-ocr/internal/llm"
	"github.com/stretchr/testify/assert"
)

type mockGenerator struct {
	out    string
	err    error
	prompt string
	tier   llm.ModelTier
}

func (m *mockGenerator) GenerateContent(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.prompt, m.tier = prompt, tier
	return m.out, m.err
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name    string
		gen     *mockGenerator
		input   string
		want    string
		wantErr bool
	}{
		{name: "translated", gen: &mockGenerator{out: " \"blue sofa, living room\"\n"}, input: "sofá azul, salón", want: "blue sofa, living room"},
		{name: "empty answer keeps input", gen: &mockGenerator{out: "  "}, input: "sofá", want: "sofá"},
		{name: "failure echoes input", gen: &mockGenerator{err: errors.New("401")}, input: "sofá", want: "sofá", wantErr: true},
		{name: "blank input", gen: &mockGenerator{out: "x"}, input: "  ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.gen).Translate(context.Background(), tt.input)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTranslate_UsesLiteTierAndPrompt(t *testing.T) {
	gen := &mockGenerator{out: "lamp"}
	_, err := New(gen).Translate(context.Background(), "lampe")
	assert.NoError(t, err)
	assert.Equal(t, llm.TierLite, gen.tier)
	assert.Contains(t, gen.prompt, "lampe")
}

func TestTranslate_NotConfigured(t *testing.T) {
	got, err := New(nil).Translate(context.Background(), "lampe")
	assert.Equal(t, "lampe", got)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
