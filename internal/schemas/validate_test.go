package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateVision(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
		field   string
	}{
		{
			name: "full answer",
			json: `{"item":"Oak Wardrobe","colour":"brown","description":"two door","location":"bedroom","quantity":1,"condition":"scratched","notes":null}`,
		},
		{
			name: "quantity as string",
			json: `{"item":"Box","quantity":"3"}`,
		},
		{
			name: "all null",
			json: `{"item":null,"description":null,"location":null,"quantity":null}`,
		},
		{
			name: "extra fields allowed",
			json: `{"item":"Lamp","material":"brass"}`,
		},
		{
			name:    "item wrong type",
			json:    `{"item":["sofa","chair"]}`,
			wantErr: true,
			field:   "item",
		},
		{
			name:    "negative quantity",
			json:    `{"quantity":-2}`,
			wantErr: true,
			field:   "quantity",
		},
		{
			name:    "not an object",
			json:    `["sofa"]`,
			wantErr: true,
			field:   "(root)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVision(tt.json)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
			require.NotEmpty(t, ve.Errors)
			assert.Equal(t, tt.field, ve.Errors[0].Field)
			assert.Contains(t, ve.Error(), "validation failed")
		})
	}
}

func TestValidateVision_MalformedJSON(t *testing.T) {
	err := ValidateVision(`{"item": "Sofa"`)
	var le *SchemaLoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "vision.schema.json", le.Path)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	var le *SchemaLoadError
	assert.True(t, errors.As(err, &le))
}

func TestVisionSchema_Embedded(t *testing.T) {
	assert.Contains(t, VisionSchema(), `"title": "VisionResult"`)
}
