package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeDataURL(t *testing.T) {
	raw := pngBytes(t, 4, 4)
	b64 := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name     string
		input    string
		wantMIME string
		wantErr  bool
	}{
		{name: "data url", input: "data:image/png;base64," + b64, wantMIME: "image/png"},
		{name: "data url with params", input: "data:image/jpeg;name=x.jpg;base64," + b64, wantMIME: "image/jpeg"},
		{name: "raw base64 sniffed", input: b64, wantMIME: "image/png"},
		{name: "comma fallback", input: "whatever," + b64, wantMIME: "image/png"},
		{name: "empty", input: "   ", wantErr: true},
		{name: "not base64", input: "data:image/png;base64,@@@", wantErr: true},
		{name: "too many commas", input: "a,b,c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeDataURL(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, img.MIMEType)
			assert.Equal(t, raw, img.Data)
		})
	}
}

func TestImage_DataURLRoundTrip(t *testing.T) {
	img := Image{MIMEType: "image/png", Data: pngBytes(t, 2, 2)}
	back, err := DecodeDataURL(img.DataURL())
	require.NoError(t, err)
	assert.Equal(t, img, back)
}

func TestDownscale(t *testing.T) {
	wide := Image{MIMEType: "image/png", Data: pngBytes(t, 2400, 600)}
	out, err := Downscale(wide, 1200)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.MIMEType)

	w, h, err := Size(out)
	require.NoError(t, err)
	assert.Equal(t, 1200, w)
	assert.Equal(t, 300, h)
}

func TestDownscale_SmallImageUnchanged(t *testing.T) {
	small := Image{MIMEType: "image/png", Data: pngBytes(t, 640, 480)}
	out, err := Downscale(small, 0)
	require.NoError(t, err)
	assert.Equal(t, small, out)
}

func TestDownscale_NotAnImage(t *testing.T) {
	junk := Image{MIMEType: "application/octet-stream", Data: []byte("hello")}
	out, err := Downscale(junk, 100)
	assert.Error(t, err)
	assert.Equal(t, junk, out)
}
