// Package imaging decodes uploaded photos and shrinks them before they are sent
// to OCR and vision providers.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxWidth matches what the widget's capture step produces.
const DefaultMaxWidth = 1200

// JPEGQuality is used when re-encoding a downscaled image.
const JPEGQuality = 85

// ErrInvalidImage is returned for payloads that are not base64 image data.
var ErrInvalidImage = errors.New("image must be a base64 data URL or raw base64")

var dataURLPattern = regexp.MustCompile(`^data:([\w.+-]+/[\w.+-]+)?(?:;[\w=.-]+)*;base64,(.+)$`)

// Image is an encoded image.
type Image struct {
	MIMEType string
	Data     []byte
}

// Base64 returns the raw base64 payload.
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns the image as a data URL.
func (img Image) DataURL() string {
	return "data:" + img.MIMEType + ";base64," + img.Base64()
}

// DecodeDataURL accepts "data:image/jpeg;base64,..." or bare base64. The MIME type
// is sniffed from the bytes when the URL does not carry one.
func DecodeDataURL(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, ErrInvalidImage
	}

	var mime, payload string
	switch {
	case strings.HasPrefix(s, "data:"):
		m := dataURLPattern.FindStringSubmatch(s)
		if m == nil {
			return Image{}, ErrInvalidImage
		}
		mime, payload = m[1], m[2]
	case strings.ContainsAny(s, ",:"):
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return Image{}, ErrInvalidImage
		}
		payload = parts[1]
	default:
		payload = s
	}

	data, err := decodeBase64(payload)
	if err != nil || len(data) == 0 {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return Image{MIMEType: mime, Data: data}, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

// Downscale shrinks img to at most maxWidth pixels wide and re-encodes it as JPEG.
// Images already narrow enough, and payloads that do not decode as an image, are
// returned unchanged.
func Downscale(img Image, maxWidth int) (Image, error) {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return img, fmt.Errorf("failed to decode image: %w", err)
	}

	b := src.Bounds()
	if b.Dx() <= maxWidth {
		return img, nil
	}

	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return img, fmt.Errorf("failed to encode image: %w", err)
	}
	return Image{MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}

// Size returns an image's pixel dimensions without decoding the full image.
func Size(img Image) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
