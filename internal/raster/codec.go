package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

var (
	// ErrNotDataURL is returned for strings that are not base64 data URLs.
	ErrNotDataURL = errors.New("raster: not a base64 data URL")
	// ErrUnsupportedImage is returned when the payload is not png, jpeg or webp.
	ErrUnsupportedImage = errors.New("raster: unsupported image format")
)

const pngPrefix = "data:image/png;base64,"

// Encode serialises img as a PNG data URL.
func Encode(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return pngPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DataURL wraps raw file bytes of the given mime type, such as an image
// opened from disk, as a base64 data URL.
func DataURL(mimeType string, raw []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

// Payload returns the raw bytes carried by a base64 data URL.
func Payload(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "data:") {
		return nil, ErrNotDataURL
	}
	meta, data, ok := strings.Cut(s[len("data:"):], ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrNotDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDataURL, err)
	}
	return raw, nil
}

// Decode parses a data URL holding a png, jpeg or webp image.
func Decode(s string) (image.Image, error) {
	raw, err := Payload(s)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedImage
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// PNG returns the PNG bytes of an encoded layer, re-encoding other formats.
func PNG(s string) ([]byte, error) {
	if strings.HasPrefix(s, pngPrefix) {
		return Payload(s)
	}
	img, err := Decode(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
