package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gen2brain/webp"
)

const MIMEType = "image/webp"

var ErrNotImage = errors.New("file is not an image")

// IsImage reports whether mimeType names an image format.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
}

// Decode reads PNG, JPEG, GIF or WebP data.
func Decode(data []byte, mimeType string) (image.Image, error) {
	if !IsImage(mimeType) {
		return nil, ErrNotImage
	}
	if strings.EqualFold(mimeType, MIMEType) {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode webp: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Encode turns an uploaded reference image into the WebP preview kept next to
// the character.
func Encode(data []byte, mimeType string) ([]byte, error) {
	img, err := Decode(data, mimeType)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, webp.Options{Lossless: false, Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
