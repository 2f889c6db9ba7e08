// Package snapshot prepares screenshots for vision requests and for handing
// annotated copies back to the caller.
package snapshot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

// DefaultMaxWidth bounds screenshots sent to vision models.
const DefaultMaxWidth = 1280

// Downscale shrinks img to at most maxWidth pixels wide, keeping the aspect
// ratio. Smaller images are returned unchanged. Normalized coordinates are
// unaffected by the resize.
func Downscale(img image.Image, maxWidth uint) image.Image {
	if maxWidth == 0 {
		maxWidth = DefaultMaxWidth
	}
	bounds := img.Bounds()
	if bounds.Dx() <= int(maxWidth) {
		return img
	}

	aspectRatio := float64(bounds.Dy()) / float64(bounds.Dx())
	outputHeight := uint(float64(maxWidth) * aspectRatio)
	if outputHeight == 0 {
		outputHeight = 1
	}
	return resize.Resize(maxWidth, outputHeight, img, resize.Lanczos3)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Base64PNG encodes img as base64 PNG data.
func Base64PNG(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Save writes img as a PNG file, creating parent directories.
func Save(path string, img image.Image) (int64, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return 0, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	return int64(len(data)), nil
}
