package raster

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/bg-eraser-mcp/internal/soften"
)

// PNGCompression is the fixed zlib effort used for every written file.
const PNGCompression = png.DefaultCompression

// Load decodes the image at path and installs it as both original and
// current buffer.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. Grayscale and
// opaque color sources gain a fully opaque alpha channel. JPEG EXIF
// orientation is applied.
//
// On failure a *LoadError is returned and the store keeps whatever image it
// held before.
func (s *Store) Load(path string) error {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	b := img.Bounds()
	if b.Empty() {
		return &LoadError{Path: path, Err: fmt.Errorf("image has no pixels")}
	}
	s.SetImage(img)
	return nil
}

// Save writes the current buffer to path as PNG regardless of the file
// extension.
func (s *Store) Save(path string) error {
	if s.current == nil {
		return &SaveError{Path: path, Err: ErrNoImage}
	}
	if err := writePNG(path, s.current); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	return nil
}

// Export writes the current buffer to path as PNG after applying edge
// softening at the given level (0 disables softening). The store itself is
// not modified.
func (s *Store) Export(path string, softenLevel int) error {
	if s.current == nil {
		return &ExportError{Path: path, Level: softenLevel, Err: ErrNoImage}
	}
	out := soften.Apply(s.current, softenLevel)
	if err := writePNG(path, out); err != nil {
		return &ExportError{Path: path, Level: softenLevel, Err: err}
	}
	return nil
}

// writePNG encodes img into a temporary file next to path and renames it
// into place, so a failed write never leaves a truncated file at path.
func writePNG(path string, img image.Image) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".bg-eraser-*.png")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := imaging.Encode(tmp, img, imaging.PNG, imaging.PNGCompressionLevel(PNGCompression)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to encode png: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush png: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move png into place: %w", err)
	}
	return nil
}

// EncodedImage is an image encoded as base64 PNG for transport.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodeBase64PNG encodes img as a base64 PNG payload.
func EncodeBase64PNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(PNGCompression)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	b := img.Bounds()
	return &EncodedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
