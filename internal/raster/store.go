package raster

import (
	"image"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// Store owns the original and current pixel buffers of the loaded image and
// the perceptual color cache derived from the current buffer.
//
// The zero value is an empty store with no image loaded.
type Store struct {
	original *image.NRGBA
	current  *image.NRGBA
	lab      *LabImage
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// HasImage reports whether an image is loaded.
func (s *Store) HasImage() bool {
	return s.current != nil
}

// Width returns the width of the loaded image, or 0.
func (s *Store) Width() int {
	if s.current == nil {
		return 0
	}
	return s.current.Bounds().Dx()
}

// Height returns the height of the loaded image, or 0.
func (s *Store) Height() int {
	if s.current == nil {
		return 0
	}
	return s.current.Bounds().Dy()
}

// Bounds returns the image rectangle, or the empty rectangle when nothing
// is loaded.
func (s *Store) Bounds() image.Rectangle {
	if s.current == nil {
		return image.Rectangle{}
	}
	return s.current.Bounds()
}

// Current returns the mutable working buffer. Callers that write to it
// directly must only change alpha, or call RefreshPerceptual afterwards.
func (s *Store) Current() *image.NRGBA {
	return s.current
}

// Original returns the reference buffer used by the repair brush.
// It must not be modified.
func (s *Store) Original() *image.NRGBA {
	return s.original
}

// Perceptual returns the Lab cache of the current buffer.
func (s *Store) Perceptual() *LabImage {
	return s.lab
}

// SetImage installs img as both original and current buffer. The image is
// deep-copied and rebased to a (0,0) origin.
func (s *Store) SetImage(img image.Image) {
	s.original = imaging.Clone(img)
	s.current = imaging.Clone(s.original)
	s.RefreshPerceptual()
}

// RefreshPerceptual rebuilds the Lab cache from the current buffer.
func (s *Store) RefreshPerceptual() {
	if s.current == nil {
		s.lab = nil
		return
	}
	s.lab = NewLabImage(s.current)
}

// Resize re-samples both buffers to width x height with a Lanczos filter
// and rebuilds the perceptual cache. It reports false and changes nothing
// when no image is loaded or the size is not positive.
func (s *Store) Resize(width, height int) bool {
	if s.current == nil || width <= 0 || height <= 0 {
		return false
	}
	s.current = imaging.Resize(s.current, width, height, imaging.Lanczos)
	s.original = imaging.Resize(s.original, width, height, imaging.Lanczos)
	s.RefreshPerceptual()
	return true
}

// Clear releases both buffers and the perceptual cache.
func (s *Store) Clear() {
	s.original = nil
	s.current = nil
	s.lab = nil
}

// ReplaceOriginal makes the current buffer the new restore reference and
// rebuilds the perceptual cache. Call it after a destructive whole-image
// replacement such as an upscale.
func (s *Store) ReplaceOriginal() {
	if s.current == nil {
		return
	}
	s.original = imaging.Clone(s.current)
	s.RefreshPerceptual()
}

// ReplaceImage installs img as the current buffer and resynchronizes the
// original buffer and perceptual cache to it.
func (s *Store) ReplaceImage(img image.Image) {
	if img == nil {
		return
	}
	s.current = imaging.Clone(img)
	s.ReplaceOriginal()
}

// CopyRegion copies the part of r that lies inside the image from the
// current buffer into dst at the same coordinates. It is a no-op when no
// image is loaded or r misses the image.
func (s *Store) CopyRegion(dst xdraw.Image, r image.Rectangle) {
	if s.current == nil || dst == nil {
		return
	}
	r = r.Intersect(s.current.Bounds()).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	if d, ok := dst.(*image.NRGBA); ok {
		n := r.Dx() * 4
		for y := r.Min.Y; y < r.Max.Y; y++ {
			si := s.current.PixOffset(r.Min.X, y)
			di := d.PixOffset(r.Min.X, y)
			copy(d.Pix[di:di+n], s.current.Pix[si:si+n])
		}
		return
	}
	xdraw.Copy(dst, r.Min, s.current, r, xdraw.Src, nil)
}

// Snapshot is an immutable deep copy of the current buffer. It also keeps a
// reference to the original buffer it was taken against; originals are never
// written in place, so the reference stays valid after a resize or upscale.
type Snapshot struct {
	img  *image.NRGBA
	orig *image.NRGBA
}

// Bytes returns the memory held by the snapshot's pixel data. The shared
// original is not counted.
func (s *Snapshot) Bytes() int64 {
	if s == nil || s.img == nil {
		return 0
	}
	return int64(len(s.img.Pix))
}

// Bounds returns the dimensions the snapshot was taken at.
func (s *Snapshot) Bounds() image.Rectangle {
	if s == nil || s.img == nil {
		return image.Rectangle{}
	}
	return s.img.Bounds()
}

// CaptureState returns a deep copy of the current buffer, or nil when no
// image is loaded.
func (s *Store) CaptureState() *Snapshot {
	if s.current == nil {
		return nil
	}
	return &Snapshot{img: imaging.Clone(s.current), orig: s.original}
}

// RestoreState replaces the current buffer with a deep copy of snap and
// rebuilds the perceptual cache. The original the snapshot was taken against
// is reinstated; without a usable one the original buffer is re-sampled so
// both buffers keep identical dimensions.
func (s *Store) RestoreState(snap *Snapshot) {
	if snap == nil || snap.img == nil {
		return
	}
	s.current = imaging.Clone(snap.img)
	sb := s.current.Bounds()
	switch {
	case snap.orig != nil && snap.orig.Bounds().Size() == sb.Size():
		s.original = snap.orig
	case s.original == nil:
		s.original = imaging.Clone(s.current)
	case s.original.Bounds().Size() != sb.Size():
		s.original = imaging.Resize(s.original, sb.Dx(), sb.Dy(), imaging.Lanczos)
	}
	s.RefreshPerceptual()
}

// ImageInfo summarizes the loaded image.
type ImageInfo struct {
	Width             int   `json:"width"`
	Height            int   `json:"height"`
	Pixels            int   `json:"pixels"`
	BufferBytes       int64 `json:"buffer_bytes"`
	TransparentPixels int   `json:"transparent_pixels"`
	PartialPixels     int   `json:"partial_pixels"`
}

// Info returns a summary of the current buffer.
func (s *Store) Info() (*ImageInfo, error) {
	if s.current == nil {
		return nil, ErrNoImage
	}
	b := s.current.Bounds()
	info := &ImageInfo{
		Width:       b.Dx(),
		Height:      b.Dy(),
		Pixels:      b.Dx() * b.Dy(),
		BufferBytes: int64(len(s.current.Pix)),
	}
	for y := 0; y < b.Dy(); y++ {
		row := s.current.Pix[y*s.current.Stride:]
		for x := 0; x < b.Dx(); x++ {
			switch a := row[x*4+3]; {
			case a == 0:
				info.TransparentPixels++
			case a < 255:
				info.PartialPixels++
			}
		}
	}
	return info, nil
}
