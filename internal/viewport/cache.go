package viewport

import (
	"image"
	"image/draw"
)

// Render cache defaults.
const (
	// DefaultLargeImagePixels is the pixel count above which rendering
	// becomes incremental (roughly a 3840x2160 frame).
	DefaultLargeImagePixels = 8_300_000
	// DefaultMargin expands each visible rectangle so small pans and zooms
	// stay inside already rendered pixels.
	DefaultMargin = 100
)

// Source is the pixel store the cache renders from.
type Source interface {
	Bounds() image.Rectangle
	CopyRegion(dst draw.Image, r image.Rectangle)
}

// CacheOptions configures a Cache. Zero fields take the defaults.
type CacheOptions struct {
	LargeImagePixels int
	Margin           int
}

// Cache keeps a display-ready copy of the image and records which part of it
// is valid.
type Cache struct {
	src      Source
	display  *image.NRGBA
	rendered image.Rectangle
	large    bool

	threshold int
	margin    int

	renders        int
	renderedPixels int64
}

// NewCache returns an empty cache.
func NewCache(opts CacheOptions) *Cache {
	if opts.LargeImagePixels <= 0 {
		opts.LargeImagePixels = DefaultLargeImagePixels
	}
	if opts.Margin < 0 {
		opts.Margin = 0
	} else if opts.Margin == 0 {
		opts.Margin = DefaultMargin
	}
	return &Cache{threshold: opts.LargeImagePixels, margin: opts.Margin}
}

// Rebuild discards the display buffer and starts over from src. Call it
// whenever the image is loaded, resized or replaced. Small images are
// rendered completely; large ones wait for EnsureVisible.
func (c *Cache) Rebuild(src Source) {
	c.src = src
	c.display = nil
	c.rendered = image.Rectangle{}
	c.large = false
	if src == nil {
		return
	}
	b := src.Bounds()
	if b.Empty() {
		c.src = nil
		return
	}

	c.display = image.NewNRGBA(b)
	c.large = b.Dx()*b.Dy() > c.threshold
	if !c.large {
		c.render(b)
		c.rendered = b
	}
}

// EnsureVisible makes sure the visible rectangle is rendered. Nothing is
// rendered when it already lies inside the rendered region or when the
// image is below the threshold; otherwise the visible rectangle expanded by
// the margin is rendered. It reports whether any pixels were rendered.
func (c *Cache) EnsureVisible(visible image.Rectangle) bool {
	if c.display == nil || !c.large {
		return false
	}
	visible = visible.Intersect(c.display.Bounds())
	// Containment is tested on the bare visible rect while the render covers
	// the expanded one, so a pan that stays within the margin renders nothing.
	if visible.Empty() || visible.In(c.rendered) {
		return false
	}
	want := visible.Inset(-c.margin).Intersect(c.display.Bounds())
	c.render(want)
	c.rendered = c.rendered.Union(want)
	return true
}

// Invalidate re-renders dirty regardless of the rendered region, for edits
// that changed pixels underneath already rendered content. It reports
// whether any pixels were rendered.
func (c *Cache) Invalidate(dirty image.Rectangle) bool {
	if c.display == nil {
		return false
	}
	dirty = dirty.Intersect(c.display.Bounds())
	if dirty.Empty() {
		return false
	}
	c.render(dirty)
	return true
}

func (c *Cache) render(r image.Rectangle) {
	c.src.CopyRegion(c.display, r)
	c.renders++
	c.renderedPixels += int64(r.Dx()) * int64(r.Dy())
}

// Display returns the display buffer, or nil when no image is loaded.
// Pixels outside RenderedRegion are transparent placeholders.
func (c *Cache) Display() *image.NRGBA { return c.display }

// RenderedRegion returns the union of rectangles rendered since the last
// rebuild.
func (c *Cache) RenderedRegion() image.Rectangle { return c.rendered }

// IsLarge reports whether the cache is in incremental mode.
func (c *Cache) IsLarge() bool { return c.large }

// RenderCount returns the number of render passes since creation.
func (c *Cache) RenderCount() int { return c.renders }

// RenderedPixels returns the number of pixels copied since creation.
func (c *Cache) RenderedPixels() int64 { return c.renderedPixels }
