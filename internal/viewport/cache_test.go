package viewport

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a uniform image that records the regions it copies.
type fakeSource struct {
	bounds image.Rectangle
	copies []image.Rectangle
}

func (f *fakeSource) Bounds() image.Rectangle { return f.bounds }

func (f *fakeSource) CopyRegion(dst draw.Image, r image.Rectangle) {
	r = r.Intersect(f.bounds)
	f.copies = append(f.copies, r)
	draw.Draw(dst, r, image.NewUniform(color.NRGBA{1, 2, 3, 255}), image.Point{}, draw.Src)
}

func TestCacheSmallImageRendersFully(t *testing.T) {
	src := &fakeSource{bounds: image.Rect(0, 0, 200, 100)}
	c := NewCache(CacheOptions{})
	c.Rebuild(src)

	assert.False(t, c.IsLarge())
	assert.Equal(t, src.bounds, c.RenderedRegion())
	assert.Equal(t, 1, c.RenderCount())
	assert.Equal(t, int64(200*100), c.RenderedPixels())
	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, c.Display().NRGBAAt(150, 80))

	assert.False(t, c.EnsureVisible(image.Rect(0, 0, 50, 50)))
	assert.Equal(t, 1, c.RenderCount())
}

func TestCacheLargeImageRendersIncrementally(t *testing.T) {
	src := &fakeSource{bounds: image.Rect(0, 0, 4000, 3000)}
	c := NewCache(CacheOptions{})
	c.Rebuild(src)

	require.True(t, c.IsLarge())
	assert.Zero(t, c.RenderCount(), "nothing rendered before a view is known")
	assert.True(t, c.RenderedRegion().Empty())

	visible := image.Rect(1000, 1000, 2400, 1900)
	assert.True(t, c.EnsureVisible(visible))
	want := image.Rect(900, 900, 2500, 2000)
	assert.Equal(t, want, c.RenderedRegion())
	assert.Equal(t, int64(1600*1100), c.RenderedPixels())
	assert.Less(t, c.RenderedPixels(), int64(12_000_000))

	// Pixels outside the rendered region are placeholders.
	assert.Equal(t, color.NRGBA{}, c.Display().NRGBAAt(10, 10))
	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, c.Display().NRGBAAt(1000, 1000))

	// A small pan stays inside the already rendered margin.
	renders := c.RenderCount()
	assert.False(t, c.EnsureVisible(visible.Add(image.Pt(40, -30))))
	assert.False(t, c.EnsureVisible(visible))
	assert.Equal(t, renders, c.RenderCount())

	// A larger pan renders the new area and grows the region.
	assert.True(t, c.EnsureVisible(visible.Add(image.Pt(500, 0))))
	assert.Equal(t, image.Rect(900, 900, 3000, 2000), c.RenderedRegion())
	assert.Equal(t, renders+1, c.RenderCount())
}

func TestCachePanWithinMarginIsFree(t *testing.T) {
	src := &fakeSource{bounds: image.Rect(0, 0, 4000, 3000)}
	c := NewCache(CacheOptions{})
	c.Rebuild(src)

	visible := image.Rect(1000, 1000, 2400, 1900)
	require.True(t, c.EnsureVisible(visible))
	renders := c.RenderCount()

	// The full margin can be consumed before anything renders again.
	assert.False(t, c.EnsureVisible(visible.Add(image.Pt(100, 100))))
	assert.False(t, c.EnsureVisible(visible.Add(image.Pt(-100, -100))))
	assert.Equal(t, renders, c.RenderCount())

	assert.True(t, c.EnsureVisible(visible.Add(image.Pt(101, 0))))
	assert.Equal(t, renders+1, c.RenderCount())
}

func TestCacheClipsToImage(t *testing.T) {
	src := &fakeSource{bounds: image.Rect(0, 0, 4000, 3000)}
	c := NewCache(CacheOptions{Margin: 50})
	c.Rebuild(src)

	assert.True(t, c.EnsureVisible(image.Rect(3900, 2900, 4000, 3000)))
	assert.Equal(t, image.Rect(3850, 2850, 4000, 3000), c.RenderedRegion())
	assert.False(t, c.EnsureVisible(image.Rectangle{}))
}

func TestCacheThresholdOption(t *testing.T) {
	src := &fakeSource{bounds: image.Rect(0, 0, 100, 100)}
	c := NewCache(CacheOptions{LargeImagePixels: 5000, Margin: 10})
	c.Rebuild(src)
	assert.True(t, c.IsLarge())

	c.EnsureVisible(image.Rect(20, 20, 40, 40))
	assert.Equal(t, image.Rect(10, 10, 50, 50), c.RenderedRegion())
}

func TestCacheInvalidate(t *testing.T) {
	src := &fakeSource{bounds: image.Rect(0, 0, 50, 50)}
	c := NewCache(CacheOptions{})
	c.Rebuild(src)
	n := c.RenderCount()

	assert.True(t, c.Invalidate(image.Rect(40, 40, 80, 80)))
	assert.Equal(t, image.Rect(40, 40, 50, 50), src.copies[len(src.copies)-1])
	assert.Equal(t, n+1, c.RenderCount())

	assert.False(t, c.Invalidate(image.Rect(60, 60, 70, 70)))
	assert.False(t, c.Invalidate(image.Rectangle{}))
}

func TestCacheRebuildNil(t *testing.T) {
	c := NewCache(CacheOptions{})
	c.Rebuild(nil)
	assert.Nil(t, c.Display())
	assert.False(t, c.Invalidate(image.Rect(0, 0, 10, 10)))
	assert.False(t, c.EnsureVisible(image.Rect(0, 0, 10, 10)))

	c.Rebuild(&fakeSource{})
	assert.Nil(t, c.Display())
}
