// Package selection removes the background region around a seed pixel.
//
// Remove grows a 4-connected region outward from the seed, clearing the
// alpha of every pixel whose Lab color lies within the tolerance of the
// seed's color. Growth is confined to a viewport rectangle, normally the
// part of the image the user can currently see.
//
// The fill is breadth-first over an explicit queue with an image-sized
// visited mask, so arbitrarily large connected regions never grow the
// goroutine stack and every pixel is tested at most once.
package selection

import (
	"image"

	"github.com/ironsheep/bg-eraser-mcp/internal/raster"
)

// Result describes what a removal changed.
type Result struct {
	// Cleared is the number of pixels whose alpha was set to 0.
	Cleared int `json:"cleared"`
	// Dirty bounds every cleared pixel. It is empty when nothing changed.
	Dirty image.Rectangle `json:"-"`
}

// Remove clears the region connected to seed whose perceptual distance from
// the seed color is at most tolerance.
//
// Parameters:
//   - store: the raster store to edit in place.
//   - seed: starting pixel in image coordinates.
//   - tolerance: maximum Lab distance (0-255) from the seed color.
//   - viewport: rectangle growth is restricted to. An empty rectangle means
//     the whole image.
//
// Remove is a no-op when no image is loaded, the seed lies outside the image
// or viewport, or the seed pixel is already transparent. Running it again
// with the same arguments changes nothing.
func Remove(store *raster.Store, seed image.Point, tolerance int, viewport image.Rectangle) Result {
	img := store.Current()
	lab := store.Perceptual()
	if img == nil || lab == nil {
		return Result{}
	}

	b := img.Bounds()
	bounds := b
	if !viewport.Empty() {
		bounds = viewport.Intersect(b)
	}
	if !seed.In(bounds) {
		return Result{}
	}
	if img.Pix[img.PixOffset(seed.X, seed.Y)+3] == 0 {
		return Result{}
	}

	if tolerance < 0 {
		tolerance = 0
	}
	maxDistSq := float32(tolerance) * float32(tolerance)
	sl, sa, sb := lab.At(seed.X-b.Min.X, seed.Y-b.Min.Y)
	seedL, seedA, seedB := float32(sl), float32(sa), float32(sb)

	w := b.Dx()
	visited := make([]bool, w*b.Dy())
	index := func(p image.Point) int { return (p.Y-b.Min.Y)*w + (p.X - b.Min.X) }

	queue := make([]image.Point, 0, 10000)
	queue = append(queue, seed)
	visited[index(seed)] = true

	var res Result
	neighbors := [4]image.Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

	for head := 0; head < len(queue); head++ {
		p := queue[head]
		if lab.DistanceSq(p.X-b.Min.X, p.Y-b.Min.Y, seedL, seedA, seedB) > maxDistSq {
			continue
		}

		img.Pix[img.PixOffset(p.X, p.Y)+3] = 0
		res.Cleared++
		res.Dirty = res.Dirty.Union(image.Rectangle{Min: p, Max: p.Add(image.Point{1, 1})})

		for _, d := range neighbors {
			n := p.Add(d)
			if !n.In(bounds) {
				continue
			}
			i := index(n)
			if visited[i] {
				continue
			}
			visited[i] = true
			if img.Pix[img.PixOffset(n.X, n.Y)+3] == 0 {
				continue
			}
			queue = append(queue, n)
		}
	}

	// Only alpha changed, but keep the cache in lockstep with the buffer.
	store.RefreshPerceptual()
	return res
}
