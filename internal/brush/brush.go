// Package brush implements the round, feathered erase and repair brushes.
//
// A brush of diameter D has radius R = D/2 (integer division) and a hard
// radius H = R*hardness. Every pixel within R of the center receives a
// strength:
//
//	d <= H       strength = 1
//	H < d <= R   strength = (R² - d²) / (R² - H²)
//	d > R        untouched
//
// Strength falls off linearly in squared distance so the inner loop never
// takes a square root. Erase multiplies alpha by (1 - strength); repair
// blends every channel toward the original image by strength.
//
// All operations clip to the buffer and return the rectangle they touched.
// A nil buffer or a radius of 0 is a no-op.
package brush

import (
	"image"
)

// RepairHardness is the fixed feather hardness of the repair brush.
const RepairHardness = 0.8

// footprint is the clipped square a brush stamp covers.
type footprint struct {
	minX, minY, maxX, maxY int // inclusive
	cx, cy                 int
	radiusSq               float32
	hardRadiusSq           float32
	invFeather             float32
}

func newFootprint(b image.Rectangle, cx, cy, diameter int, hardness float64) (footprint, bool) {
	radius := diameter / 2
	if radius <= 0 || b.Empty() {
		return footprint{}, false
	}
	if hardness < 0 {
		hardness = 0
	} else if hardness > 1 {
		hardness = 1
	}

	f := footprint{
		minX: max(b.Min.X, cx-radius),
		maxX: min(b.Max.X-1, cx+radius),
		minY: max(b.Min.Y, cy-radius),
		maxY: min(b.Max.Y-1, cy+radius),
		cx:   cx,
		cy:   cy,
	}
	if f.minX > f.maxX || f.minY > f.maxY {
		return footprint{}, false
	}

	f.radiusSq = float32(radius * radius)
	hardRadius := float32(radius) * float32(hardness)
	f.hardRadiusSq = hardRadius * hardRadius
	if feather := f.radiusSq - f.hardRadiusSq; feather > 0 {
		f.invFeather = 1 / feather
	}
	return f, true
}

func (f footprint) rect() image.Rectangle {
	return image.Rect(f.minX, f.minY, f.maxX+1, f.maxY+1)
}

// strength returns the brush strength at squared distance distSq and
// whether the pixel is inside the brush at all.
func (f footprint) strength(distSq float32) (float32, bool) {
	if distSq > f.radiusSq {
		return 0, false
	}
	if distSq <= f.hardRadiusSq {
		return 1, true
	}
	return (f.radiusSq - distSq) * f.invFeather, true
}

// Strength reports the strength a brush of the given diameter and hardness
// applies at offset (dx, dy) from its center. It is exposed for callers that
// preview the brush falloff.
func Strength(dx, dy, diameter int, hardness float64) float32 {
	b := image.Rect(-diameter, -diameter, diameter+1, diameter+1)
	f, ok := newFootprint(b, 0, 0, diameter, hardness)
	if !ok {
		return 0
	}
	s, _ := f.strength(float32(dx*dx + dy*dy))
	return s
}

// Erase stamps the erase brush centered at (cx, cy).
func Erase(img *image.NRGBA, cx, cy, diameter int, hardness float64) image.Rectangle {
	if img == nil {
		return image.Rectangle{}
	}
	f, ok := newFootprint(img.Bounds(), cx, cy, diameter, hardness)
	if !ok {
		return image.Rectangle{}
	}

	for y := f.minY; y <= f.maxY; y++ {
		dy := float32(y - f.cy)
		dySq := dy * dy
		off := img.PixOffset(f.minX, y) + 3
		for x := f.minX; x <= f.maxX; x, off = x+1, off+4 {
			dx := float32(x - f.cx)
			s, inside := f.strength(dx*dx + dySq)
			if !inside {
				continue
			}
			img.Pix[off] = uint8(float32(img.Pix[off]) * (1 - s))
		}
	}
	return f.rect()
}

// Repair stamps the repair brush centered at (cx, cy), blending all four
// channels of cur toward orig with RepairHardness feathering. Both buffers
// must have identical bounds.
func Repair(cur, orig *image.NRGBA, cx, cy, diameter int) image.Rectangle {
	if cur == nil || orig == nil || cur.Bounds() != orig.Bounds() {
		return image.Rectangle{}
	}
	f, ok := newFootprint(cur.Bounds(), cx, cy, diameter, RepairHardness)
	if !ok {
		return image.Rectangle{}
	}

	for y := f.minY; y <= f.maxY; y++ {
		dy := float32(y - f.cy)
		dySq := dy * dy
		off := cur.PixOffset(f.minX, y)
		ooff := orig.PixOffset(f.minX, y)
		for x := f.minX; x <= f.maxX; x, off, ooff = x+1, off+4, ooff+4 {
			dx := float32(x - f.cx)
			s, inside := f.strength(dx*dx + dySq)
			if !inside {
				continue
			}
			for c := 0; c < 4; c++ {
				cv := float32(cur.Pix[off+c])
				ov := float32(orig.Pix[ooff+c])
				cur.Pix[off+c] = uint8(cv*(1-s) + ov*s)
			}
		}
	}
	return f.rect()
}
