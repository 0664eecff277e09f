// Package soften feathers the alpha boundary of a cut-out image.
//
// The softener finds the band of pixels where opacity changes (the
// difference between a dilated and an eroded copy of the alpha channel) and
// blends alpha toward a Gaussian-blurred alpha only inside that band. Pixels
// away from the boundary keep their exact alpha, so fully opaque interiors
// and fully transparent backgrounds are untouched.
//
// Apply never mutates its input; the same call serves live preview and
// final export.
package soften

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"
)

// MaxLevel is the strongest softening level.
const MaxLevel = 5

// KernelSizes returns the morphology element size and the (odd) blur
// kernel size used for level.
func KernelSizes(level int) (morph, blurSize int) {
	morph = 2 + level
	blurSize = 3 + level*4
	if blurSize%2 == 0 {
		blurSize++
	}
	return morph, blurSize
}

// Apply returns a copy of img with its alpha edges softened.
//
// Parameters:
//   - img: source buffer; it is not modified.
//   - level: 0 (disabled) to MaxLevel. Values outside the range are clamped.
//
// Level 0 returns an identical copy.
func Apply(img *image.NRGBA, level int) *image.NRGBA {
	if img == nil {
		return nil
	}
	result := imaging.Clone(img)
	if level <= 0 {
		return result
	}
	if level > MaxLevel {
		level = MaxLevel
	}

	b := result.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return result
	}

	alpha := AlphaMask(result)
	morph, blurSize := KernelSizes(level)
	band := edgeBand(alpha, ellipse(morph))
	blurred := gaussian(alpha, blurSize)

	strength := float32(level) / 3
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			edge := band.Pix[y*band.Stride+x]
			if edge == 0 {
				continue
			}
			blend := float32(edge) / 255 * strength
			if blend > 1 {
				blend = 1
			}
			i := y*result.Stride + x*4 + 3
			orig := float32(result.Pix[i])
			soft := float32(channel(blurred, x, y))
			result.Pix[i] = uint8(orig*(1-blend) + soft*blend)
		}
	}
	return result
}

// span is one row of a structuring element: offsets dx in [x0, x1] at dy.
type span struct {
	dy, x0, x1 int
}

// ellipse returns the rows of a size x size elliptical structuring element
// anchored at (size/2, size/2). Row widths follow the usual raster ellipse:
// an element of 3 is a cross, 5 is a 5x5 block with single-pixel caps.
func ellipse(size int) []span {
	if size < 1 {
		size = 1
	}
	r := size / 2
	c := size / 2
	invR2 := 0.0
	if r > 0 {
		invR2 = 1 / float64(r*r)
	}

	rows := make([]span, 0, size)
	for i := 0; i < size; i++ {
		dy := i - r
		if dy < -r || dy > r {
			continue
		}
		dx := int(math.RoundToEven(float64(c) * math.Sqrt(float64(r*r-dy*dy)*invR2)))
		j1 := max(c-dx, 0)
		j2 := min(c+dx+1, size)
		rows = append(rows, span{dy: dy, x0: j1 - c, x1: j2 - 1 - c})
	}
	return rows
}

// edgeBand returns dilate(mask) - erode(mask) under the element. Samples
// outside the image are ignored.
func edgeBand(mask *image.Gray, element []span) *image.Gray {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	band := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hi, lo := uint8(0), uint8(255)
			for _, s := range element {
				sy := y + s.dy
				if sy < 0 || sy >= h {
					continue
				}
				row := mask.Pix[sy*mask.Stride:]
				for sx := max(0, x+s.x0); sx <= min(w-1, x+s.x1); sx++ {
					v := row[sx]
					if v > hi {
						hi = v
					}
					if v < lo {
						lo = v
					}
				}
			}
			if hi > lo {
				band.Pix[y*band.Stride+x] = hi - lo
			}
		}
	}
	return band
}

// gaussianSigma derives the standard deviation from an odd kernel size the
// way common imaging toolkits do when no sigma is given.
func gaussianSigma(size int) float64 {
	return 0.3*(float64(size-1)*0.5-1) + 0.8
}

// gaussian blurs mask with a separable size-tap kernel.
func gaussian(mask *image.Gray, size int) *image.RGBA {
	sigma := gaussianSigma(size)
	k := convolution.NewKernel(size, 1)
	half := size / 2
	for i := 0; i < size; i++ {
		x := float64(i - half)
		k.Matrix[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
	}
	norm := k.Normalized()

	opts := convolution.Options{Bias: 0, Wrap: false, KeepAlpha: false}
	out := convolution.Convolve(mask, norm, &opts)
	return convolution.Convolve(out, norm.Transposed(), &opts)
}

// channel reads the gray level bild wrote into an RGBA result.
func channel(img *image.RGBA, x, y int) int {
	return int(img.Pix[y*img.Stride+x*4])
}

// AlphaMask extracts the alpha channel of img as a grayscale image with a
// (0,0) origin.
func AlphaMask(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	mask := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			mask.SetGray(x, y, color.Gray{Y: img.NRGBAAt(b.Min.X+x, b.Min.Y+y).A})
		}
	}
	return mask
}
