package soften

import (
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// disc returns a size x size image with an opaque red disc of radius r on a
// transparent background.
func disc(size int, r float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c)
			if d <= r {
				img.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 0})
			}
		}
	}
	return img
}

func TestKernelSizes(t *testing.T) {
	tests := []struct {
		level    int
		morph    int
		blurSize int
	}{
		{1, 3, 7},
		{3, 5, 15},
		{5, 7, 23},
	}
	for _, tt := range tests {
		morph, blurSize := KernelSizes(tt.level)
		assert.Equal(t, tt.morph, morph, "level %d", tt.level)
		assert.Equal(t, tt.blurSize, blurSize, "level %d", tt.level)
		assert.Equal(t, 1, blurSize%2)
	}
}

func TestApplyLevelZeroIsIdentity(t *testing.T) {
	src := disc(40, 12)
	out := Apply(src, 0)
	require.NotNil(t, out)
	assert.Equal(t, src.Pix, out.Pix)
	assert.NotSame(t, &src.Pix[0], &out.Pix[0])

	assert.Equal(t, src.Pix, Apply(src, -3).Pix)
	assert.Nil(t, Apply(nil, 2))
}

func TestApplySoftensOnlyTheBoundary(t *testing.T) {
	const size, radius = 64, 20.0
	src := disc(size, radius)
	before := append([]uint8(nil), src.Pix...)

	out := Apply(src, 3)
	require.Equal(t, src.Bounds(), out.Bounds())
	assert.Equal(t, before, src.Pix, "input must not be modified")

	c := float64(size) / 2
	changed := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c)
			in, got := src.NRGBAAt(x, y), out.NRGBAAt(x, y)

			// Color channels are never touched.
			assert.Equal(t, in.R, got.R)
			if in.A != got.A {
				changed++
				assert.InDelta(t, radius, d, 6, "changed pixel (%d,%d) far from the edge", x, y)
			}
			if d < radius-8 {
				assert.Equal(t, uint8(255), got.A, "interior pixel (%d,%d)", x, y)
			}
			if d > radius+8 {
				assert.Equal(t, uint8(0), got.A, "exterior pixel (%d,%d)", x, y)
			}
		}
	}
	assert.Greater(t, changed, 0)
}

func TestApplyClampsLevel(t *testing.T) {
	src := disc(48, 15)
	assert.Equal(t, Apply(src, MaxLevel).Pix, Apply(src, MaxLevel+4).Pix)
}

func TestAlphaMask(t *testing.T) {
	img := image.NewNRGBA(image.Rect(3, 3, 6, 5))
	img.SetNRGBA(4, 4, color.NRGBA{A: 77})

	mask := AlphaMask(img)
	assert.Equal(t, image.Rect(0, 0, 3, 2), mask.Bounds())
	assert.Equal(t, uint8(77), mask.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(0), mask.GrayAt(0, 0).Y)
}

// elementMask renders an element as rows of '#' and '.' for comparison.
func elementMask(size int) []string {
	rows := make([][]byte, size)
	for i := range rows {
		rows[i] = []byte(strings.Repeat(".", size))
	}
	for _, s := range ellipse(size) {
		for dx := s.x0; dx <= s.x1; dx++ {
			rows[s.dy+size/2][dx+size/2] = '#'
		}
	}
	out := make([]string, size)
	for i, r := range rows {
		out[i] = string(r)
	}
	return out
}

func TestEllipseElement(t *testing.T) {
	tests := []struct {
		size int
		want []string
	}{
		{1, []string{"#"}},
		{3, []string{".#.", "###", ".#."}},
		{4, []string{"..#.", "####", "####", "####"}},
		{5, []string{"..#..", "#####", "#####", "#####", "..#.."}},
		{7, []string{"...#...", ".#####.", "#######", "#######", "#######", ".#####.", "...#..."}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, elementMask(tt.size), "size %d", tt.size)
	}
}

func TestEdgeBandSinglePixelIsCross(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 21, 21))
	mask.SetGray(10, 10, color.Gray{Y: 255})

	morph, _ := KernelSizes(1)
	band := edgeBand(mask, ellipse(morph))

	want := map[image.Point]bool{
		{10, 10}: true, {9, 10}: true, {11, 10}: true, {10, 9}: true, {10, 11}: true,
	}
	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			v := band.GrayAt(x, y).Y
			if want[image.Point{x, y}] {
				assert.Equal(t, uint8(255), v, "(%d,%d)", x, y)
			} else {
				assert.Equal(t, uint8(0), v, "(%d,%d)", x, y)
			}
		}
	}
}

func TestEdgeBandIsSymmetric(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 21, 21))
	mask.SetGray(10, 10, color.Gray{Y: 255})

	morph, _ := KernelSizes(3)
	band := edgeBand(mask, ellipse(morph))
	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			assert.Equal(t, band.GrayAt(x, y).Y, band.GrayAt(20-x, 20-y).Y, "(%d,%d)", x, y)
		}
	}
	assert.Equal(t, uint8(0), band.GrayAt(8, 8).Y, "corners are outside the ellipse")
	assert.Equal(t, uint8(255), band.GrayAt(8, 10).Y)
}

func TestGaussianSigma(t *testing.T) {
	_, blurSize := KernelSizes(3)
	assert.InDelta(t, 2.6, gaussianSigma(blurSize), 1e-9)
	_, blurSize = KernelSizes(1)
	assert.InDelta(t, 1.4, gaussianSigma(blurSize), 1e-9)
}

func TestGaussianPreservesFlatMask(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 12, 9))
	for i := range mask.Pix {
		mask.Pix[i] = 200
	}
	out := gaussian(mask, 7)
	for y := 0; y < 9; y++ {
		for x := 0; x < 12; x++ {
			assert.InDelta(t, 200, channel(out, x, y), 1, "(%d,%d)", x, y)
		}
	}
}
