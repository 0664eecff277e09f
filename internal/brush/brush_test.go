package brush

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opaque(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 10, 20, 30, 255
	}
	return img
}

func TestStrength(t *testing.T) {
	// diameter 20 -> radius 10; hardness 0.5 -> hard radius 5.
	tests := []struct {
		name   string
		dx, dy int
		want   float32
	}{
		{"center", 0, 0, 1},
		{"hard edge", 5, 0, 1},
		{"feather", 8, 0, 0.48},
		{"diagonal", 6, 6, (100 - 72) / 75.0},
		{"rim", 10, 0, 0},
		{"outside", 11, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Strength(tt.dx, tt.dy, 20, 0.5), 1e-5)
		})
	}

	assert.Zero(t, Strength(0, 0, 1, 0.5), "radius 0 brush has no effect")
	assert.Equal(t, float32(1), Strength(9, 0, 20, 1), "hardness 1 is a hard disc")
}

func TestStrengthMonotone(t *testing.T) {
	for _, h := range []float64{0, 0.3, 0.8} {
		prev := float32(2)
		for d := 0; d <= 12; d++ {
			s := Strength(d, 0, 24, h)
			assert.LessOrEqual(t, s, prev, "hardness %v distance %d", h, d)
			prev = s
		}
	}
}

func TestErase(t *testing.T) {
	img := opaque(40, 40)
	dirty := Erase(img, 20, 20, 20, 0.5)
	assert.Equal(t, image.Rect(10, 10, 31, 31), dirty)

	assert.Equal(t, uint8(0), img.NRGBAAt(20, 20).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(25, 20).A)
	assert.Equal(t, uint8(132), img.NRGBAAt(28, 20).A)
	assert.Equal(t, uint8(255), img.NRGBAAt(30, 20).A)
	assert.Equal(t, uint8(255), img.NRGBAAt(31, 20).A)
	assert.Equal(t, uint8(255), img.NRGBAAt(10, 10).A, "corner of the square is outside the disc")

	// Only alpha changes.
	assert.Equal(t, color.NRGBA{10, 20, 30, 0}, img.NRGBAAt(20, 20))
}

func TestEraseRepeatedStampsAccumulate(t *testing.T) {
	img := opaque(40, 40)
	Erase(img, 20, 20, 20, 0.5)
	Erase(img, 20, 20, 20, 0.5)
	// 255 * 0.52 = 132, then 132 * 0.52 = 68.
	assert.Equal(t, uint8(68), img.NRGBAAt(28, 20).A)
}

func TestEraseClipsAndNoOps(t *testing.T) {
	img := opaque(10, 10)
	dirty := Erase(img, 0, 0, 8, 1)
	assert.Equal(t, image.Rect(0, 0, 5, 5), dirty)
	assert.Equal(t, uint8(0), img.NRGBAAt(0, 0).A)

	before := append([]uint8(nil), img.Pix...)
	assert.True(t, Erase(img, 50, 50, 8, 1).Empty(), "stamp entirely outside")
	assert.True(t, Erase(img, 5, 5, 1, 1).Empty(), "radius 0")
	assert.True(t, Erase(nil, 5, 5, 8, 1).Empty())
	assert.Equal(t, before, img.Pix)
}

func TestRepairRestoresOriginal(t *testing.T) {
	orig := opaque(30, 30)
	cur := opaque(30, 30)
	for i := 3; i < len(cur.Pix); i += 4 {
		cur.Pix[i] = 0
	}

	dirty := Repair(cur, orig, 15, 15, 20)
	assert.Equal(t, image.Rect(5, 5, 26, 26), dirty)
	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, cur.NRGBAAt(15, 15))
	// Hard radius is 8 at RepairHardness.
	assert.Equal(t, uint8(255), cur.NRGBAAt(23, 15).A)
	assert.Equal(t, uint8(0), cur.NRGBAAt(25, 15).A)
	a := cur.NRGBAAt(24, 15).A
	assert.Greater(t, a, uint8(0))
	assert.Less(t, a, uint8(255))
}

func TestRepairHandlesDifferentStrides(t *testing.T) {
	big := opaque(50, 30)
	orig := big.SubImage(image.Rect(0, 0, 30, 30)).(*image.NRGBA)
	cur := image.NewNRGBA(image.Rect(0, 0, 30, 30))

	Repair(cur, orig, 15, 15, 10)
	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, cur.NRGBAAt(15, 15))
}

func TestRepairMismatchedBounds(t *testing.T) {
	cur := opaque(10, 10)
	orig := opaque(12, 10)
	assert.True(t, Repair(cur, orig, 5, 5, 6).Empty())
	assert.True(t, Repair(nil, orig, 5, 5, 6).Empty())
}

func TestPathPoints(t *testing.T) {
	t.Run("single point", func(t *testing.T) {
		pts := PathPoints(image.Pt(3, 4), image.Pt(3, 4), 10)
		assert.Equal(t, []image.Point{{3, 4}}, pts)
	})

	t.Run("includes endpoints", func(t *testing.T) {
		start, end := image.Pt(0, 0), image.Pt(100, 0)
		pts := PathPoints(start, end, 20)
		require.NotEmpty(t, pts)
		assert.Equal(t, start, pts[0])
		assert.Equal(t, end, pts[len(pts)-1])
		// step = max(1, 0.3*10) = 3 -> int(100/3)+1 = 34 steps.
		assert.Len(t, pts, 35)
	})

	t.Run("spacing never exceeds step", func(t *testing.T) {
		pts := PathPoints(image.Pt(5, 5), image.Pt(60, 47), 40)
		for i := 1; i < len(pts); i++ {
			d := pts[i].Sub(pts[i-1])
			assert.LessOrEqual(t, d.X*d.X+d.Y*d.Y, 7*7)
		}
	})

	t.Run("tiny brush steps one pixel", func(t *testing.T) {
		pts := PathPoints(image.Pt(0, 0), image.Pt(0, 10), 1)
		assert.Len(t, pts, 12)
		assert.Equal(t, image.Pt(0, 10), pts[len(pts)-1])
	})
}

func TestEraseAlongPathCoversStroke(t *testing.T) {
	img := opaque(120, 40)
	dirty := EraseAlongPath(img, image.Pt(10, 20), image.Pt(110, 20), 10, 1)
	assert.Equal(t, image.Rect(5, 15, 116, 26), dirty)
	for x := 10; x <= 110; x++ {
		assert.Equal(t, uint8(0), img.NRGBAAt(x, 20).A, "x=%d", x)
	}
	assert.Equal(t, uint8(255), img.NRGBAAt(60, 30).A)
}

func TestRepairAlongPath(t *testing.T) {
	orig := opaque(60, 20)
	cur := opaque(60, 20)
	EraseAlongPath(cur, image.Pt(5, 10), image.Pt(55, 10), 8, 1)
	require.Equal(t, uint8(0), cur.NRGBAAt(30, 10).A)

	RepairAlongPath(cur, orig, image.Pt(5, 10), image.Pt(55, 10), 8)
	assert.Equal(t, uint8(255), cur.NRGBAAt(30, 10).A)
}

func TestEraseHardDisc(t *testing.T) {
	img := opaque(100, 100)
	Erase(img, 50, 50, 20, 1)
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			dx, dy := x-50, y-50
			want := uint8(255)
			if dx*dx+dy*dy <= 100 {
				want = 0
			}
			if got := img.NRGBAAt(x, y).A; got != want {
				t.Fatalf("pixel (%d,%d): alpha %d, want %d", x, y, got, want)
			}
		}
	}
}
