package raster

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabColorReferencePoints(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		l, a, bb float64
	}{
		{"black", 0, 0, 0, 0, 128, 128},
		{"white", 255, 255, 255, 255, 128, 128},
		{"mid gray", 119, 119, 119, 128, 128, 128},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, a, b := LabColor(tt.r, tt.g, tt.b)
			assert.InDelta(t, tt.l, float64(l), 2)
			assert.InDelta(t, tt.a, float64(a), 1)
			assert.InDelta(t, tt.bb, float64(b), 1)
		})
	}
}

func TestLabColorAxes(t *testing.T) {
	// Red sits on the positive a axis, blue on the negative b axis.
	_, a, _ := LabColor(255, 0, 0)
	assert.Greater(t, a, uint8(128))
	_, _, b := LabColor(0, 0, 255)
	assert.Less(t, b, uint8(128))
}

func TestNewLabImage(t *testing.T) {
	img := filled(4, 2, color.NRGBA{255, 255, 255, 255})
	img.SetNRGBA(3, 1, color.NRGBA{0, 0, 0, 0})

	lab := NewLabImage(img)
	require.NotNil(t, lab)
	assert.Equal(t, 4, lab.Width)
	assert.Equal(t, 2, lab.Height)
	assert.Len(t, lab.Pix, 4*2*3)

	wl, wa, wb := LabColor(255, 255, 255)
	l, a, b := lab.At(0, 0)
	assert.Equal(t, [3]uint8{wl, wa, wb}, [3]uint8{l, a, b})

	// Transparent pixels keep their color coordinates.
	l, _, _ = lab.At(3, 1)
	assert.Equal(t, uint8(0), l)

	assert.Zero(t, lab.DistanceSq(1, 1, float32(wl), float32(wa), float32(wb)))
	assert.Greater(t, lab.DistanceSq(3, 1, float32(wl), float32(wa), float32(wb)), float32(200*200))

	assert.Nil(t, NewLabImage(nil))
}
