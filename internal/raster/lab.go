package raster

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// LabImage holds the CIE L*a*b* rendition of an NRGBA buffer.
//
// Each pixel is stored as three bytes using the common 8-bit convention:
//   - L: lightness scaled from 0-100 to 0-255
//   - a: green-red axis offset by +128
//   - b: blue-yellow axis offset by +128
//
// Euclidean distance in this space approximates perceived color difference,
// and the 0-255 range lines up with the selection tolerance scale.
type LabImage struct {
	Width  int
	Height int
	// Pix holds L, a, b triples in row-major order (3 bytes per pixel).
	Pix []uint8
}

// linearLUT maps an 8-bit sRGB channel value to linear light.
var linearLUT = func() [256]float64 {
	var lut [256]float64
	for i := range lut {
		lut[i], _, _ = colorful.Color{R: float64(i) / 255.0}.LinearRgb()
	}
	return lut
}()

// NewLabImage converts every pixel of src to the Lab cache representation.
// Alpha is ignored: transparent pixels keep their color coordinates.
func NewLabImage(src *image.NRGBA) *LabImage {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	lab := &LabImage{Width: w, Height: h, Pix: make([]uint8, w*h*3)}

	// Flat regions repeat the same color; skip the conversion for runs.
	var lastR, lastG, lastB uint8
	var lastL, lastA, lastBB uint8
	haveLast := false

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := lab.Pix[y*w*3 : (y+1)*w*3]
		for x := 0; x < w; x++ {
			r, g, bl := row[x*4], row[x*4+1], row[x*4+2]
			if !haveLast || r != lastR || g != lastG || bl != lastB {
				lastL, lastA, lastBB = rgbToLab8(r, g, bl)
				lastR, lastG, lastB = r, g, bl
				haveLast = true
			}
			out[x*3] = lastL
			out[x*3+1] = lastA
			out[x*3+2] = lastBB
		}
	}
	return lab
}

// At returns the quantized L, a, b values at (x, y).
func (l *LabImage) At(x, y int) (uint8, uint8, uint8) {
	i := (y*l.Width + x) * 3
	return l.Pix[i], l.Pix[i+1], l.Pix[i+2]
}

// DistanceSq returns the squared Euclidean distance between the pixel at
// (x, y) and the reference Lab triple.
func (l *LabImage) DistanceSq(x, y int, refL, refA, refB float32) float32 {
	i := (y*l.Width + x) * 3
	dL := float32(l.Pix[i]) - refL
	da := float32(l.Pix[i+1]) - refA
	db := float32(l.Pix[i+2]) - refB
	return dL*dL + da*da + db*db
}

// rgbToLab8 converts an sRGB color to the 8-bit Lab convention.
func rgbToLab8(r, g, b uint8) (uint8, uint8, uint8) {
	x, y, z := colorful.LinearRgbToXyz(linearLUT[r], linearLUT[g], linearLUT[b])
	l, a, bb := colorful.XyzToLab(x, y, z)
	// go-colorful reports L in [0,1] and a/b scaled by 1/100.
	return quantize(l * 255), quantize(a*100 + 128), quantize(bb*100 + 128)
}

// LabColor returns the 8-bit Lab triple of an sRGB color.
func LabColor(r, g, b uint8) (uint8, uint8, uint8) {
	return rgbToLab8(r, g, b)
}

func quantize(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
