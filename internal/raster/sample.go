package raster

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBAColor represents an RGBA color with 8-bit components including alpha.
//
// The alpha component represents opacity:
//   - 0 = fully transparent (erased)
//   - 255 = fully opaque
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 100=white)
}

// LabColor8 is a color in the 8-bit Lab convention used by the selection
// cache.
type LabColor8 struct {
	L uint8 `json:"l"`
	A uint8 `json:"a"`
	B uint8 `json:"b"`
}

// ColorResult contains a pixel of the working image in several
// representations.
type ColorResult struct {
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Hex      string    `json:"hex"`  // "#RRGGBB", alpha excluded
	RGBA     RGBAColor `json:"rgba"` // current pixel including alpha
	Original RGBAColor `json:"original"`
	HSL      HSLColor  `json:"hsl"`
	Lab      LabColor8 `json:"lab"` // value held by the perceptual cache
}

// SampleColor returns the current and original color at (x, y).
//
// # Errors
//
//   - ErrNoImage if nothing is loaded
//   - an error if (x, y) lies outside the image
func (s *Store) SampleColor(x, y int) (*ColorResult, error) {
	if s.current == nil {
		return nil, ErrNoImage
	}
	b := s.current.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	c := s.current.NRGBAAt(x, y)
	o := s.original.NRGBAAt(x, y)
	res := &ColorResult{
		X:        x,
		Y:        y,
		Hex:      fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		RGBA:     RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		Original: RGBAColor{R: o.R, G: o.G, B: o.B, A: o.A},
		HSL:      rgbToHSL(c.R, c.G, c.B),
	}
	if s.lab != nil {
		l, a, bb := s.lab.At(x, y)
		res.Lab = LabColor8{L: l, A: a, B: bb}
	}
	return res, nil
}

// rgbToHSL converts 8-bit RGB values to rounded HSL components.
func rgbToHSL(r, g, b uint8) HSLColor {
	c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
	h, s, l := c.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return HSLColor{
		H: int(h),
		S: int(s * 100),
		L: int(l * 100),
	}
}
