// Package viewport tracks what part of the image is on screen and keeps a
// display-ready copy of it.
//
// View holds pan and zoom state and maps between screen and image
// coordinates. It implements Provider, the query the selection tool and the
// render cache use to learn which image rectangle is visible.
//
// Cache owns the display buffer. Images up to a size threshold are rendered
// whole on rebuild; larger images are rendered incrementally, one visible
// rectangle (plus a margin) at a time, and the cache remembers the union of
// what it has already rendered so repeated requests for covered areas cost
// nothing.
package viewport

import (
	"image"
	"math"
)

// Zoom limits and steps.
const (
	MinZoom = 0.02
	MaxZoom = 32.0
	// ZoomStep is the factor applied by ZoomIn and ZoomOut.
	ZoomStep = 1.25
	// WheelStep is the factor applied per wheel notch by ZoomAt.
	WheelStep = 1.15
	// FitFill is the share of the canvas FitToScreen fills.
	FitFill = 0.95
)

// Provider reports the image-space rectangle currently visible to the user.
type Provider interface {
	VisibleImageRect() image.Rectangle
}

// View is the pan/zoom state of a canvas showing one image.
type View struct {
	zoom         float64
	panX, panY   float64
	canvasWidth  int
	canvasHeight int
	imageWidth   int
	imageHeight  int
}

// NewView returns a view of a canvas of the given size at 100% zoom.
func NewView(canvasWidth, canvasHeight int) *View {
	return &View{
		zoom:         1,
		canvasWidth:  canvasWidth,
		canvasHeight: canvasHeight,
	}
}

// Zoom returns the current zoom factor.
func (v *View) Zoom() float64 { return v.zoom }

// PanOffset returns the screen position of the image origin.
func (v *View) PanOffset() (float64, float64) { return v.panX, v.panY }

// CanvasSize returns the canvas dimensions in screen pixels.
func (v *View) CanvasSize() (int, int) { return v.canvasWidth, v.canvasHeight }

// SetCanvasSize resizes the canvas. It reports whether the size changed.
func (v *View) SetCanvasSize(width, height int) bool {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == v.canvasWidth && height == v.canvasHeight {
		return false
	}
	v.canvasWidth, v.canvasHeight = width, height
	return true
}

// SetImageSize tells the view the dimensions of the displayed image.
func (v *View) SetImageSize(width, height int) {
	v.imageWidth, v.imageHeight = width, height
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom]. Changes of
// 0.001 or less are ignored.
func (v *View) SetZoom(zoom float64) bool {
	zoom = clampZoom(zoom)
	if math.Abs(zoom-v.zoom) <= 0.001 {
		return false
	}
	v.zoom = zoom
	return true
}

// ZoomIn zooms in by one ZoomStep.
func (v *View) ZoomIn() bool { return v.SetZoom(v.zoom * ZoomStep) }

// ZoomOut zooms out by one ZoomStep.
func (v *View) ZoomOut() bool { return v.SetZoom(v.zoom / ZoomStep) }

// ZoomAt zooms one wheel notch while keeping the image point under the
// screen position anchor fixed.
func (v *View) ZoomAt(anchor image.Point, in bool) bool {
	factor := WheelStep
	if !in {
		factor = 1 / WheelStep
	}
	before := v.ScreenToImage(anchor)
	newZoom := clampZoom(v.zoom * factor)
	if math.Abs(newZoom-v.zoom) <= 0.001 {
		return false
	}
	v.zoom = newZoom
	after := v.ImageToScreen(before)
	v.panX += float64(anchor.X - after.X)
	v.panY += float64(anchor.Y - after.Y)
	return true
}

// Pan moves the image by (dx, dy) screen pixels.
func (v *View) Pan(dx, dy float64) {
	v.panX += dx
	v.panY += dy
}

// SetPan places the image origin at screen position (x, y).
func (v *View) SetPan(x, y float64) {
	v.panX, v.panY = x, y
}

// FitToScreen scales the image to fill FitFill of the canvas and centers it.
// It is a no-op when the image or canvas has no area.
func (v *View) FitToScreen() bool {
	if v.imageWidth <= 0 || v.imageHeight <= 0 || v.canvasWidth <= 0 || v.canvasHeight <= 0 {
		return false
	}
	sx := float64(v.canvasWidth) / float64(v.imageWidth)
	sy := float64(v.canvasHeight) / float64(v.imageHeight)
	v.zoom = clampZoom(math.Min(sx, sy) * FitFill)

	w := float64(v.imageWidth) * v.zoom
	h := float64(v.imageHeight) * v.zoom
	v.panX = (float64(v.canvasWidth) - w) / 2
	v.panY = (float64(v.canvasHeight) - h) / 2
	return true
}

// ScreenToImage maps a canvas position to image coordinates.
func (v *View) ScreenToImage(p image.Point) image.Point {
	return image.Point{
		X: int((float64(p.X) - v.panX) / v.zoom),
		Y: int((float64(p.Y) - v.panY) / v.zoom),
	}
}

// ImageToScreen maps an image position to canvas coordinates.
func (v *View) ImageToScreen(p image.Point) image.Point {
	return image.Point{
		X: int(float64(p.X)*v.zoom + v.panX),
		Y: int(float64(p.Y)*v.zoom + v.panY),
	}
}

// ImageRectToScreen maps an image rectangle to the canvas rectangle covering
// it, rounded outward by one pixel.
func (v *View) ImageRectToScreen(r image.Rectangle) image.Rectangle {
	tl := v.ImageToScreen(r.Min)
	return image.Rect(
		tl.X, tl.Y,
		tl.X+int(float64(r.Dx())*v.zoom)+1,
		tl.Y+int(float64(r.Dy())*v.zoom)+1,
	)
}

// VisibleImageRect returns the part of the image inside the canvas. It is
// empty when no image size is set or the image is scrolled off screen.
func (v *View) VisibleImageRect() image.Rectangle {
	if v.imageWidth <= 0 || v.imageHeight <= 0 {
		return image.Rectangle{}
	}
	tl := v.ScreenToImage(image.Point{})
	br := v.ScreenToImage(image.Point{X: v.canvasWidth, Y: v.canvasHeight})
	// image.Rect would reorder inverted corners; build the rectangle as-is.
	r := image.Rectangle{
		Min: image.Point{X: max(0, tl.X), Y: max(0, tl.Y)},
		Max: image.Point{X: min(v.imageWidth, br.X), Y: min(v.imageHeight, br.Y)},
	}
	if r.Empty() {
		return image.Rectangle{}
	}
	return r
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
