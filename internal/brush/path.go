package brush

import (
	"image"
	"math"
)

// PathPoints returns the stamp centers for a stroke segment from start to
// end with a brush of the given diameter. Both endpoints are included.
//
// Samples are spaced max(1, 0.3*radius) apart so consecutive stamps overlap
// and fast pointer motion leaves no gaps.
func PathPoints(start, end image.Point, diameter int) []image.Point {
	d := end.Sub(start)
	if d.X == 0 && d.Y == 0 {
		return []image.Point{start}
	}

	distance := math.Hypot(float64(d.X), float64(d.Y))
	radius := diameter / 2
	if radius < 1 {
		radius = 1
	}
	step := math.Max(1, float64(radius)*0.3)
	steps := int(distance/step) + 1

	points := make([]image.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		points = append(points, image.Point{
			X: start.X + int(math.Round(t*float64(d.X))),
			Y: start.Y + int(math.Round(t*float64(d.Y))),
		})
	}
	return points
}

// EraseAlongPath stamps the erase brush along the segment start-end and
// returns the union of the touched rectangles.
func EraseAlongPath(img *image.NRGBA, start, end image.Point, diameter int, hardness float64) image.Rectangle {
	var dirty image.Rectangle
	for _, p := range PathPoints(start, end, diameter) {
		dirty = dirty.Union(Erase(img, p.X, p.Y, diameter, hardness))
	}
	return dirty
}

// RepairAlongPath stamps the repair brush along the segment start-end and
// returns the union of the touched rectangles.
func RepairAlongPath(cur, orig *image.NRGBA, start, end image.Point, diameter int) image.Rectangle {
	var dirty image.Rectangle
	for _, p := range PathPoints(start, end, diameter) {
		dirty = dirty.Union(Repair(cur, orig, p.X, p.Y, diameter))
	}
	return dirty
}
