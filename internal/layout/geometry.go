// Package layout derives reading order for detected manuscript lines.
// Everything here is a pure function of line geometry and is safe for
// concurrent use.
package layout

import "github.com/ternarybob/folio/internal/models"

// CenterX returns the mean x coordinate of the line's baseline, or 0 when
// the line has no baseline.
func CenterX(line models.Line) float64 {
	if len(line.Baseline) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range line.Baseline {
		sum += p.X()
	}
	return sum / float64(len(line.Baseline))
}

// TopY returns the top edge of the line: the smallest boundary y, falling
// back to the baseline, else 0.
func TopY(line models.Line) float64 {
	if len(line.Boundary) > 0 {
		return minY(line.Boundary)
	}
	if len(line.Baseline) > 0 {
		return minY(line.Baseline)
	}
	return 0
}

// Bounds returns the bounding rectangle of the boundary polygon (or the
// baseline when there is no boundary). A line without geometry yields an
// all-zero rectangle.
func Bounds(line models.Line) models.BBox {
	pts := outline(line)
	if len(pts) == 0 {
		return models.BBox{}
	}
	b := models.BBox{X1: pts[0].X(), Y1: pts[0].Y(), X2: pts[0].X(), Y2: pts[0].Y()}
	for _, p := range pts[1:] {
		b.X1 = minFloat64(b.X1, p.X())
		b.Y1 = minFloat64(b.Y1, p.Y())
		b.X2 = maxFloat64(b.X2, p.X())
		b.Y2 = maxFloat64(b.Y2, p.Y())
	}
	return b
}

// outline returns the points describing the line's extent
func outline(line models.Line) []models.Point {
	if len(line.Boundary) > 0 {
		return line.Boundary
	}
	return line.Baseline
}

func minY(pts []models.Point) float64 {
	y := pts[0].Y()
	for _, p := range pts[1:] {
		y = minFloat64(y, p.Y())
	}
	return y
}

func minFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func absFloat64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
