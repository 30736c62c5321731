package layout

import (
	"sort"

	"github.com/ternarybob/folio/internal/models"
)

// DefaultColumnThreshold is the fraction of the image width below which two
// neighbouring lines are considered part of the same column.
const DefaultColumnThreshold = 0.1

// ClusterByColumn groups lines into vertical columns by horizontal proximity.
//
// The image width is estimated from the rightmost point of any line. Lines
// are sorted by CenterX and scanned once; a line joins the current column
// when its centre is closer than threshold*width to the centre of the line
// appended last (chain distance, not the column centroid). Columns are
// returned left to right. The input slice is not modified.
func ClusterByColumn(lines []models.Line, threshold float64) [][]models.Line {
	if len(lines) == 0 {
		return nil
	}

	width, ok := imageWidth(lines)
	if !ok {
		return [][]models.Line{append([]models.Line(nil), lines...)}
	}

	sorted := append([]models.Line(nil), lines...)
	sort.SliceStable(sorted, func(i, j int) bool {
		xi, xj := CenterX(sorted[i]), CenterX(sorted[j])
		if xi != xj {
			return xi < xj
		}
		return sorted[i].LineNumber < sorted[j].LineNumber
	})

	// Every point at x<=0 leaves no width to measure gaps against
	if width <= 0 {
		return [][]models.Line{sorted}
	}
	thresholdPx := threshold * width

	var columns [][]models.Line
	current := []models.Line{sorted[0]}
	for _, line := range sorted[1:] {
		prevX := CenterX(current[len(current)-1])
		if absFloat64(CenterX(line)-prevX) < thresholdPx {
			current = append(current, line)
			continue
		}
		columns = append(columns, current)
		current = []models.Line{line}
	}
	return append(columns, current)
}

// imageWidth returns the largest x over all outline points
func imageWidth(lines []models.Line) (float64, bool) {
	found := false
	width := 0.0
	for _, line := range lines {
		for _, p := range outline(line) {
			if !found || p.X() > width {
				width = p.X()
				found = true
			}
		}
	}
	return width, found
}
