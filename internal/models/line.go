package models

import "time"

// Point is a single (x, y) coordinate in page pixel space, encoded as [x, y].
type Point [2]float64

// X returns the horizontal coordinate
func (p Point) X() float64 { return p[0] }

// Y returns the vertical coordinate
func (p Point) Y() float64 { return p[1] }

// DetectedLine is the raw geometry produced by the external line detector
type DetectedLine struct {
	Baseline []Point `json:"baseline"`
	Boundary []Point `json:"boundary"`
}

// Line is one detected text line of a page. Geometry is immutable after
// detection; only DisplayOrder changes when the reading order is resolved.
type Line struct {
	LineNumber   int     `json:"line_number"`
	Baseline     []Point `json:"baseline"`
	Boundary     []Point `json:"boundary"`
	DisplayOrder int     `json:"display_order"`
}

// BBox is an axis-aligned bounding rectangle
type BBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Width returns the horizontal extent of the box
func (b BBox) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

// LineSet holds the detected lines of one page in reading order.
// DisplayOrder[i] is the display position of Lines[i] and is always a
// permutation of [0, len(Lines)).
type LineSet struct {
	PageID       string    `json:"page_id" badgerhold:"key"`
	Lines        []Line    `json:"lines"`
	DisplayOrder []int     `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Count returns the number of detected lines, tolerating a nil set
func (ls *LineSet) Count() int {
	if ls == nil {
		return 0
	}
	return len(ls.Lines)
}

// CloneLines returns a deep copy of the given lines
func CloneLines(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{
			LineNumber:   l.LineNumber,
			Baseline:     append([]Point(nil), l.Baseline...),
			Boundary:     append([]Point(nil), l.Boundary...),
			DisplayOrder: l.DisplayOrder,
		}
	}
	return out
}

// LineOrderResult is returned by a line order update. Applied is false when a
// manual order was rejected; LineSet is then the stored set, unchanged.
type LineOrderResult struct {
	Mode        LineOrderMode `json:"mode"`
	Applied     bool          `json:"applied"`
	Warning     string        `json:"warning,omitempty"`
	ColumnCount int           `json:"column_count,omitempty"`
	LineSet     *LineSet      `json:"line_set"`
}
