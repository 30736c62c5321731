package layout

import (
	"fmt"
	"sort"

	"github.com/ternarybob/folio/internal/models"
)

// ReadingOrderConfig holds configuration for reading order resolution
type ReadingOrderConfig struct {
	// ColumnThreshold is the column clustering distance as a fraction of
	// the image width. Default: 0.1
	ColumnThreshold float64
}

// DefaultReadingOrderConfig returns the default configuration
func DefaultReadingOrderConfig() ReadingOrderConfig {
	return ReadingOrderConfig{ColumnThreshold: DefaultColumnThreshold}
}

// OrderResult is the outcome of a reorder request
type OrderResult struct {
	// Lines in reading order with DisplayOrder stamped
	Lines []models.Line

	// Applied is false when a manual order was rejected and Lines is the
	// untouched input
	Applied bool

	// Warning explains why a manual order was not applied
	Warning string

	// ColumnCount is the number of columns used (rtl/ltr only)
	ColumnCount int
}

// DisplayOrder returns the display position of every line in result order
func (r *OrderResult) DisplayOrder() []int {
	order := make([]int, len(r.Lines))
	for i, l := range r.Lines {
		order[i] = l.DisplayOrder
	}
	return order
}

// Resolver turns detected lines into a reading order
type Resolver struct {
	config ReadingOrderConfig
}

// NewResolver creates a resolver with default configuration
func NewResolver() *Resolver {
	return &Resolver{config: DefaultReadingOrderConfig()}
}

// NewResolverWithConfig creates a resolver with custom configuration
func NewResolverWithConfig(config ReadingOrderConfig) *Resolver {
	if config.ColumnThreshold <= 0 {
		config.ColumnThreshold = DefaultColumnThreshold
	}
	return &Resolver{config: config}
}

// Reorder resolves the reading order of lines for the given mode. order is
// only used in manual mode and maps new position to old index. The input
// slice is never modified.
func (r *Resolver) Reorder(lines []models.Line, mode models.LineOrderMode, order []int) (*OrderResult, error) {
	switch mode {
	case models.LineOrderAuto, "":
		return &OrderResult{Lines: stamp(models.CloneLines(lines)), Applied: true}, nil
	case models.LineOrderRTL:
		return r.byColumns(lines, true), nil
	case models.LineOrderLTR:
		return r.byColumns(lines, false), nil
	case models.LineOrderManual:
		return applyManualOrder(lines, order), nil
	default:
		return nil, fmt.Errorf("unknown line order mode: %s", mode)
	}
}

// byColumns orders columns right-to-left (by their rightmost centre) or
// left-to-right (by their leftmost centre), then lines top to bottom.
// Ties fall back to line number so the result does not depend on the
// order of the input.
func (r *Resolver) byColumns(lines []models.Line, rtl bool) *OrderResult {
	columns := ClusterByColumn(models.CloneLines(lines), r.config.ColumnThreshold)

	keys := make([]float64, len(columns))
	for i, col := range columns {
		if rtl {
			keys[i] = maxCenterX(col)
		} else {
			keys[i] = minCenterX(col)
		}
	}
	idx := make([]int, len(columns))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if rtl {
			return keys[idx[a]] > keys[idx[b]]
		}
		return keys[idx[a]] < keys[idx[b]]
	})

	ordered := make([]models.Line, 0, len(lines))
	for _, i := range idx {
		col := columns[i]
		// Ties on TopY keep the column's CenterX order
		sort.SliceStable(col, func(a, b int) bool {
			return TopY(col[a]) < TopY(col[b])
		})
		ordered = append(ordered, col...)
	}

	return &OrderResult{Lines: stamp(ordered), Applied: true, ColumnCount: len(columns)}
}

// applyManualOrder places lines[order[i]] at position i. An order that is
// not a permutation of the line indices leaves the lines untouched.
func applyManualOrder(lines []models.Line, order []int) *OrderResult {
	if len(order) != len(lines) {
		return &OrderResult{
			Lines:   lines,
			Warning: fmt.Sprintf("manual order has %d entries but page has %d lines; order unchanged", len(order), len(lines)),
		}
	}

	seen := make([]bool, len(lines))
	for _, old := range order {
		if old < 0 || old >= len(lines) || seen[old] {
			return &OrderResult{
				Lines:   lines,
				Warning: fmt.Sprintf("manual order is not a permutation (index %d); order unchanged", old),
			}
		}
		seen[old] = true
	}

	src := models.CloneLines(lines)
	ordered := make([]models.Line, len(lines))
	for pos, old := range order {
		ordered[pos] = src[old]
		ordered[pos].DisplayOrder = pos
	}
	return &OrderResult{Lines: ordered, Applied: true}
}

func stamp(lines []models.Line) []models.Line {
	for i := range lines {
		lines[i].DisplayOrder = i
	}
	return lines
}

func maxCenterX(col []models.Line) float64 {
	if len(col) == 0 {
		return 0
	}
	x := CenterX(col[0])
	for _, l := range col[1:] {
		x = maxFloat64(x, CenterX(l))
	}
	return x
}

func minCenterX(col []models.Line) float64 {
	if len(col) == 0 {
		return 0
	}
	x := CenterX(col[0])
	for _, l := range col[1:] {
		x = minFloat64(x, CenterX(l))
	}
	return x
}

// IsPermutation reports whether order is a bijection onto [0, n)
func IsPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
