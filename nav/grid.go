package nav

import (
	"fmt"
	"math"
)

// Log-odds update constants. A traversed cell accumulates evidence of being
// free, the ray endpoint accumulates evidence of being occupied, and every
// write clamps to keep cells recoverable after long exposure.
const (
	LogOddsFree     = -0.7
	LogOddsOccupied = 0.9
	LogOddsMin      = -10.0
	LogOddsMax      = 10.0
)

// OccupancyGrid is a fixed-size 2D log-odds map. Cells are stored in a flat
// row-major array (row*width + col) with the world origin at the grid
// center. Only SLAM ray updates mutate it.
type OccupancyGrid struct {
	width      int
	height     int
	resolution float64
	cells      []float64
}

// NewOccupancyGrid creates a zeroed grid. Resolution is meters per cell.
func NewOccupancyGrid(width, height int, resolution float64) (*OccupancyGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	if resolution <= 0 {
		return nil, fmt.Errorf("grid resolution must be positive, got %g", resolution)
	}
	return &OccupancyGrid{
		width:      width,
		height:     height,
		resolution: resolution,
		cells:      make([]float64, width*height),
	}, nil
}

// Width returns the grid width in cells.
func (g *OccupancyGrid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *OccupancyGrid) Height() int { return g.height }

// Resolution returns meters per cell.
func (g *OccupancyGrid) Resolution() float64 { return g.resolution }

// WorldToGrid converts world coordinates to cell indices. The returned
// indices may be out of bounds; callers check InBounds.
func (g *OccupancyGrid) WorldToGrid(x, y float64) (col, row int) {
	col = int(math.Floor(x/g.resolution)) + g.width/2
	row = int(math.Floor(y/g.resolution)) + g.height/2
	return col, row
}

// GridToWorld returns the world coordinates of a cell center.
func (g *OccupancyGrid) GridToWorld(col, row int) (x, y float64) {
	x = (float64(col-g.width/2) + 0.5) * g.resolution
	y = (float64(row-g.height/2) + 0.5) * g.resolution
	return x, y
}

// InBounds reports whether the cell indices fall inside the grid.
func (g *OccupancyGrid) InBounds(col, row int) bool {
	return col >= 0 && col < g.width && row >= 0 && row < g.height
}

// LogOdds returns the raw log-odds value of a cell, or 0 for out-of-bounds
// indices.
func (g *OccupancyGrid) LogOdds(col, row int) float64 {
	if !g.InBounds(col, row) {
		return 0
	}
	return g.cells[row*g.width+col]
}

// addEvidence accumulates a log-odds delta into a cell, clamping the result.
// Out-of-bounds writes are dropped.
func (g *OccupancyGrid) addEvidence(col, row int, delta float64) {
	if !g.InBounds(col, row) {
		return
	}
	idx := row*g.width + col
	v := g.cells[idx] + delta
	if v > LogOddsMax {
		v = LogOddsMax
	} else if v < LogOddsMin {
		v = LogOddsMin
	}
	g.cells[idx] = v
}

// UpdateRay rasterizes a sensor ray from start to the measured endpoint with
// Bresenham's algorithm. Every traversed cell gains free evidence; the
// endpoint cell gains occupied evidence.
func (g *OccupancyGrid) UpdateRay(start, end Point) {
	x0, y0 := g.WorldToGrid(start.X, start.Y)
	x1, y1 := g.WorldToGrid(end.X, end.Y)

	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	x, y := x0, y0
	for {
		if x == x1 && y == y1 {
			g.addEvidence(x, y, LogOddsOccupied)
			return
		}
		g.addEvidence(x, y, LogOddsFree)

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// ProbabilityAt converts one cell to occupancy probability. Out-of-bounds
// cells read as unknown (0.5).
func (g *OccupancyGrid) ProbabilityAt(col, row int) float64 {
	if !g.InBounds(col, row) {
		return 0.5
	}
	return LogOddsToProbability(g.cells[row*g.width+col])
}

// ProbabilityAtWorld converts the cell containing a world point to
// occupancy probability.
func (g *OccupancyGrid) ProbabilityAtWorld(x, y float64) float64 {
	col, row := g.WorldToGrid(x, y)
	return g.ProbabilityAt(col, row)
}

// ToProbabilityGrid converts every cell to probability space. The receiver
// is not mutated; the result is a snapshot safe to hand to planners.
func (g *OccupancyGrid) ToProbabilityGrid() *ProbabilityGrid {
	cells := make([]float64, len(g.cells))
	for i, v := range g.cells {
		cells[i] = LogOddsToProbability(v)
	}
	return &ProbabilityGrid{
		width:      g.width,
		height:     g.height,
		resolution: g.resolution,
		cells:      cells,
	}
}

// LogOddsToProbability maps a log-odds value to (0, 1) via the logistic
// function p = 1 - 1/(1+e^l).
func LogOddsToProbability(l float64) float64 {
	return 1.0 - 1.0/(1.0+math.Exp(l))
}

// ProbabilityGrid is a read-only probability snapshot of an occupancy grid.
// Planners consume this view; they never see the mutable log-odds grid.
type ProbabilityGrid struct {
	width      int
	height     int
	resolution float64
	cells      []float64
}

// Width returns the grid width in cells.
func (g *ProbabilityGrid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *ProbabilityGrid) Height() int { return g.height }

// Resolution returns meters per cell.
func (g *ProbabilityGrid) Resolution() float64 { return g.resolution }

// At returns the occupancy probability of a cell, or 0.5 (unknown) out of
// bounds.
func (g *ProbabilityGrid) At(col, row int) float64 {
	if col < 0 || col >= g.width || row < 0 || row >= g.height {
		return 0.5
	}
	return g.cells[row*g.width+col]
}

// AtWorld returns the occupancy probability of the cell containing a world
// point.
func (g *ProbabilityGrid) AtWorld(x, y float64) float64 {
	col := int(math.Floor(x/g.resolution)) + g.width/2
	row := int(math.Floor(y/g.resolution)) + g.height/2
	return g.At(col, row)
}

// OccupiedAtWorld reports whether the cell containing a world point exceeds
// the given occupancy threshold.
func (g *ProbabilityGrid) OccupiedAtWorld(x, y, threshold float64) bool {
	return g.AtWorld(x, y) > threshold
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
