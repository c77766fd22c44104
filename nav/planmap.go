package nav

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

// collisionSampleStep is the spacing at which straight segments are sampled
// during line-of-sight checks.
const collisionSampleStep = 0.5

// occupiedThreshold is the probability above which a grid cell counts as an
// obstacle for planning.
const occupiedThreshold = 0.5

// Bounds is an axis-aligned planning region in world coordinates.
type Bounds struct {
	MinX float64 `yaml:"minX" json:"minX"`
	MinY float64 `yaml:"minY" json:"minY"`
	MaxX float64 `yaml:"maxX" json:"maxX"`
	MaxY float64 `yaml:"maxY" json:"maxY"`
}

// Contains reports whether the point lies inside the bounds.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// obstacleEntry wraps an obstacle for R-tree storage.
type obstacleEntry struct {
	obstacle Obstacle
	bbox     rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// PlanningMap is the read-only world view handed to a planner: optional
// bounds, a set of circular obstacles behind an R-tree, and an optional
// occupancy probability snapshot. Planners never mutate it.
type PlanningMap struct {
	bounds    *Bounds
	obstacles []Obstacle
	grid      *ProbabilityGrid
	index     *rtreego.Rtree
}

// NewPlanningMap builds the map view and its obstacle index. Any argument
// may be nil/empty; a fully empty map is free space everywhere.
func NewPlanningMap(bounds *Bounds, obstacles []Obstacle, grid *ProbabilityGrid) *PlanningMap {
	tree := rtreego.NewTree(2, 25, 50)
	for _, ob := range obstacles {
		r := ob.EffectiveRadius()
		bbox, err := rtreego.NewRect(
			rtreego.Point{ob.X - r, ob.Y - r},
			[]float64{2 * r, 2 * r},
		)
		if err != nil {
			continue
		}
		tree.Insert(&obstacleEntry{obstacle: ob, bbox: bbox})
	}
	return &PlanningMap{
		bounds:    bounds,
		obstacles: obstacles,
		grid:      grid,
		index:     tree,
	}
}

// Obstacles returns the obstacle list the map was built with.
func (m *PlanningMap) Obstacles() []Obstacle { return m.obstacles }

// Bounds returns the explicit planning bounds, or nil when unbounded.
func (m *PlanningMap) Bounds() *Bounds { return m.bounds }

// InBounds reports whether a point is inside the planning region. With no
// explicit bounds the grid extent applies; with neither, space is unbounded.
func (m *PlanningMap) InBounds(p Point) bool {
	if m.bounds != nil {
		return m.bounds.Contains(p)
	}
	if m.grid != nil {
		halfW := float64(m.grid.Width()) / 2 * m.grid.Resolution()
		halfH := float64(m.grid.Height()) / 2 * m.grid.Resolution()
		return p.X >= -halfW && p.X <= halfW && p.Y >= -halfH && p.Y <= halfH
	}
	return true
}

// ObstaclesNear returns obstacles whose bounding boxes intersect a square of
// the given half-extent around p. The R-tree keeps this local instead of a
// scan over every obstacle per collision sample.
func (m *PlanningMap) ObstaclesNear(p Point, halfExtent float64) []Obstacle {
	if halfExtent <= 0 {
		halfExtent = collisionSampleStep
	}
	bbox, err := rtreego.NewRect(
		rtreego.Point{p.X - halfExtent, p.Y - halfExtent},
		[]float64{2 * halfExtent, 2 * halfExtent},
	)
	if err != nil {
		return nil
	}
	hits := m.index.SearchIntersect(bbox)
	out := make([]Obstacle, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*obstacleEntry).obstacle)
	}
	return out
}

// Blocked reports whether a point is unusable: outside the bounds, inside
// an obstacle, or on an occupied grid cell.
func (m *PlanningMap) Blocked(p Point) bool {
	if !m.InBounds(p) {
		return true
	}
	for _, ob := range m.ObstaclesNear(p, collisionSampleStep) {
		if Distance(p, ob.Center()) <= ob.EffectiveRadius() {
			return true
		}
	}
	if m.grid != nil && m.grid.OccupiedAtWorld(p.X, p.Y, occupiedThreshold) {
		return true
	}
	return false
}

// IsCollisionFree samples the straight segment from a to b every half unit
// and rejects it if any sample is blocked. Both endpoints are included.
func (m *PlanningMap) IsCollisionFree(a, b Point) bool {
	d := Distance(a, b)
	steps := int(math.Ceil(d / collisionSampleStep))
	if steps == 0 {
		return !m.Blocked(a)
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		sample := Point{
			X: a.X + t*(b.X-a.X),
			Y: a.Y + t*(b.Y-a.Y),
		}
		if m.Blocked(sample) {
			return false
		}
	}
	return true
}
