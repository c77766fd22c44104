package nav

import (
	"math/rand"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

const (
	// rrtGoalBias is the fraction of iterations that sample the goal itself.
	rrtGoalBias = 0.1

	// rrtNeighborK caps how many candidate neighbors the RRT* choose-parent
	// and rewire steps pull from the quadtree.
	rrtNeighborK = 16
)

// treeNode is one vertex of the RRT arena. It implements orb.Pointer so the
// quadtree can answer nearest and near-neighbor queries over the tree.
type treeNode struct {
	point  Point
	parent *treeNode
	cost   float64 // cumulative cost from the root, used by RRT*
}

// Point implements orb.Pointer.
func (n *treeNode) Point() orb.Point {
	return orb.Point{n.point.X, n.point.Y}
}

// rrtSearch grows a rapidly-exploring random tree from start until a vertex
// lands within the goal threshold. With star set it additionally picks the
// cheapest nearby parent for each new vertex and rewires neighbors that
// become cheaper through it (local optimality only, no global re-balancing).
type rrtSearch struct {
	cfg  PlannerConfig
	star bool
	rng  *rand.Rand
}

func (s *rrtSearch) plan(start, goal Point, m *PlanningMap) (Path, bool) {
	if m.Blocked(start) {
		return nil, false
	}

	bound := s.samplingBound(start, goal, m)
	tree := quadtree.New(bound)
	root := &treeNode{point: start}
	if err := tree.Add(root); err != nil {
		return nil, false
	}

	if Distance(start, goal) <= s.cfg.GoalThreshold {
		return Path{start}, true
	}

	var neighborBuf []orb.Pointer

	for iter := 0; iter < s.cfg.MaxIterations; iter++ {
		target := s.samplePoint(goal, bound)

		nearestPtr := tree.Find(orb.Point{target.X, target.Y})
		if nearestPtr == nil {
			continue
		}
		nearest := nearestPtr.(*treeNode)

		next := steer(nearest.point, target, s.cfg.StepSize)
		if !m.IsCollisionFree(nearest.point, next) {
			continue
		}

		node := &treeNode{
			point:  next,
			parent: nearest,
			cost:   nearest.cost + Distance(nearest.point, next),
		}

		var neighbors []*treeNode
		if s.star {
			neighborBuf = tree.KNearest(neighborBuf[:0], orb.Point{next.X, next.Y}, rrtNeighborK, 2*s.cfg.StepSize)
			neighbors = make([]*treeNode, 0, len(neighborBuf))
			for _, ptr := range neighborBuf {
				neighbors = append(neighbors, ptr.(*treeNode))
			}
			s.chooseParent(node, neighbors, m)
		}

		if err := tree.Add(node); err != nil {
			continue
		}

		if s.star {
			s.rewire(node, neighbors, m)
		}

		if Distance(next, goal) <= s.cfg.GoalThreshold {
			return reconstructTree(node), true
		}
	}

	return nil, false
}

// samplePoint draws a uniform random point from the sampling bound, biased
// to return the goal itself a fixed fraction of the time.
func (s *rrtSearch) samplePoint(goal Point, bound orb.Bound) Point {
	if s.rng.Float64() < rrtGoalBias {
		return goal
	}
	return Point{
		X: bound.Min[0] + s.rng.Float64()*(bound.Max[0]-bound.Min[0]),
		Y: bound.Min[1] + s.rng.Float64()*(bound.Max[1]-bound.Min[1]),
	}
}

// samplingBound picks the region random samples are drawn from: explicit map
// bounds when present, then the grid extent, then a margin box around the
// start-goal pair.
func (s *rrtSearch) samplingBound(start, goal Point, m *PlanningMap) orb.Bound {
	if b := m.Bounds(); b != nil {
		return orb.Bound{
			Min: orb.Point{b.MinX, b.MinY},
			Max: orb.Point{b.MaxX, b.MaxY},
		}
	}
	if g := m.grid; g != nil {
		halfW := float64(g.Width()) / 2 * g.Resolution()
		halfH := float64(g.Height()) / 2 * g.Resolution()
		return orb.Bound{
			Min: orb.Point{-halfW, -halfH},
			Max: orb.Point{halfW, halfH},
		}
	}

	margin := 2*Distance(start, goal) + 10*s.cfg.StepSize
	cx := (start.X + goal.X) / 2
	cy := (start.Y + goal.Y) / 2
	return orb.Bound{
		Min: orb.Point{cx - margin, cy - margin},
		Max: orb.Point{cx + margin, cy + margin},
	}
}

// steer moves from origin toward target by at most stepSize.
func steer(origin, target Point, stepSize float64) Point {
	d := Distance(origin, target)
	if d <= stepSize || d == 0 {
		return target
	}
	t := stepSize / d
	return Point{
		X: origin.X + t*(target.X-origin.X),
		Y: origin.Y + t*(target.Y-origin.Y),
	}
}

// chooseParent relinks the new node to the lowest-cost collision-free
// parent among its neighbors. The default parent (the nearest vertex) wins
// ties by being evaluated first.
func (s *rrtSearch) chooseParent(node *treeNode, neighbors []*treeNode, m *PlanningMap) {
	for _, nb := range neighbors {
		candidate := nb.cost + Distance(nb.point, node.point)
		if candidate < node.cost && m.IsCollisionFree(nb.point, node.point) {
			node.parent = nb
			node.cost = candidate
		}
	}
}

// rewire reroutes any neighbor through the new node when that lowers its
// cost. Descendant costs are left stale on purpose: the search only
// guarantees local optimality.
func (s *rrtSearch) rewire(node *treeNode, neighbors []*treeNode, m *PlanningMap) {
	for _, nb := range neighbors {
		if nb == node.parent {
			continue
		}
		candidate := node.cost + Distance(node.point, nb.point)
		if candidate < nb.cost && m.IsCollisionFree(node.point, nb.point) {
			nb.parent = node
			nb.cost = candidate
		}
	}
}

// reconstructTree walks parent links from the goal-reaching vertex back to
// the root and returns the path in start-to-goal order.
func reconstructTree(node *treeNode) Path {
	var reversed Path
	for n := node; n != nil; n = n.parent {
		reversed = append(reversed, n.point)
	}
	path := make(Path, len(reversed))
	for i, p := range reversed {
		path[len(reversed)-1-i] = p
	}
	return path
}
