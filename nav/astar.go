package nav

import (
	"container/heap"
	"math"
)

// searchNode is one entry of the A*/Dijkstra open set.
type searchNode struct {
	point  Point
	key    cellKey
	g      float64 // cost from start
	f      float64 // g plus heuristic
	parent *searchNode
	index  int // position in the heap
}

// openQueue implements heap.Interface ordered by ascending f-score.
type openQueue []*searchNode

func (q openQueue) Len() int { return len(q) }

func (q openQueue) Less(i, j int) bool {
	return q[i].f < q[j].f
}

func (q openQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *openQueue) Push(x interface{}) {
	n := len(*q)
	node := x.(*searchNode)
	node.index = n
	*q = append(*q, node)
}

func (q *openQueue) Pop() interface{} {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*q = old[0 : n-1]
	return node
}

// gridSearch runs best-first search over an implicit 8-connected grid with
// cells StepSize apart. With the Euclidean heuristic it is A*; with the zero
// heuristic it degenerates to Dijkstra.
type gridSearch struct {
	cfg       PlannerConfig
	heuristic func(a, b Point) float64
}

func (s *gridSearch) plan(start, goal Point, m *PlanningMap) (Path, bool) {
	if m.Blocked(start) {
		return nil, false
	}

	open := &openQueue{}
	heap.Init(open)

	startNode := &searchNode{
		point: start,
		key:   quantize(start, s.cfg.CellQuantum),
		g:     0,
		f:     s.heuristic(start, goal),
	}
	heap.Push(open, startNode)

	closed := make(map[cellKey]bool)
	openByKey := map[cellKey]*searchNode{startNode.key: startNode}

	step := s.cfg.StepSize
	diag := step * math.Sqrt2
	// 8-connected neighborhood offsets paired with their move cost.
	moves := [8]struct {
		dx, dy, cost float64
	}{
		{step, 0, step}, {-step, 0, step}, {0, step, step}, {0, -step, step},
		{step, step, diag}, {step, -step, diag}, {-step, step, diag}, {-step, -step, diag},
	}

	for iter := 0; iter < s.cfg.MaxIterations && open.Len() > 0; iter++ {
		current := heap.Pop(open).(*searchNode)
		delete(openByKey, current.key)

		if Distance(current.point, goal) <= s.cfg.GoalThreshold {
			return reconstruct(current), true
		}

		closed[current.key] = true

		for _, mv := range moves {
			next := Point{X: current.point.X + mv.dx, Y: current.point.Y + mv.dy}
			key := quantize(next, s.cfg.CellQuantum)
			if closed[key] {
				continue
			}
			if !m.IsCollisionFree(current.point, next) {
				continue
			}

			tentativeG := current.g + mv.cost
			neighbor, exists := openByKey[key]
			if !exists {
				neighbor = &searchNode{
					point:  next,
					key:    key,
					g:      tentativeG,
					parent: current,
				}
				neighbor.f = neighbor.g + s.heuristic(next, goal)
				heap.Push(open, neighbor)
				openByKey[key] = neighbor
			} else if tentativeG < neighbor.g {
				neighbor.g = tentativeG
				neighbor.f = tentativeG + s.heuristic(neighbor.point, goal)
				neighbor.parent = current
				heap.Fix(open, neighbor.index)
			}
		}
	}

	// Budget exhausted or open set emptied without reaching the goal.
	return nil, false
}

// reconstruct walks parent links back to the start and returns the path in
// start-to-goal order.
func reconstruct(node *searchNode) Path {
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
