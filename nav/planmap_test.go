package nav

import (
	"testing"
)

func TestPlanningMap_Blocked(t *testing.T) {
	bounds := &Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	obstacles := []Obstacle{{X: 5, Y: 5, Radius: 1.0}}
	m := NewPlanningMap(bounds, obstacles, nil)

	if m.Blocked(Point{X: 2, Y: 2}) {
		t.Error("free point reported blocked")
	}
	if !m.Blocked(Point{X: 5, Y: 5}) {
		t.Error("obstacle center not blocked")
	}
	if !m.Blocked(Point{X: 5.5, Y: 5}) {
		t.Error("point inside obstacle radius not blocked")
	}
	if !m.Blocked(Point{X: -1, Y: 2}) {
		t.Error("out-of-bounds point not blocked")
	}
	if !m.Blocked(Point{X: 2, Y: 11}) {
		t.Error("out-of-bounds point not blocked")
	}
}

func TestPlanningMap_DefaultObstacleRadius(t *testing.T) {
	m := NewPlanningMap(nil, []Obstacle{{X: 1, Y: 1}}, nil)

	if !m.Blocked(Point{X: 1.1, Y: 1}) {
		t.Error("point within the default 0.2m radius not blocked")
	}
	if m.Blocked(Point{X: 1.5, Y: 1}) {
		t.Error("point outside the default radius blocked")
	}
}

func TestPlanningMap_ObstaclesNear(t *testing.T) {
	obstacles := []Obstacle{
		{X: 1, Y: 1, Radius: 0.5},
		{X: 9, Y: 9, Radius: 0.5},
		{X: 1.5, Y: 1.5, Radius: 0.5},
	}
	m := NewPlanningMap(nil, obstacles, nil)

	near := m.ObstaclesNear(Point{X: 1, Y: 1}, 1.0)
	if len(near) != 2 {
		t.Errorf("expected 2 nearby obstacles, got %d", len(near))
	}
	for _, ob := range near {
		if ob.X == 9 {
			t.Error("distant obstacle returned from local query")
		}
	}
}

func TestPlanningMap_GridOccupancy(t *testing.T) {
	g, _ := NewOccupancyGrid(100, 100, 0.1)
	for i := 0; i < 20; i++ {
		g.UpdateRay(Point{X: 0, Y: 0}, Point{X: 3, Y: 0})
	}
	m := NewPlanningMap(nil, nil, g.ToProbabilityGrid())

	if !m.Blocked(Point{X: 3, Y: 0}) {
		t.Error("occupied grid cell not blocked")
	}
	if m.Blocked(Point{X: 1, Y: 0}) {
		t.Error("free grid cell blocked")
	}
}

func TestIsCollisionFree(t *testing.T) {
	m := NewPlanningMap(nil, []Obstacle{{X: 5, Y: 0, Radius: 1.0}}, nil)

	if m.IsCollisionFree(Point{X: 0, Y: 0}, Point{X: 10, Y: 0}) {
		t.Error("segment through an obstacle reported collision-free")
	}
	if !m.IsCollisionFree(Point{X: 0, Y: 3}, Point{X: 10, Y: 3}) {
		t.Error("clear segment reported colliding")
	}
	if !m.IsCollisionFree(Point{X: 1, Y: 1}, Point{X: 1, Y: 1}) {
		t.Error("zero-length free segment reported colliding")
	}
}
