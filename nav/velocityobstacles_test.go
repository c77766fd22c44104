package nav

import (
	"math"
	"testing"
)

func velPtr(v float64) *float64 { return &v }

func TestVOSafe_RejectsCollisionCourse(t *testing.T) {
	c := &voController{cfg: DefaultAvoidanceConfig()}

	// Obstacle 2m ahead closing at 1m/s while the robot drives at it.
	in := AvoidanceInput{
		Obstacles: []Obstacle{{X: 2, Y: 0, Radius: 0.2, VX: velPtr(-1), VY: velPtr(0)}},
		Pose:      Pose{},
	}
	if c.safe(Velocity{Linear: 0.5}, in) {
		t.Error("head-on closing obstacle should be unsafe")
	}
}

func TestVOSafe_IgnoresStaticObstacles(t *testing.T) {
	c := &voController{cfg: DefaultAvoidanceConfig()}

	// Same geometry but the obstacle carries no velocity: the cone check
	// does not apply, static clearance is handled elsewhere.
	in := AvoidanceInput{
		Obstacles: []Obstacle{{X: 2, Y: 0, Radius: 0.2}},
		Pose:      Pose{},
	}
	if !c.safe(Velocity{Linear: 0.5}, in) {
		t.Error("static obstacle must not trigger the collision cone")
	}
}

func TestVOSafe_RecedingObstacleIsSafe(t *testing.T) {
	c := &voController{cfg: DefaultAvoidanceConfig()}

	in := AvoidanceInput{
		Obstacles: []Obstacle{{X: 2, Y: 0, Radius: 0.2, VX: velPtr(2), VY: velPtr(0)}},
		Pose:      Pose{},
	}
	if !c.safe(Velocity{Linear: 0.5}, in) {
		t.Error("obstacle moving away faster than the robot is safe")
	}
}

func TestVOSafe_MatchedVelocityOverlap(t *testing.T) {
	c := &voController{cfg: DefaultAvoidanceConfig()}

	// Obstacle inside the combined radius moving exactly with the robot:
	// no relative motion, but already overlapping.
	in := AvoidanceInput{
		Obstacles: []Obstacle{{X: 0.4, Y: 0, Radius: 0.15, VX: velPtr(0.5), VY: velPtr(0)}},
		Pose:      Pose{},
	}
	if c.safe(Velocity{Linear: 0.5}, in) {
		t.Error("overlap with zero relative velocity should be unsafe")
	}
}

func TestVOSafe_PenetrationBeforeClosestApproach(t *testing.T) {
	c := &voController{cfg: DefaultAvoidanceConfig()}

	// Fast head-on obstacle: closest approach lands just past the 2s
	// horizon, but the combined radius is already penetrated at t=1.94s.
	in := AvoidanceInput{
		Obstacles: []Obstacle{{X: 10, Y: 0, Radius: 0.2, VX: velPtr(-4.9), VY: velPtr(0)}},
		Pose:      Pose{},
	}
	if c.safe(Velocity{}, in) {
		t.Error("penetration inside the horizon must be unsafe even with tca beyond it")
	}

	// One meter further out the obstacle is still 1.2m away at the horizon.
	in.Obstacles[0].X = 11
	if !c.safe(Velocity{}, in) {
		t.Error("collision strictly after the horizon should be safe")
	}
}

func TestVO_StopsWhenWindowOffersNoEscape(t *testing.T) {
	a := newAvoider(t, MethodVelocityObstacles)
	goal := Point{X: 10, Y: 0}

	// Closing head-on at 1m/s; every linear speed the window can reach
	// stays on the collision course, so the controller must stop.
	cmd := a.ComputeSafeVelocity(AvoidanceInput{
		Current:   Velocity{Linear: 0.5},
		Obstacles: []Obstacle{{X: 2, Y: 0, Radius: 0.2, VX: velPtr(-1), VY: velPtr(0)}},
		Goal:      &goal,
		Pose:      Pose{},
	})
	if cmd.Linear != 0 || cmd.Angular != 0 {
		t.Errorf("no safe candidate, want exact zero velocity, got %+v", cmd)
	}
}

func TestVO_OpenSpacePrefersFastGoalAligned(t *testing.T) {
	a := newAvoider(t, MethodVelocityObstacles)
	goal := Point{X: 10, Y: 0}

	cmd := a.ComputeSafeVelocity(AvoidanceInput{
		Current: Velocity{Linear: 0.5},
		Goal:    &goal,
		Pose:    Pose{},
	})

	window := a.cfg.window(Velocity{Linear: 0.5})
	if math.Abs(cmd.Linear-window.vMax) > 1e-9 {
		t.Errorf("open space should pick the fastest candidate %f, got %f", window.vMax, cmd.Linear)
	}
	if math.Abs(cmd.Angular) > 0.02 {
		t.Errorf("goal dead ahead, want near-zero turn, got %f", cmd.Angular)
	}
}
