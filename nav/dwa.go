package nav

import (
	"math"
)

// DWA scoring weights and the clearance cap.
const (
	dwaHeadingWeight   = 0.5
	dwaClearanceWeight = 0.3
	dwaVelocityWeight  = 0.2
	dwaClearanceCap    = 2.0
)

// dwaController implements the Dynamic Window Approach: sample the
// reachable velocity window, forward-simulate every candidate, drop the
// ones that collide and keep the best scoring survivor.
type dwaController struct {
	cfg AvoidanceConfig
}

func (c *dwaController) compute(in AvoidanceInput) Velocity {
	window := c.cfg.window(in.Current)
	n := c.cfg.VelocitySamples

	best := Velocity{}
	bestScore := math.Inf(-1)
	found := false

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			candidate := window.sample(i, j, n)
			trajectory, finalTheta := c.simulate(in.Pose, candidate)

			clearance, collides := c.assess(trajectory, in.Obstacles)
			if collides {
				continue
			}

			// Goal alignment is judged where the trajectory ends up, not
			// where the robot starts, so overshooting candidates score low.
			targetBearing := in.Pose.Theta
			if in.Goal != nil {
				targetBearing = Bearing(trajectory[len(trajectory)-1], *in.Goal)
			}
			heading := 1.0 - math.Abs(NormalizeAngle(targetBearing-finalTheta))/math.Pi
			velocity := candidate.Linear / c.cfg.MaxLinearVel
			score := dwaHeadingWeight*heading +
				dwaClearanceWeight*clearance/dwaClearanceCap +
				dwaVelocityWeight*velocity

			// Strict comparison keeps the first-seen candidate on ties.
			if score > bestScore {
				bestScore = score
				best = candidate
				found = true
			}
		}
	}

	if !found {
		// Every candidate collides: no safe motion, stop.
		return Velocity{}
	}
	return best
}

// simulate rolls the candidate velocity forward over the time horizon with
// differential-drive kinematics and returns the visited points plus the
// final heading.
func (c *dwaController) simulate(pose Pose, v Velocity) ([]Point, float64) {
	steps := int(c.cfg.TimeHorizon / c.cfg.DT)
	if steps < 1 {
		steps = 1
	}

	x, y, theta := pose.X, pose.Y, pose.Theta
	points := make([]Point, 0, steps)
	for s := 0; s < steps; s++ {
		theta += v.Angular * c.cfg.DT
		x += v.Linear * math.Cos(theta) * c.cfg.DT
		y += v.Linear * math.Sin(theta) * c.cfg.DT
		points = append(points, Point{X: x, Y: y})
	}
	return points, NormalizeAngle(theta)
}

// assess returns the minimum obstacle distance along the trajectory, capped
// at dwaClearanceCap, and whether the trajectory intersects any obstacle.
// With no obstacles the clearance is the cap.
func (c *dwaController) assess(trajectory []Point, obstacles []Obstacle) (clearance float64, collides bool) {
	clearance = dwaClearanceCap
	for _, p := range trajectory {
		for _, ob := range obstacles {
			d := Distance(p, ob.Center())
			if d < c.cfg.RobotRadius+ob.EffectiveRadius() {
				return 0, true
			}
			if d < clearance {
				clearance = d
			}
		}
	}
	return clearance, false
}
