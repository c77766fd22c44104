package nav

import (
	"math"
)

// voAngularPenalty scales how much angular deviation from the goal bearing
// costs a candidate during selection.
const voAngularPenalty = 0.5

// voController implements Velocity Obstacles for dynamic obstacles: a
// candidate velocity is unsafe when the relative motion against any moving
// obstacle closes to a collision within the time horizon. Static obstacles
// are left to the emergency stop and the DWA-style distance margins.
type voController struct {
	cfg AvoidanceConfig
}

func (c *voController) compute(in AvoidanceInput) Velocity {
	window := c.cfg.window(in.Current)
	goalBearing := in.goalBearing()
	n := c.cfg.VelocitySamples

	best := Velocity{}
	bestScore := math.Inf(-1)
	found := false

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			candidate := window.sample(i, j, n)
			if !c.safe(candidate, in) {
				continue
			}

			predicted := NormalizeAngle(in.Pose.Theta + candidate.Angular*c.cfg.DT)
			deviation := math.Abs(NormalizeAngle(goalBearing - predicted))
			score := candidate.Linear - voAngularPenalty*deviation

			// Strict comparison keeps the first-seen candidate on ties.
			if score > bestScore {
				bestScore = score
				best = candidate
				found = true
			}
		}
	}

	if !found {
		return Velocity{}
	}
	return best
}

// safe checks the candidate against the collision cone of every dynamic
// obstacle: project the relative velocity forward and reject the candidate
// when the combined radius is penetrated within the time horizon.
func (c *voController) safe(candidate Velocity, in AvoidanceInput) bool {
	vx := candidate.Linear * math.Cos(in.Pose.Theta)
	vy := candidate.Linear * math.Sin(in.Pose.Theta)

	for _, ob := range in.Obstacles {
		if !ob.IsDynamic() {
			continue
		}
		obVX, obVY := ob.VelocityComponents()

		// Relative position and velocity of the obstacle w.r.t. the robot.
		px := ob.X - in.Pose.X
		py := ob.Y - in.Pose.Y
		rvx := obVX - vx
		rvy := obVY - vy

		combined := c.cfg.RobotRadius + ob.EffectiveRadius()

		speedSq := rvx*rvx + rvy*rvy
		if speedSq < 1e-10 {
			// No relative motion: colliding only if already overlapping.
			if math.Hypot(px, py) < combined {
				return false
			}
			continue
		}

		// Time of closest approach of the relative trajectory.
		tca := -(px*rvx + py*rvy) / speedSq
		if tca <= 0 {
			continue
		}

		// The relative distance shrinks until tca, so the distance at
		// min(tca, horizon) is inside the combined radius exactly when
		// penetration happens within the horizon. A tca beyond the horizon
		// does not excuse a hit that lands before it.
		t := tca
		if t > c.cfg.TimeHorizon {
			t = c.cfg.TimeHorizon
		}
		cx := px + rvx*t
		cy := py + rvy*t
		if math.Hypot(cx, cy) < combined {
			return false
		}
	}
	return true
}
