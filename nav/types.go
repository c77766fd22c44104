package nav

// Point represents a 2D world coordinate in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pose is the continuous robot state: position plus heading in radians,
// normalized to [-pi, pi].
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// Position returns the translational part of the pose.
func (p Pose) Position() Point {
	return Point{X: p.X, Y: p.Y}
}

// Velocity is a differential-drive command: linear speed in m/s and
// angular speed in rad/s. The zero value is a full stop.
type Velocity struct {
	Linear  float64 `json:"linear"`
	Angular float64 `json:"angular"`
}

// Odometry is the relative motion reported since the previous cycle,
// expressed in the robot frame.
type Odometry struct {
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	DTheta float64 `json:"dtheta"`
}

// LidarReading is a single range measurement at an angle relative to the
// robot heading.
type LidarReading struct {
	Range float64 `json:"range"`
	Angle float64 `json:"angle"`
}

// LidarScan is an ordered sweep of readings taken at one pose.
type LidarScan []LidarReading

// DefaultObstacleRadius is assumed for obstacles reported without a radius.
const DefaultObstacleRadius = 0.2

// Obstacle is a circular obstacle in world coordinates. VX/VY are nil for
// static obstacles; a dynamic obstacle carries its velocity in m/s.
type Obstacle struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Radius float64  `json:"radius,omitempty"`
	VX     *float64 `json:"vx,omitempty"`
	VY     *float64 `json:"vy,omitempty"`
}

// Center returns the obstacle position.
func (o Obstacle) Center() Point {
	return Point{X: o.X, Y: o.Y}
}

// EffectiveRadius returns the configured radius, or DefaultObstacleRadius
// when none was reported.
func (o Obstacle) EffectiveRadius() float64 {
	if o.Radius <= 0 {
		return DefaultObstacleRadius
	}
	return o.Radius
}

// IsDynamic reports whether the obstacle carries a velocity estimate.
func (o Obstacle) IsDynamic() bool {
	return o.VX != nil && o.VY != nil
}

// VelocityComponents returns (vx, vy), or (0, 0) for a static obstacle.
func (o Obstacle) VelocityComponents() (float64, float64) {
	if !o.IsDynamic() {
		return 0, 0
	}
	return *o.VX, *o.VY
}

// Path is an ordered sequence of waypoints from start to goal. It is
// produced once per Plan call and never mutated afterwards.
type Path []Point

// Length returns the total Euclidean length of the path.
func (p Path) Length() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += Distance(p[i-1], p[i])
	}
	return total
}

// Particle is one pose hypothesis of the Monte Carlo localizer.
type Particle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Theta  float64 `json:"theta"`
	Weight float64 `json:"weight"`
}
