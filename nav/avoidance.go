package nav

import (
	"fmt"
)

// Method selects the local obstacle-avoidance strategy.
type Method string

const (
	MethodDWA               Method = "dwa"
	MethodVFH               Method = "vfh"
	MethodVelocityObstacles Method = "velocity_obstacles"
)

// AvoidanceConfig is the kinematic envelope and safety margins of the local
// controller. VelocitySamples is the per-axis resolution of the dynamic
// window grid.
type AvoidanceConfig struct {
	Method            Method  `yaml:"method"`
	RobotRadius       float64 `yaml:"robotRadius"`
	EmergencyDistance float64 `yaml:"emergencyDistance"`
	MaxLinearVel      float64 `yaml:"maxLinearVel"`
	MaxLinearAccel    float64 `yaml:"maxLinearAccel"`
	MaxAngularVel     float64 `yaml:"maxAngularVel"`
	MaxAngularAccel   float64 `yaml:"maxAngularAccel"`
	DT                float64 `yaml:"dt"`
	TimeHorizon       float64 `yaml:"timeHorizon"`
	VelocitySamples   int     `yaml:"velocitySamples"`
}

// DefaultAvoidanceConfig returns the DWA controller with the standard
// margins and a 20x20 candidate grid.
func DefaultAvoidanceConfig() AvoidanceConfig {
	return AvoidanceConfig{
		Method:            MethodDWA,
		RobotRadius:       0.3,
		EmergencyDistance: 0.5,
		MaxLinearVel:      1.0,
		MaxLinearAccel:    0.5,
		MaxAngularVel:     1.5,
		MaxAngularAccel:   1.0,
		DT:                0.1,
		TimeHorizon:       2.0,
		VelocitySamples:   20,
	}
}

// AvoidanceInput is one tick's view of the world for the local controller.
// Goal and Pose are optional; a nil goal means "hold the current heading".
type AvoidanceInput struct {
	Current   Velocity
	Obstacles []Obstacle
	Goal      *Point
	Pose      Pose
}

// goalBearing returns the world-frame bearing the controller should steer
// toward: the goal direction when a goal is set, otherwise the current
// heading.
func (in AvoidanceInput) goalBearing() float64 {
	if in.Goal == nil {
		return in.Pose.Theta
	}
	return Bearing(in.Pose.Position(), *in.Goal)
}

// avoidanceStrategy is one concrete local controller. A zero velocity means
// "no safe motion", which callers treat the same as an emergency stop.
type avoidanceStrategy interface {
	compute(in AvoidanceInput) Velocity
}

// ObstacleAvoider wraps the selected strategy behind the hard emergency-stop
// check that always runs first.
type ObstacleAvoider struct {
	cfg      AvoidanceConfig
	strategy avoidanceStrategy
}

// NewObstacleAvoider validates the configuration and builds the selected
// strategy. Unknown method names are rejected, never silently defaulted.
func NewObstacleAvoider(cfg AvoidanceConfig) (*ObstacleAvoider, error) {
	if cfg.MaxLinearVel <= 0 || cfg.MaxAngularVel <= 0 {
		return nil, fmt.Errorf("velocity limits must be positive, got linear %g angular %g", cfg.MaxLinearVel, cfg.MaxAngularVel)
	}
	if cfg.DT <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %g", cfg.DT)
	}
	if cfg.TimeHorizon <= 0 {
		return nil, fmt.Errorf("timeHorizon must be positive, got %g", cfg.TimeHorizon)
	}
	if cfg.EmergencyDistance <= 0 {
		return nil, fmt.Errorf("emergencyDistance must be positive, got %g", cfg.EmergencyDistance)
	}
	if cfg.VelocitySamples <= 1 {
		return nil, fmt.Errorf("velocitySamples must be at least 2, got %d", cfg.VelocitySamples)
	}

	var strategy avoidanceStrategy
	switch cfg.Method {
	case MethodDWA:
		strategy = &dwaController{cfg: cfg}
	case MethodVFH:
		strategy = &vfhController{cfg: cfg}
	case MethodVelocityObstacles:
		strategy = &voController{cfg: cfg}
	default:
		return nil, fmt.Errorf("unknown avoidance method %q (want dwa, vfh or velocity_obstacles)", cfg.Method)
	}

	return &ObstacleAvoider{cfg: cfg, strategy: strategy}, nil
}

// ComputeSafeVelocity returns the velocity command for this tick. An
// obstacle at or inside the emergency distance forces an immediate full
// stop no matter which strategy is configured.
func (a *ObstacleAvoider) ComputeSafeVelocity(in AvoidanceInput) Velocity {
	for _, ob := range in.Obstacles {
		if Distance(in.Pose.Position(), ob.Center()) <= a.cfg.EmergencyDistance {
			return Velocity{}
		}
	}
	return a.strategy.compute(in)
}

// dynamicWindow is the velocity region reachable within one timestep given
// the acceleration limits. Linear speed is kept non-negative: the
// controllers only drive forward.
type dynamicWindow struct {
	vMin, vMax float64
	wMin, wMax float64
}

// window computes the dynamic window around the current velocity.
func (cfg AvoidanceConfig) window(current Velocity) dynamicWindow {
	w := dynamicWindow{
		vMin: current.Linear - cfg.MaxLinearAccel*cfg.DT,
		vMax: current.Linear + cfg.MaxLinearAccel*cfg.DT,
		wMin: current.Angular - cfg.MaxAngularAccel*cfg.DT,
		wMax: current.Angular + cfg.MaxAngularAccel*cfg.DT,
	}
	if w.vMin < 0 {
		w.vMin = 0
	}
	if w.vMax > cfg.MaxLinearVel {
		w.vMax = cfg.MaxLinearVel
	}
	if w.wMin < -cfg.MaxAngularVel {
		w.wMin = -cfg.MaxAngularVel
	}
	if w.wMax > cfg.MaxAngularVel {
		w.wMax = cfg.MaxAngularVel
	}
	return w
}

// sample returns the (i, j) point of an n-by-n grid over the window.
func (w dynamicWindow) sample(i, j, n int) Velocity {
	t := func(lo, hi float64, k int) float64 {
		return lo + (hi-lo)*float64(k)/float64(n-1)
	}
	return Velocity{
		Linear:  t(w.vMin, w.vMax, i),
		Angular: t(w.wMin, w.wMax, j),
	}
}
