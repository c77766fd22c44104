package nav

import (
	"fmt"
	"math"
	"time"
)

// Relocalization spread used by SetPose when reseeding the particle cloud.
const (
	relocalizeSigmaXY    = 0.5
	relocalizeSigmaTheta = 0.3
)

// SLAMConfig sizes the occupancy grid and the particle filter. Seed drives
// every stochastic component; zero means seed from the clock.
type SLAMConfig struct {
	MapWidth         int     `yaml:"mapWidth"`
	MapHeight        int     `yaml:"mapHeight"`
	Resolution       float64 `yaml:"resolution"`
	NumParticles     int     `yaml:"numParticles"`
	MaxRange         float64 `yaml:"maxRange"`
	TranslationNoise float64 `yaml:"translationNoise"`
	RotationNoise    float64 `yaml:"rotationNoise"`
	SensorNoise      float64 `yaml:"sensorNoise"`
	Seed             int64   `yaml:"seed,omitempty"`
}

// DefaultSLAMConfig returns the grid and filter sizing used when the config
// file leaves the slam section empty.
func DefaultSLAMConfig() SLAMConfig {
	return SLAMConfig{
		MapWidth:         200,
		MapHeight:        200,
		Resolution:       0.1,
		NumParticles:     100,
		MaxRange:         10.0,
		TranslationNoise: 0.05,
		RotationNoise:    0.02,
		SensorNoise:      0.2,
	}
}

// SLAMResult is the consistent snapshot handed to planners after a cycle.
// Map is a probability snapshot, never the mutable log-odds grid.
type SLAMResult struct {
	Map        *ProbabilityGrid `json:"-"`
	Pose       Pose             `json:"pose"`
	Particles  []Particle       `json:"particles,omitempty"`
	Confidence float64          `json:"confidence"`
}

// SLAMEngine owns the occupancy grid and the particle set and runs the
// per-tick localize/map/estimate loop. It is single-threaded: callers take
// the returned snapshot after Update and never read mid-cycle.
type SLAMEngine struct {
	cfg        SLAMConfig
	grid       *OccupancyGrid
	filter     *ParticleFilter
	noise      *NoiseGenerator
	pose       Pose
	confidence float64
}

// NewSLAMEngine validates the configuration and builds the grid and filter.
func NewSLAMEngine(cfg SLAMConfig) (*SLAMEngine, error) {
	if cfg.NumParticles <= 0 {
		return nil, fmt.Errorf("numParticles must be positive, got %d", cfg.NumParticles)
	}
	grid, err := NewOccupancyGrid(cfg.MapWidth, cfg.MapHeight, cfg.Resolution)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	noise := NewNoiseGenerator(seed)

	filter, err := NewParticleFilter(cfg.NumParticles, cfg.TranslationNoise, cfg.RotationNoise, cfg.SensorNoise, cfg.MaxRange, noise)
	if err != nil {
		return nil, err
	}

	return &SLAMEngine{
		cfg:        cfg,
		grid:       grid,
		filter:     filter,
		noise:      noise,
		confidence: 1.0,
	}, nil
}

// Pose returns the latest pose estimate.
func (s *SLAMEngine) Pose() Pose { return s.pose }

// Grid exposes the internal log-odds grid for the localizer's sensor model
// and for tests. Planners must use the snapshot from Update instead.
func (s *SLAMEngine) Grid() *OccupancyGrid { return s.grid }

// SetPose resets the estimate and reseeds the particles as a Gaussian cloud
// around the given pose. Used for relocalization after tracking is lost.
func (s *SLAMEngine) SetPose(x, y, theta float64) {
	s.pose = Pose{X: x, Y: y, Theta: NormalizeAngle(theta)}
	s.filter.Reset(s.pose, relocalizeSigmaXY, relocalizeSigmaTheta)
	s.confidence = 1.0
}

// Update runs one full SLAM cycle: predict on odometry when present,
// correct and map on a scan when present, resample if the particle set
// degenerated, then recompute the pose estimate. The returned snapshot is
// complete and immutable; mid-cycle state is never observable.
func (s *SLAMEngine) Update(odom *Odometry, scan LidarScan) SLAMResult {
	if odom != nil {
		s.filter.Predict(*odom)
	}

	if len(scan) > 0 {
		s.filter.Correct(scan, s.grid)
		s.integrateScan(scan)
		if s.filter.NeedsResample() {
			s.filter.Resample()
		}
	}

	s.pose, s.confidence = s.filter.Estimate()

	return SLAMResult{
		Map:        s.grid.ToProbabilityGrid(),
		Pose:       s.pose,
		Particles:  s.filter.Particles(),
		Confidence: s.confidence,
	}
}

// integrateScan ray-traces the scan into the grid from the current pose
// estimate. Mapping from the single estimate rather than per particle keeps
// the grid cost linear in beams.
func (s *SLAMEngine) integrateScan(scan LidarScan) {
	origin := s.pose.Position()
	for _, r := range scan {
		if r.Range <= 0 || (s.cfg.MaxRange > 0 && r.Range > s.cfg.MaxRange) {
			continue
		}
		end := Point{
			X: s.pose.X + r.Range*math.Cos(s.pose.Theta+r.Angle),
			Y: s.pose.Y + r.Range*math.Sin(s.pose.Theta+r.Angle),
		}
		s.grid.UpdateRay(origin, end)
	}
}
