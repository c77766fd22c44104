package nav

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Algorithm selects the global planning strategy.
type Algorithm string

const (
	AlgorithmAStar    Algorithm = "astar"
	AlgorithmDijkstra Algorithm = "dijkstra"
	AlgorithmRRT      Algorithm = "rrt"
	AlgorithmRRTStar  Algorithm = "rrt_star"
)

// PlannerConfig tunes the global planner. CellQuantum is the node
// deduplication granularity in world units: two positions closer than this
// along either axis share a search node.
type PlannerConfig struct {
	Algorithm     Algorithm `yaml:"algorithm"`
	MaxIterations int       `yaml:"maxIterations"`
	StepSize      float64   `yaml:"stepSize"`
	GoalThreshold float64   `yaml:"goalThreshold"`
	CellQuantum   float64   `yaml:"cellQuantum"`
	Smoothing     *bool     `yaml:"smoothing,omitempty"`
	Seed          int64     `yaml:"seed,omitempty"`
}

// DefaultPlannerConfig returns A* with the standard iteration cap and a
// centimeter dedup granularity.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		Algorithm:     AlgorithmAStar,
		MaxIterations: 10000,
		StepSize:      1.0,
		GoalThreshold: 0.5,
		CellQuantum:   0.01,
	}
}

// SmoothingEnabled reports whether shortcut smoothing applies. It defaults
// on when the config leaves it unset.
func (c PlannerConfig) SmoothingEnabled() bool {
	return c.Smoothing == nil || *c.Smoothing
}

// planStrategy is one concrete search algorithm. Plan returns the waypoint
// path and whether the goal was reached; exhaustion is a normal false, not
// an error.
type planStrategy interface {
	plan(start, goal Point, m *PlanningMap) (Path, bool)
}

// PathPlanner is the global planner: one strategy selected at construction
// plus optional shortcut smoothing of the result.
type PathPlanner struct {
	cfg      PlannerConfig
	strategy planStrategy
}

// NewPathPlanner validates the configuration and builds the selected
// strategy. Unknown algorithm names are rejected, never silently defaulted.
func NewPathPlanner(cfg PlannerConfig) (*PathPlanner, error) {
	if cfg.MaxIterations <= 0 {
		return nil, fmt.Errorf("maxIterations must be positive, got %d", cfg.MaxIterations)
	}
	if cfg.StepSize <= 0 {
		return nil, fmt.Errorf("stepSize must be positive, got %g", cfg.StepSize)
	}
	if cfg.GoalThreshold <= 0 {
		return nil, fmt.Errorf("goalThreshold must be positive, got %g", cfg.GoalThreshold)
	}
	if cfg.CellQuantum <= 0 {
		return nil, fmt.Errorf("cellQuantum must be positive, got %g", cfg.CellQuantum)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var strategy planStrategy
	switch cfg.Algorithm {
	case AlgorithmAStar:
		strategy = &gridSearch{cfg: cfg, heuristic: Distance}
	case AlgorithmDijkstra:
		strategy = &gridSearch{cfg: cfg, heuristic: zeroHeuristic}
	case AlgorithmRRT:
		strategy = &rrtSearch{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
	case AlgorithmRRTStar:
		strategy = &rrtSearch{cfg: cfg, star: true, rng: rand.New(rand.NewSource(seed))}
	default:
		return nil, fmt.Errorf("unknown planning algorithm %q (want astar, dijkstra, rrt or rrt_star)", cfg.Algorithm)
	}

	return &PathPlanner{cfg: cfg, strategy: strategy}, nil
}

// Plan computes a path from start to goal over the map. The second return
// is false when no path was found within the iteration budget.
func (p *PathPlanner) Plan(start, goal Point, m *PlanningMap) (Path, bool) {
	path, ok := p.strategy.plan(start, goal, m)
	if !ok {
		return nil, false
	}
	if p.cfg.SmoothingEnabled() {
		path = SmoothPath(path, m)
	}
	return path, true
}

func zeroHeuristic(a, b Point) float64 { return 0 }

// cellKey identifies a search node by its quantized position. Integer pair
// keys avoid the precision traps of rounding positions into strings.
type cellKey struct {
	cx int64
	cy int64
}

// quantize maps a continuous position onto a cell key at the configured
// granularity.
func quantize(p Point, quantum float64) cellKey {
	return cellKey{
		cx: int64(math.Round(p.X / quantum)),
		cy: int64(math.Round(p.Y / quantum)),
	}
}
