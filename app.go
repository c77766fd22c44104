package main

import (
	"fmt"
	"log"
	"sync"

	"github.com/aros-robotics/navcore/nav"
)

// waypointReachedDistance is how close the robot must be to a waypoint
// before the controller is steered at the next one.
const waypointReachedDistance = 0.3

// Pipeline bundles the per-robot navigation stack: SLAM, the global
// planner and the local controller, plus the last commanded velocity that
// seeds the next dynamic window.
type Pipeline struct {
	slam     *nav.SLAMEngine
	planner  *nav.PathPlanner
	avoider  *nav.ObstacleAvoider
	velocity nav.Velocity
}

// NewPipeline builds one robot's stack from the shared configuration.
func NewPipeline(cfg *nav.Config) (*Pipeline, error) {
	slam, err := nav.NewSLAMEngine(cfg.SLAM)
	if err != nil {
		return nil, fmt.Errorf("building SLAM engine: %w", err)
	}
	planner, err := nav.NewPathPlanner(cfg.Planner)
	if err != nil {
		return nil, fmt.Errorf("building planner: %w", err)
	}
	avoider, err := nav.NewObstacleAvoider(cfg.Avoidance)
	if err != nil {
		return nil, fmt.Errorf("building avoider: %w", err)
	}
	return &Pipeline{slam: slam, planner: planner, avoider: avoider}, nil
}

// Step runs one full control tick: SLAM update, replan when a goal is set,
// then the local controller. The SLAM snapshot is taken once and everything
// downstream reads only that snapshot.
func (p *Pipeline) Step(tick *nav.SensorTick) (nav.SLAMResult, nav.Path, nav.Velocity) {
	result := p.slam.Update(tick.Odometry, tick.Scan)

	var path nav.Path
	var target *nav.Point
	if tick.Goal != nil {
		m := nav.NewPlanningMap(nil, tick.Obstacles, result.Map)
		if planned, ok := p.planner.Plan(result.Pose.Position(), *tick.Goal, m); ok {
			path = planned
			target = nextWaypoint(path, result.Pose)
		} else {
			// No global path this tick: steer at the goal directly and let
			// the local controller handle what is in the way.
			target = tick.Goal
		}
	}

	cmd := p.avoider.ComputeSafeVelocity(nav.AvoidanceInput{
		Current:   p.velocity,
		Obstacles: tick.Obstacles,
		Goal:      target,
		Pose:      result.Pose,
	})
	p.velocity = cmd

	return result, path, cmd
}

// nextWaypoint picks the first waypoint the robot has not yet reached.
func nextWaypoint(path nav.Path, pose nav.Pose) *nav.Point {
	for i := range path {
		if nav.Distance(pose.Position(), path[i]) > waypointReachedDistance {
			return &path[i]
		}
	}
	if len(path) == 0 {
		return nil
	}
	return &path[len(path)-1]
}

// App wires the configuration, the per-robot pipelines, MQTT and the state
// tracker together for service mode.
type App struct {
	Config    *nav.Config
	State     *nav.StateTracker
	MQTT      *nav.MQTTClient
	Publisher *nav.Publisher

	mu        sync.Mutex
	pipelines map[string]*Pipeline
}

// NewApp creates an App with one pipeline per configured robot.
func NewApp(cfg *nav.Config) (*App, error) {
	app := &App{
		Config:    cfg,
		State:     nav.NewStateTracker(),
		pipelines: make(map[string]*Pipeline),
	}
	for _, robot := range cfg.Robots {
		pipeline, err := NewPipeline(cfg)
		if err != nil {
			return nil, fmt.Errorf("robot %s: %w", robot.ID, err)
		}
		app.pipelines[robot.ID] = pipeline
	}
	return app, nil
}

// HandleTick is the MQTT tick callback: run the pipeline for the robot and
// publish the resulting command and pose. Malformed ticks are logged and
// skipped, never fatal.
func (a *App) HandleTick(robotID string, tick *nav.SensorTick, err error) {
	if err != nil {
		log.Printf("Dropping tick for %s: %v", robotID, err)
		return
	}

	a.mu.Lock()
	pipeline, ok := a.pipelines[robotID]
	a.mu.Unlock()
	if !ok {
		log.Printf("Tick for unknown robot %s ignored", robotID)
		return
	}

	result, path, cmd := pipeline.Step(tick)

	a.State.UpdatePose(robotID, result.Pose, result.Confidence)
	a.State.UpdatePath(robotID, path)
	a.State.UpdateVelocity(robotID, cmd)

	if a.Publisher != nil {
		if err := a.Publisher.PublishCommand(robotID, cmd); err != nil {
			log.Printf("Publishing command for %s: %v", robotID, err)
		}
		if err := a.Publisher.PublishPose(robotID, result.Pose, result.Confidence); err != nil {
			log.Printf("Publishing pose for %s: %v", robotID, err)
		}
	}
}

// Pipeline returns the pipeline for a robot, mainly for tests.
func (a *App) Pipeline(robotID string) (*Pipeline, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.pipelines[robotID]
	return p, ok
}
