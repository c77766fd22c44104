package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/aros-robotics/navcore/nav"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile = flag.String("config", "config.yaml", "Path to configuration file")
	mqttMode   = flag.Bool("mqtt", false, "Run MQTT service mode: consume sensor ticks, publish velocity commands")
	planFile   = flag.String("plan", "", "One-shot mode: plan a path for the given scenario YAML and exit")
	seed       = flag.Int64("seed", 0, "Override random seed for reproducible runs (0 = from clock)")
)

func main() {
	flag.Parse()
	fmt.Printf("navcore version: %s\n", Version)

	config, err := nav.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *seed != 0 {
		config.SLAM.Seed = *seed
		config.Planner.Seed = *seed
	}

	if *planFile != "" {
		runPlanOnly(config, *planFile)
		return
	}

	if *mqttMode {
		runService(config)
		return
	}

	flag.Usage()
	os.Exit(1)
}

// Scenario is the input of -plan mode: a start/goal pair plus the world the
// planner should consider.
type Scenario struct {
	Start     nav.Point      `yaml:"start"`
	Goal      nav.Point      `yaml:"goal"`
	Bounds    *nav.Bounds    `yaml:"bounds,omitempty"`
	Obstacles []nav.Obstacle `yaml:"obstacles,omitempty"`
}

// runPlanOnly plans a single path and prints the waypoints.
func runPlanOnly(config *nav.Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Error reading scenario: %v", err)
	}
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		log.Fatalf("Error parsing scenario YAML: %v", err)
	}

	planner, err := nav.NewPathPlanner(config.Planner)
	if err != nil {
		log.Fatalf("Error building planner: %v", err)
	}

	m := nav.NewPlanningMap(scenario.Bounds, scenario.Obstacles, nil)
	result, ok := planner.Plan(scenario.Start, scenario.Goal, m)
	if !ok {
		log.Fatalf("No path found from (%.2f, %.2f) to (%.2f, %.2f) within %d iterations",
			scenario.Start.X, scenario.Start.Y, scenario.Goal.X, scenario.Goal.Y, config.Planner.MaxIterations)
	}

	fmt.Printf("Path with %d waypoints, length %.2f:\n", len(result), result.Length())
	for i, wp := range result {
		fmt.Printf("  %3d: (%.2f, %.2f)\n", i, wp.X, wp.Y)
	}
}

// runService runs MQTT service mode until interrupted.
func runService(config *nav.Config) {
	app, err := NewApp(config)
	if err != nil {
		log.Fatalf("Error building app: %v", err)
	}

	client, err := nav.NewMQTTClient(config, app.HandleTick)
	if err != nil {
		log.Fatalf("Error starting MQTT: %v", err)
	}
	if client == nil {
		log.Fatalf("MQTT service mode requires a broker (config mqtt.broker or MQTT_BROKER)")
	}
	app.MQTT = client
	app.Publisher = nav.NewPublisher(client.Client(), config)

	log.Printf("Navigation service running for %d robot(s)", len(config.Robots))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down")
	client.Disconnect()
}
