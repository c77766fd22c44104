package nav

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MQTTConfig holds MQTT connection settings for service mode.
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	PublishPrefix string `yaml:"publishPrefix" json:"publishPrefix"`
	ClientID      string `yaml:"clientId" json:"clientId"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// RobotConfig defines one robot from the config file.
type RobotConfig struct {
	ID    string `yaml:"id" json:"id"`
	Topic string `yaml:"topic" json:"topic"`
}

// Config is the full configuration file: MQTT connection, the robot fleet,
// and the per-component tuning sections. Empty sections fall back to the
// component defaults.
type Config struct {
	MQTT      MQTTConfig      `yaml:"mqtt" json:"mqtt"`
	Robots    []RobotConfig   `yaml:"robots" json:"robots"`
	SLAM      SLAMConfig      `yaml:"slam" json:"slam"`
	Planner   PlannerConfig   `yaml:"planner" json:"planner"`
	Avoidance AvoidanceConfig `yaml:"avoidance" json:"avoidance"`
}

// GetRobotByID returns the robot config for the given ID, or nil.
func (c *Config) GetRobotByID(id string) *RobotConfig {
	for i := range c.Robots {
		if c.Robots[i].ID == id {
			return &c.Robots[i]
		}
	}
	return nil
}

// LoadConfig loads the configuration from a YAML file, fills defaults for
// unset fields and validates the robot list. Strategy names are validated
// later by the component constructors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	config.ApplyDefaults()

	for i, rc := range config.Robots {
		if rc.ID == "" {
			return nil, fmt.Errorf("robot[%d].id is required", i)
		}
		if rc.Topic == "" {
			return nil, fmt.Errorf("robot[%d].topic is required for %s", i, rc.ID)
		}
	}

	return &config, nil
}

// SaveConfig writes the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// ApplyDefaults fills every unset tuning field from the component defaults.
// Explicit values, including explicit smoothing=false, are left alone.
func (c *Config) ApplyDefaults() {
	slam := DefaultSLAMConfig()
	if c.SLAM.MapWidth == 0 {
		c.SLAM.MapWidth = slam.MapWidth
	}
	if c.SLAM.MapHeight == 0 {
		c.SLAM.MapHeight = slam.MapHeight
	}
	if c.SLAM.Resolution == 0 {
		c.SLAM.Resolution = slam.Resolution
	}
	if c.SLAM.NumParticles == 0 {
		c.SLAM.NumParticles = slam.NumParticles
	}
	if c.SLAM.MaxRange == 0 {
		c.SLAM.MaxRange = slam.MaxRange
	}
	if c.SLAM.TranslationNoise == 0 {
		c.SLAM.TranslationNoise = slam.TranslationNoise
	}
	if c.SLAM.RotationNoise == 0 {
		c.SLAM.RotationNoise = slam.RotationNoise
	}
	if c.SLAM.SensorNoise == 0 {
		c.SLAM.SensorNoise = slam.SensorNoise
	}

	planner := DefaultPlannerConfig()
	if c.Planner.Algorithm == "" {
		c.Planner.Algorithm = planner.Algorithm
	}
	if c.Planner.MaxIterations == 0 {
		c.Planner.MaxIterations = planner.MaxIterations
	}
	if c.Planner.StepSize == 0 {
		c.Planner.StepSize = planner.StepSize
	}
	if c.Planner.GoalThreshold == 0 {
		c.Planner.GoalThreshold = planner.GoalThreshold
	}
	if c.Planner.CellQuantum == 0 {
		c.Planner.CellQuantum = planner.CellQuantum
	}

	avoid := DefaultAvoidanceConfig()
	if c.Avoidance.Method == "" {
		c.Avoidance.Method = avoid.Method
	}
	if c.Avoidance.RobotRadius == 0 {
		c.Avoidance.RobotRadius = avoid.RobotRadius
	}
	if c.Avoidance.EmergencyDistance == 0 {
		c.Avoidance.EmergencyDistance = avoid.EmergencyDistance
	}
	if c.Avoidance.MaxLinearVel == 0 {
		c.Avoidance.MaxLinearVel = avoid.MaxLinearVel
	}
	if c.Avoidance.MaxLinearAccel == 0 {
		c.Avoidance.MaxLinearAccel = avoid.MaxLinearAccel
	}
	if c.Avoidance.MaxAngularVel == 0 {
		c.Avoidance.MaxAngularVel = avoid.MaxAngularVel
	}
	if c.Avoidance.MaxAngularAccel == 0 {
		c.Avoidance.MaxAngularAccel = avoid.MaxAngularAccel
	}
	if c.Avoidance.DT == 0 {
		c.Avoidance.DT = avoid.DT
	}
	if c.Avoidance.TimeHorizon == 0 {
		c.Avoidance.TimeHorizon = avoid.TimeHorizon
	}
	if c.Avoidance.VelocitySamples == 0 {
		c.Avoidance.VelocitySamples = avoid.VelocitySamples
	}
}
