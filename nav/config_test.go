package nav

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "mqtt: [broken")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config YAML")
}

func TestLoadConfig_RobotValidation(t *testing.T) {
	path := writeConfigFile(t, `
robots:
  - id: vacuum-1
    topic: robots/vacuum-1/sensors
  - topic: robots/unnamed/sensors
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "robot[1].id is required")

	path = writeConfigFile(t, `
robots:
  - id: vacuum-1
`)
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "robot[0].topic is required for vacuum-1")
}

func TestLoadConfig_DefaultsApplied(t *testing.T) {
	path := writeConfigFile(t, `
mqtt:
  broker: tcp://localhost:1883
robots:
  - id: vacuum-1
    topic: robots/vacuum-1/sensors
slam:
  numParticles: 50
planner:
  algorithm: rrt_star
`)
	config, err := LoadConfig(path)
	require.NoError(t, err)

	// Explicit values survive.
	assert.Equal(t, 50, config.SLAM.NumParticles)
	assert.Equal(t, AlgorithmRRTStar, config.Planner.Algorithm)

	// Unset fields pick up the component defaults.
	assert.Equal(t, DefaultSLAMConfig().Resolution, config.SLAM.Resolution)
	assert.Equal(t, DefaultPlannerConfig().MaxIterations, config.Planner.MaxIterations)
	assert.Equal(t, DefaultAvoidanceConfig().Method, config.Avoidance.Method)
	assert.Equal(t, DefaultAvoidanceConfig().EmergencyDistance, config.Avoidance.EmergencyDistance)
}

func TestLoadConfig_ExplicitSmoothingFalseKept(t *testing.T) {
	path := writeConfigFile(t, `
robots:
  - id: vacuum-1
    topic: robots/vacuum-1/sensors
planner:
  smoothing: false
`)
	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, config.Planner.Smoothing)
	assert.False(t, config.Planner.SmoothingEnabled())
}

func TestSaveConfig_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")

	original := &Config{
		MQTT: MQTTConfig{Broker: "tcp://broker:1883", PublishPrefix: "fleet"},
		Robots: []RobotConfig{
			{ID: "vacuum-1", Topic: "robots/vacuum-1/sensors"},
		},
	}
	original.ApplyDefaults()
	require.NoError(t, SaveConfig(path, original))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestGetRobotByID(t *testing.T) {
	config := &Config{Robots: []RobotConfig{
		{ID: "a", Topic: "t/a"},
		{ID: "b", Topic: "t/b"},
	}}

	found := config.GetRobotByID("b")
	require.NotNil(t, found)
	assert.Equal(t, "t/b", found.Topic)
	assert.Nil(t, config.GetRobotByID("c"))
}
