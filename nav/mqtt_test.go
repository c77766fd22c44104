package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMQTTClient_DisabledWithoutBroker(t *testing.T) {
	t.Setenv("MQTT_BROKER", "")

	client, err := NewMQTTClient(&Config{}, nil)
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewMQTTClient_RequiresRobots(t *testing.T) {
	t.Setenv("MQTT_BROKER", "")

	config := &Config{MQTT: MQTTConfig{Broker: "tcp://localhost:1883"}}
	_, err := NewMQTTClient(config, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no robot configuration")
}

func TestHandleMessage_DecodesTick(t *testing.T) {
	var gotID string
	var gotTick *SensorTick
	c := &MQTTClient{handler: func(robotID string, tick *SensorTick, err error) {
		require.NoError(t, err)
		gotID = robotID
		gotTick = tick
	}}

	c.handleMessage("vacuum-1", []byte(`{
		"odometry": {"dx": 0.1, "dy": 0.0, "dtheta": 0.05},
		"scan": [{"range": 2.5, "angle": 0.0}, {"range": 1.0, "angle": 1.57}],
		"obstacles": [{"x": 3.0, "y": 1.0, "radius": 0.4, "vx": 0.2, "vy": 0.0}],
		"goal": {"x": 5.0, "y": 5.0}
	}`))

	assert.Equal(t, "vacuum-1", gotID)
	require.NotNil(t, gotTick)
	require.NotNil(t, gotTick.Odometry)
	assert.Equal(t, 0.1, gotTick.Odometry.DX)
	require.Len(t, gotTick.Scan, 2)
	assert.Equal(t, 2.5, gotTick.Scan[0].Range)
	require.Len(t, gotTick.Obstacles, 1)
	assert.True(t, gotTick.Obstacles[0].IsDynamic())
	require.NotNil(t, gotTick.Goal)
	assert.Equal(t, Point{X: 5, Y: 5}, *gotTick.Goal)
}

func TestHandleMessage_MalformedPayload(t *testing.T) {
	var gotErr error
	var called bool
	c := &MQTTClient{handler: func(robotID string, tick *SensorTick, err error) {
		called = true
		gotErr = err
		assert.Nil(t, tick)
	}}

	c.handleMessage("vacuum-1", []byte("{not json"))

	require.True(t, called)
	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "vacuum-1")
}

func TestHandleMessage_NilHandler(t *testing.T) {
	c := &MQTTClient{}
	// Must not panic.
	c.handleMessage("vacuum-1", []byte(`{}`))
}

func TestOnConnect_SubscribesAndRoutes(t *testing.T) {
	config := &Config{Robots: []RobotConfig{
		{ID: "vacuum-1", Topic: "robots/vacuum-1/sensors"},
		{ID: "vacuum-2", Topic: "robots/vacuum-2/sensors"},
	}}

	ticks := make(map[string]*SensorTick)
	c := &MQTTClient{
		config: config,
		handler: func(robotID string, tick *SensorTick, err error) {
			require.NoError(t, err)
			ticks[robotID] = tick
		},
	}

	mock := NewMockClient()
	mock.SetConnected(true)
	c.onConnect(mock)
	assert.True(t, c.IsConnected())

	mock.Deliver("robots/vacuum-2/sensors", []byte(`{"goal": {"x": 1, "y": 2}}`))

	require.Contains(t, ticks, "vacuum-2")
	assert.NotContains(t, ticks, "vacuum-1")
	require.NotNil(t, ticks["vacuum-2"].Goal)
	assert.Equal(t, Point{X: 1, Y: 2}, *ticks["vacuum-2"].Goal)
}
