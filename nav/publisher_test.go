package nav

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_PrefixResolution(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")

	p := NewPublisher(nil, nil)
	assert.Equal(t, "navcore", p.publishPrefix)

	p = NewPublisher(nil, &Config{MQTT: MQTTConfig{PublishPrefix: "fleet"}})
	assert.Equal(t, "fleet", p.publishPrefix)

	t.Setenv("MQTT_PUBLISH_PREFIX", "override")
	p = NewPublisher(nil, &Config{MQTT: MQTTConfig{PublishPrefix: "fleet"}})
	assert.Equal(t, "override", p.publishPrefix)
}

func TestPublishCommand(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	mock := NewMockClient()
	mock.SetConnected(true)
	p := NewPublisher(mock, nil)

	require.NoError(t, p.PublishCommand("vacuum-1", Velocity{Linear: 0.5, Angular: -0.1}))

	published := mock.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "navcore/vacuum-1/cmd_vel", published[0].Topic)
	assert.Equal(t, byte(0), published[0].QoS)
	assert.True(t, published[0].Retain)

	var msg CommandMessage
	require.NoError(t, json.Unmarshal(published[0].Payload, &msg))
	assert.Equal(t, "vacuum-1", msg.RobotID)
	assert.Equal(t, Velocity{Linear: 0.5, Angular: -0.1}, msg.Velocity)
	assert.NotZero(t, msg.Timestamp)
}

func TestPublishPose(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "fleet")
	mock := NewMockClient()
	mock.SetConnected(true)
	p := NewPublisher(mock, nil)

	require.NoError(t, p.PublishPose("vacuum-1", Pose{X: 1, Y: 2, Theta: 0.3}, 0.85))

	published := mock.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "fleet/vacuum-1/pose", published[0].Topic)

	var msg PoseMessage
	require.NoError(t, json.Unmarshal(published[0].Payload, &msg))
	assert.Equal(t, Pose{X: 1, Y: 2, Theta: 0.3}, msg.Pose)
	assert.Equal(t, 0.85, msg.Confidence)
}

func TestPublisher_NotConnected(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")

	p := NewPublisher(nil, nil)
	assert.Error(t, p.PublishCommand("vacuum-1", Velocity{}))
	assert.Error(t, p.PublishPose("vacuum-1", Pose{}, 1.0))

	mock := NewMockClient() // constructed disconnected
	p = NewPublisher(mock, nil)
	assert.Error(t, p.PublishCommand("vacuum-1", Velocity{}))
	assert.Empty(t, mock.Published())
}

func TestPublisher_PublishErrorPropagated(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")
	mock := NewMockClient()
	mock.SetConnected(true)
	mock.SetPublishError(errors.New("broker rejected"))
	p := NewPublisher(mock, nil)

	err := p.PublishCommand("vacuum-1", Velocity{Linear: 0.2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker rejected")
}
