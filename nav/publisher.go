package nav

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// CommandMessage is the velocity command published after each tick.
type CommandMessage struct {
	RobotID   string   `json:"robotId"`
	Velocity  Velocity `json:"velocity"`
	Timestamp int64    `json:"timestamp"`
}

// PoseMessage is the localization estimate published after each tick.
type PoseMessage struct {
	RobotID    string  `json:"robotId"`
	Pose       Pose    `json:"pose"`
	Confidence float64 `json:"confidence"`
	Timestamp  int64   `json:"timestamp"`
}

// Publisher publishes velocity commands and pose estimates to MQTT. With a
// nil client publishing is disabled, which the tests rely on.
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
}

// NewPublisher creates a publisher. The topic prefix comes from
// MQTT_PUBLISH_PREFIX, then the config, then the default "navcore".
func NewPublisher(client mqtt.Client, cfg *Config) *Publisher {
	prefix := os.Getenv("MQTT_PUBLISH_PREFIX")
	if prefix == "" && cfg != nil && cfg.MQTT.PublishPrefix != "" {
		prefix = cfg.MQTT.PublishPrefix
	}
	if prefix == "" {
		prefix = "navcore"
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           0,    // commands are superseded every tick, no need for QoS
		retain:        true, // retain so late subscribers see the latest state
	}
}

// PublishCommand publishes the velocity command for one robot to
// {prefix}/{robotID}/cmd_vel.
func (p *Publisher) PublishCommand(robotID string, v Velocity) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	msg := CommandMessage{
		RobotID:   robotID,
		Velocity:  v,
		Timestamp: time.Now().Unix(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling command for %s: %w", robotID, err)
	}

	topic := fmt.Sprintf("%s/%s/cmd_vel", p.publishPrefix, robotID)
	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.Wait() && token.Error() != nil {
		log.Printf("Error publishing command for %s: %v", robotID, token.Error())
		return token.Error()
	}
	return nil
}

// PublishPose publishes the pose estimate for one robot to
// {prefix}/{robotID}/pose.
func (p *Publisher) PublishPose(robotID string, pose Pose, confidence float64) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	msg := PoseMessage{
		RobotID:    robotID,
		Pose:       pose,
		Confidence: confidence,
		Timestamp:  time.Now().Unix(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling pose for %s: %w", robotID, err)
	}

	topic := fmt.Sprintf("%s/%s/pose", p.publishPrefix, robotID)
	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.Wait() && token.Error() != nil {
		log.Printf("Error publishing pose for %s: %v", robotID, token.Error())
		return token.Error()
	}
	return nil
}
