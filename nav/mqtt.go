package nav

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// SensorTick is the per-cycle sensor payload a robot publishes: optional
// odometry, an optional lidar sweep, the currently tracked obstacles and an
// optional navigation goal.
type SensorTick struct {
	Odometry  *Odometry  `json:"odometry,omitempty"`
	Scan      LidarScan  `json:"scan,omitempty"`
	Obstacles []Obstacle `json:"obstacles,omitempty"`
	Goal      *Point     `json:"goal,omitempty"`
}

// TickHandler is called for every decoded sensor tick. A decode failure is
// delivered with a nil tick so the caller can log it; the subscription
// stays alive.
type TickHandler func(robotID string, tick *SensorTick, err error)

// MQTTClient manages the broker connection and per-robot sensor
// subscriptions for service mode.
type MQTTClient struct {
	client      mqtt.Client
	config      *Config
	handler     TickHandler
	isConnected bool
	mu          sync.RWMutex
}

// NewMQTTClient builds the client from the configuration. Broker and
// credentials may be overridden via MQTT_BROKER, MQTT_CLIENT_ID,
// MQTT_USERNAME and MQTT_PASSWORD. A missing broker disables MQTT and
// returns nil without error.
func NewMQTTClient(config *Config, handler TickHandler) (*MQTTClient, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" && config != nil && config.MQTT.Broker != "" {
		broker = config.MQTT.Broker
	}
	if broker == "" {
		log.Println("MQTT disabled: no broker configured")
		return nil, nil
	}
	if config == nil || len(config.Robots) == 0 {
		return nil, fmt.Errorf("MQTT enabled but no robot configuration provided")
	}

	c := &MQTTClient{
		config:  config,
		handler: handler,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)

	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" && config.MQTT.ClientID != "" {
		clientID = config.MQTT.ClientID
	}
	if clientID == "" {
		clientID = "navcore"
	}
	opts.SetClientID(clientID)

	username := os.Getenv("MQTT_USERNAME")
	if username == "" && config.MQTT.Username != "" {
		username = config.MQTT.Username
	}
	if username != "" {
		opts.SetUsername(username)
		password := os.Getenv("MQTT_PASSWORD")
		if password == "" && config.MQTT.Password != "" {
			password = config.MQTT.Password
		}
		opts.SetPassword(password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(false) // preserve subscriptions across reconnects

	// Sensor ticks for one robot must be processed in order; predict before
	// correct depends on it.
	opts.SetOrderMatters(true)

	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.client = mqtt.NewClient(opts)
	go c.connectWithRetry()

	return c, nil
}

// IsConnected reports the current broker connection state.
func (c *MQTTClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// Client exposes the underlying paho client, mainly for the Publisher.
func (c *MQTTClient) Client() mqtt.Client {
	return c.client
}

// Disconnect closes the broker connection.
func (c *MQTTClient) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
	}
	c.mu.Lock()
	c.isConnected = false
	c.mu.Unlock()
}

func (c *MQTTClient) connectWithRetry() {
	token := c.client.Connect()
	if token.Wait() && token.Error() != nil {
		log.Printf("MQTT connect failed: %v (auto-retry active)", token.Error())
	}
}

func (c *MQTTClient) onConnect(client mqtt.Client) {
	c.mu.Lock()
	c.isConnected = true
	c.mu.Unlock()
	log.Println("MQTT connected")

	for _, robot := range c.config.Robots {
		robotID := robot.ID
		token := client.Subscribe(robot.Topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
			c.handleMessage(robotID, msg.Payload())
		})
		if token.Wait() && token.Error() != nil {
			log.Printf("Failed to subscribe %s for %s: %v", robot.Topic, robotID, token.Error())
			continue
		}
		log.Printf("Subscribed to %s for %s", robot.Topic, robotID)
	}
}

func (c *MQTTClient) onConnectionLost(_ mqtt.Client, err error) {
	c.mu.Lock()
	c.isConnected = false
	c.mu.Unlock()
	log.Printf("MQTT connection lost: %v", err)
}

// handleMessage decodes one sensor tick and hands it to the handler. A
// malformed payload is reported, never fatal.
func (c *MQTTClient) handleMessage(robotID string, payload []byte) {
	if c.handler == nil {
		return
	}
	var tick SensorTick
	if err := json.Unmarshal(payload, &tick); err != nil {
		c.handler(robotID, nil, fmt.Errorf("decoding sensor tick for %s: %w", robotID, err))
		return
	}
	c.handler(robotID, &tick, nil)
}
