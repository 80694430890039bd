package wireless

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/edgeflow/edgeflow/internal/node"
)

// ZigbeeNode implements Zigbee communication via coordinator
type ZigbeeNode struct {
	coordinator   string // Coordinator type: zigbee2mqtt, deconz, zstack
	mqttBroker    string // MQTT broker URL (for zigbee2mqtt)
	mqttTopic     string // Base MQTT topic
	apiURL        string // REST API URL (for deconz)
	apiKey        string // API key (for deconz)
	serialPort    string // Serial port (for direct communication)
	operation     string // get_devices, get_device, set_state, bind, unbind, permit_join
	deviceID      string // Target device IEEE address or friendly name
	timeout       time.Duration
	mu            sync.Mutex
}

// ZigbeeDevice represents a Zigbee device
type ZigbeeDevice struct {
	IEEEAddress   string                 `json:"ieee_address"`
	FriendlyName  string                 `json:"friendly_name"`
	Type          string                 `json:"type"` // Coordinator, Router, EndDevice
	Model         string                 `json:"model"`
	Manufacturer  string                 `json:"manufacturer"`
	PowerSource   string                 `json:"power_source"`
	NetworkAddr   uint16                 `json:"network_address"`
	Supported     bool                   `json:"supported"`
	Definition    map[string]interface{} `json:"definition,omitempty"`
	State         map[string]interface{} `json:"state,omitempty"`
}

// ZigbeeMessage represents a Zigbee message
type ZigbeeMessage struct {
	Topic   string                 `json:"topic"`
	Payload map[string]interface{} `json:"payload"`
}

// NewZigbeeNode creates a new Zigbee node
func NewZigbeeNode() *ZigbeeNode {
	return &ZigbeeNode{
		coordinator: "zigbee2mqtt",
		mqttBroker:  "mqtt://localhost:1883",
		mqttTopic:   "zigbee2mqtt",
		operation:   "get_devices",
		timeout:     30 * time.Second,
	}
}

// Init initializes the Zigbee node
func (n *ZigbeeNode) Init(config map[string]interface{}) error {
	if coord, ok := config["coordinator"].(string); ok {
		n.coordinator = coord
	}
	if broker, ok := config["mqttBroker"].(string); ok {
		n.mqttBroker = broker
	}
	if topic, ok := config["mqttTopic"].(string); ok {
		n.mqttTopic = topic
	}
	if url, ok := config["apiUrl"].(string); ok {
		n.apiURL = url
	}
	if key, ok := config["apiKey"].(string); ok {
		n.apiKey = key
	}
	if port, ok := config["serialPort"].(string); ok {
		n.serialPort = port
	}
	if op, ok := config["operation"].(string); ok {
		n.operation = op
	}
	if device, ok := config["deviceId"].(string); ok {
		n.deviceID = device
	}
	if timeout, ok := config["timeout"].(float64); ok {
		n.timeout = time.Duration(timeout) * time.Millisecond
	}

	return nil
}

// Execute performs Zigbee operation
func (n *ZigbeeNode) Execute(ctx context.Context, msg node.Message) (node.Message, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// Get parameters from message
	operation := n.operation
	deviceID := n.deviceID

	if op, ok := msg.Payload["operation"].(string); ok {
		operation = op
	}
	if dev, ok := msg.Payload["deviceId"].(string); ok {
		deviceID = dev
	}

	var result interface{}
	var err error

	switch n.coordinator {
	case "zigbee2mqtt":
		result, err = n.executeZigbee2MQTT(ctx, operation, deviceID, msg.Payload)
	case "deconz":
		result, err = n.executeDeconz(ctx, operation, deviceID, msg.Payload)
	default:
		err = fmt.Errorf("unsupported coordinator: %s", n.coordinator)
	}

	if err != nil {
		return msg, err
	}

	msg.Payload["result"] = result
	msg.Payload["operation"] = operation
	msg.Payload["coordinator"] = n.coordinator

	return msg, nil
}

// executeZigbee2MQTT executes via zigbee2mqtt MQTT interface
func (n *ZigbeeNode) executeZigbee2MQTT(ctx context.Context, operation, deviceID string, payload map[string]interface{}) (interface{}, error) {
	// Note: In full implementation would use MQTT client
	// to communicate with zigbee2mqtt
	//
	// Example topics:
	// zigbee2mqtt/bridge/devices - list all devices
	// zigbee2mqtt/bridge/config/permit_join - enable pairing
	// zigbee2mqtt/<device>/set - control device
	// zigbee2mqtt/<device>/get - request state
	//
	// Example with paho MQTT:
	// client := mqtt.NewClient(opts)
	// token := client.Connect()
	// token.Wait()
	//
	// switch operation {
	// case "get_devices":
	//     // Subscribe to zigbee2mqtt/bridge/devices
	// case "set_state":
	//     topic := fmt.Sprintf("%s/%s/set", n.mqttTopic, deviceID)
	//     client.Publish(topic, 0, false, payload)
	// }

	switch operation {
	case "get_devices":
		return nil, fmt.Errorf("zigbee2mqtt integration requires MQTT client - use MQTT nodes for now")
	case "get_device":
		return nil, fmt.Errorf("zigbee2mqtt integration requires MQTT client - use MQTT nodes for now")
	case "set_state":
		// Build MQTT topic and payload
		topic := fmt.Sprintf("%s/%s/set", n.mqttTopic, deviceID)
		statePayload := make(map[string]interface{})
		if state, ok := payload["state"].(map[string]interface{}); ok {
			statePayload = state
		} else {
			// Copy relevant fields
			for _, key := range []string{"state", "brightness", "color_temp", "color", "effect"} {
				if v, ok := payload[key]; ok {
					statePayload[key] = v
				}
			}
		}
		return map[string]interface{}{
			"topic":   topic,
			"payload": statePayload,
			"hint":    "Send this via MQTT Out node",
		}, nil
	case "permit_join":
		duration := 60
		if d, ok := payload["duration"].(float64); ok {
			duration = int(d)
		}
		topic := fmt.Sprintf("%s/bridge/request/permit_join", n.mqttTopic)
		return map[string]interface{}{
			"topic":   topic,
			"payload": map[string]interface{}{"value": true, "time": duration},
			"hint":    "Send this via MQTT Out node",
		}, nil
	case "remove_device":
		topic := fmt.Sprintf("%s/bridge/request/device/remove", n.mqttTopic)
		return map[string]interface{}{
			"topic":   topic,
			"payload": map[string]interface{}{"id": deviceID},
			"hint":    "Send this via MQTT Out node",
		}, nil
	default:
		return nil, fmt.Errorf("unknown operation: %s", operation)
	}
}

// executeDeconz executes via deCONZ REST API
func (n *ZigbeeNode) executeDeconz(ctx context.Context, operation, deviceID string, payload map[string]interface{}) (interface{}, error) {
	// Note: In full implementation would use HTTP client
	// to communicate with deCONZ REST API
	//
	// Example endpoints:
	// GET /api/<apikey>/lights - list lights
	// GET /api/<apikey>/sensors - list sensors
	// PUT /api/<apikey>/lights/<id>/state - control light
	//
	// Example with http:
	// url := fmt.Sprintf("%s/api/%s/lights", n.apiURL, n.apiKey)
	// resp, err := http.Get(url)

	switch operation {
	case "get_devices":
		return map[string]interface{}{
			"lights_url":  fmt.Sprintf("%s/api/%s/lights", n.apiURL, n.apiKey),
			"sensors_url": fmt.Sprintf("%s/api/%s/sensors", n.apiURL, n.apiKey),
			"hint":        "Use HTTP Request node to fetch devices",
		}, nil
	case "set_state":
		statePayload, _ := json.Marshal(payload["state"])
		return map[string]interface{}{
			"url":     fmt.Sprintf("%s/api/%s/lights/%s/state", n.apiURL, n.apiKey, deviceID),
			"method":  "PUT",
			"payload": string(statePayload),
			"hint":    "Use HTTP Request node to set state",
		}, nil
	default:
		return nil, fmt.Errorf("unknown operation for deCONZ: %s", operation)
	}
}

// Cleanup releases Zigbee resources
func (n *ZigbeeNode) Cleanup() error {
	return nil
}

// NewZigbeeExecutor creates a new Zigbee executor
func NewZigbeeExecutor() node.Executor {
	return NewZigbeeNode()
}
