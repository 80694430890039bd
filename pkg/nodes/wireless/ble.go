// Package wireless provides nodes for wireless communication protocols
// Supports BLE, Zigbee, Z-Wave, LoRa and other wireless technologies
package wireless

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edgeflow/edgeflow/internal/node"
)

// BLENode implements Bluetooth Low Energy communication
type BLENode struct {
	adapter      string // Adapter name (e.g., hci0)
	operation    string // scan, connect, read, write, subscribe, disconnect
	deviceAddr   string // Target device MAC address
	serviceUUID  string // Service UUID
	charUUID     string // Characteristic UUID
	scanDuration time.Duration
	timeout      time.Duration
	mu           sync.Mutex
	connected    bool
}

// BLEDevice represents a discovered BLE device
type BLEDevice struct {
	Address     string            `json:"address"`
	Name        string            `json:"name"`
	RSSI        int               `json:"rssi"`
	Connectable bool              `json:"connectable"`
	Services    []string          `json:"services,omitempty"`
	ManufData   map[uint16][]byte `json:"manufacturerData,omitempty"`
}

// BLECharacteristic represents a BLE characteristic
type BLECharacteristic struct {
	UUID       string   `json:"uuid"`
	Properties []string `json:"properties"` // read, write, notify, indicate
	Value      []byte   `json:"value,omitempty"`
}

// NewBLENode creates a new BLE node
func NewBLENode() *BLENode {
	return &BLENode{
		adapter:      "hci0",
		operation:    "scan",
		scanDuration: 10 * time.Second,
		timeout:      30 * time.Second,
	}
}

// Init initializes the BLE node
func (n *BLENode) Init(config map[string]interface{}) error {
	if adapter, ok := config["adapter"].(string); ok {
		n.adapter = adapter
	}
	if op, ok := config["operation"].(string); ok {
		n.operation = op
	}
	if addr, ok := config["deviceAddress"].(string); ok {
		n.deviceAddr = addr
	}
	if svc, ok := config["serviceUuid"].(string); ok {
		n.serviceUUID = svc
	}
	if char, ok := config["characteristicUuid"].(string); ok {
		n.charUUID = char
	}
	if dur, ok := config["scanDuration"].(float64); ok {
		n.scanDuration = time.Duration(dur) * time.Second
	}
	if timeout, ok := config["timeout"].(float64); ok {
		n.timeout = time.Duration(timeout) * time.Millisecond
	}

	return nil
}

// Execute performs BLE operation
func (n *BLENode) Execute(ctx context.Context, msg node.Message) (node.Message, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// Get parameters from message or config
	operation := n.operation
	deviceAddr := n.deviceAddr
	serviceUUID := n.serviceUUID
	charUUID := n.charUUID

	if op, ok := msg.Payload["operation"].(string); ok {
		operation = op
	}
	if addr, ok := msg.Payload["deviceAddress"].(string); ok {
		deviceAddr = addr
	}
	if svc, ok := msg.Payload["serviceUuid"].(string); ok {
		serviceUUID = svc
	}
	if char, ok := msg.Payload["characteristicUuid"].(string); ok {
		charUUID = char
	}

	var result interface{}
	var err error

	switch operation {
	case "scan":
		result, err = n.scanDevices(ctx)
	case "connect":
		err = n.connect(ctx, deviceAddr)
		result = map[string]interface{}{"connected": err == nil, "address": deviceAddr}
	case "disconnect":
		err = n.disconnect(ctx, deviceAddr)
		result = map[string]interface{}{"disconnected": err == nil, "address": deviceAddr}
	case "read":
		result, err = n.readCharacteristic(ctx, deviceAddr, serviceUUID, charUUID)
	case "write":
		value, _ := msg.Payload["value"].([]byte)
		if value == nil {
			if str, ok := msg.Payload["value"].(string); ok {
				value = []byte(str)
			}
		}
		err = n.writeCharacteristic(ctx, deviceAddr, serviceUUID, charUUID, value)
		result = map[string]interface{}{"success": err == nil, "address": deviceAddr}
	case "subscribe":
		err = n.subscribeCharacteristic(ctx, deviceAddr, serviceUUID, charUUID)
		result = map[string]interface{}{"subscribed": err == nil, "address": deviceAddr}
	case "discover_services":
		result, err = n.discoverServices(ctx, deviceAddr)
	case "discover_characteristics":
		result, err = n.discoverCharacteristics(ctx, deviceAddr, serviceUUID)
	default:
		err = fmt.Errorf("unknown operation: %s", operation)
	}

	if err != nil {
		return msg, err
	}

	msg.Payload["result"] = result
	msg.Payload["operation"] = operation
	msg.Payload["adapter"] = n.adapter

	return msg, nil
}

// scanDevices scans for BLE devices
func (n *BLENode) scanDevices(ctx context.Context) ([]BLEDevice, error) {
	// Note: In a full implementation, this would use a BLE library
	// like tinygo-org/bluetooth or go-ble/ble
	//
	// Example with go-ble/ble:
	// adapter, err := linux.NewDevice(n.adapter)
	// if err != nil {
	//     return nil, err
	// }
	// devices := []BLEDevice{}
	// ctx, cancel := context.WithTimeout(ctx, n.scanDuration)
	// defer cancel()
	//
	// ble.Scan(ctx, false, func(a ble.Advertisement) {
	//     devices = append(devices, BLEDevice{
	//         Address: a.Addr().String(),
	//         Name: a.LocalName(),
	//         RSSI: a.RSSI(),
	//         Connectable: a.Connectable(),
	//     })
	// }, nil)
	// return devices, nil

	return nil, fmt.Errorf("BLE scanning requires bluetooth library - not available on this platform")
}

// connect connects to a BLE device
func (n *BLENode) connect(ctx context.Context, address string) error {
	// Note: In full implementation:
	// client, err := ble.Dial(ctx, ble.NewAddr(address))
	// if err != nil {
	//     return err
	// }
	// n.client = client
	// n.connected = true
	// return nil

	return fmt.Errorf("BLE connection requires bluetooth library - not available on this platform")
}

// disconnect disconnects from a BLE device
func (n *BLENode) disconnect(ctx context.Context, address string) error {
	n.connected = false
	return nil
}

// readCharacteristic reads a BLE characteristic
func (n *BLENode) readCharacteristic(ctx context.Context, address, serviceUUID, charUUID string) ([]byte, error) {
	// Note: In full implementation:
	// p, err := n.client.DiscoverProfile(true)
	// for _, s := range p.Services {
	//     if s.UUID.String() == serviceUUID {
	//         for _, c := range s.Characteristics {
	//             if c.UUID.String() == charUUID {
	//                 return n.client.ReadCharacteristic(c)
	//             }
	//         }
	//     }
	// }

	return nil, fmt.Errorf("BLE read requires bluetooth library - not available on this platform")
}

// writeCharacteristic writes to a BLE characteristic
func (n *BLENode) writeCharacteristic(ctx context.Context, address, serviceUUID, charUUID string, value []byte) error {
	// Note: In full implementation would use the client to write

	return fmt.Errorf("BLE write requires bluetooth library - not available on this platform")
}

// subscribeCharacteristic subscribes to BLE notifications
func (n *BLENode) subscribeCharacteristic(ctx context.Context, address, serviceUUID, charUUID string) error {
	// Note: In full implementation would subscribe to notifications

	return fmt.Errorf("BLE subscribe requires bluetooth library - not available on this platform")
}

// discoverServices discovers services on a connected device
func (n *BLENode) discoverServices(ctx context.Context, address string) ([]string, error) {
	// Note: In full implementation would enumerate services

	return nil, fmt.Errorf("BLE service discovery requires bluetooth library - not available on this platform")
}

// discoverCharacteristics discovers characteristics of a service
func (n *BLENode) discoverCharacteristics(ctx context.Context, address, serviceUUID string) ([]BLECharacteristic, error) {
	// Note: In full implementation would enumerate characteristics

	return nil, fmt.Errorf("BLE characteristic discovery requires bluetooth library - not available on this platform")
}

// Cleanup releases BLE resources
func (n *BLENode) Cleanup() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.connected = false
	return nil
}

// NewBLEExecutor creates a new BLE executor
func NewBLEExecutor() node.Executor {
	return NewBLENode()
}
