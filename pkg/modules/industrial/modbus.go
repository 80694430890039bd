package industrial

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/EdgxCloud/EdgeFlow/internal/node"
)

// ModbusReadConfig configuration for Modbus Read node
type ModbusReadConfig struct {
	Host        string `json:"host"`        // TCP host or empty for RTU
	Port        int    `json:"port"`        // TCP port (502)
	SerialPort  string `json:"serialPort"`  // RTU serial port
	BaudRate    int    `json:"baudRate"`    // RTU baud rate
	SlaveID     int    `json:"slaveId"`     // Modbus slave ID
	Function    string `json:"function"`    // coils, discrete, holding, input
	Address     int    `json:"address"`     // Starting address
	Quantity    int    `json:"quantity"`    // Number of registers/coils
	Timeout     int    `json:"timeout"`     // Timeout in seconds
}

// ModbusReadExecutor implements Modbus read operations
type ModbusReadExecutor struct {
	config ModbusReadConfig
}

// Init initializes the executor with configuration
func (e *ModbusReadExecutor) Init(config map[string]interface{}) error {
	return nil // Already configured in constructor
}

// NewModbusReadExecutor creates a new Modbus read executor
func NewModbusReadExecutor(config map[string]interface{}) (node.Executor, error) {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var modbusConfig ModbusReadConfig
	if err := json.Unmarshal(configJSON, &modbusConfig); err != nil {
		return nil, fmt.Errorf("invalid modbus config: %w", err)
	}

	// Validate configuration
	if modbusConfig.Host == "" && modbusConfig.SerialPort == "" {
		return nil, fmt.Errorf("either host (TCP) or serialPort (RTU) is required")
	}

	// Defaults
	if modbusConfig.Port == 0 {
		modbusConfig.Port = 502
	}
	if modbusConfig.SlaveID == 0 {
		modbusConfig.SlaveID = 1
	}
	if modbusConfig.Function == "" {
		modbusConfig.Function = "holding"
	}
	if modbusConfig.Quantity == 0 {
		modbusConfig.Quantity = 1
	}
	if modbusConfig.Timeout == 0 {
		modbusConfig.Timeout = 5
	}

	return &ModbusReadExecutor{
		config: modbusConfig,
	}, nil
}

// Execute performs the Modbus read operation
func (e *ModbusReadExecutor) Execute(ctx context.Context, msg node.Message) (node.Message, error) {
	// This is a placeholder implementation
	// A full implementation would use a Modbus library like github.com/simonvetter/modbus

	// For now, return a mock response
	return node.Message{
		Payload: map[string]interface{}{
			"status":   "not_implemented",
			"message":  "Modbus read requires goburrow/modbus or similar library",
			"config": map[string]interface{}{
				"host":     e.config.Host,
				"port":     e.config.Port,
				"slaveId":  e.config.SlaveID,
				"function": e.config.Function,
				"address":  e.config.Address,
				"quantity": e.config.Quantity,
			},
		},
	}, nil
}

// Cleanup cleans up resources
func (e *ModbusReadExecutor) Cleanup() error {
	return nil
}

// ModbusWriteConfig configuration for Modbus Write node
type ModbusWriteConfig struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	SerialPort  string `json:"serialPort"`
	BaudRate    int    `json:"baudRate"`
	SlaveID     int    `json:"slaveId"`
	Function    string `json:"function"`    // coils, holding
	Address     int    `json:"address"`
	Timeout     int    `json:"timeout"`
}

// ModbusWriteExecutor implements Modbus write operations
type ModbusWriteExecutor struct {
	config ModbusWriteConfig
}

// Init initializes the executor with configuration
func (e *ModbusWriteExecutor) Init(config map[string]interface{}) error {
	return nil // Already configured in constructor
}

// NewModbusWriteExecutor creates a new Modbus write executor
func NewModbusWriteExecutor(config map[string]interface{}) (node.Executor, error) {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var modbusConfig ModbusWriteConfig
	if err := json.Unmarshal(configJSON, &modbusConfig); err != nil {
		return nil, fmt.Errorf("invalid modbus config: %w", err)
	}

	// Validate
	if modbusConfig.Host == "" && modbusConfig.SerialPort == "" {
		return nil, fmt.Errorf("either host (TCP) or serialPort (RTU) is required")
	}

	// Defaults
	if modbusConfig.Port == 0 {
		modbusConfig.Port = 502
	}
	if modbusConfig.SlaveID == 0 {
		modbusConfig.SlaveID = 1
	}
	if modbusConfig.Function == "" {
		modbusConfig.Function = "holding"
	}
	if modbusConfig.Timeout == 0 {
		modbusConfig.Timeout = 5
	}

	return &ModbusWriteExecutor{
		config: modbusConfig,
	}, nil
}

// Execute performs the Modbus write operation
func (e *ModbusWriteExecutor) Execute(ctx context.Context, msg node.Message) (node.Message, error) {
	// Placeholder implementation
	return node.Message{
		Payload: map[string]interface{}{
			"status":  "not_implemented",
			"message": "Modbus write requires goburrow/modbus or similar library",
			"config": map[string]interface{}{
				"host":     e.config.Host,
				"port":     e.config.Port,
				"slaveId":  e.config.SlaveID,
				"function": e.config.Function,
				"address":  e.config.Address,
			},
		},
	}, nil
}

// Cleanup cleans up resources
func (e *ModbusWriteExecutor) Cleanup() error {
	return nil
}
