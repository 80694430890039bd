package industrial

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/EdgxCloud/EdgeFlow/internal/node"
)

// OPCUAReadConfig configuration for OPC-UA Read node
type OPCUAReadConfig struct {
	Endpoint   string   `json:"endpoint"`   // OPC-UA server endpoint
	NodeIDs    []string `json:"nodeIds"`    // Node IDs to read
	Security   string   `json:"security"`   // Security mode: none, sign, signAndEncrypt
	Username   string   `json:"username"`   // Username for authentication
	Password   string   `json:"password"`   // Password for authentication
	Timeout    int      `json:"timeout"`    // Connection timeout in seconds
}

// OPCUAReadExecutor implements OPC-UA read operations
type OPCUAReadExecutor struct {
	config OPCUAReadConfig
}

// Init initializes the executor with configuration
func (e *OPCUAReadExecutor) Init(config map[string]interface{}) error {
	return nil // Already configured in constructor
}

// NewOPCUAReadExecutor creates a new OPC-UA read executor
func NewOPCUAReadExecutor(config map[string]interface{}) (node.Executor, error) {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var opcuaConfig OPCUAReadConfig
	if err := json.Unmarshal(configJSON, &opcuaConfig); err != nil {
		return nil, fmt.Errorf("invalid opcua config: %w", err)
	}

	// Validate
	if opcuaConfig.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	// Defaults
	if opcuaConfig.Security == "" {
		opcuaConfig.Security = "none"
	}
	if opcuaConfig.Timeout == 0 {
		opcuaConfig.Timeout = 10
	}

	return &OPCUAReadExecutor{
		config: opcuaConfig,
	}, nil
}

// Execute performs the OPC-UA read operation
func (e *OPCUAReadExecutor) Execute(ctx context.Context, msg node.Message) (node.Message, error) {
	// Get node IDs from message or config
	nodeIDs := e.config.NodeIDs
	if ids, ok := msg.Payload["nodeIds"].([]interface{}); ok {
		nodeIDs = make([]string, len(ids))
		for i, id := range ids {
			nodeIDs[i] = fmt.Sprintf("%v", id)
		}
	}

	// Placeholder implementation
	// A full implementation would use github.com/gopcua/opcua
	return node.Message{
		Payload: map[string]interface{}{
			"status":   "not_implemented",
			"message":  "OPC-UA read requires gopcua/opcua library",
			"config": map[string]interface{}{
				"endpoint": e.config.Endpoint,
				"nodeIds":  nodeIDs,
				"security": e.config.Security,
			},
		},
	}, nil
}

// Cleanup cleans up resources
func (e *OPCUAReadExecutor) Cleanup() error {
	return nil
}

// OPCUAWriteConfig configuration for OPC-UA Write node
type OPCUAWriteConfig struct {
	Endpoint   string `json:"endpoint"`
	NodeID     string `json:"nodeId"`     // Single node ID to write
	Security   string `json:"security"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Timeout    int    `json:"timeout"`
}

// OPCUAWriteExecutor implements OPC-UA write operations
type OPCUAWriteExecutor struct {
	config OPCUAWriteConfig
}

// Init initializes the executor with configuration
func (e *OPCUAWriteExecutor) Init(config map[string]interface{}) error {
	return nil // Already configured in constructor
}

// NewOPCUAWriteExecutor creates a new OPC-UA write executor
func NewOPCUAWriteExecutor(config map[string]interface{}) (node.Executor, error) {
	configJSON, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var opcuaConfig OPCUAWriteConfig
	if err := json.Unmarshal(configJSON, &opcuaConfig); err != nil {
		return nil, fmt.Errorf("invalid opcua config: %w", err)
	}

	// Validate
	if opcuaConfig.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	// Defaults
	if opcuaConfig.Security == "" {
		opcuaConfig.Security = "none"
	}
	if opcuaConfig.Timeout == 0 {
		opcuaConfig.Timeout = 10
	}

	return &OPCUAWriteExecutor{
		config: opcuaConfig,
	}, nil
}

// Execute performs the OPC-UA write operation
func (e *OPCUAWriteExecutor) Execute(ctx context.Context, msg node.Message) (node.Message, error) {
	// Get node ID and value from message
	nodeID := e.config.NodeID
	var value interface{}

	if id, ok := msg.Payload["nodeId"].(string); ok {
		nodeID = id
	}
	value = msg.Payload["value"]

	if nodeID == "" {
		return node.Message{}, fmt.Errorf("nodeId is required")
	}

	// Placeholder implementation
	return node.Message{
		Payload: map[string]interface{}{
			"status":  "not_implemented",
			"message": "OPC-UA write requires gopcua/opcua library",
			"config": map[string]interface{}{
				"endpoint": e.config.Endpoint,
				"nodeId":   nodeID,
				"value":    value,
				"security": e.config.Security,
			},
		},
	}, nil
}

// Cleanup cleans up resources
func (e *OPCUAWriteExecutor) Cleanup() error {
	return nil
}
