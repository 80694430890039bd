package industrial

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/EdgxCloud/EdgeFlow/internal/node"
)

// OPCUANode implements OPC-UA client for industrial automation
type OPCUANode struct {
	endpoint     string
	securityMode string // none, sign, signandencrypt
	securityPolicy string // none, basic128rsa15, basic256, basic256sha256
	username     string
	password     string
	certificate  string
	privateKey   string
	operation    string // read, write, browse, subscribe
	nodeID       string
	timeout      time.Duration
	mu           sync.Mutex
	connected    bool
}

// OPCUANodeValue represents a value from OPC-UA
type OPCUANodeValue struct {
	NodeID      string      `json:"nodeId"`
	Value       interface{} `json:"value"`
	DataType    string      `json:"dataType"`
	StatusCode  uint32      `json:"statusCode"`
	SourceTime  time.Time   `json:"sourceTime"`
	ServerTime  time.Time   `json:"serverTime"`
}

// NewOPCUANode creates a new OPC-UA node
func NewOPCUANode() *OPCUANode {
	return &OPCUANode{
		endpoint:       "opc.tcp://localhost:4840",
		securityMode:   "none",
		securityPolicy: "none",
		operation:      "read",
		timeout:        10 * time.Second,
	}
}

// Init initializes the OPC-UA node
func (n *OPCUANode) Init(config map[string]interface{}) error {
	if endpoint, ok := config["endpoint"].(string); ok {
		n.endpoint = endpoint
	}
	if mode, ok := config["securityMode"].(string); ok {
		n.securityMode = mode
	}
	if policy, ok := config["securityPolicy"].(string); ok {
		n.securityPolicy = policy
	}
	if user, ok := config["username"].(string); ok {
		n.username = user
	}
	if pass, ok := config["password"].(string); ok {
		n.password = pass
	}
	if cert, ok := config["certificate"].(string); ok {
		n.certificate = cert
	}
	if key, ok := config["privateKey"].(string); ok {
		n.privateKey = key
	}
	if op, ok := config["operation"].(string); ok {
		n.operation = op
	}
	if nodeID, ok := config["nodeId"].(string); ok {
		n.nodeID = nodeID
	}
	if timeout, ok := config["timeout"].(float64); ok {
		n.timeout = time.Duration(timeout) * time.Millisecond
	}

	return nil
}

// Execute performs OPC-UA operation
func (n *OPCUANode) Execute(ctx context.Context, msg node.Message) (node.Message, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// Get parameters from message or config
	operation := n.operation
	nodeID := n.nodeID

	if op, ok := msg.Payload["operation"].(string); ok {
		operation = op
	}
	if nid, ok := msg.Payload["nodeId"].(string); ok {
		nodeID = nid
	}

	// Connect if not connected
	if !n.connected {
		if err := n.connect(ctx); err != nil {
			return msg, fmt.Errorf("connection failed: %w", err)
		}
	}

	var result interface{}
	var err error

	switch operation {
	case "read":
		result, err = n.readNode(ctx, nodeID)
	case "write":
		value := msg.Payload["value"]
		dataType := "auto"
		if dt, ok := msg.Payload["dataType"].(string); ok {
			dataType = dt
		}
		err = n.writeNode(ctx, nodeID, value, dataType)
		result = map[string]interface{}{"success": err == nil, "nodeId": nodeID}
	case "browse":
		result, err = n.browseNodes(ctx, nodeID)
	case "read_multiple":
		nodeIDs, ok := msg.Payload["nodeIds"].([]interface{})
		if !ok {
			err = fmt.Errorf("nodeIds array required for read_multiple")
		} else {
			var ids []string
			for _, id := range nodeIDs {
				if s, ok := id.(string); ok {
					ids = append(ids, s)
				}
			}
			result, err = n.readMultipleNodes(ctx, ids)
		}
	case "write_multiple":
		nodes, ok := msg.Payload["nodes"].([]interface{})
		if !ok {
			err = fmt.Errorf("nodes array required for write_multiple")
		} else {
			err = n.writeMultipleNodes(ctx, nodes)
			result = map[string]interface{}{"success": err == nil, "count": len(nodes)}
		}
	case "get_endpoints":
		result, err = n.getEndpoints(ctx)
	case "get_namespace":
		result, err = n.getNamespaceArray(ctx)
	default:
		err = fmt.Errorf("unknown operation: %s", operation)
	}

	if err != nil {
		n.disconnect()
		return msg, err
	}

	msg.Payload["result"] = result
	msg.Payload["operation"] = operation
	msg.Payload["nodeId"] = nodeID
	msg.Payload["endpoint"] = n.endpoint

	return msg, nil
}

// connect establishes OPC-UA connection
func (n *OPCUANode) connect(ctx context.Context) error {
	// Note: In a full implementation, this would use an OPC-UA library
	// like gopcua/opcua to establish the connection
	//
	// Example with gopcua:
	// opts := []opcua.Option{
	//     opcua.SecurityMode(ua.MessageSecurityModeNone),
	//     opcua.SecurityPolicy(ua.SecurityPolicyURINone),
	// }
	// if n.username != "" {
	//     opts = append(opts, opcua.AuthUsername(n.username, n.password))
	// }
	// client := opcua.NewClient(n.endpoint, opts...)
	// if err := client.Connect(ctx); err != nil {
	//     return err
	// }
	// n.client = client

	n.connected = true
	return nil
}

// disconnect closes OPC-UA connection
func (n *OPCUANode) disconnect() {
	n.connected = false
}

// readNode reads a single node value
func (n *OPCUANode) readNode(ctx context.Context, nodeID string) (*OPCUANodeValue, error) {
	// Placeholder - in full implementation would use OPC-UA client
	// Example with gopcua:
	// id, err := ua.ParseNodeID(nodeID)
	// if err != nil {
	//     return nil, err
	// }
	// req := &ua.ReadRequest{
	//     NodesToRead: []*ua.ReadValueID{{NodeID: id, AttributeID: ua.AttributeIDValue}},
	// }
	// resp, err := n.client.Read(req)
	// if err != nil {
	//     return nil, err
	// }

	return &OPCUANodeValue{
		NodeID:     nodeID,
		Value:      nil,
		DataType:   "unknown",
		StatusCode: 0,
		SourceTime: time.Now(),
		ServerTime: time.Now(),
	}, fmt.Errorf("OPC-UA client not fully implemented - requires gopcua dependency")
}

// writeNode writes a value to a node
func (n *OPCUANode) writeNode(ctx context.Context, nodeID string, value interface{}, dataType string) error {
	// Placeholder - in full implementation would use OPC-UA client
	// Example with gopcua:
	// id, err := ua.ParseNodeID(nodeID)
	// if err != nil {
	//     return err
	// }
	// v, err := ua.NewVariant(value)
	// if err != nil {
	//     return err
	// }
	// req := &ua.WriteRequest{
	//     NodesToWrite: []*ua.WriteValue{{NodeID: id, AttributeID: ua.AttributeIDValue, Value: v}},
	// }
	// _, err = n.client.Write(req)
	// return err

	return fmt.Errorf("OPC-UA client not fully implemented - requires gopcua dependency")
}

// browseNodes browses child nodes
func (n *OPCUANode) browseNodes(ctx context.Context, nodeID string) ([]map[string]interface{}, error) {
	// Placeholder - in full implementation would browse the node tree
	// Example with gopcua:
	// id, err := ua.ParseNodeID(nodeID)
	// if err != nil {
	//     return nil, err
	// }
	// req := &ua.BrowseRequest{
	//     NodesToBrowse: []*ua.BrowseDescription{{NodeID: id, BrowseDirection: ua.BrowseDirectionForward}},
	// }
	// resp, err := n.client.Browse(req)

	return nil, fmt.Errorf("OPC-UA client not fully implemented - requires gopcua dependency")
}

// readMultipleNodes reads multiple nodes
func (n *OPCUANode) readMultipleNodes(ctx context.Context, nodeIDs []string) ([]*OPCUANodeValue, error) {
	results := make([]*OPCUANodeValue, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		val, err := n.readNode(ctx, nodeID)
		if err != nil {
			return nil, err
		}
		results = append(results, val)
	}
	return results, nil
}

// writeMultipleNodes writes multiple nodes
func (n *OPCUANode) writeMultipleNodes(ctx context.Context, nodes []interface{}) error {
	for _, nodeData := range nodes {
		if nd, ok := nodeData.(map[string]interface{}); ok {
			nodeID, _ := nd["nodeId"].(string)
			value := nd["value"]
			dataType, _ := nd["dataType"].(string)
			if err := n.writeNode(ctx, nodeID, value, dataType); err != nil {
				return err
			}
		}
	}
	return nil
}

// getEndpoints returns available endpoints
func (n *OPCUANode) getEndpoints(ctx context.Context) ([]map[string]interface{}, error) {
	// Placeholder - in full implementation would get server endpoints
	// Example with gopcua:
	// endpoints, err := opcua.GetEndpoints(n.endpoint)

	return nil, fmt.Errorf("OPC-UA client not fully implemented - requires gopcua dependency")
}

// getNamespaceArray returns namespace array
func (n *OPCUANode) getNamespaceArray(ctx context.Context) ([]string, error) {
	// Placeholder - in full implementation would read namespace array
	return nil, fmt.Errorf("OPC-UA client not fully implemented - requires gopcua dependency")
}

// Cleanup closes OPC-UA connection
func (n *OPCUANode) Cleanup() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.disconnect()
	return nil
}

// NewOPCUAExecutor creates a new OPC-UA executor
func NewOPCUAExecutor() node.Executor {
	return NewOPCUANode()
}
