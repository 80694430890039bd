package api

import (
	"github.com/EdgxCloud/EdgeFlow/internal/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App) {
	// API v1 group
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", healthCheck)

	// Module routes
	moduleAPI, err := NewModuleAPI("./modules")
	if err != nil {
		logger.Warn("Failed to initialize module API", zap.Error(err))
	} else {
		SetupModuleRoutes(app, moduleAPI)
	}

	// Flow routes
	flowRoutes := api.Group("/flows")
	flowRoutes.Get("/", listFlows)
	flowRoutes.Post("/", createFlow)
	flowRoutes.Get("/:id", getFlow)
	flowRoutes.Put("/:id", updateFlow)
	flowRoutes.Delete("/:id", deleteFlow)
	flowRoutes.Post("/:id/start", startFlow)
	flowRoutes.Post("/:id/stop", stopFlow)

	// Node routes
	nodeRoutes := api.Group("/flows/:flowId/nodes")
	nodeRoutes.Get("/", listNodes)
	nodeRoutes.Post("/", addNode)
	nodeRoutes.Get("/:nodeId", getNode)
	nodeRoutes.Put("/:nodeId", updateNode)
	nodeRoutes.Delete("/:nodeId", deleteNode)

	// Connection routes
	connRoutes := api.Group("/flows/:flowId/connections")
	connRoutes.Get("/", listConnections)
	connRoutes.Post("/", createConnection)
	connRoutes.Delete("/:connId", deleteConnection)

	// Node types catalog
	api.Get("/node-types", listNodeTypes)
	api.Get("/node-types/:type", getNodeType)

	// WebSocket for real-time updates
	api.Get("/ws", handleWebSocket)
}

// healthCheck returns the service health status
func healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "edgeflow",
	})
}

// Flow handlers
func listFlows(c *fiber.Ctx) error {
	// TODO: Implement flow listing
	return c.JSON(fiber.Map{
		"flows": []interface{}{},
	})
}

func createFlow(c *fiber.Ctx) error {
	// TODO: Implement flow creation
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Flow created",
	})
}

func getFlow(c *fiber.Ctx) error {
	id := c.Params("id")
	// TODO: Implement get flow
	return c.JSON(fiber.Map{
		"id": id,
	})
}

func updateFlow(c *fiber.Ctx) error {
	id := c.Params("id")
	// TODO: Implement update flow
	return c.JSON(fiber.Map{
		"id":      id,
		"message": "Flow updated",
	})
}

func deleteFlow(c *fiber.Ctx) error {
	id := c.Params("id")
	// TODO: Implement delete flow
	return c.JSON(fiber.Map{
		"id":      id,
		"message": "Flow deleted",
	})
}

func startFlow(c *fiber.Ctx) error {
	id := c.Params("id")
	// TODO: Implement start flow
	return c.JSON(fiber.Map{
		"id":      id,
		"message": "Flow started",
	})
}

func stopFlow(c *fiber.Ctx) error {
	id := c.Params("id")
	// TODO: Implement stop flow
	return c.JSON(fiber.Map{
		"id":      id,
		"message": "Flow stopped",
	})
}

// Node handlers
func listNodes(c *fiber.Ctx) error {
	flowId := c.Params("flowId")
	// TODO: Implement list nodes
	return c.JSON(fiber.Map{
		"flow_id": flowId,
		"nodes":   []interface{}{},
	})
}

func addNode(c *fiber.Ctx) error {
	flowId := c.Params("flowId")
	// TODO: Implement add node
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"flow_id": flowId,
		"message": "Node added",
	})
}

func getNode(c *fiber.Ctx) error {
	flowId := c.Params("flowId")
	nodeId := c.Params("nodeId")
	// TODO: Implement get node
	return c.JSON(fiber.Map{
		"flow_id": flowId,
		"node_id": nodeId,
	})
}

func updateNode(c *fiber.Ctx) error {
	flowId := c.Params("flowId")
	nodeId := c.Params("nodeId")
	// TODO: Implement update node
	return c.JSON(fiber.Map{
		"flow_id": flowId,
		"node_id": nodeId,
		"message": "Node updated",
	})
}

func deleteNode(c *fiber.Ctx) error {
	flowId := c.Params("flowId")
	nodeId := c.Params("nodeId")
	// TODO: Implement delete node
	return c.JSON(fiber.Map{
		"flow_id": flowId,
		"node_id": nodeId,
		"message": "Node deleted",
	})
}

// Connection handlers
func listConnections(c *fiber.Ctx) error {
	flowId := c.Params("flowId")
	// TODO: Implement list connections
	return c.JSON(fiber.Map{
		"flow_id":     flowId,
		"connections": []interface{}{},
	})
}

func createConnection(c *fiber.Ctx) error {
	flowId := c.Params("flowId")
	// TODO: Implement create connection
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"flow_id": flowId,
		"message": "Connection created",
	})
}

func deleteConnection(c *fiber.Ctx) error {
	flowId := c.Params("flowId")
	connId := c.Params("connId")
	// TODO: Implement delete connection
	return c.JSON(fiber.Map{
		"flow_id":       flowId,
		"connection_id": connId,
		"message":       "Connection deleted",
	})
}

// Node type handlers
func listNodeTypes(c *fiber.Ctx) error {
	// TODO: Implement list node types
	return c.JSON(fiber.Map{
		"node_types": []interface{}{},
	})
}

func getNodeType(c *fiber.Ctx) error {
	nodeType := c.Params("type")
	// TODO: Implement get node type
	return c.JSON(fiber.Map{
		"type": nodeType,
	})
}

// WebSocket handler
func handleWebSocket(c *fiber.Ctx) error {
	// TODO: Implement WebSocket handler
	return c.SendString("WebSocket endpoint")
}
