package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/minimart/backend/internal/application/inventory"
)

// InventoryHandler handles stock ledger API endpoints
type InventoryHandler struct {
	BaseHandler
	ledgerService *inventoryapp.LedgerService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledgerService *inventoryapp.LedgerService) *InventoryHandler {
	return &InventoryHandler{
		ledgerService: ledgerService,
	}
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inventory := rg.Group("/inventory")
	{
		inventory.POST("/adjustments", h.Adjust)
		inventory.GET("/movements/:id", h.GetMovement)
		inventory.POST("/movements/:id/reverse", h.ReverseMovement)
		inventory.GET("/products/:productId/movements", h.ListMovements)
		inventory.GET("/products/:productId/consistency", h.CheckConsistency)
	}
}

// Adjust appends a manual stock adjustment
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movement, err := h.ledgerService.AppendAdjustment(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, movement)
}

// GetMovement retrieves a single ledger entry
func (h *InventoryHandler) GetMovement(c *gin.Context) {
	movementID, ok := h.parseParam(c, "id", "Invalid movement ID format")
	if !ok {
		return
	}

	movement, err := h.ledgerService.GetMovement(c.Request.Context(), movementID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// ReverseMovement appends an offsetting adjustment undoing a previous movement
func (h *InventoryHandler) ReverseMovement(c *gin.Context) {
	movementID, ok := h.parseParam(c, "id", "Invalid movement ID format")
	if !ok {
		return
	}

	var req inventoryapp.ReverseMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	movement, err := h.ledgerService.ReverseMovement(c.Request.Context(), movementID, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, movement)
}

// ListMovements lists a product's movement history, oldest first
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	productID, ok := h.parseParam(c, "productId", "Invalid product ID format")
	if !ok {
		return
	}

	var query inventoryapp.MovementListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.ledgerService.ListMovements(c.Request.Context(), productID, &query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// CheckConsistency reconciles a product's cached stock against its ledger
func (h *InventoryHandler) CheckConsistency(c *gin.Context) {
	productID, ok := h.parseParam(c, "productId", "Invalid product ID format")
	if !ok {
		return
	}

	result, err := h.ledgerService.CheckConsistency(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

func (h *InventoryHandler) parseParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}
