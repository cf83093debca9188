package handler

import (
	inventoryapp "github.com/bizledger/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// InventoryHandler exposes the inventory ledger
type InventoryHandler struct {
	BaseHandler
	ledger *inventoryapp.LedgerService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledger *inventoryapp.LedgerService) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

var inventoryFilters = listFilters{
	strings: []string{"batchNumber"},
	ids:     []string{"productId", "locationId"},
	ranges:  []string{"quantity"},
}

// List godoc
// @ID           listInventory
// @Summary      List inventory records
// @Tags         inventory
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        productId query string false "Product ID" format(uuid)
// @Param        locationId query string false "Location ID" format(uuid)
// @Param        batchNumber query string false "Batch number"
// @Param        quantityMin query number false "Minimum quantity"
// @Param        quantityMax query number false "Maximum quantity"
// @Success      200 {object} dto.Response{data=[]inventoryapp.InventoryRecordResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c, inventoryFilters)
	if !ok {
		return
	}

	page, err := h.ledger.List(c.Request.Context(), session.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Get godoc
// @ID           getInventoryRecord
// @Summary      Get an inventory record
// @Tags         inventory
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.InventoryRecordResponse}
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	record, err := h.ledger.GetByID(c.Request.Context(), session.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Add godoc
// @ID           addInventory
// @Summary      Add stock
// @Description  Adds to the slot identified by product, location and batch, creating it when absent
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.AddInput true "Stock to add"
// @Success      200 {object} dto.Response{data=inventoryapp.InventoryRecordResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/add [post]
func (h *InventoryHandler) Add(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var in inventoryapp.AddInput
	if !h.bindJSON(c, &in) {
		return
	}

	record, err := h.ledger.Add(c.Request.Context(), session.TenantID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Remove godoc
// @ID           removeInventory
// @Summary      Remove stock
// @Description  A slot brought to zero is deleted and reported as depleted
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.RemoveInput true "Stock to remove"
// @Success      200 {object} dto.Response{data=inventoryapp.RemoveResult}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/remove [post]
func (h *InventoryHandler) Remove(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var in inventoryapp.RemoveInput
	if !h.bindJSON(c, &in) {
		return
	}

	result, err := h.ledger.Remove(c.Request.Context(), session.TenantID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Transfer godoc
// @ID           transferInventory
// @Summary      Transfer stock
// @Description  Moves stock of one product between two slots in one transaction
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.TransferInput true "Transfer"
// @Success      200 {object} dto.Response{data=inventoryapp.TransferResult}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var in inventoryapp.TransferInput
	if !h.bindJSON(c, &in) {
		return
	}

	result, err := h.ledger.Transfer(c.Request.Context(), session.TenantID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
