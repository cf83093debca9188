package handler

import (
	tradeapp "github.com/bizledger/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// SaleHandler handles sales and their payments
type SaleHandler struct {
	BaseHandler
	saleService *tradeapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *tradeapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

var saleFilters = listFilters{
	strings: []string{"status", "paymentStatus"},
	ids:     []string{"customerId", "createdBy"},
	ranges:  []string{"total"},
	from:    []string{"dateFrom"},
	to:      []string{"dateTo"},
}

// List godoc
// @ID           listSales
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        search query string false "Search invoice number and notes"
// @Param        customerId query string false "Customer ID" format(uuid)
// @Param        status query string false "Status" Enums(DRAFT, COMPLETED, CANCELLED)
// @Param        paymentStatus query string false "Payment status" Enums(PENDING, PARTIAL, PAID)
// @Param        dateFrom query string false "Earliest sale date (YYYY-MM-DD or RFC 3339)"
// @Param        dateTo query string false "Latest sale date (YYYY-MM-DD or RFC 3339)"
// @Param        totalMin query number false "Minimum total"
// @Param        totalMax query number false "Maximum total"
// @Param        sort query string false "Sort key"
// @Param        order query string false "Sort order" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]tradeapp.SaleResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c, saleFilters)
	if !ok {
		return
	}

	page, err := h.saleService.ListSales(c.Request.Context(), session.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Get godoc
// @ID           getSale
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.SaleResponse}
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SaleHandler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), session.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Create godoc
// @ID           createSale
// @Summary      Record a sale
// @Description  Validates every line, assigns the next invoice number and draws stock when a line names a location, all in one transaction
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateSaleInput true "Sale"
// @Success      201 {object} dto.Response{data=tradeapp.SaleResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var in tradeapp.CreateSaleInput
	if !h.bindJSON(c, &in) {
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), session.TenantID, session.UserID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// Update godoc
// @ID           updateSale
// @Summary      Update a sale
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body tradeapp.UpdateSaleInput true "Fields to change"
// @Success      200 {object} dto.Response{data=tradeapp.SaleResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [put]
func (h *SaleHandler) Update(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var in tradeapp.UpdateSaleInput
	if !h.bindJSON(c, &in) {
		return
	}

	sale, err := h.saleService.UpdateSale(c.Request.Context(), session.TenantID, id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// Delete godoc
// @ID           deleteSale
// @Summary      Delete a sale
// @Tags         sales
// @Param        id path string true "Sale ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [delete]
func (h *SaleHandler) Delete(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.saleService.DeleteSale(c.Request.Context(), session.TenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListPayments godoc
// @ID           listSalePayments
// @Summary      List payments of a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]tradeapp.PaymentResponse}
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id}/payments [get]
func (h *SaleHandler) ListPayments(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	payments, err := h.saleService.ListPayments(c.Request.Context(), session.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// RecordPayment godoc
// @ID           recordSalePayment
// @Summary      Record a payment
// @Description  The sale's payment status is derived from the paid total
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Param        request body tradeapp.RecordPaymentInput true "Payment"
// @Success      201 {object} dto.Response{data=tradeapp.PaymentReceipt}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id}/payments [post]
func (h *SaleHandler) RecordPayment(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var in tradeapp.RecordPaymentInput
	if !h.bindJSON(c, &in) {
		return
	}

	receipt, err := h.saleService.RecordPayment(c.Request.Context(), session.TenantID, id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}
