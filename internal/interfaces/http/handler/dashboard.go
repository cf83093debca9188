package handler

import (
	reportapp "github.com/bizledger/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// DashboardHandler handles dashboard-related API endpoints
type DashboardHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *reportapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

var dashboardFilters = listFilters{bools: []string{"isDefault", "isSystemDashboard"}}

// List godoc
// @ID           listDashboards
// @Summary      List dashboards
// @Tags         dashboards
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        search query string false "Search name and description"
// @Param        isDefault query bool false "Default dashboards only"
// @Param        isSystemDashboard query bool false "System dashboards only"
// @Param        sort query string false "Sort key" Enums(name, createdAt)
// @Param        order query string false "Sort order" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]reportapp.DashboardResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /dashboards [get]
func (h *DashboardHandler) List(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c, dashboardFilters)
	if !ok {
		return
	}

	page, err := h.dashboardService.List(c.Request.Context(), session.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Get godoc
// @ID           getDashboard
// @Summary      Get a dashboard
// @Tags         dashboards
// @Produce      json
// @Param        id path string true "Dashboard ID" format(uuid)
// @Success      200 {object} dto.Response{data=reportapp.DashboardResponse}
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /dashboards/{id} [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.GetByID(c.Request.Context(), session.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// Create godoc
// @ID           createDashboard
// @Summary      Create a dashboard
// @Tags         dashboards
// @Accept       json
// @Produce      json
// @Param        request body reportapp.CreateDashboardRequest true "Dashboard"
// @Success      201 {object} dto.Response{data=reportapp.DashboardResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /dashboards [post]
func (h *DashboardHandler) Create(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req reportapp.CreateDashboardRequest
	if !h.bindJSON(c, &req) {
		return
	}

	dashboard, err := h.dashboardService.Create(c.Request.Context(), session.TenantID, session.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dashboard)
}

// Update godoc
// @ID           updateDashboard
// @Summary      Update a dashboard
// @Description  A widgets list replaces every widget of the dashboard
// @Tags         dashboards
// @Accept       json
// @Produce      json
// @Param        id path string true "Dashboard ID" format(uuid)
// @Param        request body reportapp.UpdateDashboardRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=reportapp.DashboardResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /dashboards/{id} [put]
func (h *DashboardHandler) Update(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req reportapp.UpdateDashboardRequest
	if !h.bindJSON(c, &req) {
		return
	}

	dashboard, err := h.dashboardService.Update(c.Request.Context(), session.TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// Delete godoc
// @ID           deleteDashboard
// @Summary      Delete a dashboard
// @Description  System dashboards cannot be deleted
// @Tags         dashboards
// @Param        id path string true "Dashboard ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /dashboards/{id} [delete]
func (h *DashboardHandler) Delete(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.dashboardService.Delete(c.Request.Context(), session.TenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
