package handler

import (
	inventoryapp "github.com/bizledger/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// LocationHandler handles location-related API endpoints
type LocationHandler struct {
	BaseHandler
	locationService *inventoryapp.LocationService
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locationService *inventoryapp.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

var locationFilters = listFilters{bools: []string{"isActive"}}

// List godoc
// @ID           listLocations
// @Summary      List locations
// @Tags         locations
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        search query string false "Search code, name and address"
// @Param        isActive query bool false "Active flag"
// @Param        sort query string false "Sort key" Enums(code, name, createdAt)
// @Param        order query string false "Sort order" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]inventoryapp.LocationResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /locations [get]
func (h *LocationHandler) List(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c, locationFilters)
	if !ok {
		return
	}

	page, err := h.locationService.List(c.Request.Context(), session.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Get godoc
// @ID           getLocation
// @Summary      Get a location
// @Tags         locations
// @Produce      json
// @Param        id path string true "Location ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.LocationResponse}
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /locations/{id} [get]
func (h *LocationHandler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	location, err := h.locationService.GetByID(c.Request.Context(), session.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, location)
}

// Create godoc
// @ID           createLocation
// @Summary      Create a location
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateLocationRequest true "Location"
// @Success      201 {object} dto.Response{data=inventoryapp.LocationResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /locations [post]
func (h *LocationHandler) Create(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req inventoryapp.CreateLocationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	location, err := h.locationService.Create(c.Request.Context(), session.TenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, location)
}

// Update godoc
// @ID           updateLocation
// @Summary      Update a location
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        id path string true "Location ID" format(uuid)
// @Param        request body inventoryapp.UpdateLocationRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=inventoryapp.LocationResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /locations/{id} [put]
func (h *LocationHandler) Update(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdateLocationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	location, err := h.locationService.Update(c.Request.Context(), session.TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, location)
}

// Delete godoc
// @ID           deleteLocation
// @Summary      Delete a location
// @Description  Locations holding stock cannot be deleted; details.inventoryCount reports how many records
// @Tags         locations
// @Param        id path string true "Location ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /locations/{id} [delete]
func (h *LocationHandler) Delete(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.locationService.Delete(c.Request.Context(), session.TenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
