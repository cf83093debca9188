package handler

import (
	"fmt"
	"net/http"

	reportapp "github.com/bizledger/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles report definitions, runs and exports
type ReportHandler struct {
	BaseHandler
	definitions *reportapp.DefinitionService
	engine      *reportapp.Engine
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(definitions *reportapp.DefinitionService, engine *reportapp.Engine) *ReportHandler {
	return &ReportHandler{
		definitions: definitions,
		engine:      engine,
	}
}

var (
	definitionFilters = listFilters{strings: []string{"reportType"}, bools: []string{"isSystemReport"}}
	executionFilters  = listFilters{strings: []string{"status"}}
)

// ListDefinitions godoc
// @ID           listReportDefinitions
// @Summary      List report definitions
// @Tags         reports
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        search query string false "Search name and description"
// @Param        reportType query string false "Report type" Enums(SALES_SUMMARY, INVENTORY_SUMMARY, CUSTOMER_ANALYTICS, VENDOR_PERFORMANCE, FINANCIAL_SUMMARY)
// @Param        isSystemReport query bool false "System definitions only"
// @Success      200 {object} dto.Response{data=[]reportapp.DefinitionResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/definitions [get]
func (h *ReportHandler) ListDefinitions(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c, definitionFilters)
	if !ok {
		return
	}

	page, err := h.definitions.List(c.Request.Context(), session.TenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetDefinition godoc
// @ID           getReportDefinition
// @Summary      Get a report definition
// @Tags         reports
// @Produce      json
// @Param        id path string true "Definition ID" format(uuid)
// @Success      200 {object} dto.Response{data=reportapp.DefinitionResponse}
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/definitions/{id} [get]
func (h *ReportHandler) GetDefinition(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	def, err := h.definitions.GetByID(c.Request.Context(), session.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, def)
}

// CreateDefinition godoc
// @ID           createReportDefinition
// @Summary      Create a report definition
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request body reportapp.CreateDefinitionRequest true "Definition"
// @Success      201 {object} dto.Response{data=reportapp.DefinitionResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/definitions [post]
func (h *ReportHandler) CreateDefinition(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req reportapp.CreateDefinitionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	def, err := h.definitions.Create(c.Request.Context(), session.TenantID, session.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, def)
}

// UpdateDefinition godoc
// @ID           updateReportDefinition
// @Summary      Update a report definition
// @Description  System definitions cannot be changed
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        id path string true "Definition ID" format(uuid)
// @Param        request body reportapp.UpdateDefinitionRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=reportapp.DefinitionResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/definitions/{id} [put]
func (h *ReportHandler) UpdateDefinition(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req reportapp.UpdateDefinitionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	def, err := h.definitions.Update(c.Request.Context(), session.TenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, def)
}

// DeleteDefinition godoc
// @ID           deleteReportDefinition
// @Summary      Delete a report definition
// @Tags         reports
// @Param        id path string true "Definition ID" format(uuid)
// @Success      204
// @Failure      403 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/definitions/{id} [delete]
func (h *ReportHandler) DeleteDefinition(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.definitions.Delete(c.Request.Context(), session.TenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Execute godoc
// @ID           executeReport
// @Summary      Run a report
// @Description  Runs the definition with the given parameters and records the execution. Missing required parameters answer MISSING_PARAMETERS with details.missing.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        id path string true "Definition ID" format(uuid)
// @Param        request body reportapp.ExecuteRequest false "Parameter values"
// @Success      200 {object} dto.Response{data=reportapp.ExecutionResponse}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/definitions/{id}/execute [post]
func (h *ReportHandler) Execute(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req reportapp.ExecuteRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	exec, err := h.engine.Execute(c.Request.Context(), session.TenantID, session.UserID, id, req.Parameters)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, exec)
}

// ListExecutions godoc
// @ID           listReportExecutions
// @Summary      List runs of a report
// @Tags         reports
// @Produce      json
// @Param        id path string true "Definition ID" format(uuid)
// @Param        status query string false "Status" Enums(RUNNING, SUCCESS, FAILED)
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]reportapp.ExecutionResponse}
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/definitions/{id}/executions [get]
func (h *ReportHandler) ListExecutions(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c, executionFilters)
	if !ok {
		return
	}

	page, err := h.engine.ListExecutions(c.Request.Context(), session.TenantID, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetExecution godoc
// @ID           getReportExecution
// @Summary      Get a report run
// @Tags         reports
// @Produce      json
// @Param        id path string true "Execution ID" format(uuid)
// @Success      200 {object} dto.Response{data=reportapp.ExecutionResponse}
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/executions/{id} [get]
func (h *ReportHandler) GetExecution(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	exec, err := h.engine.GetExecution(c.Request.Context(), session.TenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, exec)
}

// ExportExecution godoc
// @ID           exportReportExecution
// @Summary      Export a report run
// @Description  Renders a successful run as an HTML or PDF download
// @Tags         reports
// @Produce      text/html
// @Produce      application/pdf
// @Param        id path string true "Execution ID" format(uuid)
// @Param        format query string false "Document format" Enums(html, pdf) default(html)
// @Success      200 {file} file
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /reports/executions/{id}/export [get]
func (h *ReportHandler) ExportExecution(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	file, err := h.engine.ExportExecution(c.Request.Context(), session.TenantID, id, c.Query("format"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
