package report

import (
	"context"

	"github.com/bizledger/backend/internal/application/uow"
	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DashboardService manages dashboards and their widgets. At most one
// dashboard per tenant is the default.
type DashboardService struct {
	dashboardRepo report.DashboardRepository
	scope         uow.TransactionScope
	logger        *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(dashboardRepo report.DashboardRepository, scope uow.TransactionScope, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{dashboardRepo: dashboardRepo, scope: scope, logger: logger}
}

// List retrieves a page of dashboards with their widgets
func (s *DashboardService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[DashboardResponse], error) {
	page, err := s.dashboardRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[DashboardResponse]{}, err
	}
	return shared.MapPaginated(page, func(d report.Dashboard) DashboardResponse {
		return ToDashboardResponse(&d)
	}), nil
}

// GetByID retrieves a dashboard
func (s *DashboardService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*DashboardResponse, error) {
	d, err := s.dashboardRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToDashboardResponse(d)
	return &response, nil
}

// Create adds a dashboard with its widgets
func (s *DashboardService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateDashboardRequest) (*DashboardResponse, error) {
	d, err := report.NewDashboard(tenantID, &userID, report.DashboardDetails{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	}, toWidgetInputs(req.Widgets))
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if err := ensureDefinitions(ctx, repos, tenantID, d); err != nil {
			return err
		}
		if err := repos.Dashboards().Create(ctx, tenantID, d); err != nil {
			return err
		}
		if d.IsDefault {
			return repos.Dashboards().ClearDefault(ctx, tenantID, d.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	response := ToDashboardResponse(d)
	return &response, nil
}

// Update edits a dashboard. A non-nil widget list replaces the stored
// widgets in the same transaction as the header change.
func (s *DashboardService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateDashboardRequest) (*DashboardResponse, error) {
	var d *report.Dashboard
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		d, err = repos.Dashboards().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}

		details := report.DashboardDetails{Name: d.Name, Description: d.Description, IsDefault: d.IsDefault}
		if req.Name != nil {
			details.Name = *req.Name
		}
		if req.Description != nil {
			details.Description = *req.Description
		}
		if req.IsDefault != nil {
			details.IsDefault = *req.IsDefault
		}
		var widgets []report.WidgetInput
		if req.Widgets != nil {
			widgets = toWidgetInputs(*req.Widgets)
		}
		if err := d.Apply(details, widgets); err != nil {
			return err
		}
		if err := ensureDefinitions(ctx, repos, tenantID, d); err != nil {
			return err
		}
		if err := repos.Dashboards().Save(ctx, tenantID, d); err != nil {
			return err
		}
		if d.IsDefault {
			return repos.Dashboards().ClearDefault(ctx, tenantID, d.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	response := ToDashboardResponse(d)
	return &response, nil
}

// Delete removes a dashboard and its widgets. System dashboards are kept.
func (s *DashboardService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		d, err := repos.Dashboards().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := d.EnsureDeletable(); err != nil {
			return err
		}
		return repos.Dashboards().DeleteWithWidgets(ctx, tenantID, id)
	})
}

// ensureDefinitions checks that every widget points at a definition of the
// tenant
func ensureDefinitions(ctx context.Context, repos uow.TransactionalRepositories, tenantID uuid.UUID, d *report.Dashboard) error {
	for _, defID := range d.ReportDefinitionIDs() {
		if _, err := repos.ReportDefinitions().FindByIDForTenant(ctx, tenantID, defID); err != nil {
			if shared.IsCode(err, shared.CodeNotFound) {
				return shared.NotFound("Report definition").WithDetails(map[string]any{"reportDefinitionId": defID.String()})
			}
			return err
		}
	}
	return nil
}
