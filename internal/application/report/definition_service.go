package report

import (
	"context"

	"github.com/bizledger/backend/internal/application/uow"
	"github.com/bizledger/backend/internal/domain/report"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefinitionService manages saved report definitions
type DefinitionService struct {
	defRepo report.DefinitionRepository
	scope   uow.TransactionScope
	logger  *zap.Logger
}

// NewDefinitionService creates a new DefinitionService
func NewDefinitionService(defRepo report.DefinitionRepository, scope uow.TransactionScope, logger *zap.Logger) *DefinitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefinitionService{defRepo: defRepo, scope: scope, logger: logger}
}

// List retrieves a page of definitions
func (s *DefinitionService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[DefinitionResponse], error) {
	page, err := s.defRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[DefinitionResponse]{}, err
	}
	return shared.MapPaginated(page, func(d report.Definition) DefinitionResponse {
		return ToDefinitionResponse(&d)
	}), nil
}

// GetByID retrieves a definition
func (s *DefinitionService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*DefinitionResponse, error) {
	def, err := s.defRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToDefinitionResponse(def)
	return &response, nil
}

// Create saves a user-defined definition
func (s *DefinitionService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateDefinitionRequest) (*DefinitionResponse, error) {
	def, err := report.NewDefinition(tenantID, &userID, report.DefinitionDetails{
		Name:        req.Name,
		Description: req.Description,
		ReportType:  report.ReportType(req.ReportType),
		Parameters:  toParameters(req.Parameters),
	})
	if err != nil {
		return nil, err
	}
	if err := s.defRepo.Create(ctx, tenantID, def); err != nil {
		return nil, err
	}
	response := ToDefinitionResponse(def)
	return &response, nil
}

// Update edits a definition. System definitions are read-only.
func (s *DefinitionService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateDefinitionRequest) (*DefinitionResponse, error) {
	def, err := s.defRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	details := report.DefinitionDetails{
		Name:        def.Name,
		Description: def.Description,
		ReportType:  def.ReportType,
		Parameters:  def.Parameters,
	}
	if req.Name != nil {
		details.Name = *req.Name
	}
	if req.Description != nil {
		details.Description = *req.Description
	}
	if req.ReportType != nil {
		details.ReportType = report.ReportType(*req.ReportType)
	}
	if req.Parameters != nil {
		details.Parameters = toParameters(*req.Parameters)
	}
	if err := def.Apply(details); err != nil {
		return nil, err
	}
	if err := s.defRepo.Update(ctx, tenantID, def); err != nil {
		return nil, err
	}
	response := ToDefinitionResponse(def)
	return &response, nil
}

// Delete removes a definition and its execution history. Definitions shown
// on a dashboard cannot be deleted.
func (s *DefinitionService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		def, err := repos.ReportDefinitions().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := def.EnsureDeletable(); err != nil {
			return err
		}
		widgets, err := repos.ReportDefinitions().CountWidgets(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if widgets > 0 {
			return shared.InUse("Report definition", map[string]any{"widgetsCount": widgets})
		}
		if err := repos.Executions().DeleteByDefinition(ctx, tenantID, id); err != nil {
			return err
		}
		return repos.ReportDefinitions().DeleteForTenant(ctx, tenantID, id)
	})
}
