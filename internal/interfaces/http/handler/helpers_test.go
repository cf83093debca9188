package handler

import (
	"context"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/interfaces/http/middleware"
	"github.com/bizledger/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type route struct {
	method string
	path   string
	h      gin.HandlerFunc
}

// newTestEngine mounts routes behind the request id middleware and a fixed
// session; a nil session leaves the request anonymous
func newTestEngine(session *identity.Session, routes ...route) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID(), testutil.WithSession(session))
	for _, r := range routes {
		engine.Handle(r.method, r.path, r.h)
	}
	return engine
}

type mockCustomerRepository struct {
	mock.Mock
}

func (m *mockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if c := args.Get(0); c != nil {
		return c.(*partner.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[partner.Customer], error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(shared.Paginated[partner.Customer]), args.Error(1)
}

func (m *mockCustomerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCustomerRepository) Create(ctx context.Context, tenantID uuid.UUID, customer *partner.Customer) error {
	return m.Called(ctx, tenantID, customer).Error(0)
}

func (m *mockCustomerRepository) Update(ctx context.Context, tenantID uuid.UUID, customer *partner.Customer) error {
	return m.Called(ctx, tenantID, customer).Error(0)
}

func (m *mockCustomerRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockCustomerRepository) CountSales(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).(int64), args.Error(1)
}
