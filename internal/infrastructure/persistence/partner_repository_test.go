package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/bizledger/backend/internal/domain/identity"
	"github.com/bizledger/backend/internal/domain/partner"
	"github.com/bizledger/backend/internal/domain/shared"
	"github.com/bizledger/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(t *testing.T, tenantID uuid.UUID, code, name string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(tenantID, code, partner.CustomerDetails{
		Name:     name,
		Email:    code + "@example.com",
		IsActive: true,
	})
	require.NoError(t, err)
	return c
}

func TestGormCustomerRepository_TenantIsolation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	tenantA := uuid.New()
	tenantB := uuid.New()

	custA := newTestCustomer(t, tenantA, "C001", "Alpha")
	require.NoError(t, repo.Create(ctx, tenantA, custA))
	custB := newTestCustomer(t, tenantB, "C001", "Bravo")
	require.NoError(t, repo.Create(ctx, tenantB, custB), "same code in another tenant is allowed")

	t.Run("find by id does not cross tenants", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, tenantB, custA.ID)
		assert.True(t, shared.IsCode(err, shared.CodeNotFound))

		found, err := repo.FindByIDForTenant(ctx, tenantA, custA.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alpha", found.Name)
	})

	t.Run("list only returns own rows", func(t *testing.T) {
		page, err := repo.FindAllForTenant(ctx, tenantA, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, tenantA, page.Items[0].TenantID)
	})

	t.Run("filter on tenant_id is ignored", func(t *testing.T) {
		f := shared.DefaultFilter().WithFilter("tenant_id", tenantB)
		page, err := repo.FindAllForTenant(ctx, tenantA, f)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, custA.ID, page.Items[0].ID)
	})

	t.Run("update across tenants is rejected", func(t *testing.T) {
		custA.Name = "Hijacked"
		err := repo.Update(ctx, tenantB, custA)
		assert.True(t, shared.IsCode(err, shared.CodeNotFound))
	})

	t.Run("delete across tenants is rejected", func(t *testing.T) {
		err := repo.DeleteForTenant(ctx, tenantB, custA.ID)
		assert.True(t, shared.IsCode(err, shared.CodeNotFound))

		_, err = repo.FindByIDForTenant(ctx, tenantA, custA.ID)
		assert.NoError(t, err)
	})

	t.Run("nil tenant is rejected", func(t *testing.T) {
		_, err := repo.FindAllForTenant(ctx, uuid.Nil, shared.DefaultFilter())
		assert.ErrorIs(t, err, ErrTenantRequired)
	})
}

func TestGormCustomerRepository_DuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	require.NoError(t, repo.Create(ctx, tenantID, newTestCustomer(t, tenantID, "C001", "First")))

	err := repo.Create(ctx, tenantID, newTestCustomer(t, tenantID, "c001", "Second"))
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeDuplicateCode))

	other := newTestCustomer(t, tenantID, "C002", "Other")
	require.NoError(t, repo.Create(ctx, tenantID, other))
	require.NoError(t, other.SetCode("C001"))
	err = repo.Update(ctx, tenantID, other)
	assert.True(t, shared.IsCode(err, shared.CodeDuplicateCode))
}

func TestGormCustomerRepository_Pagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	for i := 0; i < 7; i++ {
		c := newTestCustomer(t, tenantID, fmt.Sprintf("C%03d", i), fmt.Sprintf("Customer %d", i))
		require.NoError(t, repo.Create(ctx, tenantID, c))
	}

	f := shared.DefaultFilter()
	f.PageSize = 3
	f.Page = 3
	f.OrderBy = "code"
	f.OrderDir = "asc"

	page, err := repo.FindAllForTenant(ctx, tenantID, f)
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "C006", page.Items[0].Code)

	f.PageSize = 500
	f.Page = 1
	page, err = repo.FindAllForTenant(ctx, tenantID, f)
	require.NoError(t, err)
	assert.Equal(t, shared.MaxPageSize, page.PageSize)
	assert.Len(t, page.Items, 7)
}

func TestGormCustomerRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	require.NoError(t, repo.Create(ctx, tenantID, newTestCustomer(t, tenantID, "C001", "Green Leaf Co")))
	require.NoError(t, repo.Create(ctx, tenantID, newTestCustomer(t, tenantID, "C002", "Blue Sky")))

	inactive := newTestCustomer(t, tenantID, "C003", "Green Valley")
	inactive.IsActive = false
	require.NoError(t, repo.Create(ctx, tenantID, inactive))

	f := shared.DefaultFilter()
	f.Search = "GREEN"
	page, err := repo.FindAllForTenant(ctx, tenantID, f)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = repo.FindAllForTenant(ctx, tenantID, f.WithFilter("isActive", false))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "C003", page.Items[0].Code)
	assert.False(t, page.Items[0].IsActive)
}

func TestGormCustomerRepository_CountSales(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	sales := NewGormSaleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	cust := newTestCustomer(t, tenantID, "C001", "Buyer")
	require.NoError(t, repo.Create(ctx, tenantID, cust))

	for i := 0; i < 2; i++ {
		sale, err := trade.NewSale(tenantID, uuid.New(), trade.SaleDetails{CustomerID: cust.ID}, []trade.LineInput{
			{ProductID: uuid.New(), Quantity: 1, Price: decimal.NewFromInt(5)},
		})
		require.NoError(t, err)
		sale.InvoiceNumber = trade.FormatInvoiceNumber(int64(1001 + i))
		require.NoError(t, sales.Create(ctx, tenantID, sale))
	}

	n, err := repo.CountSales(ctx, tenantID, cust.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.CountSales(ctx, uuid.New(), cust.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGormUserRepository_EmailUniquePerTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	tenantA := uuid.New()
	tenantB := uuid.New()

	u1, err := identity.NewUser(tenantA, "Owner@Example.com", "Owner", "password123", identity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tenantA, u1))

	u2, err := identity.NewUser(tenantA, "owner@example.com", "Copy", "password123", identity.RoleUser)
	require.NoError(t, err)
	err = repo.Create(ctx, tenantA, u2)
	assert.True(t, shared.IsCode(err, shared.CodeDuplicateCode))

	u3, err := identity.NewUser(tenantB, "owner@example.com", "Elsewhere", "password123", identity.RoleUser)
	require.NoError(t, err)
	assert.NoError(t, repo.Create(ctx, tenantB, u3))

	found, err := repo.FindByEmail(ctx, tenantA, " OWNER@example.com ")
	require.NoError(t, err)
	assert.Equal(t, u1.ID, found.ID)

	require.NoError(t, repo.TouchLastLogin(ctx, tenantA, u1.ID))
	found, err = repo.FindByIDForTenant(ctx, tenantA, u1.ID)
	require.NoError(t, err)
	assert.NotNil(t, found.LastLoginAt)
}
