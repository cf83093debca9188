//go:build integration

package integration

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	catalogapp "github.com/bizledger/backend/internal/application/catalog"
	identityapp "github.com/bizledger/backend/internal/application/identity"
	inventoryapp "github.com/bizledger/backend/internal/application/inventory"
	partnerapp "github.com/bizledger/backend/internal/application/partner"
	reportapp "github.com/bizledger/backend/internal/application/report"
	tradeapp "github.com/bizledger/backend/internal/application/trade"
	"github.com/bizledger/backend/internal/infrastructure/auth"
	"github.com/bizledger/backend/internal/infrastructure/config"
	"github.com/bizledger/backend/internal/infrastructure/persistence"
	"github.com/bizledger/backend/internal/infrastructure/printing"
	"github.com/bizledger/backend/internal/interfaces/http/handler"
	"github.com/bizledger/backend/internal/interfaces/http/middleware"
	"github.com/bizledger/backend/internal/interfaces/http/router"
	"github.com/bizledger/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testApp is the full HTTP stack over the shared database, wired the way
// the server entry point wires it minus telemetry, redis and storage
type testApp struct {
	db      *TestDB
	handler http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	middleware.SetupValidator()
	tdb := NewTestDB(t)
	db := tdb.DB
	log := zap.NewNop()

	scope := persistence.NewGormTransactionScope(db)
	tenantRepo := persistence.NewGormTenantRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	customerRepo := persistence.NewGormCustomerRepository(db)
	vendorRepo := persistence.NewGormVendorRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	definitionRepo := persistence.NewGormReportDefinitionRepository(db)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "integration-secret-with-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "bizledger-test",
	})
	revoked := auth.NewMemoryRevocationList()

	exporter := printing.NewReportExporter(printing.NewReportTemplate("en-US"), nil, log)
	engine := reportapp.NewEngine(definitionRepo, persistence.NewGormReportExecutionRepository(db),
		reportapp.DefaultGenerators(persistence.NewGormReportDataRepository(db)), exporter, log)

	app, err := router.New(router.Options{
		Logger:   log,
		Sessions: auth.NewSessionResolver(jwtService, revoked),
		Gate:     middleware.NewGate(log),
		Health:   handler.NewHealthHandler("test", &persistence.Database{DB: db}),
		Handlers: router.Handlers{
			Auth:     handler.NewAuthHandler(identityapp.NewAuthService(tenantRepo, userRepo, scope, jwtService, revoked, log)),
			User:     handler.NewUserHandler(identityapp.NewUserService(userRepo, revoked, jwtService.Expiration(), log)),
			Customer: handler.NewCustomerHandler(partnerapp.NewCustomerService(customerRepo)),
			Vendor:   handler.NewVendorHandler(partnerapp.NewVendorService(vendorRepo)),
			Product: handler.NewProductHandler(
				catalogapp.NewProductService(productRepo, vendorRepo, scope, nil, log),
				catalogapp.NewImageService(productRepo, persistence.NewGormProductImageRepository(db), scope, nil,
					catalogapp.DefaultImageServiceConfig(), log),
			),
			Location:  handler.NewLocationHandler(inventoryapp.NewLocationService(persistence.NewGormLocationRepository(db))),
			Inventory: handler.NewInventoryHandler(inventoryapp.NewLedgerService(persistence.NewGormInventoryRecordRepository(db), scope, log)),
			Sale: handler.NewSaleHandler(tradeapp.NewSaleService(persistence.NewGormSaleRepository(db),
				persistence.NewGormPaymentRepository(db), scope, log)),
			Report:    handler.NewReportHandler(reportapp.NewDefinitionService(definitionRepo, scope, log), engine),
			Dashboard: handler.NewDashboardHandler(reportapp.NewDashboardService(persistence.NewGormDashboardRepository(db), scope, log)),
		},
	})
	require.NoError(t, err)
	return &testApp{db: tdb, handler: app}
}

// client issues requests as one signed-in user
type client struct {
	t     *testing.T
	app   *testApp
	token string
	auth  identityapp.AuthResponse
}

// register creates a new tenant with a unique name and signs in as its admin
func (a *testApp) register(t *testing.T) *client {
	t.Helper()
	suffix := uuid.NewString()[:8]
	c := &client{t: t, app: a}
	w := c.do(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"tenantName": "Shop " + suffix,
		"email":      "owner-" + suffix + "@example.com",
		"name":       "Owner",
		"password":   "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	c.auth = testutil.DecodeData[identityapp.AuthResponse](t, w)
	c.token = c.auth.AccessToken
	return c
}

// login signs in an existing user of the tenant
func (a *testApp) login(t *testing.T, slug, email, password string) *client {
	t.Helper()
	c := &client{t: t, app: a}
	w := c.do(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"tenantSlug": slug,
		"email":      email,
		"password":   password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c.auth = testutil.DecodeData[identityapp.AuthResponse](t, w)
	c.token = c.auth.AccessToken
	return c
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	req := testutil.NewJSONRequest(c.t, method, path, body)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.app.handler.ServeHTTP(w, req)
	return w
}

// create posts body and returns the id of the created resource
func (c *client) create(path string, body any) uuid.UUID {
	c.t.Helper()
	w := c.do(http.MethodPost, path, body)
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
	created := testutil.DecodeData[struct {
		ID uuid.UUID `json:"id"`
	}](c.t, w)
	require.NotEqual(c.t, uuid.Nil, created.ID)
	return created.ID
}
