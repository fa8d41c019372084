package invoicing

import (
	"context"
	"testing"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/infrastructure/persistence"
	"github.com/invoiceflow/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	ownerID    = "user-owner"
	strangerID = "user-stranger"
)

// testEnv bundles sqlite-backed repositories
type testEnv struct {
	db           *gorm.DB
	invoiceRepo  *persistence.GormInvoiceRepository
	businessRepo *persistence.GormBusinessRepository
	clientRepo   *persistence.GormClientRepository
	productRepo  *persistence.GormProductRepository
	prefsRepo    *persistence.GormPreferencesRepository
	templateRepo *persistence.GormTemplateRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	return &testEnv{
		db:           db,
		invoiceRepo:  persistence.NewGormInvoiceRepository(db),
		businessRepo: persistence.NewGormBusinessRepository(db),
		clientRepo:   persistence.NewGormClientRepository(db),
		productRepo:  persistence.NewGormProductRepository(db),
		prefsRepo:    persistence.NewGormPreferencesRepository(db),
		templateRepo: persistence.NewGormTemplateRepository(db),
	}
}

func (e *testEnv) invoiceService(opts ...InvoiceServiceOption) *InvoiceService {
	return NewInvoiceService(e.invoiceRepo, e.businessRepo, e.clientRepo, e.productRepo, e.prefsRepo, opts...)
}

func (e *testEnv) seedBusiness(t *testing.T, userID string) *invoicing.Business {
	t.Helper()
	b, err := invoicing.NewBusiness(userID, invoicing.Contact{
		Name:    "Acme Studio",
		Email:   "billing@acme.test",
		Address: "1 Main St\nSpringfield",
	}, "", "USD")
	require.NoError(t, err)
	require.NoError(t, e.businessRepo.Save(context.Background(), b))
	return b
}

func (e *testEnv) seedClient(t *testing.T, userID string) *invoicing.Client {
	t.Helper()
	c, err := invoicing.NewClient(userID, invoicing.Contact{Name: "Globex Corp", Email: "ap@globex.test"})
	require.NoError(t, err)
	require.NoError(t, e.clientRepo.Save(context.Background(), c))
	return c
}

func (e *testEnv) seedProduct(t *testing.T, userID string) int64 {
	t.Helper()
	p := &models.ProductModel{Name: "Consulting hour", Price: decimal.NewFromInt(120), IsActive: true}
	p.UserID = userID
	require.NoError(t, e.db.Create(p).Error)
	return p.ID
}

func (e *testEnv) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createRequest(businessID, clientID int64) CreateInvoiceRequest {
	return CreateInvoiceRequest{
		InvoiceNumber: "INV-2024-001",
		BusinessID:    businessID,
		ClientID:      clientID,
		IssueDate:     "2024-03-01",
		DueDate:       "2024-03-31",
		Currency:      "usd",
		TaxRate:       dec("10"),
		Discount:      dec("20"),
		Notes:         "Thanks for your business",
		Items: []ItemInput{
			{Description: "Design", Quantity: dec("1"), UnitPrice: dec("100")},
			{Description: "Build", Quantity: dec("2"), UnitPrice: dec("50")},
		},
	}
}
