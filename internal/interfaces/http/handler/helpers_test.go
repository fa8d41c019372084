package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoiceflow/backend/internal/application/invoicing"
	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/infrastructure/persistence"
	"github.com/invoiceflow/backend/internal/infrastructure/printing"
	"github.com/invoiceflow/backend/internal/infrastructure/storage"
	"github.com/invoiceflow/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	ownerID    = "user-owner"
	strangerID = "user-stranger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// apiEnv wires real services over an in-memory sqlite database
type apiEnv struct {
	db           *gorm.DB
	engine       *gin.Engine
	businessRepo *persistence.GormBusinessRepository
	clientRepo   *persistence.GormClientRepository
	store        *storage.MemoryStorage
}

func newAPIEnv(t *testing.T) *apiEnv {
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

	invoiceRepo := persistence.NewGormInvoiceRepository(db)
	businessRepo := persistence.NewGormBusinessRepository(db)
	clientRepo := persistence.NewGormClientRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	prefsRepo := persistence.NewGormPreferencesRepository(db)
	templateRepo := persistence.NewGormTemplateRepository(db)
	store := storage.NewMemoryStorage()

	invoices := NewInvoiceHandler(invoicingapp.NewInvoiceService(invoiceRepo, businessRepo, clientRepo, productRepo, prefsRepo))
	documents := NewDocumentHandler(invoicingapp.NewDocumentService(invoicingapp.DocumentServiceConfig{
		InvoiceRepo:  invoiceRepo,
		BusinessRepo: businessRepo,
		ClientRepo:   clientRepo,
		PrefsRepo:    prefsRepo,
		Renderer:     printing.NewGofpdfRenderer(nil),
		Storage:      store,
		Backend:      "gofpdf",
	}))
	templates := NewTemplateHandler(invoicingapp.NewTemplateService(templateRepo, nil, nil, nil, nil))
	prefs := NewPreferencesHandler(invoicingapp.NewPreferencesService(prefsRepo))
	businesses := NewBusinessHandler(invoicingapp.NewBusinessService(businessRepo))
	clients := NewClientHandler(invoicingapp.NewClientService(clientRepo))
	products := NewProductHandler(invoicingapp.NewProductService(productRepo))

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	api.POST("/invoices", invoices.Create)
	api.GET("/invoices", invoices.List)
	api.GET("/invoices/stats/summary", invoices.Summary)
	api.GET("/invoices/:id", invoices.GetByID)
	api.PUT("/invoices/:id", invoices.Update)
	api.PUT("/invoices/:id/items", invoices.ReplaceItems)
	api.PUT("/invoices/:id/status", invoices.UpdateStatus)
	api.DELETE("/invoices/:id", invoices.Delete)
	api.GET("/invoices/:id/document", documents.Download)
	api.GET("/invoice-templates", templates.List)
	api.GET("/invoice-templates/:id/preview", templates.Preview)
	api.GET("/preferences", prefs.Get)
	api.PUT("/preferences", prefs.Update)
	api.POST("/businesses", businesses.Create)
	api.GET("/businesses", businesses.List)
	api.GET("/businesses/:id", businesses.GetByID)
	api.POST("/clients", clients.Create)
	api.GET("/clients", clients.List)
	api.GET("/clients/:id", clients.GetByID)
	api.POST("/products", products.Create)
	api.GET("/products", products.List)
	api.GET("/products/:id", products.GetByID)

	return &apiEnv{
		db:           db,
		engine:       engine,
		businessRepo: businessRepo,
		clientRepo:   clientRepo,
		store:        store,
	}
}

// do sends a request as userID; an empty userID sends no identity
func (e *apiEnv) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func (e *apiEnv) seedParties(t *testing.T, userID string) (businessID, clientID int64) {
	t.Helper()
	b, err := invoicing.NewBusiness(userID, invoicing.Contact{Name: "Acme Studio", Address: "1 Main St"}, "", "USD")
	require.NoError(t, err)
	require.NoError(t, e.businessRepo.Save(context.Background(), b))
	c, err := invoicing.NewClient(userID, invoicing.Contact{Name: "Globex Corp"})
	require.NoError(t, err)
	require.NoError(t, e.clientRepo.Save(context.Background(), c))
	return b.ID, c.ID
}

func invoiceBody(businessID, clientID int64) map[string]any {
	return map[string]any{
		"invoice_number": "INV-2024-001",
		"business_id":    businessID,
		"client_id":      clientID,
		"issue_date":     "2024-03-01",
		"due_date":       "2024-03-31",
		"currency":       "USD",
		"tax_rate":       10,
		"discount":       20,
		"items": []map[string]any{
			{"description": "Design", "quantity": 1, "unit_price": 100},
			{"description": "Build", "quantity": 2, "unit_price": 50},
		},
	}
}

// envelope mirrors dto.Response with a typed payload
type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Field     string `json:"field"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	} `json:"meta"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *apiEnv) createInvoice(t *testing.T, userID string) int64 {
	t.Helper()
	businessID, clientID := e.seedParties(t, userID)
	rec := e.do(t, http.MethodPost, "/api/v1/invoices", userID, invoiceBody(businessID, clientID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[invoicingapp.InvoiceDetailResponse](t, rec).Data.Invoice.ID
}
