package invoicing

import (
	"context"
	"errors"
	"testing"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/invoiceflow/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func assertCode(t *testing.T, err error, code string) *shared.DomainError {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	assert.Equal(t, code, domainErr.Code)
	return domainErr
}

func TestInvoiceService_Create(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, ownerID)
	client := env.seedClient(t, ownerID)
	svc := env.invoiceService(WithInvoiceLogger(zaptest.NewLogger(t)))

	resp, err := svc.Create(context.Background(), ownerID, createRequest(business.ID, client.ID))
	require.NoError(t, err)

	assert.NotZero(t, resp.Invoice.ID)
	assert.Equal(t, "USD", resp.Invoice.Currency)
	assert.Equal(t, string(invoicing.StatusDraft), resp.Invoice.Status)
	assert.True(t, dec("200").Equal(resp.Invoice.Subtotal))
	assert.True(t, dec("20").Equal(resp.Invoice.TaxAmount))
	assert.True(t, dec("200").Equal(resp.Invoice.Total))
	assert.Equal(t, "2024-03-01", resp.Invoice.IssueDate)
	require.Len(t, resp.Items, 2)
	assert.NotZero(t, resp.Items[0].ID)

	got, err := svc.Get(context.Background(), ownerID, resp.Invoice.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, "Design", got.Items[0].Description)
}

func TestInvoiceService_Create_GeneratesNumberAndPreferredCurrency(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, ownerID)
	client := env.seedClient(t, ownerID)
	prefs := invoicing.DefaultPreferences(ownerID)
	require.NoError(t, prefs.Update("eur", ""))
	require.NoError(t, env.prefsRepo.Save(context.Background(), &prefs))

	req := createRequest(business.ID, client.ID)
	req.InvoiceNumber = ""
	req.Currency = ""

	resp, err := env.invoiceService().Create(context.Background(), ownerID, req)
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-001", resp.Invoice.InvoiceNumber)
	assert.Equal(t, "EUR", resp.Invoice.Currency)

	resp, err = env.invoiceService().Create(context.Background(), ownerID, req)
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-002", resp.Invoice.InvoiceNumber)

	req.IssueDate = "2025-01-05"
	req.DueDate = "2025-02-05"
	resp, err = env.invoiceService().Create(context.Background(), ownerID, req)
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-001", resp.Invoice.InvoiceNumber)

	other := createRequest(env.seedBusiness(t, strangerID).ID, env.seedClient(t, strangerID).ID)
	other.InvoiceNumber = ""
	resp, err = env.invoiceService().Create(context.Background(), strangerID, other)
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-001", resp.Invoice.InvoiceNumber)
}

func TestInvoiceService_Create_NoItems(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, ownerID)
	client := env.seedClient(t, ownerID)

	req := createRequest(business.ID, client.ID)
	req.Items = nil

	_, err := env.invoiceService().Create(context.Background(), ownerID, req)
	assertCode(t, err, invoicing.CodeNoItems)
	assert.Zero(t, env.countRows(t, &models.InvoiceModel{}))
}

func TestInvoiceService_Create_ItemErrorsNameTheRow(t *testing.T) {
	env := newTestEnv(t)
	req := createRequest(1, 1)
	req.Items[1].Quantity = dec("0")

	_, err := env.invoiceService().Create(context.Background(), ownerID, req)
	domainErr := assertCode(t, err, invoicing.CodeInvalidQuantity)
	assert.Equal(t, "items[1].quantity", domainErr.Field)

	req = createRequest(1, 1)
	req.Items[0].Description = "  "
	_, err = env.invoiceService().Create(context.Background(), ownerID, req)
	domainErr = assertCode(t, err, invoicing.CodeEmptyDescription)
	assert.Equal(t, "items[0].description", domainErr.Field)
	assert.Zero(t, env.countRows(t, &models.InvoiceModel{}))
}

func TestInvoiceService_Create_InvalidReferences(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, ownerID)
	client := env.seedClient(t, ownerID)
	foreignClient := env.seedClient(t, strangerID)
	svc := env.invoiceService()

	tests := []struct {
		name       string
		businessID int64
		clientID   int64
		field      string
	}{
		{"missing business", 9999, client.ID, "business_id"},
		{"missing client", business.ID, 9999, "client_id"},
		{"client of another user", business.ID, foreignClient.ID, "client_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), ownerID, createRequest(tt.businessID, tt.clientID))
			domainErr := assertCode(t, err, invoicing.CodeInvalidReference)
			assert.Equal(t, tt.field, domainErr.Field)
		})
	}
	assert.Zero(t, env.countRows(t, &models.InvoiceModel{}))
}

func TestInvoiceService_Create_ProductReferences(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, ownerID)
	client := env.seedClient(t, ownerID)
	productID := env.seedProduct(t, ownerID)
	foreignProduct := env.seedProduct(t, strangerID)
	svc := env.invoiceService()

	req := createRequest(business.ID, client.ID)
	req.Items[0].ProductID = &productID
	resp, err := svc.Create(context.Background(), ownerID, req)
	require.NoError(t, err)
	require.NotNil(t, resp.Items[0].ProductID)
	assert.Equal(t, productID, *resp.Items[0].ProductID)

	req.Items[1].ProductID = &foreignProduct
	_, err = svc.Create(context.Background(), ownerID, req)
	domainErr := assertCode(t, err, invoicing.CodeInvalidReference)
	assert.Equal(t, "items[1].product_id", domainErr.Field)
}

func TestInvoiceService_Create_DiscountExceedsTotal(t *testing.T) {
	env := newTestEnv(t)
	req := createRequest(1, 1)
	req.Discount = dec("1000")

	_, err := env.invoiceService().Create(context.Background(), ownerID, req)
	assertCode(t, err, invoicing.CodeDiscountExceedsTotal)
}

func TestInvoiceService_Create_InvalidDate(t *testing.T) {
	env := newTestEnv(t)
	req := createRequest(1, 1)
	req.DueDate = "31/03/2024"

	_, err := env.invoiceService().Create(context.Background(), ownerID, req)
	domainErr := assertCode(t, err, shared.ErrInvalidInput.Code)
	assert.Equal(t, "due_date", domainErr.Field)
}

func TestInvoiceService_Get_Ownership(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, ownerID)
	client := env.seedClient(t, ownerID)
	svc := env.invoiceService()

	created, err := svc.Create(context.Background(), ownerID, createRequest(business.ID, client.ID))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), strangerID, created.Invoice.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Get(context.Background(), ownerID, created.Invoice.ID+100)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceService_UpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, ownerID)
	client := env.seedClient(t, ownerID)
	svc := env.invoiceService()
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerID, createRequest(business.ID, client.ID))
	require.NoError(t, err)
	id := created.Invoice.ID

	resp, err := svc.UpdateStatus(ctx, ownerID, id, "sent")
	require.NoError(t, err)
	assert.Equal(t, "sent", resp.Status)

	// permissive: a terminal status can still be changed
	_, err = svc.UpdateStatus(ctx, ownerID, id, "paid")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, ownerID, id, "draft")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, ownerID, id, "archived")
	assertCode(t, err, invoicing.CodeInvalidStatus)
	got, err := svc.Get(ctx, ownerID, id)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Invoice.Status)

	// validation comes before existence and ownership
	_, err = svc.UpdateStatus(ctx, strangerID, 9999, "archived")
	assertCode(t, err, invoicing.CodeInvalidStatus)
	_, err = svc.UpdateStatus(ctx, strangerID, 9999, "paid")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.UpdateStatus(ctx, strangerID, id, "paid")
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestInvoiceService_UpdateHeader(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, ownerID)
	client := env.seedClient(t, ownerID)
	svc := env.invoiceService()
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerID, createRequest(business.ID, client.ID))
	require.NoError(t, err)

	taxRate := dec("20")
	discount := dec("0")
	notes := "Net 30"
	due := "2024-04-15"
	resp, err := svc.UpdateHeader(ctx, ownerID, created.Invoice.ID, UpdateInvoiceRequest{
		TaxRate:  &taxRate,
		Discount: &discount,
		Notes:    &notes,
		DueDate:  &due,
	})
	require.NoError(t, err)
	assert.True(t, dec("40").Equal(resp.Invoice.TaxAmount))
	assert.True(t, dec("240").Equal(resp.Invoice.Total))
	assert.Equal(t, "2024-04-15", resp.Invoice.DueDate)
	assert.Len(t, resp.Items, 2)

	got, err := svc.Get(ctx, ownerID, created.Invoice.ID)
	require.NoError(t, err)
	assert.True(t, dec("240").Equal(got.Invoice.Total))
	assert.Equal(t, "Net 30", got.Invoice.Notes)
	assert.Len(t, got.Items, 2)

	badDue := "2024-01-01"
	_, err = svc.UpdateHeader(ctx, ownerID, created.Invoice.ID, UpdateInvoiceRequest{DueDate: &badDue})
	assertCode(t, err, invoicing.CodeInvalidDateRange)

	missing := int64(9999)
	_, err = svc.UpdateHeader(ctx, ownerID, created.Invoice.ID, UpdateInvoiceRequest{ClientID: &missing})
	assertCode(t, err, invoicing.CodeInvalidReference)

	_, err = svc.UpdateHeader(ctx, strangerID, created.Invoice.ID, UpdateInvoiceRequest{Notes: &notes})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestInvoiceService_ReplaceItems(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, ownerID)
	client := env.seedClient(t, ownerID)
	svc := env.invoiceService()
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerID, createRequest(business.ID, client.ID))
	require.NoError(t, err)

	resp, err := svc.ReplaceItems(ctx, ownerID, created.Invoice.ID, ReplaceItemsRequest{
		Items: []ItemInput{{Description: "Retainer", Quantity: dec("3"), UnitPrice: dec("19.999")}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.True(t, dec("60").Equal(resp.Items[0].Amount))
	assert.True(t, dec("60").Equal(resp.Invoice.Subtotal))
	assert.Equal(t, int64(1), env.countRows(t, &models.InvoiceItemModel{}))

	_, err = svc.ReplaceItems(ctx, ownerID, created.Invoice.ID, ReplaceItemsRequest{})
	assertCode(t, err, invoicing.CodeNoItems)
	assert.Equal(t, int64(1), env.countRows(t, &models.InvoiceItemModel{}))

	// a discount larger than the new subtotal is rejected and nothing changes
	_, err = svc.ReplaceItems(ctx, ownerID, created.Invoice.ID, ReplaceItemsRequest{
		Items: []ItemInput{{Description: "Tiny", Quantity: dec("1"), UnitPrice: dec("1")}},
	})
	assertCode(t, err, invoicing.CodeDiscountExceedsTotal)
	got, err := svc.Get(ctx, ownerID, created.Invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Retainer", got.Items[0].Description)
}

func TestInvoiceService_Delete(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, ownerID)
	client := env.seedClient(t, ownerID)
	svc := env.invoiceService()
	ctx := context.Background()

	created, err := svc.Create(ctx, ownerID, createRequest(business.ID, client.ID))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, strangerID, created.Invoice.ID), shared.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, ownerID, created.Invoice.ID))
	assert.Zero(t, env.countRows(t, &models.InvoiceModel{}))
	assert.Zero(t, env.countRows(t, &models.InvoiceItemModel{}))
	assert.ErrorIs(t, svc.Delete(ctx, ownerID, created.Invoice.ID), shared.ErrNotFound)
}

func TestInvoiceService_ListAndSummary(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, ownerID)
	client := env.seedClient(t, ownerID)
	svc := env.invoiceService()
	ctx := context.Background()

	for i, issued := range []string{"2024-01-10", "2024-02-10", "2024-03-10"} {
		req := createRequest(business.ID, client.ID)
		req.InvoiceNumber = []string{"INV-A", "INV-B", "INV-C"}[i]
		req.IssueDate = issued
		req.DueDate = "2024-12-31"
		_, err := svc.Create(ctx, ownerID, req)
		require.NoError(t, err)
	}
	list, _, err := svc.List(ctx, ownerID, ListInvoicesRequest{})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, ownerID, list[0].ID, "paid")
	require.NoError(t, err)

	all, total, err := svc.List(ctx, ownerID, ListInvoicesRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "INV-C", all[0].InvoiceNumber, "newest issue date first")

	paid, total, err := svc.List(ctx, ownerID, ListInvoicesRequest{Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, paid, 1)

	ranged, total, err := svc.List(ctx, ownerID, ListInvoicesRequest{StartDate: "2024-02-01", EndDate: "2024-02-28"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "INV-B", ranged[0].InvoiceNumber)

	page, total, err := svc.List(ctx, ownerID, ListInvoicesRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)

	_, _, err = svc.List(ctx, ownerID, ListInvoicesRequest{StartDate: "2024-03-01", EndDate: "2024-01-01"})
	assertCode(t, err, invoicing.CodeInvalidDateRange)

	others, total, err := svc.List(ctx, strangerID, ListInvoicesRequest{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, others)

	summary, err := svc.Summary(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Total)
	assert.Equal(t, int64(2), summary.Counts["draft"])
	assert.Equal(t, int64(1), summary.Counts["paid"])
	assert.Contains(t, summary.Counts, "overdue")
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
	invoicing.InvoiceRepository
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id int64) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, id int64, status invoicing.Status) error {
	return m.Called(ctx, id, status).Error(0)
}

func TestInvoiceService_UpdateStatus_StorageError(t *testing.T) {
	repo := new(MockInvoiceRepository)
	inv := &invoicing.Invoice{UserID: ownerID, Status: invoicing.StatusDraft}
	inv.ID = 7
	storageErr := errors.New("connection reset")
	repo.On("FindByID", mock.Anything, int64(7)).Return(inv, nil)
	repo.On("UpdateStatus", mock.Anything, int64(7), invoicing.StatusSent).Return(storageErr)

	svc := NewInvoiceService(repo, nil, nil, nil, nil)
	_, err := svc.UpdateStatus(context.Background(), ownerID, 7, "sent")
	assert.ErrorIs(t, err, storageErr)
	repo.AssertExpectations(t)
}
