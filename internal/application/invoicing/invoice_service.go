// Package invoicing implements the invoice use cases on top of the domain
// aggregate, its repositories and the document renderer.
package invoicing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/invoiceflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InvoiceService handles invoice lifecycle operations
type InvoiceService struct {
	invoiceRepo  invoicing.InvoiceRepository
	businessRepo invoicing.BusinessRepository
	clientRepo   invoicing.ClientRepository
	productRepo  invoicing.ProductRepository
	prefsRepo    invoicing.PreferencesRepository
	metrics      *telemetry.InvoiceMetrics
	logger       *zap.Logger
}

// InvoiceServiceOption configures an InvoiceService
type InvoiceServiceOption func(*InvoiceService)

// WithInvoiceMetrics records lifecycle metrics
func WithInvoiceMetrics(m *telemetry.InvoiceMetrics) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.metrics = m
	}
}

// WithInvoiceLogger sets the service logger
func WithInvoiceLogger(logger *zap.Logger) InvoiceServiceOption {
	return func(s *InvoiceService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	businessRepo invoicing.BusinessRepository,
	clientRepo invoicing.ClientRepository,
	productRepo invoicing.ProductRepository,
	prefsRepo invoicing.PreferencesRepository,
	opts ...InvoiceServiceOption,
) *InvoiceService {
	s := &InvoiceService{
		invoiceRepo:  invoiceRepo,
		businessRepo: businessRepo,
		clientRepo:   clientRepo,
		productRepo:  productRepo,
		prefsRepo:    prefsRepo,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the request, checks references and persists a draft invoice
func (s *InvoiceService) Create(ctx context.Context, userID string, req CreateInvoiceRequest) (*InvoiceDetailResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create", telemetry.SpanAttrUserID, userID)
	defer span.End()

	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}
	issueDate, err := ParseDate("issue_date", req.IssueDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := ParseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	var sequence int64
	if strings.TrimSpace(req.InvoiceNumber) == "" {
		if sequence, err = s.nextSequence(ctx, userID, issueDate.Year()); err != nil {
			return nil, err
		}
	}

	inv, err := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		UserID:        userID,
		InvoiceNumber: req.InvoiceNumber,
		BusinessID:    req.BusinessID,
		ClientID:      req.ClientID,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Currency:      req.Currency,
		TaxRate:       req.TaxRate,
		Discount:      req.Discount,
		Notes:         req.Notes,
		TemplateID:    req.TemplateID,
		Items:         items,
		Sequence:      sequence,
	})
	if err != nil {
		return nil, err
	}

	if err := s.verifyParties(ctx, userID, inv.BusinessID, inv.ClientID); err != nil {
		return nil, err
	}
	if err := s.verifyProducts(ctx, userID, inv.Items); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Currency) == "" {
		inv.Currency = s.defaultCurrency(ctx, userID)
	}

	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, inv.ID,
		telemetry.SpanAttrItemCount, inv.ItemCount())
	s.metrics.RecordInvoiceCreated(ctx, inv.Currency)
	s.logger.Info("Invoice created",
		zap.Int64("invoice_id", inv.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("user_id", userID),
		zap.Int("items", inv.ItemCount()),
		zap.String("total", inv.Total.StringFixed(2)),
	)

	response := ToInvoiceDetailResponse(inv)
	return &response, nil
}

// Get returns an invoice with its items
func (s *InvoiceService) Get(ctx context.Context, userID string, id int64) (*InvoiceDetailResponse, error) {
	inv, err := s.loadOwned(ctx, userID, id, true)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceDetailResponse(inv)
	return &response, nil
}

// List returns a page of the user's invoices and the total match count
func (s *InvoiceService) List(ctx context.Context, userID string, req ListInvoicesRequest) ([]InvoiceResponse, int64, error) {
	filter, err := toInvoiceFilter(req)
	if err != nil {
		return nil, 0, err
	}

	invoices, err := s.invoiceRepo.FindAllForUser(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.CountForUser(ctx, userID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToInvoiceResponses(invoices), total, nil
}

// Summary counts the user's invoices per status, listing every status
func (s *InvoiceService) Summary(ctx context.Context, userID string) (*StatusSummaryResponse, error) {
	counts, err := s.invoiceRepo.StatusSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := &StatusSummaryResponse{Counts: make(map[string]int64, len(invoicing.AllStatuses()))}
	for _, status := range invoicing.AllStatuses() {
		response.Counts[string(status)] = counts[status]
		response.Total += counts[status]
	}
	return response, nil
}

// UpdateHeader applies header changes and recomputes totals. Items are untouched.
func (s *InvoiceService) UpdateHeader(ctx context.Context, userID string, id int64, req UpdateInvoiceRequest) (*InvoiceDetailResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update_header",
		telemetry.SpanAttrUserID, userID, telemetry.SpanAttrInvoiceID, id)
	defer span.End()

	// items are needed to recompute totals when tax or discount change
	inv, err := s.loadOwned(ctx, userID, id, true)
	if err != nil {
		return nil, err
	}

	patch := invoicing.HeaderPatch{
		InvoiceNumber: req.InvoiceNumber,
		BusinessID:    req.BusinessID,
		ClientID:      req.ClientID,
		Currency:      req.Currency,
		TaxRate:       req.TaxRate,
		Discount:      req.Discount,
		Notes:         req.Notes,
		TemplateID:    req.TemplateID,
	}
	if req.IssueDate != nil {
		d, err := ParseDate("issue_date", *req.IssueDate)
		if err != nil {
			return nil, err
		}
		patch.IssueDate = &d
	}
	if req.DueDate != nil {
		d, err := ParseDate("due_date", *req.DueDate)
		if err != nil {
			return nil, err
		}
		patch.DueDate = &d
	}

	if err := inv.ApplyHeader(patch); err != nil {
		return nil, err
	}
	if req.BusinessID != nil || req.ClientID != nil {
		if err := s.verifyParties(ctx, userID, inv.BusinessID, inv.ClientID); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.UpdateHeader(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToInvoiceDetailResponse(inv)
	return &response, nil
}

// ReplaceItems swaps the invoice's item set atomically and recomputes totals
func (s *InvoiceService) ReplaceItems(ctx context.Context, userID string, id int64, req ReplaceItemsRequest) (*InvoiceDetailResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "replace_items",
		telemetry.SpanAttrUserID, userID, telemetry.SpanAttrInvoiceID, id)
	defer span.End()

	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	inv, err := s.loadOwned(ctx, userID, id, true)
	if err != nil {
		return nil, err
	}
	if err := s.verifyProducts(ctx, userID, items); err != nil {
		return nil, err
	}
	if err := inv.ReplaceItems(items); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.ReplaceItems(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Invoice items replaced",
		zap.Int64("invoice_id", inv.ID),
		zap.Int("items", inv.ItemCount()),
		zap.String("total", inv.Total.StringFixed(2)),
	)
	response := ToInvoiceDetailResponse(inv)
	return &response, nil
}

// UpdateStatus validates the status, then existence, then ownership
func (s *InvoiceService) UpdateStatus(ctx context.Context, userID string, id int64, raw string) (*InvoiceResponse, error) {
	status, err := invoicing.ParseStatus(raw)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update_status",
		telemetry.SpanAttrUserID, userID,
		telemetry.SpanAttrInvoiceID, id,
		telemetry.SpanAttrInvoiceStatus, string(status))
	defer span.End()

	inv, err := s.loadOwned(ctx, userID, id, false)
	if err != nil {
		return nil, err
	}

	previous := inv.Status
	if err := inv.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.UpdateStatus(ctx, inv.ID, inv.Status); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordStatusChange(ctx, string(previous), string(status))
	s.logger.Info("Invoice status changed",
		zap.Int64("invoice_id", inv.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Delete removes an invoice and its items
func (s *InvoiceService) Delete(ctx context.Context, userID string, id int64) error {
	inv, err := s.loadOwned(ctx, userID, id, false)
	if err != nil {
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, inv.ID); err != nil {
		return err
	}
	s.logger.Info("Invoice deleted", zap.Int64("invoice_id", inv.ID), zap.String("user_id", userID))
	return nil
}

// loadOwned returns the invoice when it exists and belongs to userID.
// A foreign invoice is reported as forbidden, never as not found.
func (s *InvoiceService) loadOwned(ctx context.Context, userID string, id int64, withItems bool) (*invoicing.Invoice, error) {
	return loadOwnedInvoice(ctx, s.invoiceRepo, userID, id, withItems)
}

func loadOwnedInvoice(ctx context.Context, repo invoicing.InvoiceRepository, userID string, id int64, withItems bool) (*invoicing.Invoice, error) {
	var (
		inv *invoicing.Invoice
		err error
	)
	if withItems {
		inv, err = repo.FindByIDWithItems(ctx, id)
	} else {
		inv, err = repo.FindByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if !inv.IsOwnedBy(userID) {
		return nil, shared.ErrForbidden
	}
	return inv, nil
}

// verifyParties checks that the business and client exist for userID
func (s *InvoiceService) verifyParties(ctx context.Context, userID string, businessID, clientID int64) error {
	if _, err := s.businessRepo.FindByIDForUser(ctx, userID, businessID); err != nil {
		return referenceError(err, "business_id")
	}
	if _, err := s.clientRepo.FindByIDForUser(ctx, userID, clientID); err != nil {
		return referenceError(err, "client_id")
	}
	return nil
}

// nextSequence numbers the caller's next invoice issued in year
func (s *InvoiceService) nextSequence(ctx context.Context, userID string, year int) (int64, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	count, err := s.invoiceRepo.CountForUser(ctx, userID, invoicing.InvoiceFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

// verifyProducts checks optional product references on line items
func (s *InvoiceService) verifyProducts(ctx context.Context, userID string, items []invoicing.LineItem) error {
	if s.productRepo == nil {
		return nil
	}
	for i, item := range items {
		if item.ProductID == nil {
			continue
		}
		if _, err := s.productRepo.FindByIDForUser(ctx, userID, *item.ProductID); err != nil {
			return referenceError(err, fmt.Sprintf("items[%d].product_id", i))
		}
	}
	return nil
}

// defaultCurrency falls back to the user's preferred currency
func (s *InvoiceService) defaultCurrency(ctx context.Context, userID string) string {
	if s.prefsRepo == nil {
		return invoicing.DefaultCurrency
	}
	prefs, err := s.prefsRepo.FindByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to load preferences, using default currency",
				zap.String("user_id", userID), zap.Error(err))
		}
		return invoicing.DefaultCurrency
	}
	return invoicing.NormalizeCurrency(prefs.DefaultCurrency)
}

func referenceError(err error, field string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return invoicing.NewReferenceError(field)
	}
	return err
}

// buildItems validates every input row; errors name the row index
func buildItems(inputs []ItemInput) ([]invoicing.LineItem, error) {
	if len(inputs) == 0 {
		return nil, invoicing.ErrNoItems
	}
	items := make([]invoicing.LineItem, 0, len(inputs))
	for i, in := range inputs {
		item, err := invoicing.NewLineItem(in.Description, in.Quantity, in.UnitPrice, in.ProductID)
		if err != nil {
			return nil, indexItemError(err, i)
		}
		items = append(items, *item.WithTempID(in.TempID))
	}
	return items, nil
}

func indexItemError(err error, index int) error {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return err
	}
	return shared.NewFieldError(domainErr.Code, fmt.Sprintf("items[%d].%s", index, domainErr.Field), domainErr.Message)
}

func toInvoiceFilter(req ListInvoicesRequest) (invoicing.InvoiceFilter, error) {
	filter := invoicing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
			Search:   strings.TrimSpace(req.Search),
		}.Clamp(),
		ClientID:   req.ClientID,
		BusinessID: req.BusinessID,
	}
	if req.Status != "" {
		status, err := invoicing.ParseStatus(req.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if req.StartDate != "" {
		d, err := ParseDate("start_date", req.StartDate)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &d
	}
	if req.EndDate != "" {
		d, err := ParseDate("end_date", req.EndDate)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &d
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, shared.NewFieldError(invoicing.CodeInvalidDateRange, "end_date", "End date cannot be before start date")
	}
	return filter, nil
}
