package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/invoiceflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create inserts the header, then every item bound to the new id, in one transaction.
// Ids are written back onto the aggregate only after commit.
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoicing.Invoice) error {
	if len(inv.Items) == 0 {
		return invoicing.ErrNoItems
	}

	header := models.InvoiceModelFromDomain(inv)
	items := make([]*models.InvoiceItemModel, len(inv.Items))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(header).Error; err != nil {
			return fmt.Errorf("failed to insert invoice header: %w", err)
		}
		for i := range inv.Items {
			items[i] = models.InvoiceItemModelFromDomain(header.ID, &inv.Items[i])
			items[i].ID = 0
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to insert invoice items: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	inv.ID = header.ID
	inv.CreatedAt = header.CreatedAt
	inv.UpdatedAt = header.UpdatedAt
	for i := range inv.Items {
		inv.Items[i].ID = items[i].ID
		inv.Items[i].InvoiceID = header.ID
	}
	return nil
}

// FindByID returns the header without items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id int64) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByIDWithItems returns the header with its items ordered by id
func (r *GormInvoiceRepository) FindByIDWithItems(ctx context.Context, id int64) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	return model.ToDomain(), nil
}

// FindAllForUser lists a user's invoice headers
func (r *GormInvoiceRepository) FindAllForUser(ctx context.Context, userID string, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("user_id = ?", userID), filter)

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "issue_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).Order("id DESC")

	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, nil
}

// CountForUser counts a user's invoices matching the filter
func (r *GormInvoiceRepository) CountForUser(ctx context.Context, userID string, filter invoicing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("user_id = ?", userID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return count, nil
}

// UpdateHeader writes header columns only; items are left untouched
func (r *GormInvoiceRepository) UpdateHeader(ctx context.Context, inv *invoicing.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ?", inv.ID).
		Updates(headerColumns(inv))
	if result.Error != nil {
		return fmt.Errorf("failed to update invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReplaceItems swaps the whole item set and refreshes header totals in one transaction
func (r *GormInvoiceRepository) ReplaceItems(ctx context.Context, inv *invoicing.Invoice) error {
	if len(inv.Items) == 0 {
		return invoicing.ErrNoItems
	}

	items := make([]*models.InvoiceItemModel, len(inv.Items))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ?", inv.ID).
			Updates(map[string]any{
				"subtotal":   inv.Subtotal,
				"tax_amount": inv.TaxAmount,
				"total":      inv.Total,
				"updated_at": updatedAt(inv),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update invoice totals: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete invoice items: %w", err)
		}
		for i := range inv.Items {
			items[i] = models.InvoiceItemModelFromDomain(inv.ID, &inv.Items[i])
			items[i].ID = 0
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to insert invoice items: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i := range inv.Items {
		inv.Items[i].ID = items[i].ID
		inv.Items[i].InvoiceID = inv.ID
	}
	return nil
}

// UpdateStatus sets the status column
func (r *GormInvoiceRepository) UpdateStatus(ctx context.Context, id int64, status invoicing.Status) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update invoice status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the items first, then the header
func (r *GormInvoiceRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete invoice items: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.InvoiceModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete invoice: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// StatusSummary counts a user's invoices per status
func (r *GormInvoiceRepository) StatusSummary(ctx context.Context, userID string) (map[invoicing.Status]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize invoices: %w", err)
	}

	summary := make(map[invoicing.Status]int64, len(invoicing.AllStatuses()))
	for _, s := range invoicing.AllStatuses() {
		summary[s] = 0
	}
	for _, row := range rows {
		summary[invoicing.Status(row.Status)] = row.Count
	}
	return summary, nil
}

// applyFilter applies the invoice filters without ordering or pagination
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(invoice_number) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.BusinessID != nil {
		query = query.Where("business_id = ?", *filter.BusinessID)
	}
	if filter.StartDate != nil {
		query = query.Where("issue_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("issue_date <= ?", *filter.EndDate)
	}
	return query
}

func headerColumns(inv *invoicing.Invoice) map[string]any {
	return map[string]any{
		"invoice_number": inv.InvoiceNumber,
		"business_id":    inv.BusinessID,
		"client_id":      inv.ClientID,
		"issue_date":     inv.IssueDate,
		"due_date":       inv.DueDate,
		"currency":       inv.Currency,
		"subtotal":       inv.Subtotal,
		"tax_rate":       inv.TaxRate,
		"tax_amount":     inv.TaxAmount,
		"discount":       inv.Discount,
		"total":          inv.Total,
		"notes":          inv.Notes,
		"template_id":    inv.TemplateID,
		"updated_at":     updatedAt(inv),
	}
}

func updatedAt(inv *invoicing.Invoice) time.Time {
	if inv.UpdatedAt.IsZero() {
		return time.Now()
	}
	return inv.UpdatedAt
}
