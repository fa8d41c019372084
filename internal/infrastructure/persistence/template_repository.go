package persistence

import (
	"context"
	"fmt"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTemplateRepository reads the invoice_templates catalog
type GormTemplateRepository struct {
	db *gorm.DB
}

var _ invoicing.TemplateRepository = (*GormTemplateRepository)(nil)

// NewGormTemplateRepository creates a new GormTemplateRepository
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// FindAll returns every catalog row ordered by id
func (r *GormTemplateRepository) FindAll(ctx context.Context) ([]invoicing.TemplateDescriptor, error) {
	var rows []models.InvoiceTemplateModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoice templates: %w", err)
	}
	out := make([]invoicing.TemplateDescriptor, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// SeedBuiltins inserts the system templates, leaving existing rows alone
func (r *GormTemplateRepository) SeedBuiltins(ctx context.Context) error {
	builtins := invoicing.BuiltinTemplates()
	rows := make([]*models.InvoiceTemplateModel, len(builtins))
	for i, d := range builtins {
		rows[i] = models.InvoiceTemplateModelFromDomain(d)
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to seed invoice templates: %w", err)
	}
	return nil
}
