package models

import (
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
)

// InvoiceTemplateModel is a row of the template catalog
type InvoiceTemplateModel struct {
	ID        int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"type:varchar(100);not null"`
	IsDefault bool      `gorm:"not null;default:false"`
	IsSystem  bool      `gorm:"not null;default:false"`
	PaperSize string    `gorm:"type:varchar(20);not null;default:'A4'"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceTemplateModel) TableName() string {
	return "invoice_templates"
}

// ToDomain converts the row to a descriptor
func (m *InvoiceTemplateModel) ToDomain() invoicing.TemplateDescriptor {
	return invoicing.TemplateDescriptor{
		ID:        m.ID,
		Name:      m.Name,
		IsDefault: m.IsDefault,
		IsSystem:  m.IsSystem,
		PaperSize: invoicing.PaperSize(m.PaperSize),
	}
}

// InvoiceTemplateModelFromDomain converts a descriptor to a row
func InvoiceTemplateModelFromDomain(d invoicing.TemplateDescriptor) *InvoiceTemplateModel {
	return &InvoiceTemplateModel{
		ID:        d.ID,
		Name:      d.Name,
		IsDefault: d.IsDefault,
		IsSystem:  d.IsSystem,
		PaperSize: string(d.PaperSize),
	}
}
