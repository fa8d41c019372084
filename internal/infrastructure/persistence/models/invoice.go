package models

import (
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice header
type InvoiceModel struct {
	BaseModel
	UserID        string             `gorm:"type:varchar(255);not null;index:idx_invoices_user_number,priority:1"`
	InvoiceNumber string             `gorm:"type:varchar(50);not null;index:idx_invoices_user_number,priority:2"`
	BusinessID    int64              `gorm:"not null;index"`
	ClientID      int64              `gorm:"not null;index"`
	IssueDate     time.Time          `gorm:"type:date;not null;index"`
	DueDate       time.Time          `gorm:"type:date;not null"`
	Currency      string             `gorm:"type:varchar(10);not null;default:'USD'"`
	Subtotal      decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	TaxRate       decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount     decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Discount      decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Total         decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Notes         string             `gorm:"type:text"`
	Status        string             `gorm:"type:varchar(20);not null;default:'draft';index"`
	TemplateID    int                `gorm:"not null;default:1"`
	Items         []InvoiceItemModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the header and any loaded items to the aggregate
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		BaseEntity:    m.BaseModel.ToDomain(),
		UserID:        m.UserID,
		InvoiceNumber: m.InvoiceNumber,
		BusinessID:    m.BusinessID,
		ClientID:      m.ClientID,
		IssueDate:     m.IssueDate,
		DueDate:       m.DueDate,
		Currency:      m.Currency,
		Subtotal:      m.Subtotal,
		TaxRate:       m.TaxRate,
		TaxAmount:     m.TaxAmount,
		Discount:      m.Discount,
		Total:         m.Total,
		Notes:         m.Notes,
		Status:        invoicing.Status(m.Status),
		TemplateID:    m.TemplateID,
	}
	if len(m.Items) > 0 {
		inv.Items = make([]invoicing.LineItem, len(m.Items))
		for i := range m.Items {
			inv.Items[i] = *m.Items[i].ToDomain()
		}
	}
	return inv
}

// FromDomain populates the header columns; items are converted separately
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.FromDomainBaseEntity(inv.BaseEntity)
	m.UserID = inv.UserID
	m.InvoiceNumber = inv.InvoiceNumber
	m.BusinessID = inv.BusinessID
	m.ClientID = inv.ClientID
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Currency = inv.Currency
	m.Subtotal = inv.Subtotal
	m.TaxRate = inv.TaxRate
	m.TaxAmount = inv.TaxAmount
	m.Discount = inv.Discount
	m.Total = inv.Total
	m.Notes = inv.Notes
	m.Status = string(inv.Status)
	m.TemplateID = inv.TemplateID
}

// InvoiceModelFromDomain creates a header model from the aggregate
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for a line item
type InvoiceItemModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	InvoiceID   int64           `gorm:"not null;index"`
	ProductID   *int64          `gorm:"index"`
	Description string          `gorm:"type:varchar(255);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the row to a domain LineItem
func (m *InvoiceItemModel) ToDomain() *invoicing.LineItem {
	return &invoicing.LineItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		ProductID:   m.ProductID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
	}
}

// InvoiceItemModelFromDomain binds a line item to invoiceID
func InvoiceItemModelFromDomain(invoiceID int64, item *invoicing.LineItem) *InvoiceItemModel {
	return &InvoiceItemModel{
		ID:          item.ID,
		InvoiceID:   invoiceID,
		ProductID:   item.ProductID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Amount:      item.Amount,
	}
}
