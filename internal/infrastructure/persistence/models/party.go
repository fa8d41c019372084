package models

import (
	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// ContactColumns are the identity and address columns shared by businesses and clients
type ContactColumns struct {
	Name      string `gorm:"type:varchar(200);not null"`
	Email     string `gorm:"type:varchar(200)"`
	Phone     string `gorm:"type:varchar(50)"`
	Address   string `gorm:"type:text"`
	TaxNumber string `gorm:"type:varchar(50)"`
}

func (c ContactColumns) toDomain() invoicing.Contact {
	return invoicing.Contact{
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		TaxNumber: c.TaxNumber,
	}
}

func contactColumnsFromDomain(c invoicing.Contact) ContactColumns {
	return ContactColumns{
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		TaxNumber: c.TaxNumber,
	}
}

// BusinessModel is the persistence model for a business profile
type BusinessModel struct {
	OwnedModel
	ContactColumns  `gorm:"embedded"`
	Logo            string `gorm:"type:text"`
	DefaultCurrency string `gorm:"type:varchar(10);not null;default:'USD'"`
}

// TableName returns the table name for GORM
func (BusinessModel) TableName() string {
	return "businesses"
}

// ToDomain converts the persistence model to a domain Business
func (m *BusinessModel) ToDomain() *invoicing.Business {
	return &invoicing.Business{
		BaseEntity:      m.BaseModel.ToDomain(),
		UserID:          m.UserID,
		Contact:         m.ContactColumns.toDomain(),
		Logo:            m.Logo,
		DefaultCurrency: m.DefaultCurrency,
	}
}

// FromDomain populates the persistence model from a domain Business
func (m *BusinessModel) FromDomain(b *invoicing.Business) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.UserID = b.UserID
	m.ContactColumns = contactColumnsFromDomain(b.Contact)
	m.Logo = b.Logo
	m.DefaultCurrency = b.DefaultCurrency
}

// ClientModel is the persistence model for a client
type ClientModel struct {
	OwnedModel
	ContactColumns `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client
func (m *ClientModel) ToDomain() *invoicing.Client {
	return &invoicing.Client{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		Contact:    m.ContactColumns.toDomain(),
	}
}

// FromDomain populates the persistence model from a domain Client
func (m *ClientModel) FromDomain(c *invoicing.Client) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.UserID = c.UserID
	m.ContactColumns = contactColumnsFromDomain(c.Contact)
}

// ProductModel is the persistence model for a catalog product
type ProductModel struct {
	OwnedModel
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IsActive    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *invoicing.Product {
	return &invoicing.Product{
		BaseEntity:  m.BaseModel.ToDomain(),
		UserID:      m.UserID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		IsActive:    m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *invoicing.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.UserID = p.UserID
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price
	m.IsActive = p.IsActive
}
