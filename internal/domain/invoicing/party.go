package invoicing

import (
	"strings"

	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Contact carries the identity and address block shared by businesses and clients
type Contact struct {
	Name      string
	Email     string
	Phone     string
	Address   string // may span several lines
	TaxNumber string
}

// AddressLines splits the address into non-empty lines
func (c Contact) AddressLines() []string {
	if c.Address == "" {
		return nil
	}
	raw := strings.Split(strings.ReplaceAll(c.Address, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Business is the issuing profile of an invoice
type Business struct {
	shared.BaseEntity
	UserID string
	Contact
	Logo            string
	DefaultCurrency string
}

// NewBusiness creates a business profile for userID
func NewBusiness(userID string, contact Contact, logo, defaultCurrency string) (*Business, error) {
	if err := validateContact(contact); err != nil {
		return nil, err
	}
	if logo != "" && !IsInlineImage(logo) {
		return nil, shared.NewFieldError(CodeInvalidLogo, "logo", "Logo must be a data:image URL")
	}
	contact.Name = strings.TrimSpace(contact.Name)
	return &Business{
		BaseEntity:      shared.NewBaseEntity(),
		UserID:          userID,
		Contact:         contact,
		Logo:            logo,
		DefaultCurrency: NormalizeCurrency(defaultCurrency),
	}, nil
}

// IsInlineImage reports whether src is a data:image URL. Logos are never read from paths or fetched.
func IsInlineImage(src string) bool {
	return strings.HasPrefix(src, "data:image/")
}

// Client is the billed party of an invoice
type Client struct {
	shared.BaseEntity
	UserID string
	Contact
}

// NewClient creates a client record for userID
func NewClient(userID string, contact Contact) (*Client, error) {
	if err := validateContact(contact); err != nil {
		return nil, err
	}
	contact.Name = strings.TrimSpace(contact.Name)
	return &Client{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Contact:    contact,
	}, nil
}

// Product is a catalog entry optionally referenced by a line item
type Product struct {
	shared.BaseEntity
	UserID      string
	Name        string
	Description string
	Price       decimal.Decimal
	IsActive    bool
}

// NewProduct creates an active catalog entry for userID. Prices are stored with two decimals.
func NewProduct(userID, name, description string, price decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewFieldError(CodeInvalidName, "name", "Name is required")
	}
	if price.IsNegative() {
		return nil, shared.NewFieldError(CodeInvalidPrice, "price", "Price must be non-negative")
	}
	if exceedsScale(price, MoneyScale) {
		return nil, shared.NewFieldError(CodeInvalidPrice, "price", "Price cannot have more than 2 decimal places")
	}
	return &Product{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Price:       price,
		IsActive:    true,
	}, nil
}

func validateContact(c Contact) error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.NewFieldError(CodeInvalidName, "name", "Name is required")
	}
	return nil
}
