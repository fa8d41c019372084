package invoicing

import (
	"context"
	"time"

	"github.com/invoiceflow/backend/internal/domain/shared"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	shared.Filter
	Status     *Status
	ClientID   *int64
	BusinessID *int64
	StartDate  *time.Time // inclusive, on issue date
	EndDate    *time.Time // inclusive, on issue date
}

// InvoiceRepository persists invoices together with their items
type InvoiceRepository interface {
	// Create inserts the header and all items in one transaction
	Create(ctx context.Context, invoice *Invoice) error

	// FindByID returns the header without items
	FindByID(ctx context.Context, id int64) (*Invoice, error)

	// FindByIDWithItems returns the header and its items ordered by id
	FindByIDWithItems(ctx context.Context, id int64) (*Invoice, error)

	// FindAllForUser lists a user's invoices, newest issue date first
	FindAllForUser(ctx context.Context, userID string, filter InvoiceFilter) ([]Invoice, error)

	// CountForUser counts a user's invoices matching the filter
	CountForUser(ctx context.Context, userID string, filter InvoiceFilter) (int64, error)

	// UpdateHeader writes header columns only
	UpdateHeader(ctx context.Context, invoice *Invoice) error

	// ReplaceItems deletes the current items, inserts the new set and updates header totals
	ReplaceItems(ctx context.Context, invoice *Invoice) error

	// UpdateStatus sets the status column
	UpdateStatus(ctx context.Context, id int64, status Status) error

	// Delete removes the items and then the header
	Delete(ctx context.Context, id int64) error

	// StatusSummary counts a user's invoices per status
	StatusSummary(ctx context.Context, userID string) (map[Status]int64, error)
}

// BusinessRepository persists business profiles
type BusinessRepository interface {
	FindByID(ctx context.Context, id int64) (*Business, error)
	FindByIDForUser(ctx context.Context, userID string, id int64) (*Business, error)
	FindAllForUser(ctx context.Context, userID string, filter shared.Filter) ([]Business, error)
	Save(ctx context.Context, business *Business) error
}

// ClientRepository persists clients
type ClientRepository interface {
	FindByID(ctx context.Context, id int64) (*Client, error)
	FindByIDForUser(ctx context.Context, userID string, id int64) (*Client, error)
	FindAllForUser(ctx context.Context, userID string, filter shared.Filter) ([]Client, error)
	Save(ctx context.Context, client *Client) error
}

// ProductRepository persists the catalog products line items may reference
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindByIDForUser(ctx context.Context, userID string, id int64) (*Product, error)
	// FindAllForUser lists a user's products; activeOnly hides retired entries
	FindAllForUser(ctx context.Context, userID string, filter shared.Filter, activeOnly bool) ([]Product, error)
	Save(ctx context.Context, product *Product) error
}

// TemplateRepository reads the persisted template catalog
type TemplateRepository interface {
	FindAll(ctx context.Context) ([]TemplateDescriptor, error)
}

// PreferencesRepository stores per-user preferences
type PreferencesRepository interface {
	// FindByUser returns shared.ErrNotFound when nothing is stored
	FindByUser(ctx context.Context, userID string) (*Preferences, error)
	Save(ctx context.Context, prefs *Preferences) error
}
