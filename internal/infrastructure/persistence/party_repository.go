package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/invoiceflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBusinessRepository implements BusinessRepository using GORM
type GormBusinessRepository struct {
	db *gorm.DB
}

var _ invoicing.BusinessRepository = (*GormBusinessRepository)(nil)

// NewGormBusinessRepository creates a new GormBusinessRepository
func NewGormBusinessRepository(db *gorm.DB) *GormBusinessRepository {
	return &GormBusinessRepository{db: db}
}

// FindByID finds a business by its ID regardless of owner
func (r *GormBusinessRepository) FindByID(ctx context.Context, id int64) (*invoicing.Business, error) {
	var model models.BusinessModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "business")
	}
	return model.ToDomain(), nil
}

// FindByIDForUser finds a business owned by userID
func (r *GormBusinessRepository) FindByIDForUser(ctx context.Context, userID string, id int64) (*invoicing.Business, error) {
	var model models.BusinessModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "business")
	}
	return model.ToDomain(), nil
}

// FindAllForUser lists a user's businesses
func (r *GormBusinessRepository) FindAllForUser(ctx context.Context, userID string, filter shared.Filter) ([]invoicing.Business, error) {
	var rows []models.BusinessModel
	query := applyPartyFilter(r.db.WithContext(ctx).Model(&models.BusinessModel{}).Where("user_id = ?", userID), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	out := make([]invoicing.Business, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a business
func (r *GormBusinessRepository) Save(ctx context.Context, business *invoicing.Business) error {
	var model models.BusinessModel
	model.FromDomain(business)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("failed to save business: %w", err)
	}
	business.ID = model.ID
	return nil
}

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

var _ invoicing.ClientRepository = (*GormClientRepository)(nil)

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID regardless of owner
func (r *GormClientRepository) FindByID(ctx context.Context, id int64) (*invoicing.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "client")
	}
	return model.ToDomain(), nil
}

// FindByIDForUser finds a client owned by userID
func (r *GormClientRepository) FindByIDForUser(ctx context.Context, userID string, id int64) (*invoicing.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "client")
	}
	return model.ToDomain(), nil
}

// FindAllForUser lists a user's clients
func (r *GormClientRepository) FindAllForUser(ctx context.Context, userID string, filter shared.Filter) ([]invoicing.Client, error) {
	var rows []models.ClientModel
	query := applyPartyFilter(r.db.WithContext(ctx).Model(&models.ClientModel{}).Where("user_id = ?", userID), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	out := make([]invoicing.Client, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *invoicing.Client) error {
	var model models.ClientModel
	model.FromDomain(client)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("failed to save client: %w", err)
	}
	client.ID = model.ID
	return nil
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

var _ invoicing.ProductRepository = (*GormProductRepository)(nil)

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForUser finds a product owned by userID
func (r *GormProductRepository) FindByIDForUser(ctx context.Context, userID string, id int64) (*invoicing.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "product")
	}
	return model.ToDomain(), nil
}

// FindByID finds a product by its ID regardless of owner
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*invoicing.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "product")
	}
	return model.ToDomain(), nil
}

// FindAllForUser lists a user's products, searching name and description
func (r *GormProductRepository) FindAllForUser(ctx context.Context, userID string, filter shared.Filter, activeOnly bool) ([]invoicing.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	orderDir := "ASC"
	if filter.OrderBy != "" {
		orderDir = ValidateSortOrder(filter.OrderDir)
	}
	query = query.Order(ValidateSortField(filter.OrderBy, ProductSortFields, "name") + " " + orderDir)
	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	out := make([]invoicing.Product, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *invoicing.Product) error {
	var model models.ProductModel
	model.FromDomain(product)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	product.ID = model.ID
	return nil
}

func applyPartyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	orderBy := ValidateSortField(filter.OrderBy, PartySortFields, "name")
	orderDir := "ASC"
	if filter.OrderBy != "" {
		orderDir = ValidateSortOrder(filter.OrderDir)
	}
	query = query.Order(orderBy + " " + orderDir)
	if filter.Paged() {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// notFoundOr maps gorm.ErrRecordNotFound to shared.ErrNotFound and wraps anything else
func notFoundOr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return fmt.Errorf("failed to load %s: %w", entity, err)
}
