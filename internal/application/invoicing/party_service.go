package invoicing

import (
	"context"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/domain/shared"
)

// BusinessService manages the issuing business profiles of a user
type BusinessService struct {
	repo invoicing.BusinessRepository
}

// NewBusinessService creates a new BusinessService
func NewBusinessService(repo invoicing.BusinessRepository) *BusinessService {
	return &BusinessService{repo: repo}
}

// Create stores a new business profile
func (s *BusinessService) Create(ctx context.Context, userID string, req CreateBusinessRequest) (*BusinessResponse, error) {
	business, err := invoicing.NewBusiness(userID, req.ContactInput.toDomain(), req.Logo, req.DefaultCurrency)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, business); err != nil {
		return nil, err
	}
	response := ToBusinessResponse(business)
	return &response, nil
}

// Get returns a business owned by userID
func (s *BusinessService) Get(ctx context.Context, userID string, id int64) (*BusinessResponse, error) {
	business, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if business.UserID != userID {
		return nil, shared.ErrForbidden
	}
	response := ToBusinessResponse(business)
	return &response, nil
}

// List returns the user's businesses
func (s *BusinessService) List(ctx context.Context, userID string, filter shared.Filter) ([]BusinessResponse, error) {
	businesses, err := s.repo.FindAllForUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]BusinessResponse, len(businesses))
	for i := range businesses {
		out[i] = ToBusinessResponse(&businesses[i])
	}
	return out, nil
}

// ClientService manages the billed clients of a user
type ClientService struct {
	repo invoicing.ClientRepository
}

// NewClientService creates a new ClientService
func NewClientService(repo invoicing.ClientRepository) *ClientService {
	return &ClientService{repo: repo}
}

// Create stores a new client
func (s *ClientService) Create(ctx context.Context, userID string, req CreateClientRequest) (*ClientResponse, error) {
	client, err := invoicing.NewClient(userID, req.ContactInput.toDomain())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, client); err != nil {
		return nil, err
	}
	response := ToClientResponse(client)
	return &response, nil
}

// Get returns a client owned by userID
func (s *ClientService) Get(ctx context.Context, userID string, id int64) (*ClientResponse, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client.UserID != userID {
		return nil, shared.ErrForbidden
	}
	response := ToClientResponse(client)
	return &response, nil
}

// List returns the user's clients
func (s *ClientService) List(ctx context.Context, userID string, filter shared.Filter) ([]ClientResponse, error) {
	clients, err := s.repo.FindAllForUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = ToClientResponse(&clients[i])
	}
	return out, nil
}

// ProductService manages the catalog products line items can reference
type ProductService struct {
	repo invoicing.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(repo invoicing.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// Create stores a new active product
func (s *ProductService) Create(ctx context.Context, userID string, req CreateProductRequest) (*ProductResponse, error) {
	product, err := invoicing.NewProduct(userID, req.Name, req.Description, req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// Get returns a product owned by userID
func (s *ProductService) Get(ctx context.Context, userID string, id int64) (*ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.UserID != userID {
		return nil, shared.ErrForbidden
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List returns the user's products
func (s *ProductService) List(ctx context.Context, userID string, filter shared.Filter, activeOnly bool) ([]ProductResponse, error) {
	products, err := s.repo.FindAllForUser(ctx, userID, filter, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out, nil
}
