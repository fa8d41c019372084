package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoiceflow/backend/internal/application/invoicing"
	"github.com/invoiceflow/backend/internal/interfaces/http/dto"
)

// BusinessHandler handles the caller's business profiles
type BusinessHandler struct {
	BaseHandler
	businessService *invoicingapp.BusinessService
}

// NewBusinessHandler creates a new BusinessHandler
func NewBusinessHandler(businessService *invoicingapp.BusinessService) *BusinessHandler {
	return &BusinessHandler{
		businessService: businessService,
	}
}

// Create godoc
// @ID           createBusiness
// @Summary      Create a business profile
// @Tags         businesses
// @Accept       json
// @Produce      json
// @Param        request body invoicingapp.CreateBusinessRequest true "Business profile"
// @Success      201 {object} APIResponse[invoicingapp.BusinessResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /businesses [post]
func (h *BusinessHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req invoicingapp.CreateBusinessRequest
	if !h.bindJSON(c, &req) {
		return
	}

	business, err := h.businessService.Create(c.Request.Context(), userID, req)
	h.reply(c, http.StatusCreated, business, err)
}

// GetByID godoc
// @ID           getBusinessById
// @Summary      Get business profile by ID
// @Tags         businesses
// @Produce      json
// @Param        id path int true "Business ID"
// @Success      200 {object} APIResponse[invoicingapp.BusinessResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /businesses/{id} [get]
func (h *BusinessHandler) GetByID(c *gin.Context) {
	userID, id, ok := h.owned(c)
	if !ok {
		return
	}

	business, err := h.businessService.Get(c.Request.Context(), userID, id)
	h.reply(c, http.StatusOK, business, err)
}

// List godoc
// @ID           listBusinesses
// @Summary      List business profiles
// @Tags         businesses
// @Produce      json
// @Param        search query string false "Name search"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]invoicingapp.BusinessResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /businesses [get]
func (h *BusinessHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	req := dto.DefaultListRequest()
	if !h.bindQuery(c, &req) {
		return
	}

	businesses, err := h.businessService.List(c.Request.Context(), userID, req.Filter())
	h.reply(c, http.StatusOK, businesses, err)
}

// ClientHandler handles the caller's clients
type ClientHandler struct {
	BaseHandler
	clientService *invoicingapp.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *invoicingapp.ClientService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
	}
}

// Create godoc
// @ID           createClient
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body invoicingapp.CreateClientRequest true "Client record"
// @Success      201 {object} APIResponse[invoicingapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req invoicingapp.CreateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), userID, req)
	h.reply(c, http.StatusCreated, client, err)
}

// GetByID godoc
// @ID           getClientById
// @Summary      Get client by ID
// @Tags         clients
// @Produce      json
// @Param        id path int true "Client ID"
// @Success      200 {object} APIResponse[invoicingapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	userID, id, ok := h.owned(c)
	if !ok {
		return
	}

	client, err := h.clientService.Get(c.Request.Context(), userID, id)
	h.reply(c, http.StatusOK, client, err)
}

// List godoc
// @ID           listClients
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        search query string false "Name search"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]invoicingapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	req := dto.DefaultListRequest()
	if !h.bindQuery(c, &req) {
		return
	}

	clients, err := h.clientService.List(c.Request.Context(), userID, req.Filter())
	h.reply(c, http.StatusOK, clients, err)
}

// ProductHandler handles the caller's product catalog
type ProductHandler struct {
	BaseHandler
	productService *invoicingapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *invoicingapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

type productListRequest struct {
	dto.ListRequest
	ActiveOnly bool `form:"active"`
}

// Create godoc
// @ID           createProduct
// @Summary      Create a catalog product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body invoicingapp.CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[invoicingapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req invoicingapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), userID, req)
	h.reply(c, http.StatusCreated, product, err)
}

// GetByID godoc
// @ID           getProductById
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id path int true "Product ID"
// @Success      200 {object} APIResponse[invoicingapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	userID, id, ok := h.owned(c)
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), userID, id)
	h.reply(c, http.StatusOK, product, err)
}

// List godoc
// @ID           listProducts
// @Summary      List catalog products
// @Tags         products
// @Produce      json
// @Param        search query string false "Name or description search"
// @Param        active query bool false "Only active products"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]invoicingapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	req := productListRequest{ListRequest: dto.DefaultListRequest()}
	if !h.bindQuery(c, &req) {
		return
	}

	products, err := h.productService.List(c.Request.Context(), userID, req.Filter(), req.ActiveOnly)
	h.reply(c, http.StatusOK, products, err)
}
