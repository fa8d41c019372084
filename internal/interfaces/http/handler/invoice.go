package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoiceflow/backend/internal/application/invoicing"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/invoiceflow/backend/internal/interfaces/http/dto"
)

// InvoiceHandler handles invoice-related API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoicingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoicingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// Create godoc
// @ID           createInvoice
// @Summary      Create a new invoice
// @Description  Create an invoice with its line items in one transaction. Totals are derived server-side.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body invoicingapp.CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} APIResponse[invoicingapp.InvoiceDetailResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req invoicingapp.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), userID, req)
	h.reply(c, http.StatusCreated, invoice, err)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  List the caller's invoices with optional filters, newest issue date first
// @Tags         invoices
// @Produce      json
// @Param        status query string false "Status filter" Enums(draft, sent, paid, overdue, cancelled)
// @Param        client_id query int false "Client ID"
// @Param        business_id query int false "Business ID"
// @Param        start_date query string false "Issued on or after (YYYY-MM-DD)"
// @Param        end_date query string false "Issued on or before (YYYY-MM-DD)"
// @Param        search query string false "Invoice number or notes"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]invoicingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	req := invoicingapp.ListInvoicesRequest{Page: 1, PageSize: shared.DefaultPageSize}
	if !h.bindQuery(c, &req) {
		return
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(invoices, total, req.Page, req.PageSize))
}

// Summary godoc
// @ID           getInvoiceStatusSummary
// @Summary      Count invoices per status
// @Tags         invoices
// @Produce      json
// @Success      200 {object} APIResponse[invoicingapp.StatusSummaryResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/stats/summary [get]
func (h *InvoiceHandler) Summary(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	summary, err := h.invoiceService.Summary(c.Request.Context(), userID)
	h.reply(c, http.StatusOK, summary, err)
}

// GetByID godoc
// @ID           getInvoiceById
// @Summary      Get invoice by ID
// @Description  Retrieve an invoice header together with its line items
// @Tags         invoices
// @Produce      json
// @Param        id path int true "Invoice ID"
// @Success      200 {object} APIResponse[invoicingapp.InvoiceDetailResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	userID, id, ok := h.owned(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Get(c.Request.Context(), userID, id)
	h.reply(c, http.StatusOK, invoice, err)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Update invoice header
// @Description  Change header fields. Omitted fields are kept, items are untouched and totals are recomputed.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path int true "Invoice ID"
// @Param        request body invoicingapp.UpdateInvoiceRequest true "Header changes"
// @Success      200 {object} APIResponse[invoicingapp.InvoiceDetailResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	userID, id, ok := h.owned(c)
	if !ok {
		return
	}

	var req invoicingapp.UpdateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.UpdateHeader(c.Request.Context(), userID, id, req)
	h.reply(c, http.StatusOK, invoice, err)
}

// ReplaceItems godoc
// @ID           replaceInvoiceItems
// @Summary      Replace invoice items
// @Description  Atomically replace every line item of an invoice and recompute totals
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path int true "Invoice ID"
// @Param        request body invoicingapp.ReplaceItemsRequest true "New item set"
// @Success      200 {object} APIResponse[invoicingapp.InvoiceDetailResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/items [put]
func (h *InvoiceHandler) ReplaceItems(c *gin.Context) {
	userID, id, ok := h.owned(c)
	if !ok {
		return
	}

	var req invoicingapp.ReplaceItemsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.ReplaceItems(c.Request.Context(), userID, id, req)
	h.reply(c, http.StatusOK, invoice, err)
}

// UpdateStatus godoc
// @ID           updateInvoiceStatus
// @Summary      Set invoice status
// @Description  Move an invoice to any status in draft, sent, paid, overdue or cancelled
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path int true "Invoice ID"
// @Param        request body invoicingapp.UpdateStatusRequest true "New status"
// @Success      200 {object} APIResponse[invoicingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/status [put]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	userID, id, ok := h.owned(c)
	if !ok {
		return
	}

	var req invoicingapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.UpdateStatus(c.Request.Context(), userID, id, req.Status)
	h.reply(c, http.StatusOK, invoice, err)
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete an invoice
// @Description  Delete an invoice and, by cascade, its line items
// @Tags         invoices
// @Param        id path int true "Invoice ID"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID, id, ok := h.owned(c)
	if !ok {
		return
	}

	err := h.invoiceService.Delete(c.Request.Context(), userID, id)
	h.reply(c, http.StatusNoContent, nil, err)
}
