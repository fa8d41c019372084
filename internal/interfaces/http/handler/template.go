package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoiceflow/backend/internal/application/invoicing"
	"github.com/invoiceflow/backend/internal/interfaces/http/dto"
)

// TemplateHandler handles the invoice template catalog
type TemplateHandler struct {
	BaseHandler
	templateService *invoicingapp.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templateService *invoicingapp.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
	}
}

// List godoc
// @ID           listInvoiceTemplates
// @Summary      List invoice templates
// @Description  List the template catalog. The built-in templates are returned when the catalog is empty or unavailable.
// @Tags         templates
// @Produce      json
// @Success      200 {object} APIResponse[[]invoicingapp.TemplateResponse]
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoice-templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templateService.List(c.Request.Context())
	h.reply(c, http.StatusOK, templates, err)
}

// Preview godoc
// @ID           previewInvoiceTemplate
// @Summary      Preview an invoice template
// @Description  Render sample data with the template as HTML. Unknown ids produce a placeholder page.
// @Tags         templates
// @Produce      text/html
// @Param        id path int true "Template ID"
// @Success      200 {string} string "HTML preview"
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoice-templates/{id}/preview [get]
func (h *TemplateHandler) Preview(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid template id format")
		return
	}

	html, err := h.templateService.Preview(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
