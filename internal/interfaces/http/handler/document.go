package handler

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoiceflow/backend/internal/application/invoicing"
)

// Headers describing a rendered document
const (
	HeaderPageCount   = "X-Page-Count"
	HeaderArchivedURL = "X-Document-URL"
)

// DocumentHandler serves rendered invoice documents
type DocumentHandler struct {
	BaseHandler
	documentService *invoicingapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *invoicingapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// Download godoc
// @ID           downloadInvoiceDocument
// @Summary      Download invoice PDF
// @Description  Render the invoice with its template and return it as a PDF attachment
// @Tags         documents
// @Produce      application/pdf
// @Param        id path int true "Invoice ID"
// @Success      200 {file} binary "PDF file"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/document [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	userID, id, ok := h.owned(c)
	if !ok {
		return
	}

	export, err := h.documentService.Export(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", attachment(export.FileName))
	c.Header(HeaderPageCount, strconv.Itoa(export.PageCount))
	if export.URL != "" {
		c.Header(HeaderArchivedURL, export.URL)
	}
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

// attachment formats a Content-Disposition header, escaping non-ASCII names per RFC 2231
func attachment(fileName string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": fileName}); v != "" {
		return v
	}
	return "attachment"
}
