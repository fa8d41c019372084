package invoicing

import (
	"sort"
	"strings"

	"github.com/invoiceflow/backend/internal/domain/shared"
)

// Built-in template identifiers
const (
	TemplateClassic      = 1
	TemplateModern       = 2
	TemplateProfessional = 3

	// DefaultTemplateID is used for new invoices and as the render fallback
	DefaultTemplateID = TemplateClassic
)

// PaperSize is the physical page format of a template
type PaperSize string

const (
	PaperSizeA4 PaperSize = "A4" // 210mm x 297mm
)

// Dimensions returns width and height in millimeters
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperSizeA4:
		return 210, 297
	default:
		return 210, 297
	}
}

// TemplateDescriptor is the catalog view of an invoice template
type TemplateDescriptor struct {
	ID        int
	Name      string
	IsDefault bool
	IsSystem  bool
	PaperSize PaperSize
}

// NewTemplateDescriptor validates a catalog entry
func NewTemplateDescriptor(id int, name string, isDefault, isSystem bool) (*TemplateDescriptor, error) {
	if id <= 0 {
		return nil, shared.NewFieldError(shared.ErrInvalidInput.Code, "id", "Template id must be positive")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewFieldError(CodeInvalidName, "name", "Template name is required")
	}
	return &TemplateDescriptor{
		ID:        id,
		Name:      name,
		IsDefault: isDefault,
		IsSystem:  isSystem,
		PaperSize: PaperSizeA4,
	}, nil
}

// BuiltinTemplates returns the system templates shipped with the service
func BuiltinTemplates() []TemplateDescriptor {
	return []TemplateDescriptor{
		{ID: TemplateClassic, Name: "Classic", IsDefault: true, IsSystem: true, PaperSize: PaperSizeA4},
		{ID: TemplateModern, Name: "Modern", IsSystem: true, PaperSize: PaperSizeA4},
		{ID: TemplateProfessional, Name: "Professional", IsSystem: true, PaperSize: PaperSizeA4},
	}
}

// SortTemplates orders descriptors by id
func SortTemplates(templates []TemplateDescriptor) {
	sort.Slice(templates, func(a, b int) bool { return templates[a].ID < templates[b].ID })
}
