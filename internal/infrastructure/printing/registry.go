package printing

import (
	"fmt"
	"sort"
	"sync"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
)

// TemplateEntry binds a catalog descriptor to its builders
type TemplateEntry struct {
	Descriptor invoicing.TemplateDescriptor
	Preview    PreviewBuilder
	Document   DocumentBuilder
}

// Registry maps template ids to entries
type Registry struct {
	mu        sync.RWMutex
	entries   map[int]TemplateEntry
	defaultID int
}

// NewRegistry creates an empty registry that falls back to defaultID
func NewRegistry(defaultID int) *Registry {
	return &Registry{
		entries:   make(map[int]TemplateEntry),
		defaultID: defaultID,
	}
}

// DefaultRegistry registers the built-in Classic, Modern and Professional templates
func DefaultRegistry() *Registry {
	r := NewRegistry(invoicing.DefaultTemplateID)
	builders := map[int]DocumentBuilder{
		invoicing.TemplateClassic:      NewClassicBuilder(),
		invoicing.TemplateModern:       NewModernBuilder(),
		invoicing.TemplateProfessional: NewProfessionalBuilder(),
	}
	for _, d := range invoicing.BuiltinTemplates() {
		builder := builders[d.ID]
		// built-ins are distinct and complete, so Register cannot fail here
		_ = r.Register(TemplateEntry{
			Descriptor: d,
			Document:   builder,
			Preview:    previewOf(builder),
		})
	}
	return r
}

// Register adds or replaces an entry
func (r *Registry) Register(entry TemplateEntry) error {
	if entry.Descriptor.ID <= 0 {
		return fmt.Errorf("template id must be positive, got %d", entry.Descriptor.ID)
	}
	if entry.Document == nil {
		return fmt.Errorf("template %d has no document builder", entry.Descriptor.ID)
	}
	if entry.Preview == nil {
		entry.Preview = previewOf(entry.Document)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Descriptor.ID] = entry
	return nil
}

// Has reports whether id is registered
func (r *Registry) Has(id int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// Resolve returns the entry for id, or the default entry when id is unknown
func (r *Registry) Resolve(id int) TemplateEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.entries[id]; ok {
		return entry
	}
	return r.entries[r.defaultID]
}

// Descriptors returns the registered descriptors sorted by id
func (r *Registry) Descriptors() []invoicing.TemplateDescriptor {
	r.mu.RLock()
	out := make([]invoicing.TemplateDescriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Descriptor)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// Preview lays out the preview of id. Unknown ids get a placeholder page.
func (r *Registry) Preview(id int) (*Document, error) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return PlaceholderPreview(id), nil
	}
	return entry.Preview()
}

func previewOf(builder DocumentBuilder) PreviewBuilder {
	return func() (*Document, error) {
		return builder.Build(PreviewData())
	}
}
