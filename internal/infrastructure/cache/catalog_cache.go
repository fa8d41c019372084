// Package cache holds read-through caches in front of the database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
)

// DefaultCatalogTTL is how long a template catalog stays cached
const DefaultCatalogTTL = 10 * time.Minute

// TemplateCatalogCache caches the invoice template catalog.
// Get returns a nil slice and no error on a miss.
type TemplateCatalogCache interface {
	Get(ctx context.Context) ([]invoicing.TemplateDescriptor, error)
	Set(ctx context.Context, templates []invoicing.TemplateDescriptor) error
	Invalidate(ctx context.Context) error
}

// cachedTemplate is the serialized form of a catalog entry
type cachedTemplate struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
	IsSystem  bool   `json:"is_system"`
	PaperSize string `json:"paper_size,omitempty"`
}

func encodeCatalog(templates []invoicing.TemplateDescriptor) ([]byte, error) {
	out := make([]cachedTemplate, len(templates))
	for i, t := range templates {
		out[i] = cachedTemplate{
			ID:        t.ID,
			Name:      t.Name,
			IsDefault: t.IsDefault,
			IsSystem:  t.IsSystem,
			PaperSize: string(t.PaperSize),
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode template catalog: %w", err)
	}
	return data, nil
}

func decodeCatalog(data []byte) ([]invoicing.TemplateDescriptor, error) {
	var in []cachedTemplate
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode template catalog: %w", err)
	}
	out := make([]invoicing.TemplateDescriptor, len(in))
	for i, t := range in {
		out[i] = invoicing.TemplateDescriptor{
			ID:        t.ID,
			Name:      t.Name,
			IsDefault: t.IsDefault,
			IsSystem:  t.IsSystem,
			PaperSize: invoicing.PaperSize(t.PaperSize),
		}
	}
	return out, nil
}
