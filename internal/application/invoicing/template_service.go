package invoicing

import (
	"context"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/infrastructure/cache"
	"github.com/invoiceflow/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// TemplateService serves the template catalog and HTML previews
type TemplateService struct {
	repo     invoicing.TemplateRepository
	cache    cache.TemplateCatalogCache
	registry *printing.Registry
	engine   *printing.HTMLEngine
	logger   *zap.Logger
}

// NewTemplateService creates a new TemplateService. cache may be nil.
func NewTemplateService(
	repo invoicing.TemplateRepository,
	catalogCache cache.TemplateCatalogCache,
	registry *printing.Registry,
	engine *printing.HTMLEngine,
	logger *zap.Logger,
) *TemplateService {
	if registry == nil {
		registry = printing.DefaultRegistry()
	}
	if engine == nil {
		engine = printing.NewHTMLEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{
		repo:     repo,
		cache:    catalogCache,
		registry: registry,
		engine:   engine,
		logger:   logger,
	}
}

// List returns the persisted catalog. An empty catalog or a read failure
// yields the built-in templates; the result is never empty.
func (s *TemplateService) List(ctx context.Context) ([]TemplateResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("Template catalog cache read failed", zap.Error(err))
		} else if cached != nil {
			return ToTemplateResponses(cached), nil
		}
	}

	templates, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Warn("Failed to load template catalog, using built-in templates", zap.Error(err))
		return ToTemplateResponses(invoicing.BuiltinTemplates()), nil
	}
	if len(templates) == 0 {
		templates = invoicing.BuiltinTemplates()
	}
	invoicing.SortTemplates(templates)

	if s.cache != nil {
		if err := s.cache.Set(ctx, templates); err != nil {
			s.logger.Warn("Template catalog cache write failed", zap.Error(err))
		}
	}
	return ToTemplateResponses(templates), nil
}

// Preview renders the miniature HTML preview of a template.
// Unknown ids render a placeholder page.
func (s *TemplateService) Preview(_ context.Context, id int) (string, error) {
	doc, err := s.registry.Preview(id)
	if err != nil {
		return "", err
	}
	return s.engine.RenderPreview(doc)
}
