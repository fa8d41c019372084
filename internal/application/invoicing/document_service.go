package invoicing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/invoiceflow/backend/internal/infrastructure/printing"
	"github.com/invoiceflow/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ContentTypePDF is the media type of exported documents
const ContentTypePDF = "application/pdf"

// DocumentService renders invoices to PDF
type DocumentService struct {
	invoiceRepo  invoicing.InvoiceRepository
	businessRepo invoicing.BusinessRepository
	clientRepo   invoicing.ClientRepository
	prefsRepo    invoicing.PreferencesRepository
	registry     *printing.Registry
	renderer     printing.PDFRenderer
	storage      printing.ArtifactStorage
	backend      string
	metrics      *telemetry.InvoiceMetrics
	logger       *zap.Logger
}

// DocumentServiceConfig wires a DocumentService
type DocumentServiceConfig struct {
	InvoiceRepo  invoicing.InvoiceRepository
	BusinessRepo invoicing.BusinessRepository
	ClientRepo   invoicing.ClientRepository
	PrefsRepo    invoicing.PreferencesRepository
	Registry     *printing.Registry // defaults to printing.DefaultRegistry()
	Renderer     printing.PDFRenderer
	// Storage archives rendered files; nil disables archiving
	Storage printing.ArtifactStorage
	Backend string
	Metrics *telemetry.InvoiceMetrics
	Logger  *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(cfg DocumentServiceConfig) *DocumentService {
	if cfg.Registry == nil {
		cfg.Registry = printing.DefaultRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &DocumentService{
		invoiceRepo:  cfg.InvoiceRepo,
		businessRepo: cfg.BusinessRepo,
		clientRepo:   cfg.ClientRepo,
		prefsRepo:    cfg.PrefsRepo,
		registry:     cfg.Registry,
		renderer:     cfg.Renderer,
		storage:      cfg.Storage,
		backend:      cfg.Backend,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}
}

// Export lays out and renders an invoice. Missing business or client data
// fails with RELATION_UNRESOLVED before anything is drawn.
func (s *DocumentService) Export(ctx context.Context, userID string, invoiceID int64) (*ExportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "export",
		telemetry.SpanAttrUserID, userID,
		telemetry.SpanAttrInvoiceID, invoiceID,
		telemetry.SpanAttrBackend, s.backend)
	defer span.End()

	inv, err := loadOwnedInvoice(ctx, s.invoiceRepo, userID, invoiceID, true)
	if err != nil {
		return nil, err
	}

	data, err := s.resolve(ctx, userID, inv)
	if err != nil {
		s.logger.Warn("Cannot generate document",
			zap.Int64("invoice_id", inv.ID), zap.Error(err))
		return nil, err
	}

	entry := s.registry.Resolve(inv.TemplateID)
	telemetry.SetAttributes(span, telemetry.SpanAttrTemplateID, entry.Descriptor.ID)

	start := time.Now()
	result, err := s.render(ctx, entry, data)
	s.metrics.RecordRender(ctx, s.backend, entry.Descriptor.ID, time.Since(start), pageCount(result), err)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to render invoice document",
			zap.Int64("invoice_id", inv.ID),
			zap.Int("template_id", entry.Descriptor.ID),
			zap.Error(err),
		)
		return nil, renderFailure(err)
	}

	export := &ExportResult{
		FileName:    inv.FileName("pdf"),
		ContentType: ContentTypePDF,
		Data:        result.PDFData,
		PageCount:   result.PageCount,
	}
	export.URL = s.archive(ctx, userID, export)

	telemetry.SetAttributes(span, telemetry.SpanAttrPageCount, export.PageCount)
	s.logger.Info("Invoice document rendered",
		zap.Int64("invoice_id", inv.ID),
		zap.String("file_name", export.FileName),
		zap.Int("pages", export.PageCount),
		zap.Int("bytes", len(export.Data)),
		zap.Duration("duration", result.RenderDuration),
	)
	return export, nil
}

// resolve gathers the snapshot a layout is built from
func (s *DocumentService) resolve(ctx context.Context, userID string, inv *invoicing.Invoice) (printing.DocumentData, error) {
	business, err := s.businessRepo.FindByIDForUser(ctx, userID, inv.BusinessID)
	if err != nil {
		return printing.DocumentData{}, relationError(err, "business")
	}
	client, err := s.clientRepo.FindByIDForUser(ctx, userID, inv.ClientID)
	if err != nil {
		return printing.DocumentData{}, relationError(err, "client")
	}

	data := printing.DocumentData{
		Invoice:  inv,
		Items:    inv.Items,
		Business: business,
		Client:   client,
		Format:   printing.NewFormatter(s.preferences(ctx, userID)),
	}
	return data, data.Validate()
}

func (s *DocumentService) render(ctx context.Context, entry printing.TemplateEntry, data printing.DocumentData) (*printing.RenderResult, error) {
	doc, err := entry.Document.Build(data)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(ctx, doc)
}

// archive stores the artifact when storage is configured. Failures are
// logged and leave the URL empty; the caller still gets the document.
func (s *DocumentService) archive(ctx context.Context, userID string, export *ExportResult) string {
	if s.storage == nil {
		return ""
	}
	stored, err := s.storage.Store(ctx, &printing.StoreRequest{
		UserID:      userID,
		FileName:    export.FileName,
		ContentType: export.ContentType,
		Data:        export.Data,
	})
	if err != nil {
		s.logger.Warn("Failed to archive invoice document",
			zap.String("file_name", export.FileName), zap.Error(err))
		return ""
	}
	return stored.URL
}

// preferences loads the user's display settings, falling back to defaults
func (s *DocumentService) preferences(ctx context.Context, userID string) invoicing.Preferences {
	if s.prefsRepo == nil {
		return invoicing.DefaultPreferences(userID)
	}
	prefs, err := s.prefsRepo.FindByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Failed to load preferences, using defaults",
				zap.String("user_id", userID), zap.Error(err))
		}
		return invoicing.DefaultPreferences(userID)
	}
	return *prefs
}

// renderFailure tags backend errors with the code the API reports while
// keeping the cause for errors.Is
func renderFailure(err error) error {
	switch printing.ErrorCode(err) {
	case "":
		return err
	case printing.ErrCodeRenderTimeout:
		return fmt.Errorf("%w: %w", invoicing.ErrRenderTimeout, err)
	default:
		return fmt.Errorf("%w: %w", invoicing.ErrRenderFailed, err)
	}
}

func relationError(err error, relation string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return invoicing.NewRelationError(relation)
	}
	return err
}

func pageCount(result *printing.RenderResult) int {
	if result == nil {
		return 0
	}
	return result.PageCount
}
