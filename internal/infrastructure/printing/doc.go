// Package printing turns an invoice snapshot into a paginated PDF.
//
// Rendering happens in two phases. A DocumentBuilder lays the invoice out
// into a Document: pages of positioned blocks measured in millimeters. A
// PDFRenderer then emits the Document as bytes.
//
//   - Registry maps template ids to their preview and document builders
//   - Formatter formats money, quantities and dates from user preferences
//   - GofpdfRenderer draws blocks with gofpdf (default backend)
//   - ChromedpRenderer prints the HTMLEngine output with headless Chrome
//   - ArtifactStorage keeps rendered files on disk or in object storage
//
// Example usage:
//
//	registry := DefaultRegistry()
//	doc, err := registry.Resolve(inv.TemplateID).Document.Build(data)
//	if err != nil {
//	    return err
//	}
//	result, err := NewGofpdfRenderer(nil).Render(ctx, doc)
package printing
