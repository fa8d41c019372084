package printing

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

const fontFamily = "Helvetica"

// GofpdfConfig contains configuration for the gofpdf renderer
type GofpdfConfig struct {
	// Creator is written to the PDF metadata
	Creator string
	// Logger for debug output
	Logger *zap.Logger
}

// GofpdfRenderer draws documents with the core PDF fonts
type GofpdfRenderer struct {
	config *GofpdfConfig
	logger *zap.Logger
}

var _ PDFRenderer = (*GofpdfRenderer)(nil)

// NewGofpdfRenderer creates a gofpdf-backed renderer
func NewGofpdfRenderer(config *GofpdfConfig) *GofpdfRenderer {
	if config == nil {
		config = &GofpdfConfig{}
	}
	if config.Creator == "" {
		config.Creator = "InvoiceFlow"
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GofpdfRenderer{config: config, logger: logger}
}

// Render draws every block of every page
func (r *GofpdfRenderer) Render(ctx context.Context, doc *Document) (*RenderResult, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: doc.Width, Ht: doc.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetAuthor(doc.Author, true)
	pdf.SetSubject("Invoice", true)
	pdf.SetCreator(r.config.Creator, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
		}
		pdf.AddPage()
		for i := range page.Blocks {
			r.drawBlock(pdf, tr, &page.Blocks[i])
		}
		if pdf.Err() {
			return nil, NewRenderError(ErrCodeRenderFailed,
				fmt.Sprintf("failed to draw page %d", page.Number), pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to write PDF", err)
	}

	duration := time.Since(start)
	r.logger.Debug("PDF rendered with gofpdf",
		zap.Int("bytes", buf.Len()),
		zap.Int("pages", doc.PageCount()),
		zap.Duration("duration", duration))

	return &RenderResult{
		PDFData:        buf.Bytes(),
		PageCount:      doc.PageCount(),
		RenderDuration: duration,
	}, nil
}

// Close is a no-op; gofpdf holds no external resources
func (r *GofpdfRenderer) Close() error {
	return nil
}

func (r *GofpdfRenderer) drawBlock(pdf *gofpdf.Fpdf, tr func(string) string, b *Block) {
	switch b.Kind {
	case BlockText:
		drawText(pdf, tr, b.Text, b.X, b.Y, b.Align, b.FontSize, b.FontStyle, b.TextColor)
	case BlockRect:
		drawRect(pdf, b)
	case BlockLine:
		if b.DrawColor != nil {
			pdf.SetDrawColor(b.DrawColor.R, b.DrawColor.G, b.DrawColor.B)
		}
		pdf.SetLineWidth(lineWidthOr(b.LineWidth, 0.2))
		pdf.Line(b.X, b.Y, b.X+b.W, b.Y+b.H)
	case BlockTableRow:
		drawRow(pdf, tr, b)
	case BlockImage:
		if !r.drawImage(pdf, b) {
			drawText(pdf, tr, b.Text, b.X, b.Y+b.H/2, AlignLeft, b.FontSize, b.FontStyle, b.TextColor)
		}
	}
}

func drawText(pdf *gofpdf.Fpdf, tr func(string) string, text string, x, y float64, align Align, size float64, style FontStyle, color Color) {
	if text == "" {
		return
	}
	pdf.SetFont(fontFamily, string(style), size)
	pdf.SetTextColor(color.R, color.G, color.B)
	s := tr(text)
	switch align {
	case AlignRight:
		x -= pdf.GetStringWidth(s)
	case AlignCenter:
		x -= pdf.GetStringWidth(s) / 2
	}
	pdf.Text(x, y, s)
}

func drawRect(pdf *gofpdf.Fpdf, b *Block) {
	style := ""
	if b.FillColor != nil {
		pdf.SetFillColor(b.FillColor.R, b.FillColor.G, b.FillColor.B)
		style += "F"
	}
	if b.DrawColor != nil {
		pdf.SetDrawColor(b.DrawColor.R, b.DrawColor.G, b.DrawColor.B)
		pdf.SetLineWidth(lineWidthOr(b.LineWidth, 0.2))
		style += "D"
	}
	if style == "" {
		style = "D"
	}
	pdf.Rect(b.X, b.Y, b.W, b.H, style)
}

func drawRow(pdf *gofpdf.Fpdf, tr func(string) string, b *Block) {
	for _, cell := range b.Cells {
		cellBlock := Block{X: cell.X, Y: b.Y, W: cell.W, H: b.H, FillColor: b.FillColor, DrawColor: b.DrawColor, LineWidth: b.LineWidth}
		drawRect(pdf, &cellBlock)

		lines := strings.Split(cell.Text, "\n")
		baseline := b.Y + cellPadding/2 + rowLineHeight*0.75
		for _, line := range lines {
			x := cell.X + 2
			switch cell.Align {
			case AlignRight:
				x = cell.X + cell.W - 2
			case AlignCenter:
				x = cell.X + cell.W/2
			}
			drawText(pdf, tr, line, x, baseline, cell.Align, b.FontSize, b.FontStyle, b.TextColor)
			baseline += rowLineHeight
		}
	}
}

// drawImage registers and places a logo. It reports false when the source cannot be decoded,
// leaving the pdf error state untouched.
func (r *GofpdfRenderer) drawImage(pdf *gofpdf.Fpdf, b *Block) bool {
	data, err := loadImageSource(b.Source)
	if err != nil {
		r.logger.Debug("logo unavailable, drawing fallback text", zap.Error(err))
		return false
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		r.logger.Debug("logo could not be decoded", zap.Error(err))
		return false
	}

	imageType := strings.ToUpper(format)
	if imageType == "JPEG" {
		imageType = "JPG"
	}
	name := fmt.Sprintf("logo-%p", b)
	opts := gofpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if pdf.Err() {
		return false
	}
	pdf.ImageOptions(name, b.X, b.Y, b.W, b.H, false, opts, 0, "")
	return true
}

// loadImageSource decodes an inline data:image URL. Anything else is refused.
func loadImageSource(src string) ([]byte, error) {
	if !invoicing.IsInlineImage(src) {
		return nil, fmt.Errorf("unsupported image source")
	}
	return dataURLToBytes(src)
}

// dataURLToBytes converts a base64 data URL to bytes
func dataURLToBytes(dataURL string) ([]byte, error) {
	idx := strings.Index(dataURL, ",")
	if idx == -1 {
		return nil, fmt.Errorf("invalid data URL format")
	}
	return base64.StdEncoding.DecodeString(dataURL[idx+1:])
}

func lineWidthOr(w, fallback float64) float64 {
	if w <= 0 {
		return fallback
	}
	return w
}
