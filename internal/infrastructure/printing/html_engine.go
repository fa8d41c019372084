package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
)

const (
	// PreviewScale is the zoom applied to template previews
	PreviewScale = 0.5
	// fontAscent approximates the distance from the top of a line box to the baseline
	fontAscent = 0.8
)

// HTMLEngine renders a laid-out Document as absolutely positioned HTML.
// The output feeds the chromedp backend and the template preview endpoint.
type HTMLEngine struct {
	tmpl *template.Template
}

// HTMLEngineOption configures the engine
type HTMLEngineOption func(*HTMLEngine)

// WithPageTemplate replaces the built-in page template.
// The template receives an htmlDocument and must define "document".
func WithPageTemplate(tmpl *template.Template) HTMLEngineOption {
	return func(e *HTMLEngine) {
		e.tmpl = tmpl
	}
}

// NewHTMLEngine creates an engine with the built-in page template
func NewHTMLEngine(opts ...HTMLEngineOption) *HTMLEngine {
	e := &HTMLEngine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.tmpl == nil {
		e.tmpl = template.Must(template.New("document").Funcs(template.FuncMap{
			"lines": func(s string) []string { return strings.Split(s, "\n") },
		}).Parse(documentTemplate))
	}
	return e
}

// RenderDocument renders every page of doc at the given scale
func (e *HTMLEngine) RenderDocument(doc *Document, scale float64) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	if scale <= 0 {
		scale = 1
	}

	view := htmlDocument{
		Title:  doc.Title,
		Width:  mm(doc.Width * scale),
		Height: mm(doc.Height * scale),
		Inner:  template.CSS(fmt.Sprintf("width:%s;height:%s;transform:scale(%g);transform-origin:top left", mm(doc.Width), mm(doc.Height), scale)),
		Scale:  scale,
	}
	for _, p := range doc.Pages {
		page := htmlPage{Number: p.Number}
		for i := range p.Blocks {
			page.Blocks = append(page.Blocks, toHTMLBlock(doc, &p.Blocks[i]))
		}
		view.Pages = append(view.Pages, page)
	}

	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, "document", view); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute page template", err)
	}
	return buf.String(), nil
}

// RenderPreview renders a template preview as a miniature
func (e *HTMLEngine) RenderPreview(doc *Document) (string, error) {
	return e.RenderDocument(doc, PreviewScale)
}

type htmlDocument struct {
	Title  string
	Width  string
	Height string
	Inner  template.CSS
	Scale  float64
	Pages  []htmlPage
}

type htmlPage struct {
	Number int
	Blocks []htmlBlock
}

type htmlBlock struct {
	Kind  BlockKind
	Role  string
	Style template.CSS
	Text  string
	Image template.URL
	Cells []htmlCell
}

type htmlCell struct {
	Style template.CSS
	Text  string
}

func toHTMLBlock(doc *Document, b *Block) htmlBlock {
	out := htmlBlock{Kind: b.Kind, Role: b.Role, Text: b.Text}
	switch b.Kind {
	case BlockText:
		out.Style = textStyle(doc, b.X, b.Y, b.Align, b)
	case BlockRect:
		out.Style = template.CSS(boxStyle(b.X, b.Y, b.W, b.H) + fillStyle(b))
	case BlockLine:
		out.Style = template.CSS(lineStyle(b))
	case BlockTableRow:
		out.Style = template.CSS(boxStyle(b.X, b.Y, b.W, b.H) + fontStyle(b))
		for _, c := range b.Cells {
			cell := Block{FillColor: b.FillColor, DrawColor: b.DrawColor, LineWidth: b.LineWidth}
			out.Cells = append(out.Cells, htmlCell{
				Style: template.CSS(boxStyle(c.X-b.X, 0, c.W, b.H) + fillStyle(&cell) +
					fmt.Sprintf("padding:%s 2mm;box-sizing:border-box;text-align:%s;", mm(cellPadding/2), cssAlign(c.Align))),
				Text: c.Text,
			})
		}
	case BlockImage:
		if invoicing.IsInlineImage(b.Source) {
			out.Image = template.URL(b.Source)
			out.Style = template.CSS(boxStyle(b.X, b.Y, b.W, b.H) + "object-fit:contain;")
		} else {
			// no inline image; draw the fallback text like the PDF backend does
			out.Kind = BlockText
			out.Style = textStyle(doc, b.X, b.Y+b.H/2, AlignLeft, b)
		}
	}
	return out
}

func textStyle(doc *Document, x, baseline float64, align Align, b *Block) template.CSS {
	top := baseline - b.FontSize*ptToMM*fontAscent
	pos := fmt.Sprintf("position:absolute;top:%s;white-space:pre;", mm(top))
	switch align {
	case AlignRight:
		pos += fmt.Sprintf("right:%s;", mm(doc.Width-x))
	case AlignCenter:
		pos += fmt.Sprintf("left:%s;transform:translateX(-50%%);", mm(x))
	default:
		pos += fmt.Sprintf("left:%s;", mm(x))
	}
	return template.CSS(pos + fontStyle(b))
}

func boxStyle(x, y, w, h float64) string {
	return fmt.Sprintf("position:absolute;left:%s;top:%s;width:%s;height:%s;", mm(x), mm(y), mm(w), mm(h))
}

func fillStyle(b *Block) string {
	var s string
	if b.FillColor != nil {
		s += "background:" + cssColor(*b.FillColor) + ";"
	}
	if b.DrawColor != nil {
		s += fmt.Sprintf("border:%s solid %s;box-sizing:border-box;", mm(lineWidthOr(b.LineWidth, 0.2)), cssColor(*b.DrawColor))
	}
	return s
}

func lineStyle(b *Block) string {
	color := ColorBlack
	if b.DrawColor != nil {
		color = *b.DrawColor
	}
	width := lineWidthOr(b.LineWidth, 0.2)
	if b.H == 0 {
		return boxStyle(b.X, b.Y-width/2, b.W, width) + "background:" + cssColor(color) + ";"
	}
	return boxStyle(b.X-width/2, b.Y, width, b.H) + "background:" + cssColor(color) + ";"
}

func fontStyle(b *Block) string {
	s := fmt.Sprintf("font-size:%gpt;color:%s;", b.FontSize, cssColor(b.TextColor))
	switch b.FontStyle {
	case FontBold:
		s += "font-weight:bold;"
	case FontItalic:
		s += "font-style:italic;"
	}
	return s
}

func cssAlign(a Align) string {
	switch a {
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	default:
		return "left"
	}
}

func cssColor(c Color) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

func mm(v float64) string {
	return fmt.Sprintf("%.2fmm", v)
}

const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; background: #e5e5e5; font-family: Helvetica, Arial, sans-serif; }
.sheet { position: relative; overflow: hidden; background: #fff; margin: 0 auto 8px; }
.page { position: relative; }
@media print { body { background: none; } .sheet { margin: 0; page-break-after: always; } }
</style>
</head>
<body>
{{- range .Pages}}
<div class="sheet" data-page="{{.Number}}" style="width:{{$.Width}};height:{{$.Height}}">
<div class="page" style="{{$.Inner}}">
{{- range .Blocks}}
{{- if eq .Kind "table-row"}}
<div class="block {{.Kind}}" data-role="{{.Role}}" style="{{.Style}}">
{{- range .Cells}}<div style="{{.Style}}">{{range $i, $l := lines .Text}}{{if $i}}<br>{{end}}{{$l}}{{end}}</div>{{end -}}
</div>
{{- else if eq .Kind "image"}}
<img class="block image" data-role="{{.Role}}" style="{{.Style}}" src="{{.Image}}" alt="{{.Text}}">
{{- else}}
<div class="block {{.Kind}}" data-role="{{.Role}}" style="{{.Style}}">{{.Text}}</div>
{{- end}}
{{- end}}
</div>
</div>
{{- end}}
</body>
</html>
`
