package printing

import (
	"strings"
	"unicode/utf8"
)

// Page geometry in millimeters
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	MarginLeft   = 15.0
	MarginRight  = 195.0
	MarginTop    = 20.0
	BottomLimit  = 270.0
	FooterY      = 287.0
	lineHeight   = 7.0
	ptToMM       = 0.3528
	avgGlyphRate = 0.5
)

// BlockKind identifies how a block is drawn
type BlockKind string

const (
	BlockText     BlockKind = "text"
	BlockRect     BlockKind = "rect"
	BlockLine     BlockKind = "line"
	BlockTableRow BlockKind = "table-row"
	BlockImage    BlockKind = "image"
)

// Block roles used by the invoice layouts
const (
	RoleHeader        = "header"
	RoleLogo          = "logo"
	RoleStatus        = "status"
	RoleFrom          = "from"
	RoleTo            = "to"
	RoleItemsHead     = "items.head"
	RoleItems         = "items"
	RoleTotalsBox     = "totals.box"
	RoleSubtotal      = "totals.subtotal"
	RoleTax           = "totals.tax"
	RoleDiscount      = "totals.discount"
	RoleTotalsRule    = "totals.rule"
	RoleTotal         = "totals.total"
	RoleNotes         = "notes"
	RoleFooter        = "footer"
	RolePlaceholder   = "placeholder"
	RoleDecoration    = "decoration"
	RoleHeaderDetails = "header.details"
)

// Align is the horizontal anchor of a text block
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// FontStyle follows the core-font style letters
type FontStyle string

const (
	FontRegular FontStyle = ""
	FontBold    FontStyle = "B"
	FontItalic  FontStyle = "I"
)

// Color is an RGB triple
type Color struct {
	R, G, B int
}

// Common colors
var (
	ColorBlack     = Color{0, 0, 0}
	ColorWhite     = Color{255, 255, 255}
	ColorGray      = Color{100, 100, 100}
	ColorLightGray = Color{240, 240, 240}
	ColorRule      = Color{200, 200, 200}
	ColorBlue      = Color{39, 128, 227}
	ColorGreen     = Color{39, 174, 96}
	ColorRed       = Color{231, 76, 60}
	ColorDarkGray  = Color{50, 50, 50}
	ColorPanel     = Color{245, 245, 245}
)

// Cell is one column of a table row
type Cell struct {
	Text  string
	X     float64
	W     float64
	Align Align
}

// Block is a positioned drawing instruction.
// For text blocks Y is the baseline; for everything else it is the top edge.
type Block struct {
	Kind      BlockKind
	Role      string
	X, Y      float64
	W, H      float64
	Text      string
	Align     Align
	FontSize  float64
	FontStyle FontStyle
	TextColor Color
	FillColor *Color
	DrawColor *Color
	LineWidth float64
	Cells     []Cell
	// Source carries image data for image blocks: a data URL or a file path
	Source string
}

// Page is an ordered list of blocks
type Page struct {
	Number int
	Blocks []Block
}

// Document is the laid-out invoice
type Document struct {
	Title      string
	Author     string
	FileName   string
	TemplateID int
	Width      float64
	Height     float64
	Pages      []*Page
}

// NewDocument creates an A4 document with one empty page
func NewDocument(title string) *Document {
	d := &Document{Title: title, Width: PageWidth, Height: PageHeight}
	d.AddPage()
	return d
}

// AddPage appends an empty page and returns it
func (d *Document) AddPage() *Page {
	p := &Page{Number: len(d.Pages) + 1}
	d.Pages = append(d.Pages, p)
	return p
}

// CurrentPage returns the last page
func (d *Document) CurrentPage() *Page {
	return d.Pages[len(d.Pages)-1]
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// BlocksByRole returns every block with the given role across pages
func (d *Document) BlocksByRole(role string) []Block {
	var out []Block
	for _, p := range d.Pages {
		for _, b := range p.Blocks {
			if b.Role == role {
				out = append(out, b)
			}
		}
	}
	return out
}

// RoleSequence lists the distinct roles in order of first appearance
func (d *Document) RoleSequence() []string {
	seen := make(map[string]bool)
	var roles []string
	for _, p := range d.Pages {
		for _, b := range p.Blocks {
			if !seen[b.Role] {
				seen[b.Role] = true
				roles = append(roles, b.Role)
			}
		}
	}
	return roles
}

// Validate checks the structural invariants a renderer relies on
func (d *Document) Validate() error {
	if d == nil || len(d.Pages) == 0 {
		return NewRenderError(ErrCodeInvalidLayout, "document has no pages", nil)
	}
	for _, p := range d.Pages {
		for _, b := range p.Blocks {
			if b.Kind == BlockTableRow && len(b.Cells) == 0 {
				return NewRenderError(ErrCodeInvalidLayout, "table row without cells", nil)
			}
			if b.Y < 0 || b.Y > d.Height {
				return NewRenderError(ErrCodeInvalidLayout, "block "+b.Role+" lies outside the page", nil)
			}
		}
	}
	return nil
}

func (p *Page) add(b Block) {
	p.Blocks = append(p.Blocks, b)
}

// wrapText splits text into lines that fit width millimeters at fontSize points.
// Glyph width is approximated from the font size; explicit line breaks are kept.
func wrapText(text string, width, fontSize float64) []string {
	maxRunes := int(width / (fontSize * ptToMM * avgGlyphRate))
	if maxRunes < 1 {
		maxRunes = 1
	}

	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		var line strings.Builder
		for _, word := range words {
			for utf8.RuneCountInString(word) > maxRunes {
				if line.Len() > 0 {
					lines = append(lines, line.String())
					line.Reset()
				}
				r := []rune(word)
				lines = append(lines, string(r[:maxRunes]))
				word = string(r[maxRunes:])
			}
			switch {
			case line.Len() == 0:
				line.WriteString(word)
			case utf8.RuneCountInString(line.String())+1+utf8.RuneCountInString(word) <= maxRunes:
				line.WriteByte(' ')
				line.WriteString(word)
			default:
				lines = append(lines, line.String())
				line.Reset()
				line.WriteString(word)
			}
		}
		if line.Len() > 0 {
			lines = append(lines, line.String())
		}
	}
	return lines
}
