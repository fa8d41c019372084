package printing

import (
	"fmt"
	"strings"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
)

// DocumentData is the resolved snapshot a layout is built from
type DocumentData struct {
	Invoice  *invoicing.Invoice
	Items    []invoicing.LineItem
	Business *invoicing.Business
	Client   *invoicing.Client
	Format   *Formatter
}

// Validate fails when a relation required for drawing is missing
func (d DocumentData) Validate() error {
	if d.Invoice == nil {
		return NewRenderError(ErrCodeInvalidLayout, "invoice is required", nil)
	}
	if d.Business == nil {
		return invoicing.NewRelationError("business")
	}
	if d.Client == nil {
		return invoicing.NewRelationError("client")
	}
	return nil
}

// DocumentBuilder lays out an invoice into a Document
type DocumentBuilder interface {
	Build(data DocumentData) (*Document, error)
}

// DocumentBuilderFunc adapts a function to DocumentBuilder
type DocumentBuilderFunc func(data DocumentData) (*Document, error)

// Build calls f(data)
func (f DocumentBuilderFunc) Build(data DocumentData) (*Document, error) {
	return f(data)
}

// PreviewBuilder lays out a template with placeholder data
type PreviewBuilder func() (*Document, error)

// table columns shared by all templates
var itemColumns = []struct {
	title string
	x, w  float64
	align Align
}{
	{"Description", MarginLeft, 70, AlignLeft},
	{"Qty", 85, 30, AlignCenter},
	{"Unit Price", 115, 40, AlignRight},
	{"Amount", 155, 40, AlignRight},
}

const (
	tableFontSize = 10.0
	cellPadding   = 5.0
	rowLineHeight = 5.0
	tableMinStart = 130.0
)

// layoutBuilder runs the shared invoice layout with a template theme
type layoutBuilder struct {
	theme theme
}

// cursor tracks the current page and vertical position while laying out
type cursor struct {
	doc   *Document
	page  *Page
	y     float64
	theme theme
}

func (c *cursor) add(b Block) {
	c.page.add(b)
}

func (c *cursor) newPage() {
	c.page = c.doc.AddPage()
	c.y = MarginTop
}

// ensure moves to a new page when h more millimeters would cross the bottom limit
func (c *cursor) ensure(h float64) bool {
	if c.y+h > BottomLimit {
		c.newPage()
		return true
	}
	return false
}

// Build lays out the invoice
func (l layoutBuilder) Build(data DocumentData) (*Document, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if data.Format == nil {
		data.Format = NewFormatter(invoicing.DefaultPreferences(data.Invoice.UserID))
	}
	items := data.Items
	if items == nil {
		items = data.Invoice.Items
	}

	doc := NewDocument("Invoice #" + data.Invoice.InvoiceNumber)
	doc.Author = data.Business.Name
	doc.FileName = data.Invoice.FileName("pdf")
	doc.TemplateID = l.theme.id

	c := &cursor{doc: doc, page: doc.CurrentPage(), theme: l.theme}
	l.theme.header(c, data)
	l.statusPill(c, data.Invoice.Status)
	l.parties(c, data)
	l.itemsTable(c, data, items)
	l.totals(c, data)
	l.notes(c, data.Invoice.Notes)
	l.footers(doc)

	return doc, nil
}

// StatusColor returns the pill color of a status; unknown values are gray
func StatusColor(s invoicing.Status) Color {
	switch s {
	case invoicing.StatusSent:
		return ColorBlue
	case invoicing.StatusPaid:
		return ColorGreen
	case invoicing.StatusOverdue:
		return ColorRed
	default:
		return ColorGray
	}
}

func (l layoutBuilder) statusPill(c *cursor, status invoicing.Status) {
	fill := StatusColor(status)
	p := l.theme.pill
	c.add(Block{Kind: BlockRect, Role: RoleStatus, X: p.x, Y: 55, W: p.w, H: 10, FillColor: &fill})
	c.add(Block{
		Kind: BlockText, Role: RoleStatus,
		X: p.x + p.w/2, Y: 61, Align: AlignCenter,
		Text:     strings.ToUpper(string(status)),
		FontSize: 10, FontStyle: FontBold, TextColor: ColorWhite,
	})
}

// partyLines returns the body lines of a From or To block
func partyLines(contact invoicing.Contact, width float64) []string {
	var lines []string
	for _, addr := range contact.AddressLines() {
		lines = append(lines, wrapText(addr, width, tableFontSize)...)
	}
	if contact.Email != "" {
		lines = append(lines, "Email: "+contact.Email)
	}
	if contact.Phone != "" {
		lines = append(lines, "Phone: "+contact.Phone)
	}
	if contact.TaxNumber != "" {
		lines = append(lines, "Tax/GST: "+contact.TaxNumber)
	}
	return lines
}

func (l layoutBuilder) parties(c *cursor, data DocumentData) {
	t := l.theme
	t.partyLabels(c)

	columns := []struct {
		role    string
		x       float64
		contact invoicing.Contact
		lines   []string
	}{
		{RoleFrom, MarginLeft, data.Business.Contact, partyLines(data.Business.Contact, t.fromWidth)},
		{RoleTo, t.toX, data.Client.Contact, partyLines(data.Client.Contact, t.toWidth)},
	}
	rows := 1 + max(len(columns[0].lines), len(columns[1].lines))

	// both columns advance together so long addresses continue on the next page
	c.y = t.partyTop
	for row := range rows {
		if row > 0 {
			c.ensure(lineHeight)
		}
		for _, col := range columns {
			b := Block{Kind: BlockText, Role: col.role, X: col.x, Y: c.y, Align: AlignLeft, FontSize: 10, TextColor: ColorBlack}
			switch {
			case row == 0:
				b.Text, b.FontStyle = col.contact.Name, t.partyNameStyle
			case row <= len(col.lines):
				b.Text = col.lines[row-1]
			default:
				continue
			}
			c.add(b)
		}
		c.y += lineHeight
	}
}

func (l layoutBuilder) tableHead(c *cursor) {
	cells := make([]Cell, len(itemColumns))
	for i, col := range itemColumns {
		cells[i] = Cell{Text: col.title, X: col.x, W: col.w, Align: col.align}
	}
	fill := l.theme.tableHeadFill
	rule := l.theme.gridColor
	c.add(Block{
		Kind: BlockTableRow, Role: RoleItemsHead,
		X: MarginLeft, Y: c.y, W: MarginRight - MarginLeft, H: rowLineHeight + cellPadding,
		FontSize: tableFontSize, FontStyle: FontBold, TextColor: l.theme.tableHeadText,
		FillColor: &fill, DrawColor: &rule, Cells: cells,
	})
	c.y += rowLineHeight + cellPadding
}

func (l layoutBuilder) itemsTable(c *cursor, data DocumentData, items []invoicing.LineItem) {
	c.y += 20
	if c.page.Number == 1 {
		c.y = max(c.y, tableMinStart)
	}
	c.ensure(2 * (rowLineHeight + cellPadding))
	l.tableHead(c)

	f := data.Format
	code := data.Invoice.Currency
	rule := l.theme.gridColor
	for i, item := range items {
		desc := wrapText(item.Description, itemColumns[0].w-2, tableFontSize)
		h := float64(len(desc))*rowLineHeight + cellPadding
		if c.ensure(h) {
			l.tableHead(c)
		}

		row := Block{
			Kind: BlockTableRow, Role: RoleItems,
			X: MarginLeft, Y: c.y, W: MarginRight - MarginLeft, H: h,
			FontSize: tableFontSize, TextColor: ColorBlack, DrawColor: &rule,
			Cells: []Cell{
				{Text: strings.Join(desc, "\n"), X: itemColumns[0].x, W: itemColumns[0].w, Align: itemColumns[0].align},
				{Text: f.FormatQuantity(item.Quantity), X: itemColumns[1].x, W: itemColumns[1].w, Align: itemColumns[1].align},
				{Text: f.FormatCurrency(item.UnitPrice, code), X: itemColumns[2].x, W: itemColumns[2].w, Align: itemColumns[2].align},
				{Text: f.FormatCurrency(item.Amount, code), X: itemColumns[3].x, W: itemColumns[3].w, Align: itemColumns[3].align},
			},
		}
		if l.theme.altRowFill != nil && i%2 == 1 {
			fill := *l.theme.altRowFill
			row.FillColor = &fill
		}
		c.add(row)
		c.y += h
	}
}

func (l layoutBuilder) totals(c *cursor, data DocumentData) {
	inv := data.Invoice
	f := data.Format
	t := l.theme

	showTax := inv.TaxRate.IsPositive()
	showDiscount := inv.Discount.IsPositive()
	rows := 1
	if showTax {
		rows++
	}
	if showDiscount {
		rows++
	}
	height := float64(rows)*lineHeight + 2*lineHeight

	c.y += 10
	c.ensure(height + 5)

	top := c.y
	if t.totalsPanel != nil || t.totalsBox {
		box := Block{Kind: BlockRect, Role: RoleTotalsBox, X: 120, Y: top - 5, W: 75, H: height + 3}
		if t.totalsPanel != nil {
			fill := *t.totalsPanel
			box.FillColor = &fill
		} else {
			draw := t.ruleColor
			box.DrawColor = &draw
			box.LineWidth = 0.5
		}
		c.add(box)
	}

	line := func(role, label, value string) {
		c.add(Block{Kind: BlockText, Role: role, X: t.totalsLabelX, Y: c.y, Align: AlignLeft,
			Text: label, FontSize: 10, TextColor: ColorBlack})
		c.add(Block{Kind: BlockText, Role: role, X: t.totalsValueX, Y: c.y, Align: AlignRight,
			Text: value, FontSize: 10, TextColor: ColorBlack})
		c.y += lineHeight
	}

	line(RoleSubtotal, "Subtotal:", f.FormatCurrency(inv.Subtotal, inv.Currency))
	if showTax {
		line(RoleTax, fmt.Sprintf("Tax (%s):", f.FormatRate(inv.TaxRate)), f.FormatCurrency(inv.TaxAmount, inv.Currency))
	}
	if showDiscount {
		line(RoleDiscount, "Discount:", "- "+f.FormatCurrency(inv.Discount, inv.Currency))
	}

	rule := t.ruleColor
	c.add(Block{Kind: BlockLine, Role: RoleTotalsRule, X: t.totalsLabelX, Y: c.y - 4, W: t.totalsValueX - t.totalsLabelX, DrawColor: &rule, LineWidth: 0.2})

	totalColor := t.accent
	if t.totalsBox {
		fill := t.accent
		c.add(Block{Kind: BlockRect, Role: RoleTotal, X: 120, Y: c.y - 3, W: 75, H: 10, FillColor: &fill})
		totalColor = ColorWhite
	}
	c.y += 3
	c.add(Block{Kind: BlockText, Role: RoleTotal, X: t.totalsLabelX, Y: c.y, Align: AlignLeft,
		Text: "Total:", FontSize: 12, FontStyle: FontBold, TextColor: totalColor})
	c.add(Block{Kind: BlockText, Role: RoleTotal, X: t.totalsValueX, Y: c.y, Align: AlignRight,
		Text: f.FormatCurrency(inv.Total, inv.Currency), FontSize: 12, FontStyle: FontBold, TextColor: totalColor})
	c.y += lineHeight
}

func (l layoutBuilder) notes(c *cursor, notes string) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return
	}

	c.y += 8
	c.ensure(2 * lineHeight)
	c.add(Block{Kind: BlockText, Role: RoleNotes, X: MarginLeft, Y: c.y, Align: AlignLeft,
		Text: "Notes:", FontSize: 10, FontStyle: FontBold, TextColor: l.theme.accent})
	c.y += lineHeight

	for _, line := range wrapText(notes, MarginRight-MarginLeft, 10) {
		c.ensure(lineHeight)
		c.add(Block{Kind: BlockText, Role: RoleNotes, X: MarginLeft, Y: c.y, Align: AlignLeft,
			Text: line, FontSize: 10, TextColor: ColorBlack})
		c.y += lineHeight
	}
}

// FooterText is printed at the bottom of every page
func FooterText(page int) string {
	return fmt.Sprintf("Generated by InvoiceFlow - Page %d", page)
}

func (l layoutBuilder) footers(doc *Document) {
	for _, p := range doc.Pages {
		l.theme.footer(p)
	}
}
