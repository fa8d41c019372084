package printing

import "github.com/invoiceflow/backend/internal/domain/invoicing"

type pillPos struct {
	x, w float64
}

// theme holds what differs between the built-in templates
type theme struct {
	id   int
	name string

	accent        Color
	ruleColor     Color
	gridColor     Color
	tableHeadFill Color
	tableHeadText Color
	altRowFill    *Color
	totalsPanel   *Color
	totalsBox     bool
	totalsLabelX  float64
	totalsValueX  float64

	pill           pillPos
	partyTop       float64
	toX            float64
	fromWidth      float64
	toWidth        float64
	partyNameStyle FontStyle

	header      func(c *cursor, data DocumentData)
	partyLabels func(c *cursor)
	footer      func(p *Page)
}

func colorPtr(c Color) *Color {
	return &c
}

func logoBlock(b *invoicing.Business, x, y, w, h float64, fallbackColor Color) Block {
	return Block{
		Kind: BlockImage, Role: RoleLogo,
		X: x, Y: y, W: w, H: h,
		Source:   b.Logo,
		Text:     b.Name,
		FontSize: 18, FontStyle: FontBold, TextColor: fallbackColor,
	}
}

func headerText(role string, x, y float64, align Align, text string, size float64, style FontStyle, color Color) Block {
	return Block{
		Kind: BlockText, Role: role, X: x, Y: y, Align: align,
		Text: text, FontSize: size, FontStyle: style, TextColor: color,
	}
}

func footerLabel(p *Page, y float64, color Color) {
	p.add(Block{
		Kind: BlockText, Role: RoleFooter, X: PageWidth / 2, Y: y, Align: AlignCenter,
		Text: FooterText(p.Number), FontSize: 8, TextColor: color,
	})
}

// classicTheme is black and white with a light gray table head
func classicTheme() theme {
	return theme{
		id:            invoicing.TemplateClassic,
		name:          "Classic",
		accent:        ColorBlack,
		ruleColor:     ColorRule,
		gridColor:     ColorRule,
		tableHeadFill: ColorLightGray,
		tableHeadText: ColorBlack,
		totalsLabelX:  140,
		totalsValueX:  MarginRight,
		pill:          pillPos{x: 140, w: 55},
		partyTop:      77,
		toX:           120,
		fromWidth:     90,
		toWidth:       75,
		header: func(c *cursor, data DocumentData) {
			b, inv, f := data.Business, data.Invoice, data.Format
			if b.Logo != "" {
				c.add(logoBlock(b, MarginLeft, 15, 40, 40, ColorBlack))
			} else {
				c.add(headerText(RoleHeader, MarginLeft, 30, AlignLeft, b.Name, 18, FontBold, ColorBlack))
			}
			c.add(headerText(RoleHeader, MarginRight, 25, AlignRight, "INVOICE", 24, FontBold, ColorBlack))
			c.add(headerText(RoleHeaderDetails, MarginRight, 35, AlignRight, "Invoice #: "+inv.InvoiceNumber, 12, FontBold, ColorBlack))
			c.add(headerText(RoleHeaderDetails, MarginRight, 42, AlignRight, "Date: "+f.FormatDate(inv.IssueDate), 12, FontBold, ColorBlack))
			c.add(headerText(RoleHeaderDetails, MarginRight, 49, AlignRight, "Due: "+f.FormatDate(inv.DueDate), 12, FontBold, ColorBlack))
		},
		partyLabels: func(c *cursor) {
			c.add(headerText(RoleFrom, MarginLeft, 70, AlignLeft, "From:", 12, FontBold, ColorBlack))
			c.add(headerText(RoleTo, 120, 70, AlignLeft, "To:", 12, FontBold, ColorBlack))
		},
		footer: func(p *Page) {
			footerLabel(p, FooterY, ColorGray)
		},
	}
}

// modernTheme uses a blue header band and a blue footer band
func modernTheme() theme {
	return theme{
		id:            invoicing.TemplateModern,
		name:          "Modern",
		accent:        ColorBlue,
		ruleColor:     ColorRule,
		gridColor:     Color{220, 220, 220},
		tableHeadFill: ColorBlue,
		tableHeadText: ColorWhite,
		altRowFill:    colorPtr(ColorPanel),
		totalsPanel:   colorPtr(ColorPanel),
		totalsLabelX:  130,
		totalsValueX:  185,
		pill:          pillPos{x: 150, w: 45},
		partyTop:      87,
		toX:           110,
		fromWidth:     80,
		toWidth:       80,
		header: func(c *cursor, data DocumentData) {
			b, inv, f := data.Business, data.Invoice, data.Format
			c.add(Block{Kind: BlockRect, Role: RoleHeader, X: 0, Y: 0, W: PageWidth, H: 50, FillColor: colorPtr(ColorBlue)})
			if b.Logo != "" {
				c.add(logoBlock(b, 155, 5, 40, 40, ColorWhite))
			}
			c.add(headerText(RoleHeader, MarginLeft, 20, AlignLeft, "INVOICE", 24, FontBold, ColorWhite))
			c.add(headerText(RoleHeader, MarginLeft, 30, AlignLeft, b.Name, 12, FontBold, ColorWhite))
			c.add(headerText(RoleHeaderDetails, MarginLeft, 40, AlignLeft, "Invoice #: "+inv.InvoiceNumber, 10, FontBold, ColorWhite))
			c.add(headerText(RoleHeaderDetails, MarginLeft, 60, AlignLeft, "Date: "+f.FormatDate(inv.IssueDate), 10, FontRegular, ColorBlack))
			c.add(headerText(RoleHeaderDetails, MarginLeft, 67, AlignLeft, "Due Date: "+f.FormatDate(inv.DueDate), 10, FontRegular, ColorBlack))
		},
		partyLabels: func(c *cursor) {
			c.add(headerText(RoleFrom, MarginLeft, 80, AlignLeft, "From:", 12, FontBold, ColorBlue))
			c.add(headerText(RoleTo, 110, 80, AlignLeft, "To:", 12, FontBold, ColorBlue))
		},
		footer: func(p *Page) {
			p.add(Block{Kind: BlockRect, Role: RoleFooter, X: 0, Y: 280, W: PageWidth, H: 15, FillColor: colorPtr(ColorBlue)})
			footerLabel(p, FooterY, ColorWhite)
		},
	}
}

// professionalTheme uses dark gray rules, FROM/TO tabs and a boxed totals block
func professionalTheme() theme {
	return theme{
		id:             invoicing.TemplateProfessional,
		name:           "Professional",
		accent:         ColorDarkGray,
		ruleColor:      ColorDarkGray,
		gridColor:      ColorRule,
		tableHeadFill:  ColorDarkGray,
		tableHeadText:  ColorWhite,
		totalsBox:      true,
		totalsLabelX:   130,
		totalsValueX:   185,
		pill:           pillPos{x: 145, w: 50},
		partyTop:       85,
		toX:            110,
		fromWidth:      80,
		toWidth:        80,
		partyNameStyle: FontBold,
		header: func(c *cursor, data DocumentData) {
			b, inv, f := data.Business, data.Invoice, data.Format
			c.add(Block{Kind: BlockLine, Role: RoleHeader, X: MarginLeft, Y: 40, W: MarginRight - MarginLeft,
				DrawColor: colorPtr(ColorDarkGray), LineWidth: 1})
			if b.Logo != "" {
				c.add(logoBlock(b, MarginLeft, 15, 40, 20, ColorDarkGray))
			} else {
				c.add(headerText(RoleHeader, MarginLeft, 25, AlignLeft, b.Name, 18, FontBold, ColorDarkGray))
			}
			c.add(headerText(RoleHeader, MarginRight, 25, AlignRight, "INVOICE", 24, FontBold, ColorDarkGray))
			c.add(headerText(RoleHeaderDetails, MarginRight, 35, AlignRight, "Invoice #: "+inv.InvoiceNumber, 10, FontRegular, ColorDarkGray))
			c.add(headerText(RoleHeaderDetails, MarginLeft, 50, AlignLeft, "Issue Date: "+f.FormatDate(inv.IssueDate), 10, FontRegular, ColorDarkGray))
			c.add(headerText(RoleHeaderDetails, MarginRight, 50, AlignRight, "Due Date: "+f.FormatDate(inv.DueDate), 10, FontRegular, ColorDarkGray))
		},
		partyLabels: func(c *cursor) {
			c.add(Block{Kind: BlockRect, Role: RoleFrom, X: MarginLeft, Y: 70, W: 20, H: 7, FillColor: colorPtr(ColorDarkGray)})
			c.add(headerText(RoleFrom, 25, 75, AlignCenter, "FROM", 11, FontBold, ColorWhite))
			c.add(Block{Kind: BlockRect, Role: RoleTo, X: 110, Y: 70, W: 15, H: 7, FillColor: colorPtr(ColorDarkGray)})
			c.add(headerText(RoleTo, 117.5, 75, AlignCenter, "TO", 11, FontBold, ColorWhite))
		},
		footer: func(p *Page) {
			p.add(Block{Kind: BlockLine, Role: RoleFooter, X: MarginLeft, Y: 275, W: MarginRight - MarginLeft,
				DrawColor: colorPtr(ColorDarkGray), LineWidth: 0.5})
			footerLabel(p, 282, ColorGray)
		},
	}
}

// NewClassicBuilder returns the classic layout
func NewClassicBuilder() DocumentBuilder { return layoutBuilder{theme: classicTheme()} }

// NewModernBuilder returns the modern layout
func NewModernBuilder() DocumentBuilder { return layoutBuilder{theme: modernTheme()} }

// NewProfessionalBuilder returns the professional layout
func NewProfessionalBuilder() DocumentBuilder { return layoutBuilder{theme: professionalTheme()} }
