package printing

import (
	"fmt"
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PreviewData returns the sample invoice used for template previews
func PreviewData() DocumentData {
	issue := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	items := []invoicing.LineItem{
		{
			ID: 1, Description: "Website design",
			Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1200), Amount: decimal.NewFromInt(1200),
		},
		{
			ID: 2, Description: "Hosting (12 months)",
			Quantity: decimal.NewFromInt(12), UnitPrice: decimal.NewFromInt(25), Amount: decimal.NewFromInt(300),
		},
	}
	inv := &invoicing.Invoice{
		BaseEntity:    shared.BaseEntity{ID: 1},
		InvoiceNumber: "INV-2024-001",
		BusinessID:    1,
		ClientID:      1,
		IssueDate:     issue,
		DueDate:       issue.AddDate(0, 0, 30),
		Currency:      invoicing.DefaultCurrency,
		TaxRate:       decimal.NewFromInt(10),
		Discount:      decimal.NewFromInt(50),
		Notes:         "Payment is due within 30 days. Thank you for your business.",
		Status:        invoicing.StatusSent,
		TemplateID:    invoicing.DefaultTemplateID,
		Items:         items,
	}
	inv.RecalculateTotals()

	return DocumentData{
		Invoice: inv,
		Items:   items,
		Business: &invoicing.Business{
			Contact: invoicing.Contact{
				Name:    "Your Business",
				Email:   "hello@yourbusiness.com",
				Address: "123 Business Street\nCity, State 12345",
			},
		},
		Client: &invoicing.Client{
			Contact: invoicing.Contact{
				Name:    "Client Name",
				Email:   "client@example.com",
				Address: "456 Client Avenue\nCity, State 67890",
			},
		},
		Format: NewFormatter(invoicing.DefaultPreferences("")),
	}
}

// PlaceholderPreview is the single page shown for template ids with no builder
func PlaceholderPreview(id int) *Document {
	doc := NewDocument("Preview unavailable")
	doc.TemplateID = id
	page := doc.CurrentPage()
	border := ColorRule
	page.add(Block{Kind: BlockRect, Role: RolePlaceholder, X: MarginLeft, Y: 100, W: MarginRight - MarginLeft, H: 60, DrawColor: &border, LineWidth: 0.5})
	page.add(Block{
		Kind: BlockText, Role: RolePlaceholder, X: PageWidth / 2, Y: 128, Align: AlignCenter,
		Text: "Preview unavailable", FontSize: 16, FontStyle: FontBold, TextColor: ColorGray,
	})
	page.add(Block{
		Kind: BlockText, Role: RolePlaceholder, X: PageWidth / 2, Y: 138, Align: AlignCenter,
		Text: fmt.Sprintf("Template %d is not installed", id), FontSize: 10, TextColor: ColorGray,
	})
	return doc
}
