package printing

import (
	"testing"
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatter_FormatCurrency(t *testing.T) {
	f := NewFormatter(invoicing.DefaultPreferences("user-1"))

	tests := []struct {
		name   string
		amount string
		code   string
		want   string
	}{
		{"unknown code falls back", "10", "NOPE", "10.00 NOPE"},
		{"unknown code keeps two places", "1234.5", "XYZ1", "1234.50 XYZ1"},
		{"dollar with grouping", "1234.5", "USD", "$1,234.50"},
		{"lower-case code", "1", "usd", "$1.00"},
		{"euro", "99.99", "EUR", "€99.99"},
		{"yen has no minor unit", "1500", "JPY", "¥1,500"},
		{"recognized code without symbol", "1", "SGD", "SGD 1.00"},
		{"negative amount", "-5", "USD", "-$5.00"},
		{"large amount", "1234567.891", "GBP", "£1,234,567.89"},
		{"empty code uses preference", "3", "", "$3.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.FormatCurrency(decimal.RequireFromString(tt.amount), tt.code))
		})
	}
}

func TestFormatter_UsesInjectedPreferences(t *testing.T) {
	prefs := invoicing.DefaultPreferences("user-1")
	prefs.DefaultCurrency = "EUR"
	prefs.DateFormat = invoicing.DateFormatEU
	f := NewFormatter(prefs)

	assert.Equal(t, "€3.00", f.FormatCurrency(decimal.NewFromInt(3), ""))
	assert.Equal(t, "31/01/2024", f.FormatDate(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))

	iso := NewFormatter(invoicing.Preferences{DateFormat: invoicing.DateFormatISO})
	assert.Equal(t, "2024-01-31", iso.FormatDate(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "$3.00", iso.FormatCurrency(decimal.NewFromInt(3), ""))
}

func TestFormatter_InvalidPreferencesFallBack(t *testing.T) {
	f := NewFormatter(invoicing.Preferences{DateFormat: "DD.MM.YY"})
	assert.Equal(t, "01/31/2024", f.FormatDate(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))
	assert.Empty(t, f.FormatDate(time.Time{}))
}

func TestFormatter_QuantityAndRate(t *testing.T) {
	f := NewFormatter(invoicing.DefaultPreferences(""))

	assert.Equal(t, "3", f.FormatQuantity(decimal.RequireFromString("3.0000")))
	assert.Equal(t, "1.5", f.FormatQuantity(decimal.RequireFromString("1.50")))
	assert.Equal(t, "10%", f.FormatRate(decimal.NewFromInt(10)))
	assert.Equal(t, "7.25%", f.FormatRate(decimal.RequireFromString("7.25")))
}
