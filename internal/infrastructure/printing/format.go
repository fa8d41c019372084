package printing

import (
	"fmt"
	"strings"
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// currencySymbols lists the prefixes en-US formatting uses.
// Recognized codes not listed here are printed with the code as prefix.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "CN¥",
	"INR": "₹",
	"AUD": "A$",
	"CAD": "CA$",
	"NZD": "NZ$",
	"HKD": "HK$",
	"MXN": "MX$",
	"BRL": "R$",
}

// Formatter renders values for documents according to user preferences
type Formatter struct {
	prefs   invoicing.Preferences
	printer *message.Printer
}

// NewFormatter creates a Formatter from explicitly supplied preferences
func NewFormatter(prefs invoicing.Preferences) *Formatter {
	if prefs.DefaultCurrency == "" {
		prefs.DefaultCurrency = invoicing.DefaultCurrency
	}
	if !prefs.DateFormat.IsValid() {
		prefs.DateFormat = invoicing.DateFormatUS
	}
	return &Formatter{
		prefs:   prefs,
		printer: message.NewPrinter(language.AmericanEnglish),
	}
}

// Preferences returns the preferences the formatter was built from
func (f *Formatter) Preferences() invoicing.Preferences {
	return f.prefs
}

// FormatCurrency formats amount in the currency identified by code.
// An empty code uses the preferred currency; an unknown code falls back to "<amount> <code>".
func (f *Formatter) FormatCurrency(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = f.prefs.DefaultCurrency
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%s %s", amount.StringFixed(2), code)
	}
	scale, _ := currency.Standard.Rounding(unit)

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	digits := f.groupDigits(amount, int32(scale))

	if symbol, ok := currencySymbols[code]; ok {
		return sign + symbol + digits
	}
	return sign + code + " " + digits
}

// FormatQuantity prints a quantity without forcing trailing zeros
func (f *Formatter) FormatQuantity(q decimal.Decimal) string {
	return q.String()
}

// FormatRate prints a percentage such as "10%" or "7.5%"
func (f *Formatter) FormatRate(rate decimal.Decimal) string {
	return rate.String() + "%"
}

// FormatDate prints a date with the preferred layout
func (f *Formatter) FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return f.prefs.DateFormat.Format(t)
}

// groupDigits rounds to scale places and inserts en-US thousands separators
func (f *Formatter) groupDigits(amount decimal.Decimal, scale int32) string {
	fixed := amount.StringFixed(scale)
	intPart, fracPart, hasFrac := strings.Cut(fixed, ".")

	whole, err := decimal.NewFromString(intPart)
	if err != nil || !whole.IsInteger() || whole.GreaterThan(decimal.NewFromInt(1<<53)) {
		return fixed
	}
	grouped := f.printer.Sprintf("%d", whole.IntPart())
	if hasFrac {
		return grouped + "." + fracPart
	}
	return grouped
}
