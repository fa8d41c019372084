package invoicing

import (
	"fmt"
	"strings"
	"time"

	"github.com/invoiceflow/backend/internal/domain/shared"
)

// DateFormat is a user-facing date pattern
type DateFormat string

const (
	DateFormatUS  DateFormat = "MM/DD/YYYY"
	DateFormatEU  DateFormat = "DD/MM/YYYY"
	DateFormatISO DateFormat = "YYYY-MM-DD"
)

// IsValid checks the DateFormat against the supported patterns
func (f DateFormat) IsValid() bool {
	switch f {
	case DateFormatUS, DateFormatEU, DateFormatISO:
		return true
	}
	return false
}

// Layout returns the Go time layout for the pattern
func (f DateFormat) Layout() string {
	switch f {
	case DateFormatEU:
		return "02/01/2006"
	case DateFormatISO:
		return "2006-01-02"
	default:
		return "01/02/2006"
	}
}

// Format renders t with the pattern
func (f DateFormat) Format(t time.Time) string {
	return t.Format(f.Layout())
}

// Preferences are the per-user display settings used for rendering
type Preferences struct {
	UserID          string
	DefaultCurrency string
	DateFormat      DateFormat
	UpdatedAt       time.Time
}

// DefaultPreferences returns the settings used when a user has none stored
func DefaultPreferences(userID string) Preferences {
	return Preferences{
		UserID:          userID,
		DefaultCurrency: DefaultCurrency,
		DateFormat:      DateFormatUS,
	}
}

// Update validates and applies new settings; empty values keep the current ones
func (p *Preferences) Update(currency string, format DateFormat) error {
	if format != "" && !format.IsValid() {
		return shared.NewFieldError(CodeInvalidDateFormat, "date_format",
			fmt.Sprintf("Unsupported date format: %s", format))
	}
	if strings.TrimSpace(currency) != "" {
		code := NormalizeCurrency(currency)
		if len(code) > maxCurrencyLength {
			return shared.NewFieldError(CodeInvalidCurrency, "default_currency", "Currency code cannot exceed 10 characters")
		}
		p.DefaultCurrency = code
	}
	if format != "" {
		p.DateFormat = format
	}
	p.UpdatedAt = time.Now()
	return nil
}
