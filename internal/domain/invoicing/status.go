package invoicing

import (
	"strings"

	"github.com/invoiceflow/backend/internal/domain/shared"
)

// Status represents the flat lifecycle label of an invoice
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// AllStatuses returns the allow-list of statuses in display order
func AllStatuses() []Status {
	return []Status{StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled}
}

// IsValid checks if the status is one of the allowed values
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status ends the normal lifecycle.
// Terminal statuses can still be overwritten through SetStatus.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// ParseStatus validates raw input against the allow-list
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.IsValid() {
		return "", shared.NewFieldError(CodeInvalidStatus, "status",
			"Status must be one of draft, sent, paid, overdue, cancelled")
	}
	return s, nil
}
