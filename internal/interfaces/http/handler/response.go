package handler

import "github.com/invoiceflow/backend/internal/interfaces/http/dto"

// Documentation-only shapes of the dto.Response envelope, referenced from
// the @Success and @Failure annotations.

// APIResponse is a success envelope with a typed payload
type APIResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    T         `json:"data,omitempty"`
	Meta    *dto.Meta `json:"meta,omitempty"`
}

// ErrorResponse is a failure envelope
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
