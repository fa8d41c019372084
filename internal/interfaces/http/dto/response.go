// Package dto holds the JSON envelope and error codes of the HTTP API.
package dto

import "github.com/invoiceflow/backend/internal/domain/shared"

// Response is the envelope every JSON endpoint answers with
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo is the error half of the envelope
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	Field     string             `json:"field,omitempty"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail names one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta describes the page a list response carries
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta computes the page count; a zero page size means one unpaged result
func NewMeta(total int64, page, pageSize int) *Meta {
	m := &Meta{Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		m.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return m
}

// NewSuccessResponse wraps data in a success envelope
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewSuccessResponseWithMeta wraps one page of a list
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	return Response{Success: true, Data: data, Meta: NewMeta(total, page, pageSize)}
}

func failure(info ErrorInfo) Response {
	return Response{Error: &info}
}

// NewErrorResponseWithRequestID builds an error envelope
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return failure(ErrorInfo{Code: code, Message: message, RequestID: requestID})
}

// NewFieldErrorResponse builds an error envelope naming the offending field
func NewFieldErrorResponse(code, message, field, requestID string) Response {
	return failure(ErrorInfo{Code: code, Message: message, Field: field, RequestID: requestID})
}

// NewValidationErrorResponse builds a VALIDATION_FAILED envelope with per-field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return failure(ErrorInfo{Code: ErrCodeValidation, Message: message, RequestID: requestID, Details: details})
}

// ListRequest is the query string shared by list endpoints
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
}

// DefaultListRequest returns the first page at the default size
func DefaultListRequest() ListRequest {
	return ListRequest{Page: 1, PageSize: shared.DefaultPageSize}
}

// Filter converts the query into a repository filter
func (r ListRequest) Filter() shared.Filter {
	return shared.Filter{
		Page:     r.Page,
		PageSize: r.PageSize,
		OrderBy:  r.OrderBy,
		OrderDir: r.OrderDir,
		Search:   r.Search,
	}.Clamp()
}
