package printing

import (
	"context"
	"errors"
	"time"
)

// Rendering failure codes
const (
	ErrCodeRenderTimeout  = "RENDER_TIMEOUT"
	ErrCodeRenderFailed   = "RENDER_FAILED"
	ErrCodeInvalidLayout  = "INVALID_LAYOUT"
	ErrCodeBinaryNotFound = "BINARY_NOT_FOUND"
	ErrCodeStorageFailed  = "STORAGE_FAILED"
)

// PDFRenderer emits a laid-out Document as PDF bytes
type PDFRenderer interface {
	Render(ctx context.Context, doc *Document) (*RenderResult, error)
	Close() error
}

// RenderResult is one emitted PDF
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// RenderError is returned by renderers and artifact storage
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

// NewRenderError creates a RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the RenderError code carried by err, or "" when err is
// not a rendering failure
func ErrorCode(err error) string {
	var renderErr *RenderError
	if errors.As(err, &renderErr) {
		return renderErr.Code
	}
	return ""
}
