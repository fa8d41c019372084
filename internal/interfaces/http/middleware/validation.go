package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/interfaces/http/dto"
)

var (
	validatorOnce sync.Once
	isoCurrency   = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

// customTags are the binding tags InvoiceFlow adds to the gin validator
var customTags = map[string]validator.Func{
	"invoice_status": func(fl validator.FieldLevel) bool {
		return invoicing.Status(fl.Field().String()).IsValid()
	},
	"iso_currency": func(fl validator.FieldLevel) bool {
		return isoCurrency.MatchString(fl.Field().String())
	},
}

// SetupValidator reports JSON field names in validation errors and
// registers the custom tags. Calls after the first are no-ops.
func SetupValidator() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		for tag, fn := range customTags {
			_ = v.RegisterValidation(tag, fn)
		}
	})
}

// jsonFieldName names a field after its json tag, then its form tag
func jsonFieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		}
		return name
	}
	return ""
}

// FormatValidationErrors builds the VALIDATION_FAILED envelope for err
func FormatValidationErrors(err error, requestID string) dto.Response {
	return dto.NewValidationErrorResponse("Request validation failed", requestID, ValidationDetails(err))
}

// HandleValidationError writes a 400 with per-field details
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, getRequestID(c)))
}

// ValidationDetails lists one detail per rejected field, or nil when err
// did not come from the validator. Paths keep slice indexes, e.g.
// items[1].quantity.
func ValidationDetails(err error) []dto.ValidationDetail {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, len(fieldErrs))
	for i, fe := range fieldErrs {
		details[i] = dto.ValidationDetail{Field: fieldPath(fe), Message: describe(fe)}
	}
	return details
}

func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	bound := fe.Param()
	if fe.Kind() == reflect.String {
		bound += " characters"
	}
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Must be at least " + bound
	case "max":
		return "Must be at most " + bound
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "Must be greater than " + fe.Param()
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "invoice_status":
		return "Must be one of: " + statusList()
	case "startswith":
		return "Must start with " + fe.Param()
	case "iso_currency":
		return "Must be a three-letter currency code"
	}
	return "Invalid value"
}

func statusList() string {
	statuses := invoicing.AllStatuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
