package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/domain/shipment"
	"github.com/freightdesk/backend/internal/infrastructure/logger"
	"github.com/freightdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Custom validation tags.
const (
	// TagWeightMode accepts "", "raw" and "estimated" in any case.
	TagWeightMode = "weight_mode"
	// TagShippedFlag accepts "", "0" and "1".
	TagShippedFlag = "shipped_flag"
)

// SetupValidator configures gin's validator with JSON field names and the
// shipping tags. It returns an error if gin uses a different engine.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("middleware: gin validator is not go-playground/validator")
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	if err := v.RegisterValidation(TagWeightMode, validateWeightMode); err != nil {
		return err
	}
	return v.RegisterValidation(TagShippedFlag, validateShippedFlag)
}

func validateWeightMode(fl validator.FieldLevel) bool {
	_, ok := valueobject.ParseWeightMode(fl.Field().String())
	return ok
}

func validateShippedFlag(fl validator.FieldLevel) bool {
	return shipment.ShippedFilter(strings.TrimSpace(fl.Field().String())).IsValid()
}

// ValidationDetails converts validator errors to response details. It
// returns nil for any other error, such as malformed JSON.
func ValidationDetails(err error) []dto.ValidationDetail {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   fieldPath(e),
			Message: getValidationMessage(e),
		})
	}
	return details
}

// HandleValidationError answers 400 with field details for validator
// errors, 413 for bodies cut off by BodyLimit and ERR_INVALID_JSON for
// anything else that failed to decode.
func HandleValidationError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abortTooLarge(c, tooLarge.Limit)
		return
	}
	requestID := c.GetString(logger.GinRequestIDKey)
	if details := ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed",
			requestID,
			details,
		))
		return
	}
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInvalidJSON,
		"Request body could not be decoded: "+err.Error(),
		requestID,
	))
}

// fieldPath drops the struct name from the namespace, so nested fields
// read as "overrides[PO-1].items[0].product_sku".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		switch e.Kind() {
		case reflect.String:
			return "Must be at least " + e.Param() + " characters"
		case reflect.Slice, reflect.Map:
			return "Must contain at least " + e.Param() + " entries"
		}
		return "Must be at least " + e.Param()
	case "max":
		switch e.Kind() {
		case reflect.String:
			return "Must be at most " + e.Param() + " characters"
		case reflect.Slice, reflect.Map:
			return "Must contain at most " + e.Param() + " entries"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "datetime":
		return "Must be a date formatted as " + e.Param()
	case TagWeightMode:
		return "Must be raw or estimated"
	case TagShippedFlag:
		return "Must be empty, 0 or 1"
	default:
		return "Invalid value"
	}
}
