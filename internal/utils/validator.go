package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationErrorDetail represents the structure of a single validation error.
type ValidationErrorDetail struct {
	Field    string      `json:"field"`
	Message  string      `json:"message"`
	Expected string      `json:"expected"`
	Received interface{} `json:"received"`
}

// ValidationErrorData represents the data field in the validation error response.
type ValidationErrorData struct {
	Errors []ValidationErrorDetail `json:"errors"`
}

func init() {
	// Report fields by their JSON names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
	}
}

func jsonTagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// BindAndValidate binds the request body to the given object and validates it.
// If validation fails, it sends a formatted error response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	c.JSON(http.StatusBadRequest, Response{
		Status:  http.StatusBadRequest,
		Message: "Invalid request parameters",
		Data:    ValidationErrorData{Errors: validationDetails(err)},
	})
	return false
}

func validationDetails(err error) []ValidationErrorDetail {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]ValidationErrorDetail, 0, len(validationErrors))
		for _, e := range validationErrors {
			detail := ValidationErrorDetail{
				Field:    e.Namespace(),
				Message:  fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", e.Field(), e.Tag()),
				Expected: e.Param(),
				Received: e.Value(),
			}
			if detail.Expected == "" {
				detail.Expected = e.Tag()
			}

			switch e.Tag() {
			case "required":
				detail.Message = fmt.Sprintf("Field '%s' is required", e.Field())
				detail.Expected = "not null"
			case "oneof":
				detail.Message = fmt.Sprintf("Field '%s' must be one of: %s", e.Field(), e.Param())
			case "gte":
				detail.Message = fmt.Sprintf("Field '%s' must be at least %s", e.Field(), e.Param())
			case "min":
				detail.Message = fmt.Sprintf("Field '%s' must be at least %s long", e.Field(), e.Param())
				detail.Expected = fmt.Sprintf("min %s", e.Param())
			case "max":
				detail.Message = fmt.Sprintf("Field '%s' must be at most %s long", e.Field(), e.Param())
				detail.Expected = fmt.Sprintf("max %s", e.Param())
			}

			details = append(details, detail)
		}
		return details
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationErrorDetail{{
			Field:    typeErr.Field,
			Message:  fmt.Sprintf("Field '%s' has invalid type", typeErr.Field),
			Expected: typeErr.Type.String(),
			Received: typeErr.Value,
		}}
	}

	return []ValidationErrorDetail{{
		Field:    "body",
		Message:  "Malformed JSON or invalid request body",
		Expected: "valid JSON",
		Received: "invalid",
	}}
}
