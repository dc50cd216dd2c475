package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func ValidateRequest(obj any) []FieldError {
	var fieldErrors []FieldError

	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	for _, err := range err.(validator.ValidationErrors) {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   err.Field(),
			Message: getErrorMsg(err),
			Type:    err.Tag(),
		})
	}

	return fieldErrors
}

func getErrorMsg(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "len":
		return "Value must be exactly " + err.Param() + " characters"
	case "oneof":
		return "Value must be one of: " + err.Param()
	case "gt":
		return "Value must be greater than " + err.Param()
	default:
		return "Invalid value"
	}
}

// RespondWithValidationError renders field errors inside the standard
// envelope so error responses stay uniform.
func RespondWithValidationError(c *gin.Context, fieldErrors []FieldError) {
	c.JSON(400, Envelope{
		Success: false,
		Message: "Invalid request data",
		Data:    gin.H{"code": "VALIDATION_ERROR", "details": fieldErrors},
	})
}
