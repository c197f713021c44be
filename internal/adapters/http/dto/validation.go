package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// jsonTagParts splits a json tag into the field name and the rest.
const jsonTagParts = 2

// Binding and validation failures. Both render as 400.
var (
	ErrValidation = errors.New("validation failed")
	ErrBinding    = errors.New("binding failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator, reporting fields by their json name.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", jsonTagParts)[0]
			if name == "-" {
				return ""
			}

			return name
		})

		_ = validate.RegisterValidation("uuid", validateUUID)
		_ = validate.RegisterValidation("notempty", validateNotEmpty)
	})

	return validate
}

// Validate checks v's struct tags.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate binds the JSON body into v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// BindQueryAndValidate binds the query string into v and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindQuery(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// BindURIAndValidate binds path parameters into v and validates it.
func BindURIAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindUri(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// RespondWithBindError writes the 400 for an error from one of the Bind helpers.
func RespondWithBindError(c *gin.Context, err error) {
	if IsValidationError(err) {
		RespondWithValidationErrors(c, ValidationErrors(err))
		return
	}

	RespondWithCode(c, ErrorCodeBadRequest, err.Error())
}

// ValidationErrors extracts field-level messages from a validator error.
func ValidationErrors(err error) map[string]string {
	fieldErrors := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			fieldErrors[fieldErr.Field()] = validationMessage(fieldErr)
		}
	}

	return fieldErrors
}

// IsValidationError reports whether err carries validator field errors.
func IsValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

var validationMessages = map[string]string{
	"required": "this field is required",
	"uuid":     "must be a valid UUID",
	"notempty": "must not be empty",
	"gte":      "must be greater than or equal to {param}",
	"lte":      "must be less than or equal to {param}",
	"oneof":    "must be one of: {param}",
}

func validationMessage(fe validator.FieldError) string {
	tag := fe.Tag()

	if tag == "min" || tag == "max" {
		return minMaxMessage(tag, fe.Param(), fe.Type().Kind())
	}

	if msg, ok := validationMessages[tag]; ok {
		return strings.ReplaceAll(msg, "{param}", fe.Param())
	}

	return "failed validation: " + tag
}

func minMaxMessage(tag, param string, kind reflect.Kind) string {
	suffix := ""
	if kind == reflect.String {
		suffix = " characters"
	}

	if tag == "min" {
		return "must be at least " + param + suffix
	}

	return "must be at most " + param + suffix
}

// validateUUID accepts "" so that optional fields only need required to be strict.
func validateUUID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	_, err := uuid.Parse(value)

	return err == nil
}

// validateNotEmpty rejects blank strings.
func validateNotEmpty(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
