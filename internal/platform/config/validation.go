package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration and returns an error if invalid.
// The service must not start with invalid config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return c.Storage.validateDriver()
}

// validateDriver checks the settings the selected backend needs.
func (s StorageConfig) validateDriver() error {
	var missing []string

	switch s.Driver {
	case DriverSQLite:
		if s.SQLite.Path == "" {
			missing = append(missing, "storage.sqlite.path")
		}
	case DriverPostgres:
		if s.Postgres.DSN == "" {
			missing = append(missing, "storage.postgres.dsn")
		}
	case DriverS3:
		if s.S3.Bucket == "" {
			missing = append(missing, "storage.s3.bucket")
		}

		if s.S3.Region == "" {
			missing = append(missing, "storage.s3.region")
		}
	}

	if len(missing) == 0 {
		return nil
	}

	return fmt.Errorf("config validation failed:\n  %s is required when storage.driver is %s",
		strings.Join(missing, ", "), s.Driver)
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return field + " must be a valid URL"
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatFieldPath converts "Config.Remote.BaseURL" to "remote.baseurl".
func formatFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	return strings.ToLower(strings.Join(parts, "."))
}
