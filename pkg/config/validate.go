package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "CMConfig.OpenPort").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration, collecting every
// violation before returning (spec.md §7 "Configuration ... errors —
// fatal at startup; non-recoverable").
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateRequiredPaths(cfg)...)
	errs = append(errs, validatePorts(cfg)...)
	errs = append(errs, validateDownloader(&cfg.Downloader)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateRequiredPaths(cfg *Config) []FieldError {
	var errs []FieldError

	if cfg.WorkingDir == "" {
		errs = append(errs, FieldError{Field: "WorkingDir", Message: "field is required"})
	}
	if cfg.ImageStoreDir == "" {
		errs = append(errs, FieldError{Field: "ImageStoreDir", Message: "field is required"})
	}
	if cfg.CM.CMServerURL == "" {
		errs = append(errs, FieldError{Field: "CMConfig.CMServerURL", Message: "field is required"})
	}
	if cfg.IAM.IAMPublicServerURL == "" {
		errs = append(errs, FieldError{Field: "IAMConfig.IAMPublicServerURL", Message: "field is required"})
	}
	if cfg.IAM.IAMProtectedServerURL == "" {
		errs = append(errs, FieldError{Field: "IAMConfig.IAMProtectedServerURL", Message: "field is required"})
	}

	return errs
}

func validatePorts(cfg *Config) []FieldError {
	var errs []FieldError

	seen := make(map[uint32]string)
	check := func(field string, port uint32) {
		if port == 0 {
			errs = append(errs, FieldError{Field: field, Message: "port must be non-zero"})
			return
		}
		if other, ok := seen[port]; ok {
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("port %d collides with %s", port, other)})
			return
		}
		seen[port] = field
	}

	check("CMConfig.OpenPort", cfg.CM.OpenPort)
	check("CMConfig.SecurePort", cfg.CM.SecurePort)
	check("IAMConfig.OpenPort", cfg.IAM.OpenPort)
	check("IAMConfig.SecurePort", cfg.IAM.SecurePort)

	return errs
}

func validateDownloader(d *DownloaderConfig) []FieldError {
	var errs []FieldError

	if d.DownloadDir == "" {
		errs = append(errs, FieldError{Field: "Downloader.DownloadDir", Message: "field is required"})
	}
	if d.MaxConcurrentDownloads <= 0 {
		errs = append(errs, FieldError{Field: "Downloader.MaxConcurrentDownloads", Message: "must be positive"})
	}
	if d.RetryDelay <= 0 {
		errs = append(errs, FieldError{Field: "Downloader.RetryDelay", Message: "must be positive"})
	}
	if d.MaxRetryDelay < d.RetryDelay {
		errs = append(errs, FieldError{Field: "Downloader.MaxRetryDelay", Message: "must be >= RetryDelay"})
	}

	return errs
}
