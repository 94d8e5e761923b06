package config

import (
	"fmt"
	"slices"
	"strings"
)

var (
	validFrameworks = []string{"pytest", "unittest"}
	validLanguages  = []string{"python"}
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks the configuration for values the pipeline cannot work with.
func (c Config) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(c.API.BaseURL) == "" {
		errs.Add("api.baseURL", "is required")
	}
	if c.API.Timeout <= 0 {
		errs.Add("api.timeout", "must be positive", c.API.Timeout)
	}
	if c.Generator.PerformanceSLAMs <= 0 {
		errs.Add("generator.performanceSLAMs", "must be positive", c.Generator.PerformanceSLAMs)
	}
	if !slices.Contains(validFrameworks, c.Generator.TestFramework) {
		errs.Add("generator.testFramework", fmt.Sprintf("must be one of: %s", strings.Join(validFrameworks, ", ")), c.Generator.TestFramework)
	}
	if !slices.Contains(validLanguages, c.Generator.Language) {
		errs.Add("generator.language", fmt.Sprintf("must be one of: %s", strings.Join(validLanguages, ", ")), c.Generator.Language)
	}
	if len(c.Runner.Command) == 0 {
		errs.Add("runner.command", "must name an executable")
	}
	if c.Runner.Timeout <= 0 {
		errs.Add("runner.timeout", "must be positive", c.Runner.Timeout)
	}
	if c.LLM.Timeout <= 0 {
		errs.Add("llm.timeout", "must be positive", c.LLM.Timeout)
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		errs.Add("output.dir", "is required")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
