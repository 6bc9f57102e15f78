// Package validation provides input validation helpers for the tokenpay API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// MaxStringLength is the maximum length for string fields
const MaxStringLength = 10000

// orgIDRegex validates organization identifiers (opaque ids from the
// account system: letters, digits, dash, underscore).
var orgIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// amountRegex validates positive decimal amounts
var amountRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidOrgID checks if a string is a well-formed organization id
func IsValidOrgID(id string) bool {
	return orgIDRegex.MatchString(id)
}

// IsValidAmount checks that a string is a positive decimal number
func IsValidAmount(amount string) bool {
	s := strings.TrimSpace(amount)
	if !amountRegex.MatchString(s) {
		return false
	}
	// All-zero amounts are not payable
	for _, c := range s {
		if c >= '1' && c <= '9' {
			return true
		}
	}
	return false
}

// SanitizeString removes dangerous characters and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = strings.ReplaceAll(s, "\x00", "")
	return s
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Field + ": " + e[0].Message
}

// Validate validates a request and returns errors
func Validate(validators ...func() *ValidationError) ValidationErrors {
	var errors ValidationErrors
	for _, v := range validators {
		if err := v(); err != nil {
			errors = append(errors, *err)
		}
	}
	return errors
}

// Required checks if a field is non-empty
func Required(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// ValidOrgID checks if a field is a well-formed organization id
func ValidOrgID(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil // Use Required for required fields
		}
		if !IsValidOrgID(value) {
			return &ValidationError{Field: field, Message: "must be a valid organization id"}
		}
		return nil
	}
}

// ValidAmount checks if a field is a positive decimal amount
func ValidAmount(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil
		}
		if !IsValidAmount(value) {
			return &ValidationError{Field: field, Message: "must be a positive decimal number"}
		}
		return nil
	}
}

// Positive checks if an integer field is greater than zero
func Positive(field string, value int64) func() *ValidationError {
	return func() *ValidationError {
		if value <= 0 {
			return &ValidationError{Field: field, Message: "must be greater than zero"}
		}
		return nil
	}
}

// MaxLength checks if a field exceeds max length
func MaxLength(field, value string, max int) func() *ValidationError {
	return func() *ValidationError {
		if len(value) > max {
			return &ValidationError{Field: field, Message: "exceeds maximum length"}
		}
		return nil
	}
}

// OrgParamMiddleware validates the :org URL parameter on routes that use it.
func OrgParamMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		org := c.Param("org")
		if org != "" && !IsValidOrgID(org) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_organization",
				"message": "organization id may contain letters, digits, dash and underscore only",
			})
			return
		}
		c.Next()
	}
}
