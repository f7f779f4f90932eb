package llm

import (
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorClass buckets a completion-service error into the classes the
// client-facing error message reports.
type ErrorClass string

const (
	ClassThrottling ErrorClass = "Throttling"
	ClassValidation ErrorClass = "Validation"
	ClassInternal   ErrorClass = "Internal"
)

// Classify maps a provider error to its class. Unknown errors are Internal.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassInternal
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return ClassThrottling
		case apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500:
			return ClassValidation
		}
		return ClassInternal
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") || strings.Contains(msg, "throttl"):
		return ClassThrottling
	case strings.Contains(msg, "invalid") || strings.Contains(msg, "validation"):
		return ClassValidation
	}
	return ClassInternal
}

// IsRateLimit reports whether the error is a throttling condition
// worth retrying.
func IsRateLimit(err error) bool {
	return err != nil && Classify(err) == ClassThrottling
}
