package tryon

import (
	"fmt"
	"strings"
)

// InputError means the caller supplied something missing or unusable.
// These are correctable by the user and map to 400s at the HTTP layer.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid try-on input: " + e.Reason
}

// ConfigError means the provider is not usable at all for this process
// (typically a missing API credential). Raised before any network call.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("try-on provider not configured: %s is not set", e.Missing)
}

// ProviderError wraps an upstream failure: an HTTP error from the
// generation service, a provider-reported failure flag, or a nominally
// successful response that contained no image.
type ProviderError struct {
	Op  string // "submit" or "poll"
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("generation provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// TimeoutError means the poll budget was exhausted while the provider
// still reported the task as processing. Distinct from a provider-reported
// failure so the UI can suggest a plain retry.
type TimeoutError struct {
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation timed out after %d status checks", e.Attempts)
}

// IsQuotaError reports whether an error smells like an upstream rate or
// quota rejection, so the HTTP layer can answer 429 instead of 502.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "resourceexhausted")
}
