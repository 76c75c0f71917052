package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration represents missing or invalid configuration, e.g. no LLM credentials
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeLLMProtocol represents malformed or unusable completion output
	ErrorTypeLLMProtocol ErrorType = "llm_protocol"
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeAdapterInput represents structured input a retailer adapter cannot use as-is
	ErrorTypeAdapterInput ErrorType = "adapter_input"
	// ErrorTypeCatalogUnavailable represents a missing or unreadable filter catalog
	ErrorTypeCatalogUnavailable ErrorType = "catalog_unavailable"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
)

// SearchError represents an error raised while turning a query into retailer searches
type SearchError struct {
	Type     ErrorType
	Retailer string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *SearchError) Error() string {
	if e.Retailer == "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s - %v", e.Type, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Retailer, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Retailer, e.Message)
}

// Unwrap returns the underlying error
func (e *SearchError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *SearchError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork:
		return true
	default:
		return false
	}
}

// New creates a new SearchError
func New(errType ErrorType, retailer, message string, err error) *SearchError {
	return &SearchError{
		Type:     errType,
		Retailer: retailer,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *SearchError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewLLMProtocol creates a new LLM protocol error
func NewLLMProtocol(message string, err error) *SearchError {
	return New(ErrorTypeLLMProtocol, "", message, err)
}

// NewNetwork creates a new network error
func NewNetwork(retailer, message string, err error) *SearchError {
	return New(ErrorTypeNetwork, retailer, message, err)
}

// NewAdapterInput creates a new adapter input error
func NewAdapterInput(retailer, message string) *SearchError {
	return New(ErrorTypeAdapterInput, retailer, message, nil)
}

// NewCatalogUnavailable creates a new catalog error
func NewCatalogUnavailable(retailer, message string, err error) *SearchError {
	return New(ErrorTypeCatalogUnavailable, retailer, message, err)
}

// NewCache creates a new cache error
func NewCache(message string, err error) *SearchError {
	return New(ErrorTypeCache, "", message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(retailer, message string, err error) *SearchError {
	return New(ErrorTypePublisher, retailer, message, err)
}

// NewValidation creates a new validation error
func NewValidation(retailer, message string) *SearchError {
	return New(ErrorTypeValidation, retailer, message, nil)
}

// IsType reports whether err wraps a SearchError of the given type
func IsType(err error, errType ErrorType) bool {
	var se *SearchError
	if stderrors.As(err, &se) {
		return se.Type == errType
	}
	return false
}
