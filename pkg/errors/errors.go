package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration represents missing or invalid configuration
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeDependency represents a missing extraction engine
	ErrorTypeDependency ErrorType = "dependency"
	// ErrorTypeStore represents unreadable or unwritable listing history
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeExtraction represents a failed page extraction for one site
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypeNotification represents a failed notification transport
	ErrorTypeNotification ErrorType = "notification"
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
)

// Process exit codes.
const (
	ExitOK            = 0
	ExitConfiguration = 1
	ExitDependency    = 2
	ExitStore         = 3
)

// AppError represents a categorised error raised somewhere in a run
type AppError struct {
	Type    ErrorType
	Site    string
	Message string
	Err     error
	Time    time.Time

	// RetryAfter is how long a rate limited site asked to be left alone
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *AppError) Error() string {
	prefix := fmt.Sprintf("[%s]", e.Type)
	if e.Site != "" {
		prefix += " " + e.Site + ":"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s - %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", prefix, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(errType ErrorType, site, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Site:    site,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *AppError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewDependency creates a new missing dependency error
func NewDependency(message string, err error) *AppError {
	return New(ErrorTypeDependency, "", message, err)
}

// NewStore creates a new listing store error
func NewStore(message string, err error) *AppError {
	return New(ErrorTypeStore, "", message, err)
}

// NewExtraction creates a new extraction error
func NewExtraction(site, message string, err error) *AppError {
	return New(ErrorTypeExtraction, site, message, err)
}

// NewNotification creates a new notification error
func NewNotification(transport, message string, err error) *AppError {
	return New(ErrorTypeNotification, transport, message, err)
}

// NewNetwork creates a new network error
func NewNetwork(site, message string, err error) *AppError {
	return New(ErrorTypeNetwork, site, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(site string, duration time.Duration) *AppError {
	message := fmt.Sprintf("rate limited for %v", duration)
	err := New(ErrorTypeRateLimit, site, message, nil)
	err.RetryAfter = duration
	return err
}

// TypeOf returns the type of the first AppError in err's chain, or "" if none
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// Is reports whether err carries an AppError of the given type
func Is(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// ExitCode maps an error to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch TypeOf(err) {
	case ErrorTypeDependency:
		return ExitDependency
	case ErrorTypeStore:
		return ExitStore
	default:
		return ExitConfiguration
	}
}
