package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeDatabase    ErrorType = "database"
	ErrorTypeExternal    ErrorType = "external_api"
	ErrorTypeInternal    ErrorType = "internal"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeUnparseable ErrorType = "unparseable"
	ErrorTypeNotFound    ErrorType = "not_found"
)

// Error codes used across the logging pipeline
const (
	CodeCompletionFailed   = "COMPLETION_FAILED"
	CodeInvalidDate        = "INVALID_DATE"
	CodeInvalidAction      = "INVALID_ACTION"
	CodeInvalidSetting     = "INVALID_SETTING"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeSummaryUnavailable = "SUMMARY_UNAVAILABLE"
	CodeNotFound           = "NOT_FOUND"
	CodeDBError            = "DB_ERROR"
	CodeInternal           = "INTERNAL"
	CodeTimeout            = "TIMEOUT"
	CodeUnparseable        = "UNPARSEABLE"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Message  string
	Code     string
	Internal error
	Context  map[string]interface{}
	Source   string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// UserMessage is the plain-text explanation shown to caregivers.
// Internal details never leak into it.
func (e *AppError) UserMessage() string {
	if e.Code == CodeSummaryUnavailable {
		return "Your entries were saved, but the day's totals could not be loaded. Don't send them again; check /today in a moment."
	}
	switch e.Type {
	case ErrorTypeValidation, ErrorTypeNotFound:
		return e.Message
	case ErrorTypeExternal, ErrorTypeTimeout:
		return "I couldn't reach the assistant right now. Nothing was logged, please try again in a moment."
	case ErrorTypeUnparseable:
		return "I didn't understand that. Try something like \"120ml pediasure\" or \"pee 80ml\"."
	case ErrorTypeDatabase:
		return "Saving failed. Nothing was logged, please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// Retryable reports whether the same request may succeed later
func (e *AppError) Retryable() bool {
	if e.Code == CodeSummaryUnavailable {
		return false
	}
	switch e.Type {
	case ErrorTypeExternal, ErrorTypeTimeout, ErrorTypeDatabase:
		return true
	}
	return false
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", file, line)

	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  source,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", file, line)

	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   source,
		Context:  make(map[string]interface{}),
	}
}

// As extracts an AppError from err
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

// UserMessage renders any error for a caregiver
func UserMessage(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.UserMessage()
	}
	return "Something went wrong. Please try again."
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	if appErr, ok := As(err); ok {
		h.handleAppError(ctx, appErr)
	} else {
		h.handleGenericError(ctx, err)
	}
}

func (h *Handler) handleAppError(ctx context.Context, err *AppError) {
	switch err.Type {
	case ErrorTypeValidation, ErrorTypeUnparseable, ErrorTypeNotFound:
		h.logger.WarnContext(ctx, "Rejected request", err.LogFields()...)
	case ErrorTypeDatabase, ErrorTypeExternal, ErrorTypeInternal, ErrorTypeTimeout:
		h.logger.ErrorContext(ctx, "Critical error", err.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

func (h *Handler) handleGenericError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
}

// LogAndReturn logs an error and returns it
func (h *Handler) LogAndReturn(ctx context.Context, err error) error {
	h.Handle(ctx, err)
	return err
}

// Convenience constructors

func NewValidationError(code, message string) *AppError {
	return New(ErrorTypeValidation, code, message)
}

func NewDatabaseError(err error) *AppError {
	return Wrap(err, ErrorTypeDatabase, CodeDBError, "Database operation failed")
}

func NewStoreUnavailableError(err error) *AppError {
	return Wrap(err, ErrorTypeDatabase, CodeStoreUnavailable, "Event store unavailable")
}

// NewSummaryUnavailableError marks a read failure after entries were written
func NewSummaryUnavailableError(err error) *AppError {
	return Wrap(err, ErrorTypeDatabase, CodeSummaryUnavailable, "Entries saved but day summary unavailable")
}

func NewCompletionError(err error, provider string) *AppError {
	return Wrap(err, ErrorTypeExternal, CodeCompletionFailed, fmt.Sprintf("%s completion failed", provider)).
		WithContext("provider", provider)
}

func NewTimeoutError(operation string, err error) *AppError {
	return Wrap(err, ErrorTypeTimeout, CodeTimeout, fmt.Sprintf("%s operation timed out", operation)).
		WithContext("operation", operation)
}

func NewUnparseableError(message string) *AppError {
	return New(ErrorTypeUnparseable, CodeUnparseable, message)
}

func NewNotFoundError(message string) *AppError {
	return New(ErrorTypeNotFound, CodeNotFound, message)
}

func NewInternalError(err error) *AppError {
	return Wrap(err, ErrorTypeInternal, CodeInternal, "Internal server error")
}
