package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrorHandler provides interface-specific error handling
type ErrorHandler interface {
	HandleError(err error) error
	FormatError(err error) string
}

// CLIErrorHandler handles errors for the CLI
type CLIErrorHandler struct {
	Verbose bool
	logger  *zap.Logger
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(verbose bool, logger *zap.Logger) *CLIErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLIErrorHandler{
		Verbose: verbose,
		logger:  logger,
	}
}

// HandleError logs err and returns it formatted for display
func (h *CLIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)

	if h.Verbose {
		h.logger.Debug("command failed",
			zap.String("code", string(appErr.Code)),
			zap.String("severity", string(appErr.Severity)),
			zap.Error(appErr.Cause))
	}

	return fmt.Errorf("%s", h.FormatError(appErr))
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	message := appErr.Message
	if h.Verbose && appErr.Cause != nil {
		message = fmt.Sprintf("%s: %v", message, appErr.Cause)
	}

	switch appErr.Severity {
	case SeverityCritical:
		return fmt.Sprintf("❌ CRITICAL: %s", message)
	case SeverityError:
		return fmt.Sprintf("❌ ERROR: %s", message)
	case SeverityWarning:
		return fmt.Sprintf("⚠️  WARNING: %s", message)
	case SeverityInfo:
		return fmt.Sprintf("ℹ️  INFO: %s", message)
	default:
		return fmt.Sprintf("❌ %s", message)
	}
}

// HTTPErrorHandler handles errors for the HTTP server
type HTTPErrorHandler struct {
	IncludeDetails bool
	logger         *zap.Logger
}

// NewHTTPErrorHandler creates a new HTTP error handler
func NewHTTPErrorHandler(includeDetails bool, logger *zap.Logger) *HTTPErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPErrorHandler{
		IncludeDetails: includeDetails,
		logger:         logger,
	}
}

// HandleError logs err and returns it as an AppError
func (h *HTTPErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	h.logger.Warn("request failed",
		zap.String("code", string(appErr.Code)),
		zap.String("message", appErr.Message),
		zap.Error(appErr.Cause))
	return appErr
}

// FormatError formats an error as a JSON response body
func (h *HTTPErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	body := map[string]interface{}{
		"code":      appErr.Code,
		"message":   appErr.Message,
		"timestamp": appErr.Timestamp,
	}
	if h.IncludeDetails && appErr.Details != "" {
		body["details"] = appErr.Details
	}
	if h.IncludeDetails && appErr.Context != nil {
		body["context"] = appErr.Context
	}

	jsonBytes, _ := json.Marshal(map[string]interface{}{"error": body})
	return string(jsonBytes)
}

// WriteHTTPError writes an error response
func (h *HTTPErrorHandler) WriteHTTPError(w http.ResponseWriter, err error) {
	appErr := GetAppError(err)
	h.HandleError(appErr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(appErr))
	w.Write([]byte(h.FormatError(appErr)))
}

// StatusCode maps error codes to HTTP status codes
func StatusCode(appErr *AppError) int {
	switch appErr.Code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeMissingField, ErrCodeInvalidFormat, ErrCodeFileCorrupted:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeNetworkFailure, ErrCodeOffline:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
