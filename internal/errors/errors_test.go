package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorization(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		category  ErrorCategory
		severity  ErrorSeverity
		retryable bool
	}{
		{ErrCodeInvalidFormat, CategoryParse, SeverityWarning, false},
		{ErrCodeStorageFailure, CategoryStorage, SeverityError, true},
		{ErrCodeNetworkFailure, CategoryNetwork, SeverityError, true},
		{ErrCodeNotFound, CategoryService, SeverityInfo, false},
		{ErrCodeInternalError, CategoryService, SeverityCritical, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			e := NewAppError(tt.code, "msg")
			assert.Equal(t, tt.category, e.Category)
			assert.Equal(t, tt.severity, e.Severity)
			assert.Equal(t, tt.retryable, e.IsRetryable())
		})
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := StorageError("save favorites", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STORAGE_FAILURE")
	assert.Contains(t, err.Error(), "disk full")

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsAppError(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeStorageFailure))
	assert.Same(t, err, GetAppError(wrapped))
}

func TestGetAppErrorConvertsPlainErrors(t *testing.T) {
	appErr := GetAppError(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternalError, appErr.Code)
	assert.False(t, IsAppError(stderrors.New("boom")))
}

func TestCLIErrorHandlerFormat(t *testing.T) {
	h := NewCLIErrorHandler(false, nil)

	assert.Equal(t, "ℹ️  INFO: prompt p1 not found", h.FormatError(NotFoundError("prompt p1")))
	assert.True(t, strings.HasPrefix(h.FormatError(NetworkError("fetch catalog", stderrors.New("refused"))), "❌ ERROR"))

	verbose := NewCLIErrorHandler(true, nil)
	assert.Contains(t, verbose.FormatError(NetworkError("fetch catalog", stderrors.New("refused"))), "refused")
	assert.Error(t, verbose.HandleError(stderrors.New("x")))
}

func TestHTTPErrorHandlerWrite(t *testing.T) {
	h := NewHTTPErrorHandler(true, nil)
	rec := httptest.NewRecorder()

	h.WriteHTTPError(rec, NotFoundError("prompt").WithDetails("id=p1"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
	assert.Contains(t, rec.Body.String(), `"details":"id=p1"`)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusCode(ParseError("import", stderrors.New("x"))))
	assert.Equal(t, http.StatusBadGateway, StatusCode(NetworkError("fetch", stderrors.New("x"))))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(InternalError("x")))
}
