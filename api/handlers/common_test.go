package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BaSui01/shopagent/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// 🧪 Common 函数测试
// =============================================================================

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, map[string]string{"message": "hello"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.JSONEq(t, `{"message":"hello"}`, w.Body.String())
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        *types.Error
		wantStatus int
	}{
		{"invalid request", types.NewError(types.ErrInvalidRequest, "bad"), http.StatusBadRequest},
		{"unauthorized", types.NewError(types.ErrUnauthorized, "no"), http.StatusUnauthorized},
		{"not found", types.NewError(types.ErrNotFound, "missing"), http.StatusNotFound},
		{"rate limited", types.NewError(types.ErrRateLimited, "slow down"), http.StatusTooManyRequests},
		{"timeout", types.NewError(types.ErrTimeout, "late"), http.StatusGatewayTimeout},
		{"catalog", types.NewError(types.ErrCatalogUnavailable, "mongo"), http.StatusServiceUnavailable},
		{"extraction", types.NewError(types.ErrExtractionFailed, "llm"), http.StatusBadGateway},
		{"workflow", types.NewError(types.ErrWorkflowFailed, "boom"), http.StatusInternalServerError},
		{"explicit status", types.NewError(types.ErrCatalogUnavailable, "mongo").WithHTTPStatus(http.StatusInternalServerError), http.StatusInternalServerError},
		{"unknown code", types.NewError("SOMETHING_ELSE", "?"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err, zap.NewNop())

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, string(tt.err.Code), resp.Error.Code)
			assert.Equal(t, tt.err.Message, resp.Error.Message)
		})
	}
}

func TestWriteError_IncludesCauseDetails(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, types.NewError(types.ErrWorkflowFailed, "agent run failed").WithCause(errors.New("mongo down")), nil)

	resp := decodeResponse(t, w)
	assert.Equal(t, "mongo down", resp.Error.Details)
}

func TestWriteFailure(t *testing.T) {
	w := httptest.NewRecorder()
	WriteFailure(w, fmt.Errorf("node x failed: %w", context.DeadlineExceeded), types.ErrWorkflowFailed, "agent run failed", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, string(types.ErrTimeout), resp.Error.Code)
	assert.True(t, resp.Error.Retryable)

	w = httptest.NewRecorder()
	cause := types.NewError(types.ErrExtractionFailed, "llm").WithRetryable(true)
	WriteFailure(w, cause, types.ErrWorkflowFailed, "agent run failed", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp = decodeResponse(t, w)
	assert.Equal(t, string(types.ErrWorkflowFailed), resp.Error.Code)
	assert.True(t, resp.Error.Retryable)
}

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Query string `json:"query"`
	}

	t.Run("valid with unknown fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"query":"iphone","extra":1}`))
		var p payload
		require.NoError(t, DecodeJSONBody(w, r, &p, nil))
		assert.Equal(t, "iphone", p.Query)
	})

	t.Run("invalid json", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"query":`))
		var p payload
		assert.Error(t, DecodeJSONBody(w, r, &p, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		var p payload
		assert.Error(t, DecodeJSONBody(w, r, &p, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		big := `{"query":"` + strings.Repeat("a", maxBodyBytes) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		var p payload
		assert.Error(t, DecodeJSONBody(w, r, &p, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestValidateContentType(t *testing.T) {
	for ct, want := range map[string]bool{
		"application/json":                true,
		"application/json; charset=utf-8": true,
		"Application/JSON":                true,
		"text/plain":                      false,
		"":                                false,
	} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		if ct != "" {
			r.Header.Set("Content-Type", ct)
		}
		assert.Equal(t, want, ValidateContentType(w, r, nil), ct)
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusOK)
	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusTeapot, rw.StatusCode)
	assert.Equal(t, int64(5), rw.BytesWritten)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Same(t, rec, rw.Unwrap())
}

func TestResponseWriter_ImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)
	_, _ = rw.Write([]byte("x"))
	assert.Equal(t, http.StatusOK, rw.StatusCode)
	assert.True(t, rw.Written)
}
