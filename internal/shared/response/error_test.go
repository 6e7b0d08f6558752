package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empires-server/internal/shared/errors"
)

func TestError_StatusMapping(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		err  error
		code int
	}{
		{errors.Validation("bad"), http.StatusBadRequest},
		{errors.NotFound("missing"), http.StatusNotFound},
		{errors.Forbidden("no"), http.StatusForbidden},
		{errors.RateLimited("slow down"), http.StatusTooManyRequests},
		{errors.MethodNotAllowed(http.MethodPut), http.StatusMethodNotAllowed},
		{errors.WrapConfiguration("bad data", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), logger, tt.err)
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
	}
}

func TestError_IncludesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := errors.ValidationList("invalid attack batch", []string{"no attacks recorded"})

	Error(rec, httptest.NewRequest(http.MethodPost, "/api/coalitions/detect", nil), slog.New(slog.DiscardHandler), err)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "validation", body.Error)
	assert.Equal(t, []string{"no attacks recorded"}, body.Details)
	assert.Equal(t, http.StatusBadRequest, body.Code)
}
