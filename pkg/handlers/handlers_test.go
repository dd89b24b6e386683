package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chris/academy-booking-core/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type body struct {
	Name  string   `json:"name" validate:"required"`
	Items []string `json:"items" validate:"required,min=1"`
}

func TestDecode(t *testing.T) {
	v := NewValidator()

	t.Run("Success", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","items":["x"]}`))

		require.NoError(t, v.Decode(req, &b, false))
		assert.Equal(t, "a", b.Name)
	})

	t.Run("Reports JSON Field Names", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":[]}`))

		err := v.Decode(req, &b, false)

		require.ErrorIs(t, err, apperrors.ErrValidation)
		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		fields := appErr.Details["fields"].(map[string]string)
		assert.Equal(t, "is required", fields["name"])
		assert.Contains(t, fields["items"], "at least 1")
	})

	t.Run("Unknown Field", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","items":["x"],"admin":true}`))

		assert.ErrorIs(t, v.Decode(req, &b, false), apperrors.ErrValidation)
	})

	t.Run("Empty Optional Body", func(t *testing.T) {
		var b struct {
			Reason string `json:"reason" validate:"max=5"`
		}
		req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)

		assert.NoError(t, v.Decode(req, &b, true))
	})
}

func TestWriteError(t *testing.T) {
	t.Run("Typed Error", func(t *testing.T) {
		rr := httptest.NewRecorder()

		WriteError(rr, httptest.NewRequest(http.MethodGet, "/", nil), apperrors.NotFound("Booking not found").WithDetail("booking_id", "b1"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"code":"NOT_FOUND","message":"Booking not found","details":{"booking_id":"b1"}}`, rr.Body.String())
	})

	t.Run("Untyped Error", func(t *testing.T) {
		rr := httptest.NewRecorder()

		WriteError(rr, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"code":"INTERNAL_ERROR","message":"Internal server error"}`, rr.Body.String())
	})
}
