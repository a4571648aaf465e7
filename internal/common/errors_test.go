package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"malformed json", NewAppError("INVALID_JSON", "bad", ErrMalformedJSON), http.StatusBadRequest},
		{"wrapped malformed json", fmt.Errorf("job description: %w", NewAppError("INVALID_JSON", "bad", ErrMalformedJSON)), http.StatusBadRequest},
		{"missing field", NewAppError("MISSING_FIELD", "company", ErrMissingField), http.StatusUnprocessableEntity},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestAppErrorMessageAndCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewAppError("INVALID_JSON", "job description is not valid JSON", ErrMalformedJSON))

	assert.Equal(t, "INVALID_JSON", ErrorCode(err))
	assert.Equal(t, "job description is not valid JSON", PublicMessage(err))
	assert.Equal(t, "INTERNAL", ErrorCode(errors.New("x")))
	assert.Equal(t, "x", PublicMessage(errors.New("x")))
	assert.Contains(t, err.Error(), "malformed json")
}
