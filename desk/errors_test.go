package desk

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name             string
		err              *APIError
		wantMsg          string
		wantNotFound     bool
		wantUnauthorized bool
		wantRateLimited  bool
	}{
		{
			name:         "not found",
			err:          &APIError{StatusCode: http.StatusNotFound, Status: "404 Not Found", Body: `{"message":"Resource Not Found"}`},
			wantMsg:      `desk API error: status 404: 404 Not Found: {"message":"Resource Not Found"}`,
			wantNotFound: true,
		},
		{
			name:             "unauthorized without status text",
			err:              &APIError{StatusCode: http.StatusUnauthorized},
			wantMsg:          "desk API error: status 401: Unauthorized: ",
			wantUnauthorized: true,
		},
		{
			name:             "forbidden",
			err:              &APIError{StatusCode: http.StatusForbidden, Status: "403 Forbidden"},
			wantMsg:          "desk API error: status 403: 403 Forbidden: ",
			wantUnauthorized: true,
		},
		{
			name:            "throttled with cause",
			err:             &APIError{StatusCode: http.StatusTooManyRequests, Status: "429 Too Many Requests", Err: errors.New("unexpected EOF")},
			wantMsg:         "desk API error: status 429: 429 Too Many Requests:  (unexpected EOF)",
			wantRateLimited: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.wantNotFound, tt.err.IsNotFound())
			assert.Equal(t, tt.wantUnauthorized, tt.err.IsUnauthorized())
			assert.Equal(t, tt.wantRateLimited, tt.err.IsRateLimited())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")

	var err error = &TransportError{Method: http.MethodGet, Resource: "cases", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "desk request GET cases failed: connection refused", err.Error())

	err = &APIError{StatusCode: http.StatusBadGateway, Err: cause}
	assert.ErrorIs(t, err, cause)
}

func TestDecode(t *testing.T) {
	note, err := Decode[Note]([]byte(`{"id":3,"body":"called back","suppress_rules":true}`))
	require.NoError(t, err)
	assert.Equal(t, Note{ID: 3, Body: "called back", SuppressRules: true}, note)

	_, err = Decode[Note]([]byte(`{"id":"three"}`))
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	var typeErr *json.UnmarshalTypeError
	assert.ErrorAs(t, err, &typeErr)
	assert.Equal(t, `{"id":"three"}`, decodeErr.Body)
}
