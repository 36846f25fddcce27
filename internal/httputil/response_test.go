package httputil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, map[string]string{"hello": "world"}, 201)

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "world", body["hello"])
}

func TestRespondErrorWithCode(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithCode(rec, "invalid email or password", CodeInvalidCredentials, 401)

	assert.Equal(t, 401, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid email or password", body.Error)
	assert.Equal(t, CodeInvalidCredentials, body.Code)
}

func TestRespondErrorOmitsEmptyCode(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, "boom", 500)

	assert.NotContains(t, rec.Body.String(), "code")
}

func TestRespondValidationErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondValidationErrors(rec, []FieldError{
		{Field: "email", Message: "cannot be blank"},
		{Field: "password", Message: "the length must be between 6 and 128"},
	})

	assert.Equal(t, 400, rec.Code)

	var body ValidationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "email", body.Errors[0].Field)
}
