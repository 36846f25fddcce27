package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	setSessionCookie(rec, "mentorhub_session", "abc123", time.Hour, false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	c := cookies[0]
	assert.Equal(t, "mentorhub_session", c.Name)
	assert.Equal(t, "abc123", c.Value)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestSetSessionCookieProduction(t *testing.T) {
	rec := httptest.NewRecorder()
	setSessionCookie(rec, "mentorhub_session", "abc123", time.Hour, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}

func TestClearSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	clearSessionCookie(rec, "mentorhub_session", false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestReadSessionCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "mentorhub_session", Value: "abc123"})

	id, err := readSessionCookie(r, "mentorhub_session")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	_, err = readSessionCookie(r, "other_cookie")
	assert.Error(t, err)
}
