// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/meattrack/internal/platform/cookie"
)

func findCookie(t *testing.T, recorder *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, value := range recorder.Result().Cookies() {
		if value.Name == name {
			return value
		}
	}
	require.Failf(t, "cookie not set", "name=%s", name)
	return nil
}

func TestJar_BrowserSessionIsSessionCookie(t *testing.T) {
	recorder := httptest.NewRecorder()
	cookie.NewJar(true).SetBrowserSession(recorder, "abc")

	sid := findCookie(t, recorder, "sid")
	assert.Equal(t, "abc", sid.Value)
	assert.True(t, sid.HttpOnly)
	assert.True(t, sid.Secure)
	assert.Equal(t, http.SameSiteStrictMode, sid.SameSite)
	assert.Zero(t, sid.MaxAge)
	assert.True(t, sid.Expires.IsZero())
}

func TestJar_RememberCarriesExpiry(t *testing.T) {
	recorder := httptest.NewRecorder()
	cookie.NewJar(false).SetRemember(recorder, "tok", time.Now().Add(30*24*time.Hour))

	remember := findCookie(t, recorder, "session_token")
	assert.Equal(t, "tok", remember.Value)
	assert.Greater(t, remember.MaxAge, 29*24*3600)
	assert.False(t, remember.Expires.IsZero())
	assert.False(t, remember.Secure)
}

func TestJar_ClearAllAndRead(t *testing.T) {
	recorder := httptest.NewRecorder()
	cookie.NewJar(false).ClearAll(recorder)
	assert.Equal(t, -1, findCookie(t, recorder, "sid").MaxAge)
	assert.Equal(t, -1, findCookie(t, recorder, "session_token").MaxAge)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: "sid", Value: "s1"})
	request.AddCookie(&http.Cookie{Name: "session_token", Value: "t1"})
	browserSessionID, rememberToken := cookie.Read(request)
	assert.Equal(t, "s1", browserSessionID)
	assert.Equal(t, "t1", rememberToken)
}
