// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package cookie writes and clears the two authentication cookies.
//
// Both cookies are HttpOnly and SameSite=Strict. The browser session cookie has
// no Expires attribute; the remember-me cookie carries one.
package cookie

import (
	"net/http"
	"time"

	"github.com/taibuivan/meattrack/internal/platform/constants"
)

// Jar holds the cookie attributes shared by every auth cookie.
type Jar struct {
	Secure bool
}

// NewJar returns a Jar. secure should be true behind TLS.
func NewJar(secure bool) *Jar {
	return &Jar{Secure: secure}
}

// SetBrowserSession sends the sid cookie for the lifetime of the browser.
func (jar *Jar) SetBrowserSession(writer http.ResponseWriter, browserSessionID string) {
	http.SetCookie(writer, jar.build(constants.BrowserSessionCookieName, browserSessionID, time.Time{}, 0))
}

// SetRemember sends the persistent remember-me cookie.
func (jar *Jar) SetRemember(writer http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(writer, jar.build(constants.RememberCookieName, token, expiresAt.UTC(), maxAge))
}

// ClearRemember expires the remember-me cookie.
func (jar *Jar) ClearRemember(writer http.ResponseWriter) {
	http.SetCookie(writer, jar.build(constants.RememberCookieName, "", time.Unix(0, 0), -1))
}

// ClearAll expires both cookies.
func (jar *Jar) ClearAll(writer http.ResponseWriter) {
	http.SetCookie(writer, jar.build(constants.BrowserSessionCookieName, "", time.Unix(0, 0), -1))
	jar.ClearRemember(writer)
}

// Read returns the browser session id and remember token presented by the client.
func Read(request *http.Request) (browserSessionID, rememberToken string) {
	if value, err := request.Cookie(constants.BrowserSessionCookieName); err == nil {
		browserSessionID = value.Value
	}
	if value, err := request.Cookie(constants.RememberCookieName); err == nil {
		rememberToken = value.Value
	}
	return browserSessionID, rememberToken
}

func (jar *Jar) build(name, value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     constants.CookiePath,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   jar.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
