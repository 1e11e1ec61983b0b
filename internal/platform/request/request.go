// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and body decoding,
ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/ctxutil"
	"github.com/taibuivan/meattrack/internal/platform/sec"
	"github.com/taibuivan/meattrack/internal/platform/validate"
)

// maxBodyBytes caps decoded request bodies.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
IsForm reports whether the request body is a urlencoded or multipart form.
*/
func IsForm(request *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

/*
FormValue returns a trimmed form field. It is only meaningful when [IsForm] is true.
*/
func FormValue(request *http.Request, name string) string {
	return strings.TrimSpace(request.PostFormValue(name))
}

/*
FormBool interprets checkbox-style values ("1", "on", "true").
*/
func FormBool(request *http.Request, name string) bool {
	switch strings.ToLower(FormValue(request, name)) {
	case "1", "on", "true", "yes":
		return true
	default:
		return false
	}
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Session returns the caller's session context, or nil before the session middleware ran.
*/
func Session(request *http.Request) *sec.SessionContext {
	return ctxutil.GetSession(request.Context())
}

/*
RequiredSession ensures the request is authenticated and returns the session context.

Returns:
  - *sec.SessionContext: The authenticated caller
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredSession(request *http.Request) (*sec.SessionContext, error) {
	session := ctxutil.GetAuthUser(request.Context())
	if session == nil {
		return nil, apperr.Unauthorized("Not authenticated")
	}
	return session, nil
}

/*
RequiredUserID returns the ID of the currently logged-in user.
*/
func RequiredUserID(request *http.Request) (string, error) {
	session, err := RequiredSession(request)
	if err != nil {
		return "", err
	}
	return session.UserID, nil
}

/*
ClientIP returns the remote address with any port removed.

RealIP middleware may already have replaced RemoteAddr with a bare forwarded address.
*/
func ClientIP(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
