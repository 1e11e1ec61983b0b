// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/meattrack/internal/platform/constants"
	"github.com/taibuivan/meattrack/internal/platform/cookie"
	"github.com/taibuivan/meattrack/internal/platform/middleware"
	"github.com/taibuivan/meattrack/internal/platform/sec"
	"github.com/taibuivan/meattrack/internal/users/account"
)

// sidSessions treats the sid cookie as the user id and "s-<id>" as the login session.
type sidSessions struct{}

func (sidSessions) Resolve(_ context.Context, browserSessionID, _ string) (*sec.Resolution, error) {
	session := &sec.SessionContext{BrowserSessionID: browserSessionID, CSRFToken: "csrf-" + browserSessionID}
	if browserSessionID != "" {
		session.UserID = browserSessionID
		session.SessionID = "s-" + browserSessionID
	}
	return &sec.Resolution{Session: session, Path: "marker"}, nil
}

type sidCSRF struct{}

func (sidCSRF) Verify(_ context.Context, browserSessionID, supplied string) bool {
	return browserSessionID != "" && sec.TokensEqual("csrf-"+browserSessionID, supplied)
}

// storeRoles reads role and status straight from the fake store.
type storeRoles struct{ s *store }

func (roles storeRoles) LoadAccess(ctx context.Context, userID string) (sec.UserRole, sec.UserStatus, error) {
	user, err := roles.s.FindByID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return user.Role, user.Status, nil
}

func newRouter(s *store) http.Handler {
	guard := middleware.NewGuard(middleware.GuardDeps{
		Sessions: sidSessions{},
		CSRF:     sidCSRF{},
		Roles:    storeRoles{s: s},
		Jar:      cookie.NewJar(false),
	})
	handler := account.NewHandler(newService(s), guard)

	router := chi.NewRouter()
	router.Use(guard.Session, guard.CSRF)
	router.Mount("/account", handler.Routes())
	router.Mount("/users", handler.AdminRoutes())
	return router
}

func send(t *testing.T, handler http.Handler, userID, method, path, body string) (int, map[string]any) {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		request.AddCookie(&http.Cookie{Name: constants.BrowserSessionCookieName, Value: userID})
		request.Header.Set(constants.CSRFHeaderName, "csrf-"+userID)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	payload := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return recorder.Code, payload
}

func TestHTTP_Me(t *testing.T) {
	s := newStore()
	s.addUser("u1", "alice", sec.RoleViewer)
	router := newRouter(s)

	status, _ := send(t, router, "", http.MethodGet, "/account/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, payload := send(t, router, "u1", http.MethodGet, "/account/me", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", payload[account.FieldUser].(map[string]any)["username"])
}

func TestHTTP_OwnSessions(t *testing.T) {
	s := newStore()
	s.addUser("u1", "alice", sec.RoleViewer)
	s.addUser("u2", "bob", sec.RoleViewer)
	s.addSession("s-u1", "u1", 0)
	s.addSession(sessionMine, "u1", 0)
	s.addSession(sessionTheirs, "u2", 0)
	s.typedIDs = true
	router := newRouter(s)

	status, payload := send(t, router, "u1", http.MethodGet, "/account/me/sessions", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, payload[account.FieldSessions], 2)

	status, _ = send(t, router, "u1", http.MethodDelete, "/account/me/sessions/"+sessionMine, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = send(t, router, "u1", http.MethodDelete, "/account/me/sessions/"+sessionTheirs, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = send(t, router, "u1", http.MethodDelete, "/account/me/sessions/s-u1", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, s.sessions, "s-u1")
}

/*
TestHTTP_AdminRoutes checks the role gates on /users and the self-status guard.
*/
func TestHTTP_AdminRoutes(t *testing.T) {
	s := newStore()
	s.addUser("admin", "root", sec.RoleAdmin)
	s.addUser("manager", "boss", sec.RoleManager)
	s.addUser(viewerID, "eve", sec.RoleViewer)
	s.addSession("s-viewer", viewerID, 0)
	router := newRouter(s)

	status, payload := send(t, router, viewerID, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied", payload["message"])

	status, payload = send(t, router, "manager", http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, payload[account.FieldUsers], 3)

	status, _ = send(t, router, "manager", http.MethodPatch, "/users/"+viewerID+"/status", `{"status":"inactive"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = send(t, router, "admin", http.MethodPatch, "/users/admin/status", `{"status":"inactive"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = send(t, router, "admin", http.MethodPatch, "/users/abc/status", `{"status":"inactive"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, payload = send(t, router, "admin", http.MethodPatch, "/users/"+viewerID+"/status", `{"status":"inactive"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "inactive", payload[account.FieldUser].(map[string]any)["status"])
	assert.Empty(t, s.sessions)
}
