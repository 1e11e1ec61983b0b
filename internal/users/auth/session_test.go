// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/constants"
	"github.com/taibuivan/meattrack/internal/platform/sec"
)

func TestCreateSession_Lifetimes(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seedUser(t, "alice", true)
	ctx := context.Background()

	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.manager.now = func() time.Time { return fixed }

	token, expiresAt, err := f.manager.CreateSession(ctx, user.ID, false, ClientMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{64}$`, token)
	assert.Equal(t, fixed.Add(24*time.Hour), expiresAt)

	_, rememberExpiry, err := f.manager.CreateSession(ctx, user.ID, true, ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(30*24*time.Hour), rememberExpiry)

	stored, err := f.sessions.FindByTokenHash(ctx, sec.HashToken(token))
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Equal(t, "10.0.0.1", stored.IPAddress)
	assert.NotEqual(t, token, stored.TokenHash)
}

func TestValidateSession_ExistsAndUnexpired(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seedUser(t, "alice", true)
	ctx := context.Background()

	token, expiresAt, err := f.manager.CreateSession(ctx, user.ID, false, ClientMeta{})
	require.NoError(t, err)

	session, err := f.manager.ValidateSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)

	tests := []struct {
		name  string
		now   time.Time
		valid bool
	}{
		{"one_second_before_expiry", expiresAt.Add(-time.Second), true},
		{"at_expiry", expiresAt, false},
		{"after_expiry", expiresAt.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.manager.now = func() time.Time { return tt.now }
			_, err := f.manager.ValidateSession(ctx, token)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSession)
			}
		})
	}

	f.manager.now = time.Now
	_, err = f.manager.ValidateSession(ctx, "unknown")
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = f.manager.ValidateSession(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateSession_ExpiryInThePast(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seedUser(t, "alice", true)
	ctx := context.Background()

	token, _, err := f.manager.CreateSession(ctx, user.ID, true, ClientMeta{})
	require.NoError(t, err)
	f.sessions.expire(sec.HashToken(token), time.Now().Add(-time.Minute))

	_, err = f.manager.ValidateSession(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	resolution, err := f.manager.Resolve(ctx, "", token)
	require.NoError(t, err)
	assert.False(t, resolution.Session.IsAuthenticated())
	assert.True(t, resolution.ClearRememberCookie)
}

func TestRevokeSession_NeverValidatesAgain(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seedUser(t, "alice", true)
	ctx := context.Background()

	token, _, err := f.manager.CreateSession(ctx, user.ID, false, ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, f.manager.RevokeSession(ctx, token))
	_, err = f.manager.ValidateSession(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	assert.NoError(t, f.manager.RevokeSession(ctx, token))
	assert.NoError(t, f.manager.RevokeSession(ctx, ""))
}

func TestResolve_Anonymous(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	resolution, err := f.manager.Resolve(ctx, "", "")
	require.NoError(t, err)

	assert.Equal(t, PathAnonymous, resolution.Path)
	assert.True(t, resolution.IssueBrowserCookie)
	assert.False(t, resolution.Session.IsAuthenticated())
	assert.Len(t, resolution.Session.CSRFToken, 64)

	again, err := f.manager.Resolve(ctx, resolution.Session.BrowserSessionID, "")
	require.NoError(t, err)
	assert.False(t, again.IssueBrowserCookie)
	assert.Equal(t, resolution.Session.CSRFToken, again.Session.CSRFToken)
}

func TestResolve_MarkerFastPath(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seedUser(t, "alice", true)
	ctx := context.Background()

	token, _, err := f.manager.CreateSession(ctx, user.ID, false, ClientMeta{})
	require.NoError(t, err)
	browser, err := f.manager.BindLogin(ctx, "", user.ID, token)
	require.NoError(t, err)

	resolution, err := f.manager.Resolve(ctx, browser.ID, "")
	require.NoError(t, err)

	assert.Equal(t, PathMarker, resolution.Path)
	assert.Equal(t, user.ID, resolution.Session.UserID)
	assert.Equal(t, sec.RoleViewer, resolution.Session.Role)
	assert.Equal(t, browser.CSRFToken, resolution.Session.CSRFToken)

	stored, err := f.sessions.FindByTokenHash(ctx, sec.HashToken(token))
	require.NoError(t, err)
	assert.Equal(t, stored.ID, resolution.Session.SessionID)
}

func TestResolve_RememberRestoresMarker(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seedUser(t, "alice", true)
	ctx := context.Background()

	token, _, err := f.manager.CreateSession(ctx, user.ID, true, ClientMeta{})
	require.NoError(t, err)

	resolution, err := f.manager.Resolve(ctx, "expired-sid", token)
	require.NoError(t, err)

	assert.Equal(t, PathRemember, resolution.Path)
	assert.True(t, resolution.IssueBrowserCookie)
	assert.Equal(t, user.ID, resolution.Session.UserID)

	restored, err := f.manager.Resolve(ctx, resolution.Session.BrowserSessionID, token)
	require.NoError(t, err)
	assert.Equal(t, PathMarker, restored.Path)
	assert.False(t, restored.IssueBrowserCookie)
}

func TestResolve_RevokedMarkerKeepsCSRF(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seedUser(t, "alice", true)
	ctx := context.Background()

	token, _, err := f.manager.CreateSession(ctx, user.ID, false, ClientMeta{})
	require.NoError(t, err)
	browser, err := f.manager.BindLogin(ctx, "", user.ID, token)
	require.NoError(t, err)
	require.NoError(t, f.manager.RevokeSession(ctx, token))

	resolution, err := f.manager.Resolve(ctx, browser.ID, "")
	require.NoError(t, err)

	assert.False(t, resolution.Session.IsAuthenticated())
	assert.Equal(t, browser.CSRFToken, resolution.Session.CSRFToken)

	stored, err := f.browsers.Get(ctx, browser.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsBound())
}

func TestResolve_InactiveAccount(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seedUser(t, "alice", true)
	ctx := context.Background()

	token, _, err := f.manager.CreateSession(ctx, user.ID, true, ClientMeta{})
	require.NoError(t, err)
	user.Status = sec.StatusInactive

	resolution, err := f.manager.Resolve(ctx, "", token)
	require.NoError(t, err)
	assert.False(t, resolution.Session.IsAuthenticated())
}

func TestResolve_StorageErrorFailsClosed(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seedUser(t, "alice", true)
	ctx := context.Background()

	token, _, err := f.manager.CreateSession(ctx, user.ID, true, ClientMeta{})
	require.NoError(t, err)
	f.sessions.err = errors.New("connection refused")

	_, err = f.manager.ValidateSession(ctx, token)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidSession)

	resolution, err := f.manager.Resolve(ctx, "", token)
	require.NoError(t, err)
	assert.False(t, resolution.Session.IsAuthenticated())
	assert.False(t, resolution.ClearRememberCookie)
}

func TestResolve_BrowserStoreDown(t *testing.T) {
	f := newFixture(t, Options{})
	f.redis.Close()

	_, err := f.manager.Resolve(context.Background(), "sid", "")
	assert.Error(t, err)
}

func TestBindLogin_RotatesBrowserSession(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seedUser(t, "alice", true)
	ctx := context.Background()

	anonymous, err := f.manager.StartBrowserSession(ctx)
	require.NoError(t, err)

	bound, err := f.manager.BindLogin(ctx, anonymous.ID, user.ID, "token")
	require.NoError(t, err)

	assert.NotEqual(t, anonymous.ID, bound.ID)
	assert.NotEqual(t, anonymous.CSRFToken, bound.CSRFToken)

	_, err = f.browsers.Get(ctx, anonymous.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestBindLogin_StoresOnlyTokenHash(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seedUser(t, "alice", true)
	ctx := context.Background()

	token, _, err := f.manager.CreateSession(ctx, user.ID, false, ClientMeta{})
	require.NoError(t, err)

	bound, err := f.manager.BindLogin(ctx, "", user.ID, token)
	require.NoError(t, err)

	raw, err := f.redis.Get(constants.RedisPrefixBrowserSession + bound.ID)
	require.NoError(t, err)
	assert.NotContains(t, raw, token)
	assert.Contains(t, raw, sec.HashToken(token))

	resolution, err := f.manager.Resolve(ctx, bound.ID, "")
	require.NoError(t, err)
	assert.Equal(t, PathMarker, resolution.Path)
	assert.Equal(t, user.ID, resolution.Session.UserID)

	require.NoError(t, f.manager.Terminate(ctx, bound.ID, ""))
	_, err = f.manager.ValidateSession(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestFlash_OneShot(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	browser, err := f.manager.StartBrowserSession(ctx)
	require.NoError(t, err)

	require.NoError(t, f.manager.SetFlash(ctx, browser.ID, "Access denied."))

	message, err := f.manager.TakeFlash(ctx, browser.ID)
	require.NoError(t, err)
	assert.Equal(t, "Access denied.", message)

	message, err = f.manager.TakeFlash(ctx, browser.ID)
	require.NoError(t, err)
	assert.Empty(t, message)
}

func TestTerminate_RevokesEverything(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seedUser(t, "alice", true)
	ctx := context.Background()

	token, _, err := f.manager.CreateSession(ctx, user.ID, true, ClientMeta{})
	require.NoError(t, err)
	browser, err := f.manager.BindLogin(ctx, "", user.ID, token)
	require.NoError(t, err)

	require.NoError(t, f.manager.Terminate(ctx, browser.ID, token))

	assert.Equal(t, 0, f.sessions.count())
	_, err = f.browsers.Get(ctx, browser.ID)
	assert.True(t, apperr.IsNotFound(err))

	assert.NoError(t, f.manager.Terminate(ctx, browser.ID, token))
}
