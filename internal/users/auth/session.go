// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/constants"
	"github.com/taibuivan/meattrack/internal/platform/ctxutil"
	"github.com/taibuivan/meattrack/internal/platform/sec"
	"github.com/taibuivan/meattrack/pkg/uuid"
)

// ErrInvalidSession is returned by [SessionManager.ValidateSession] for unknown,
// revoked or expired tokens.
var ErrInvalidSession = apperr.Unauthorized("Not authenticated")

// Resolution paths reported to metrics.
const (
	PathMarker    = "marker"
	PathRemember  = "remember"
	PathAnonymous = "anonymous"
)

// SessionOptions holds session lifetimes.
type SessionOptions struct {
	SessionTTL        time.Duration
	RememberTTL       time.Duration
	BrowserSessionTTL time.Duration
}

// SessionManager issues, validates and revokes login sessions and owns the
// browser-session records that mirror them.
type SessionManager struct {
	sessions SessionRepository
	browsers BrowserSessionStore
	users    UserRepository
	options  SessionOptions
	now      func() time.Time
}

// NewSessionManager constructs a [SessionManager].
func NewSessionManager(sessions SessionRepository, browsers BrowserSessionStore, users UserRepository, options SessionOptions) *SessionManager {
	return &SessionManager{
		sessions: sessions,
		browsers: browsers,
		users:    users,
		options:  options,
		now:      time.Now,
	}
}

// # Token Lifecycle

/*
CreateSession persists a new session for userID and returns its bearer token.

The token is 256 random bits, hex encoded. Only its SHA-256 digest is stored.
Lifetime is SessionTTL, or RememberTTL when remember is set.

Parameters:
  - context: context.Context
  - userID: string
  - remember: bool
  - client: ClientMeta

Returns:
  - string: The 64-character token
  - time.Time: Expiry
  - error: Generation or persistence failures
*/
func (manager *SessionManager) CreateSession(context context.Context, userID string, remember bool, client ClientMeta) (string, time.Time, error) {
	token, err := sec.GenerateSecureToken(constants.SessionTokenBytes)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth_session_token_failed: %w", err)
	}

	lifetime := manager.options.SessionTTL
	if remember {
		lifetime = manager.options.RememberTTL
	}

	now := manager.now().UTC()
	session := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: sec.HashToken(token),
		Remember:  remember,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		ExpiresAt: now.Add(lifetime),
		CreatedAt: now,
	}

	if err := manager.sessions.Create(context, session); err != nil {
		return "", time.Time{}, fmt.Errorf("auth_session_create_failed: %w", err)
	}

	return token, session.ExpiresAt, nil
}

/*
ValidateSession resolves a token to its session.

A token is valid iff its row exists and now is before its expiry. Expiry is not
extended on use.

Returns:
  - *Session: The live session
  - error: ErrInvalidSession, or a storage failure the caller must treat as unauthenticated
*/
func (manager *SessionManager) ValidateSession(context context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	return manager.validateTokenHash(context, sec.HashToken(token))
}

func (manager *SessionManager) validateTokenHash(context context.Context, tokenHash string) (*Session, error) {
	session, err := manager.sessions.FindByTokenHash(context, tokenHash)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("auth_session_validate_failed: %w", err)
	}

	if !session.ValidAt(manager.now()) {
		return nil, ErrInvalidSession
	}

	return session, nil
}

// RevokeSession deletes the session behind token. It is idempotent.
func (manager *SessionManager) RevokeSession(context context.Context, token string) error {
	if token == "" {
		return nil
	}
	return manager.revokeTokenHash(context, sec.HashToken(token))
}

func (manager *SessionManager) revokeTokenHash(context context.Context, tokenHash string) error {
	if err := manager.sessions.DeleteByTokenHash(context, tokenHash); err != nil {
		return fmt.Errorf("auth_session_revoke_failed: %w", err)
	}
	return nil
}

// # Browser Sessions

// StartBrowserSession creates an anonymous browser session with a fresh CSRF token.
func (manager *SessionManager) StartBrowserSession(context context.Context) (*BrowserSession, error) {
	id, err := sec.GenerateSecureToken(constants.SessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("auth_browser_id_failed: %w", err)
	}
	csrfToken, err := sec.GenerateSecureToken(constants.SessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("auth_csrf_token_failed: %w", err)
	}

	browser := &BrowserSession{ID: id, CSRFToken: csrfToken, CreatedAt: manager.now().UTC()}
	if err := manager.browsers.Save(context, browser, manager.options.BrowserSessionTTL); err != nil {
		return nil, fmt.Errorf("auth_browser_save_failed: %w", err)
	}
	return browser, nil
}

/*
BindLogin attaches a login to a brand-new browser session and discards the old one.

The new record has a new id and a new CSRF token, so identifiers planted before
login are useless afterwards.
*/
func (manager *SessionManager) BindLogin(context context.Context, previousID, userID, token string) (*BrowserSession, error) {
	browser, err := manager.StartBrowserSession(context)
	if err != nil {
		return nil, err
	}

	browser.UserID = userID
	browser.SessionTokenHash = sec.HashToken(token)
	if err := manager.browsers.Save(context, browser, manager.options.BrowserSessionTTL); err != nil {
		return nil, fmt.Errorf("auth_browser_bind_failed: %w", err)
	}

	if previousID != "" && previousID != browser.ID {
		if err := manager.browsers.Delete(context, previousID); err != nil {
			ctxutil.GetLogger(context).WarnContext(context, "browser_session_discard_failed", slog.Any("error", err))
		}
	}

	return browser, nil
}

/*
Terminate revokes every token reachable from the request and deletes the
browser session. It attempts every step and joins the failures.
*/
func (manager *SessionManager) Terminate(context context.Context, browserSessionID, rememberToken string) error {
	var failures []error

	if browserSessionID != "" {
		browser, err := manager.browsers.Get(context, browserSessionID)
		switch {
		case err == nil:
			if browser.SessionTokenHash != "" && (rememberToken == "" || browser.SessionTokenHash != sec.HashToken(rememberToken)) {
				failures = append(failures, manager.revokeTokenHash(context, browser.SessionTokenHash))
			}
		case !apperr.IsNotFound(err):
			failures = append(failures, err)
		}
		failures = append(failures, manager.browsers.Delete(context, browserSessionID))
	}

	failures = append(failures, manager.RevokeSession(context, rememberToken))

	return errors.Join(failures...)
}

// SetFlash stores a one-shot message on the browser session.
func (manager *SessionManager) SetFlash(context context.Context, browserSessionID, message string) error {
	browser, err := manager.browsers.Get(context, browserSessionID)
	if err != nil {
		return err
	}
	browser.Flash = message
	return manager.browsers.Save(context, browser, manager.options.BrowserSessionTTL)
}

// TakeFlash returns and clears the pending flash message.
func (manager *SessionManager) TakeFlash(context context.Context, browserSessionID string) (string, error) {
	browser, err := manager.browsers.Get(context, browserSessionID)
	if err != nil {
		return "", err
	}
	if browser.Flash == "" {
		return "", nil
	}

	message := browser.Flash
	browser.Flash = ""
	if err := manager.browsers.Save(context, browser, manager.options.BrowserSessionTTL); err != nil {
		return "", err
	}
	return message, nil
}

// # Resolution

/*
Resolve turns the request cookies into a session context.

# Flow
 1. Fast path: the browser session named by sid is loaded; if it carries a login,
    its token is validated against the session table.
 2. Slow path: otherwise a remember-me token is validated and, on success, bound
    to the browser session, restoring the marker.
 3. A browser session is created when none exists, so every caller holds a CSRF token.

Any storage error while validating a login is treated as "not authenticated".
Only failing to load or create the browser session itself is returned as an error.
*/
func (manager *SessionManager) Resolve(context context.Context, browserSessionID, rememberToken string) (*sec.Resolution, error) {
	resolution := &sec.Resolution{Path: PathAnonymous}
	logger := ctxutil.GetLogger(context)

	// 1. Load the marker
	var browser *BrowserSession
	if browserSessionID != "" {
		loaded, err := manager.browsers.Get(context, browserSessionID)
		switch {
		case err == nil:
			browser = loaded
		case !apperr.IsNotFound(err):
			return nil, err
		}
	}

	// 2. Fast path
	var user *User
	var session *Session
	if browser != nil && browser.IsBound() {
		authenticated, validated, err := manager.authenticate(context, browser.SessionTokenHash)
		switch {
		case err == nil && authenticated.ID == browser.UserID:
			user, session = authenticated, validated
			resolution.Path = PathMarker
		case err == nil || errors.Is(err, ErrInvalidSession):
			// Revoked or expired: drop the stale login but keep the CSRF token.
			browser.UserID, browser.SessionTokenHash = "", ""
			if saveErr := manager.browsers.Save(context, browser, manager.options.BrowserSessionTTL); saveErr != nil {
				logger.WarnContext(context, "browser_session_unbind_failed", slog.Any("error", saveErr))
			}
		default:
			logger.ErrorContext(context, "session_validation_failed", slog.String("path", PathMarker), slog.Any("error", err))
		}
	}

	// 3. Slow path
	if user == nil && rememberToken != "" {
		authenticated, validated, err := manager.authenticate(context, sec.HashToken(rememberToken))
		switch {
		case err == nil:
			if browser == nil {
				created, startErr := manager.StartBrowserSession(context)
				if startErr != nil {
					return nil, startErr
				}
				browser = created
				resolution.IssueBrowserCookie = true
			}
			browser.UserID = authenticated.ID
			browser.SessionTokenHash = sec.HashToken(rememberToken)
			if err := manager.browsers.Save(context, browser, manager.options.BrowserSessionTTL); err != nil {
				logger.WarnContext(context, "browser_session_restore_failed", slog.Any("error", err))
			}
			user, session = authenticated, validated
			resolution.Path = PathRemember
			logger.InfoContext(context, "session_restored_from_remember_token", slog.String("user_id", user.ID))
		case errors.Is(err, ErrInvalidSession):
			resolution.ClearRememberCookie = true
		default:
			logger.ErrorContext(context, "session_validation_failed", slog.String("path", PathRemember), slog.Any("error", err))
		}
	}

	// 4. Anonymous visitors still get a browser session
	if browser == nil {
		created, err := manager.StartBrowserSession(context)
		if err != nil {
			return nil, err
		}
		browser = created
		resolution.IssueBrowserCookie = true
	}

	resolution.Session = &sec.SessionContext{
		BrowserSessionID: browser.ID,
		CSRFToken:        browser.CSRFToken,
	}
	if user != nil {
		resolution.Session.UserID = user.ID
		resolution.Session.Username = user.Username
		resolution.Session.Email = user.Email
		resolution.Session.FullName = user.FullName
		resolution.Session.Role = user.Role
		resolution.Session.SessionID = session.ID
	}

	return resolution, nil
}

// authenticate validates a token hash and loads its active account.
func (manager *SessionManager) authenticate(context context.Context, tokenHash string) (*User, *Session, error) {
	session, err := manager.validateTokenHash(context, tokenHash)
	if err != nil {
		return nil, nil, err
	}

	user, err := manager.users.FindByID(context, session.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, nil, ErrInvalidSession
		}
		return nil, nil, err
	}

	if user.Status != sec.StatusActive {
		return nil, nil, ErrInvalidSession
	}

	return user, session, nil
}
