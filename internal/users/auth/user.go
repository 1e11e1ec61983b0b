// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the credential store, session manager and CSRF guard.

# Architecture

  - Credential Store: [UserRepository] over users.account (bcrypt hashes, status flag).
  - Session Manager: [SessionManager] issues, validates and revokes 256-bit session
    tokens persisted as SHA-256 digests in users.session.
  - Browser session: a Redis record keyed by the sid cookie. It always holds the
    CSRF token and, after login, the bound user and session token. It is the fast
    path of session resolution; the remember-me cookie is the slow path.
  - CSRF Guard: [CSRFGuard] issues one token per browser session and verifies it in
    constant time.

Services depend on repository interfaces only, so the whole flow runs against
in-memory fakes in tests.
*/
package auth

import (
	"time"

	"github.com/taibuivan/meattrack/internal/platform/sec"
)

// # Domain Entities

// User is a registered account. Accounts are never hard deleted; Status is the
// soft-delete flag.
type User struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	FullName     string         `json:"full_name"`
	Role         sec.UserRole   `json:"role"`
	Status       sec.UserStatus `json:"status"`
	IsVerified   bool           `json:"is_verified"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// CanLogin reports whether the account may open new sessions.
func (user *User) CanLogin() bool {
	return user.IsVerified && user.Status == sec.StatusActive
}

// Session is a persisted login session. Only the token digest is stored.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	Remember  bool      `json:"remember"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidAt reports whether the session is still usable at now.
func (session *Session) ValidAt(now time.Time) bool {
	return now.Before(session.ExpiresAt)
}

// BrowserSession is the per-browser record behind the sid cookie.
//
// CSRFToken is set once when the record is created and never rotated.
// UserID and SessionTokenHash are set together by a login. Like the session
// table, the record holds only the SHA-256 hash of the login token.
type BrowserSession struct {
	ID               string    `json:"-"`
	CSRFToken        string    `json:"csrf_token"`
	UserID           string    `json:"user_id,omitempty"`
	SessionTokenHash string    `json:"session_token_hash,omitempty"`
	Flash            string    `json:"flash,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// IsBound reports whether a login is attached to the browser session.
func (browser *BrowserSession) IsBound() bool {
	return browser.UserID != "" && browser.SessionTokenHash != ""
}

// ClientMeta is request metadata stored with sessions and activity rows.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// # Field Identifiers

const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirm_password"
	FieldFullName        = "full_name"
	FieldRemember        = "remember"
	FieldToken           = "token"
	FieldUser            = "user"
	FieldCSRFToken       = "csrf_token"
	FieldAuthenticated   = "authenticated"
	FieldFlash           = "flash"
	FieldVerificationURL = "verification_url"
)
