// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/taibuivan/meattrack/internal/audit"
)

// # Credential Store

// UserRepository defines the data access contract for user accounts.
//
// Lookups return an [apperr.NotFound] error when no row matches.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given normalized email.

		Parameters:
		  - context: context.Context
		  - email: string (already normalized)

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username (case-insensitive).

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Register inserts a new account and its activity row in one transaction.

		Parameters:
		  - context: context.Context
		  - user: *User
		  - entry: audit.Entry (written in the same transaction)

		Returns:
		  - error: apperr.Conflict on duplicate identity, or persistence failures
	*/
	Register(context context.Context, user *User, entry audit.Entry) error

	/*
		MarkVerified flips is_verified and writes the activity row in one transaction.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - entry: audit.Entry

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	MarkVerified(context context.Context, userID string, entry audit.Entry) error

	/*
		UpdateLastLogin stamps the last successful login time.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - at: time.Time

		Returns:
		  - error: Persistence failures
	*/
	UpdateLastLogin(context context.Context, userID string, at time.Time) error
}

// # Session Store

// SessionRepository defines the data access contract for login sessions.
type SessionRepository interface {

	/*
		Create persists a new session row.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the session with the given digest, expired or not.
		Expiry is judged by the caller.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	/*
		DeleteByTokenHash removes the matching session. Deleting a missing row is not an error.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	DeleteByTokenHash(context context.Context, tokenHash string) error

	/*
		ListActiveByUser returns the user's unexpired sessions, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - now: time.Time

		Returns:
		  - []Session: Active sessions
		  - error: Database failures
	*/
	ListActiveByUser(context context.Context, userID string, now time.Time) ([]Session, error)

	/*
		DeleteForUser removes one session owned by userID.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - sessionID: string

		Returns:
		  - error: apperr.NotFound when the user owns no such session
	*/
	DeleteForUser(context context.Context, userID, sessionID string) error

	/*
		DeleteAllForUser removes every session of a user.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - int64: Rows deleted
		  - error: Persistence failures
	*/
	DeleteAllForUser(context context.Context, userID string) (int64, error)

	/*
		DeleteExpired removes sessions whose expiry is at or before now.

		Parameters:
		  - context: context.Context
		  - now: time.Time

		Returns:
		  - int64: Rows deleted
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context, now time.Time) (int64, error)
}

// # Volatile Stores

// BrowserSessionStore keeps browser sessions with a TTL.
type BrowserSessionStore interface {

	// Get returns apperr.NotFound when the record is missing or expired.
	Get(context context.Context, id string) (*BrowserSession, error)

	// Save writes the record and resets its TTL.
	Save(context context.Context, browser *BrowserSession, ttl time.Duration) error

	// Delete removes the record. Missing records are not an error.
	Delete(context context.Context, id string) error
}

// NonceStore keeps one-time nonces of signed links.
type NonceStore interface {

	// Put stores nonce for subject until ttl elapses.
	Put(context context.Context, nonce, subject string, ttl time.Duration) error

	// Consume atomically reads and deletes nonce. A second call returns apperr.NotFound.
	Consume(context context.Context, nonce string) (string, error)
}

// LoginThrottle counts failed logins per identifier within a window.
type LoginThrottle interface {

	// Failures returns the current failure count for key.
	Failures(context context.Context, key string) (int, error)

	// RecordFailure increments the count; the window starts at the first failure.
	RecordFailure(context context.Context, key string, window time.Duration) (int, error)

	// Reset clears the count after a successful login.
	Reset(context context.Context, key string) error
}

// # Collaborators

// PresenceTracker receives online/offline transitions. Calls are best effort.
type PresenceTracker interface {
	MarkOnline(context context.Context, userID string) error
	MarkOffline(context context.Context, userID string) error
}
