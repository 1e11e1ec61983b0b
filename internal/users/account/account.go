// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles self-service session management and user administration.

# Architecture

  - Self service: the caller's profile and active sessions, with per-session revocation.
  - Administration: paginated user listing, account creation with a role, and the
    active/inactive status switch. Deactivation revokes every session of the account.
  - Domain: This package depends on the auth package for the User entity and its stores.
*/
package account

import (
	"context"
	"time"

	"github.com/taibuivan/meattrack/internal/audit"
	"github.com/taibuivan/meattrack/internal/platform/sec"
	"github.com/taibuivan/meattrack/internal/users/auth"
	"github.com/taibuivan/meattrack/pkg/pagination"
)

// # Domain Entities

// SessionInfo is the transport view of a login session. It never carries the token digest.
type SessionInfo struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Remember  bool      `json:"remember"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsCurrent bool      `json:"is_current"`
}

// UserFilter narrows the admin user listing. Empty fields match everything.
type UserFilter struct {
	Role   sec.UserRole
	Status sec.UserStatus
	Search string
}

// # Field Identifiers

const (
	FieldUsers      = "users"
	FieldUser       = "user"
	FieldSessions   = "sessions"
	FieldPagination = "pagination"
	FieldRole       = "role"
	FieldStatus     = "status"
	FieldSearch     = "q"
)

// # Repository Contracts

// AccountRepository defines the administrative persistence contract for accounts.
type AccountRepository interface {

	/*
		List returns one page of accounts matching filter, newest first.

		Parameters:
		  - context: context.Context
		  - filter: UserFilter
		  - params: pagination.Params

		Returns:
		  - []auth.User: Page of accounts
		  - int: Total matching rows
		  - error: Database failures
	*/
	List(context context.Context, filter UserFilter, params pagination.Params) ([]auth.User, int, error)

	/*
		UpdateStatus sets the status flag and writes the activity row in one transaction.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - status: sec.UserStatus
		  - entry: audit.Entry

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	UpdateStatus(context context.Context, userID string, status sec.UserStatus, entry audit.Entry) error
}
