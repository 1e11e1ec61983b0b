// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/meattrack/internal/audit"
	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/sec"
	"github.com/taibuivan/meattrack/internal/platform/validate"
	"github.com/taibuivan/meattrack/internal/users/auth"
	"github.com/taibuivan/meattrack/pkg/pagination"
	"github.com/taibuivan/meattrack/pkg/uuid"
)

// # Service Layer

// Service orchestrates self-service and administrative account use cases.
type Service struct {
	userRepository    auth.UserRepository
	accountRepository AccountRepository
	sessionRepository auth.SessionRepository
	recorder          audit.Recorder
	logger            *slog.Logger
	now               func() time.Time
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(
	userRepo auth.UserRepository,
	accountRepo AccountRepository,
	sessionRepo auth.SessionRepository,
	recorder audit.Recorder,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:    userRepo,
		accountRepository: accountRepo,
		sessionRepository: sessionRepo,
		recorder:          recorder,
		logger:            logger,
		now:               time.Now,
	}
}

// # Profile

/*
GetProfile retrieves the private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

// # Session Security

/*
ListSessions lists the user's unexpired sessions and flags the one making the request.

Parameters:
  - context: context.Context
  - userID: string
  - currentSessionID: string (empty when unknown)

Returns:
  - []SessionInfo: Active sessions, newest first
  - error: Retrieval failures
*/
func (service *Service) ListSessions(context context.Context, userID, currentSessionID string) ([]SessionInfo, error) {
	sessions, err := service.sessionRepository.ListActiveByUser(context, userID, service.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("account_service_list_sessions_failed: %w", err)
	}

	infos := make([]SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, SessionInfo{
			ID:        session.ID,
			IPAddress: session.IPAddress,
			UserAgent: session.UserAgent,
			Remember:  session.Remember,
			CreatedAt: session.CreatedAt,
			ExpiresAt: session.ExpiresAt,
			IsCurrent: session.ID == currentSessionID,
		})
	}

	return infos, nil
}

/*
RevokeSession terminates one of the user's own sessions.

Description: Sessions of other users and malformed ids are reported as not found.

Parameters:
  - context: context.Context
  - userID: string
  - sessionID: string
  - client: auth.ClientMeta

Returns:
  - error: apperr.NotFound or revocation failures
*/
func (service *Service) RevokeSession(context context.Context, userID, sessionID string, client auth.ClientMeta) error {
	if !uuid.Valid(sessionID) {
		return apperr.NotFound("Session")
	}

	if err := service.sessionRepository.DeleteForUser(context, userID, sessionID); err != nil {
		return err
	}

	service.record(context, audit.Entry{
		UserID:    userID,
		Action:    audit.ActionSessionRevoked,
		Details:   map[string]any{"session_id": sessionID},
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	})

	service.logger.Info("user_session_revoked",
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)

	return nil
}

// # Administration

// ListUsers returns one page of accounts and its pagination metadata.
func (service *Service) ListUsers(context context.Context, filter UserFilter, params pagination.Params) ([]auth.User, pagination.Meta, error) {
	filter.Search = strings.TrimSpace(filter.Search)

	users, total, err := service.accountRepository.List(context, filter, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("account_service_list_users_failed: %w", err)
	}

	return users, pagination.NewMeta(params, total), nil
}

// CreateUserInput holds an administrator-provisioned account.
type CreateUserInput struct {
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	FullName string          `json:"full_name"`
	Role     string          `json:"role"`
	Client   auth.ClientMeta `json:"-"`
}

/*
CreateUser provisions an active, verified account with an explicit role.

Parameters:
  - context: context.Context
  - actorID: string (the administrator)
  - input: CreateUserInput

Returns:
  - *auth.User: Created entity
  - error: Validation, Conflict or storage errors
*/
func (service *Service) CreateUser(context context.Context, actorID string, input CreateUserInput) (*auth.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)
	email := sec.NormalizeIdentifier(input.Email)

	roleNames := make([]string, 0, len(sec.AllRoles))
	for _, role := range sec.AllRoles {
		roleNames = append(roleNames, string(role))
	}

	validator := &validate.Validator{}
	validator.
		Pattern(auth.FieldUsername, input.Username, auth.UsernamePattern, "3-50 letters, digits or underscores").
		Required(auth.FieldEmail, email).
		MinLen(auth.FieldPassword, input.Password, 8).
		MaxBytes(auth.FieldPassword, input.Password, sec.PasswordMaxBytes).
		Required(auth.FieldFullName, input.FullName).
		MaxLen(auth.FieldFullName, input.FullName, 100).
		OneOf(FieldRole, input.Role, roleNames...)
	if email != "" {
		validator.Email(auth.FieldEmail, email)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.userRepository.FindByEmail(context, email); err == nil {
		return nil, apperr.Conflict("Email already registered")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}
	if _, err := service.userRepository.FindByUsername(context, input.Username); err == nil {
		return nil, apperr.Conflict("Username already taken")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	now := service.now().UTC()
	user := &auth.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        email,
		PasswordHash: hashedPassword,
		FullName:     input.FullName,
		Role:         sec.UserRole(input.Role),
		Status:       sec.StatusActive,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	entry := audit.Entry{
		UserID:    actorID,
		Action:    audit.ActionUserCreated,
		Details:   map[string]any{"target_user_id": user.ID, FieldRole: input.Role},
		IPAddress: input.Client.IPAddress,
		UserAgent: input.Client.UserAgent,
	}
	if err := service.userRepository.Register(context, user, entry); err != nil {
		return nil, err
	}

	service.logger.Info("user_created",
		slog.String("actor_id", actorID),
		slog.String("user_id", user.ID),
		slog.String("role", input.Role),
	)

	return user, nil
}

/*
UpdateStatus activates or deactivates an account.

Description: Administrators cannot change their own status, so the last admin
cannot lock themselves out. Deactivation revokes every session of the target.

Parameters:
  - context: context.Context
  - actorID: string
  - targetID: string
  - rawStatus: string
  - client: auth.ClientMeta

Returns:
  - *auth.User: The updated account
  - error: Validation, Forbidden, NotFound or storage errors
*/
func (service *Service) UpdateStatus(context context.Context, actorID, targetID, rawStatus string, client auth.ClientMeta) (*auth.User, error) {
	status, err := sec.ParseUserStatus(rawStatus)
	if err != nil {
		return nil, validate.RequiredError(FieldStatus, "Must be one of: active, inactive")
	}

	if actorID == targetID {
		return nil, apperr.Forbidden("You cannot change your own account status")
	}

	if !uuid.Valid(targetID) {
		return nil, apperr.NotFound("User")
	}

	target, err := service.userRepository.FindByID(context, targetID)
	if err != nil {
		return nil, err
	}
	if target.Status == status {
		return target, nil
	}

	entry := audit.Entry{
		UserID:    actorID,
		Action:    audit.ActionUserStatusChanged,
		Details:   map[string]any{"target_user_id": targetID, "from": string(target.Status), "to": string(status)},
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	}
	if err := service.accountRepository.UpdateStatus(context, targetID, status, entry); err != nil {
		return nil, err
	}
	target.Status = status

	if status == sec.StatusInactive {
		revoked, err := service.sessionRepository.DeleteAllForUser(context, targetID)
		if err != nil {
			return nil, fmt.Errorf("account_service_revoke_all_failed: %w", err)
		}
		service.logger.Info("user_sessions_revoked", slog.String("user_id", targetID), slog.Int64("count", revoked))
	}

	service.logger.Info("user_status_changed",
		slog.String("actor_id", actorID),
		slog.String("user_id", targetID),
		slog.String("status", string(status)),
	)

	return target, nil
}

func (service *Service) record(context context.Context, entry audit.Entry) {
	if err := service.recorder.Record(context, entry); err != nil {
		service.logger.Error("activity_log_write_failed", slog.String("action", string(entry.Action)), slog.Any("error", err))
	}
}
