// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/taibuivan/meattrack/internal/audit"
	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/constants"
	"github.com/taibuivan/meattrack/internal/platform/ctxutil"
	"github.com/taibuivan/meattrack/internal/platform/metrics"
	"github.com/taibuivan/meattrack/internal/platform/sec"
	"github.com/taibuivan/meattrack/internal/platform/validate"
	"github.com/taibuivan/meattrack/pkg/uuid"
)

// # Messages

const (
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidLink        = "Invalid or expired verification link"
	msgNotAuthenticated   = "Not authenticated"
)

// Login outcomes reported to metrics.
const (
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	outcomeThrottled = "throttled"
)

// UsernamePattern is the accepted username shape.
var UsernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)

// Options tunes the authentication use cases.
type Options struct {
	// MaxFailures is the failed-login threshold per email. Zero disables throttling.
	MaxFailures int

	// FailureWindow is how long failures are counted after the first one.
	FailureWindow time.Duration

	// PublicBaseURL prefixes verification links.
	PublicBaseURL string

	// ExposeVerificationLink returns the link in the register response (development only).
	ExposeVerificationLink bool
}

// Service implements the authentication use cases.
type Service struct {
	users    UserRepository
	sessions *SessionManager
	nonces   NonceStore
	throttle LoginThrottle
	presence PresenceTracker
	recorder audit.Recorder
	signer   *sec.LinkSigner
	options  Options
	now      func() time.Time
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	users UserRepository,
	sessions *SessionManager,
	nonces NonceStore,
	throttle LoginThrottle,
	presence PresenceTracker,
	recorder audit.Recorder,
	signer *sec.LinkSigner,
	options Options,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		nonces:   nonces,
		throttle: throttle,
		presence: presence,
		recorder: recorder,
		signer:   signer,
		options:  options,
		now:      time.Now,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Password        string     `json:"password"`
	ConfirmPassword string     `json:"confirm_password"`
	FullName        string     `json:"full_name"`
	Client          ClientMeta `json:"-"`
}

// RegisterResult is the outcome of a registration.
type RegisterResult struct {
	User            *User
	VerificationURL string
}

/*
Register validates, hashes, and persists a brand new account.

New accounts are viewers, active and unverified. A signed one-time verification
link is minted for the account; there is no mailer, so the link is logged.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *RegisterResult: Created entity and its verification link
  - error: Validation, Conflict or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*RegisterResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)
	email := sec.NormalizeIdentifier(input.Email)

	validator := &validate.Validator{}
	validator.
		Pattern(FieldUsername, input.Username, UsernamePattern, "3-50 letters, digits or underscores").
		Required(FieldEmail, email).
		MinLen(FieldPassword, input.Password, 8).
		MaxBytes(FieldPassword, input.Password, sec.PasswordMaxBytes).
		Equal(FieldConfirmPassword, input.ConfirmPassword, input.Password, "Passwords do not match").
		Required(FieldFullName, input.FullName).
		MaxLen(FieldFullName, input.FullName, 100)
	if email != "" {
		validator.Email(FieldEmail, email)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Identity must be free
	if _, err := service.users.FindByEmail(context, email); err == nil {
		return nil, apperr.Conflict("Email already registered")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}
	if _, err := service.users.FindByUsername(context, input.Username); err == nil {
		return nil, apperr.Conflict("Username already taken")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	now := service.now().UTC()
	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        email,
		PasswordHash: hashedPassword,
		FullName:     input.FullName,
		Role:         sec.RoleViewer,
		Status:       sec.StatusActive,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The nonce must exist before the link can be redeemed
	link, err := service.issueVerificationLink(context, user.ID)
	if err != nil {
		return nil, err
	}

	entry := audit.Entry{
		UserID:    user.ID,
		Action:    audit.ActionUserRegistered,
		Details:   map[string]any{FieldUsername: user.Username, FieldEmail: user.Email},
		IPAddress: input.Client.IPAddress,
		UserAgent: input.Client.UserAgent,
	}
	if err := service.users.Register(context, user, entry); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_registered",
		slog.String("user_id", user.ID),
		slog.String("verification_url", link),
	)

	result := &RegisterResult{User: user}
	if service.options.ExposeVerificationLink {
		result.VerificationURL = link
	}
	return result, nil
}

// issueVerificationLink stores a fresh nonce and signs the link around it.
func (service *Service) issueVerificationLink(context context.Context, userID string) (string, error) {
	nonce, err := sec.GenerateSecureToken(16)
	if err != nil {
		return "", fmt.Errorf("auth_service_nonce_failed: %w", err)
	}

	if err := service.nonces.Put(context, nonce, userID, constants.VerificationLinkTTL); err != nil {
		return "", fmt.Errorf("auth_service_nonce_store_failed: %w", err)
	}

	token, err := service.signer.Sign(userID, constants.PurposeEmailVerification, nonce, constants.VerificationLinkTTL)
	if err != nil {
		return "", err
	}

	return strings.TrimRight(service.options.PublicBaseURL, "/") +
		"/api/v1/auth/verify-email?token=" + url.QueryEscape(token), nil
}

/*
VerifyEmail redeems a verification link.

The link signature, purpose and expiry are checked, then its nonce is consumed
so the link works exactly once. Verifying an already verified account is a no-op.
*/
func (service *Service) VerifyEmail(context context.Context, token string, client ClientMeta) error {
	if token == "" {
		return apperr.ValidationError(msgInvalidLink)
	}

	claims, err := service.signer.Verify(token, constants.PurposeEmailVerification)
	if err != nil {
		return apperr.ValidationError(msgInvalidLink)
	}

	subject, err := service.nonces.Consume(context, claims.ID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.ValidationError(msgInvalidLink)
		}
		return fmt.Errorf("auth_service_nonce_consume_failed: %w", err)
	}
	if subject != claims.Subject {
		return apperr.ValidationError(msgInvalidLink)
	}

	user, err := service.users.FindByID(context, claims.Subject)
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.ValidationError(msgInvalidLink)
		}
		return err
	}
	if user.IsVerified {
		return nil
	}

	entry := audit.Entry{
		UserID:    user.ID,
		Action:    audit.ActionEmailVerified,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	}
	if err := service.users.MarkVerified(context, user.ID, entry); err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "email_verified", slog.String("user_id", user.ID))
	return nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email            string     `json:"email"`
	Password         string     `json:"password"`
	Remember         bool       `json:"remember"`
	BrowserSessionID string     `json:"-"`
	Client           ClientMeta `json:"-"`
}

// LoginResult is a successfully established login.
type LoginResult struct {
	User      *User
	Browser   *BrowserSession
	Token     string
	ExpiresAt time.Time
	Remember  bool
}

/*
Login validates credentials and opens a session.

# Flow
 1. Refuse when the email is throttled.
 2. Only verified, active accounts with a matching password pass; every other case
    gets the same generic message. A wrong password for a verified, active account
    writes a failed_login activity row; other accounts are treated as unknown.
 3. Create the persisted session and bind it to a fresh browser session.
 4. Best-effort side effects: last login, presence, throttle reset, user_login row.

Failures never lock the account; the throttle only delays further attempts.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Session token and the rotated browser session
  - error: Validation, Unauthorized, RateLimited or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {
	logger := ctxutil.GetLogger(context)
	email := sec.NormalizeIdentifier(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 1. Throttle
	if service.options.MaxFailures > 0 {
		failures, err := service.throttle.Failures(context, email)
		if err != nil {
			logger.WarnContext(context, "login_throttle_unavailable", slog.Any("error", err))
		} else if failures >= service.options.MaxFailures {
			metrics.RecordLogin(outcomeThrottled)
			logger.WarnContext(context, "login_throttled", slog.Int("failures", failures))
			return nil, apperr.RateLimited(int(service.options.FailureWindow.Seconds()))
		}
	}

	// 2. Credentials
	user, err := service.users.FindByEmail(context, email)
	if err != nil {
		if !apperr.IsNotFound(err) {
			return nil, err
		}
		sec.SpendPasswordCheck(input.Password)
		service.recordFailure(context, email)
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	passwordMatches := sec.CheckPasswordHash(input.Password, user.PasswordHash)

	if !user.CanLogin() {
		if passwordMatches {
			metrics.RecordLogin(outcomeFailure)
		} else {
			service.recordFailure(context, email)
		}
		logger.InfoContext(context, "login_refused", slog.String("user_id", user.ID), slog.Bool("verified", user.IsVerified), slog.String("status", string(user.Status)))
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	if !passwordMatches {
		service.record(context, audit.Entry{
			UserID:    user.ID,
			Action:    audit.ActionFailedLogin,
			Details:   map[string]any{FieldEmail: email},
			IPAddress: input.Client.IPAddress,
			UserAgent: input.Client.UserAgent,
		})
		service.recordFailure(context, email)
		logger.WarnContext(context, "login_failed", slog.String("user_id", user.ID))
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	// 3. Session
	token, expiresAt, err := service.sessions.CreateSession(context, user.ID, input.Remember, input.Client)
	if err != nil {
		return nil, err
	}

	browser, err := service.sessions.BindLogin(context, input.BrowserSessionID, user.ID, token)
	if err != nil {
		if revokeErr := service.sessions.RevokeSession(context, token); revokeErr != nil {
			logger.WarnContext(context, "login_session_rollback_failed", slog.String("user_id", user.ID), slog.Any("error", revokeErr))
		}
		return nil, err
	}

	// 4. Side effects
	now := service.now().UTC()
	if err := service.users.UpdateLastLogin(context, user.ID, now); err != nil {
		logger.WarnContext(context, "last_login_update_failed", slog.Any("error", err))
	} else {
		user.LastLoginAt = &now
	}
	service.markOnline(context, user.ID)
	if service.options.MaxFailures > 0 {
		if err := service.throttle.Reset(context, email); err != nil {
			logger.WarnContext(context, "login_throttle_reset_failed", slog.Any("error", err))
		}
	}
	service.record(context, audit.Entry{
		UserID:    user.ID,
		Action:    audit.ActionUserLogin,
		Details:   map[string]any{FieldRemember: input.Remember},
		IPAddress: input.Client.IPAddress,
		UserAgent: input.Client.UserAgent,
	})

	metrics.RecordLogin(outcomeSuccess)
	logger.InfoContext(context, "user_logged_in", slog.String("user_id", user.ID), slog.Bool("remember", input.Remember))

	return &LoginResult{
		User:      user,
		Browser:   browser,
		Token:     token,
		ExpiresAt: expiresAt,
		Remember:  input.Remember,
	}, nil
}

// LogoutInput carries everything a logout tears down.
type LogoutInput struct {
	UserID           string
	BrowserSessionID string
	RememberToken    string
	Client           ClientMeta
}

/*
Logout ends the login. Every step is best effort: failures are logged and the
caller always clears the cookies.
*/
func (service *Service) Logout(context context.Context, input LogoutInput) {
	logger := ctxutil.GetLogger(context)

	if input.UserID != "" {
		if service.presence != nil {
			if err := service.presence.MarkOffline(context, input.UserID); err != nil {
				logger.WarnContext(context, "presence_offline_failed", slog.Any("error", err))
			}
		}
		service.record(context, audit.Entry{
			UserID:    input.UserID,
			Action:    audit.ActionUserLogout,
			IPAddress: input.Client.IPAddress,
			UserAgent: input.Client.UserAgent,
		})
	}

	if err := service.sessions.Terminate(context, input.BrowserSessionID, input.RememberToken); err != nil {
		logger.ErrorContext(context, "logout_cleanup_failed", slog.Any("error", err))
	}

	logger.InfoContext(context, "user_logged_out", slog.String("user_id", input.UserID))
}

// # Session Status

// SessionStatus returns the account behind an authenticated session and pops any
// pending flash message. It also refreshes the caller's presence.
func (service *Service) SessionStatus(context context.Context, session *sec.SessionContext) (*User, string, error) {
	if !session.IsAuthenticated() {
		return nil, "", apperr.Unauthorized(msgNotAuthenticated)
	}

	user, err := service.users.FindByID(context, session.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, "", apperr.Unauthorized(msgNotAuthenticated)
		}
		return nil, "", err
	}

	flash, err := service.sessions.TakeFlash(context, session.BrowserSessionID)
	if err != nil && !apperr.IsNotFound(err) {
		ctxutil.GetLogger(context).WarnContext(context, "flash_read_failed", slog.Any("error", err))
	}

	service.markOnline(context, user.ID)
	return user, flash, nil
}

// LoadAccess reads the live role and status of an account.
func (service *Service) LoadAccess(context context.Context, userID string) (sec.UserRole, sec.UserStatus, error) {
	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return "", "", err
	}
	return user.Role, user.Status, nil
}

// # Helpers

func (service *Service) record(context context.Context, entry audit.Entry) {
	if err := service.recorder.Record(context, entry); err != nil {
		ctxutil.GetLogger(context).ErrorContext(context, "activity_log_write_failed",
			slog.String("action", string(entry.Action)),
			slog.Any("error", err),
		)
	}
}

func (service *Service) recordFailure(context context.Context, email string) {
	metrics.RecordLogin(outcomeFailure)
	if service.options.MaxFailures <= 0 {
		return
	}
	if _, err := service.throttle.RecordFailure(context, email, service.options.FailureWindow); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "login_throttle_record_failed", slog.Any("error", err))
	}
}

func (service *Service) markOnline(context context.Context, userID string) {
	if service.presence == nil {
		return
	}
	if err := service.presence.MarkOnline(context, userID); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "presence_online_failed", slog.Any("error", err))
	}
}
