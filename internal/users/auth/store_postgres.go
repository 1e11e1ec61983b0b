// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/meattrack/internal/audit"
	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/database/schema"
	"github.com/taibuivan/meattrack/internal/platform/dberr"
	"github.com/taibuivan/meattrack/internal/platform/postgres"
)

// # User Repository

// UserColumns is the canonical select list of users.account, matching [ScanUser].
var UserColumns = schema.List(schema.UserAccount.Columns())

// ScanUser hydrates a [User] from a row selected with [UserColumns].
func ScanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Role,
		&user.Status,
		&user.IsVerified,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// FindByID implements [UserRepository].
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, UserColumns, schema.UserAccount.Table, schema.UserAccount.ID)
	return repository.findOne(context, query, id)
}

// FindByEmail implements [UserRepository]. Emails are stored normalized.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, UserColumns, schema.UserAccount.Table, schema.UserAccount.Email)
	return repository.findOne(context, query, email)
}

// FindByUsername implements [UserRepository].
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(%s) = lower($1)`,
		UserColumns, schema.UserAccount.Table, schema.UserAccount.Username)
	return repository.findOne(context, query, username)
}

func (repository *PostgresUserRepository) findOne(context context.Context, query string, argument string) (*User, error) {
	user, err := ScanUser(repository.pool.QueryRow(context, query, argument))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_find_failed: %w", err)
	}
	return user, nil
}

/*
Register inserts the account and its activity row in one transaction.

Description: Unique violations are reported per constraint so the caller can
tell a taken username from a registered email even under a race.

Parameters:
  - context: context.Context
  - user: *User
  - entry: audit.Entry

Returns:
  - error: apperr.Conflict or persistence failures
*/
func (repository *PostgresUserRepository) Register(context context.Context, user *User, entry audit.Entry) error {
	return postgres.WithTransaction(context, repository.pool, func(transaction pgx.Tx) error {
		if err := insertUser(context, transaction, user); err != nil {
			return err
		}
		return audit.Insert(context, transaction, entry)
	})
}

// insertUser writes one account row with executor.
func insertUser(context context.Context, executor postgres.Executor, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, password_hash, full_name, role, status, is_verified, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt

	_, err := executor.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.Status,
		user.IsVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			switch dberr.ConstraintName(err) {
			case schema.UserAccount.UsernameKey:
				return apperr.Conflict("Username already taken")
			default:
				return apperr.Conflict("Email already registered")
			}
		}
		return fmt.Errorf("postgres_user_insert_failed: %w", err)
	}

	return nil
}

// MarkVerified implements [UserRepository].
func (repository *PostgresUserRepository) MarkVerified(context context.Context, userID string, entry audit.Entry) error {
	const query = `
		UPDATE users.account
		SET is_verified = TRUE, updated_at = NOW()
		WHERE id = $1`

	return postgres.WithTransaction(context, repository.pool, func(transaction pgx.Tx) error {
		tag, err := transaction.Exec(context, query, userID)
		if err != nil {
			return fmt.Errorf("postgres_user_mark_verified_failed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("User")
		}
		return audit.Insert(context, transaction, entry)
	})
}

// UpdateLastLogin implements [UserRepository].
func (repository *PostgresUserRepository) UpdateLastLogin(context context.Context, userID string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.LastLoginAt, schema.UserAccount.ID)

	if _, err := repository.pool.Exec(context, query, userID, at); err != nil {
		return fmt.Errorf("postgres_user_update_last_login_failed: %w", err)
	}
	return nil
}

// # Session Repository

const sessionColumns = `id, user_id, token_hash, remember, COALESCE(ip_address, ''), COALESCE(user_agent, ''), expires_at, created_at`

func scanSession(row pgx.Row) (*Session, error) {
	session := &Session{}
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.Remember,
		&session.IPAddress,
		&session.UserAgent,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// PostgresSessionRepository implements [SessionRepository] using pgx.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PostgreSQL implementation of [SessionRepository].
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Create implements [SessionRepository].
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO users.session (id, user_id, token_hash, remember, ip_address, user_agent, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8)`

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.Remember,
		session.IPAddress,
		session.UserAgent,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_session_create_failed: %w", err)
	}
	return nil
}

// FindByTokenHash implements [SessionRepository].
func (repository *PostgresSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		sessionColumns, schema.UserSession.Table, schema.UserSession.TokenHash)

	session, err := scanSession(repository.pool.QueryRow(context, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("postgres_session_find_failed: %w", err)
	}
	return session, nil
}

// DeleteByTokenHash implements [SessionRepository].
func (repository *PostgresSessionRepository) DeleteByTokenHash(context context.Context, tokenHash string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserSession.Table, schema.UserSession.TokenHash)

	if _, err := repository.pool.Exec(context, query, tokenHash); err != nil {
		return fmt.Errorf("postgres_session_delete_failed: %w", err)
	}
	return nil
}

// ListActiveByUser implements [SessionRepository].
func (repository *PostgresSessionRepository) ListActiveByUser(context context.Context, userID string, now time.Time) ([]Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM users.session
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC`

	rows, err := repository.pool.Query(context, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_list_failed: %w", err)
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_session_scan_failed: %w", err)
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_session_rows_failed: %w", err)
	}
	return sessions, nil
}

// DeleteForUser implements [SessionRepository].
func (repository *PostgresSessionRepository) DeleteForUser(context context.Context, userID, sessionID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.UserSession.Table, schema.UserSession.ID, schema.UserSession.UserID)

	tag, err := repository.pool.Exec(context, query, sessionID, userID)
	if err != nil {
		return fmt.Errorf("postgres_session_delete_for_user_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Session")
	}
	return nil
}

// DeleteAllForUser implements [SessionRepository].
func (repository *PostgresSessionRepository) DeleteAllForUser(context context.Context, userID string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserSession.Table, schema.UserSession.UserID)

	tag, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_delete_all_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired implements [SessionRepository].
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context, now time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= $1`, schema.UserSession.Table, schema.UserSession.ExpiresAt)

	tag, err := repository.pool.Exec(context, query, now)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_delete_expired_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}
