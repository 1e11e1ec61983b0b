// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package audit records security-relevant account activity in system.activity_log.

Entries are written either standalone through a [Recorder] (login, logout, failed
login) or inside a repository's transaction through [Insert], so that a
multi-statement write and its activity row commit or roll back together.
*/
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/meattrack/internal/platform/database/schema"
	"github.com/taibuivan/meattrack/internal/platform/postgres"
	"github.com/taibuivan/meattrack/pkg/uuid"
)

// Action names one kind of activity.
type Action string

const (
	ActionFailedLogin       Action = "failed_login"
	ActionUserLogin         Action = "user_login"
	ActionUserLogout        Action = "user_logout"
	ActionUserRegistered    Action = "user_registered"
	ActionEmailVerified     Action = "email_verified"
	ActionSessionCreated    Action = "session_created"
	ActionUserCreated       Action = "user_created"
	ActionUserStatusChanged Action = "user_status_changed"
	ActionSessionRevoked    Action = "session_revoked"
)

// Entry is one activity row. UserID may be empty for anonymous events.
type Entry struct {
	ID        string
	UserID    string
	Action    Action
	Details   map[string]any
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// Recorder persists activity entries outside any caller transaction.
type Recorder interface {

	/*
		Record appends one entry to the activity log.

		Parameters:
		  - context: context.Context
		  - entry: Entry (ID and CreatedAt are filled when empty)

		Returns:
		  - error: Persistence failures
	*/
	Record(context context.Context, entry Entry) error
}

// PostgresRecorder implements [Recorder] against the connection pool.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewRecorder creates a Postgres-backed [Recorder].
func NewRecorder(pool *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{pool: pool}
}

// Record implements [Recorder].
func (recorder *PostgresRecorder) Record(context context.Context, entry Entry) error {
	return Insert(context, recorder.pool, entry)
}

// Insert writes entry with executor, which may be a pool or an open transaction.
func Insert(context context.Context, executor postgres.Executor, entry Entry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)`,
		schema.SystemActivityLog.Table, schema.List(schema.SystemActivityLog.Columns()))

	if entry.ID == "" {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("audit_marshal_details_failed: %w", err)
	}
	if entry.Details == nil {
		details = []byte("{}")
	}

	_, err = executor.Exec(context, query,
		entry.ID,
		entry.UserID,
		string(entry.Action),
		details,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_activity_log_insert_failed: %w", err)
	}

	return nil
}
