// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/meattrack/internal/audit"
)

type captureExecutor struct {
	sql       string
	arguments []any
	err       error
}

func (c *captureExecutor) Exec(_ context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	c.sql = sql
	c.arguments = arguments
	return pgconn.NewCommandTag("INSERT 0 1"), c.err
}

func TestInsert_FillsDefaults(t *testing.T) {
	executor := &captureExecutor{}

	err := audit.Insert(context.Background(), executor, audit.Entry{
		UserID:    "0190a000-0000-7000-8000-000000000001",
		Action:    audit.ActionFailedLogin,
		IPAddress: "10.0.0.1",
	})
	require.NoError(t, err)

	assert.Contains(t, executor.sql, "system.activity_log")
	require.Len(t, executor.arguments, 7)
	assert.NotEmpty(t, executor.arguments[0])
	assert.Equal(t, "failed_login", executor.arguments[2])
	assert.JSONEq(t, `{}`, string(executor.arguments[3].([]byte)))
}

func TestInsert_Details(t *testing.T) {
	executor := &captureExecutor{}

	err := audit.Insert(context.Background(), executor, audit.Entry{
		Action:  audit.ActionUserStatusChanged,
		Details: map[string]any{"status": "inactive"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"inactive"}`, string(executor.arguments[3].([]byte)))
}

func TestInsert_WrapsError(t *testing.T) {
	executor := &captureExecutor{err: errors.New("boom")}

	err := audit.Insert(context.Background(), executor, audit.Entry{Action: audit.ActionUserLogin})
	assert.ErrorContains(t, err, "postgres_activity_log_insert_failed")
}
