// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/meattrack/internal/audit"
	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/database/schema"
	"github.com/taibuivan/meattrack/internal/platform/postgres"
	"github.com/taibuivan/meattrack/internal/platform/sec"
	"github.com/taibuivan/meattrack/internal/users/auth"
	"github.com/taibuivan/meattrack/pkg/pagination"
)

// # Account Repository

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of [AccountRepository].
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// buildUserFilter renders the WHERE clause and its arguments for filter.
func buildUserFilter(filter UserFilter) (string, []any) {
	var clauses []string
	var arguments []any

	add := func(clause string, value any) {
		arguments = append(arguments, value)
		clauses = append(clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(arguments))))
	}

	if filter.Role != "" {
		add(schema.UserAccount.Role+" = ?", filter.Role)
	}
	if filter.Status != "" {
		add(schema.UserAccount.Status+" = ?", filter.Status)
	}
	if filter.Search != "" {
		add(fmt.Sprintf("(%s ILIKE ? OR %s ILIKE ? OR %s ILIKE ?)",
			schema.UserAccount.Username, schema.UserAccount.Email, schema.UserAccount.FullName), "%"+filter.Search+"%")
	}

	if len(clauses) == 0 {
		return "", arguments
	}
	return " WHERE " + strings.Join(clauses, " AND "), arguments
}

/*
List returns one page of accounts.

Parameters:
  - context: context.Context
  - filter: UserFilter
  - params: pagination.Params

Returns:
  - []auth.User: Page of accounts, newest first
  - int: Total matching rows
  - error: Database failures
*/
func (repository *PostgresAccountRepository) List(context context.Context, filter UserFilter, params pagination.Params) ([]auth.User, int, error) {
	where, arguments := buildUserFilter(filter)

	var total int
	if err := repository.pool.QueryRow(context, `SELECT COUNT(*) FROM `+schema.UserAccount.Table+where, arguments...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_count_failed: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY %s DESC, %s DESC LIMIT $%d OFFSET $%d`,
		auth.UserColumns, schema.UserAccount.Table, where,
		schema.UserAccount.CreatedAt, schema.UserAccount.ID, len(arguments)+1, len(arguments)+2)

	rows, err := repository.pool.Query(context, query, append(arguments, params.Limit, params.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]auth.User, 0, params.Limit)
	for rows.Next() {
		user, err := auth.ScanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_account_scan_failed: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_rows_failed: %w", err)
	}

	return users, total, nil
}

// UpdateStatus implements [AccountRepository].
func (repository *PostgresAccountRepository) UpdateStatus(context context.Context, userID string, status sec.UserStatus, entry audit.Entry) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.Status, schema.UserAccount.UpdatedAt, schema.UserAccount.ID)

	return postgres.WithTransaction(context, repository.pool, func(transaction pgx.Tx) error {
		tag, err := transaction.Exec(context, query, userID, status)
		if err != nil {
			return fmt.Errorf("postgres_account_update_status_failed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("User")
		}
		return audit.Insert(context, transaction, entry)
	})
}
