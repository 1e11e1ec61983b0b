// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collab

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
	"github.com/taibuivan/meattrack/internal/platform/sec"
)

// # Chat Repository

// PostgresChatRepository implements [ChatRepository] using pgx.
type PostgresChatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository creates a new PostgreSQL implementation of [ChatRepository].
func NewChatRepository(pool *pgxpool.Pool) *PostgresChatRepository {
	return &PostgresChatRepository{pool: pool}
}

// Create implements [ChatRepository].
func (repository *PostgresChatRepository) Create(context context.Context, chat *ChatSession, welcome *Message, entry audit.Entry) error {
	const insertChat = `
		INSERT INTO collab.chat_session (
			id, title, description, owner_id, access_code_hash, expires_at,
			max_participants, ai_model, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11)`

	const insertOwner = `
		INSERT INTO collab.participant (chat_session_id, user_id, role, invited_by, joined_at)
		VALUES ($1, $2, $3, $2, $4)`

	const insertWelcome = `
		INSERT INTO collab.message (chat_session_id, user_id, message_type, content, created_at)
		VALUES ($1, NULL, $2, $3, $4)
		RETURNING id`

	return postgres.WithTransaction(context, repository.pool, func(transaction pgx.Tx) error {
		_, err := transaction.Exec(context, insertChat,
			chat.ID,
			chat.Title,
			chat.Description,
			chat.OwnerID,
			chat.AccessCodeHash,
			chat.ExpiresAt,
			chat.MaxParticipants,
			chat.AIModel,
			chat.IsActive,
			chat.CreatedAt,
			chat.UpdatedAt,
		)
		if err != nil {
			return dberr.Wrap(fmt.Errorf("postgres_chat_insert_failed: %w", err), "Chat session")
		}

		if _, err := transaction.Exec(context, insertOwner, chat.ID, chat.OwnerID, sec.ParticipantOwner, chat.CreatedAt); err != nil {
			return fmt.Errorf("postgres_participant_insert_failed: %w", err)
		}

		if err := audit.Insert(context, transaction, entry); err != nil {
			return err
		}

		err = transaction.QueryRow(context, insertWelcome, welcome.ChatSessionID, welcome.Type, welcome.Content, welcome.CreatedAt).Scan(&welcome.ID)
		if err != nil {
			return fmt.Errorf("postgres_message_insert_failed: %w", err)
		}
		return nil
	})
}

// chatViewSelect reads a chat with owner details, counters and the role of
// the user bound to $1.
const chatViewSelect = `
	SELECT
		s.id, s.title, s.description, s.owner_id, s.access_code_hash IS NOT NULL,
		s.expires_at, s.max_participants, s.ai_model, s.is_active, s.created_at, s.updated_at,
		o.full_name, o.username, p.role,
		(SELECT COUNT(*) FROM collab.participant WHERE chat_session_id = s.id),
		(SELECT COUNT(*) FROM collab.message WHERE chat_session_id = s.id AND NOT is_deleted),
		(SELECT MAX(created_at) FROM collab.message WHERE chat_session_id = s.id AND NOT is_deleted)
	FROM collab.chat_session s
	JOIN users.account o ON o.id = s.owner_id`

func scanChatView(row pgx.Row) (*ChatView, error) {
	var (
		view ChatView
		role *string
	)

	err := row.Scan(
		&view.ID,
		&view.Title,
		&view.Description,
		&view.OwnerID,
		&view.HasAccessCode,
		&view.ExpiresAt,
		&view.MaxParticipants,
		&view.AIModel,
		&view.IsActive,
		&view.CreatedAt,
		&view.UpdatedAt,
		&view.OwnerName,
		&view.OwnerUsername,
		&role,
		&view.ParticipantCount,
		&view.MessageCount,
		&view.LastMessageAt,
	)
	if err != nil {
		return nil, err
	}

	if role != nil {
		view.UserRole = sec.ParticipantRole(*role)
		view.IsOwner = view.UserRole == sec.ParticipantOwner
	}
	return &view, nil
}

// ListForUser implements [ChatRepository].
func (repository *PostgresChatRepository) ListForUser(context context.Context, userID string) ([]ChatView, error) {
	query := chatViewSelect + `
	JOIN collab.participant p ON p.chat_session_id = s.id AND p.user_id = $1
	ORDER BY s.updated_at DESC, s.id DESC`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_chat_list_failed: %w", err)
	}
	defer rows.Close()

	chats := make([]ChatView, 0)
	for rows.Next() {
		view, err := scanChatView(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_chat_scan_failed: %w", err)
		}
		chats = append(chats, *view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_chat_rows_failed: %w", err)
	}
	return chats, nil
}

// FindForUser implements [ChatRepository].
func (repository *PostgresChatRepository) FindForUser(context context.Context, chatID, userID string) (*ChatView, error) {
	query := chatViewSelect + `
	LEFT JOIN collab.participant p ON p.chat_session_id = s.id AND p.user_id = $1
	WHERE s.id = $2`

	view, err := scanChatView(repository.pool.QueryRow(context, query, userID, chatID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Chat session")
		}
		return nil, fmt.Errorf("postgres_chat_find_failed: %w", err)
	}
	return view, nil
}

// ParticipantRole implements [ChatRepository].
func (repository *PostgresChatRepository) ParticipantRole(context context.Context, chatID, userID string) (sec.ParticipantRole, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		schema.CollabParticipant.Role, schema.CollabParticipant.Table,
		schema.CollabParticipant.ChatSessionID, schema.CollabParticipant.UserID)

	var raw string
	if err := repository.pool.QueryRow(context, query, chatID, userID).Scan(&raw); err != nil {
		return "", dberr.Wrap(err, "Participant")
	}

	role, err := sec.ParseParticipantRole(raw)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return role, nil
}

// TouchParticipant implements [ChatRepository].
func (repository *PostgresChatRepository) TouchParticipant(context context.Context, chatID, userID string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $3 WHERE %s = $1 AND %s = $2`,
		schema.CollabParticipant.Table, schema.CollabParticipant.LastSeenAt,
		schema.CollabParticipant.ChatSessionID, schema.CollabParticipant.UserID)

	if _, err := repository.pool.Exec(context, query, chatID, userID, at); err != nil {
		return fmt.Errorf("postgres_participant_touch_failed: %w", err)
	}
	return nil
}

// Participants implements [ChatRepository].
func (repository *PostgresChatRepository) Participants(context context.Context, chatID string) ([]Participant, error) {
	const query = `
		SELECT
			p.user_id, u.username, u.full_name, u.email, p.role,
			p.invited_by, inviter.full_name, p.joined_at, p.last_seen_at,
			COALESCE(pr.is_online, FALSE), pr.last_activity
		FROM collab.participant p
		JOIN users.account u ON u.id = p.user_id
		LEFT JOIN users.account inviter ON inviter.id = p.invited_by
		LEFT JOIN collab.presence pr ON pr.user_id = p.user_id
		WHERE p.chat_session_id = $1
		ORDER BY p.role = 'owner' DESC, p.joined_at ASC`

	rows, err := repository.pool.Query(context, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("postgres_participant_list_failed: %w", err)
	}
	defer rows.Close()

	participants := make([]Participant, 0)
	for rows.Next() {
		var (
			participant Participant
			invitedBy   *string
			inviterName *string
		)
		err := rows.Scan(
			&participant.UserID,
			&participant.Username,
			&participant.FullName,
			&participant.Email,
			&participant.Role,
			&invitedBy,
			&inviterName,
			&participant.JoinedAt,
			&participant.LastSeenAt,
			&participant.IsOnline,
			&participant.LastActivity,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_participant_scan_failed: %w", err)
		}
		if invitedBy != nil {
			participant.InvitedBy = *invitedBy
		}
		if inviterName != nil {
			participant.InvitedByName = *inviterName
		}
		participants = append(participants, participant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_participant_rows_failed: %w", err)
	}
	return participants, nil
}

// Messages implements [ChatRepository].
func (repository *PostgresChatRepository) Messages(context context.Context, chatID string, afterID int64, limit int) ([]Message, error) {
	const query = `
		SELECT m.id, m.chat_session_id, m.user_id, m.message_type, m.content, m.created_at,
		       u.full_name, u.username
		FROM collab.message m
		LEFT JOIN users.account u ON u.id = m.user_id
		WHERE m.chat_session_id = $1 AND NOT m.is_deleted AND m.id > $2
		ORDER BY m.created_at ASC, m.id ASC
		LIMIT $3`

	rows, err := repository.pool.Query(context, query, chatID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres_message_list_failed: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		var (
			message  Message
			userID   *string
			fullName *string
			username *string
		)
		err := rows.Scan(
			&message.ID,
			&message.ChatSessionID,
			&userID,
			&message.Type,
			&message.Content,
			&message.CreatedAt,
			&fullName,
			&username,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_message_scan_failed: %w", err)
		}
		if userID != nil {
			message.UserID = *userID
		}
		if fullName != nil {
			message.FullName = *fullName
		}
		if username != nil {
			message.Username = *username
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_message_rows_failed: %w", err)
	}
	return messages, nil
}

// # Presence Repository

// PostgresPresenceRepository implements [PresenceRepository] using pgx.
type PostgresPresenceRepository struct {
	pool *pgxpool.Pool
}

// NewPresenceRepository creates a new PostgreSQL implementation of [PresenceRepository].
func NewPresenceRepository(pool *pgxpool.Pool) *PostgresPresenceRepository {
	return &PostgresPresenceRepository{pool: pool}
}

// MarkOnline implements [PresenceRepository].
func (repository *PostgresPresenceRepository) MarkOnline(context context.Context, userID, chatID string, at time.Time) error {
	const query = `
		INSERT INTO collab.presence (user_id, chat_session_id, is_online, last_activity)
		VALUES ($1, NULLIF($2, '')::uuid, TRUE, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			chat_session_id = COALESCE(EXCLUDED.chat_session_id, collab.presence.chat_session_id),
			is_online = TRUE,
			last_activity = EXCLUDED.last_activity`

	if _, err := repository.pool.Exec(context, query, userID, chatID, at); err != nil {
		return fmt.Errorf("postgres_presence_online_failed: %w", err)
	}
	return nil
}

// MarkOffline implements [PresenceRepository].
func (repository *PostgresPresenceRepository) MarkOffline(context context.Context, userID string, at time.Time) error {
	const query = `
		INSERT INTO collab.presence (user_id, is_online, is_typing, last_activity)
		VALUES ($1, FALSE, FALSE, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			is_online = FALSE,
			is_typing = FALSE,
			typing_started_at = NULL,
			last_activity = EXCLUDED.last_activity`

	if _, err := repository.pool.Exec(context, query, userID, at); err != nil {
		return fmt.Errorf("postgres_presence_offline_failed: %w", err)
	}
	return nil
}

// SetTyping implements [PresenceRepository]. Every typing signal restarts
// the typing window.
func (repository *PostgresPresenceRepository) SetTyping(context context.Context, userID, chatID string, typing bool, at time.Time) error {
	const query = `
		INSERT INTO collab.presence (user_id, chat_session_id, is_online, is_typing, typing_started_at, last_activity)
		VALUES ($1, $2, TRUE, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			chat_session_id = EXCLUDED.chat_session_id,
			is_online = TRUE,
			is_typing = EXCLUDED.is_typing,
			typing_started_at = EXCLUDED.typing_started_at,
			last_activity = EXCLUDED.last_activity`

	var typingAt *time.Time
	if typing {
		typingAt = &at
	}

	if _, err := repository.pool.Exec(context, query, userID, chatID, typing, typingAt, at); err != nil {
		return fmt.Errorf("postgres_presence_typing_failed: %w", err)
	}
	return nil
}

// TypingUsers implements [PresenceRepository].
func (repository *PostgresPresenceRepository) TypingUsers(context context.Context, chatID string, since time.Time) ([]TypingUser, error) {
	const query = `
		SELECT pr.user_id, u.full_name, u.username, pr.typing_started_at
		FROM collab.presence pr
		JOIN users.account u ON u.id = pr.user_id
		WHERE pr.chat_session_id = $1 AND pr.is_typing AND pr.typing_started_at > $2
		ORDER BY pr.typing_started_at ASC`

	rows, err := repository.pool.Query(context, query, chatID, since)
	if err != nil {
		return nil, fmt.Errorf("postgres_presence_typing_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]TypingUser, 0)
	for rows.Next() {
		var user TypingUser
		if err := rows.Scan(&user.UserID, &user.FullName, &user.Username, &user.StartedAt); err != nil {
			return nil, fmt.Errorf("postgres_presence_typing_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_presence_typing_rows_failed: %w", err)
	}
	return users, nil
}
