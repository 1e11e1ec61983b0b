// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collab

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/meattrack/internal/audit"
	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/constants"
	"github.com/taibuivan/meattrack/internal/platform/ctxutil"
	"github.com/taibuivan/meattrack/internal/platform/sec"
	"github.com/taibuivan/meattrack/internal/platform/validate"
	"github.com/taibuivan/meattrack/internal/users/auth"
	"github.com/taibuivan/meattrack/pkg/pagination"
	"github.com/taibuivan/meattrack/pkg/uuid"
)

// ErrChatClosed is returned when an inactive or expired chat is opened.
var ErrChatClosed = apperr.Unprocessable("Session is no longer active")

// # Service Layer

// Service orchestrates chat session use cases.
//
// It also implements [middleware.ResourceRoleResolver] and the auth
// [auth.PresenceTracker], which is how login and logout reach presence rows.
type Service struct {
	chats    ChatRepository
	presence PresenceRepository
	now      func() time.Time
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(chats ChatRepository, presence PresenceRepository) *Service {
	return &Service{chats: chats, presence: presence, now: time.Now}
}

// # Creation

// CreateInput holds the settings of a new chat session.
type CreateInput struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	AIModel         string          `json:"ai_model"`
	MaxParticipants int             `json:"max_participants"`
	AccessCode      string          `json:"access_code"`
	ExpiresAt       *time.Time      `json:"expires_at"`
	Client          auth.ClientMeta `json:"-"`
}

/*
Create opens a chat session owned by ownerID.

Description: The session row, the owner binding, the session_created activity
row and a system welcome message are written in one transaction.

Parameters:
  - context: context.Context
  - ownerID: string
  - input: CreateInput (zero AIModel and MaxParticipants take defaults)

Returns:
  - *ChatSession: The created session
  - error: Validation or storage errors
*/
func (service *Service) Create(context context.Context, ownerID string, input CreateInput) (*ChatSession, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.AccessCode = strings.TrimSpace(input.AccessCode)
	if input.AIModel == "" {
		input.AIModel = DefaultModel
	}
	if input.MaxParticipants == 0 {
		input.MaxParticipants = DefaultParticipants
	}

	now := service.now().UTC()

	validator := &validate.Validator{}
	validator.
		Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, TitleMaxLength).
		Range(FieldMaxParticipants, input.MaxParticipants, MinParticipants, MaxParticipants).
		OneOf(FieldAIModel, input.AIModel, AIModels...).
		Future(FieldExpiresAt, input.ExpiresAt, now)
	if input.AccessCode != "" {
		validator.
			MinLen(FieldAccessCode, input.AccessCode, AccessCodeMinLength).
			MaxLen(FieldAccessCode, input.AccessCode, AccessCodeMaxLength).
			MaxBytes(FieldAccessCode, input.AccessCode, sec.PasswordMaxBytes)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	chat := &ChatSession{
		ID:              uuid.New(),
		Title:           input.Title,
		Description:     input.Description,
		OwnerID:         ownerID,
		MaxParticipants: input.MaxParticipants,
		AIModel:         input.AIModel,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.ExpiresAt != nil {
		expiresAt := input.ExpiresAt.UTC()
		chat.ExpiresAt = &expiresAt
	}
	if input.AccessCode != "" {
		hash, err := sec.HashPassword(input.AccessCode)
		if err != nil {
			return nil, fmt.Errorf("collab_service_hash_access_code_failed: %w", err)
		}
		chat.AccessCodeHash = hash
		chat.HasAccessCode = true
	}

	welcome := &Message{
		ChatSessionID: chat.ID,
		Type:          MessageSystem,
		Content:       welcomeText(chat),
		CreatedAt:     now,
	}

	entry := audit.Entry{
		UserID: ownerID,
		Action: audit.ActionSessionCreated,
		Details: map[string]any{
			"chat_session_id":    chat.ID,
			FieldTitle:           chat.Title,
			FieldAIModel:         chat.AIModel,
			FieldMaxParticipants: chat.MaxParticipants,
		},
		IPAddress: input.Client.IPAddress,
		UserAgent: input.Client.UserAgent,
	}

	if err := service.chats.Create(context, chat, welcome, entry); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "chat_session_created",
		slog.String("chat_session_id", chat.ID),
		slog.String("owner_id", ownerID),
	)

	return chat, nil
}

func welcomeText(chat *ChatSession) string {
	return fmt.Sprintf("Welcome to \"%s\"! This collaborative AI session is powered by %s. "+
		"You can now start asking questions and collaborating with your team.", chat.Title, chat.AIModel)
}

// # Reading

// List returns the caller's chats. Expired chats are reported as inactive.
func (service *Service) List(context context.Context, userID string) ([]ChatView, error) {
	chats, err := service.chats.ListForUser(context, userID)
	if err != nil {
		return nil, fmt.Errorf("collab_service_list_failed: %w", err)
	}

	now := service.now()
	for index := range chats {
		chats[index].IsActive = chats[index].OpenAt(now)
	}
	return chats, nil
}

/*
Get opens one chat for userID.

Description: Opening a chat refreshes the participant's last_seen_at and marks
the user online in that chat. Both refreshes are best effort.

Parameters:
  - context: context.Context
  - chatID: string
  - userID: string

Returns:
  - *ChatView: The chat as seen by the caller
  - error: apperr.AccessDenied without a binding, ErrChatClosed when inactive or expired
*/
func (service *Service) Get(context context.Context, chatID, userID string) (*ChatView, error) {
	if !uuid.Valid(chatID) {
		return nil, apperr.AccessDenied()
	}

	chat, err := service.chats.FindForUser(context, chatID, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.AccessDenied()
		}
		return nil, fmt.Errorf("collab_service_get_failed: %w", err)
	}
	if chat.UserRole == "" {
		return nil, apperr.AccessDenied()
	}

	now := service.now().UTC()
	if !chat.OpenAt(now) {
		return nil, ErrChatClosed
	}

	logger := ctxutil.GetLogger(context)
	if err := service.chats.TouchParticipant(context, chatID, userID, now); err != nil {
		logger.WarnContext(context, "participant_touch_failed", slog.Any("error", err))
	}
	if err := service.presence.MarkOnline(context, userID, chatID, now); err != nil {
		logger.WarnContext(context, "presence_online_failed", slog.Any("error", err))
	}

	return chat, nil
}

// Participants lists the chat's participants. A participant is online only
// if flagged so and active within [OnlineWindow].
func (service *Service) Participants(context context.Context, chatID string) ([]Participant, error) {
	participants, err := service.chats.Participants(context, chatID)
	if err != nil {
		return nil, fmt.Errorf("collab_service_participants_failed: %w", err)
	}

	now := service.now()
	for index := range participants {
		participant := &participants[index]
		participant.IsOnline = participant.IsOnline &&
			participant.LastActivity != nil &&
			now.Sub(*participant.LastActivity) < OnlineWindow
	}
	return participants, nil
}

// Messages returns messages newer than cursor.After, oldest first. The limit
// is clamped to [1, MaxMessageLimit]; non-positive values take
// [DefaultMessageLimit].
func (service *Service) Messages(context context.Context, chatID string, cursor pagination.Cursor) ([]Message, error) {
	cursor = cursor.Normalize(DefaultMessageLimit, MaxMessageLimit)

	messages, err := service.chats.Messages(context, chatID, cursor.After, cursor.Limit)
	if err != nil {
		return nil, fmt.Errorf("collab_service_messages_failed: %w", err)
	}
	return messages, nil
}

// # Typing Presence

// SetTyping records whether userID is typing in chatID.
func (service *Service) SetTyping(context context.Context, chatID, userID string, typing bool) error {
	if err := service.presence.SetTyping(context, userID, chatID, typing, service.now().UTC()); err != nil {
		return fmt.Errorf("collab_service_set_typing_failed: %w", err)
	}
	return nil
}

// TypingUsers returns the participants whose typing signal arrived within
// [constants.TypingWindow].
func (service *Service) TypingUsers(context context.Context, chatID string) ([]TypingUser, error) {
	since := service.now().UTC().Add(-constants.TypingWindow)

	users, err := service.presence.TypingUsers(context, chatID, since)
	if err != nil {
		return nil, fmt.Errorf("collab_service_typing_users_failed: %w", err)
	}
	return users, nil
}

// # Access Mediation

// ResourceRole implements [middleware.ResourceRoleResolver] for chat sessions.
//
// Malformed ids are reported as a missing binding.
func (service *Service) ResourceRole(context context.Context, chatID, userID string) (sec.ParticipantRole, error) {
	if !uuid.Valid(chatID) {
		return "", apperr.NotFound("Participant")
	}
	return service.chats.ParticipantRole(context, chatID, userID)
}

// # Presence Tracking

// MarkOnline implements [auth.PresenceTracker].
func (service *Service) MarkOnline(context context.Context, userID string) error {
	return service.presence.MarkOnline(context, userID, "", service.now().UTC())
}

// MarkOffline implements [auth.PresenceTracker].
func (service *Service) MarkOffline(context context.Context, userID string) error {
	return service.presence.MarkOffline(context, userID, service.now().UTC())
}
