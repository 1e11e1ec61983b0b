// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collab

import (
	"context"
	"time"

	"github.com/taibuivan/meattrack/internal/audit"
	"github.com/taibuivan/meattrack/internal/platform/sec"
)

// # Repository Contracts

// ChatRepository defines the persistence contract for chat sessions,
// their participants and their messages.
type ChatRepository interface {

	/*
		Create stores a chat session, binds its owner, appends the welcome
		message and writes the activity row in one transaction.

		Parameters:
		  - context: context.Context
		  - chat: *ChatSession
		  - welcome: *Message (ID is filled on success)
		  - entry: audit.Entry

		Returns:
		  - error: Persistence failures; nothing is written on error
	*/
	Create(context context.Context, chat *ChatSession, welcome *Message, entry audit.Entry) error

	// ListForUser returns every chat the user is bound to, most recently updated first.
	ListForUser(context context.Context, userID string) ([]ChatView, error)

	/*
		FindForUser loads one chat as seen by userID.

		Returns:
		  - *ChatView: UserRole is empty when the user has no binding
		  - error: apperr.NotFound if the chat does not exist
	*/
	FindForUser(context context.Context, chatID, userID string) (*ChatView, error)

	// ParticipantRole returns apperr.NotFound when the user has no binding.
	ParticipantRole(context context.Context, chatID, userID string) (sec.ParticipantRole, error)

	// TouchParticipant records that the participant looked at the chat.
	TouchParticipant(context context.Context, chatID, userID string, at time.Time) error

	// Participants lists bindings, owner first, then by join time.
	Participants(context context.Context, chatID string) ([]Participant, error)

	// Messages returns up to limit non-deleted messages with id greater than afterID.
	Messages(context context.Context, chatID string, afterID int64, limit int) ([]Message, error)
}

// PresenceRepository keeps one presence row per user.
type PresenceRepository interface {

	// MarkOnline flags the user online. An empty chatID keeps the current chat.
	MarkOnline(context context.Context, userID, chatID string, at time.Time) error

	// MarkOffline flags the user offline and clears any typing signal.
	MarkOffline(context context.Context, userID string, at time.Time) error

	// SetTyping records or clears the typing signal of userID in chatID.
	SetTyping(context context.Context, userID, chatID string, typing bool, at time.Time) error

	// TypingUsers returns users of chatID whose typing signal is newer than since.
	TypingUsers(context context.Context, chatID string, since time.Time) ([]TypingUser, error)
}
