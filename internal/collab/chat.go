// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package collab implements collaborative AI chat sessions.

# Architecture

  - Chat sessions: created by one owner, who is bound as the first participant.
  - Participants: a user may read or act on a chat only through a participant
    binding. The binding role (owner, participant) is the resource-scoped role
    consumed by the access mediator.
  - Presence: online flag and typing signal per user, refreshed on activity.
  - Messages: read-only history, polled incrementally by id.
*/
package collab

import (
	"time"

	"github.com/taibuivan/meattrack/internal/platform/sec"
)

// # Limits

const (
	TitleMaxLength = 200

	MinParticipants     = 2
	MaxParticipants     = 50
	DefaultParticipants = 10

	AccessCodeMinLength = 4
	AccessCodeMaxLength = 20

	DefaultMessageLimit = 50
	MaxMessageLimit     = 100

	// OnlineWindow is how recent the last activity must be for a participant
	// flagged online to be reported as online.
	OnlineWindow = 5 * time.Minute
)

// # AI Models

const (
	ModelGPT35  = "gpt-3.5-turbo"
	ModelGPT4   = "gpt-4"
	ModelClaude = "claude-3"

	DefaultModel = ModelGPT35
)

// AIModels lists the models a chat session may be bound to.
var AIModels = []string{ModelGPT35, ModelGPT4, ModelClaude}

// # Message Types

// MessageType distinguishes human, assistant and system messages.
type MessageType string

const (
	MessageUser   MessageType = "user"
	MessageAI     MessageType = "ai"
	MessageSystem MessageType = "system"
)

// # Domain Entities

// ChatSession is one collaborative conversation.
type ChatSession struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	OwnerID         string     `json:"owner_id"`
	AccessCodeHash  string     `json:"-"`
	HasAccessCode   bool       `json:"has_access_code"`
	ExpiresAt       *time.Time `json:"expires_at"`
	MaxParticipants int        `json:"max_participants"`
	AIModel         string     `json:"ai_model"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ExpiredAt reports whether the session has an expiry at or before now.
func (c *ChatSession) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// OpenAt reports whether the session is active and not expired.
func (c *ChatSession) OpenAt(now time.Time) bool {
	return c.IsActive && !c.ExpiredAt(now)
}

// ChatView is a chat session as seen by one participant.
type ChatView struct {
	ChatSession

	OwnerName        string              `json:"owner_name"`
	OwnerUsername    string              `json:"owner_username"`
	UserRole         sec.ParticipantRole `json:"user_role"`
	ParticipantCount int                 `json:"participant_count"`
	MessageCount     int                 `json:"message_count"`
	LastMessageAt    *time.Time          `json:"last_message_at"`
	IsOwner          bool                `json:"is_owner"`
}

// Participant is a user bound to a chat session.
type Participant struct {
	UserID        string              `json:"user_id"`
	Username      string              `json:"username"`
	FullName      string              `json:"full_name"`
	Email         string              `json:"email"`
	Role          sec.ParticipantRole `json:"role"`
	InvitedBy     string              `json:"invited_by,omitempty"`
	InvitedByName string              `json:"invited_by_name,omitempty"`
	JoinedAt      time.Time           `json:"joined_at"`
	LastSeenAt    *time.Time          `json:"last_seen_at"`
	IsOnline      bool                `json:"is_online"`
	LastActivity  *time.Time          `json:"last_activity"`
}

// Message is one entry of a chat transcript. UserID is empty for system messages.
type Message struct {
	ID            int64       `json:"id"`
	ChatSessionID string      `json:"chat_session_id"`
	UserID        string      `json:"user_id,omitempty"`
	Type          MessageType `json:"message_type"`
	Content       string      `json:"content"`
	FullName      string      `json:"full_name,omitempty"`
	Username      string      `json:"username,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// TypingUser is a participant whose typing signal is still fresh.
type TypingUser struct {
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	StartedAt time.Time `json:"typing_started_at"`
}

// # Field Identifiers

const (
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldAIModel         = "ai_model"
	FieldMaxParticipants = "max_participants"
	FieldAccessCode      = "access_code"
	FieldExpiresAt       = "expires_at"
	FieldIsTyping        = "is_typing"

	FieldSession      = "session"
	FieldSessions     = "sessions"
	FieldParticipants = "participants"
	FieldMessages     = "messages"
	FieldTypingUsers  = "typing_users"
	FieldTotal        = "total"
	FieldCount        = "count"
)
