// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CollabPresenceTable represents the 'collab.presence' table
type CollabPresenceTable struct {
	Table           string
	UserID          string
	ChatSessionID   string
	IsOnline        string
	IsTyping        string
	TypingStartedAt string
	LastActivity    string
}

// CollabPresence is the schema definition for collab.presence
var CollabPresence = CollabPresenceTable{
	Table:           "collab.presence",
	UserID:          "user_id",
	ChatSessionID:   "chat_session_id",
	IsOnline:        "is_online",
	IsTyping:        "is_typing",
	TypingStartedAt: "typing_started_at",
	LastActivity:    "last_activity",
}

// Columns returns all standard column names
func (t CollabPresenceTable) Columns() []string {
	return []string{t.UserID, t.ChatSessionID, t.IsOnline, t.IsTyping, t.TypingStartedAt, t.LastActivity}
}
