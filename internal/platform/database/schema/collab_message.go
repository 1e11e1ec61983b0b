// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CollabMessageTable represents the 'collab.message' table
type CollabMessageTable struct {
	Table         string
	ID            string
	ChatSessionID string
	UserID        string
	MessageType   string
	Content       string
	IsDeleted     string
	CreatedAt     string
}

// CollabMessage is the schema definition for collab.message
var CollabMessage = CollabMessageTable{
	Table:         "collab.message",
	ID:            "id",
	ChatSessionID: "chat_session_id",
	UserID:        "user_id",
	MessageType:   "message_type",
	Content:       "content",
	IsDeleted:     "is_deleted",
	CreatedAt:     "created_at",
}

// Columns returns all standard column names
func (t CollabMessageTable) Columns() []string {
	return []string{t.ID, t.ChatSessionID, t.UserID, t.MessageType, t.Content, t.IsDeleted, t.CreatedAt}
}
