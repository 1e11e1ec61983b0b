// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CollabParticipantTable represents the 'collab.participant' table
type CollabParticipantTable struct {
	Table         string
	ChatSessionID string
	UserID        string
	Role          string
	InvitedBy     string
	JoinedAt      string
	LastSeenAt    string
}

// CollabParticipant is the schema definition for collab.participant
var CollabParticipant = CollabParticipantTable{
	Table:         "collab.participant",
	ChatSessionID: "chat_session_id",
	UserID:        "user_id",
	Role:          "role",
	InvitedBy:     "invited_by",
	JoinedAt:      "joined_at",
	LastSeenAt:    "last_seen_at",
}

// Columns returns all standard column names
func (t CollabParticipantTable) Columns() []string {
	return []string{t.ChatSessionID, t.UserID, t.Role, t.InvitedBy, t.JoinedAt, t.LastSeenAt}
}
