// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// CollabChatSessionTable represents the 'collab.chat_session' table
type CollabChatSessionTable struct {
	Table           string
	ID              string
	Title           string
	Description     string
	OwnerID         string
	AccessCodeHash  string
	ExpiresAt       string
	MaxParticipants string
	AIModel         string
	IsActive        string
	CreatedAt       string
	UpdatedAt       string
}

// CollabChatSession is the schema definition for collab.chat_session
var CollabChatSession = CollabChatSessionTable{
	Table:           "collab.chat_session",
	ID:              "id",
	Title:           "title",
	Description:     "description",
	OwnerID:         "owner_id",
	AccessCodeHash:  "access_code_hash",
	ExpiresAt:       "expires_at",
	MaxParticipants: "max_participants",
	AIModel:         "ai_model",
	IsActive:        "is_active",
	CreatedAt:       "created_at",
	UpdatedAt:       "updated_at",
}

// Columns returns all standard column names
func (t CollabChatSessionTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Description, t.OwnerID, t.AccessCodeHash, t.ExpiresAt,
		t.MaxParticipants, t.AIModel, t.IsActive, t.CreatedAt, t.UpdatedAt,
	}
}
