// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserSessionTable represents the 'users.session' table
type UserSessionTable struct {
	Table     string
	ID        string
	UserID    string
	TokenHash string
	Remember  string
	IPAddress string
	UserAgent string
	ExpiresAt string
	CreatedAt string
}

// UserSession is the schema definition for users.session
var UserSession = UserSessionTable{
	Table:     "users.session",
	ID:        "id",
	UserID:    "user_id",
	TokenHash: "token_hash",
	Remember:  "remember",
	IPAddress: "ip_address",
	UserAgent: "user_agent",
	ExpiresAt: "expires_at",
	CreatedAt: "created_at",
}

// Columns returns all standard column names
func (t UserSessionTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.TokenHash, t.Remember, t.IPAddress, t.UserAgent, t.ExpiresAt, t.CreatedAt,
	}
}
