// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	Status       string
	IsVerified   string
	LastLoginAt  string
	CreatedAt    string
	UpdatedAt    string

	// UsernameKey and EmailKey are the unique constraint names.
	UsernameKey string
	EmailKey    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	PasswordHash: "password_hash",
	FullName:     "full_name",
	Role:         "role",
	Status:       "status",
	IsVerified:   "is_verified",
	LastLoginAt:  "last_login_at",
	CreatedAt:    "created_at",
	UpdatedAt:    "updated_at",
	UsernameKey:  "account_username_key",
	EmailKey:     "account_email_key",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.PasswordHash, t.FullName, t.Role, t.Status,
		t.IsVerified, t.LastLoginAt, t.CreatedAt, t.UpdatedAt,
	}
}
