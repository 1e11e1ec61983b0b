// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// SystemActivityLogTable represents the 'system.activity_log' table
type SystemActivityLogTable struct {
	Table     string
	ID        string
	UserID    string
	Action    string
	Details   string
	IPAddress string
	UserAgent string
	CreatedAt string
}

var SystemActivityLog = SystemActivityLogTable{
	Table:     "system.activity_log",
	ID:        "id",
	UserID:    "user_id",
	Action:    "action",
	Details:   "details",
	IPAddress: "ip_address",
	UserAgent: "user_agent",
	CreatedAt: "created_at",
}

// Columns returns all standard column names
func (t SystemActivityLogTable) Columns() []string {
	return []string{t.ID, t.UserID, t.Action, t.Details, t.IPAddress, t.UserAgent, t.CreatedAt}
}
