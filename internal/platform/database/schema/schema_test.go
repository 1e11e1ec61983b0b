// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList(t *testing.T) {
	assert.Equal(t, "id, user_id, action, details, ip_address, user_agent, created_at", List(SystemActivityLog.Columns()))
	assert.Equal(t, "", List(nil))
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "p.chat_session_id, p.user_id", Prefixed("p", []string{CollabParticipant.ChatSessionID, CollabParticipant.UserID}))
}

// Every column must be populated; an empty name would render broken SQL.
func TestColumns_NoBlankNames(t *testing.T) {
	tables := map[string][]string{
		UserAccount.Table:       UserAccount.Columns(),
		UserSession.Table:       UserSession.Columns(),
		SystemActivityLog.Table: SystemActivityLog.Columns(),
		CollabChatSession.Table: CollabChatSession.Columns(),
		CollabParticipant.Table: CollabParticipant.Columns(),
		CollabMessage.Table:     CollabMessage.Columns(),
		CollabPresence.Table:    CollabPresence.Columns(),
	}

	for table, columns := range tables {
		assert.NotEmpty(t, columns, table)
		for _, column := range columns {
			assert.NotEmpty(t, column, table)
		}
	}
}
