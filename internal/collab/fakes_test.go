// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collab

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/meattrack/internal/audit"
	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/sec"
)

// # In-memory store

type memUser struct {
	username string
	fullName string
	email    string
}

type memPresence struct {
	chatID       string
	online       bool
	typing       bool
	typingAt     *time.Time
	lastActivity time.Time
}

// memStore implements both ChatRepository and PresenceRepository.
type memStore struct {
	mu        sync.Mutex
	users     map[string]memUser
	chats     map[string]*ChatSession
	bindings  map[string]map[string]*Participant
	messages  []Message
	presence  map[string]*memPresence
	entries   []audit.Entry
	nextID    int64
	createErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]memUser{},
		chats:    map[string]*ChatSession{},
		bindings: map[string]map[string]*Participant{},
		presence: map[string]*memPresence{},
	}
}

func (m *memStore) addUser(id, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = memUser{username: username, fullName: username + " Doe", email: username + "@example.com"}
}

func (m *memStore) bind(chatID, userID string, role sec.ParticipantRole, joinedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bindings[chatID] == nil {
		m.bindings[chatID] = map[string]*Participant{}
	}
	user := m.users[userID]
	m.bindings[chatID][userID] = &Participant{
		UserID:   userID,
		Username: user.username,
		FullName: user.fullName,
		Email:    user.email,
		Role:     role,
		JoinedAt: joinedAt,
	}
}

func (m *memStore) addMessage(chatID, userID, content string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.messages = append(m.messages, Message{
		ID:            m.nextID,
		ChatSessionID: chatID,
		UserID:        userID,
		Type:          MessageUser,
		Content:       content,
		CreatedAt:     at,
	})
}

func (m *memStore) Create(_ context.Context, chat *ChatSession, welcome *Message, entry audit.Entry) error {
	if m.createErr != nil {
		return m.createErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *chat
	m.chats[chat.ID] = &copied

	owner := m.users[chat.OwnerID]
	m.bindings[chat.ID] = map[string]*Participant{
		chat.OwnerID: {
			UserID:    chat.OwnerID,
			Username:  owner.username,
			FullName:  owner.fullName,
			Email:     owner.email,
			Role:      sec.ParticipantOwner,
			InvitedBy: chat.OwnerID,
			JoinedAt:  chat.CreatedAt,
		},
	}

	m.nextID++
	welcome.ID = m.nextID
	m.messages = append(m.messages, *welcome)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memStore) view(chat *ChatSession, userID string) ChatView {
	owner := m.users[chat.OwnerID]
	view := ChatView{
		ChatSession:      *chat,
		OwnerName:        owner.fullName,
		OwnerUsername:    owner.username,
		ParticipantCount: len(m.bindings[chat.ID]),
	}
	for _, message := range m.messages {
		if message.ChatSessionID == chat.ID {
			view.MessageCount++
			createdAt := message.CreatedAt
			view.LastMessageAt = &createdAt
		}
	}
	if binding, ok := m.bindings[chat.ID][userID]; ok {
		view.UserRole = binding.Role
		view.IsOwner = binding.Role == sec.ParticipantOwner
	}
	return view
}

func (m *memStore) ListForUser(_ context.Context, userID string) ([]ChatView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chats := make([]ChatView, 0)
	for chatID, bindings := range m.bindings {
		if _, ok := bindings[userID]; ok {
			chats = append(chats, m.view(m.chats[chatID], userID))
		}
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].UpdatedAt.After(chats[j].UpdatedAt) })
	return chats, nil
}

func (m *memStore) FindForUser(_ context.Context, chatID, userID string) (*ChatView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat, ok := m.chats[chatID]
	if !ok {
		return nil, apperr.NotFound("Chat session")
	}
	view := m.view(chat, userID)
	return &view, nil
}

func (m *memStore) ParticipantRole(_ context.Context, chatID, userID string) (sec.ParticipantRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	binding, ok := m.bindings[chatID][userID]
	if !ok {
		return "", apperr.NotFound("Participant")
	}
	return binding.Role, nil
}

func (m *memStore) TouchParticipant(_ context.Context, chatID, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if binding, ok := m.bindings[chatID][userID]; ok {
		seen := at
		binding.LastSeenAt = &seen
	}
	return nil
}

func (m *memStore) Participants(_ context.Context, chatID string) ([]Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	participants := make([]Participant, 0)
	for userID, binding := range m.bindings[chatID] {
		participant := *binding
		if row, ok := m.presence[userID]; ok {
			activity := row.lastActivity
			participant.IsOnline = row.online
			participant.LastActivity = &activity
		}
		participants = append(participants, participant)
	}
	sort.Slice(participants, func(i, j int) bool {
		left, right := participants[i], participants[j]
		if (left.Role == sec.ParticipantOwner) != (right.Role == sec.ParticipantOwner) {
			return left.Role == sec.ParticipantOwner
		}
		return left.JoinedAt.Before(right.JoinedAt)
	})
	return participants, nil
}

func (m *memStore) Messages(_ context.Context, chatID string, afterID int64, limit int) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := make([]Message, 0)
	for _, message := range m.messages {
		if message.ChatSessionID != chatID || message.ID <= afterID {
			continue
		}
		messages = append(messages, message)
		if len(messages) == limit {
			break
		}
	}
	return messages, nil
}

func (m *memStore) MarkOnline(_ context.Context, userID, chatID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.presence[userID]
	if !ok {
		row = &memPresence{}
		m.presence[userID] = row
	}
	if chatID != "" {
		row.chatID = chatID
	}
	row.online = true
	row.lastActivity = at
	return nil
}

func (m *memStore) MarkOffline(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.presence[userID] = &memPresence{online: false, lastActivity: at}
	return nil
}

func (m *memStore) SetTyping(_ context.Context, userID, chatID string, typing bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := &memPresence{chatID: chatID, online: true, typing: typing, lastActivity: at}
	if typing {
		started := at
		row.typingAt = &started
	}
	m.presence[userID] = row
	return nil
}

func (m *memStore) TypingUsers(_ context.Context, chatID string, since time.Time) ([]TypingUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]TypingUser, 0)
	for userID, row := range m.presence {
		if row.chatID != chatID || !row.typing || row.typingAt == nil || !row.typingAt.After(since) {
			continue
		}
		user := m.users[userID]
		users = append(users, TypingUser{UserID: userID, FullName: user.fullName, Username: user.username, StartedAt: *row.typingAt})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].StartedAt.Before(users[j].StartedAt) })
	return users, nil
}

// # Fixture

type fixture struct {
	store   *memStore
	service *Service
	clock   time.Time
}

const (
	ownerID    = "0190a000-0000-7000-8000-000000000001"
	memberID   = "0190a000-0000-7000-8000-000000000002"
	strangerID = "0190a000-0000-7000-8000-000000000003"
)

func newFixture() *fixture {
	store := newMemStore()
	store.addUser(ownerID, "owner")
	store.addUser(memberID, "member")
	store.addUser(strangerID, "stranger")

	f := &fixture{store: store, clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.service = NewService(store, store)
	f.service.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) advance(duration time.Duration) {
	f.clock = f.clock.Add(duration)
}
