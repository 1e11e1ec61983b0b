// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/meattrack/internal/audit"
	"github.com/taibuivan/meattrack/internal/platform/apperr"
	"github.com/taibuivan/meattrack/internal/platform/sec"
)

// # In-memory repositories

type memUsers struct {
	mu      sync.Mutex
	byID    map[string]*User
	entries *memRecorder
}

func newMemUsers(entries *memRecorder) *memUsers {
	return &memUsers{byID: map[string]*User{}, entries: entries}
}

func (m *memUsers) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.byID {
		if sec.NormalizeIdentifier(user.Username) == sec.NormalizeIdentifier(username) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memUsers) Register(ctx context.Context, user *User, entry audit.Entry) error {
	m.mu.Lock()
	copied := *user
	m.byID[user.ID] = &copied
	m.mu.Unlock()
	return m.entries.Record(ctx, entry)
}

func (m *memUsers) MarkVerified(ctx context.Context, userID string, entry audit.Entry) error {
	m.mu.Lock()
	user, ok := m.byID[userID]
	if ok {
		user.IsVerified = true
	}
	m.mu.Unlock()
	if !ok {
		return apperr.NotFound("User")
	}
	return m.entries.Record(ctx, entry)
}

func (m *memUsers) UpdateLastLogin(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.byID[userID]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func (m *memUsers) put(user *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[user.ID] = user
}

type memSessions struct {
	mu     sync.Mutex
	byHash map[string]*Session
	err    error

	// deleteErr fails only DeleteByTokenHash.
	deleteErr error
}

func newMemSessions() *memSessions {
	return &memSessions{byHash: map[string]*Session{}}
}

func (m *memSessions) Create(_ context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	copied := *session
	m.byHash[session.TokenHash] = &copied
	return nil
}

func (m *memSessions) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if session, ok := m.byHash[tokenHash]; ok {
		copied := *session
		return &copied, nil
	}
	return nil, apperr.NotFound("Session")
}

func (m *memSessions) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.byHash, tokenHash)
	return nil
}

func (m *memSessions) ListActiveByUser(_ context.Context, userID string, now time.Time) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions := make([]Session, 0)
	for _, session := range m.byHash {
		if session.UserID == userID && session.ValidAt(now) {
			sessions = append(sessions, *session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.After(sessions[j].CreatedAt) })
	return sessions, nil
}

func (m *memSessions) DeleteForUser(_ context.Context, userID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, session := range m.byHash {
		if session.ID == sessionID && session.UserID == userID {
			delete(m.byHash, hash)
			return nil
		}
	}
	return apperr.NotFound("Session")
}

func (m *memSessions) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for hash, session := range m.byHash {
		if session.UserID == userID {
			delete(m.byHash, hash)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var deleted int64
	for hash, session := range m.byHash {
		if !session.ValidAt(now) {
			delete(m.byHash, hash)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memSessions) expire(tokenHash string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byHash[tokenHash].ExpiresAt = at
}

func (m *memSessions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byHash)
}

type memRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (m *memRecorder) Record(_ context.Context, entry audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memRecorder) actions(action audit.Action) []audit.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []audit.Entry
	for _, entry := range m.entries {
		if entry.Action == action {
			matched = append(matched, entry)
		}
	}
	return matched
}

type memPresence struct {
	mu      sync.Mutex
	online  map[string]bool
	offline map[string]bool
}

func newMemPresence() *memPresence {
	return &memPresence{online: map[string]bool{}, offline: map[string]bool{}}
}

func (m *memPresence) MarkOnline(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online[userID] = true
	return nil
}

// MarkOffline records the call and fails, so logout cleanup must carry on.
func (m *memPresence) MarkOffline(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline[userID] = true
	return errors.New("presence unavailable")
}

// # Fixture

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testPassword = "s3cret-pass"
)

type fixture struct {
	redis    *miniredis.Miniredis
	client   *redis.Client
	users    *memUsers
	sessions *memSessions
	browsers *RedisBrowserSessionStore
	recorder *memRecorder
	presence *memPresence
	manager  *SessionManager
	csrf     *CSRFGuard
	service  *Service
}

func newFixture(t *testing.T, options Options) *fixture {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	recorder := &memRecorder{}
	users := newMemUsers(recorder)
	sessions := newMemSessions()
	browsers := NewBrowserSessionStore(client)
	presence := newMemPresence()

	manager := NewSessionManager(sessions, browsers, users, SessionOptions{
		SessionTTL:        24 * time.Hour,
		RememberTTL:       30 * 24 * time.Hour,
		BrowserSessionTTL: 24 * time.Hour,
	})

	signer, err := sec.NewLinkSigner(testSecret, "meattrack")
	if err != nil {
		t.Fatal(err)
	}

	if options.FailureWindow == 0 {
		options.FailureWindow = 15 * time.Minute
	}
	if options.PublicBaseURL == "" {
		options.PublicBaseURL = "http://localhost:8080"
	}

	service := NewService(users, manager, NewNonceStore(client), NewLoginThrottle(client), presence, recorder, signer, options)

	return &fixture{
		redis:    server,
		client:   client,
		users:    users,
		sessions: sessions,
		browsers: browsers,
		recorder: recorder,
		presence: presence,
		manager:  manager,
		csrf:     NewCSRFGuard(browsers, 24*time.Hour),
		service:  service,
	}
}

// seedUser stores an active account with testPassword.
func (f *fixture) seedUser(t *testing.T, username string, verified bool) *User {
	t.Helper()

	hash, err := sec.HashPassword(testPassword)
	if err != nil {
		t.Fatal(err)
	}

	user := &User{
		ID:           "user-" + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		FullName:     "Test " + username,
		Role:         sec.RoleViewer,
		Status:       sec.StatusActive,
		IsVerified:   verified,
		CreatedAt:    time.Now().UTC(),
	}
	f.users.put(user)
	return user
}
