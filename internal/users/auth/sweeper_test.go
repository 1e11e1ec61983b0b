// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/meattrack/internal/platform/sec"
)

func TestSweeper_DeletesOnlyExpired(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seedUser(t, "alice", true)
	ctx := context.Background()

	live, _, err := f.manager.CreateSession(ctx, user.ID, false, ClientMeta{})
	require.NoError(t, err)
	stale, _, err := f.manager.CreateSession(ctx, user.ID, false, ClientMeta{})
	require.NoError(t, err)
	f.sessions.expire(sec.HashToken(stale), time.Now().Add(-time.Hour))

	sweeper := NewSweeper(f.sessions, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	deleted, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = f.manager.ValidateSession(ctx, live)
	assert.NoError(t, err)
}

func TestSweeper_Start(t *testing.T) {
	f := newFixture(t, Options{})
	sweeper := NewSweeper(f.sessions, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	_, err := sweeper.Start("not a schedule")
	assert.Error(t, err)

	scheduler, err := sweeper.Start("@every 1h")
	require.NoError(t, err)
	scheduler.Stop()
}
