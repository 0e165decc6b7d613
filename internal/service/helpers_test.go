// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/cache"
	"github.com/olegiv/oblog/internal/model"
	"github.com/olegiv/oblog/internal/testutil"
)

// stepClock advances one second on every reading.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// recordingRemover records removed refs and fails when err is set.
type recordingRemover struct {
	mu      sync.Mutex
	removed []string
	err     error
}

func (r *recordingRemover) Remove(ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, ref)
	return r.err
}

var errDiskGone = errors.New("disk gone")

type blogFixture struct {
	db     *sql.DB
	svc    *BlogService
	clock  *stepClock
	assets *recordingRemover
	adminA *auth.Principal
	adminB *auth.Principal
	user   *auth.Principal
	cache  *cache.MemoryCache
}

func newBlogFixture(t *testing.T) *blogFixture {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = mem.Close() })

	f := &blogFixture{
		db:     db,
		clock:  newStepClock(),
		assets: &recordingRemover{},
		cache:  mem,
	}
	f.svc = NewBlogService(db, mem,
		WithClock(f.clock.Now),
		WithAssetRemover(f.assets),
		WithLogger(testutil.TestLoggerSilent()),
	)

	f.adminA = auth.NewAdminPrincipal(testutil.CreateAdmin(t, db, "alice", "alice@example.com", "alice-password"))
	f.adminB = auth.NewAdminPrincipal(testutil.CreateAdmin(t, db, "bob", "bob@example.com", "bob-password"))
	f.user = auth.NewUserPrincipal(testutil.CreateUser(t, db, "Uma", "Reader", "uma@example.com", "uma-password"))
	return f
}

func (f *blogFixture) createPost(t *testing.T, owner *auth.Principal, publish bool) model.Post {
	t.Helper()
	post, err := f.svc.CreatePost(t.Context(), owner, model.PostInput{
		Title:   "A post worth reading",
		Content: "Enough content to pass validation.",
		Publish: publish,
	})
	require.NoError(t, err)
	return post
}
