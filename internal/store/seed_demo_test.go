// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oblog/internal/model"
)

func TestSeedDemo(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	require.NoError(t, Seed(ctx, db, SeedOptions{}))
	require.NoError(t, SeedDemo(ctx, db))

	user, err := q.GetUserByEmail(ctx, DemoUserEmail)
	require.NoError(t, err)
	assert.Equal(t, "Demo Reader", user.FullName())

	posts, err := q.ListPublishedPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	comments, err := q.ListCommentsByPost(ctx, posts[0].ID)
	require.NoError(t, err)
	tree := model.BuildCommentTree(comments)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, user.ID, tree[0].UserID.Int64)
}

func TestSeedDemo_Idempotent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, Seed(ctx, db, SeedOptions{}))
	require.NoError(t, SeedDemo(ctx, db))
	require.NoError(t, SeedDemo(ctx, db))

	count, err := New(db).CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSeedDemo_RequiresAdmin(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	assert.Error(t, SeedDemo(context.Background(), db))
}
