// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/model"
)

// Demo reader credentials
const (
	DemoUserEmail     = "reader@example.com"
	DemoUserPassword  = "demo1234demo"
	DemoUserFirstName = "Demo"
	DemoUserLastName  = "Reader"
)

// SeedDemo creates a reader account, a published post and a short comment
// thread. It is a no-op once the demo reader exists.
func SeedDemo(ctx context.Context, db *sql.DB) error {
	slog.Info("seeding demo content")

	return InTx(ctx, db, func(q *Queries) error {
		_, err := q.GetUserByEmail(ctx, DemoUserEmail)
		if err == nil {
			slog.Info("demo content already exists, skipping")
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking demo user: %w", err)
		}

		admin, err := q.GetAdminByUsername(ctx, DefaultAdminUsername)
		if err != nil {
			return fmt.Errorf("getting default admin: %w", err)
		}

		user, err := seedDemoUser(ctx, q)
		if err != nil {
			return fmt.Errorf("seeding demo user: %w", err)
		}

		if err := seedDemoPost(ctx, q, admin, user); err != nil {
			return fmt.Errorf("seeding demo post: %w", err)
		}

		slog.Info("demo content seeded successfully")
		return nil
	})
}

func seedDemoUser(ctx context.Context, q *Queries) (model.User, error) {
	hash, err := auth.HashPassword(DemoUserPassword)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		FirstName:    DemoUserFirstName,
		LastName:     DemoUserLastName,
		Email:        DemoUserEmail,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.User{}, err
	}

	slog.Info("created demo reader", "email", user.Email)
	return user, nil
}

func seedDemoPost(ctx context.Context, q *Queries, admin model.Admin, user model.User) error {
	now := time.Now()
	post, err := q.CreatePost(ctx, CreatePostParams{
		Title:     "Welcome to the blog",
		Content:   demoPostBody,
		Excerpt:   "A first post to show how publishing and threaded comments work.",
		AuthorID:  admin.ID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("creating post: %w", err)
	}

	if _, err := q.SetPostPublication(ctx, post.ID, sql.NullTime{Time: now, Valid: true}, now); err != nil {
		return fmt.Errorf("publishing post: %w", err)
	}

	root, err := q.CreateComment(ctx, CreateCommentParams{
		Content:           "Great to see this up and running!",
		AuthorDisplayName: user.FullName(),
		UserID:            sql.NullInt64{Int64: user.ID, Valid: true},
		BlogPostID:        post.ID,
		CreatedAt:         now,
	})
	if err != nil {
		return fmt.Errorf("creating comment: %w", err)
	}

	if _, err := q.CreateReply(ctx, CreateReplyParams{
		Content:           "Thanks! Replies nest under the comment they answer.",
		AuthorDisplayName: admin.Username,
		BlogPostID:        post.ID,
		ParentCommentID:   root.ID,
		CreatedAt:         now.Add(time.Second),
	}); err != nil {
		return fmt.Errorf("creating reply: %w", err)
	}

	return nil
}

const demoPostBody = `# Hello

This blog is written by administrators and read by everyone.

Signed-in readers can leave comments, and the post author can reply
to any of them. Replies appear nested under the comment they answer.
`
