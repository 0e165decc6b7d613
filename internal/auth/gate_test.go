// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/oblog/internal/model"
)

func TestGate(t *testing.T) {
	owner := NewAdminPrincipal(model.Admin{ID: 1, Username: "owner"})
	other := NewAdminPrincipal(model.Admin{ID: 2, Username: "other"})
	reader := NewUserPrincipal(model.User{ID: 1, FirstName: "Reader"})
	post := &model.Post{ID: 10, AuthorID: 1}
	comment := &model.Comment{ID: 100, BlogPostID: 10}
	foreign := &model.Comment{ID: 101, BlogPostID: 11}

	assert.True(t, IsAdmin(owner))
	assert.False(t, IsAdmin(reader))
	assert.False(t, IsAdmin(nil))

	assert.True(t, OwnsPost(owner, post))
	assert.False(t, OwnsPost(other, post))
	assert.False(t, OwnsPost(reader, post), "a user with the same id as the author does not own the post")
	assert.False(t, OwnsPost(nil, post))
	assert.Equal(t, OwnsPost(owner, post), CanEditOrDeletePost(owner, post))
	assert.Equal(t, OwnsPost(other, post), CanEditOrDeletePost(other, post))

	assert.True(t, CanManageComment(owner, comment, post))
	assert.False(t, CanManageComment(other, comment, post))
	assert.False(t, CanManageComment(reader, comment, post))
	assert.False(t, CanManageComment(owner, foreign, post), "comment must belong to the post")

	assert.True(t, CanReply(reader))
	assert.True(t, CanReply(owner))
	assert.False(t, CanReply(nil))
}

func TestGate_RequireReturnsForbidden(t *testing.T) {
	other := NewAdminPrincipal(model.Admin{ID: 2})
	reader := NewUserPrincipal(model.User{ID: 1})
	post := &model.Post{ID: 10, AuthorID: 1}

	errs := []error{
		RequireAdmin(reader),
		RequireAdmin(nil),
		RequirePostOwner(other, post, ActionDeletePost),
		RequireCommentManager(reader, &model.Comment{BlogPostID: 10}, post),
		RequireReply(nil),
	}
	for _, err := range errs {
		assert.True(t, errors.Is(err, model.ErrForbidden), "got %v", err)
	}

	var fe *model.ForbiddenError
	assert.True(t, errors.As(RequirePostOwner(other, post, ActionDeletePost), &fe))
	assert.Equal(t, ActionDeletePost, fe.Action)

	assert.NoError(t, RequireAdmin(other))
	assert.NoError(t, RequireReply(reader))
}
