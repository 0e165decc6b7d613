// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the blog's business operations: the post
// lifecycle, comment threading, accounts and featured image storage.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/cache"
	"github.com/olegiv/oblog/internal/model"
	"github.com/olegiv/oblog/internal/store"
	"github.com/olegiv/oblog/internal/util"
)

// PublishedListKey is the cache key of the public post listing.
const PublishedListKey = "posts:published"

// Post and comment field limits.
const (
	MinTitleLength       = 5
	MaxTitleLength       = 200
	MaxExcerptLength     = 500
	MinContentLength     = 10
	MaxCommentLength     = 5000
	MaxDisplayNameLength = 100
)

// AssetRemover deletes stored featured images.
type AssetRemover interface {
	Remove(ref string) error
}

// BlogService manages posts and their comment threads.
type BlogService struct {
	db      *sql.DB
	queries *store.Queries
	listing *cache.TypedCache[[]PostSummary]
	assets  AssetRemover
	now     func() time.Time
	logger  *slog.Logger

	// listingMu guards listingGen, which counts invalidations so a listing
	// loaded before one is never stored after it.
	listingMu  sync.Mutex
	listingGen uint64
}

// BlogOption configures a BlogService.
type BlogOption func(*BlogService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) BlogOption {
	return func(s *BlogService) { s.now = now }
}

// WithAssetRemover sets the store used to delete featured images.
func WithAssetRemover(r AssetRemover) BlogOption {
	return func(s *BlogService) { s.assets = r }
}

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l *slog.Logger) BlogOption {
	return func(s *BlogService) { s.logger = l }
}

// NewBlogService creates a BlogService. A nil cache disables listing caching.
func NewBlogService(db *sql.DB, c cache.Cache, opts ...BlogOption) *BlogService {
	if c == nil {
		c = cache.NewMemoryCache(cache.MemoryCacheOptions{})
	}
	s := &BlogService{
		db:      db,
		queries: store.New(db),
		listing: cache.NewTypedCache[[]PostSummary](c, cache.DefaultTTL),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BlogService) timestamp() time.Time {
	return s.now().UTC()
}

// invalidateListing drops the cached public listing. A failure only means
// a stale listing until the TTL runs out.
func (s *BlogService) invalidateListing(ctx context.Context) {
	s.listingMu.Lock()
	defer s.listingMu.Unlock()

	s.listingGen++
	if err := s.listing.Delete(ctx, PublishedListKey); err != nil {
		s.logger.Warn("failed to invalidate post listing", "error", err)
	}
}

func (s *BlogService) listingGeneration() uint64 {
	s.listingMu.Lock()
	defer s.listingMu.Unlock()
	return s.listingGen
}

// storeListing caches summaries loaded at generation gen. It reports false
// and stores nothing when the listing was invalidated since.
func (s *BlogService) storeListing(ctx context.Context, gen uint64, summaries []PostSummary) bool {
	s.listingMu.Lock()
	defer s.listingMu.Unlock()

	if s.listingGen != gen {
		return false
	}
	if err := s.listing.Set(ctx, PublishedListKey, summaries); err != nil {
		s.logger.Warn("failed to cache post listing", "error", err)
	}
	return true
}

func validatePost(in *model.PostInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Excerpt = strings.TrimSpace(in.Excerpt)

	v := model.NewValidator()
	titleLen := utf8.RuneCountInString(in.Title)
	v.Check(in.Title != "", "title", "Title is required")
	v.Check(titleLen >= MinTitleLength && titleLen <= MaxTitleLength, "title",
		fmt.Sprintf("Title must be between %d and %d characters", MinTitleLength, MaxTitleLength))
	v.Check(utf8.RuneCountInString(in.Excerpt) <= MaxExcerptLength, "excerpt",
		fmt.Sprintf("Excerpt must be at most %d characters", MaxExcerptLength))
	v.Check(utf8.RuneCountInString(strings.TrimSpace(in.Content)) >= MinContentLength, "content",
		fmt.Sprintf("Content must be at least %d characters", MinContentLength))
	return v.Err()
}

func excerptFor(in model.PostInput) string {
	if in.Excerpt != "" {
		return in.Excerpt
	}
	return BuildExcerpt(in.Content, ExcerptLength)
}

// getPost loads a post, mapping a missing row to model.ErrNotFound.
func getPost(ctx context.Context, q *store.Queries, id int64) (model.Post, error) {
	post, err := q.GetPostByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return post, fmt.Errorf("post %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return post, fmt.Errorf("loading post %d: %w", id, err)
	}
	return post, nil
}

// CreatePost creates a draft owned by the acting admin, publishing it in
// the same transaction when in.Publish is set.
func (s *BlogService) CreatePost(ctx context.Context, p *auth.Principal, in model.PostInput) (model.Post, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return model.Post{}, err
	}
	if err := validatePost(&in); err != nil {
		return model.Post{}, err
	}

	var post model.Post
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		now := s.timestamp()
		created, err := q.CreatePost(ctx, store.CreatePostParams{
			Title:            in.Title,
			Content:          in.Content,
			Excerpt:          excerptFor(in),
			FeaturedImageRef: util.NullStringFromValue(in.FeaturedImageRef),
			AuthorID:         p.ID(),
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		if err != nil {
			return fmt.Errorf("creating post: %w", err)
		}

		if in.Publish {
			created, err = q.SetPostPublication(ctx, created.ID, sql.NullTime{Time: now, Valid: true}, now)
			if err != nil {
				return fmt.Errorf("publishing post: %w", err)
			}
		}
		post = created
		return nil
	})
	if err != nil {
		return model.Post{}, err
	}

	if post.IsPublished {
		s.invalidateListing(ctx)
	}
	s.logger.Info("post created", "post_id", post.ID, "author_id", post.AuthorID, "published", post.IsPublished)
	return post, nil
}

// UpdatePost edits a post owned by the acting admin. A non-empty
// FeaturedImageRef replaces the current image, whose file is then removed.
// The publish flag moves the post between draft and published; a post that
// stays published keeps its publication time.
func (s *BlogService) UpdatePost(ctx context.Context, p *auth.Principal, id int64, in model.PostInput) (model.Post, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return model.Post{}, err
	}

	var (
		post     model.Post
		oldImage string
	)
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		current, err := getPost(ctx, q, id)
		if err != nil {
			return err
		}
		if err := auth.RequirePostOwner(p, &current, auth.ActionEditPost); err != nil {
			return err
		}
		if err := validatePost(&in); err != nil {
			return err
		}

		image := current.FeaturedImageRef
		if in.FeaturedImageRef != "" && in.FeaturedImageRef != current.FeaturedImageRef.String {
			oldImage = current.FeaturedImageRef.String
			image = util.NullStringFromValue(in.FeaturedImageRef)
		}

		now := s.timestamp()
		updated, err := q.UpdatePostContent(ctx, store.UpdatePostContentParams{
			ID:               id,
			Title:            in.Title,
			Content:          in.Content,
			Excerpt:          excerptFor(in),
			FeaturedImageRef: image,
			UpdatedAt:        now,
		})
		if err != nil {
			return fmt.Errorf("updating post: %w", err)
		}

		switch {
		case in.Publish && !updated.IsPublished:
			updated, err = q.SetPostPublication(ctx, id, sql.NullTime{Time: now, Valid: true}, now)
		case !in.Publish && updated.IsPublished:
			updated, err = q.SetPostPublication(ctx, id, sql.NullTime{}, now)
		}
		if err != nil {
			return fmt.Errorf("changing publication: %w", err)
		}

		post = updated
		return nil
	})
	if err != nil {
		return model.Post{}, err
	}

	s.invalidateListing(ctx)
	s.removeAsset(oldImage, post.ID)
	return post, nil
}

// Publish marks a post published as of now. Publishing an already
// published post moves its publication time forward.
func (s *BlogService) Publish(ctx context.Context, p *auth.Principal, id int64) (model.Post, error) {
	return s.setPublication(ctx, p, id, true)
}

// Unpublish returns a post to draft and clears its publication time.
func (s *BlogService) Unpublish(ctx context.Context, p *auth.Principal, id int64) (model.Post, error) {
	return s.setPublication(ctx, p, id, false)
}

func (s *BlogService) setPublication(ctx context.Context, p *auth.Principal, id int64, publish bool) (model.Post, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return model.Post{}, err
	}

	var post model.Post
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		current, err := getPost(ctx, q, id)
		if err != nil {
			return err
		}
		if err := auth.RequirePostOwner(p, &current, auth.ActionEditPost); err != nil {
			return err
		}

		now := s.timestamp()
		publishedAt := sql.NullTime{}
		if publish {
			publishedAt = sql.NullTime{Time: now, Valid: true}
		}
		post, err = q.SetPostPublication(ctx, id, publishedAt, now)
		if err != nil {
			return fmt.Errorf("setting publication: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Post{}, err
	}

	s.invalidateListing(ctx)
	s.logger.Info("post publication changed", "post_id", id, "published", post.IsPublished)
	return post, nil
}

// DeletePost deletes a post owned by the acting admin together with its
// comments. The featured image file is removed afterwards on a best-effort
// basis.
func (s *BlogService) DeletePost(ctx context.Context, p *auth.Principal, id int64) error {
	if err := auth.RequireAdmin(p); err != nil {
		return err
	}

	var image string
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		post, err := getPost(ctx, q, id)
		if err != nil {
			return err
		}
		if err := auth.RequirePostOwner(p, &post, auth.ActionDeletePost); err != nil {
			return err
		}
		if err := q.DeletePost(ctx, id); err != nil {
			return fmt.Errorf("deleting post: %w", err)
		}
		image = post.FeaturedImageRef.String
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateListing(ctx)
	s.removeAsset(image, id)
	s.logger.Info("post deleted", "post_id", id, "admin_id", p.ID())
	return nil
}

func (s *BlogService) removeAsset(ref string, postID int64) {
	if ref == "" || s.assets == nil {
		return
	}
	if err := s.assets.Remove(ref); err != nil {
		s.logger.Warn("failed to remove featured image", "post_id", postID, "ref", ref, "error", err)
	}
}

// visiblePost loads a post the viewer is allowed to see. Drafts are only
// visible to their author; anyone else gets model.ErrNotFound.
func (s *BlogService) visiblePost(ctx context.Context, viewer *auth.Principal, id int64) (model.Post, error) {
	post, err := getPost(ctx, s.queries, id)
	if err != nil {
		return post, err
	}
	if !post.IsPublished && !auth.OwnsPost(viewer, &post) {
		return model.Post{}, fmt.Errorf("post %d: %w", id, model.ErrNotFound)
	}
	return post, nil
}

// ViewPost returns the post page for viewer.
func (s *BlogService) ViewPost(ctx context.Context, viewer *auth.Principal, id int64) (*PostPage, error) {
	post, err := s.visiblePost(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	view, err := NewPostView(post)
	if err != nil {
		return nil, fmt.Errorf("rendering post %d: %w", id, err)
	}

	thread, err := s.Thread(ctx, id)
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Post:         view,
		Comments:     thread,
		CommentCount: model.CountNodes(thread),
		CanManage:    auth.OwnsPost(viewer, &post),
		CanReply:     auth.CanReply(viewer) && post.AllowComments,
	}, nil
}

// GetPostForEdit returns a post for its author's edit form.
func (s *BlogService) GetPostForEdit(ctx context.Context, p *auth.Principal, id int64) (model.Post, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return model.Post{}, err
	}
	post, err := getPost(ctx, s.queries, id)
	if err != nil {
		return post, err
	}
	if err := auth.RequirePostOwner(p, &post, auth.ActionEditPost); err != nil {
		return model.Post{}, err
	}
	return post, nil
}

// ListPublished returns published posts, most recently published first.
func (s *BlogService) ListPublished(ctx context.Context) ([]PostSummary, error) {
	if cached, ok := s.listing.Get(ctx, PublishedListKey); ok {
		return cached, nil
	}

	gen := s.listingGeneration()
	posts, err := s.queries.ListPublishedPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing published posts: %w", err)
	}
	summaries := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, newPostSummary(p))
	}

	s.storeListing(ctx, gen, summaries)
	return summaries, nil
}

// ListByAuthor returns every post written by the acting admin, drafts
// included, newest first.
func (s *BlogService) ListByAuthor(ctx context.Context, p *auth.Principal) ([]model.Post, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	posts, err := s.queries.ListPostsByAuthor(ctx, p.ID())
	if err != nil {
		return nil, fmt.Errorf("listing posts by author: %w", err)
	}
	return posts, nil
}

// ToggleComments flips whether a post accepts comments and returns the new
// setting. Existing comments are left alone.
func (s *BlogService) ToggleComments(ctx context.Context, p *auth.Principal, postID int64) (bool, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return false, err
	}

	var allowed bool
	err := store.InTx(ctx, s.db, func(q *store.Queries) error {
		post, err := getPost(ctx, q, postID)
		if err != nil {
			return err
		}
		if err := auth.RequirePostOwner(p, &post, auth.ActionEditPost); err != nil {
			return err
		}
		updated, err := q.SetPostAllowComments(ctx, postID, !post.AllowComments, s.timestamp())
		if err != nil {
			return fmt.Errorf("toggling comments: %w", err)
		}
		allowed = updated.AllowComments
		return nil
	})
	return allowed, err
}
