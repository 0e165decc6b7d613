// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteSignup is the signup route.
	RouteSignup = "/signup"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteBlog is the public blog listing.
	RouteBlog = "/blog"
	// RouteUploads is where featured images are served from.
	RouteUploads = "/uploads"
	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteMetrics is the Prometheus scrape route.
	RouteMetrics = "/metrics"
	// RouteAdminBlog is the admin blog management prefix.
	RouteAdminBlog = "/admin/blog"
	// RouteAdminComment is the admin comment management prefix.
	RouteAdminComment = "/admin/comment"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteSuffixComment is the top-level comment suffix.
	RouteSuffixComment = "/comment"
	// RouteSuffixReply is the reply suffix under a comment.
	RouteSuffixReply = "/comment/{commentID}/reply"
	// RouteSuffixCreate is the post creation suffix.
	RouteSuffixCreate = "/create"
	// RouteSuffixEdit is the post edit suffix.
	RouteSuffixEdit = "/edit/{id}"
	// RouteSuffixList is the admin listing suffix.
	RouteSuffixList = "/list"
	// RouteSuffixDelete is the delete suffix.
	RouteSuffixDelete = "/delete"
	// RouteSuffixToggleComments is the comment toggle suffix.
	RouteSuffixToggleComments = "/toggle-comments"
	// RouteSuffixPublish is the publish suffix.
	RouteSuffixPublish = "/publish"
	// RouteSuffixUnpublish is the unpublish suffix.
	RouteSuffixUnpublish = "/unpublish"
)

// Redirect targets.
const (
	redirectAdminList   = RouteAdminBlog + RouteSuffixList
	redirectAdminCreate = RouteAdminBlog + RouteSuffixCreate
)

// Form field names.
const (
	fieldEmail           = "email"
	fieldPassword        = "password"
	fieldConfirmPassword = "confirm_password"
	fieldFirstName       = "first_name"
	fieldLastName        = "last_name"
	fieldTitle           = "title"
	fieldExcerpt         = "excerpt"
	fieldContent         = "content"
	fieldIsPublished     = "is_published"
	fieldFeaturedImage   = "featured_image"
	fieldName            = "name"
)

// Flash messages shown after write routes.
const (
	msgInvalidForm        = "Invalid form data"
	msgPermissionDenied   = "You do not have permission to perform this action."
	msgCommentsDisabled   = "Comments are disabled for this post."
	msgLoginRequired      = "Email and password are required"
	msgInvalidCredentials = "Invalid email or password"
	msgLoggedOut          = "You have been logged out"
	msgAccountCreated     = "Account created successfully. Please log in."
	msgReplyLoginRequired = "Please log in to reply to comments."
	msgCommentPosted      = "Your comment has been posted."
	msgReplyPosted        = "Your reply has been posted."
	msgCommentDeleted     = "Comment deleted."
	msgPostCreated        = "Blog post created successfully."
	msgPostUpdated        = "Blog post updated successfully."
	msgPostDeleted        = "Blog post deleted."
	msgPostPublished      = "Blog post published."
	msgPostUnpublished    = "Blog post moved back to drafts."
	msgCommentsEnabled    = "Comments enabled."
	msgCommentsOff        = "Comments disabled."
)
