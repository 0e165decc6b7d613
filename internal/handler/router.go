// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/olegiv/oblog/internal/metrics"
	"github.com/olegiv/oblog/internal/middleware"
	"github.com/olegiv/oblog/internal/service"
	"github.com/olegiv/oblog/internal/version"
)

// RequestTimeout bounds the time a handler may run.
const RequestTimeout = 30 * time.Second

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	DB       *sql.DB
	Sessions *scs.SessionManager
	Accounts *service.AccountService
	Blog     *service.BlogService
	Uploads  *service.UploadService

	// LoginProtection guards POST /login. Optional.
	LoginProtection *middleware.LoginProtection
	// RateLimiter limits public writes per IP. Optional.
	RateLimiter *middleware.GlobalRateLimiter
	// Metrics records request and domain counters. Optional.
	Metrics *metrics.Collector
	// Gatherer backs GET /metrics when Metrics is set.
	Gatherer prometheus.Gatherer
	// CSRF enables cross-origin request protection when set.
	CSRF *middleware.CSRFConfig

	SecurityHeaders middleware.SecurityHeadersConfig
	AccessLog       bool
	Version         version.Info
}

// NewRouter builds the application's HTTP handler.
func NewRouter(cfg RouterConfig) http.Handler {
	var rec metrics.Recorder = metrics.Nop{}
	if cfg.Metrics != nil {
		rec = cfg.Metrics
	}

	authHandler := NewAuthHandler(cfg.Accounts, cfg.Sessions, cfg.LoginProtection, rec)
	blogHandler := NewBlogHandler(cfg.Blog, cfg.Sessions, rec)
	adminHandler := NewAdminHandler(cfg.Blog, cfg.Uploads, cfg.Sessions, rec)
	uploadsHandler := NewUploadsHandler(cfg.Uploads)
	healthHandler := NewHealthHandler(cfg.DB, cfg.Uploads.Dir(), cfg.Version)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.AccessLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(chimw.StripSlashes)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(RequestTimeout))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestPath)

	// Endpoints without sessions
	r.Get(RouteUploads+"/{filename}", uploadsHandler.Serve)
	if cfg.Metrics != nil && cfg.Gatherer != nil {
		r.Handle(RouteMetrics, metrics.Handler(cfg.Gatherer))
	}

	r.Group(func(r chi.Router) {
		r.Use(cfg.Sessions.LoadAndSave)
		if cfg.CSRF != nil {
			r.Use(middleware.CSRF(*cfg.CSRF))
		}
		r.Use(middleware.LoadPrincipal(cfg.Sessions, cfg.Accounts.Resolver()))

		r.Get(RouteHealth, healthHandler.Health)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, RouteBlog, http.StatusFound)
		})

		r.Route(RouteLogin, func(r chi.Router) {
			if cfg.LoginProtection != nil {
				r.Use(cfg.LoginProtection.Middleware())
			}
			r.Get("/", authHandler.LoginForm)
			r.Post("/", authHandler.Login)
		})
		r.Get(RouteLogout, authHandler.Logout)

		r.Group(func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(cfg.RateLimiter.Middleware())
			}

			r.Get(RouteSignup, authHandler.SignupForm)
			r.Post(RouteSignup, authHandler.Signup)

			r.Route(RouteBlog, func(r chi.Router) {
				r.Get("/", blogHandler.List)
				r.Get(RouteParamID, blogHandler.View)
				r.Post(RouteParamID+RouteSuffixComment, blogHandler.Comment)
				r.Post(RouteParamID+RouteSuffixReply, blogHandler.Reply)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(cfg.Sessions))

			r.Route(RouteAdminBlog, func(r chi.Router) {
				r.Get(RouteSuffixCreate, adminHandler.CreateForm)
				r.Post(RouteSuffixCreate, adminHandler.Create)
				r.Get(RouteSuffixEdit, adminHandler.EditForm)
				r.Post(RouteSuffixEdit, adminHandler.Edit)
				r.Get(RouteSuffixList, adminHandler.List)
				r.Post(RouteSuffixDelete+RouteParamID, adminHandler.Delete)
				r.Post(RouteParamID+RouteSuffixToggleComments, adminHandler.ToggleComments)
				r.Post(RouteParamID+RouteSuffixPublish, adminHandler.Publish)
				r.Post(RouteParamID+RouteSuffixUnpublish, adminHandler.Unpublish)
			})
			r.Post(RouteAdminComment+RouteParamID+RouteSuffixDelete, adminHandler.DeleteComment)
		})
	})

	return r
}
