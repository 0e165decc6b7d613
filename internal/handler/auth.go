// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/metrics"
	"github.com/olegiv/oblog/internal/middleware"
	"github.com/olegiv/oblog/internal/service"
	"github.com/olegiv/oblog/internal/session"
)

// loginKindUnknown labels failed logins, where no principal was found.
const loginKindUnknown = "unknown"

// AuthHandler handles sign-in, sign-up and sign-out.
type AuthHandler struct {
	accounts        *service.AccountService
	sessionManager  *scs.SessionManager
	loginProtection *middleware.LoginProtection
	metrics         metrics.Recorder
}

// NewAuthHandler creates a new AuthHandler. loginProtection may be nil.
func NewAuthHandler(accounts *service.AccountService, sm *scs.SessionManager, loginProtection *middleware.LoginProtection, rec metrics.Recorder) *AuthHandler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AuthHandler{
		accounts:        accounts,
		sessionManager:  sm,
		loginProtection: loginProtection,
		metrics:         rec,
	}
}

// formView describes a form: where it posts and which fields it takes.
type formView struct {
	Action string   `json:"action"`
	Fields []string `json:"fields"`
}

// LoginForm handles GET /login.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	renderView(w, r, h.sessionManager, formView{
		Action: RouteLogin,
		Fields: []string{fieldEmail, fieldPassword},
	})
}

// Login handles POST /login. Admins land on their post list, Users on the blog.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.sessionManager, RouteLogin) {
		return
	}

	email := r.FormValue(fieldEmail)
	password := r.FormValue(fieldPassword)

	if email == "" || password == "" {
		flashError(w, r, h.sessionManager, RouteLogin, msgLoginRequired)
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			slog.WarnContext(r.Context(), "login attempt on locked account", "email", email)
			h.metrics.RecordLogin(loginKindUnknown, metrics.LoginLocked)
			flashError(w, r, h.sessionManager, RouteLogin,
				fmt.Sprintf("Account temporarily locked. Please try again in %s.", formatDuration(remaining)))
			return
		}
	}

	p, err := h.accounts.Login(r.Context(), email, password)
	if err != nil {
		logAndInternalError(w, r, "database error during login", "error", err)
		return
	}

	if p == nil {
		slog.DebugContext(r.Context(), "invalid login attempt", "email", email)
		h.metrics.RecordLogin(loginKindUnknown, metrics.LoginFailure)
		h.loginFailed(w, r, email)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	if err := session.Login(r.Context(), h.sessionManager, auth.EncodeRef(p)); err != nil {
		logAndInternalError(w, r, "failed to start session", "error", err)
		return
	}

	h.metrics.RecordLogin(p.Kind.String(), metrics.LoginSuccess)
	slog.InfoContext(r.Context(), "principal logged in", "principal", auth.EncodeRef(p))

	target := RouteBlog
	if auth.IsAdmin(p) {
		target = redirectAdminList
	}
	flashSuccess(w, r, h.sessionManager, target, fmt.Sprintf("Welcome back, %s!", p.DisplayName()))
}

// loginFailed records the failure and flashes the matching notice.
// Unknown emails count against the lockout too so they can't be told apart.
func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, email string) {
	if h.loginProtection != nil {
		if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
			slog.WarnContext(r.Context(), "account locked due to failed attempts",
				"email", email, "duration", lockDuration.String())
			flashError(w, r, h.sessionManager, RouteLogin,
				fmt.Sprintf("Too many failed attempts. Account locked for %s.", formatDuration(lockDuration)))
			return
		}
		remaining := h.loginProtection.GetRemainingAttempts(email)
		if remaining <= 3 && remaining > 0 {
			flashError(w, r, h.sessionManager, RouteLogin,
				fmt.Sprintf("%s. %d attempts remaining.", msgInvalidCredentials, remaining))
			return
		}
	}
	flashError(w, r, h.sessionManager, RouteLogin, msgInvalidCredentials)
}

// SignupForm handles GET /signup.
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	renderView(w, r, h.sessionManager, formView{
		Action: RouteSignup,
		Fields: []string{fieldFirstName, fieldLastName, fieldEmail, fieldPassword, fieldConfirmPassword},
	})
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.sessionManager, RouteSignup) {
		return
	}

	_, err := h.accounts.SignUp(r.Context(), service.SignUpInput{
		FirstName:       r.FormValue(fieldFirstName),
		LastName:        r.FormValue(fieldLastName),
		Email:           r.FormValue(fieldEmail),
		Password:        r.FormValue(fieldPassword),
		ConfirmPassword: r.FormValue(fieldConfirmPassword),
	})
	if err != nil {
		handleServiceError(w, r, h.sessionManager, RouteSignup, err, "failed to sign up user")
		return
	}

	flashSuccess(w, r, h.sessionManager, RouteLogin, msgAccountCreated)
}

// Logout handles GET /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if p := middleware.GetPrincipal(r); p != nil {
		slog.InfoContext(r.Context(), "principal logged out", "principal", auth.EncodeRef(p))
	}

	if err := session.Logout(r.Context(), h.sessionManager); err != nil {
		logAndInternalError(w, r, "failed to destroy session", "error", err)
		return
	}

	flashSuccess(w, r, h.sessionManager, RouteLogin, msgLoggedOut)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
